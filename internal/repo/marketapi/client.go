package marketapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	authsvc "github.com/ludora/storefront/internal/services/auth"
)

const maxResponseBytes = 4 * 1024 * 1024

// Client talks JSON to the marketplace REST API on behalf of the caller whose
// token is in the request context.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	uploadClient *http.Client
}

// RequestError describes a failed round trip. Retryable marks transport
// failures and 5xx answers; nothing in this package retries on its own.
type RequestError struct {
	Op         string
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *RequestError) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Err != nil && e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d: %v", e.Op, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d", e.Op, e.StatusCode)
	default:
		return e.Op
	}
}

func (e *RequestError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// DomainError carries the marketplace's own explanation from an error body.
type DomainError struct {
	StatusCode int
	Code       string
	Details    string
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	if e.Details != "" && e.Code != "" {
		return e.Code + ": " + e.Details
	}
	if e.Details != "" {
		return e.Details
	}
	return e.Code
}

// Message is the text worth showing to the user.
func (e *DomainError) Message() string {
	if e == nil {
		return ""
	}
	if e.Details != "" {
		return e.Details
	}
	return e.Code
}

func NewClient(baseURL string, httpClient, uploadClient *http.Client) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, &RequestError{Op: "create market client", Err: errors.New("market api url is empty")}
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, &RequestError{Op: "parse market api url", Err: err}
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, &RequestError{Op: "validate market api url", Err: fmt.Errorf("invalid market api url: %s", trimmed)}
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if uploadClient == nil {
		uploadClient = httpClient
	}

	return &Client{
		baseURL:      strings.TrimRight(trimmed, "/"),
		httpClient:   httpClient,
		uploadClient: uploadClient,
	}, nil
}

// IsNetworkError reports transport level failures (timeouts, refused
// connections) as opposed to answers from the marketplace.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return false
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.StatusCode > 0 {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func (c *Client) DoJSON(ctx context.Context, method, path string, query url.Values, requestBody, responseBody any) error {
	if c == nil || c.httpClient == nil {
		return &RequestError{Op: "do json request", Err: errors.New("market client is not initialized")}
	}

	bodyReader, err := jsonBody(requestBody)
	if err != nil {
		return err
	}

	statusCode, responseBytes, err := c.do(ctx, c.httpClient, method, path, query, "application/json", bodyReader, nil)
	if err != nil {
		return err
	}
	return decodeResponse(statusCode, responseBytes, responseBody)
}

func jsonBody(requestBody any) (io.Reader, error) {
	if requestBody == nil {
		return nil, nil
	}
	raw, err := json.Marshal(requestBody)
	if err != nil {
		return nil, &RequestError{Op: "marshal request body", Err: err}
	}
	return bytes.NewReader(raw), nil
}

func (c *Client) do(
	ctx context.Context,
	client *http.Client,
	method, path string,
	query url.Values,
	contentType string,
	body io.Reader,
	headers http.Header,
) (int, []byte, error) {
	if strings.TrimSpace(method) == "" {
		method = http.MethodGet
	}

	fullURL := c.baseURL + ensureLeadingSlash(path)
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return 0, nil, &RequestError{Op: "create http request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token, ok := authsvc.TokenFromContext(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, &RequestError{
			Op:        method + " " + path,
			Retryable: true,
			Err:       err,
		}
	}
	defer resp.Body.Close()

	responseBytes, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if readErr != nil {
		return resp.StatusCode, nil, &RequestError{
			Op:         "read http response",
			StatusCode: resp.StatusCode,
			Err:        readErr,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, responseBytes, statusError(method+" "+path, resp.StatusCode, responseBytes)
	}

	return resp.StatusCode, responseBytes, nil
}

func statusError(op string, statusCode int, body []byte) error {
	if statusCode == http.StatusUnauthorized {
		return &RequestError{Op: op, StatusCode: statusCode, Err: authsvc.ErrLoginRequired}
	}

	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Details string `json:"details"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && (envelope.Error != "" || envelope.Details != "" || envelope.Message != "") {
		details := envelope.Details
		if details == "" {
			details = envelope.Message
		}
		return &RequestError{
			Op:         op,
			StatusCode: statusCode,
			Retryable:  statusCode >= 500,
			Err: &DomainError{
				StatusCode: statusCode,
				Code:       envelope.Error,
				Details:    details,
			},
		}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" || len(msg) > 512 {
		msg = http.StatusText(statusCode)
	}
	return &RequestError{
		Op:         op,
		StatusCode: statusCode,
		Retryable:  statusCode >= 500,
		Err:        errors.New(msg),
	}
}

func statusErrorFromEnvelope(statusCode int, body []byte) error {
	err := statusError("marketplace rejected request", http.StatusUnprocessableEntity, body)
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		reqErr.StatusCode = statusCode
		reqErr.Retryable = false
	}
	return err
}

// decodeResponse unwraps the {success, data} envelope some endpoints use.
func decodeResponse(statusCode int, body []byte, target any) error {
	if target == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	payload := body
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err == nil {
		if rawSuccess, hasSuccess := envelope["success"]; hasSuccess {
			var success bool
			if json.Unmarshal(rawSuccess, &success) == nil && !success {
				return statusErrorFromEnvelope(statusCode, body)
			}
			if data, ok := envelope["data"]; ok {
				payload = data
			}
		}
	}

	if err := json.Unmarshal(payload, target); err != nil {
		return &RequestError{
			Op:         "decode http response",
			StatusCode: statusCode,
			Err:        err,
		}
	}
	return nil
}

func ensureLeadingSlash(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "/"
	}
	if strings.HasPrefix(trimmed, "/") {
		return trimmed
	}
	return "/" + trimmed
}
