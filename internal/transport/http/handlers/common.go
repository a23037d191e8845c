package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ludora/storefront/internal/domain/rules"
	"github.com/ludora/storefront/internal/repo/marketapi"
	authsvc "github.com/ludora/storefront/internal/services/auth"
	feedbacksvc "github.com/ludora/storefront/internal/services/feedback"
	httperrors "github.com/ludora/storefront/internal/transport/http/errors"
)

const maxJSONBody = 1 << 20

// decodeJSON treats an empty body as an empty object.
func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeNotFound(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: code, Message: message})
}

func writeLoginRequired(w http.ResponseWriter) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.RetryableError{
		Code:    "LOGIN_REQUIRED",
		Message: feedbacksvc.MessageLoginRequired,
		Retry:   true,
	})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}

// writeFlowError maps errors shared by every purchase flow endpoint. It returns
// false when err is none of them so the caller can apply its own mapping.
func writeFlowError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, authsvc.ErrLoginRequired):
		writeLoginRequired(w)
		return true
	case errors.Is(err, rules.ErrAlreadyProcessing):
		httperrors.Write(w, http.StatusConflict, httperrors.APIError{
			Code:    "ALREADY_PROCESSING",
			Message: feedbacksvc.MessageAlreadyProcessing,
		})
		return true
	case errors.Is(err, rules.ErrUnavailable):
		httperrors.Write(w, http.StatusUnprocessableEntity, httperrors.APIError{
			Code:    "UNAVAILABLE",
			Message: feedbacksvc.MessageUnavailable,
		})
		return true
	}

	if tf, ok := rules.IsTooFast(err); ok {
		httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
			Code:          "TOO_FAST",
			Message:       feedbacksvc.Message(err),
			RetryAfterSec: tf.RetryAfter(),
		})
		return true
	}

	var domainErr *marketapi.DomainError
	if errors.As(err, &domainErr) {
		status := domainErr.StatusCode
		if status < 400 || status >= 500 {
			status = http.StatusBadGateway
		}
		code := domainErr.Code
		if code == "" {
			code = "MARKET_REJECTED"
		}
		httperrors.Write(w, status, httperrors.APIError{Code: code, Message: feedbacksvc.Message(err)})
		return true
	}

	var reqErr *marketapi.RequestError
	if errors.As(err, &reqErr) {
		httperrors.Write(w, http.StatusBadGateway, httperrors.APIError{
			Code:    "UPSTREAM_ERROR",
			Message: feedbacksvc.Message(err),
		})
		return true
	}
	return false
}
