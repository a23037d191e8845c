package marketapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ludora/storefront/internal/domain/enums"
	"github.com/ludora/storefront/internal/domain/model"
)

var ErrPurchaseNotFound = errors.New("purchase not found")

type EntityPurchaseRequest struct {
	EntityType enums.ProductType `json:"entity_type"`
	EntityID   string            `json:"entity_id"`
	Metadata   map[string]any    `json:"metadata,omitempty"`
}

type PaymentPurchaseRequest struct {
	PurchasableType enums.ProductType `json:"purchasable_type"`
	PurchasableID   string            `json:"purchasable_id"`
	PaymentAmount   string            `json:"payment_amount,omitempty"`
	Metadata        map[string]any    `json:"metadata,omitempty"`
}

// PurchaseResult is a purchase as returned by a create call; Completed is set by
// the marketplace when no payment step is needed.
type PurchaseResult struct {
	model.Purchase
	Completed bool `json:"completed"`
}

func (r PurchaseResult) IsCompleted() bool {
	return r.Completed || r.PaymentStatus.Settled()
}

type PurchaseUpdate struct {
	PaymentStatus enums.PaymentStatus `json:"payment_status,omitempty"`
	Metadata      map[string]any      `json:"metadata,omitempty"`
}

// CreateEntityPurchase completes a free purchase or a subscription claim.
func (c *Client) CreateEntityPurchase(ctx context.Context, in EntityPurchaseRequest) (PurchaseResult, error) {
	if strings.TrimSpace(in.EntityID) == "" || in.EntityType == "" {
		return PurchaseResult{}, fmt.Errorf("entity type and id are required")
	}

	var out PurchaseResult
	if err := c.DoJSON(ctx, http.MethodPost, "/entities/purchase", nil, in, &out); err != nil {
		return PurchaseResult{}, err
	}
	return out, nil
}

// CreatePaymentPurchase registers a pending purchase that needs checkout.
func (c *Client) CreatePaymentPurchase(ctx context.Context, in PaymentPurchaseRequest, idempotencyKey string) (PurchaseResult, error) {
	if strings.TrimSpace(in.PurchasableID) == "" || in.PurchasableType == "" {
		return PurchaseResult{}, fmt.Errorf("purchasable type and id are required")
	}

	headers := http.Header{}
	if key := strings.TrimSpace(idempotencyKey); key != "" {
		headers.Set("Idempotency-Key", key)
	}

	var out PurchaseResult
	if err := c.doJSONWithHeaders(ctx, http.MethodPost, "/payments/purchases", nil, in, &out, headers); err != nil {
		return PurchaseResult{}, err
	}
	return out, nil
}

func (c *Client) ListPurchases(ctx context.Context, status enums.PaymentStatus) ([]model.Purchase, error) {
	query := url.Values{}
	if status != "" {
		query.Set("payment_status", string(status))
	}

	var out []model.Purchase
	if err := c.DoJSON(ctx, http.MethodGet, "/payments/purchases", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetPurchase(ctx context.Context, purchaseID string) (model.Purchase, error) {
	var out model.Purchase
	if err := c.DoJSON(ctx, http.MethodGet, purchasePath(purchaseID), nil, nil, &out); err != nil {
		return model.Purchase{}, mapNotFound(err, ErrPurchaseNotFound)
	}
	return out, nil
}

func (c *Client) UpdatePurchase(ctx context.Context, purchaseID string, in PurchaseUpdate) (model.Purchase, error) {
	var out model.Purchase
	if err := c.DoJSON(ctx, http.MethodPut, purchasePath(purchaseID), nil, in, &out); err != nil {
		return model.Purchase{}, mapNotFound(err, ErrPurchaseNotFound)
	}
	return out, nil
}

func (c *Client) DeletePurchase(ctx context.Context, purchaseID string) error {
	if err := c.DoJSON(ctx, http.MethodDelete, purchasePath(purchaseID), nil, nil, nil); err != nil {
		return mapNotFound(err, ErrPurchaseNotFound)
	}
	return nil
}

func (c *Client) doJSONWithHeaders(ctx context.Context, method, path string, query url.Values, in, out any, headers http.Header) error {
	if c == nil || c.httpClient == nil {
		return &RequestError{Op: "do json request", Err: errors.New("market client is not initialized")}
	}
	body, err := jsonBody(in)
	if err != nil {
		return err
	}
	statusCode, responseBytes, err := c.do(ctx, c.httpClient, method, path, query, "application/json", body, headers)
	if err != nil {
		return err
	}
	return decodeResponse(statusCode, responseBytes, out)
}

func purchasePath(purchaseID string) string {
	return "/payments/purchases/" + url.PathEscape(strings.TrimSpace(purchaseID))
}

func mapNotFound(err, notFound error) error {
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.StatusCode == http.StatusNotFound {
		return notFound
	}
	return err
}
