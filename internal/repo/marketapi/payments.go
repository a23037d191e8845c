package marketapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ludora/storefront/internal/domain/enums"
)

type StartPaymentRequest struct {
	PurchaseIDs []string `json:"purchase_ids"`
	Provider    string   `json:"provider,omitempty"`
	ReturnURL   string   `json:"return_url,omitempty"`
}

type PayplusPageRequest struct {
	PurchaseIDs []string `json:"purchaseIds"`
	ReturnURL   string   `json:"returnUrl,omitempty"`
	Environment string   `json:"environment,omitempty"`
}

type PaymentPage struct {
	TransactionID   string `json:"transaction_id"`
	PaymentURL      string `json:"payment_url"`
	PaymentPageLink string `json:"payment_page_link"`
}

func (p PaymentPage) URL() string {
	if p.PaymentURL != "" {
		return p.PaymentURL
	}
	return p.PaymentPageLink
}

type PaymentStatus struct {
	TransactionID string              `json:"transaction_id"`
	Status        enums.PaymentStatus `json:"status"`
	PurchaseIDs   []string            `json:"purchase_ids"`
}

func (c *Client) StartPayment(ctx context.Context, in StartPaymentRequest) (PaymentPage, error) {
	if len(in.PurchaseIDs) == 0 {
		return PaymentPage{}, fmt.Errorf("at least one purchase id is required")
	}

	var out PaymentPage
	if err := c.DoJSON(ctx, http.MethodPost, "/payments/start", nil, in, &out); err != nil {
		return PaymentPage{}, err
	}
	return out, nil
}

func (c *Client) CreatePayplusPaymentPage(ctx context.Context, in PayplusPageRequest) (PaymentPage, error) {
	if len(in.PurchaseIDs) == 0 {
		return PaymentPage{}, fmt.Errorf("at least one purchase id is required")
	}

	var out PaymentPage
	if err := c.DoJSON(ctx, http.MethodPost, "/payments/createPayplusPaymentPage", nil, in, &out); err != nil {
		return PaymentPage{}, err
	}
	return out, nil
}

func (c *Client) GetPaymentStatus(ctx context.Context, transactionID string) (PaymentStatus, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return PaymentStatus{}, fmt.Errorf("transaction id is required")
	}

	var out PaymentStatus
	if err := c.DoJSON(ctx, http.MethodGet, "/payments/status/"+url.PathEscape(transactionID), nil, nil, &out); err != nil {
		return PaymentStatus{}, err
	}
	if out.TransactionID == "" {
		out.TransactionID = transactionID
	}
	out.Status = enums.NormalizePaymentStatus(string(out.Status))
	return out, nil
}
