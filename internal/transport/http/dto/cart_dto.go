package dto

import "github.com/ludora/storefront/internal/domain/model"

type CartResponse struct {
	Cart model.Cart `json:"cart"`
}

type CheckoutStartRequest struct {
	Provider  string `json:"provider,omitempty"`
	ReturnURL string `json:"return_url,omitempty"`
}

type CheckoutStartResponse struct {
	TransactionID string   `json:"transaction_id"`
	PaymentURL    string   `json:"payment_url"`
	PurchaseIDs   []string `json:"purchase_ids"`
}

type CheckoutStatusResponse struct {
	TransactionID string   `json:"transaction_id"`
	Status        string   `json:"status"`
	Settled       bool     `json:"settled"`
	PurchaseIDs   []string `json:"purchase_ids,omitempty"`
}
