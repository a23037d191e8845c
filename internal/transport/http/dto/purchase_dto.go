package dto

import "github.com/ludora/storefront/internal/domain/model"

type PurchaseInitiateRequest struct {
	Metadata map[string]any `json:"metadata,omitempty"`
}

type PurchaseInitiateResponse struct {
	OK      bool          `json:"ok"`
	Outcome model.Outcome `json:"outcome"`
}

type PurchaseUpdateRequest struct {
	PaymentStatus string         `json:"payment_status,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

type PurchaseResponse struct {
	Purchase model.Purchase `json:"purchase"`
}
