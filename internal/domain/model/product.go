package model

import (
	"encoding/json"

	"github.com/ludora/storefront/internal/domain/enums"
)

type Product struct {
	ID          ID                `json:"id"`
	ProductType enums.ProductType `json:"product_type"`
	Price       json.RawMessage   `json:"price"`
	EntityID    ID                `json:"entity_id"`
	Title       string            `json:"title"`
	Access      *Access           `json:"access,omitempty"`
}

// Access is computed by the marketplace for the calling user and consumed as is.
type Access struct {
	HasAccess           bool           `json:"hasAccess"`
	CanClaim            bool           `json:"canClaim"`
	ShowPurchaseButton  bool           `json:"showPurchaseButton"`
	RemainingAllowances int            `json:"remainingAllowances"`
	AllowanceType       *AllowanceType `json:"allowanceType,omitempty"`
}

type AllowanceType struct {
	Type      string `json:"type"`
	IsLimited bool   `json:"isLimited"`
	Limit     int    `json:"limit"`
}
