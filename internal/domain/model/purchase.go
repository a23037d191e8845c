package model

import (
	"encoding/json"
	"time"

	"github.com/ludora/storefront/internal/domain/enums"
)

type Purchase struct {
	ID              ID                  `json:"id"`
	PurchasableType enums.ProductType   `json:"purchasable_type"`
	PurchasableID   ID                  `json:"purchasable_id"`
	BuyerUserID     ID                  `json:"buyer_user_id"`
	PaymentStatus   enums.PaymentStatus `json:"payment_status"`
	PaymentAmount   json.RawMessage     `json:"payment_amount,omitempty"`
	AccessUntil     *time.Time          `json:"access_until,omitempty"`
	LifetimeAccess  bool                `json:"lifetime_access"`
	CreatedAt       *time.Time          `json:"created_at,omitempty"`
}

// Outcome is the result of a purchase initiation as seen by the web client.
type Outcome struct {
	Kind       enums.OutcomeKind `json:"kind"`
	PurchaseID ID                `json:"purchase_id,omitempty"`
	Redirect   string            `json:"redirect"`
	Resolution Resolution        `json:"resolution"`
}
