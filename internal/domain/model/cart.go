package model

import (
	"time"

	"github.com/ludora/storefront/internal/domain/enums"
)

type CartItem struct {
	PurchaseID  ID                `json:"purchase_id"`
	ProductID   ID                `json:"product_id"`
	ProductType enums.ProductType `json:"product_type"`
	EntityID    ID                `json:"entity_id"`
	Title       string            `json:"title"`
	Amount      string            `json:"amount"`
	AddedAt     time.Time         `json:"added_at"`
}

type Cart struct {
	BuyerID  string     `json:"buyer_id"`
	Items    []CartItem `json:"items"`
	SyncedAt *time.Time `json:"synced_at,omitempty"`
}
