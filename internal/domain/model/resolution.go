package model

import "github.com/ludora/storefront/internal/domain/enums"

// Resolution is the single access decision for one product and one buyer.
type Resolution struct {
	Kind        enums.ResolutionKind `json:"kind"`
	ProductID   ID                   `json:"product_id"`
	ProductType enums.ProductType    `json:"product_type"`
	EntityID    ID                   `json:"entity_id"`
	IsFree      bool                 `json:"is_free"`
	Price       string               `json:"price"`
	Label       string               `json:"label"`
	Remaining   int                  `json:"remaining,omitempty"`
	Unlimited   bool                 `json:"unlimited,omitempty"`
	Reason      string               `json:"reason,omitempty"`
}
