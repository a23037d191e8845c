package model

import (
	"time"

	"github.com/ludora/storefront/internal/domain/enums"
)

type Notification struct {
	ID        string                  `json:"id"`
	Level     enums.NotificationLevel `json:"level"`
	Message   string                  `json:"message"`
	ProductID ID                      `json:"product_id,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
}
