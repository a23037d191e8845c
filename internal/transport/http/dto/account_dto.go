package dto

import (
	"encoding/json"
	"time"

	"github.com/ludora/storefront/internal/domain/model"
)

type ConsentRequest struct {
	ConsentType string `json:"consent_type"`
	Version     string `json:"version,omitempty"`
}

type NotificationsResponse struct {
	Items []model.Notification `json:"items"`
}

type PurchaseEventItem struct {
	Name       string         `json:"name"`
	ProductID  string         `json:"product_id,omitempty"`
	PurchaseID string         `json:"purchase_id,omitempty"`
	Outcome    string         `json:"outcome,omitempty"`
	Props      map[string]any `json:"props,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

type PurchaseEventsResponse struct {
	Items []PurchaseEventItem `json:"items"`
}

type SystemTemplatesResponse struct {
	Items []model.SystemTemplate `json:"items"`
}

type SystemTemplateResponse struct {
	Template model.SystemTemplate `json:"template"`
}

type LessonPlanUploadResponse struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result,omitempty"`
}
