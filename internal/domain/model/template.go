package model

import "encoding/json"

// SystemTemplate is a branding or watermark template applied to exported documents.
type SystemTemplate struct {
	ID           ID              `json:"id"`
	Name         string          `json:"name"`
	TemplateType string          `json:"template_type"`
	IsDefault    bool            `json:"is_default"`
	TemplateData json.RawMessage `json:"template_data,omitempty"`
}
