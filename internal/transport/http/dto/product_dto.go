package dto

import "github.com/ludora/storefront/internal/domain/model"

type ProductAccessResponse struct {
	Resolution model.Resolution `json:"resolution"`
	Title      string           `json:"title,omitempty"`
}
