package access

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ludora/storefront/internal/domain/model"
	"github.com/ludora/storefront/internal/domain/rules"
	"github.com/ludora/storefront/internal/repo/marketapi"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrProductNotFound = errors.New("product not found")
)

type ProductSource interface {
	GetProduct(ctx context.Context, productID string) (model.Product, error)
}

type Service struct {
	products ProductSource
}

func NewService(products ProductSource) *Service {
	return &Service{products: products}
}

// Resolve loads the product with the caller's access flags and classifies it.
func (s *Service) Resolve(ctx context.Context, productID string) (model.Resolution, model.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return model.Resolution{}, model.Product{}, ErrValidation
	}
	if s.products == nil {
		return model.Resolution{}, model.Product{}, fmt.Errorf("product source is nil")
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, marketapi.ErrProductNotFound) {
			return model.Resolution{}, model.Product{}, ErrProductNotFound
		}
		return model.Resolution{}, model.Product{}, fmt.Errorf("load product %s: %w", productID, err)
	}
	if product.ID.IsZero() {
		product.ID = model.ID(productID)
	}

	return rules.Classify(product), product, nil
}
