package marketapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ludora/storefront/internal/domain/model"
)

var ErrProductNotFound = errors.New("product not found")

func (c *Client) GetProduct(ctx context.Context, productID string) (model.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return model.Product{}, fmt.Errorf("product id is required")
	}

	var product model.Product
	err := c.DoJSON(ctx, http.MethodGet, "/entities/product/"+url.PathEscape(productID), nil, nil, &product)
	if err != nil {
		var reqErr *RequestError
		if errors.As(err, &reqErr) && reqErr.StatusCode == http.StatusNotFound {
			return model.Product{}, ErrProductNotFound
		}
		return model.Product{}, err
	}
	if product.ID.IsZero() {
		product.ID = model.ID(productID)
	}
	return product, nil
}
