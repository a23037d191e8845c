package marketapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/ludora/storefront/internal/domain/model"
)

func (c *Client) SystemTemplates(ctx context.Context, templateType string) ([]model.SystemTemplate, error) {
	query := url.Values{}
	if t := strings.TrimSpace(templateType); t != "" {
		query.Set("type", t)
	}

	var out []model.SystemTemplate
	if err := c.DoJSON(ctx, http.MethodGet, "/system-templates", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
