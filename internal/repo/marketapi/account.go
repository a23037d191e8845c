package marketapi

import (
	"context"
	"net/http"
)

type ConsentRequest struct {
	ConsentType string `json:"consent_type,omitempty"`
	Version     string `json:"version,omitempty"`
}

func (c *Client) MarkConsent(ctx context.Context, in ConsentRequest) error {
	return c.DoJSON(ctx, http.MethodPost, "/auth/mark-consent", nil, in, nil)
}
