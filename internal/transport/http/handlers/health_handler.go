package handlers

import (
	"net/http"

	httperrors "github.com/ludora/storefront/internal/transport/http/errors"
)

type HealthHandler struct {
	auditEnabled bool
}

func NewHealthHandler(auditEnabled bool) *HealthHandler {
	return &HealthHandler{auditEnabled: auditEnabled}
}

func (h *HealthHandler) Get(w http.ResponseWriter, _ *http.Request) {
	httperrors.Write(w, http.StatusOK, struct {
		OK    bool `json:"ok"`
		Audit bool `json:"audit"`
	}{
		OK:    true,
		Audit: h.auditEnabled,
	})
}
