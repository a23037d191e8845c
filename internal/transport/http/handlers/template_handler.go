package handlers

import (
	"net/http"

	templatesvc "github.com/ludora/storefront/internal/services/templates"
	"github.com/ludora/storefront/internal/transport/http/dto"
	httperrors "github.com/ludora/storefront/internal/transport/http/errors"
)

type TemplateHandler struct {
	templates *templatesvc.Service
}

func NewTemplateHandler(templates *templatesvc.Service) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.templates == nil {
		writeInternal(w, "TEMPLATES_SERVICE_UNAVAILABLE", "templates service is unavailable")
		return
	}

	items, err := h.templates.List(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		if !writeFlowError(w, err) {
			writeInternal(w, "INTERNAL_ERROR", "failed to load system templates")
		}
		return
	}
	httperrors.Write(w, http.StatusOK, dto.SystemTemplatesResponse{Items: items})
}

func (h *TemplateHandler) Default(w http.ResponseWriter, r *http.Request) {
	if h.templates == nil {
		writeInternal(w, "TEMPLATES_SERVICE_UNAVAILABLE", "templates service is unavailable")
		return
	}

	item, ok, err := h.templates.Default(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		if !writeFlowError(w, err) {
			writeInternal(w, "INTERNAL_ERROR", "failed to load system templates")
		}
		return
	}
	if !ok {
		writeNotFound(w, "TEMPLATE_NOT_FOUND", "no template of this type")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.SystemTemplateResponse{Template: item})
}
