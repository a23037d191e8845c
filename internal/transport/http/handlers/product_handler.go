package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	accesssvc "github.com/ludora/storefront/internal/services/access"
	"github.com/ludora/storefront/internal/transport/http/dto"
	httperrors "github.com/ludora/storefront/internal/transport/http/errors"
)

type ProductHandler struct {
	access *accesssvc.Service
}

func NewProductHandler(access *accesssvc.Service) *ProductHandler {
	return &ProductHandler{access: access}
}

func (h *ProductHandler) Access(w http.ResponseWriter, r *http.Request) {
	if h.access == nil {
		writeInternal(w, "ACCESS_SERVICE_UNAVAILABLE", "access service is unavailable")
		return
	}

	res, product, err := h.access.Resolve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, accesssvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "product id is required")
		case errors.Is(err, accesssvc.ErrProductNotFound):
			writeNotFound(w, "PRODUCT_NOT_FOUND", "product not found")
		default:
			if !writeFlowError(w, err) {
				writeInternal(w, "INTERNAL_ERROR", "failed to resolve access")
			}
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ProductAccessResponse{
		Resolution: res,
		Title:      product.Title,
	})
}
