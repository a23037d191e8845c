package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ludora/storefront/internal/domain/enums"
	"github.com/ludora/storefront/internal/repo/marketapi"
	accesssvc "github.com/ludora/storefront/internal/services/access"
	purchasesvc "github.com/ludora/storefront/internal/services/purchase"
	"github.com/ludora/storefront/internal/transport/http/dto"
	httperrors "github.com/ludora/storefront/internal/transport/http/errors"
)

type PurchaseHandler struct {
	purchases *purchasesvc.Service
}

func NewPurchaseHandler(purchases *purchasesvc.Service) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases}
}

func (h *PurchaseHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	if h.purchases == nil {
		writeInternal(w, "PURCHASE_SERVICE_UNAVAILABLE", "purchase service is unavailable")
		return
	}

	var req dto.PurchaseInitiateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	outcome, err := h.purchases.Initiate(r.Context(), chi.URLParam(r, "id"), req.Metadata)
	if err != nil {
		h.writeError(w, err, "failed to initiate purchase")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.PurchaseInitiateResponse{OK: true, Outcome: outcome})
}

func (h *PurchaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.purchases == nil {
		writeInternal(w, "PURCHASE_SERVICE_UNAVAILABLE", "purchase service is unavailable")
		return
	}

	p, err := h.purchases.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, "failed to load purchase")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.PurchaseResponse{Purchase: p})
}

func (h *PurchaseHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h.purchases == nil {
		writeInternal(w, "PURCHASE_SERVICE_UNAVAILABLE", "purchase service is unavailable")
		return
	}

	var req dto.PurchaseUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	p, err := h.purchases.Update(r.Context(), chi.URLParam(r, "id"), marketapi.PurchaseUpdate{
		PaymentStatus: enums.PaymentStatus(req.PaymentStatus),
		Metadata:      req.Metadata,
	})
	if err != nil {
		h.writeError(w, err, "failed to update purchase")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.PurchaseResponse{Purchase: p})
}

func (h *PurchaseHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if h.purchases == nil {
		writeInternal(w, "PURCHASE_SERVICE_UNAVAILABLE", "purchase service is unavailable")
		return
	}

	if err := h.purchases.Cancel(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err, "failed to cancel purchase")
		return
	}
	httperrors.Write(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{OK: true})
}

func (h *PurchaseHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, purchasesvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid purchase request")
	case errors.Is(err, purchasesvc.ErrPurchaseNotFound):
		writeNotFound(w, "PURCHASE_NOT_FOUND", "purchase not found")
	case errors.Is(err, accesssvc.ErrProductNotFound):
		writeNotFound(w, "PRODUCT_NOT_FOUND", "product not found")
	case errors.Is(err, purchasesvc.ErrNoPurchaseID):
		httperrors.Write(w, http.StatusBadGateway, httperrors.APIError{
			Code:    "UPSTREAM_ERROR",
			Message: "marketplace returned no purchase id",
		})
	default:
		if !writeFlowError(w, err) {
			writeInternal(w, "INTERNAL_ERROR", fallback)
		}
	}
}
