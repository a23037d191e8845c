package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/ludora/storefront/internal/services/auth"
	cartsvc "github.com/ludora/storefront/internal/services/cart"
	"github.com/ludora/storefront/internal/transport/http/dto"
	httperrors "github.com/ludora/storefront/internal/transport/http/errors"
)

type CartHandler struct {
	cart *cartsvc.Service
}

func NewCartHandler(cart *cartsvc.Service) *CartHandler {
	return &CartHandler{cart: cart}
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, err := authsvc.RequireIdentity(r.Context())
	if err != nil {
		writeLoginRequired(w)
		return
	}
	if h.cart == nil {
		writeInternal(w, "CART_SERVICE_UNAVAILABLE", "cart service is unavailable")
		return
	}

	cart, err := h.cart.Get(r.Context(), identity.BuyerID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load cart")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.CartResponse{Cart: cart})
}

func (h *CartHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	identity, err := authsvc.RequireIdentity(r.Context())
	if err != nil {
		writeLoginRequired(w)
		return
	}
	if h.cart == nil {
		writeInternal(w, "CART_SERVICE_UNAVAILABLE", "cart service is unavailable")
		return
	}

	cart, err := h.cart.Refresh(r.Context(), identity.BuyerID)
	if err != nil {
		if !writeFlowError(w, err) {
			writeInternal(w, "INTERNAL_ERROR", "failed to refresh cart")
		}
		return
	}
	httperrors.Write(w, http.StatusOK, dto.CartResponse{Cart: cart})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	identity, err := authsvc.RequireIdentity(r.Context())
	if err != nil {
		writeLoginRequired(w)
		return
	}
	if h.cart == nil {
		writeInternal(w, "CART_SERVICE_UNAVAILABLE", "cart service is unavailable")
		return
	}

	if err := h.cart.Remove(r.Context(), identity.BuyerID, chi.URLParam(r, "purchaseID")); err != nil {
		if errors.Is(err, cartsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "purchase id is required")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to remove cart item")
		return
	}

	cart, err := h.cart.Get(r.Context(), identity.BuyerID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load cart")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.CartResponse{Cart: cart})
}
