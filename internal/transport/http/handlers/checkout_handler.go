package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	paymentsvc "github.com/ludora/storefront/internal/services/payments"
	"github.com/ludora/storefront/internal/transport/http/dto"
	httperrors "github.com/ludora/storefront/internal/transport/http/errors"
)

type CheckoutHandler struct {
	payments *paymentsvc.Service
}

func NewCheckoutHandler(payments *paymentsvc.Service) *CheckoutHandler {
	return &CheckoutHandler{payments: payments}
}

func (h *CheckoutHandler) Start(w http.ResponseWriter, r *http.Request) {
	if h.payments == nil {
		writeInternal(w, "PAYMENTS_SERVICE_UNAVAILABLE", "payments service is unavailable")
		return
	}

	var req dto.CheckoutStartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	res, err := h.payments.Start(r.Context(), paymentsvc.StartInput{
		Provider:  req.Provider,
		ReturnURL: req.ReturnURL,
	})
	if err != nil {
		if errors.Is(err, paymentsvc.ErrEmptyCart) {
			httperrors.Write(w, http.StatusConflict, httperrors.APIError{
				Code:    "CART_EMPTY",
				Message: "cart is empty",
			})
			return
		}
		if !writeFlowError(w, err) {
			writeInternal(w, "INTERNAL_ERROR", "failed to start checkout")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.CheckoutStartResponse{
		TransactionID: res.TransactionID,
		PaymentURL:    res.PaymentURL,
		PurchaseIDs:   res.PurchaseIDs,
	})
}

func (h *CheckoutHandler) Status(w http.ResponseWriter, r *http.Request) {
	if h.payments == nil {
		writeInternal(w, "PAYMENTS_SERVICE_UNAVAILABLE", "payments service is unavailable")
		return
	}

	st, err := h.payments.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, paymentsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "transaction id is required")
			return
		}
		if !writeFlowError(w, err) {
			writeInternal(w, "INTERNAL_ERROR", "failed to read payment status")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.CheckoutStatusResponse{
		TransactionID: st.TransactionID,
		Status:        string(st.Status),
		Settled:       st.Status.Settled(),
		PurchaseIDs:   st.PurchaseIDs,
	})
}
