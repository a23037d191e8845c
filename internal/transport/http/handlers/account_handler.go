package handlers

import (
	"errors"
	"net/http"

	accountsvc "github.com/ludora/storefront/internal/services/account"
	"github.com/ludora/storefront/internal/transport/http/dto"
	httperrors "github.com/ludora/storefront/internal/transport/http/errors"
)

type AccountHandler struct {
	account *accountsvc.Service
}

func NewAccountHandler(account *accountsvc.Service) *AccountHandler {
	return &AccountHandler{account: account}
}

func (h *AccountHandler) MarkConsent(w http.ResponseWriter, r *http.Request) {
	if h.account == nil {
		writeInternal(w, "ACCOUNT_SERVICE_UNAVAILABLE", "account service is unavailable")
		return
	}

	var req dto.ConsentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	if err := h.account.MarkConsent(r.Context(), req.ConsentType, req.Version); err != nil {
		if errors.Is(err, accountsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid consent payload")
			return
		}
		if !writeFlowError(w, err) {
			writeInternal(w, "INTERNAL_ERROR", "failed to record consent")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{OK: true})
}
