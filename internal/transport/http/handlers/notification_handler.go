package handlers

import (
	"net/http"
	"strconv"

	authsvc "github.com/ludora/storefront/internal/services/auth"
	feedbacksvc "github.com/ludora/storefront/internal/services/feedback"
	"github.com/ludora/storefront/internal/transport/http/dto"
	httperrors "github.com/ludora/storefront/internal/transport/http/errors"
)

type NotificationHandler struct {
	feedback *feedbacksvc.Service
}

func NewNotificationHandler(feedback *feedbacksvc.Service) *NotificationHandler {
	return &NotificationHandler{feedback: feedback}
}

// Drain hands pending toasts to the client and removes them.
func (h *NotificationHandler) Drain(w http.ResponseWriter, r *http.Request) {
	identity, err := authsvc.RequireIdentity(r.Context())
	if err != nil {
		writeLoginRequired(w)
		return
	}
	if h.feedback == nil {
		writeInternal(w, "FEEDBACK_SERVICE_UNAVAILABLE", "feedback service is unavailable")
		return
	}

	items, err := h.feedback.Drain(r.Context(), identity.BuyerID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load notifications")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.NotificationsResponse{Items: items})
}

func (h *NotificationHandler) History(w http.ResponseWriter, r *http.Request) {
	identity, err := authsvc.RequireIdentity(r.Context())
	if err != nil {
		writeLoginRequired(w)
		return
	}
	if h.feedback == nil {
		writeInternal(w, "FEEDBACK_SERVICE_UNAVAILABLE", "feedback service is unavailable")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeBadRequest(w, "VALIDATION_ERROR", "limit must be a positive integer")
			return
		}
		limit = n
	}

	rows, err := h.feedback.History(r.Context(), identity.BuyerID, limit)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load purchase history")
		return
	}

	items := make([]dto.PurchaseEventItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, dto.PurchaseEventItem{
			Name:       row.Name,
			ProductID:  row.ProductID,
			PurchaseID: row.PurchaseID,
			Outcome:    row.Outcome,
			Props:      row.Props,
			OccurredAt: row.OccurredAt,
		})
	}
	httperrors.Write(w, http.StatusOK, dto.PurchaseEventsResponse{Items: items})
}
