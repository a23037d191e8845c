package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	lessonplansvc "github.com/ludora/storefront/internal/services/lessonplans"
	"github.com/ludora/storefront/internal/transport/http/dto"
	httperrors "github.com/ludora/storefront/internal/transport/http/errors"
)

const maxLessonPlanUpload = 50 << 20

type LessonPlanHandler struct {
	lessonPlans *lessonplansvc.Service
}

func NewLessonPlanHandler(lessonPlans *lessonplansvc.Service) *LessonPlanHandler {
	return &LessonPlanHandler{lessonPlans: lessonPlans}
}

func (h *LessonPlanHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	if h.lessonPlans == nil {
		writeInternal(w, "LESSON_PLAN_SERVICE_UNAVAILABLE", "lesson plan service is unavailable")
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxLessonPlanUpload)
	result, err := h.lessonPlans.UploadFile(r.Context(), chi.URLParam(r, "id"), r.Header.Get("Content-Type"), body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			httperrors.Write(w, http.StatusRequestEntityTooLarge, httperrors.APIError{
				Code:    "FILE_TOO_LARGE",
				Message: "file exceeds upload limit",
			})
		case errors.Is(err, lessonplansvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "multipart/form-data body is required")
		default:
			if !writeFlowError(w, err) {
				writeInternal(w, "INTERNAL_ERROR", "failed to upload lesson plan file")
			}
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.LessonPlanUploadResponse{OK: true, Result: result})
}
