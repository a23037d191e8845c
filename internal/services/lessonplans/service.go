package lessonplans

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"strings"

	authsvc "github.com/ludora/storefront/internal/services/auth"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrDependenciesNil = errors.New("lesson plan dependencies are not configured")
)

type Uploader interface {
	UploadLessonPlanFile(ctx context.Context, lessonPlanID, contentType string, body io.Reader) (json.RawMessage, error)
}

type Service struct {
	uploader Uploader
}

func NewService(uploader Uploader) *Service {
	return &Service{uploader: uploader}
}

// UploadFile forwards a multipart body untouched. The boundary in contentType
// has to match the body.
func (s *Service) UploadFile(ctx context.Context, lessonPlanID, contentType string, body io.Reader) (json.RawMessage, error) {
	if _, err := authsvc.RequireIdentity(ctx); err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, ErrDependenciesNil
	}
	if strings.TrimSpace(lessonPlanID) == "" || body == nil {
		return nil, ErrValidation
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "multipart/form-data" || params["boundary"] == "" {
		return nil, ErrValidation
	}
	return s.uploader.UploadLessonPlanFile(ctx, lessonPlanID, contentType, body)
}
