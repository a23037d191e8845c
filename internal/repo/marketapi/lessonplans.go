package marketapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// UploadLessonPlanFile streams an already encoded multipart body to the
// marketplace. contentType must carry the multipart boundary.
func (c *Client) UploadLessonPlanFile(ctx context.Context, lessonPlanID, contentType string, body io.Reader) (json.RawMessage, error) {
	if c == nil || c.uploadClient == nil {
		return nil, &RequestError{Op: "upload lesson plan file", Err: errors.New("market client is not initialized")}
	}
	lessonPlanID = strings.TrimSpace(lessonPlanID)
	if lessonPlanID == "" {
		return nil, fmt.Errorf("lesson plan id is required")
	}
	if !strings.HasPrefix(strings.ToLower(contentType), "multipart/") {
		return nil, fmt.Errorf("multipart content type is required")
	}

	path := "/entities/lesson-plan/" + url.PathEscape(lessonPlanID) + "/upload-file"
	statusCode, responseBytes, err := c.do(ctx, c.uploadClient, http.MethodPost, path, nil, contentType, body, nil)
	if err != nil {
		return nil, err
	}

	var out json.RawMessage
	if err := decodeResponse(statusCode, responseBytes, &out); err != nil {
		return nil, err
	}
	return out, nil
}
