package lessonplans

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	authsvc "github.com/ludora/storefront/internal/services/auth"
)

type uploaderStub struct {
	body string
}

func (u *uploaderStub) UploadLessonPlanFile(_ context.Context, _ string, _ string, body io.Reader) (json.RawMessage, error) {
	raw, _ := io.ReadAll(body)
	u.body = string(raw)
	return json.RawMessage(`{"file_id":"f1"}`), nil
}

func TestUploadFileValidatesMultipart(t *testing.T) {
	up := &uploaderStub{}
	svc := NewService(up)
	ctx := authsvc.WithIdentity(context.Background(), authsvc.Identity{Token: "t", BuyerID: "b"})

	if _, err := svc.UploadFile(ctx, "lp1", "application/json", strings.NewReader("{}")); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for json body, got %v", err)
	}
	if _, err := svc.UploadFile(ctx, "lp1", "multipart/form-data", strings.NewReader("x")); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation without boundary, got %v", err)
	}

	out, err := svc.UploadFile(ctx, "lp1", "multipart/form-data; boundary=abc", strings.NewReader("payload"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if string(out) != `{"file_id":"f1"}` || up.body != "payload" {
		t.Fatalf("unexpected upload result: %s body=%q", out, up.body)
	}
}
