package marketapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ludora/storefront/internal/domain/enums"
	authsvc "github.com/ludora/storefront/internal/services/auth"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL+"/api", srv.Client(), nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, srv
}

func withToken(token string) context.Context {
	return authsvc.WithIdentity(context.Background(), authsvc.Identity{Token: token, BuyerID: "u1"})
}

func TestGetProductAttachesBearerAndDecodes(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/entities/product/42" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Fatalf("unexpected authorization header: %q", got)
		}
		_, _ = io.WriteString(w, `{"id":42,"product_type":"file","price":"0","title":"דף עבודה","access":{"hasAccess":false,"showPurchaseButton":true}}`)
	})

	product, err := client.GetProduct(withToken("tok-1"), "42")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.ID != "42" || product.ProductType != enums.ProductTypeFile {
		t.Fatalf("unexpected product: %+v", product)
	}
	if product.Access == nil || !product.Access.ShowPurchaseButton {
		t.Fatalf("access flags not decoded: %+v", product.Access)
	}
}

func TestGetProductMapsNotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetProduct(withToken("tok"), "missing")
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestUnauthorizedMapsToLoginRequired(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.ListPurchases(context.Background(), enums.PaymentStatusPending)
	if !errors.Is(err, authsvc.ErrLoginRequired) {
		t.Fatalf("expected ErrLoginRequired, got %v", err)
	}
}

func TestErrorBodyBecomesDomainError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"already_owned","details":"כבר רכשת מוצר זה"}`)
	})

	_, err := client.CreateEntityPurchase(withToken("tok"), EntityPurchaseRequest{EntityType: enums.ProductTypeFile, EntityID: "1"})
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	if domainErr.Message() != "כבר רכשת מוצר זה" || domainErr.Code != "already_owned" {
		t.Fatalf("unexpected domain error: %+v", domainErr)
	}
	if IsNetworkError(err) {
		t.Fatalf("domain error must not be a network error")
	}
}

func TestSuccessFalseEnvelopeIsAnError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"success":false,"error":"allowance_exhausted"}`)
	})

	_, err := client.CreateEntityPurchase(withToken("tok"), EntityPurchaseRequest{EntityType: enums.ProductTypeGame, EntityID: "9"})
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "allowance_exhausted" {
		t.Fatalf("expected allowance_exhausted domain error, got %v", err)
	}
}

func TestCreatePaymentPurchaseUnwrapsEnvelopeAndSendsIdempotencyKey(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/payments/purchases" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Idempotency-Key"); got != "key-1" {
			t.Fatalf("unexpected idempotency key: %q", got)
		}
		var body PaymentPurchaseRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.PurchasableID != "c-7" || body.PurchasableType != enums.ProductTypeCourse {
			t.Fatalf("unexpected body: %+v", body)
		}
		_, _ = io.WriteString(w, `{"success":true,"data":{"id":"pur_1","payment_status":"pending","purchasable_type":"course","purchasable_id":"c-7"}}`)
	})

	out, err := client.CreatePaymentPurchase(withToken("tok"), PaymentPurchaseRequest{
		PurchasableType: enums.ProductTypeCourse,
		PurchasableID:   "c-7",
	}, "key-1")
	if err != nil {
		t.Fatalf("create payment purchase: %v", err)
	}
	if out.ID != "pur_1" || out.IsCompleted() {
		t.Fatalf("unexpected purchase: %+v", out)
	}
}

func TestNetworkFailureIsReported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	client, err := NewClient(baseURL, nil, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.GetPaymentStatus(withToken("tok"), "tx-1")
	if err == nil {
		t.Fatalf("expected transport error")
	}
	if !IsNetworkError(err) {
		t.Fatalf("expected network error classification, got %v", err)
	}
	var reqErr *RequestError
	if !errors.As(err, &reqErr) || !reqErr.Retryable {
		t.Fatalf("transport error must be marked retryable: %v", err)
	}
}

func TestUploadLessonPlanFileForwardsMultipart(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/entities/lesson-plan/lp-3/upload-file" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data; boundary=") {
			t.Fatalf("unexpected content type: %s", r.Header.Get("Content-Type"))
		}
		_, _ = io.WriteString(w, `{"success":true,"data":{"file_id":"f-1"}}`)
	})

	out, err := client.UploadLessonPlanFile(withToken("tok"), "lp-3", "multipart/form-data; boundary=xyz", strings.NewReader("--xyz--"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if string(out) != `{"file_id":"f-1"}` {
		t.Fatalf("unexpected upload response: %s", out)
	}

	if _, err := client.UploadLessonPlanFile(withToken("tok"), "lp-3", "application/json", strings.NewReader("{}")); err == nil {
		t.Fatalf("expected error for non-multipart upload")
	}
}

func TestNewClientRejectsInvalidURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "/relative"} {
		if _, err := NewClient(raw, nil, nil); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
