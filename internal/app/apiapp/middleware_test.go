package apiapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	jwt "github.com/golang-jwt/jwt/v5"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ludora/storefront/internal/domain/model"
	redrepo "github.com/ludora/storefront/internal/repo/redis"
	authsvc "github.com/ludora/storefront/internal/services/auth"
	cartsvc "github.com/ludora/storefront/internal/services/cart"
)

const marketSecret = "marketplace-secret"

func signedToken(t *testing.T, key string, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func newAuthMiddleware() func(http.Handler) http.Handler {
	return AuthMiddleware(authsvc.NewVerifier(marketSecret), zap.NewNop())
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	mw := newAuthMiddleware()

	req := httptest.NewRequest(http.MethodPost, "/v1/products/1/purchase", nil)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called without a token")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}

	var payload struct {
		Code  string `json:"code"`
		Retry bool   `json:"retry"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Code != "LOGIN_REQUIRED" || !payload.Retry {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestAuthMiddlewareRejectsGarbageToken(t *testing.T) {
	mw := newAuthMiddleware()

	req := httptest.NewRequest(http.MethodGet, "/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called on unreadable token")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddlewareSetsIdentity(t *testing.T) {
	mw := newAuthMiddleware()
	token := signedToken(t, marketSecret, jwt.MapClaims{"id": "user-42", "email": "educator@example.com"})

	req := httptest.NewRequest(http.MethodGet, "/v1/cart", nil)
	req.Header.Set("Authorization", "bearer "+token)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := authsvc.RequireIdentity(r.Context())
		if err != nil {
			t.Fatalf("identity missing: %v", err)
		}
		if identity.BuyerID != "user-42" || identity.Token != token {
			t.Fatalf("unexpected identity: %+v", identity)
		}
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestAuthMiddlewareRejectsForeignSignature(t *testing.T) {
	mw := newAuthMiddleware()
	token := signedToken(t, "attacker", jwt.MapClaims{"sub": "victim-7"})

	req := httptest.NewRequest(http.MethodGet, "/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called for a token signed with another key")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddlewareWithoutVerifierFails(t *testing.T) {
	mw := AuthMiddleware(nil, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, marketSecret, jwt.MapClaims{"sub": "u1"}))
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called without a verifier")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusInternalServerError)
	}
}

func TestCartRouteIsScopedToVerifiedBuyer(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	cartRepo := redrepo.NewCartRepo(client, time.Hour)
	if err := cartRepo.Put(context.Background(), "victim-7", model.CartItem{
		PurchaseID: "pur-secret",
		Title:      "Victim course",
		Amount:     "120",
		AddedAt:    time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	r := chi.NewRouter()
	RegisterRoutes(r, Dependencies{
		CartService: cartsvc.NewService(cartRepo, nil),
		Verifier:    authsvc.NewVerifier(marketSecret),
		Logger:      zap.NewNop(),
	})

	forged := httptest.NewRequest(http.MethodGet, "/v1/cart", nil)
	forged.Header.Set("Authorization", "Bearer "+signedToken(t, "attacker", jwt.MapClaims{"sub": "victim-7"}))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, forged)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status for forged token: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
	if strings.Contains(rr.Body.String(), "pur-secret") {
		t.Fatalf("forged token must not expose the cart: %s", rr.Body.String())
	}

	genuine := httptest.NewRequest(http.MethodGet, "/v1/cart", nil)
	genuine.Header.Set("Authorization", "Bearer "+signedToken(t, marketSecret, jwt.MapClaims{"sub": "victim-7"}))
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, genuine)

	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "pur-secret") {
		t.Fatalf("expected the buyer's own cart: status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestRequestLoggerRecordsStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := chi.NewRouter()
	ApplyMiddlewares(r, zap.New(core))
	r.Get("/missing", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/missing", nil))

	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 1 {
		t.Fatalf("expected one request log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusTeapot) {
		t.Fatalf("unexpected status field: %v", fields["status"])
	}
	if fields["request_id"] == "" {
		t.Fatalf("request id must be logged")
	}
}

func TestWithDeadlineOutlivesServerWriteTimeout(t *testing.T) {
	slow := func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusCreated)
	}

	r := chi.NewRouter()
	r.With(WithDeadline(2*time.Second)).Post("/upload", func(w http.ResponseWriter, r *http.Request) {
		deadline, ok := r.Context().Deadline()
		if !ok || time.Until(deadline) > 2*time.Second {
			t.Errorf("request context must carry the route deadline, got %v %v", deadline, ok)
		}
		slow(w, r)
	})
	r.Post("/plain", slow)

	srv := httptest.NewUnstartedServer(r)
	srv.Config.WriteTimeout = 100 * time.Millisecond
	srv.Start()
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/upload", "text/plain", strings.NewReader("lesson plan"))
	if err != nil {
		t.Fatalf("upload route: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected status: got %d want %d", resp.StatusCode, http.StatusCreated)
	}

	if resp, err := http.Post(srv.URL+"/plain", "text/plain", strings.NewReader("x")); err == nil {
		_ = resp.Body.Close()
		t.Fatalf("route without its own deadline must hit the server write timeout")
	}
}

func TestUploadDeadlineCoversMarketTimeout(t *testing.T) {
	if got := uploadDeadline(2 * time.Minute); got <= 2*time.Minute {
		t.Fatalf("upload deadline %s must exceed the market upload timeout", got)
	}
	if got := uploadDeadline(0); got <= 2*time.Minute {
		t.Fatalf("default upload deadline too short: %s", got)
	}
}
