package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const testSecret = "marketplace-secret"

func signWithKey(t *testing.T, key string, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(key))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func signTestToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	return signWithKey(t, testSecret, claims)
}

func TestParseTokenReadsSubject(t *testing.T) {
	raw := signTestToken(t, jwt.MapClaims{"sub": "user_42", "email": "educator@example.com"})

	identity, err := NewVerifier(testSecret).ParseToken(raw)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if identity.BuyerID != "user_42" {
		t.Fatalf("unexpected buyer id: %s", identity.BuyerID)
	}
	if identity.Email != "educator@example.com" {
		t.Fatalf("unexpected email: %s", identity.Email)
	}
	if identity.Token != raw {
		t.Fatalf("token must be kept verbatim")
	}
}

func TestParseTokenFallsBackToNumericID(t *testing.T) {
	raw := signTestToken(t, jwt.MapClaims{"id": 1234})

	identity, err := NewVerifier(testSecret).ParseToken(raw)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if identity.BuyerID != "1234" {
		t.Fatalf("unexpected buyer id: %s", identity.BuyerID)
	}
}

func TestParseTokenRejectsGarbageAndEmpty(t *testing.T) {
	verifier := NewVerifier(testSecret)
	if _, err := verifier.ParseToken(""); !errors.Is(err, ErrLoginRequired) {
		t.Fatalf("expected ErrLoginRequired, got %v", err)
	}
	if _, err := verifier.ParseToken("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	raw := signTestToken(t, jwt.MapClaims{"email": "x@example.com"})
	if _, err := verifier.ParseToken(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken without subject, got %v", err)
	}
}

func TestParseTokenRejectsForeignSignature(t *testing.T) {
	raw := signWithKey(t, "attacker", jwt.MapClaims{"sub": "victim-7"})

	if _, err := NewVerifier(testSecret).ParseToken(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for token signed with another key, got %v", err)
	}
}

func TestParseTokenRejectsExpiredAndUnbounded(t *testing.T) {
	verifier := NewVerifier(testSecret)

	expired := signTestToken(t, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Minute).Unix()})
	if _, err := verifier.ParseToken(expired); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"})
	noExp, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, err := verifier.ParseToken(noExp); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken without exp, got %v", err)
	}
}

func TestParseTokenRejectsNoneAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "victim-7",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}
	if _, err := NewVerifier(testSecret).ParseToken(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for unsigned token, got %v", err)
	}
}

func TestVerifierWithoutKeyRejectsEverything(t *testing.T) {
	raw := signTestToken(t, jwt.MapClaims{"sub": "u1"})
	if _, err := NewVerifier("").ParseToken(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken without signing key, got %v", err)
	}
}

func TestExtractBearerToken(t *testing.T) {
	if token, ok := ExtractBearerToken("bearer abc.def"); !ok || token != "abc.def" {
		t.Fatalf("unexpected extraction: %q %v", token, ok)
	}
	if _, ok := ExtractBearerToken("Basic abc"); ok {
		t.Fatalf("basic auth must be rejected")
	}
	if _, ok := ExtractBearerToken("Bearer   "); ok {
		t.Fatalf("empty bearer must be rejected")
	}
}

func TestRequireIdentity(t *testing.T) {
	if _, err := RequireIdentity(context.Background()); !errors.Is(err, ErrLoginRequired) {
		t.Fatalf("expected ErrLoginRequired, got %v", err)
	}

	ctx := WithIdentity(context.Background(), Identity{Token: "t", BuyerID: "b"})
	identity, err := RequireIdentity(ctx)
	if err != nil {
		t.Fatalf("require identity: %v", err)
	}
	if token, ok := TokenFromContext(ctx); !ok || token != "t" || identity.BuyerID != "b" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}
