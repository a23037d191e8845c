package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"
)

var (
	ErrLoginRequired = errors.New("login required")
	ErrInvalidToken  = errors.New("invalid token")
)

type tokenClaims struct {
	LegacyID any    `json:"id"`
	UserID   any    `json:"user_id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier checks marketplace access tokens against the marketplace's signing
// key. Local per-buyer state is keyed by the subject, so a token is only
// trusted after its signature and expiry check out.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(strings.TrimSpace(secret))}
}

func (v *Verifier) ParseToken(raw string) (Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identity{}, ErrLoginRequired
	}
	if v == nil || len(v.secret) == 0 {
		return Identity{}, fmt.Errorf("%w: verifier has no signing key", ErrInvalidToken)
	}

	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(_ *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithExpirationRequired())
	if err != nil || token == nil || !token.Valid {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	buyerID := firstNonEmpty(claimString(claims.Subject), claimString(claims.LegacyID), claimString(claims.UserID))
	if buyerID == "" {
		return Identity{}, fmt.Errorf("%w: no subject", ErrInvalidToken)
	}

	return Identity{
		Token:   raw,
		BuyerID: buyerID,
		Email:   strings.TrimSpace(claims.Email),
		Role:    strings.TrimSpace(claims.Role),
	}, nil
}

func ExtractBearerToken(value string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(value), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func claimString(v any) string {
	switch typed := v.(type) {
	case string:
		return strings.TrimSpace(typed)
	case float64:
		return strconv.FormatInt(int64(typed), 10)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(typed))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
