package auth

import "context"

type identityContextKey string

const identityKey identityContextKey = "auth_identity"

// Identity is the caller as presented to the marketplace: the raw bearer token
// plus the buyer id read from its claims.
type Identity struct {
	Token   string
	BuyerID string
	Email   string
	Role    string
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	identity, ok := ctx.Value(identityKey).(Identity)
	if !ok || identity.Token == "" {
		return Identity{}, false
	}
	return identity, ok
}

// TokenFromContext is the only accessor for the outbound bearer token.
func TokenFromContext(ctx context.Context) (string, bool) {
	identity, ok := IdentityFromContext(ctx)
	if !ok {
		return "", false
	}
	return identity.Token, true
}

// RequireIdentity returns ErrLoginRequired when the request carries no token.
func RequireIdentity(ctx context.Context) (Identity, error) {
	identity, ok := IdentityFromContext(ctx)
	if !ok || identity.BuyerID == "" {
		return Identity{}, ErrLoginRequired
	}
	return identity, nil
}
