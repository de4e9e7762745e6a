package resolver

import (
	"context"
	"net/http"
	"strings"

	identitydomain "unimalia/backend/internal/identity/domain"
)

const bearerPrefix = "bearer "

// TokenValidator verifies a bearer access token and returns the identity claims.
type TokenValidator interface {
	ValidateAccess(token string) (userID, email string, err error)
}

// BearerToken resolves identity from an `Authorization: Bearer <jwt>` header.
type BearerToken struct {
	Tokens TokenValidator
}

func (b *BearerToken) Name() string { return "bearer_token" }

func (b *BearerToken) Resolve(ctx context.Context, r *http.Request) (*identitydomain.Identity, error) {
	token := extractBearer(r)
	if token == "" {
		return nil, ErrNoIdentity
	}
	userID, email, err := b.Tokens.ValidateAccess(token)
	if err != nil {
		return nil, err
	}
	return &identitydomain.Identity{ID: userID, Email: email}, nil
}

// extractBearer returns the Bearer token from the header, or "" if missing or malformed.
func extractBearer(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
