package resolver

import (
	"context"
	"errors"
	"net/http"
	"time"

	identitydomain "unimalia/backend/internal/identity/domain"
	"unimalia/backend/internal/security"
	sessiondomain "unimalia/backend/internal/session/domain"
	userdomain "unimalia/backend/internal/user/domain"
)

// SessionGetter looks up a session by its stored token hash.
type SessionGetter interface {
	GetByTokenHash(ctx context.Context, tokenHash string) (*sessiondomain.Session, error)
}

// UserGetter loads the user a session belongs to.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// CookieSession resolves identity from the opaque session cookie.
type CookieSession struct {
	CookieName string
	Sessions   SessionGetter
	Users      UserGetter
}

func (c *CookieSession) Name() string { return "cookie_session" }

// Resolve looks up a non-revoked, unexpired session for the cookie token and
// returns its user. Every miss is a strategy failure, never a fatal error.
func (c *CookieSession) Resolve(ctx context.Context, r *http.Request) (*identitydomain.Identity, error) {
	cookie, err := r.Cookie(c.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoIdentity
	}
	sess, err := c.Sessions.GetByTokenHash(ctx, security.HashSessionToken(cookie.Value))
	if err != nil {
		return nil, err
	}
	if !sess.Valid(time.Now().UTC()) {
		return nil, errors.New("session expired or revoked")
	}
	user, err := c.Users.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != userdomain.UserStatusActive {
		return nil, errors.New("user missing or disabled")
	}
	return &identitydomain.Identity{ID: user.ID, Email: user.Email}, nil
}
