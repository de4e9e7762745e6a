// Package activeorg persists which single organization a professional is
// currently acting as. The selection lives in an httpOnly cookie on the
// client; validity is always re-checked against the current membership set,
// never trusted from the cookie alone.
package activeorg

import (
	"context"
	"net/http"
	"time"

	"unimalia/backend/internal/httperr"
	identitydomain "unimalia/backend/internal/identity/domain"
	membershipdomain "unimalia/backend/internal/membership/domain"
)

// DefaultCookieName is the cookie carrying the active organization id.
const DefaultCookieName = "unimalia_active_org"

// maxAge is the selection's expiry ceiling.
const maxAge = int(365 * 24 * time.Hour / time.Second)

// MembershipLister returns the identity's memberships, fetched fresh per request.
type MembershipLister interface {
	ListByUser(ctx context.Context, userID string) ([]*membershipdomain.Membership, error)
}

// Selector reads and writes the active-organization cookie.
type Selector struct {
	CookieName  string
	Secure      bool // true in production; cookie is then HTTPS-only
	Memberships MembershipLister
}

// NewSelector returns a Selector using the given cookie name ("" for the
// default) and membership source.
func NewSelector(cookieName string, secure bool, memberships MembershipLister) *Selector {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &Selector{CookieName: cookieName, Secure: secure, Memberships: memberships}
}

// Read returns the persisted selection, or ok=false when the cookie is
// missing or empty. The value is not validated here; callers must check it
// against the current membership set.
func (s *Selector) Read(r *http.Request) (orgID string, ok bool) {
	cookie, err := r.Cookie(s.CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// Set persists orgID as the identity's active organization. Fails with
// Forbidden unless the identity holds an active membership in orgID. Setting
// the same valid org again succeeds and rewrites the same cookie value.
func (s *Selector) Set(ctx context.Context, id identitydomain.Identity, orgID string, w http.ResponseWriter) error {
	if orgID == "" {
		return httperr.ErrInvalidInput
	}
	memberships, err := s.Memberships.ListByUser(ctx, id.ID)
	if err != nil {
		return httperr.ErrServer.WithCause(err)
	}
	for _, m := range memberships {
		if m.OrgID == orgID && m.IsActive() {
			http.SetCookie(w, s.cookie(orgID, maxAge))
			return nil
		}
	}
	return httperr.ErrForbidden
}

// Clear removes the selection. Always succeeds.
func (s *Selector) Clear(w http.ResponseWriter) {
	http.SetCookie(w, s.cookie("", -1))
}

func (s *Selector) cookie(value string, age int) *http.Cookie {
	return &http.Cookie{
		Name:     s.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   age,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ComputeDefault picks which organization to preselect when no confirmed
// selection exists, in order of preference: the membership matching the
// current (possibly stale) cookie if still active, the one flagged as
// default, else the first active membership. Returns nil when the identity
// has no active memberships.
func ComputeDefault(current string, memberships []*membershipdomain.Membership) *membershipdomain.Membership {
	var first, flagged *membershipdomain.Membership
	for _, m := range memberships {
		if !m.IsActive() {
			continue
		}
		if m.OrgID == current && current != "" {
			return m
		}
		if flagged == nil && m.IsDefault {
			flagged = m
		}
		if first == nil {
			first = m
		}
	}
	if flagged != nil {
		return flagged
	}
	return first
}
