// Package authz composes identity, active-organization selection, and
// membership into yes/no answers for privileged actions. Checks are strictly
// sequential and short-circuit; a failed check is final for the request.
package authz

import (
	"context"

	"unimalia/backend/internal/httperr"
	identitydomain "unimalia/backend/internal/identity/domain"
	membershipdomain "unimalia/backend/internal/membership/domain"
	professionaldomain "unimalia/backend/internal/professional/domain"
)

// MembershipSource reads membership rows, fetched fresh per call.
type MembershipSource interface {
	ListByUser(ctx context.Context, userID string) ([]*membershipdomain.Membership, error)
	GetByUserAndOrg(ctx context.Context, userID, orgID string) (*membershipdomain.Membership, error)
}

// ProfileGetter returns a user's professional profile, nil when none.
type ProfileGetter interface {
	GetByUser(ctx context.Context, userID string) (*professionaldomain.Profile, error)
}

// Guard answers role-gated authorization questions. Membership data is read
// fresh on every call; nothing is cached between requests.
type Guard struct {
	memberships   MembershipSource
	professionals ProfileGetter
}

// NewGuard returns a Guard over the given membership and professional sources.
func NewGuard(memberships MembershipSource, professionals ProfileGetter) *Guard {
	return &Guard{memberships: memberships, professionals: professionals}
}

// RequireActiveOrg validates the persisted selection against the identity's
// current memberships. selection is the raw cookie value ("" when absent).
//
// Distinguishes "never chose" (ActiveOrgRequired → show a picker) from
// "choice no longer valid" (ActiveOrgForbidden → revoked access or stale
// cookie). An identity with no memberships at all gets ActiveOrgRequired
// whatever the cookie says. Never falls back to a default.
func (g *Guard) RequireActiveOrg(ctx context.Context, id identitydomain.Identity, selection string) (string, error) {
	memberships, err := g.memberships.ListByUser(ctx, id.ID)
	if err != nil {
		return "", httperr.ErrServer.WithCause(err)
	}
	if len(memberships) == 0 || selection == "" {
		return "", httperr.ErrActiveOrgRequired
	}
	for _, m := range memberships {
		if m.OrgID == selection && m.IsActive() {
			return selection, nil
		}
	}
	return "", httperr.ErrActiveOrgForbidden
}

// RequireCapability checks that the identity, acting as orgID, may perform
// the capability. The membership must be active and its role listed in the
// capability table; vet-credentialed capabilities additionally need a
// verified veterinary profile. Returns Forbidden when the role check fails
// and VetNotVerified when only the credential check fails.
func (g *Guard) RequireCapability(ctx context.Context, id identitydomain.Identity, orgID string, cap Capability) error {
	m, err := g.memberships.GetByUserAndOrg(ctx, id.ID, orgID)
	if err != nil {
		return httperr.ErrServer.WithCause(err)
	}
	if !m.IsActive() || !RoleAllows(m.Role, cap) {
		return httperr.ErrForbidden
	}
	if !RequiresVetCredential(cap) {
		return nil
	}
	profile, err := g.professionals.GetByUser(ctx, id.ID)
	if err != nil {
		return httperr.ErrServer.WithCause(err)
	}
	if !profile.IsVerifiedVet() {
		return httperr.ErrVetNotVerified
	}
	return nil
}
