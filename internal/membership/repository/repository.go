package repository

import (
	"context"

	"unimalia/backend/internal/membership/domain"
)

// Repository defines persistence for memberships.
type Repository interface {
	// ListByUser returns the user's memberships (org name joined in) in
	// creation order. Returns an empty slice, not an error, when none exist.
	ListByUser(ctx context.Context, userID string) ([]*domain.Membership, error)
	GetByUserAndOrg(ctx context.Context, userID, orgID string) (*domain.Membership, error)
	Create(ctx context.Context, m *domain.Membership) error
	UpdateRole(ctx context.Context, userID, orgID string, role domain.Role) (*domain.Membership, error)
	UpdateStatus(ctx context.Context, userID, orgID string, status domain.Status) error
}
