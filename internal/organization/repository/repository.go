package repository

import (
	"context"

	"unimalia/backend/internal/organization/domain"
)

// Repository defines persistence for organizations.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Org, error)
	Create(ctx context.Context, o *domain.Org) error
	SetSubscriptionID(ctx context.Context, orgID, subscriptionID string) error
}
