package repository

import (
	"context"

	"unimalia/backend/internal/professional/domain"
)

// Repository defines persistence for professional profiles.
type Repository interface {
	GetByUser(ctx context.Context, userID string) (*domain.Profile, error)
	Create(ctx context.Context, p *domain.Profile) error
	UpdateVerification(ctx context.Context, userID string, status domain.VerificationStatus) error
}
