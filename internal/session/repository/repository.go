package repository

import (
	"context"

	"unimalia/backend/internal/session/domain"
)

// Repository defines persistence for sessions.
type Repository interface {
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)
	Create(ctx context.Context, s *domain.Session) error
	Revoke(ctx context.Context, id string) error
	RevokeAllByUser(ctx context.Context, userID string) error
}
