package repository

import (
	"context"
	"time"

	"unimalia/backend/internal/clinical/domain"
)

// Repository defines persistence for clinical events.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	ListByAnimal(ctx context.Context, animalID string) ([]*domain.Event, error)
	Create(ctx context.Context, e *domain.Event) error
	MarkVerified(ctx context.Context, id, verifierID string, at time.Time) error
}
