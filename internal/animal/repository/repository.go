package repository

import (
	"context"

	"unimalia/backend/internal/animal/domain"
)

// Repository defines persistence for animals and their tags.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Animal, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Animal, error)
	Create(ctx context.Context, a *domain.Animal) error
	GetTag(ctx context.Context, code string) (*domain.Tag, error)
	AttachTag(ctx context.Context, t *domain.Tag) error
}
