package repository

import (
	"context"

	"unimalia/backend/internal/report/domain"
)

// Repository defines persistence for lost/found reports.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Report, error)
	ListByStatus(ctx context.Context, status domain.Status, limit, offset int32) ([]*domain.Report, error)
	Create(ctx context.Context, r *domain.Report) error
	Resolve(ctx context.Context, id string) error
}
