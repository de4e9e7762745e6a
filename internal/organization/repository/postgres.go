package repository

import (
	"context"
	"database/sql"
	"errors"

	"unimalia/backend/internal/organization/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an organization repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the organization for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Org, error) {
	const q = `SELECT id, name, status, subscription_id, created_at FROM organizations WHERE id = $1`
	var o domain.Org
	var status string
	var subscriptionID sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).Scan(&o.ID, &o.Name, &status, &subscriptionID, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	o.Status = domain.OrgStatus(status)
	o.SubscriptionID = subscriptionID.String
	return &o, nil
}

// SetSubscriptionID records the payment provider subscription for the org.
func (r *PostgresRepository) SetSubscriptionID(ctx context.Context, orgID, subscriptionID string) error {
	const q = `UPDATE organizations SET subscription_id = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, orgID, subscriptionID)
	return err
}

// Create persists the organization. The org must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, o *domain.Org) error {
	const q = `INSERT INTO organizations (id, name, status, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, q, o.ID, o.Name, string(o.Status), o.CreatedAt)
	return err
}
