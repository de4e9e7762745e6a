package repository

import (
	"context"
	"database/sql"
	"errors"

	"unimalia/backend/internal/membership/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a membership repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListByUser returns all memberships for the given user, joined with the org
// name, ordered by creation time. Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Membership, error) {
	const q = `SELECT m.id, m.user_id, m.org_id, o.name, m.role, m.status, m.is_default, m.created_at
	           FROM organization_members m
	           JOIN organizations o ON o.id = m.org_id
	           WHERE m.user_id = $1
	           ORDER BY m.created_at`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Membership{}
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetByUserAndOrg returns the membership for the given user and org, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByUserAndOrg(ctx context.Context, userID, orgID string) (*domain.Membership, error) {
	const q = `SELECT m.id, m.user_id, m.org_id, o.name, m.role, m.status, m.is_default, m.created_at
	           FROM organization_members m
	           JOIN organizations o ON o.id = m.org_id
	           WHERE m.user_id = $1 AND m.org_id = $2`
	m, err := scanMembership(r.db.QueryRowContext(ctx, q, userID, orgID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// Create persists the membership. The (user_id, org_id) pair must be unique;
// the database constraint enforces it.
func (r *PostgresRepository) Create(ctx context.Context, m *domain.Membership) error {
	const q = `INSERT INTO organization_members (id, user_id, org_id, role, status, is_default, created_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, q, m.ID, m.UserID, m.OrgID, string(m.Role), string(m.Status), m.IsDefault, m.CreatedAt)
	return err
}

// UpdateRole sets the member's role and returns the updated membership, or nil if no row matched.
func (r *PostgresRepository) UpdateRole(ctx context.Context, userID, orgID string, role domain.Role) (*domain.Membership, error) {
	const q = `UPDATE organization_members SET role = $3 WHERE user_id = $1 AND org_id = $2`
	res, err := r.db.ExecContext(ctx, q, userID, orgID, string(role))
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}
	return r.GetByUserAndOrg(ctx, userID, orgID)
}

// UpdateStatus sets the membership status (e.g. invited → active on accept).
func (r *PostgresRepository) UpdateStatus(ctx context.Context, userID, orgID string, status domain.Status) error {
	const q = `UPDATE organization_members SET status = $3 WHERE user_id = $1 AND org_id = $2`
	_, err := r.db.ExecContext(ctx, q, userID, orgID, string(status))
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMembership(row rowScanner) (*domain.Membership, error) {
	var m domain.Membership
	var role, status string
	if err := row.Scan(&m.ID, &m.UserID, &m.OrgID, &m.OrgName, &role, &status, &m.IsDefault, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Role = domain.Role(role)
	m.Status = domain.Status(status)
	return &m, nil
}
