package repository

import (
	"context"
	"database/sql"

	"unimalia/backend/internal/audit/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the audit entry.
func (r *PostgresRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	const q = `INSERT INTO audit_logs (id, org_id, user_id, action, resource, ip, metadata, created_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	userID := sql.NullString{String: entry.UserID, Valid: entry.UserID != ""}
	_, err := r.db.ExecContext(ctx, q, entry.ID, entry.OrgID, userID, entry.Action, entry.Resource,
		entry.IP, entry.Metadata, entry.CreatedAt)
	return err
}

// ListByOrg returns audit entries for an org, newest first, paginated.
func (r *PostgresRepository) ListByOrg(ctx context.Context, orgID string, limit, offset int32) ([]*domain.AuditLog, error) {
	const q = `SELECT id, org_id, user_id, action, resource, ip, metadata, created_at
	           FROM audit_logs WHERE org_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, q, orgID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.AuditLog{}
	for rows.Next() {
		var entry domain.AuditLog
		var userID sql.NullString
		if err := rows.Scan(&entry.ID, &entry.OrgID, &userID, &entry.Action, &entry.Resource,
			&entry.IP, &entry.Metadata, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.UserID = userID.String
		out = append(out, &entry)
	}
	return out, rows.Err()
}
