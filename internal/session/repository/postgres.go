package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"unimalia/backend/internal/session/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByTokenHash returns the session whose stored hash matches, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	const q = `SELECT id, user_id, token_hash, expires_at, revoked_at, ip_address, created_at
	           FROM sessions WHERE token_hash = $1`
	var s domain.Session
	var revokedAt sql.NullTime
	var ip sql.NullString
	err := r.db.QueryRowContext(ctx, q, tokenHash).Scan(&s.ID, &s.UserID, &s.TokenHash, &s.ExpiresAt, &revokedAt, &ip, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if revokedAt.Valid {
		t := revokedAt.Time
		s.RevokedAt = &t
	}
	s.IPAddress = ip.String
	return &s, nil
}

// Create persists the session to the database. The session must have ID and TokenHash set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	const q = `INSERT INTO sessions (id, user_id, token_hash, expires_at, ip_address, created_at)
	           VALUES ($1, $2, $3, $4, $5, $6)`
	ip := sql.NullString{String: s.IPAddress, Valid: s.IPAddress != ""}
	_, err := r.db.ExecContext(ctx, q, s.ID, s.UserID, s.TokenHash, s.ExpiresAt, ip, s.CreatedAt)
	return err
}

// Revoke marks the session revoked. No-op if already revoked or missing.
func (r *PostgresRepository) Revoke(ctx context.Context, id string) error {
	const q = `UPDATE sessions SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`
	_, err := r.db.ExecContext(ctx, q, id, time.Now().UTC())
	return err
}

// RevokeAllByUser revokes every non-revoked session for the user.
func (r *PostgresRepository) RevokeAllByUser(ctx context.Context, userID string) error {
	const q = `UPDATE sessions SET revoked_at = $2 WHERE user_id = $1 AND revoked_at IS NULL`
	_, err := r.db.ExecContext(ctx, q, userID, time.Now().UTC())
	return err
}
