package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"unimalia/backend/internal/professional/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a professional-profile repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByUser returns the user's professional profile, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByUser(ctx context.Context, userID string) (*domain.Profile, error) {
	const q = `SELECT id, user_id, category, registration_number, verification_status, created_at, updated_at
	           FROM professional_profiles WHERE user_id = $1`
	var p domain.Profile
	var category, status string
	var regNum sql.NullString
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&p.ID, &p.UserID, &category, &regNum, &status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	p.Category = domain.Category(category)
	p.RegistrationNumber = regNum.String
	p.VerificationStatus = domain.VerificationStatus(status)
	return &p, nil
}

// Create persists the profile. The profile must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, p *domain.Profile) error {
	const q = `INSERT INTO professional_profiles (id, user_id, category, registration_number, verification_status, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7)`
	regNum := sql.NullString{String: p.RegistrationNumber, Valid: p.RegistrationNumber != ""}
	_, err := r.db.ExecContext(ctx, q, p.ID, p.UserID, string(p.Category), regNum, string(p.VerificationStatus), p.CreatedAt, p.UpdatedAt)
	return err
}

// UpdateVerification sets the profile's verification status.
func (r *PostgresRepository) UpdateVerification(ctx context.Context, userID string, status domain.VerificationStatus) error {
	const q = `UPDATE professional_profiles SET verification_status = $2, updated_at = $3 WHERE user_id = $1`
	_, err := r.db.ExecContext(ctx, q, userID, string(status), time.Now().UTC())
	return err
}
