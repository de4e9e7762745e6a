package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"unimalia/backend/internal/clinical/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a clinical event repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the event for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	const q = `SELECT id, animal_id, org_id, recorded_by, kind, notes, occurred_at, verified_by, verified_at, created_at
	           FROM clinical_events WHERE id = $1`
	e, err := scanEvent(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

// ListByAnimal returns all events for the animal, most recent occurrence first.
// An animal with no events yields an empty slice, not an error.
func (r *PostgresRepository) ListByAnimal(ctx context.Context, animalID string) ([]*domain.Event, error) {
	const q = `SELECT id, animal_id, org_id, recorded_by, kind, notes, occurred_at, verified_by, verified_at, created_at
	           FROM clinical_events WHERE animal_id = $1 ORDER BY occurred_at DESC, created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, animalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Create persists the event. The event must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, e *domain.Event) error {
	const q = `INSERT INTO clinical_events (id, animal_id, org_id, recorded_by, kind, notes, occurred_at, created_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, q, e.ID, e.AnimalID, e.OrgID, e.RecordedBy, e.Kind, e.Notes, e.OccurredAt, e.CreatedAt)
	return err
}

// MarkVerified records the verification mark on an unverified event.
// Already-verified events are left untouched so the first verifier wins.
func (r *PostgresRepository) MarkVerified(ctx context.Context, id, verifierID string, at time.Time) error {
	const q = `UPDATE clinical_events SET verified_by = $2, verified_at = $3 WHERE id = $1 AND verified_by IS NULL`
	_, err := r.db.ExecContext(ctx, q, id, verifierID, at)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	var e domain.Event
	var verifiedBy sql.NullString
	var verifiedAt sql.NullTime
	if err := row.Scan(&e.ID, &e.AnimalID, &e.OrgID, &e.RecordedBy, &e.Kind, &e.Notes,
		&e.OccurredAt, &verifiedBy, &verifiedAt, &e.CreatedAt); err != nil {
		return nil, err
	}
	if verifiedBy.Valid {
		s := verifiedBy.String
		e.VerifiedBy = &s
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time
		e.VerifiedAt = &t
	}
	return &e, nil
}
