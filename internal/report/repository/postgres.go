package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"unimalia/backend/internal/report/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a report repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the report for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	const q = `SELECT id, reporter_id, kind, animal_id, tag_code, location, description, status, created_at, resolved_at
	           FROM lost_found_reports WHERE id = $1`
	rep, err := scanReport(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rep, nil
}

// ListByStatus returns reports with the given status, newest first, paginated.
// Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListByStatus(ctx context.Context, status domain.Status, limit, offset int32) ([]*domain.Report, error) {
	const q = `SELECT id, reporter_id, kind, animal_id, tag_code, location, description, status, created_at, resolved_at
	           FROM lost_found_reports WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, q, string(status), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Report{}
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

// Create persists the report. The report must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, rep *domain.Report) error {
	const q = `INSERT INTO lost_found_reports (id, reporter_id, kind, animal_id, tag_code, location, description, status, created_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	animalID := sql.NullString{String: rep.AnimalID, Valid: rep.AnimalID != ""}
	tagCode := sql.NullString{String: rep.TagCode, Valid: rep.TagCode != ""}
	_, err := r.db.ExecContext(ctx, q, rep.ID, rep.ReporterID, string(rep.Kind), animalID, tagCode,
		rep.Location, rep.Description, string(rep.Status), rep.CreatedAt)
	return err
}

// Resolve marks the report resolved. No-op if already resolved or missing.
func (r *PostgresRepository) Resolve(ctx context.Context, id string) error {
	const q = `UPDATE lost_found_reports SET status = 'resolved', resolved_at = $2 WHERE id = $1 AND status = 'open'`
	_, err := r.db.ExecContext(ctx, q, id, time.Now().UTC())
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*domain.Report, error) {
	var rep domain.Report
	var kind, status string
	var animalID, tagCode sql.NullString
	var resolvedAt sql.NullTime
	if err := row.Scan(&rep.ID, &rep.ReporterID, &kind, &animalID, &tagCode,
		&rep.Location, &rep.Description, &status, &rep.CreatedAt, &resolvedAt); err != nil {
		return nil, err
	}
	rep.Kind = domain.Kind(kind)
	rep.Status = domain.Status(status)
	rep.AnimalID = animalID.String
	rep.TagCode = tagCode.String
	if resolvedAt.Valid {
		t := resolvedAt.Time
		rep.ResolvedAt = &t
	}
	return &rep, nil
}
