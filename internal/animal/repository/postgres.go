package repository

import (
	"context"
	"database/sql"
	"errors"

	"unimalia/backend/internal/animal/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an animal repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the animal for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Animal, error) {
	const q = `SELECT id, owner_id, name, species, breed, birth_date, created_at FROM animals WHERE id = $1`
	a, err := scanAnimal(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// ListByOwner returns the owner's animals in creation order.
// Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Animal, error) {
	const q = `SELECT id, owner_id, name, species, breed, birth_date, created_at
	           FROM animals WHERE owner_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Animal{}
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Create persists the animal. The animal must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.Animal) error {
	const q = `INSERT INTO animals (id, owner_id, name, species, breed, birth_date, created_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7)`
	breed := sql.NullString{String: a.Breed, Valid: a.Breed != ""}
	var birth sql.NullTime
	if a.BirthDate != nil {
		birth = sql.NullTime{Time: *a.BirthDate, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, q, a.ID, a.OwnerID, a.Name, a.Species, breed, birth, a.CreatedAt)
	return err
}

// GetTag returns the tag for code, or nil if not found.
func (r *PostgresRepository) GetTag(ctx context.Context, code string) (*domain.Tag, error) {
	const q = `SELECT code, animal_id, status, created_at FROM animal_tags WHERE code = $1`
	var t domain.Tag
	var status string
	err := r.db.QueryRowContext(ctx, q, code).Scan(&t.Code, &t.AnimalID, &status, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	t.Status = domain.TagStatus(status)
	return &t, nil
}

// AttachTag binds a tag code to an animal. Codes are globally unique; the
// database constraint rejects reuse.
func (r *PostgresRepository) AttachTag(ctx context.Context, t *domain.Tag) error {
	const q = `INSERT INTO animal_tags (code, animal_id, status, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, q, t.Code, t.AnimalID, string(t.Status), t.CreatedAt)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnimal(row rowScanner) (*domain.Animal, error) {
	var a domain.Animal
	var breed sql.NullString
	var birth sql.NullTime
	if err := row.Scan(&a.ID, &a.OwnerID, &a.Name, &a.Species, &breed, &birth, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Breed = breed.String
	if birth.Valid {
		t := birth.Time
		a.BirthDate = &t
	}
	return &a, nil
}
