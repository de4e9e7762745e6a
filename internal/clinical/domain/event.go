package domain

import (
	"errors"
	"time"
)

// Event is a single clinical record in an animal's history: a vaccination,
// treatment, exam or similar. Events are recorded by organization staff and
// may later be verified by a credentialed veterinarian.
type Event struct {
	ID         string
	AnimalID   string
	OrgID      string
	RecordedBy string
	Kind       string
	Notes      string
	OccurredAt time.Time
	VerifiedBy *string
	VerifiedAt *time.Time
	CreatedAt  time.Time
}

// Verified reports whether the event carries a verification mark.
func (e *Event) Verified() bool {
	return e != nil && e.VerifiedBy != nil
}

// Validate validates the event for persistence.
func (e *Event) Validate() error {
	if e.AnimalID == "" {
		return errors.New("animal id is required")
	}
	if e.OrgID == "" {
		return errors.New("org id is required")
	}
	if e.RecordedBy == "" {
		return errors.New("recorder id is required")
	}
	if e.Kind == "" {
		return errors.New("kind is required")
	}
	if e.OccurredAt.IsZero() {
		return errors.New("occurred_at is required")
	}
	return nil
}
