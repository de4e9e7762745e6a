package domain

import (
	"errors"
	"time"
)

// Report is a lost or found declaration for an animal. Lost reports reference
// a registered animal; found reports usually carry only a scanned tag code.
type Report struct {
	ID          string
	ReporterID  string
	Kind        Kind
	AnimalID    string
	TagCode     string
	Location    string
	Description string
	Status      Status
	CreatedAt   time.Time
	ResolvedAt  *time.Time
}

// Validate validates the report for persistence.
func (r *Report) Validate() error {
	if r.Kind != KindLost && r.Kind != KindFound {
		return errors.New("kind must be lost or found")
	}
	if r.Kind == KindLost && r.AnimalID == "" {
		return errors.New("lost report requires an animal")
	}
	if r.Kind == KindFound && r.AnimalID == "" && r.TagCode == "" {
		return errors.New("found report requires an animal or a tag code")
	}
	return nil
}

type Kind string

const (
	KindLost  Kind = "lost"
	KindFound Kind = "found"
)

type Status string

const (
	StatusOpen     Status = "open"
	StatusResolved Status = "resolved"
)
