package domain

import (
	"errors"
	"time"
)

// Animal is a registered pet, owned by a user.
type Animal struct {
	ID        string
	OwnerID   string
	Name      string
	Species   string
	Breed     string
	BirthDate *time.Time
	CreatedAt time.Time
}

// Validate validates the animal for persistence.
func (a *Animal) Validate() error {
	if a.Name == "" {
		return errors.New("name is required")
	}
	if a.Species == "" {
		return errors.New("species is required")
	}
	return nil
}

// Tag binds a physical QR/barcode tag code to an animal. Codes are unique
// across the system; a scan resolves the code to the animal.
type Tag struct {
	Code      string
	AnimalID  string
	Status    TagStatus
	CreatedAt time.Time
}

type TagStatus string

const (
	TagStatusActive   TagStatus = "active"
	TagStatusDisabled TagStatus = "disabled"
)
