package domain

import (
	"errors"
	"time"
)

// Org represents a clinic or professional entity owning tenant-scoped records.
type Org struct {
	ID             string
	Name           string
	Status         OrgStatus
	SubscriptionID string // payment provider subscription, empty until checkout completes
	CreatedAt      time.Time
}

type OrgStatus string

const (
	OrgStatusActive    OrgStatus = "active"
	OrgStatusSuspended OrgStatus = "suspended"
)

// Validate validates the organization for persistence. Returns an error describing the first validation failure.
func (o *Org) Validate() error {
	if o.Name == "" {
		return errors.New("name is required")
	}
	if o.Status == "" {
		o.Status = OrgStatusActive
	}
	return nil
}
