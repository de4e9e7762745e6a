package domain

import (
	"time"
)

// Membership links a user to an organization (clinic) with a role and status.
// At most one membership exists per (user, org) pair.
type Membership struct {
	ID        string
	UserID    string
	OrgID     string
	OrgName   string
	Role      Role
	Status    Status
	IsDefault bool
	CreatedAt time.Time
}

// IsActive reports whether the membership currently grants access to its org.
func (m *Membership) IsActive() bool {
	return m != nil && m.Status == StatusActive
}

// Role is the closed set of roles a member can hold inside an organization.
type Role string

const (
	RoleOrgOwner  Role = "org_owner"
	RoleVet       Role = "vet"
	RoleAssistant Role = "assistant"
	RoleFrontDesk Role = "front_desk"
)

// ParseRole maps a stored role string to a Role; ok is false for unknown values.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleOrgOwner, RoleVet, RoleAssistant, RoleFrontDesk:
		return Role(s), true
	}
	return "", false
}

// Status is the closed set of membership lifecycle states.
type Status string

const (
	StatusInvited   Status = "invited"
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

// ParseStatus maps a stored status string to a Status; ok is false for unknown values.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusInvited, StatusActive, StatusSuspended:
		return Status(s), true
	}
	return "", false
}
