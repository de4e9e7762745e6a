package domain

import "time"

// Profile is a professional credential record, independent of any clinic
// membership. Holding the vet role inside one clinic does not grant
// vet-gated capabilities until this credential is verified.
type Profile struct {
	ID                 string
	UserID             string
	Category           Category
	RegistrationNumber string
	VerificationStatus VerificationStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsVerifiedVet reports whether the profile is a verified veterinary credential.
func (p *Profile) IsVerifiedVet() bool {
	return p != nil && p.Category == CategoryVet && p.VerificationStatus == VerificationVerified
}

type Category string

const (
	CategoryVet     Category = "vet"
	CategoryGroomer Category = "groomer"
	CategoryBreeder Category = "breeder"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)
