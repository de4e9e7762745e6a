package authz

import (
	membershipdomain "unimalia/backend/internal/membership/domain"
)

// Capability is a named privileged action gated by role and, for some
// capabilities, an independently verified professional credential.
type Capability string

const (
	// CapVerifyClinicalEvent marks a clinical event as vet-verified.
	CapVerifyClinicalEvent Capability = "verify_clinical_event"
	// CapRecordClinicalEvent records a clinical event for an animal.
	CapRecordClinicalEvent Capability = "record_clinical_event"
	// CapManageMembers invites members and changes their roles.
	CapManageMembers Capability = "manage_members"
	// CapManageBilling starts checkout and inspects the subscription.
	CapManageBilling Capability = "manage_billing"
)

// capabilityRoles is the closed role→capability table. A capability absent
// from the table is denied for every role; conditionals elsewhere must not
// extend it.
var capabilityRoles = map[Capability]map[membershipdomain.Role]bool{
	CapVerifyClinicalEvent: {
		membershipdomain.RoleVet:      true,
		membershipdomain.RoleOrgOwner: true,
	},
	CapRecordClinicalEvent: {
		membershipdomain.RoleVet:       true,
		membershipdomain.RoleAssistant: true,
		membershipdomain.RoleOrgOwner:  true,
	},
	CapManageMembers: {
		membershipdomain.RoleOrgOwner: true,
	},
	CapManageBilling: {
		membershipdomain.RoleOrgOwner: true,
	},
}

// vetCredentialRequired lists capabilities that additionally require a
// verified veterinary credential, regardless of the member's role label.
var vetCredentialRequired = map[Capability]bool{
	CapVerifyClinicalEvent: true,
}

// RoleAllows reports whether the role is listed for the capability.
func RoleAllows(role membershipdomain.Role, cap Capability) bool {
	return capabilityRoles[cap][role]
}

// RequiresVetCredential reports whether the capability needs a verified
// veterinary credential on top of the role check.
func RequiresVetCredential(cap Capability) bool {
	return vetCredentialRequired[cap]
}
