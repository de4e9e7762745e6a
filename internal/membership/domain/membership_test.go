package domain

import "testing"

func TestParseRole(t *testing.T) {
	valid := []string{"org_owner", "vet", "assistant", "front_desk"}
	for _, s := range valid {
		r, ok := ParseRole(s)
		if !ok {
			t.Errorf("ParseRole(%q) ok = false, want true", s)
		}
		if string(r) != s {
			t.Errorf("ParseRole(%q) = %q, want %q", s, r, s)
		}
	}
	for _, s := range []string{"", "owner", "admin", "VET", "vet "} {
		if _, ok := ParseRole(s); ok {
			t.Errorf("ParseRole(%q) ok = true, want false", s)
		}
	}
}

func TestParseStatus(t *testing.T) {
	valid := []string{"invited", "active", "suspended"}
	for _, s := range valid {
		st, ok := ParseStatus(s)
		if !ok {
			t.Errorf("ParseStatus(%q) ok = false, want true", s)
		}
		if string(st) != s {
			t.Errorf("ParseStatus(%q) = %q, want %q", s, st, s)
		}
	}
	for _, s := range []string{"", "pending", "Active"} {
		if _, ok := ParseStatus(s); ok {
			t.Errorf("ParseStatus(%q) ok = true, want false", s)
		}
	}
}

func TestIsActive(t *testing.T) {
	if (&Membership{Status: StatusInvited}).IsActive() {
		t.Error("invited membership should not be active")
	}
	if (&Membership{Status: StatusSuspended}).IsActive() {
		t.Error("suspended membership should not be active")
	}
	if !(&Membership{Status: StatusActive}).IsActive() {
		t.Error("active membership should be active")
	}
	var m *Membership
	if m.IsActive() {
		t.Error("nil membership should not be active")
	}
}
