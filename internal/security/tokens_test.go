package security

import (
	"strings"
	"testing"
	"time"
)

func TestIssueAndValidateAccess(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}

	token, expiresAt, err := p.IssueAccess("user-1", "vet@example.com")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if token == "" {
		t.Fatal("token should not be empty")
	}
	if !expiresAt.After(time.Now()) {
		t.Errorf("expiresAt = %v, should be in the future", expiresAt)
	}

	userID, email, err := p.ValidateAccess(token)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if userID != "user-1" {
		t.Errorf("userID = %q, want %q", userID, "user-1")
	}
	if email != "vet@example.com" {
		t.Errorf("email = %q, want %q", email, "vet@example.com")
	}
}

func TestValidateAccess_Malformed(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	for _, tok := range []string{"", "garbage", "a.b.c"} {
		if _, _, err := p.ValidateAccess(tok); err == nil {
			t.Errorf("ValidateAccess(%q) should fail", tok)
		}
	}
}

func TestValidateAccess_WrongIssuer(t *testing.T) {
	signer, err := ParsePrivateKey(TestPrivateKeyPEM)
	if err != nil {
		t.Fatalf("ParsePrivateKey: %v", err)
	}
	pub, err := ParsePublicKey(TestPublicKeyPEM)
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	issuing := NewTokenProvider(signer, pub, "other-issuer", "test-audience", time.Minute)
	token, _, err := issuing.IssueAccess("user-1", "u@example.com")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	validating := NewTokenProvider(nil, pub, "test-issuer", "test-audience", time.Minute)
	if _, _, err := validating.ValidateAccess(token); err == nil {
		t.Error("token with wrong issuer should be rejected")
	}
}

func TestValidateAccess_Expired(t *testing.T) {
	signer, _ := ParsePrivateKey(TestPrivateKeyPEM)
	pub, _ := ParsePublicKey(TestPublicKeyPEM)
	p := NewTokenProvider(signer, pub, "test-issuer", "test-audience", -time.Minute)
	token, _, err := p.IssueAccess("user-1", "u@example.com")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, _, err := p.ValidateAccess(token); err == nil {
		t.Error("expired token should be rejected")
	}
}

func TestIssueAccess_VerifyOnlyProvider(t *testing.T) {
	pub, _ := ParsePublicKey(TestPublicKeyPEM)
	p := NewTokenProvider(nil, pub, "test-issuer", "test-audience", time.Minute)
	if _, _, err := p.IssueAccess("user-1", "u@example.com"); err == nil {
		t.Error("verify-only provider should refuse to issue")
	}
}

func TestSessionToken_HashRoundTrip(t *testing.T) {
	tok, err := NewSessionToken()
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	if len(tok) < 40 {
		t.Errorf("token length = %d, want >= 40", len(tok))
	}
	if strings.ContainsAny(tok, "+/=") {
		t.Errorf("token %q should be URL-safe", tok)
	}
	hash := HashSessionToken(tok)
	if !SessionTokenHashEqual(tok, hash) {
		t.Error("hash of token should match stored hash")
	}
	if SessionTokenHashEqual(tok+"x", hash) {
		t.Error("different token should not match stored hash")
	}
}

func TestNewSessionToken_Unique(t *testing.T) {
	a, _ := NewSessionToken()
	b, _ := NewSessionToken()
	if a == b {
		t.Error("two session tokens should not be equal")
	}
}
