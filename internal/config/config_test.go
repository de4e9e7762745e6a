package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.JWTIssuer != "unimalia-auth" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "unimalia-auth")
	}
	if cfg.JWTAudience != "unimalia-api" {
		t.Errorf("JWTAudience = %q, want %q", cfg.JWTAudience, "unimalia-api")
	}
	if cfg.SessionCookieName != "unimalia_session" {
		t.Errorf("SessionCookieName = %q, want %q", cfg.SessionCookieName, "unimalia_session")
	}
	if cfg.ActiveOrgCookieName != "unimalia_active_org" {
		t.Errorf("ActiveOrgCookieName = %q, want %q", cfg.ActiveOrgCookieName, "unimalia_active_org")
	}
	if cfg.SessionTTL != "720h" {
		t.Errorf("SessionTTL = %q, want %q", cfg.SessionTTL, "720h")
	}
	if cfg.AuditKafkaTopic != "unimalia-audit" {
		t.Errorf("AuditKafkaTopic = %q, want %q", cfg.AuditKafkaTopic, "unimalia-audit")
	}
	if cfg.Production() {
		t.Error("Production() should be false by default")
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("APP_ENV", "production")
	os.Setenv("SESSION_TTL", "1h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if !cfg.Production() {
		t.Error("Production() should be true")
	}
	if cfg.SessionTTLDuration() != time.Hour {
		t.Errorf("SessionTTLDuration = %v, want 1h", cfg.SessionTTLDuration())
	}
}

func TestLoad_CookieNamesMustDiffer(t *testing.T) {
	os.Clearenv()
	os.Setenv("SESSION_COOKIE_NAME", "same")
	os.Setenv("ACTIVE_ORG_COOKIE_NAME", "same")

	if _, err := Load(); err == nil {
		t.Fatal("Load should reject identical cookie names")
	}
}

func TestSessionTTLDuration_InvalidFallsBack(t *testing.T) {
	cfg := &Config{SessionTTL: "not-a-duration"}
	if got := cfg.SessionTTLDuration(); got != 720*time.Hour {
		t.Errorf("SessionTTLDuration = %v, want 720h", got)
	}
	cfg.SessionTTL = "-5m"
	if got := cfg.SessionTTLDuration(); got != 720*time.Hour {
		t.Errorf("SessionTTLDuration = %v, want 720h", got)
	}
}

func TestAuditKafkaBrokersList(t *testing.T) {
	cfg := &Config{AuditKafkaBrokers: "localhost:9092, broker2:9092 ,,"}
	got := cfg.AuditKafkaBrokersList()
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (%v)", len(got), got)
	}
	if got[0] != "localhost:9092" || got[1] != "broker2:9092" {
		t.Errorf("brokers = %v", got)
	}
	var nilCfg *Config
	if nilCfg.AuditKafkaBrokersList() != nil {
		t.Error("nil config should return nil brokers")
	}
}
