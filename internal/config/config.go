// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// Env is the application environment (e.g. "development", "production").
	// Cookies are marked Secure when Env is production.
	Env string `mapstructure:"APP_ENV"`

	// JWTPublicKey is the PEM-encoded public key or path to file; required to validate bearer tokens.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTPrivateKey is the PEM-encoded private key or path to file; optional, only dev/seed tooling issues tokens.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTIssuer is the expected iss claim.
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the expected aud claim.
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`

	// SessionCookieName is the cookie carrying the opaque session token.
	SessionCookieName string `mapstructure:"SESSION_COOKIE_NAME"`
	// ActiveOrgCookieName is the cookie carrying the active organization id.
	ActiveOrgCookieName string `mapstructure:"ACTIVE_ORG_COOKIE_NAME"`
	// SessionTTL is the cookie session lifetime (e.g. "720h").
	SessionTTL string `mapstructure:"SESSION_TTL"`

	// EmailAPIKey authenticates against the transactional email API. Empty disables sending.
	EmailAPIKey string `mapstructure:"EMAIL_API_KEY"`
	// EmailBaseURL is the email API endpoint.
	EmailBaseURL string `mapstructure:"EMAIL_BASE_URL"`
	// EmailFrom is the sender address for transactional email.
	EmailFrom string `mapstructure:"EMAIL_FROM"`

	// CheckoutAPIKey authenticates against the payment provider. Empty disables billing routes.
	CheckoutAPIKey string `mapstructure:"CHECKOUT_API_KEY"`
	// CheckoutBaseURL is the payment provider API base URL.
	CheckoutBaseURL string `mapstructure:"CHECKOUT_BASE_URL"`
	// CheckoutPriceID is the subscription price offered to clinics.
	CheckoutPriceID string `mapstructure:"CHECKOUT_PRICE_ID"`
	// CheckoutSuccessURL and CheckoutCancelURL are the redirect targets after checkout.
	CheckoutSuccessURL string `mapstructure:"CHECKOUT_SUCCESS_URL"`
	CheckoutCancelURL  string `mapstructure:"CHECKOUT_CANCEL_URL"`

	// Audit event stream (optional). When Kafka brokers are set, the server
	// emits authorization events to Kafka.
	// AuditKafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	AuditKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// AuditKafkaTopic is the Kafka topic for audit events (default unimalia-audit).
	AuditKafkaTopic string `mapstructure:"AUDIT_KAFKA_TOPIC"`

	// Worker-only: Loki URL for the audit worker to push logs (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the audit worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`

	// OTLPEndpoint enables OpenTelemetry tracing when set (e.g. localhost:4317).
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("JWT_ISSUER", "unimalia-auth")
	v.SetDefault("JWT_AUDIENCE", "unimalia-api")
	v.SetDefault("SESSION_COOKIE_NAME", "unimalia_session")
	v.SetDefault("ACTIVE_ORG_COOKIE_NAME", "unimalia_active_org")
	v.SetDefault("SESSION_TTL", "720h") // 30d
	v.SetDefault("EMAIL_BASE_URL", "https://api.resend.com/emails")
	v.SetDefault("EMAIL_FROM", "no-reply@unimalia.app")
	v.SetDefault("CHECKOUT_BASE_URL", "https://api.stripe.com/v1")
	v.SetDefault("AUDIT_KAFKA_TOPIC", "unimalia-audit")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "unimalia-audit-worker")
	v.SetDefault("OTLP_ENDPOINT", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.SessionCookieName == "" || cfg.ActiveOrgCookieName == "" {
		return nil, errors.New("config: cookie names must not be empty")
	}
	if cfg.SessionCookieName == cfg.ActiveOrgCookieName {
		return nil, errors.New("config: session and active-org cookies must differ")
	}

	return &cfg, nil
}

// Production reports whether the app runs in the production environment.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// SessionTTLDuration parses SessionTTL as a time.Duration. Returns 720h if unset or invalid.
func (c *Config) SessionTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil || d <= 0 {
		return 720 * time.Hour
	}
	return d
}

// AuditKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if the audit stream is enabled (non-empty list) and to create the producer.
func (c *Config) AuditKafkaBrokersList() []string {
	if c == nil || c.AuditKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.AuditKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
