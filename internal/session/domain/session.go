package domain

import "time"

// Session is a cookie-backed browser session. The cookie holds an opaque
// token; only its SHA-256 hash is stored here.
type Session struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time // nil when not revoked
	IPAddress string
	CreatedAt time.Time
}

// Valid reports whether the session can authenticate a request at the given time.
func (s *Session) Valid(now time.Time) bool {
	return s != nil && s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
