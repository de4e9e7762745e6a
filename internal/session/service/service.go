package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	identitydomain "unimalia/backend/internal/identity/domain"
	"unimalia/backend/internal/security"
	"unimalia/backend/internal/session/domain"
)

// SessionRepo is the minimal session repository needed by the session service.
type SessionRepo interface {
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)
	Create(ctx context.Context, s *domain.Session) error
	Revoke(ctx context.Context, id string) error
}

// Service mints and revokes cookie-backed sessions. Tokens are opaque; only
// SHA-256 hashes are persisted.
type Service struct {
	repo SessionRepo
	ttl  time.Duration
}

// NewService returns a session service with the given repository and session TTL.
func NewService(repo SessionRepo, ttl time.Duration) *Service {
	return &Service{repo: repo, ttl: ttl}
}

// Create mints a session for the identity and returns the raw token to be set
// as the session cookie. The raw token is never stored.
func (s *Service) Create(ctx context.Context, id identitydomain.Identity, clientIP string) (token string, sess *domain.Session, err error) {
	token, err = security.NewSessionToken()
	if err != nil {
		return "", nil, err
	}
	now := time.Now().UTC()
	sess = &domain.Session{
		ID:        uuid.New().String(),
		UserID:    id.ID,
		TokenHash: security.HashSessionToken(token),
		ExpiresAt: now.Add(s.ttl),
		IPAddress: clientIP,
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return "", nil, err
	}
	return token, sess, nil
}

// RevokeByToken revokes the session identified by the raw cookie token.
// Unknown or already-revoked tokens are a no-op, so logout always succeeds.
func (s *Service) RevokeByToken(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	sess, err := s.repo.GetByTokenHash(ctx, security.HashSessionToken(token))
	if err != nil {
		return err
	}
	if sess == nil {
		return nil
	}
	return s.repo.Revoke(ctx, sess.ID)
}
