package resolver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"unimalia/backend/internal/httperr"
	"unimalia/backend/internal/security"
	sessiondomain "unimalia/backend/internal/session/domain"
	userdomain "unimalia/backend/internal/user/domain"
)

const testCookieName = "unimalia_session"

// mockSessions implements SessionGetter for tests.
type mockSessions struct {
	byHash map[string]*sessiondomain.Session
	err    error
}

func (m *mockSessions) GetByTokenHash(ctx context.Context, tokenHash string) (*sessiondomain.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byHash[tokenHash], nil
}

// mockUsers implements UserGetter for tests.
type mockUsers struct {
	byID map[string]*userdomain.User
}

func (m *mockUsers) GetByID(ctx context.Context, id string) (*userdomain.User, error) {
	return m.byID[id], nil
}

// mockTokens implements TokenValidator for tests.
type mockTokens struct {
	userID string
	email  string
	err    error
}

func (m *mockTokens) ValidateAccess(token string) (string, string, error) {
	if m.err != nil {
		return "", "", m.err
	}
	return m.userID, m.email, nil
}

func newCookieStrategy(token string, userID string) *CookieSession {
	return &CookieSession{
		CookieName: testCookieName,
		Sessions: &mockSessions{byHash: map[string]*sessiondomain.Session{
			security.HashSessionToken(token): {
				ID:        "session-1",
				UserID:    userID,
				TokenHash: security.HashSessionToken(token),
				ExpiresAt: time.Now().Add(time.Hour),
			},
		}},
		Users: &mockUsers{byID: map[string]*userdomain.User{
			userID: {ID: userID, Email: "owner@example.com", Status: userdomain.UserStatusActive},
		}},
	}
}

func requestWithCookie(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: token})
	}
	return req
}

func TestResolve_CookieWins(t *testing.T) {
	r := New(
		newCookieStrategy("tok-1", "user-1"),
		&BearerToken{Tokens: &mockTokens{err: errors.New("should not be called")}},
	)

	id, err := r.Resolve(context.Background(), requestWithCookie("tok-1"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id.ID != "user-1" {
		t.Errorf("id = %q, want %q", id.ID, "user-1")
	}
	if id.Email != "owner@example.com" {
		t.Errorf("email = %q, want %q", id.Email, "owner@example.com")
	}
}

func TestResolve_FallsThroughToBearer(t *testing.T) {
	// Cookie lookup fails hard; bearer token still resolves.
	r := New(
		&CookieSession{CookieName: testCookieName, Sessions: &mockSessions{err: errors.New("store down")}, Users: &mockUsers{}},
		&BearerToken{Tokens: &mockTokens{userID: "user-2", email: "vet@example.com"}},
	)

	req := requestWithCookie("tok-1")
	req.Header.Set("Authorization", "Bearer some.jwt.token")
	id, err := r.Resolve(context.Background(), req)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id.ID != "user-2" {
		t.Errorf("id = %q, want %q", id.ID, "user-2")
	}
}

func TestResolve_AllFail_ReturnsUnauthorizedNotStrategyError(t *testing.T) {
	cookieErr := errors.New("session store exploded")
	r := New(
		&CookieSession{CookieName: testCookieName, Sessions: &mockSessions{err: cookieErr}, Users: &mockUsers{}},
		&BearerToken{Tokens: &mockTokens{err: security.ErrInvalidToken}},
	)

	// Cookie present so the cookie strategy throws; bearer header absent.
	_, err := r.Resolve(context.Background(), requestWithCookie("tok-1"))
	if err == nil {
		t.Fatal("Resolve should fail")
	}
	if !errors.Is(err, httperr.ErrUnauthorized) {
		t.Errorf("err = %v, want Unauthorized", err)
	}
	// The cookie-path failure is retained for diagnostics, not surfaced alone.
	if !errors.Is(err, cookieErr) {
		t.Error("joined failures should include the cookie strategy error")
	}
}

func TestResolve_NoCredentialsAtAll(t *testing.T) {
	r := New(
		&CookieSession{CookieName: testCookieName, Sessions: &mockSessions{byHash: map[string]*sessiondomain.Session{}}, Users: &mockUsers{}},
		&BearerToken{Tokens: &mockTokens{userID: "ignored"}},
	)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	_, err := r.Resolve(context.Background(), req)
	if !errors.Is(err, httperr.ErrUnauthorized) {
		t.Errorf("err = %v, want Unauthorized", err)
	}
	if !errors.Is(err, ErrNoIdentity) {
		t.Error("joined failures should include ErrNoIdentity")
	}
}

func TestCookieSession_RejectsExpiredAndRevoked(t *testing.T) {
	now := time.Now().UTC()
	revoked := now.Add(-time.Minute)
	cases := []struct {
		name string
		sess *sessiondomain.Session
	}{
		{"expired", &sessiondomain.Session{ID: "s1", UserID: "user-1", ExpiresAt: now.Add(-time.Hour)}},
		{"revoked", &sessiondomain.Session{ID: "s2", UserID: "user-1", ExpiresAt: now.Add(time.Hour), RevokedAt: &revoked}},
		{"missing", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hash := security.HashSessionToken("tok-1")
			sessions := &mockSessions{byHash: map[string]*sessiondomain.Session{}}
			if tc.sess != nil {
				tc.sess.TokenHash = hash
				sessions.byHash[hash] = tc.sess
			}
			strat := &CookieSession{
				CookieName: testCookieName,
				Sessions:   sessions,
				Users: &mockUsers{byID: map[string]*userdomain.User{
					"user-1": {ID: "user-1", Email: "u@example.com", Status: userdomain.UserStatusActive},
				}},
			}
			if _, err := strat.Resolve(context.Background(), requestWithCookie("tok-1")); err == nil {
				t.Error("strategy should fail")
			}
		})
	}
}

func TestCookieSession_RejectsDisabledUser(t *testing.T) {
	strat := newCookieStrategy("tok-1", "user-1")
	strat.Users = &mockUsers{byID: map[string]*userdomain.User{
		"user-1": {ID: "user-1", Email: "u@example.com", Status: userdomain.UserStatusDisabled},
	}}
	if _, err := strat.Resolve(context.Background(), requestWithCookie("tok-1")); err == nil {
		t.Error("disabled user should not resolve")
	}
}

func TestExtractBearer(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"BEARER  abc ", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		if got := extractBearer(req); got != tc.want {
			t.Errorf("extractBearer(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}
