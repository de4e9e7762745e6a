package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	identitydomain "unimalia/backend/internal/identity/domain"
	"unimalia/backend/internal/identity/resolver"
	"unimalia/backend/internal/professional/domain"
)

// staticIdentity is a resolver strategy that always yields the same identity.
type staticIdentity struct {
	id *identitydomain.Identity
}

func (s *staticIdentity) Name() string { return "static" }

func (s *staticIdentity) Resolve(ctx context.Context, r *http.Request) (*identitydomain.Identity, error) {
	if s.id == nil {
		return nil, resolver.ErrNoIdentity
	}
	return s.id, nil
}

type mockProfiles struct {
	byUser map[string]*domain.Profile
}

func (m *mockProfiles) GetByUser(ctx context.Context, userID string) (*domain.Profile, error) {
	return m.byUser[userID], nil
}

func (m *mockProfiles) Create(ctx context.Context, p *domain.Profile) error {
	if m.byUser == nil {
		m.byUser = map[string]*domain.Profile{}
	}
	m.byUser[p.UserID] = p
	return nil
}

func (m *mockProfiles) UpdateVerification(ctx context.Context, userID string, status domain.VerificationStatus) error {
	if p, ok := m.byUser[userID]; ok {
		p.VerificationStatus = status
	}
	return nil
}

func newFixture(t *testing.T, identity *identitydomain.Identity) (*gin.Engine, *mockProfiles) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	profiles := &mockProfiles{byUser: map[string]*domain.Profile{}}
	h := New(profiles, nil)

	engine := gin.New()
	engine.Use(resolver.Middleware(resolver.New(&staticIdentity{id: identity})))
	engine.POST("/me/professional-profile", h.Create)
	engine.GET("/me/professional-profile", h.Get)
	return engine, profiles
}

func TestCreate_StartsPending(t *testing.T) {
	engine, profiles := newFixture(t, &identitydomain.Identity{ID: "user-1"})

	req := httptest.NewRequest(http.MethodPost, "/me/professional-profile",
		strings.NewReader(`{"category":"vet","registration_number":"VET-12345"}`))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d, body %s", w.Code, http.StatusCreated, w.Body.String())
	}
	p := profiles.byUser["user-1"]
	if p == nil {
		t.Fatal("profile was not stored")
	}
	if p.VerificationStatus != domain.VerificationPending {
		t.Errorf("verification status = %q, want %q", p.VerificationStatus, domain.VerificationPending)
	}
	var body struct {
		Profile struct {
			VerificationStatus string `json:"verification_status"`
		} `json:"profile"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Profile.VerificationStatus != "pending" {
		t.Errorf("verification_status = %q, want pending", body.Profile.VerificationStatus)
	}
}

func TestCreate_UnknownCategory(t *testing.T) {
	engine, _ := newFixture(t, &identitydomain.Identity{ID: "user-1"})

	req := httptest.NewRequest(http.MethodPost, "/me/professional-profile",
		strings.NewReader(`{"category":"wizard"}`))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCreate_OnePerUser(t *testing.T) {
	engine, profiles := newFixture(t, &identitydomain.Identity{ID: "user-1"})
	profiles.byUser["user-1"] = &domain.Profile{
		ID: "p-1", UserID: "user-1", Category: domain.CategoryGroomer,
		VerificationStatus: domain.VerificationPending,
	}

	req := httptest.NewRequest(http.MethodPost, "/me/professional-profile",
		strings.NewReader(`{"category":"vet"}`))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestGet_NoProfile(t *testing.T) {
	engine, _ := newFixture(t, &identitydomain.Identity{ID: "user-1"})

	req := httptest.NewRequest(http.MethodGet, "/me/professional-profile", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestGet_ReturnsProfile(t *testing.T) {
	engine, profiles := newFixture(t, &identitydomain.Identity{ID: "user-1"})
	profiles.byUser["user-1"] = &domain.Profile{
		ID: "p-1", UserID: "user-1", Category: domain.CategoryVet,
		RegistrationNumber: "VET-12345", VerificationStatus: domain.VerificationVerified,
	}

	req := httptest.NewRequest(http.MethodGet, "/me/professional-profile", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var body struct {
		Profile struct {
			Category           string `json:"category"`
			RegistrationNumber string `json:"registration_number"`
		} `json:"profile"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Profile.Category != "vet" || body.Profile.RegistrationNumber != "VET-12345" {
		t.Errorf("profile = %+v, want vet/VET-12345", body.Profile)
	}
}
