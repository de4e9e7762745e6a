package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"unimalia/backend/internal/activeorg"
	identitydomain "unimalia/backend/internal/identity/domain"
	"unimalia/backend/internal/identity/resolver"
	"unimalia/backend/internal/membership/domain"
	orgdomain "unimalia/backend/internal/organization/domain"
	"unimalia/backend/internal/platform/authz"
	professionaldomain "unimalia/backend/internal/professional/domain"
	userdomain "unimalia/backend/internal/user/domain"
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

// mockMemberships implements the membership repository, authz.MembershipSource
// and activeorg.MembershipLister.
type mockMemberships struct {
	rows []*domain.Membership
}

func (m *mockMemberships) ListByUser(ctx context.Context, userID string) ([]*domain.Membership, error) {
	var out []*domain.Membership
	for _, r := range m.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockMemberships) GetByUserAndOrg(ctx context.Context, userID, orgID string) (*domain.Membership, error) {
	for _, r := range m.rows {
		if r.UserID == userID && r.OrgID == orgID {
			return r, nil
		}
	}
	return nil, nil
}

func (m *mockMemberships) Create(ctx context.Context, row *domain.Membership) error {
	m.rows = append(m.rows, row)
	return nil
}

func (m *mockMemberships) UpdateRole(ctx context.Context, userID, orgID string, role domain.Role) (*domain.Membership, error) {
	for _, r := range m.rows {
		if r.UserID == userID && r.OrgID == orgID {
			r.Role = role
			return r, nil
		}
	}
	return nil, nil
}

func (m *mockMemberships) UpdateStatus(ctx context.Context, userID, orgID string, status domain.Status) error {
	for _, r := range m.rows {
		if r.UserID == userID && r.OrgID == orgID {
			r.Status = status
		}
	}
	return nil
}

type mockUsers struct {
	byID map[string]*userdomain.User
}

func (m *mockUsers) GetByID(ctx context.Context, id string) (*userdomain.User, error) {
	return m.byID[id], nil
}

func (m *mockUsers) GetByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUsers) Create(ctx context.Context, u *userdomain.User) error {
	m.byID[u.ID] = u
	return nil
}

type mockOrgs struct {
	byID map[string]*orgdomain.Org
}

func (m *mockOrgs) GetByID(ctx context.Context, id string) (*orgdomain.Org, error) {
	return m.byID[id], nil
}

func (m *mockOrgs) Create(ctx context.Context, o *orgdomain.Org) error {
	m.byID[o.ID] = o
	return nil
}

func (m *mockOrgs) SetSubscriptionID(ctx context.Context, orgID, subscriptionID string) error {
	return nil
}

type mockProfiles struct{}

func (m *mockProfiles) GetByUser(ctx context.Context, userID string) (*professionaldomain.Profile, error) {
	return nil, nil
}

// mockSender records outgoing emails.
type sentEmail struct {
	to, subject, html string
}

type mockSender struct {
	sent []sentEmail
}

func (m *mockSender) Send(ctx context.Context, to, subject, html string) error {
	m.sent = append(m.sent, sentEmail{to: to, subject: subject, html: html})
	return nil
}

type fixture struct {
	engine      *gin.Engine
	memberships *mockMemberships
	mailer      *mockSender
}

func newFixture(t *testing.T, identity *identitydomain.Identity) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	memberships := &mockMemberships{rows: []*domain.Membership{
		{ID: "m-owner", UserID: "owner-1", OrgID: "org-1", Role: domain.RoleOrgOwner, Status: domain.StatusActive},
		{ID: "m-assistant", UserID: "assistant-1", OrgID: "org-1", Role: domain.RoleAssistant, Status: domain.StatusActive},
	}}
	users := &mockUsers{byID: map[string]*userdomain.User{
		"owner-1":     {ID: "owner-1", Email: "owner@example.com", Status: userdomain.UserStatusActive},
		"assistant-1": {ID: "assistant-1", Email: "assistant@example.com", Status: userdomain.UserStatusActive},
		"invitee-1":   {ID: "invitee-1", Email: "vet@example.com", Status: userdomain.UserStatusActive},
	}}
	orgs := &mockOrgs{byID: map[string]*orgdomain.Org{
		"org-1": {ID: "org-1", Name: "Happy Paws Clinic", Status: orgdomain.OrgStatusActive},
	}}
	mailer := &mockSender{}

	guard := authz.NewGuard(memberships, &mockProfiles{})
	selector := activeorg.NewSelector("", false, memberships)
	h := New(memberships, users, orgs, guard, selector, mailer, nil)

	engine := gin.New()
	engine.Use(resolver.Middleware(resolver.New(&staticIdentity{id: identity})))
	engine.GET("/me/memberships", h.ListMine)
	engine.POST("/orgs/members", h.AddMember)
	engine.PATCH("/orgs/members/:userID", h.UpdateMember)

	return &fixture{engine: engine, memberships: memberships, mailer: mailer}
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error.Code
}

func activeOrgCookie(orgID string) *http.Cookie {
	return &http.Cookie{Name: activeorg.DefaultCookieName, Value: orgID}
}

func TestAddMember_OwnerInvitesAndEmailGoesOut(t *testing.T) {
	f := newFixture(t, &identitydomain.Identity{ID: "owner-1", Email: "owner@example.com"})

	req := httptest.NewRequest(http.MethodPost, "/orgs/members",
		strings.NewReader(`{"email":"vet@example.com","role":"vet"}`))
	req.AddCookie(activeOrgCookie("org-1"))
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d, body %s", w.Code, http.StatusCreated, w.Body.String())
	}
	m, _ := f.memberships.GetByUserAndOrg(context.Background(), "invitee-1", "org-1")
	if m == nil {
		t.Fatal("membership was not created")
	}
	if m.Status != domain.StatusInvited {
		t.Errorf("status = %q, want %q", m.Status, domain.StatusInvited)
	}
	if m.Role != domain.RoleVet {
		t.Errorf("role = %q, want %q", m.Role, domain.RoleVet)
	}
	if len(f.mailer.sent) != 1 {
		t.Fatalf("expected 1 invitation email, got %d", len(f.mailer.sent))
	}
	mail := f.mailer.sent[0]
	if mail.to != "vet@example.com" {
		t.Errorf("email to = %q, want vet@example.com", mail.to)
	}
	if !strings.Contains(mail.subject, "Happy Paws Clinic") {
		t.Errorf("subject = %q, want org name included", mail.subject)
	}
}

func TestAddMember_AssistantForbidden(t *testing.T) {
	f := newFixture(t, &identitydomain.Identity{ID: "assistant-1"})

	req := httptest.NewRequest(http.MethodPost, "/orgs/members",
		strings.NewReader(`{"email":"vet@example.com","role":"vet"}`))
	req.AddCookie(activeOrgCookie("org-1"))
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
	if code := errorCode(t, w); code != "forbidden" {
		t.Errorf("error code = %q, want %q", code, "forbidden")
	}
	if len(f.mailer.sent) != 0 {
		t.Errorf("no email should go out, got %d", len(f.mailer.sent))
	}
}

func TestAddMember_NoActiveOrgSelection(t *testing.T) {
	f := newFixture(t, &identitydomain.Identity{ID: "owner-1"})

	req := httptest.NewRequest(http.MethodPost, "/orgs/members",
		strings.NewReader(`{"email":"vet@example.com","role":"vet"}`))
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
	if code := errorCode(t, w); code != "active_org_required" {
		t.Errorf("error code = %q, want %q", code, "active_org_required")
	}
}

func TestAddMember_UnknownEmail(t *testing.T) {
	f := newFixture(t, &identitydomain.Identity{ID: "owner-1"})

	req := httptest.NewRequest(http.MethodPost, "/orgs/members",
		strings.NewReader(`{"email":"nobody@example.com","role":"vet"}`))
	req.AddCookie(activeOrgCookie("org-1"))
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestAddMember_AlreadyMember(t *testing.T) {
	f := newFixture(t, &identitydomain.Identity{ID: "owner-1"})

	req := httptest.NewRequest(http.MethodPost, "/orgs/members",
		strings.NewReader(`{"email":"assistant@example.com","role":"assistant"}`))
	req.AddCookie(activeOrgCookie("org-1"))
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestAddMember_InvalidRole(t *testing.T) {
	f := newFixture(t, &identitydomain.Identity{ID: "owner-1"})

	req := httptest.NewRequest(http.MethodPost, "/orgs/members",
		strings.NewReader(`{"email":"vet@example.com","role":"superadmin"}`))
	req.AddCookie(activeOrgCookie("org-1"))
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestUpdateMember_RoleChange(t *testing.T) {
	f := newFixture(t, &identitydomain.Identity{ID: "owner-1"})

	req := httptest.NewRequest(http.MethodPatch, "/orgs/members/assistant-1",
		strings.NewReader(`{"role":"front_desk"}`))
	req.AddCookie(activeOrgCookie("org-1"))
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", w.Code, http.StatusOK, w.Body.String())
	}
	m, _ := f.memberships.GetByUserAndOrg(context.Background(), "assistant-1", "org-1")
	if m.Role != domain.RoleFrontDesk {
		t.Errorf("role = %q, want %q", m.Role, domain.RoleFrontDesk)
	}
}

func TestUpdateMember_StatusChange(t *testing.T) {
	f := newFixture(t, &identitydomain.Identity{ID: "owner-1"})

	req := httptest.NewRequest(http.MethodPatch, "/orgs/members/assistant-1",
		strings.NewReader(`{"status":"suspended"}`))
	req.AddCookie(activeOrgCookie("org-1"))
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", w.Code, http.StatusOK, w.Body.String())
	}
	m, _ := f.memberships.GetByUserAndOrg(context.Background(), "assistant-1", "org-1")
	if m.Status != domain.StatusSuspended {
		t.Errorf("status = %q, want %q", m.Status, domain.StatusSuspended)
	}
}

func TestUpdateMember_EmptyBody(t *testing.T) {
	f := newFixture(t, &identitydomain.Identity{ID: "owner-1"})

	req := httptest.NewRequest(http.MethodPatch, "/orgs/members/assistant-1",
		strings.NewReader(`{}`))
	req.AddCookie(activeOrgCookie("org-1"))
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestUpdateMember_UnknownTarget(t *testing.T) {
	f := newFixture(t, &identitydomain.Identity{ID: "owner-1"})

	req := httptest.NewRequest(http.MethodPatch, "/orgs/members/ghost-1",
		strings.NewReader(`{"role":"vet"}`))
	req.AddCookie(activeOrgCookie("org-1"))
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestListMine(t *testing.T) {
	f := newFixture(t, &identitydomain.Identity{ID: "owner-1"})

	req := httptest.NewRequest(http.MethodGet, "/me/memberships", nil)
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var body struct {
		Memberships []struct {
			OrgID string `json:"org_id"`
			Role  string `json:"role"`
		} `json:"memberships"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Memberships) != 1 {
		t.Fatalf("len = %d, want 1", len(body.Memberships))
	}
	if body.Memberships[0].OrgID != "org-1" || body.Memberships[0].Role != "org_owner" {
		t.Errorf("membership = %+v, want org-1/org_owner", body.Memberships[0])
	}
}
