// Package handler exposes organization creation.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"unimalia/backend/internal/audit"
	"unimalia/backend/internal/httperr"
	"unimalia/backend/internal/identity/resolver"
	membershipdomain "unimalia/backend/internal/membership/domain"
	membershiprepo "unimalia/backend/internal/membership/repository"
	"unimalia/backend/internal/organization/domain"
	orgrepo "unimalia/backend/internal/organization/repository"
)

// Handler serves organization endpoints.
type Handler struct {
	orgs        orgrepo.Repository
	memberships membershiprepo.Repository
	auditor     audit.AuditLogger
}

// New returns an organization handler. auditor may be nil.
func New(orgs orgrepo.Repository, memberships membershiprepo.Repository, auditor audit.AuditLogger) *Handler {
	return &Handler{orgs: orgs, memberships: memberships, auditor: auditor}
}

type createOrgRequest struct {
	Name string `json:"name"`
}

// Create handles POST /api/v1/orgs: creates a clinic and makes the caller its
// org_owner with an active membership. The first organization a user creates
// becomes their default.
func (h *Handler) Create(c *gin.Context) {
	id, err := resolver.FromContext(c)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	ctx := c.Request.Context()

	var req createOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Write(c, httperr.ErrInvalidInput.WithCause(err))
		return
	}

	now := time.Now().UTC()
	org := &domain.Org{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Status:    domain.OrgStatusActive,
		CreatedAt: now,
	}
	if err := org.Validate(); err != nil {
		httperr.Write(c, httperr.ErrInvalidInput.WithCause(err))
		return
	}

	existing, err := h.memberships.ListByUser(ctx, id.ID)
	if err != nil {
		httperr.Write(c, httperr.ErrServer.WithCause(err))
		return
	}

	if err := h.orgs.Create(ctx, org); err != nil {
		httperr.Write(c, httperr.ErrServer.WithCause(err))
		return
	}
	m := &membershipdomain.Membership{
		ID:        uuid.New().String(),
		UserID:    id.ID,
		OrgID:     org.ID,
		OrgName:   org.Name,
		Role:      membershipdomain.RoleOrgOwner,
		Status:    membershipdomain.StatusActive,
		IsDefault: len(existing) == 0,
		CreatedAt: now,
	}
	if err := h.memberships.Create(ctx, m); err != nil {
		httperr.Write(c, httperr.ErrServer.WithCause(err))
		return
	}

	if h.auditor != nil {
		h.auditor.LogEvent(ctx, org.ID, id.ID, "org_created", "organization", org.Name)
	}

	c.JSON(http.StatusCreated, gin.H{"org": gin.H{
		"id":         org.ID,
		"name":       org.Name,
		"status":     string(org.Status),
		"created_at": org.CreatedAt,
	}})
}
