// Package handler exposes the membership directory and member management
// endpoints. Member management is org_owner-gated through the authorization
// guard; the active organization always comes from the validated cookie
// selection, never from the request body.
package handler

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"unimalia/backend/internal/activeorg"
	"unimalia/backend/internal/audit"
	"unimalia/backend/internal/email"
	"unimalia/backend/internal/httperr"
	"unimalia/backend/internal/identity/resolver"
	"unimalia/backend/internal/membership/domain"
	membershiprepo "unimalia/backend/internal/membership/repository"
	orgrepo "unimalia/backend/internal/organization/repository"
	"unimalia/backend/internal/platform/authz"
	userrepo "unimalia/backend/internal/user/repository"
)

// Handler serves membership endpoints.
type Handler struct {
	memberships membershiprepo.Repository
	users       userrepo.Repository
	orgs        orgrepo.Repository
	guard       *authz.Guard
	selector    *activeorg.Selector
	mailer      email.Sender
	auditor     audit.AuditLogger
}

// New returns a membership handler. mailer and auditor may be nil.
func New(memberships membershiprepo.Repository, users userrepo.Repository, orgs orgrepo.Repository,
	guard *authz.Guard, selector *activeorg.Selector, mailer email.Sender,
	auditor audit.AuditLogger) *Handler {
	return &Handler{
		memberships: memberships,
		users:       users,
		orgs:        orgs,
		guard:       guard,
		selector:    selector,
		mailer:      mailer,
		auditor:     auditor,
	}
}

// ListMine handles GET /api/v1/me/memberships.
func (h *Handler) ListMine(c *gin.Context) {
	id, err := resolver.FromContext(c)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	memberships, err := h.memberships.ListByUser(c.Request.Context(), id.ID)
	if err != nil {
		httperr.Write(c, httperr.ErrServer.WithCause(err))
		return
	}
	out := make([]gin.H, 0, len(memberships))
	for _, m := range memberships {
		out = append(out, membershipJSON(m))
	}
	c.JSON(http.StatusOK, gin.H{"memberships": out})
}

type addMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AddMember handles POST /api/v1/orgs/members: invites an existing user into
// the caller's active organization. The invitee starts as invited; an
// invitation email goes out best-effort.
func (h *Handler) AddMember(c *gin.Context) {
	id, err := resolver.FromContext(c)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	ctx := c.Request.Context()

	selection, _ := h.selector.Read(c.Request)
	orgID, err := h.guard.RequireActiveOrg(ctx, *id, selection)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	if err := h.guard.RequireCapability(ctx, *id, orgID, authz.CapManageMembers); err != nil {
		httperr.Write(c, err)
		return
	}

	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Write(c, httperr.ErrInvalidInput.WithCause(err))
		return
	}
	role, ok := domain.ParseRole(req.Role)
	if !ok {
		httperr.Write(c, httperr.ErrInvalidInput)
		return
	}

	invitee, err := h.users.GetByEmail(ctx, req.Email)
	if err != nil {
		httperr.Write(c, httperr.ErrServer.WithCause(err))
		return
	}
	if invitee == nil {
		httperr.Write(c, httperr.ErrNotFound)
		return
	}
	existing, err := h.memberships.GetByUserAndOrg(ctx, invitee.ID, orgID)
	if err != nil {
		httperr.Write(c, httperr.ErrServer.WithCause(err))
		return
	}
	if existing != nil {
		httperr.Write(c, httperr.ErrInvalidInput)
		return
	}

	m := &domain.Membership{
		ID:        uuid.New().String(),
		UserID:    invitee.ID,
		OrgID:     orgID,
		Role:      role,
		Status:    domain.StatusInvited,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.memberships.Create(ctx, m); err != nil {
		httperr.Write(c, httperr.ErrServer.WithCause(err))
		return
	}

	if h.auditor != nil {
		h.auditor.LogEvent(ctx, orgID, id.ID, "member_invited", "membership", invitee.ID)
	}
	if h.mailer != nil {
		orgName := orgID
		if org, err := h.orgs.GetByID(ctx, orgID); err == nil && org != nil {
			orgName = org.Name
		}
		subject := "You have been invited to " + orgName
		body := fmt.Sprintf("<p>You have been invited to join <strong>%s</strong> as %s.</p>", orgName, role)
		if err := h.mailer.Send(ctx, invitee.Email, subject, body); err != nil {
			log.Printf("membership: invitation email to %s failed: %v", invitee.Email, err)
		}
	}

	c.JSON(http.StatusCreated, gin.H{"membership": membershipJSON(m)})
}

type updateMemberRequest struct {
	Role   string `json:"role"`
	Status string `json:"status"`
}

// UpdateMember handles PATCH /api/v1/orgs/members/:userID: changes a member's
// role and/or lifecycle status (activate an invite, suspend, reinstate)
// within the caller's active organization.
func (h *Handler) UpdateMember(c *gin.Context) {
	id, err := resolver.FromContext(c)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	ctx := c.Request.Context()

	selection, _ := h.selector.Read(c.Request)
	orgID, err := h.guard.RequireActiveOrg(ctx, *id, selection)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	if err := h.guard.RequireCapability(ctx, *id, orgID, authz.CapManageMembers); err != nil {
		httperr.Write(c, err)
		return
	}

	var req updateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Write(c, httperr.ErrInvalidInput.WithCause(err))
		return
	}
	if req.Role == "" && req.Status == "" {
		httperr.Write(c, httperr.ErrInvalidInput)
		return
	}

	targetUserID := c.Param("userID")
	var m *domain.Membership

	if req.Role != "" {
		role, ok := domain.ParseRole(req.Role)
		if !ok {
			httperr.Write(c, httperr.ErrInvalidInput)
			return
		}
		m, err = h.memberships.UpdateRole(ctx, targetUserID, orgID, role)
		if err != nil {
			httperr.Write(c, httperr.ErrServer.WithCause(err))
			return
		}
		if m == nil {
			httperr.Write(c, httperr.ErrNotFound)
			return
		}
		if h.auditor != nil {
			h.auditor.LogEvent(ctx, orgID, id.ID, "member_role_changed", "membership", targetUserID+":"+string(role))
		}
	}

	if req.Status != "" {
		status, ok := domain.ParseStatus(req.Status)
		if !ok {
			httperr.Write(c, httperr.ErrInvalidInput)
			return
		}
		if m == nil {
			m, err = h.memberships.GetByUserAndOrg(ctx, targetUserID, orgID)
			if err != nil {
				httperr.Write(c, httperr.ErrServer.WithCause(err))
				return
			}
			if m == nil {
				httperr.Write(c, httperr.ErrNotFound)
				return
			}
		}
		if err := h.memberships.UpdateStatus(ctx, targetUserID, orgID, status); err != nil {
			httperr.Write(c, httperr.ErrServer.WithCause(err))
			return
		}
		m.Status = status
		if h.auditor != nil {
			h.auditor.LogEvent(ctx, orgID, id.ID, "member_status_changed", "membership", targetUserID+":"+string(status))
		}
	}

	c.JSON(http.StatusOK, gin.H{"membership": membershipJSON(m)})
}

func membershipJSON(m *domain.Membership) gin.H {
	return gin.H{
		"org_id":     m.OrgID,
		"org_name":   m.OrgName,
		"role":       string(m.Role),
		"status":     string(m.Status),
		"is_default": m.IsDefault,
		"created_at": m.CreatedAt,
	}
}
