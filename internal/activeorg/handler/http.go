// Package handler exposes reading, switching, and clearing the active
// organization selection.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"unimalia/backend/internal/activeorg"
	"unimalia/backend/internal/audit"
	"unimalia/backend/internal/httperr"
	"unimalia/backend/internal/identity/resolver"
	membershipdomain "unimalia/backend/internal/membership/domain"
	"unimalia/backend/internal/telemetry"
)

// Handler serves the active-organization endpoints.
type Handler struct {
	selector    *activeorg.Selector
	memberships activeorg.MembershipLister
	auditor     audit.AuditLogger
	emitter     telemetry.EventEmitter
}

// New returns an active-organization handler. auditor and emitter may be nil.
func New(selector *activeorg.Selector, memberships activeorg.MembershipLister,
	auditor audit.AuditLogger, emitter telemetry.EventEmitter) *Handler {
	return &Handler{selector: selector, memberships: memberships, auditor: auditor, emitter: emitter}
}

// Get handles GET /api/v1/orgs/active: returns the current cookie selection,
// the computed default, and whether a picker is needed. The selection is
// validated against current memberships; a stale cookie reads as unselected
// here, with the matching membership surfaced only through the default.
func (h *Handler) Get(c *gin.Context) {
	id, err := resolver.FromContext(c)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	ctx := c.Request.Context()

	memberships, err := h.memberships.ListByUser(ctx, id.ID)
	if err != nil {
		httperr.Write(c, httperr.ErrServer.WithCause(err))
		return
	}

	current, _ := h.selector.Read(c.Request)
	def := activeorg.ComputeDefault(current, memberships)

	var selected *membershipdomain.Membership
	if current != "" {
		for _, m := range memberships {
			if m.OrgID == current && m.IsActive() {
				selected = m
				break
			}
		}
	}

	activeCount := 0
	for _, m := range memberships {
		if m.IsActive() {
			activeCount++
		}
	}

	resp := gin.H{
		"needs_picker": selected == nil && activeCount > 1,
	}
	if selected != nil {
		resp["active"] = membershipJSON(selected)
	}
	if def != nil {
		resp["default"] = membershipJSON(def)
	}
	c.JSON(http.StatusOK, resp)
}

type setActiveRequest struct {
	OrgID string `json:"org_id"`
}

// Put handles PUT /api/v1/orgs/active: switches the active organization.
func (h *Handler) Put(c *gin.Context) {
	id, err := resolver.FromContext(c)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	ctx := c.Request.Context()

	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Write(c, httperr.ErrInvalidInput.WithCause(err))
		return
	}
	if err := h.selector.Set(ctx, *id, req.OrgID, c.Writer); err != nil {
		httperr.Write(c, err)
		return
	}

	if h.auditor != nil {
		h.auditor.LogEvent(ctx, req.OrgID, id.ID, "active_org_switched", "active_org", "")
	}
	telemetry.EmitAsync(h.emitter, ctx, &telemetry.Event{
		OrgID:     req.OrgID,
		UserID:    id.ID,
		EventType: "active_org_switched",
		Source:    "activeorg",
		CreatedAt: time.Now().UTC(),
	})

	c.JSON(http.StatusOK, gin.H{"org_id": req.OrgID})
}

// Delete handles DELETE /api/v1/orgs/active: clears the selection.
func (h *Handler) Delete(c *gin.Context) {
	id, err := resolver.FromContext(c)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	h.selector.Clear(c.Writer)
	if h.auditor != nil {
		h.auditor.LogEvent(c.Request.Context(), "", id.ID, "active_org_cleared", "active_org", "")
	}
	c.Status(http.StatusNoContent)
}

func membershipJSON(m *membershipdomain.Membership) gin.H {
	return gin.H{
		"org_id":     m.OrgID,
		"org_name":   m.OrgName,
		"role":       string(m.Role),
		"status":     string(m.Status),
		"is_default": m.IsDefault,
	}
}
