// Package handler exposes the lost-and-found report endpoints. Reports need
// an identity but no organization; resolution is restricted to the reporter.
package handler

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	animalrepo "unimalia/backend/internal/animal/repository"
	"unimalia/backend/internal/audit"
	"unimalia/backend/internal/email"
	"unimalia/backend/internal/httperr"
	"unimalia/backend/internal/identity/resolver"
	"unimalia/backend/internal/report/domain"
	reportrepo "unimalia/backend/internal/report/repository"
	userrepo "unimalia/backend/internal/user/repository"
)

const defaultPageSize = 50

// Handler serves lost/found report endpoints.
type Handler struct {
	reports reportrepo.Repository
	animals animalrepo.Repository
	users   userrepo.Repository
	mailer  email.Sender
	auditor audit.AuditLogger
}

// New returns a report handler. mailer and auditor may be nil.
func New(reports reportrepo.Repository, animals animalrepo.Repository, users userrepo.Repository,
	mailer email.Sender, auditor audit.AuditLogger) *Handler {
	return &Handler{reports: reports, animals: animals, users: users, mailer: mailer, auditor: auditor}
}

type createReportRequest struct {
	Kind        string `json:"kind"`
	AnimalID    string `json:"animal_id"`
	TagCode     string `json:"tag_code"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// Create handles POST /api/v1/reports. A found report whose tag code matches
// a registered animal triggers a best-effort email to the owner.
func (h *Handler) Create(c *gin.Context) {
	id, err := resolver.FromContext(c)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	ctx := c.Request.Context()

	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Write(c, httperr.ErrInvalidInput.WithCause(err))
		return
	}
	rep := &domain.Report{
		ID:          uuid.New().String(),
		ReporterID:  id.ID,
		Kind:        domain.Kind(req.Kind),
		AnimalID:    req.AnimalID,
		TagCode:     req.TagCode,
		Location:    req.Location,
		Description: req.Description,
		Status:      domain.StatusOpen,
		CreatedAt:   time.Now().UTC(),
	}
	if err := rep.Validate(); err != nil {
		httperr.Write(c, httperr.ErrInvalidInput.WithCause(err))
		return
	}
	if rep.Kind == domain.KindLost {
		a, err := h.animals.GetByID(ctx, rep.AnimalID)
		if err != nil {
			httperr.Write(c, httperr.ErrServer.WithCause(err))
			return
		}
		if a == nil || a.OwnerID != id.ID {
			httperr.Write(c, httperr.ErrNotFound)
			return
		}
	}
	if err := h.reports.Create(ctx, rep); err != nil {
		httperr.Write(c, httperr.ErrServer.WithCause(err))
		return
	}

	if h.auditor != nil {
		h.auditor.LogEvent(ctx, "", id.ID, "report_created", "report", string(rep.Kind)+":"+rep.ID)
	}
	if rep.Kind == domain.KindFound && rep.TagCode != "" {
		h.notifyOwner(c, rep)
	}

	c.JSON(http.StatusCreated, gin.H{"report": reportJSON(rep)})
}

// notifyOwner emails the owner of the animal behind the found report's tag
// code. Best-effort: every failure is logged and swallowed.
func (h *Handler) notifyOwner(c *gin.Context, rep *domain.Report) {
	if h.mailer == nil {
		return
	}
	ctx := c.Request.Context()
	tag, err := h.animals.GetTag(ctx, rep.TagCode)
	if err != nil || tag == nil {
		return
	}
	a, err := h.animals.GetByID(ctx, tag.AnimalID)
	if err != nil || a == nil {
		return
	}
	owner, err := h.users.GetByID(ctx, a.OwnerID)
	if err != nil || owner == nil {
		return
	}
	subject := "Your pet may have been found"
	body := fmt.Sprintf("<p>Someone reported finding <strong>%s</strong>", a.Name)
	if rep.Location != "" {
		body += fmt.Sprintf(" near %s", rep.Location)
	}
	body += ".</p>"
	if err := h.mailer.Send(ctx, owner.Email, subject, body); err != nil {
		log.Printf("report: found-pet email to %s failed: %v", owner.Email, err)
	}
}

// ListOpen handles GET /api/v1/reports?status=open.
func (h *Handler) ListOpen(c *gin.Context) {
	if _, err := resolver.FromContext(c); err != nil {
		httperr.Write(c, err)
		return
	}
	status := domain.Status(c.DefaultQuery("status", string(domain.StatusOpen)))
	if status != domain.StatusOpen && status != domain.StatusResolved {
		httperr.Write(c, httperr.ErrInvalidInput)
		return
	}
	offset, _ := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 32)

	reports, err := h.reports.ListByStatus(c.Request.Context(), status, defaultPageSize, int32(offset))
	if err != nil {
		httperr.Write(c, httperr.ErrServer.WithCause(err))
		return
	}
	out := make([]gin.H, 0, len(reports))
	for _, rep := range reports {
		out = append(out, reportJSON(rep))
	}
	c.JSON(http.StatusOK, gin.H{"reports": out})
}

// Resolve handles POST /api/v1/reports/:id/resolve. Only the reporter may
// resolve; re-resolving an already-resolved report succeeds unchanged.
func (h *Handler) Resolve(c *gin.Context) {
	id, err := resolver.FromContext(c)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	ctx := c.Request.Context()

	rep, err := h.reports.GetByID(ctx, c.Param("id"))
	if err != nil {
		httperr.Write(c, httperr.ErrServer.WithCause(err))
		return
	}
	if rep == nil {
		httperr.Write(c, httperr.ErrNotFound)
		return
	}
	if rep.ReporterID != id.ID {
		httperr.Write(c, httperr.ErrForbidden)
		return
	}
	if rep.Status == domain.StatusOpen {
		if err := h.reports.Resolve(ctx, rep.ID); err != nil {
			httperr.Write(c, httperr.ErrServer.WithCause(err))
			return
		}
		rep.Status = domain.StatusResolved
		now := time.Now().UTC()
		rep.ResolvedAt = &now
		if h.auditor != nil {
			h.auditor.LogEvent(ctx, "", id.ID, "report_resolved", "report", rep.ID)
		}
	}

	c.JSON(http.StatusOK, gin.H{"report": reportJSON(rep)})
}

func reportJSON(rep *domain.Report) gin.H {
	out := gin.H{
		"id":          rep.ID,
		"kind":        string(rep.Kind),
		"status":      string(rep.Status),
		"location":    rep.Location,
		"description": rep.Description,
		"created_at":  rep.CreatedAt,
	}
	if rep.AnimalID != "" {
		out["animal_id"] = rep.AnimalID
	}
	if rep.TagCode != "" {
		out["tag_code"] = rep.TagCode
	}
	if rep.ResolvedAt != nil {
		out["resolved_at"] = rep.ResolvedAt
	}
	return out
}
