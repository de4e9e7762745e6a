// Package handler exposes clinical event recording, vet verification, and the
// per-animal timeline. Recording and verification are the privileged
// org-scoped mutations: both run the full identity, active-organization, and
// capability sequence before touching data, and verification additionally
// requires the verified veterinary credential.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"unimalia/backend/internal/activeorg"
	animalrepo "unimalia/backend/internal/animal/repository"
	"unimalia/backend/internal/audit"
	"unimalia/backend/internal/clinical/domain"
	clinicalrepo "unimalia/backend/internal/clinical/repository"
	"unimalia/backend/internal/httperr"
	"unimalia/backend/internal/identity/resolver"
	"unimalia/backend/internal/platform/authz"
	"unimalia/backend/internal/telemetry"
)

// Handler serves clinical event endpoints.
type Handler struct {
	events   clinicalrepo.Repository
	animals  animalrepo.Repository
	guard    *authz.Guard
	selector *activeorg.Selector
	auditor  audit.AuditLogger
	emitter  telemetry.EventEmitter
}

// New returns a clinical handler. auditor and emitter may be nil.
func New(events clinicalrepo.Repository, animals animalrepo.Repository, guard *authz.Guard,
	selector *activeorg.Selector, auditor audit.AuditLogger, emitter telemetry.EventEmitter) *Handler {
	return &Handler{
		events:   events,
		animals:  animals,
		guard:    guard,
		selector: selector,
		auditor:  auditor,
		emitter:  emitter,
	}
}

type recordEventRequest struct {
	AnimalID   string `json:"animal_id"`
	Kind       string `json:"kind"`
	Notes      string `json:"notes"`
	OccurredAt string `json:"occurred_at"` // RFC 3339, defaults to now
}

// Record handles POST /api/v1/clinical-events: records an event for an animal
// on behalf of the caller's active organization.
func (h *Handler) Record(c *gin.Context) {
	id, err := resolver.FromContext(c)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	ctx := c.Request.Context()

	selection, _ := h.selector.Read(c.Request)
	orgID, err := h.guard.RequireActiveOrg(ctx, *id, selection)
	if err != nil {
		h.emitDenial(c, id.ID, selection, "record_clinical_event", err)
		httperr.Write(c, err)
		return
	}
	if err := h.guard.RequireCapability(ctx, *id, orgID, authz.CapRecordClinicalEvent); err != nil {
		h.emitDenial(c, id.ID, orgID, "record_clinical_event", err)
		httperr.Write(c, err)
		return
	}

	var req recordEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Write(c, httperr.ErrInvalidInput.WithCause(err))
		return
	}
	now := time.Now().UTC()
	occurredAt := now
	if req.OccurredAt != "" {
		occurredAt, err = time.Parse(time.RFC3339, req.OccurredAt)
		if err != nil {
			httperr.Write(c, httperr.ErrInvalidInput.WithCause(err))
			return
		}
	}
	e := &domain.Event{
		ID:         uuid.New().String(),
		AnimalID:   req.AnimalID,
		OrgID:      orgID,
		RecordedBy: id.ID,
		Kind:       req.Kind,
		Notes:      req.Notes,
		OccurredAt: occurredAt,
		CreatedAt:  now,
	}
	if err := e.Validate(); err != nil {
		httperr.Write(c, httperr.ErrInvalidInput.WithCause(err))
		return
	}
	a, err := h.animals.GetByID(ctx, e.AnimalID)
	if err != nil {
		httperr.Write(c, httperr.ErrServer.WithCause(err))
		return
	}
	if a == nil {
		httperr.Write(c, httperr.ErrNotFound)
		return
	}
	if err := h.events.Create(ctx, e); err != nil {
		httperr.Write(c, httperr.ErrServer.WithCause(err))
		return
	}

	if h.auditor != nil {
		h.auditor.LogEvent(ctx, orgID, id.ID, "clinical_event_recorded", "clinical_event", e.ID)
	}

	c.JSON(http.StatusCreated, gin.H{"event": eventJSON(e)})
}

// Verify handles POST /api/v1/clinical-events/:id/verify: a credentialed vet
// marks the event verified. Events outside the caller's active organization
// read as 404 so their existence is not revealed. Re-verifying is idempotent;
// the original verifier stands.
func (h *Handler) Verify(c *gin.Context) {
	id, err := resolver.FromContext(c)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	ctx := c.Request.Context()

	selection, _ := h.selector.Read(c.Request)
	orgID, err := h.guard.RequireActiveOrg(ctx, *id, selection)
	if err != nil {
		h.emitDenial(c, id.ID, selection, "verify_clinical_event", err)
		httperr.Write(c, err)
		return
	}
	if err := h.guard.RequireCapability(ctx, *id, orgID, authz.CapVerifyClinicalEvent); err != nil {
		h.emitDenial(c, id.ID, orgID, "verify_clinical_event", err)
		httperr.Write(c, err)
		return
	}

	e, err := h.events.GetByID(ctx, c.Param("id"))
	if err != nil {
		httperr.Write(c, httperr.ErrServer.WithCause(err))
		return
	}
	if e == nil || e.OrgID != orgID {
		httperr.Write(c, httperr.ErrNotFound)
		return
	}
	if !e.Verified() {
		now := time.Now().UTC()
		if err := h.events.MarkVerified(ctx, e.ID, id.ID, now); err != nil {
			httperr.Write(c, httperr.ErrServer.WithCause(err))
			return
		}
		verifier := id.ID
		e.VerifiedBy = &verifier
		e.VerifiedAt = &now
		if h.auditor != nil {
			h.auditor.LogEvent(ctx, orgID, id.ID, "clinical_event_verified", "clinical_event", e.ID)
		}
	}

	c.JSON(http.StatusOK, gin.H{"event": eventJSON(e)})
}

// Timeline handles GET /api/v1/animals/:id/clinical-events. Visible to the
// animal's owner and to staff acting in an organization.
func (h *Handler) Timeline(c *gin.Context) {
	id, err := resolver.FromContext(c)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	ctx := c.Request.Context()

	a, err := h.animals.GetByID(ctx, c.Param("id"))
	if err != nil {
		httperr.Write(c, httperr.ErrServer.WithCause(err))
		return
	}
	if a == nil {
		httperr.Write(c, httperr.ErrNotFound)
		return
	}
	if a.OwnerID != id.ID {
		selection, _ := h.selector.Read(c.Request)
		if _, err := h.guard.RequireActiveOrg(ctx, *id, selection); err != nil {
			httperr.Write(c, err)
			return
		}
	}

	events, err := h.events.ListByAnimal(ctx, a.ID)
	if err != nil {
		httperr.Write(c, httperr.ErrServer.WithCause(err))
		return
	}
	out := make([]gin.H, 0, len(events))
	for _, e := range events {
		out = append(out, eventJSON(e))
	}
	c.JSON(http.StatusOK, gin.H{"events": out})
}

// emitDenial streams an authorization denial with its reason code so denials
// are observable without scraping access logs.
func (h *Handler) emitDenial(c *gin.Context, userID, orgID, action string, cause error) {
	code := "server_error"
	var he *httperr.Error
	if errors.As(cause, &he) {
		code = he.Code
	}
	telemetry.EmitAsync(h.emitter, c.Request.Context(), &telemetry.Event{
		OrgID:      orgID,
		UserID:     userID,
		EventType:  "authz_denied",
		Source:     "clinical",
		ReasonCode: code,
		Metadata:   action,
		CreatedAt:  time.Now().UTC(),
	})
}

func eventJSON(e *domain.Event) gin.H {
	out := gin.H{
		"id":          e.ID,
		"animal_id":   e.AnimalID,
		"org_id":      e.OrgID,
		"recorded_by": e.RecordedBy,
		"kind":        e.Kind,
		"notes":       e.Notes,
		"occurred_at": e.OccurredAt,
		"verified":    e.Verified(),
	}
	if e.VerifiedBy != nil {
		out["verified_by"] = *e.VerifiedBy
	}
	if e.VerifiedAt != nil {
		out["verified_at"] = *e.VerifiedAt
	}
	return out
}
