// Package handler exposes professional profile self-registration. Profiles
// start pending; verification happens out of band against the professional
// registry, never through this API.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"unimalia/backend/internal/audit"
	"unimalia/backend/internal/httperr"
	"unimalia/backend/internal/identity/resolver"
	"unimalia/backend/internal/professional/domain"
	professionalrepo "unimalia/backend/internal/professional/repository"
)

// Handler serves professional profile endpoints.
type Handler struct {
	profiles professionalrepo.Repository
	auditor  audit.AuditLogger
}

// New returns a professional profile handler. auditor may be nil.
func New(profiles professionalrepo.Repository, auditor audit.AuditLogger) *Handler {
	return &Handler{profiles: profiles, auditor: auditor}
}

type createProfileRequest struct {
	Category           string `json:"category"`
	RegistrationNumber string `json:"registration_number"`
}

// Create handles POST /api/v1/me/professional-profile: declares the caller's
// professional category. One profile per user; always starts pending.
func (h *Handler) Create(c *gin.Context) {
	id, err := resolver.FromContext(c)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	ctx := c.Request.Context()

	var req createProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Write(c, httperr.ErrInvalidInput.WithCause(err))
		return
	}
	category := domain.Category(req.Category)
	switch category {
	case domain.CategoryVet, domain.CategoryGroomer, domain.CategoryBreeder:
	default:
		httperr.Write(c, httperr.ErrInvalidInput)
		return
	}

	existing, err := h.profiles.GetByUser(ctx, id.ID)
	if err != nil {
		httperr.Write(c, httperr.ErrServer.WithCause(err))
		return
	}
	if existing != nil {
		httperr.Write(c, httperr.ErrInvalidInput)
		return
	}

	now := time.Now().UTC()
	p := &domain.Profile{
		ID:                 uuid.New().String(),
		UserID:             id.ID,
		Category:           category,
		RegistrationNumber: req.RegistrationNumber,
		VerificationStatus: domain.VerificationPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := h.profiles.Create(ctx, p); err != nil {
		httperr.Write(c, httperr.ErrServer.WithCause(err))
		return
	}

	if h.auditor != nil {
		h.auditor.LogEvent(ctx, "", id.ID, "professional_profile_created", "professional_profile", string(category))
	}

	c.JSON(http.StatusCreated, gin.H{"profile": profileJSON(p)})
}

// Get handles GET /api/v1/me/professional-profile.
func (h *Handler) Get(c *gin.Context) {
	id, err := resolver.FromContext(c)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	p, err := h.profiles.GetByUser(c.Request.Context(), id.ID)
	if err != nil {
		httperr.Write(c, httperr.ErrServer.WithCause(err))
		return
	}
	if p == nil {
		httperr.Write(c, httperr.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profileJSON(p)})
}

func profileJSON(p *domain.Profile) gin.H {
	return gin.H{
		"category":            string(p.Category),
		"registration_number": p.RegistrationNumber,
		"verification_status": string(p.VerificationStatus),
	}
}
