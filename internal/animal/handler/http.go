// Package handler exposes pet registration, tag attachment, and the public
// tag-scan lookup. These are owner-facing endpoints: registration needs an
// identity but no organization, and the scan lookup is anonymous by design
// so a finder can reach the owner.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"unimalia/backend/internal/animal/domain"
	animalrepo "unimalia/backend/internal/animal/repository"
	"unimalia/backend/internal/audit"
	"unimalia/backend/internal/httperr"
	"unimalia/backend/internal/identity/resolver"
)

// Handler serves animal and tag endpoints.
type Handler struct {
	animals animalrepo.Repository
	auditor audit.AuditLogger
}

// New returns an animal handler. auditor may be nil.
func New(animals animalrepo.Repository, auditor audit.AuditLogger) *Handler {
	return &Handler{animals: animals, auditor: auditor}
}

type createAnimalRequest struct {
	Name      string `json:"name"`
	Species   string `json:"species"`
	Breed     string `json:"breed"`
	BirthDate string `json:"birth_date"` // YYYY-MM-DD, optional
}

// Create handles POST /api/v1/animals: registers a pet owned by the caller.
func (h *Handler) Create(c *gin.Context) {
	id, err := resolver.FromContext(c)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	ctx := c.Request.Context()

	var req createAnimalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Write(c, httperr.ErrInvalidInput.WithCause(err))
		return
	}
	a := &domain.Animal{
		ID:        uuid.New().String(),
		OwnerID:   id.ID,
		Name:      req.Name,
		Species:   req.Species,
		Breed:     req.Breed,
		CreatedAt: time.Now().UTC(),
	}
	if req.BirthDate != "" {
		t, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			httperr.Write(c, httperr.ErrInvalidInput.WithCause(err))
			return
		}
		a.BirthDate = &t
	}
	if err := a.Validate(); err != nil {
		httperr.Write(c, httperr.ErrInvalidInput.WithCause(err))
		return
	}
	if err := h.animals.Create(ctx, a); err != nil {
		httperr.Write(c, httperr.ErrServer.WithCause(err))
		return
	}

	if h.auditor != nil {
		h.auditor.LogEvent(ctx, "", id.ID, "animal_registered", "animal", a.ID)
	}

	c.JSON(http.StatusCreated, gin.H{"animal": animalJSON(a)})
}

// ListMine handles GET /api/v1/me/animals.
func (h *Handler) ListMine(c *gin.Context) {
	id, err := resolver.FromContext(c)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	animals, err := h.animals.ListByOwner(c.Request.Context(), id.ID)
	if err != nil {
		httperr.Write(c, httperr.ErrServer.WithCause(err))
		return
	}
	out := make([]gin.H, 0, len(animals))
	for _, a := range animals {
		out = append(out, animalJSON(a))
	}
	c.JSON(http.StatusOK, gin.H{"animals": out})
}

type attachTagRequest struct {
	Code string `json:"code"`
}

// AttachTag handles POST /api/v1/animals/:id/tag: binds a tag code to one of
// the caller's animals. Only the owner may attach a tag.
func (h *Handler) AttachTag(c *gin.Context) {
	id, err := resolver.FromContext(c)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	ctx := c.Request.Context()

	var req attachTagRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		httperr.Write(c, httperr.ErrInvalidInput)
		return
	}

	a, err := h.animals.GetByID(ctx, c.Param("id"))
	if err != nil {
		httperr.Write(c, httperr.ErrServer.WithCause(err))
		return
	}
	if a == nil || a.OwnerID != id.ID {
		// Non-owners get the same 404 as a missing animal.
		httperr.Write(c, httperr.ErrNotFound)
		return
	}

	existing, err := h.animals.GetTag(ctx, req.Code)
	if err != nil {
		httperr.Write(c, httperr.ErrServer.WithCause(err))
		return
	}
	if existing != nil {
		httperr.Write(c, httperr.ErrInvalidInput)
		return
	}

	t := &domain.Tag{
		Code:      req.Code,
		AnimalID:  a.ID,
		Status:    domain.TagStatusActive,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.animals.AttachTag(ctx, t); err != nil {
		httperr.Write(c, httperr.ErrServer.WithCause(err))
		return
	}

	if h.auditor != nil {
		h.auditor.LogEvent(ctx, "", id.ID, "tag_attached", "animal_tag", t.Code)
	}

	c.JSON(http.StatusCreated, gin.H{"tag": gin.H{
		"code":      t.Code,
		"animal_id": t.AnimalID,
		"status":    string(t.Status),
	}})
}

// LookupTag handles GET /api/v1/tags/:code: the public scan landing lookup.
// Returns only what a finder needs; no owner contact details are exposed.
func (h *Handler) LookupTag(c *gin.Context) {
	ctx := c.Request.Context()

	t, err := h.animals.GetTag(ctx, c.Param("code"))
	if err != nil {
		httperr.Write(c, httperr.ErrServer.WithCause(err))
		return
	}
	if t == nil || t.Status != domain.TagStatusActive {
		httperr.Write(c, httperr.ErrNotFound)
		return
	}
	a, err := h.animals.GetByID(ctx, t.AnimalID)
	if err != nil {
		httperr.Write(c, httperr.ErrServer.WithCause(err))
		return
	}
	if a == nil {
		httperr.Write(c, httperr.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tag": gin.H{"code": t.Code, "status": string(t.Status)},
		"animal": gin.H{
			"name":    a.Name,
			"species": a.Species,
			"breed":   a.Breed,
		},
	})
}

func animalJSON(a *domain.Animal) gin.H {
	out := gin.H{
		"id":         a.ID,
		"name":       a.Name,
		"species":    a.Species,
		"breed":      a.Breed,
		"created_at": a.CreatedAt,
	}
	if a.BirthDate != nil {
		out["birth_date"] = a.BirthDate.Format("2006-01-02")
	}
	return out
}
