// Package handler exposes the auth/session endpoints: exchanging a bearer
// token for a cookie session, logout, and the identity echo.
package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"unimalia/backend/internal/activeorg"
	"unimalia/backend/internal/audit"
	"unimalia/backend/internal/httperr"
	identitydomain "unimalia/backend/internal/identity/domain"
	"unimalia/backend/internal/identity/resolver"
	"unimalia/backend/internal/security"
	sessionservice "unimalia/backend/internal/session/service"
	"unimalia/backend/internal/telemetry"
	userdomain "unimalia/backend/internal/user/domain"
	userrepo "unimalia/backend/internal/user/repository"
)

// Handler serves the auth/session endpoints.
type Handler struct {
	tokens     *security.TokenProvider
	users      userrepo.Repository
	sessions   *sessionservice.Service
	selector   *activeorg.Selector
	cookieName string
	secure     bool
	auditor    audit.AuditLogger
	emitter    telemetry.EventEmitter
}

// New returns an auth handler. auditor and emitter may be nil.
func New(tokens *security.TokenProvider, users userrepo.Repository, sessions *sessionservice.Service,
	selector *activeorg.Selector, cookieName string, secure bool,
	auditor audit.AuditLogger, emitter telemetry.EventEmitter) *Handler {
	return &Handler{
		tokens:     tokens,
		users:      users,
		sessions:   sessions,
		selector:   selector,
		cookieName: cookieName,
		secure:     secure,
		auditor:    auditor,
		emitter:    emitter,
	}
}

type createSessionRequest struct {
	Name string `json:"name"`
}

// CreateSession handles POST /api/v1/auth/session: exchanges a valid bearer
// token for an opaque cookie session. Unknown subjects are provisioned as
// active users on first sign-in.
func (h *Handler) CreateSession(c *gin.Context) {
	ctx := c.Request.Context()

	raw := bearerToken(c.Request)
	if raw == "" {
		httperr.Write(c, httperr.ErrUnauthorized)
		return
	}
	userID, email, err := h.tokens.ValidateAccess(raw)
	if err != nil {
		httperr.Write(c, httperr.ErrUnauthorized.WithCause(err))
		return
	}

	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		httperr.Write(c, httperr.ErrServer.WithCause(err))
		return
	}
	if user == nil {
		var req createSessionRequest
		_ = c.ShouldBindJSON(&req) // body is optional
		now := time.Now().UTC()
		user = &userdomain.User{
			ID:        userID,
			Email:     email,
			Name:      req.Name,
			Status:    userdomain.UserStatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := user.Validate(); err != nil {
			httperr.Write(c, httperr.ErrInvalidInput.WithCause(err))
			return
		}
		if err := h.users.Create(ctx, user); err != nil {
			httperr.Write(c, httperr.ErrServer.WithCause(err))
			return
		}
	}
	if user.Status != userdomain.UserStatusActive {
		httperr.Write(c, httperr.ErrUnauthorized)
		return
	}

	id := identitydomain.Identity{ID: user.ID, Email: user.Email}
	token, sess, err := h.sessions.Create(ctx, id, c.ClientIP())
	if err != nil {
		httperr.Write(c, httperr.ErrServer.WithCause(err))
		return
	}
	http.SetCookie(c.Writer, h.sessionCookie(token, int(time.Until(sess.ExpiresAt).Seconds())))

	if h.auditor != nil {
		h.auditor.LogEvent(ctx, "", user.ID, "session_created", "session", "")
	}
	telemetry.EmitAsync(h.emitter, ctx, &telemetry.Event{
		UserID:    user.ID,
		EventType: "session_created",
		Source:    "auth",
		CreatedAt: time.Now().UTC(),
	})

	c.JSON(http.StatusCreated, gin.H{"user": userJSON(user)})
}

// DeleteSession handles DELETE /api/v1/auth/session: revokes the cookie
// session and clears both the session and active-organization cookies.
// Succeeds even when the cookie is absent or the session already revoked.
func (h *Handler) DeleteSession(c *gin.Context) {
	ctx := c.Request.Context()

	var token string
	if cookie, err := c.Request.Cookie(h.cookieName); err == nil {
		token = cookie.Value
	}
	if err := h.sessions.RevokeByToken(ctx, token); err != nil {
		httperr.Write(c, httperr.ErrServer.WithCause(err))
		return
	}

	http.SetCookie(c.Writer, h.sessionCookie("", -1))
	h.selector.Clear(c.Writer)

	if h.auditor != nil {
		userID := ""
		if id, err := resolver.FromContext(c); err == nil {
			userID = id.ID
		}
		h.auditor.LogEvent(ctx, "", userID, "session_revoked", "session", "")
	}

	c.Status(http.StatusNoContent)
}

// Me handles GET /api/v1/me: echoes the resolved identity's user record.
func (h *Handler) Me(c *gin.Context) {
	id, err := resolver.FromContext(c)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	user, err := h.users.GetByID(c.Request.Context(), id.ID)
	if err != nil {
		httperr.Write(c, httperr.ErrServer.WithCause(err))
		return
	}
	if user == nil {
		httperr.Write(c, httperr.ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userJSON(user)})
}

func (h *Handler) sessionCookie(value string, age int) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   age,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func userJSON(u *userdomain.User) gin.H {
	return gin.H{
		"id":     u.ID,
		"email":  u.Email,
		"name":   u.Name,
		"status": string(u.Status),
	}
}

func bearerToken(r *http.Request) string {
	const prefix = "bearer "
	auth := r.Header.Get("Authorization")
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return strings.TrimSpace(auth[len(prefix):])
	}
	return ""
}
