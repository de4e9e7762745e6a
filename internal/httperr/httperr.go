// Package httperr defines the authorization reason codes returned by the API
// and their mapping to HTTP statuses. Handlers raise these at the point of
// detection; the Write helper translates them once at the response boundary.
package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error carries a machine-readable reason code alongside the HTTP status it
// maps to. Clients branch on the code (e.g. active_org_required renders an
// organization picker, forbidden renders access denied).
type Error struct {
	Code    string
	Status  int
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Code + ": " + e.cause.Error()
	}
	return e.Code + ": " + e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// Is matches two *Error values by code so wrapped instances compare equal to
// the package sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithCause returns a copy of e carrying cause for diagnostics. The code,
// status, and client-visible message are unchanged.
func (e *Error) WithCause(cause error) *Error {
	return &Error{Code: e.Code, Status: e.Status, Message: e.Message, cause: cause}
}

var (
	// ErrUnauthorized: no valid identity could be resolved from the request.
	ErrUnauthorized = &Error{Code: "unauthorized", Status: http.StatusUnauthorized, Message: "authentication required"}
	// ErrActiveOrgRequired: identity is valid but no organization is selected.
	ErrActiveOrgRequired = &Error{Code: "active_org_required", Status: http.StatusForbidden, Message: "no active organization selected"}
	// ErrActiveOrgForbidden: a selection exists but is not an active membership.
	ErrActiveOrgForbidden = &Error{Code: "active_org_forbidden", Status: http.StatusForbidden, Message: "selected organization is not accessible"}
	// ErrForbidden: membership or role insufficient for the capability.
	ErrForbidden = &Error{Code: "forbidden", Status: http.StatusForbidden, Message: "insufficient permissions"}
	// ErrVetNotVerified: role check passed but the professional credential is unverified.
	ErrVetNotVerified = &Error{Code: "vet_not_verified", Status: http.StatusForbidden, Message: "verified veterinary credential required"}
	// ErrNotFound: the addressed resource does not exist or is out of scope.
	ErrNotFound = &Error{Code: "not_found", Status: http.StatusNotFound, Message: "resource not found"}
	// ErrInvalidInput: the request body or parameters failed validation.
	ErrInvalidInput = &Error{Code: "invalid_input", Status: http.StatusBadRequest, Message: "invalid request"}
	// ErrServer: unexpected external-collaborator failure. Not retried here.
	ErrServer = &Error{Code: "server_error", Status: http.StatusInternalServerError, Message: "internal error"}
)

// Write renders err as the canonical error body. Unrecognized errors are
// reported as server_error without leaking their message.
func Write(c *gin.Context, err error) {
	var he *Error
	if !errors.As(err, &he) {
		he = ErrServer
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(he.Status, gin.H{
		"error": gin.H{"code": he.Code, "message": he.Message},
	})
}
