package resolver

import (
	"github.com/gin-gonic/gin"

	"unimalia/backend/internal/httperr"
	"unimalia/backend/internal/identity/domain"
)

const (
	identityKey    = "identity"
	identityErrKey = "identityErr"
)

// Middleware resolves the caller's identity once per request and stores the
// result on the gin context. A resolution failure is not fatal here; endpoints
// that need an identity surface it via FromContext.
func Middleware(res *Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := res.Resolve(c.Request.Context(), c.Request)
		if err != nil {
			c.Set(identityErrKey, err)
		} else {
			c.Set(identityKey, id)
		}
		c.Next()
	}
}

// FromContext returns the resolved identity, or the resolution failure (an
// unauthorized reason-code error) when none could be established.
func FromContext(c *gin.Context) (*domain.Identity, error) {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(*domain.Identity); ok {
			return id, nil
		}
	}
	if v, ok := c.Get(identityErrKey); ok {
		if err, ok := v.(error); ok {
			return nil, err
		}
	}
	return nil, httperr.ErrUnauthorized
}
