// Package resolver determines the authenticated identity for an inbound
// request. Resolution strategies are an explicit ordered list: the first one
// to succeed wins, and every failure is collected so a final Unauthorized can
// carry full diagnostics instead of just the last strategy's error.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"unimalia/backend/internal/httperr"
	"unimalia/backend/internal/identity/domain"
)

// ErrNoIdentity is the strategy-level failure for an absent credential
// (missing cookie, missing Authorization header). Strategies return it so the
// resolver can distinguish "nothing to try" from a backend rejection.
var ErrNoIdentity = errors.New("no credential present")

// Strategy resolves an identity from one kind of request credential.
// A failure is expected and non-fatal as long as a later strategy succeeds.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, r *http.Request) (*domain.Identity, error)
}

// Resolver tries its strategies in order. Cookie session comes before bearer
// token so browser navigation keeps working for callers that carry both.
type Resolver struct {
	strategies []Strategy
}

// New returns a Resolver over the given strategies, tried in order.
func New(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// Resolve returns the identity from the first succeeding strategy. When all
// strategies fail it returns httperr.ErrUnauthorized wrapping the joined
// per-strategy failures; an earlier strategy's error is never propagated on
// its own.
func (r *Resolver) Resolve(ctx context.Context, req *http.Request) (*domain.Identity, error) {
	var failures []error
	for _, s := range r.strategies {
		id, err := s.Resolve(ctx, req)
		if err == nil && id != nil {
			return id, nil
		}
		if err == nil {
			err = ErrNoIdentity
		}
		failures = append(failures, fmt.Errorf("%s: %w", s.Name(), err))
	}
	return nil, httperr.ErrUnauthorized.WithCause(errors.Join(failures...))
}
