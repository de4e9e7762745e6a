// Package handler exposes the billing endpoints, gated on manage_billing in
// the caller's active organization.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"unimalia/backend/internal/activeorg"
	"unimalia/backend/internal/audit"
	"unimalia/backend/internal/billing"
	"unimalia/backend/internal/httperr"
	"unimalia/backend/internal/identity/resolver"
	orgrepo "unimalia/backend/internal/organization/repository"
	"unimalia/backend/internal/platform/authz"
)

// Handler serves billing endpoints.
type Handler struct {
	client     billing.Client
	orgs       orgrepo.Repository
	guard      *authz.Guard
	selector   *activeorg.Selector
	priceID    string
	successURL string
	cancelURL  string
	auditor    audit.AuditLogger
}

// New returns a billing handler. auditor may be nil.
func New(client billing.Client, orgs orgrepo.Repository, guard *authz.Guard, selector *activeorg.Selector,
	priceID, successURL, cancelURL string, auditor audit.AuditLogger) *Handler {
	return &Handler{
		client:     client,
		orgs:       orgs,
		guard:      guard,
		selector:   selector,
		priceID:    priceID,
		successURL: successURL,
		cancelURL:  cancelURL,
		auditor:    auditor,
	}
}

// requireBilling runs the identity, active-org, and manage_billing sequence
// and returns the authorized org id.
func (h *Handler) requireBilling(c *gin.Context) (userID, orgID string, ok bool) {
	id, err := resolver.FromContext(c)
	if err != nil {
		httperr.Write(c, err)
		return "", "", false
	}
	ctx := c.Request.Context()
	selection, _ := h.selector.Read(c.Request)
	orgID, err = h.guard.RequireActiveOrg(ctx, *id, selection)
	if err != nil {
		httperr.Write(c, err)
		return "", "", false
	}
	if err := h.guard.RequireCapability(ctx, *id, orgID, authz.CapManageBilling); err != nil {
		httperr.Write(c, err)
		return "", "", false
	}
	return id.ID, orgID, true
}

// Checkout handles POST /api/v1/billing/checkout: creates a provider-hosted
// checkout session for the active organization's subscription.
func (h *Handler) Checkout(c *gin.Context) {
	userID, orgID, ok := h.requireBilling(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	sess, err := h.client.CreateCheckoutSession(ctx, orgID, h.priceID, h.successURL, h.cancelURL)
	if err != nil {
		httperr.Write(c, httperr.ErrServer.WithCause(err))
		return
	}
	if h.auditor != nil {
		h.auditor.LogEvent(ctx, orgID, userID, "checkout_started", "billing", sess.ID)
	}
	c.JSON(http.StatusCreated, gin.H{"checkout": gin.H{"id": sess.ID, "url": sess.URL}})
}

type webhookRequest struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ClientReferenceID string `json:"client_reference_id"`
			Subscription      string `json:"subscription"`
		} `json:"object"`
	} `json:"data"`
}

// Webhook handles POST /api/v1/billing/webhook: the provider's checkout
// completion callback. Records the subscription id on the org named by
// client_reference_id. Unrecognized event types are acknowledged unchanged.
func (h *Handler) Webhook(c *gin.Context) {
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Write(c, httperr.ErrInvalidInput.WithCause(err))
		return
	}
	if req.Type == "checkout.session.completed" &&
		req.Data.Object.ClientReferenceID != "" && req.Data.Object.Subscription != "" {
		ctx := c.Request.Context()
		orgID := req.Data.Object.ClientReferenceID
		if err := h.orgs.SetSubscriptionID(ctx, orgID, req.Data.Object.Subscription); err != nil {
			httperr.Write(c, httperr.ErrServer.WithCause(err))
			return
		}
		if h.auditor != nil {
			h.auditor.LogEvent(ctx, orgID, "", "subscription_recorded", "billing", req.Data.Object.Subscription)
		}
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// Subscription handles GET /api/v1/billing/subscription: looks up the active
// organization's subscription. An org that never completed checkout reads as
// status "none".
func (h *Handler) Subscription(c *gin.Context) {
	_, orgID, ok := h.requireBilling(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	org, err := h.orgs.GetByID(ctx, orgID)
	if err != nil {
		httperr.Write(c, httperr.ErrServer.WithCause(err))
		return
	}
	if org == nil || org.SubscriptionID == "" {
		c.JSON(http.StatusOK, gin.H{"subscription": gin.H{"status": "none"}})
		return
	}
	sub, err := h.client.GetSubscription(ctx, org.SubscriptionID)
	if err != nil {
		httperr.Write(c, httperr.ErrServer.WithCause(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscription": gin.H{
		"id":                 sub.ID,
		"status":             sub.Status,
		"current_period_end": sub.CurrentPeriodEnd,
	}})
}
