// Package server assembles the gin engine: middleware chain, route table, and
// health probe.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	activeorghandler "unimalia/backend/internal/activeorg/handler"
	animalhandler "unimalia/backend/internal/animal/handler"
	billinghandler "unimalia/backend/internal/billing/handler"
	clinicalhandler "unimalia/backend/internal/clinical/handler"
	identityhandler "unimalia/backend/internal/identity/handler"
	"unimalia/backend/internal/identity/resolver"
	membershiphandler "unimalia/backend/internal/membership/handler"
	organizationhandler "unimalia/backend/internal/organization/handler"
	professionalhandler "unimalia/backend/internal/professional/handler"
	reporthandler "unimalia/backend/internal/report/handler"
)

// Pinger reports storage reachability for the readiness probe (e.g. *sql.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps holds the wired handlers and cross-cutting collaborators for the router.
type Deps struct {
	Logger   *logrus.Logger
	Resolver *resolver.Resolver

	Auth          *identityhandler.Handler
	Organizations *organizationhandler.Handler
	Memberships   *membershiphandler.Handler
	ActiveOrg     *activeorghandler.Handler
	Professional  *professionalhandler.Handler
	Animals       *animalhandler.Handler
	Reports       *reporthandler.Handler
	Clinical      *clinicalhandler.Handler
	Billing       *billinghandler.Handler

	// DB is used by the readiness probe; may be nil.
	DB Pinger
}

// NewRouter builds the engine with the full route table.
//
// Route → handler mapping:
//   - /api/v1/auth/session, /api/v1/me        → internal/identity/handler
//   - /api/v1/orgs                            → internal/organization/handler
//   - /api/v1/me/memberships, /orgs/members   → internal/membership/handler
//   - /api/v1/orgs/active                     → internal/activeorg/handler
//   - /api/v1/me/professional-profile         → internal/professional/handler
//   - /api/v1/animals, /tags                  → internal/animal/handler
//   - /api/v1/reports                         → internal/report/handler
//   - /api/v1/clinical-events                 → internal/clinical/handler
//   - /api/v1/billing                         → internal/billing/handler
func NewRouter(deps Deps) *gin.Engine {
	engine := gin.New()
	engine.Use(Recovery(deps.Logger))
	engine.Use(RequestLogger(deps.Logger))
	engine.Use(resolver.Middleware(deps.Resolver))
	engine.NoRoute(NoRoute)

	engine.GET("/healthz", func(c *gin.Context) {
		if deps.DB != nil {
			if err := deps.DB.PingContext(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/api/v1")

	v1.POST("/auth/session", deps.Auth.CreateSession)
	v1.DELETE("/auth/session", deps.Auth.DeleteSession)
	v1.GET("/me", deps.Auth.Me)

	v1.POST("/orgs", deps.Organizations.Create)
	v1.GET("/me/memberships", deps.Memberships.ListMine)
	v1.POST("/orgs/members", deps.Memberships.AddMember)
	v1.PATCH("/orgs/members/:userID", deps.Memberships.UpdateMember)

	v1.GET("/orgs/active", deps.ActiveOrg.Get)
	v1.PUT("/orgs/active", deps.ActiveOrg.Put)
	v1.DELETE("/orgs/active", deps.ActiveOrg.Delete)

	v1.POST("/me/professional-profile", deps.Professional.Create)
	v1.GET("/me/professional-profile", deps.Professional.Get)

	v1.POST("/animals", deps.Animals.Create)
	v1.GET("/me/animals", deps.Animals.ListMine)
	v1.POST("/animals/:id/tag", deps.Animals.AttachTag)
	v1.GET("/tags/:code", deps.Animals.LookupTag)

	v1.POST("/reports", deps.Reports.Create)
	v1.GET("/reports", deps.Reports.ListOpen)
	v1.POST("/reports/:id/resolve", deps.Reports.Resolve)

	v1.POST("/clinical-events", deps.Clinical.Record)
	v1.POST("/clinical-events/:id/verify", deps.Clinical.Verify)
	v1.GET("/animals/:id/clinical-events", deps.Clinical.Timeline)

	v1.POST("/billing/checkout", deps.Billing.Checkout)
	v1.GET("/billing/subscription", deps.Billing.Subscription)
	v1.POST("/billing/webhook", deps.Billing.Webhook)

	return engine
}
