package main

import (
	"context"
	"crypto"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"unimalia/backend/internal/activeorg"
	activeorghandler "unimalia/backend/internal/activeorg/handler"
	animalhandler "unimalia/backend/internal/animal/handler"
	animalrepo "unimalia/backend/internal/animal/repository"
	"unimalia/backend/internal/audit"
	auditrepo "unimalia/backend/internal/audit/repository"
	"unimalia/backend/internal/billing"
	billinghandler "unimalia/backend/internal/billing/handler"
	clinicalhandler "unimalia/backend/internal/clinical/handler"
	clinicalrepo "unimalia/backend/internal/clinical/repository"
	"unimalia/backend/internal/config"
	"unimalia/backend/internal/db"
	"unimalia/backend/internal/email"
	identityhandler "unimalia/backend/internal/identity/handler"
	"unimalia/backend/internal/identity/resolver"
	membershiphandler "unimalia/backend/internal/membership/handler"
	membershiprepo "unimalia/backend/internal/membership/repository"
	organizationhandler "unimalia/backend/internal/organization/handler"
	orgrepo "unimalia/backend/internal/organization/repository"
	"unimalia/backend/internal/platform/authz"
	professionalhandler "unimalia/backend/internal/professional/handler"
	professionalrepo "unimalia/backend/internal/professional/repository"
	reporthandler "unimalia/backend/internal/report/handler"
	reportrepo "unimalia/backend/internal/report/repository"
	"unimalia/backend/internal/security"
	"unimalia/backend/internal/server"
	sessionrepo "unimalia/backend/internal/session/repository"
	sessionservice "unimalia/backend/internal/session/service"
	"unimalia/backend/internal/telemetry"
	teleotel "unimalia/backend/internal/telemetry/otel"
	"unimalia/backend/internal/telemetry/producer"
	userrepo "unimalia/backend/internal/user/repository"
)

const accessTokenTTL = 15 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}
	if cfg.JWTPublicKey == "" {
		log.Fatal("JWT_PUBLIC_KEY is not set; bearer tokens cannot be validated without it")
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	publicKey, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		log.Fatalf("jwt public key: %v", err)
	}
	var privateKey crypto.Signer
	if cfg.JWTPrivateKey != "" {
		privateKey, err = security.ParsePrivateKey(cfg.JWTPrivateKey)
		if err != nil {
			log.Fatalf("jwt private key: %v", err)
		}
	}
	tokens := security.NewTokenProvider(privateKey, publicKey, cfg.JWTIssuer, cfg.JWTAudience, accessTokenTTL)

	ctx := context.Background()
	providers, err := teleotel.NewProviders(ctx, cfg.OTLPEndpoint, "unimalia-backend", !cfg.Production())
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()

	kafkaProducer, err := producer.NewKafkaProducer(cfg.AuditKafkaBrokersList(), cfg.AuditKafkaTopic)
	if err != nil {
		log.Fatalf("kafka: %v", err)
	}
	var emitter telemetry.EventEmitter
	if kafkaProducer != nil {
		emitter = kafkaProducer
	}

	users := userrepo.NewPostgresRepository(conn)
	sessions := sessionrepo.NewPostgresRepository(conn)
	memberships := membershiprepo.NewPostgresRepository(conn)
	orgs := orgrepo.NewPostgresRepository(conn)
	professionals := professionalrepo.NewPostgresRepository(conn)
	animals := animalrepo.NewPostgresRepository(conn)
	reports := reportrepo.NewPostgresRepository(conn)
	clinicals := clinicalrepo.NewPostgresRepository(conn)
	audits := auditrepo.NewPostgresRepository(conn)

	auditor := audit.NewLogger(audits)
	sessionSvc := sessionservice.NewService(sessions, cfg.SessionTTLDuration())
	selector := activeorg.NewSelector(cfg.ActiveOrgCookieName, cfg.Production(), memberships)
	guard := authz.NewGuard(memberships, professionals)

	res := resolver.New(
		&resolver.CookieSession{CookieName: cfg.SessionCookieName, Sessions: sessions, Users: users},
		&resolver.BearerToken{Tokens: tokens},
	)

	var mailer email.Sender
	if cfg.EmailAPIKey != "" {
		mailer = email.NewResendClient(cfg.EmailAPIKey, cfg.EmailBaseURL, cfg.EmailFrom)
	}
	billingClient := billing.NewStripeClient(cfg.CheckoutAPIKey, cfg.CheckoutBaseURL)

	engine := server.NewRouter(server.Deps{
		Logger:   logger,
		Resolver: res,
		Auth: identityhandler.New(tokens, users, sessionSvc, selector,
			cfg.SessionCookieName, cfg.Production(), auditor, emitter),
		Organizations: organizationhandler.New(orgs, memberships, auditor),
		Memberships:   membershiphandler.New(memberships, users, orgs, guard, selector, mailer, auditor),
		ActiveOrg:     activeorghandler.New(selector, memberships, auditor, emitter),
		Professional:  professionalhandler.New(professionals, auditor),
		Animals:       animalhandler.New(animals, auditor),
		Reports:       reporthandler.New(reports, animals, users, mailer, auditor),
		Clinical:      clinicalhandler.New(clinicals, animals, guard, selector, auditor, emitter),
		Billing: billinghandler.New(billingClient, orgs, guard, selector,
			cfg.CheckoutPriceID, cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL, auditor),
		DB: conn,
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: engine,
	}
	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}

	// Let in-flight async event emits drain before tearing down their sinks.
	time.Sleep(telemetry.ShutdownDrainDuration)
	if err := kafkaProducer.Close(); err != nil {
		log.Printf("kafka close: %v", err)
	}
	if err := providers.Shutdown(context.Background()); err != nil {
		log.Printf("telemetry shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
