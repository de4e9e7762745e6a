// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev owner (owner@example.com) already exists.
// When JWT_PRIVATE_KEY is set, prints a dev bearer token for each seeded user.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"unimalia/backend/internal/animal/domain"
	animalrepo "unimalia/backend/internal/animal/repository"
	"unimalia/backend/internal/config"
	"unimalia/backend/internal/db"
	membershipdomain "unimalia/backend/internal/membership/domain"
	membershiprepo "unimalia/backend/internal/membership/repository"
	orgdomain "unimalia/backend/internal/organization/domain"
	orgrepo "unimalia/backend/internal/organization/repository"
	professionaldomain "unimalia/backend/internal/professional/domain"
	professionalrepo "unimalia/backend/internal/professional/repository"
	"unimalia/backend/internal/security"
	userdomain "unimalia/backend/internal/user/domain"
	userrepo "unimalia/backend/internal/user/repository"
)

const (
	ownerEmail     = "owner@example.com"
	vetEmail       = "vet@example.com"
	assistantEmail = "assistant@example.com"

	ownerID     = "dev-user-owner"
	vetID       = "dev-user-vet"
	assistantID = "dev-user-assistant"
	orgID       = "dev-org-001"
	animalID    = "dev-animal-001"
	tagCode     = "UNI-0001"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	users := userrepo.NewPostgresRepository(conn)
	orgs := orgrepo.NewPostgresRepository(conn)
	memberships := membershiprepo.NewPostgresRepository(conn)
	professionals := professionalrepo.NewPostgresRepository(conn)
	animals := animalrepo.NewPostgresRepository(conn)

	existing, err := users.GetByEmail(ctx, ownerEmail)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	if existing != nil {
		log.Println("seed: dev data already present, skipping inserts")
	} else {
		now := time.Now().UTC()

		for _, u := range []*userdomain.User{
			{ID: ownerID, Email: ownerEmail, Name: "Dev Owner", Status: userdomain.UserStatusActive, CreatedAt: now, UpdatedAt: now},
			{ID: vetID, Email: vetEmail, Name: "Dev Vet", Status: userdomain.UserStatusActive, CreatedAt: now, UpdatedAt: now},
			{ID: assistantID, Email: assistantEmail, Name: "Dev Assistant", Status: userdomain.UserStatusActive, CreatedAt: now, UpdatedAt: now},
		} {
			if err := users.Create(ctx, u); err != nil {
				log.Fatalf("seed user %s: %v", u.Email, err)
			}
		}

		if err := orgs.Create(ctx, &orgdomain.Org{
			ID: orgID, Name: "Dev Veterinary Clinic", Status: orgdomain.OrgStatusActive, CreatedAt: now,
		}); err != nil {
			log.Fatalf("seed org: %v", err)
		}

		for i, m := range []*membershipdomain.Membership{
			{UserID: ownerID, OrgID: orgID, Role: membershipdomain.RoleOrgOwner, Status: membershipdomain.StatusActive, IsDefault: true},
			{UserID: vetID, OrgID: orgID, Role: membershipdomain.RoleVet, Status: membershipdomain.StatusActive, IsDefault: true},
			{UserID: assistantID, OrgID: orgID, Role: membershipdomain.RoleAssistant, Status: membershipdomain.StatusActive, IsDefault: true},
		} {
			m.ID = fmt.Sprintf("dev-membership-%03d", i+1)
			m.CreatedAt = now
			if err := memberships.Create(ctx, m); err != nil {
				log.Fatalf("seed membership %s: %v", m.UserID, err)
			}
		}

		// The vet credential comes in pending and is flipped to verified the
		// way the registry sync would.
		if err := professionals.Create(ctx, &professionaldomain.Profile{
			ID:                 "dev-profile-001",
			UserID:             vetID,
			Category:           professionaldomain.CategoryVet,
			RegistrationNumber: "VET-12345",
			VerificationStatus: professionaldomain.VerificationPending,
			CreatedAt:          now,
			UpdatedAt:          now,
		}); err != nil {
			log.Fatalf("seed profile: %v", err)
		}
		if err := professionals.UpdateVerification(ctx, vetID, professionaldomain.VerificationVerified); err != nil {
			log.Fatalf("seed profile verification: %v", err)
		}

		if err := animals.Create(ctx, &domain.Animal{
			ID: animalID, OwnerID: ownerID, Name: "Rex", Species: "dog", Breed: "labrador", CreatedAt: now,
		}); err != nil {
			log.Fatalf("seed animal: %v", err)
		}
		if err := animals.AttachTag(ctx, &domain.Tag{
			Code: tagCode, AnimalID: animalID, Status: domain.TagStatusActive, CreatedAt: now,
		}); err != nil {
			log.Fatalf("seed tag: %v", err)
		}

		log.Println("seed: dev data inserted")
	}

	if cfg.JWTPrivateKey == "" {
		return
	}
	privateKey, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		log.Fatalf("jwt private key: %v", err)
	}
	tokens := security.NewTokenProvider(privateKey, privateKey.Public(), cfg.JWTIssuer, cfg.JWTAudience, 24*time.Hour)
	for _, u := range []struct{ id, email string }{
		{ownerID, ownerEmail}, {vetID, vetEmail}, {assistantID, assistantEmail},
	} {
		token, _, err := tokens.IssueAccess(u.id, u.email)
		if err != nil {
			log.Fatalf("seed token for %s: %v", u.email, err)
		}
		fmt.Printf("%s:\n  Authorization: Bearer %s\n", u.email, token)
	}
}
