package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/johnquangdev/peopleops/internal/domain/entities"
	"github.com/johnquangdev/peopleops/internal/infrastructure/database"
	"github.com/johnquangdev/peopleops/pkg/config"
	pkgjwt "github.com/johnquangdev/peopleops/pkg/jwt"
)

// seed creates a demo tenant with a leader, two collaborators and a
// one-on-one scheduled for now, then prints a service token for the
// extraction endpoint. Re-running replaces the demo tenant.
func main() {
	slug := flag.String("slug", "demo", "tenant slug to (re)create")
	domain := flag.String("domain", "test.local", "tenant email domain")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.NewPostgresDB(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db) //nolint:errcheck

	var tenant *entities.Tenant
	var oneOnOne *entities.OneOnOne
	err = db.Transaction(func(tx *gorm.DB) error {
		var existing entities.Tenant
		if err := tx.Where("slug = ?", *slug).First(&existing).Error; err == nil {
			// tenant-scoped tables cascade from tenants
			if err := tx.Delete(&existing).Error; err != nil {
				return fmt.Errorf("failed to delete existing tenant: %w", err)
			}
		}

		tenant = &entities.Tenant{
			ID:           uuid.New(),
			Name:         "Demo",
			Slug:         *slug,
			EmailDomains: *domain,
			IsActive:     true,
		}
		if err := tx.Create(tenant).Error; err != nil {
			return fmt.Errorf("failed to create tenant: %w", err)
		}

		people := []struct {
			Local string
			Name  string
			Role  entities.UserRole
		}{
			{"alice", "Alice Leader", entities.RoleLeader},
			{"bob", "Bob Souza", entities.RoleCollaborator},
			{"maria", "Maria Silva", entities.RoleCollaborator},
		}
		users := make([]*entities.User, 0, len(people))
		for _, p := range people {
			u := entities.NewUser(tenant.ID, p.Local+"@"+*domain, p.Name)
			u.Role = p.Role
			if err := tx.Create(u).Error; err != nil {
				return fmt.Errorf("failed to create user %s: %w", u.Email, err)
			}
			users = append(users, u)
		}

		oneOnOne = &entities.OneOnOne{
			ID:             uuid.New(),
			TenantID:       tenant.ID,
			LeaderID:       users[0].ID,
			CollaboratorID: users[1].ID,
			ScheduledAt:    time.Now().UTC(),
			Status:         entities.OneOnOneStatusScheduled,
		}
		if err := tx.Create(oneOnOne).Error; err != nil {
			return fmt.Errorf("failed to create one-on-one: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Fatal("seed failed", zap.Error(err))
	}

	jwtManager := pkgjwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry)
	token, err := jwtManager.GenerateServiceToken(tenant.ID, pkgjwt.ServiceScopeExtract)
	if err != nil {
		logger.Fatal("failed to sign service token", zap.Error(err))
	}

	fmt.Printf("tenant_id:     %s\n", tenant.ID)
	fmt.Printf("one_on_one_id: %s\n", oneOnOne.ID)
	fmt.Printf("service token (valid %s):\n%s\n", jwtManager.GetExpiry(), token)
}
