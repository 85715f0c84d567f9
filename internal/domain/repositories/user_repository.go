package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/peopleops/internal/domain/entities"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// FindByID finds a user by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*entities.User, error)

	// FindByEmail finds an active user by email within a tenant
	FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*entities.User, error)

	// FindByEmails returns the active users of a tenant matching any of the emails.
	// Emails are compared case-insensitively; unknown emails are simply absent.
	FindByEmails(ctx context.Context, tenantID uuid.UUID, emails []string) ([]*entities.User, error)
}
