package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/peopleops/internal/domain/entities"
)

// TenantRepository defines the interface for tenant data access
type TenantRepository interface {
	// FindByID finds a tenant by ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Tenant, error)
}
