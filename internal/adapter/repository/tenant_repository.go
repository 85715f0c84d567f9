package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/peopleops/internal/domain/entities"
)

// TenantRepository implements the tenant repository interface using GORM
type TenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// FindByID finds a tenant by ID
func (r *TenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Tenant, error) {
	var tenant entities.Tenant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to find tenant by ID: %w", err)
	}
	return &tenant, nil
}
