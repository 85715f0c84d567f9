package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/peopleops/internal/domain/entities"
)

// UserRepository implements the user repository interface using GORM
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// FindByID finds a user by ID
func (r *UserRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *UserRepository) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND lower(email) = ? AND is_active = ?", tenantID, entities.NormalizeEmail(email), true).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}

// FindByEmails resolves a batch of emails to active users
func (r *UserRepository) FindByEmails(ctx context.Context, tenantID uuid.UUID, emails []string) ([]*entities.User, error) {
	normalized := make([]string, 0, len(emails))
	for _, e := range emails {
		if e = entities.NormalizeEmail(e); e != "" && !strings.ContainsRune(e, ' ') {
			normalized = append(normalized, e)
		}
	}
	if len(normalized) == 0 {
		return nil, nil
	}

	var users []*entities.User
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND lower(email) IN ? AND is_active = ?", tenantID, normalized, true).
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to find users by email: %w", err)
	}
	return users, nil
}
