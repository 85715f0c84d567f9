package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserRole defines user roles
type UserRole string

const (
	RoleAdmin        UserRole = "admin"
	RoleLeader       UserRole = "leader"
	RoleCollaborator UserRole = "collaborator"
)

// IsValid checks if the user role is valid
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleLeader, RoleCollaborator:
		return true
	}
	return false
}

// User is an internal identity of a tenant. Meeting participants are
// resolved to users by email.
type User struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID uuid.UUID `json:"tenant_id" gorm:"type:uuid;not null;uniqueIndex:idx_users_tenant_email"`
	Email    string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex:idx_users_tenant_email"`
	Name     string    `json:"name" gorm:"type:varchar(255);not null"`
	Role     UserRole  `json:"role" gorm:"type:varchar(50);default:'collaborator';not null"`
	IsActive bool      `json:"is_active" gorm:"default:true;not null"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a new user with default values
func NewUser(tenantID uuid.UUID, email, name string) *User {
	now := time.Now()
	return &User{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Email:     NormalizeEmail(email),
		Name:      name,
		Role:      RoleCollaborator,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
