package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tenant is a customer organisation. All pipeline records are scoped to one.
type Tenant struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name         string    `json:"name" gorm:"type:varchar(255);not null"`
	Slug         string    `json:"slug" gorm:"type:varchar(100);uniqueIndex;not null"`
	EmailDomains string    `json:"email_domains" gorm:"type:text;not null;default:''"` // comma separated, e.g. "acme.com,acme.com.br"
	IsActive     bool      `json:"is_active" gorm:"default:true;not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Tenant) TableName() string {
	return "tenants"
}

// Domains returns the normalised list of email domains owned by the tenant
func (t *Tenant) Domains() []string {
	if t == nil || t.EmailDomains == "" {
		return nil
	}
	parts := strings.Split(t.EmailDomains, ",")
	domains := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		p = strings.TrimPrefix(p, "@")
		if p != "" {
			domains = append(domains, p)
		}
	}
	return domains
}

// IsInternalEmail reports whether the email belongs to one of the tenant's domains
func (t *Tenant) IsInternalEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}
	domain := strings.ToLower(strings.TrimSpace(email[at+1:]))
	for _, d := range t.Domains() {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return true
		}
	}
	return false
}
