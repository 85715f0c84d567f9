package jwt

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ServiceScopeExtract authorises calls to the extraction trigger
const ServiceScopeExtract = "one_on_ones:extract"

// Claims represents service token claims
type Claims struct {
	TenantID uuid.UUID `json:"tenant_id"`
	Scope    string    `json:"scope"`
	jwt.RegisteredClaims
}
