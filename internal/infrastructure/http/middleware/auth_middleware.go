package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/peopleops/errors"
	"github.com/johnquangdev/peopleops/pkg/jwt"
)

// Context keys set by the auth middleware
const (
	TenantContextKey     = "tenant_id"
	AuthMethodContextKey = "auth_method"
)

// Auth methods recorded on the context
const (
	AuthMethodSecret = "secret"
	AuthMethodBearer = "bearer"
)

// TokenValidator validates service bearer tokens
type TokenValidator interface {
	ValidateServiceToken(tokenString, scope string) (*jwt.Claims, error)
}

// AuthMiddleware authenticates machine callers by shared secret or service token
type AuthMiddleware struct {
	secret       string
	secretHeader string
	tenantHeader string
	tokens       TokenValidator
}

// NewAuthMiddleware creates a new auth middleware. tokens may be nil to disable bearer auth.
func NewAuthMiddleware(secret, secretHeader, tenantHeader string, tokens TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		secret:       secret,
		secretHeader: secretHeader,
		tenantHeader: tenantHeader,
		tokens:       tokens,
	}
}

// RequireSecret checks the shared-secret header and requires a valid tenant header.
// Nothing downstream runs when either is missing or wrong.
func (m *AuthMiddleware) RequireSecret(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if m.secret == "" {
			return errors.ErrMisconfigured("webhook secret")
		}
		if err := m.checkSecret(c.Request().Header.Get(m.secretHeader)); err != nil {
			return err
		}

		raw := strings.TrimSpace(c.Request().Header.Get(m.tenantHeader))
		if raw == "" {
			return errors.ErrMissingTenant()
		}
		tenantID, err := uuid.Parse(raw)
		if err != nil {
			return errors.ErrTenantNotFound(raw)
		}

		c.Set(TenantContextKey, tenantID)
		c.Set(AuthMethodContextKey, AuthMethodSecret)
		return next(c)
	}
}

// RequireSecretOrBearer accepts the shared secret or a service token with the given scope.
// The tenant comes from the token or the tenant header; handlers may fall back to the body.
func (m *AuthMiddleware) RequireSecretOrBearer(scope string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			headerTenant, err := m.optionalTenant(c)
			if err != nil {
				return err
			}

			if token := extractBearer(c.Request().Header.Get(echo.HeaderAuthorization)); token != "" && m.tokens != nil {
				claims, err := m.tokens.ValidateServiceToken(token, scope)
				if err != nil {
					return errors.ErrInvalidToken()
				}
				if headerTenant != uuid.Nil && headerTenant != claims.TenantID {
					return errors.ErrInvalidToken().WithDetail("reason", "tenant mismatch")
				}
				c.Set(TenantContextKey, claims.TenantID)
				c.Set(AuthMethodContextKey, AuthMethodBearer)
				return next(c)
			}

			if m.secret == "" {
				return errors.ErrMisconfigured("webhook secret")
			}
			if err := m.checkSecret(c.Request().Header.Get(m.secretHeader)); err != nil {
				return err
			}
			if headerTenant != uuid.Nil {
				c.Set(TenantContextKey, headerTenant)
			}
			c.Set(AuthMethodContextKey, AuthMethodSecret)
			return next(c)
		}
	}
}

func (m *AuthMiddleware) checkSecret(given string) error {
	if given == "" {
		return errors.ErrMissingSecret()
	}
	if subtle.ConstantTimeCompare([]byte(given), []byte(m.secret)) != 1 {
		return errors.ErrInvalidSecret()
	}
	return nil
}

func (m *AuthMiddleware) optionalTenant(c echo.Context) (uuid.UUID, error) {
	raw := strings.TrimSpace(c.Request().Header.Get(m.tenantHeader))
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.ErrTenantNotFound(raw)
	}
	return id, nil
}

// TenantFromContext returns the tenant set by the auth middleware
func TenantFromContext(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(TenantContextKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// extractBearer extracts the token from "Bearer <token>"
func extractBearer(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
