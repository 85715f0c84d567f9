package middleware

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/peopleops/errors"
	"github.com/johnquangdev/peopleops/internal/infrastructure/cache"
	"github.com/johnquangdev/peopleops/pkg/metrics"
)

// RateLimit rejects callers over their budget with 429. It must run after the
// auth middleware: callers are keyed by auth method and authenticated tenant,
// falling back to the client IP. A limiter backend error lets the request through.
func RateLimit(limiter cache.Limiter, m *metrics.Metrics, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateLimitKey(c)

			allowed, err := limiter.Allow(c.Request().Context(), key)
			if err != nil {
				if logger != nil {
					logger.Warn("rate_limiter_unavailable", zap.String("key", key), zap.Error(err))
				}
				return next(c)
			}
			if !allowed {
				m.RecordRateLimited()
				if logger != nil {
					logger.Warn("rate_limit_exceeded", zap.String("key", key), zap.String("path", c.Path()))
				}
				return errors.ErrRateLimited()
			}
			return next(c)
		}
	}
}

// rateLimitKey gives service-token callers their own bucket so internal
// triggers never compete with provider deliveries
func rateLimitKey(c echo.Context) string {
	method, _ := c.Get(AuthMethodContextKey).(string)
	if method == "" {
		method = "anonymous"
	}
	if tenantID, ok := TenantFromContext(c); ok {
		return method + ":tenant:" + tenantID.String()
	}
	return method + ":ip:" + c.RealIP()
}
