package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/johnquangdev/peopleops/internal/adapter/dto/common"
	"github.com/johnquangdev/peopleops/internal/infrastructure/cache"
	"github.com/johnquangdev/peopleops/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/peopleops/pkg/config"
	"github.com/johnquangdev/peopleops/pkg/jwt"
	"github.com/johnquangdev/peopleops/pkg/metrics"
)

// HealthChecker reports whether a backing dependency is reachable
type HealthChecker func() error

// Router holds all handlers
type Router struct {
	cfg             *config.Config
	meetingHandler  *Meeting
	oneOnOneHandler *OneOnOne
	auth            *middleware.AuthMiddleware
	limiter         cache.Limiter
	metrics         *metrics.Metrics
	dbHealth        HealthChecker
	logger          *zap.Logger
}

// RouterDeps groups what the router needs
type RouterDeps struct {
	Config          *config.Config
	MeetingHandler  *Meeting
	OneOnOneHandler *OneOnOne
	Auth            *middleware.AuthMiddleware
	Limiter         cache.Limiter
	Metrics         *metrics.Metrics
	DBHealth        HealthChecker
	Logger          *zap.Logger
}

// NewRouter creates a new router with all handlers
func NewRouter(deps RouterDeps) *Router {
	return &Router{
		cfg:             deps.Config,
		meetingHandler:  deps.MeetingHandler,
		oneOnOneHandler: deps.OneOnOneHandler,
		auth:            deps.Auth,
		limiter:         deps.Limiter,
		metrics:         deps.Metrics,
		dbHealth:        deps.DBHealth,
		logger:          deps.Logger,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.HTTPErrorHandler = ErrorHandler(rt.logger)

	// Preflight runs before routing so OPTIONS succeeds on every path
	e.Pre(middleware.Preflight(rt.cfg.Server.AllowedOrigins, []string{
		echo.HeaderContentType,
		echo.HeaderAuthorization,
		rt.cfg.Webhook.SecretHeader,
		rt.cfg.Webhook.TenantHeader,
	}))

	e.GET("/health", rt.healthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/v1")
	rt.setupWebhookRoutes(v1)
	rt.setupOneOnOneRoutes(v1)
}

// guarded puts the rate limit behind auth so only authenticated tenants spend budget
func (rt *Router) guarded(auth echo.MiddlewareFunc) []echo.MiddlewareFunc {
	chain := []echo.MiddlewareFunc{auth}
	if rt.limiter != nil {
		chain = append(chain, middleware.RateLimit(rt.limiter, rt.metrics, rt.logger))
	}
	return chain
}

// setupWebhookRoutes configures inbound provider notifications
func (rt *Router) setupWebhookRoutes(g *echo.Group) {
	webhooks := g.Group("/webhooks")
	webhooks.POST("/meetings", rt.meetingHandler.IngestNotification, rt.guarded(rt.auth.RequireSecret)...)
}

// setupOneOnOneRoutes configures internal one-on-one processing routes
func (rt *Router) setupOneOnOneRoutes(g *echo.Group) {
	oneOnOnes := g.Group("/one-on-ones")
	oneOnOnes.POST("/extract-actions", rt.oneOnOneHandler.ExtractActions, rt.guarded(rt.auth.RequireSecretOrBearer(jwt.ServiceScopeExtract))...)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	resp := common.HealthResponse{
		Status:      "ok",
		Environment: rt.cfg.Server.Environment,
	}
	if rt.dbHealth != nil {
		resp.Database = "ok"
		if err := rt.dbHealth(); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
			return c.JSON(http.StatusServiceUnavailable, resp)
		}
	}
	return c.JSON(http.StatusOK, resp)
}
