package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"

	"github.com/johnquangdev/peopleops/internal/adapter/handler"
	"github.com/johnquangdev/peopleops/internal/adapter/repository"
	"github.com/johnquangdev/peopleops/internal/infrastructure/cache"
	"github.com/johnquangdev/peopleops/internal/infrastructure/database"
	"github.com/johnquangdev/peopleops/internal/infrastructure/external/trigger"
	httpmw "github.com/johnquangdev/peopleops/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/peopleops/internal/infrastructure/storage"
	"github.com/johnquangdev/peopleops/internal/usecase/actions"
	"github.com/johnquangdev/peopleops/internal/usecase/ingestion"
	"github.com/johnquangdev/peopleops/internal/usecase/oneonone"
	"github.com/johnquangdev/peopleops/internal/usecase/recognition"
	pkgai "github.com/johnquangdev/peopleops/pkg/ai"
	"github.com/johnquangdev/peopleops/pkg/config"
	"github.com/johnquangdev/peopleops/pkg/jwt"
	"github.com/johnquangdev/peopleops/pkg/metrics"
	pkgvalidator "github.com/johnquangdev/peopleops/pkg/validator"
)

// @title           PeopleOps Meeting Pipeline API
// @version         1.0
// @description     Ingests meeting transcripts, records recognitions, links one-on-ones and extracts actions
// @BasePath        /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the service token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	e := echo.New()
	e.HideBanner = true
	e.Validator = pkgvalidator.New()

	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("2M"))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("http.request",
				zap.String("request_id", v.RequestID),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	}))

	// Database
	db, err := database.NewPostgresDB(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.CloseDB(db); err != nil {
			logger.Warn("failed to close database", zap.Error(err))
		}
	}()

	if cfg.Database.AutoMigrate {
		n, err := database.Migrate(db, cfg.Database.MigrationsDir, migrate.Up, 0)
		if err != nil {
			return err
		}
		logger.Info("migrations applied", zap.Int("count", n), zap.String("dir", cfg.Database.MigrationsDir))
	}

	m := metrics.NewMetrics()

	// Rate limiter
	limiter, closeLimiter, err := newLimiter(cfg, logger)
	if err != nil {
		return err
	}
	defer closeLimiter()

	// Optional raw payload archive
	var archiver ingestion.PayloadArchiver
	if cfg.Storage.Enabled {
		archive, err := storage.NewPayloadArchive(context.Background(), &cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to initialize payload archive: %w", err)
		}
		archiver = archive
		logger.Info("payload archive enabled", zap.String("bucket", cfg.Storage.BucketName))
	}

	// Repositories
	tenantRepo := repository.NewTenantRepository(db)
	userRepo := repository.NewUserRepository(db)
	meetingRepo := repository.NewMeetingRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	sentenceRepo := repository.NewSentenceRepository(db)
	recognitionRepo := repository.NewRecognitionRepository(db)
	oneOnOneRepo := repository.NewOneOnOneRepository(db)
	actionRepo := repository.NewActionRepository(db)
	syncLogRepo := repository.NewSyncLogRepository(db)
	processingRepo := repository.NewProcessingLogRepository(db)

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry)

	dispatcher := trigger.NewHTTPDispatcher(
		cfg.Extraction.TriggerURL,
		cfg.Webhook.TenantHeader,
		cfg.Extraction.TriggerTimeout,
		jwtManager,
		m,
		logger,
	)

	// Use cases
	recorder := recognition.NewRecorder(userRepo, recognitionRepo, logger)
	linker := oneonone.NewLinker(userRepo, oneOnOneRepo, meetingRepo, dispatcher, m, logger)
	ingestionService := ingestion.NewService(
		tenantRepo,
		meetingRepo,
		participantRepo,
		sentenceRepo,
		syncLogRepo,
		recorder,
		linker,
		archiver,
		m,
		logger,
	)

	llm := pkgai.NewGroqClient(cfg.LLM, logger)
	extractor := actions.NewService(
		oneOnOneRepo,
		meetingRepo,
		sentenceRepo,
		actionRepo,
		processingRepo,
		llm,
		actions.Options{
			MinTranscript:    cfg.Extraction.MinTranscript,
			TranscriptBudget: cfg.Extraction.TranscriptBudget,
			MinConfidence:    cfg.Extraction.MinConfidence,
			StaleAfter:       cfg.Extraction.StaleAfter,
		},
		m,
		logger,
	)

	// Routes
	router := handler.NewRouter(handler.RouterDeps{
		Config:          cfg,
		MeetingHandler:  handler.NewMeetingHandler(ingestionService, logger),
		OneOnOneHandler: handler.NewOneOnOneHandler(extractor, cfg.Extraction.RunTimeout, logger),
		Auth:            httpmw.NewAuthMiddleware(cfg.Webhook.Secret, cfg.Webhook.SecretHeader, cfg.Webhook.TenantHeader, jwtManager),
		Limiter:         limiter,
		Metrics:         m,
		DBHealth:        func() error { return database.Ping(db) },
		Logger:          logger,
	})
	router.Setup(e)

	// Start server
	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		logger.Info("starting server",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment),
			zap.String("model", llm.Model()),
		)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	}

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	// Let in-flight extraction triggers finish
	dispatcher.Wait()

	logger.Info("server stopped gracefully")
	return nil
}

func newLimiter(cfg *config.Config, logger *zap.Logger) (cache.Limiter, func(), error) {
	if cfg.RateLimit.Backend == "redis" {
		client, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.Info("using redis rate limiter", zap.String("addr", cfg.GetRedisAddr()))
		return cache.NewRedisLimiter(client, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window), func() {
			if err := client.Close(); err != nil {
				logger.Warn("failed to close redis", zap.Error(err))
			}
		}, nil
	}

	ml := cache.NewMemoryLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	return ml, ml.Close, nil
}
