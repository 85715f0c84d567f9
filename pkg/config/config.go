package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Storage    StorageConfig
	LLM        LLMConfig
	Webhook    WebhookConfig
	Extraction ExtractionConfig
	RateLimit  RateLimitConfig
	JWT        JWTConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string        `envconfig:"ENVIRONMENT" default:"development"`
	AllowedOrigins  []string      `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host          string `envconfig:"HOST" default:"localhost"`
	Port          string `envconfig:"PORT" default:"5432"`
	User          string `envconfig:"USER" default:"postgres"`
	Password      string `envconfig:"PASSWORD" default:"postgres"`
	Name          string `envconfig:"NAME" default:"peopleops"`
	SSLMode       string `envconfig:"SSLMODE" default:"disable"`
	MaxConns      int    `envconfig:"MAX_CONNS" default:"25"`
	MinConns      int    `envconfig:"MIN_CONNS" default:"5"`
	MigrationsDir string `envconfig:"MIGRATIONS_DIR" default:"migrations"`
	AutoMigrate   bool   `envconfig:"AUTO_MIGRATE" default:"true"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     string `envconfig:"PORT" default:"6379"`
	Password string `envconfig:"PASSWORD" default:""`
	DB       int    `envconfig:"DB" default:"0"`
}

// StorageConfig holds object storage configuration for the payload archive
type StorageConfig struct {
	Enabled         bool   `envconfig:"ENABLED" default:"false"`
	Endpoint        string `envconfig:"ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string `envconfig:"ACCESS_KEY" default:"minioadmin"`
	SecretAccessKey string `envconfig:"SECRET_KEY" default:"minioadmin"`
	BucketName      string `envconfig:"BUCKET" default:"peopleops-payloads"`
	UseSSL          bool   `envconfig:"USE_SSL" default:"false"`
}

// LLMConfig holds the OpenAI-compatible chat completion endpoint settings
type LLMConfig struct {
	APIKey      string        `envconfig:"API_KEY"`
	BaseURL     string        `envconfig:"BASE_URL" default:"https://api.groq.com/openai/v1"`
	Model       string        `envconfig:"MODEL" default:"llama-3.3-70b-versatile"`
	MaxTokens   int           `envconfig:"MAX_TOKENS" default:"2000"`
	Temperature float32       `envconfig:"TEMPERATURE" default:"0.2"`
	Timeout     time.Duration `envconfig:"TIMEOUT" default:"60s"`
	MaxRetries  uint64        `envconfig:"MAX_RETRIES" default:"2"`
}

// WebhookConfig holds the shared-secret authentication settings
type WebhookConfig struct {
	Secret       string `envconfig:"SECRET"`
	SecretHeader string `envconfig:"SECRET_HEADER" default:"X-Webhook-Secret"`
	TenantHeader string `envconfig:"TENANT_HEADER" default:"X-Tenant-Id"`
}

// ExtractionConfig holds transcript action extraction settings
type ExtractionConfig struct {
	TriggerURL       string        `envconfig:"TRIGGER_URL" default:"http://localhost:8080/v1/one-on-ones/extract-actions"`
	TriggerTimeout   time.Duration `envconfig:"TRIGGER_TIMEOUT" default:"10s"`
	StaleAfter       time.Duration `envconfig:"STALE_AFTER" default:"10m"`
	RunTimeout       time.Duration `envconfig:"RUN_TIMEOUT" default:"5m"`
	TranscriptBudget int           `envconfig:"TRANSCRIPT_BUDGET" default:"15000"`
	MinTranscript    int           `envconfig:"MIN_TRANSCRIPT" default:"50"`
	MinConfidence    float64       `envconfig:"MIN_CONFIDENCE" default:"0.5"`
}

// RateLimitConfig holds per-caller rate limit settings
type RateLimitConfig struct {
	Backend     string        `envconfig:"BACKEND" default:"memory"` // "memory" or "redis"
	RPS         float64       `envconfig:"RPS" default:"1"`
	Burst       int           `envconfig:"BURST" default:"10"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"60"`
}

// JWTConfig holds service token configuration
type JWTConfig struct {
	Secret string        `envconfig:"SECRET"`
	Issuer string        `envconfig:"ISSUER" default:"peopleops"`
	Expiry time.Duration `envconfig:"EXPIRY" default:"5m"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	cfg := &Config{}
	sections := []struct {
		prefix string
		spec   interface{}
	}{
		{"", &cfg.Server},
		{"DB", &cfg.Database},
		{"REDIS", &cfg.Redis},
		{"STORAGE", &cfg.Storage},
		{"LLM", &cfg.LLM},
		{"WEBHOOK", &cfg.Webhook},
		{"EXTRACTION", &cfg.Extraction},
		{"RATE_LIMIT", &cfg.RateLimit},
		{"JWT", &cfg.JWT},
	}
	for _, s := range sections {
		if err := envconfig.Process(s.prefix, s.spec); err != nil {
			return nil, fmt.Errorf("failed to load %s config: %w", s.prefix, err)
		}
	}

	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = cfg.Webhook.Secret
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Webhook.Secret == "" {
		return fmt.Errorf("WEBHOOK_SECRET is required")
	}
	if c.IsProduction() && c.LLM.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required in production")
	}
	if c.RateLimit.Backend != "memory" && c.RateLimit.Backend != "redis" {
		return fmt.Errorf("RATE_LIMIT_BACKEND must be memory or redis, got %q", c.RateLimit.Backend)
	}
	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
