package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/visa-interview/internal/pkg/retry"
	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr      string        `env:"SERVER_ADDR" envDefault:":8080"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	CORSOrigins     []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	// APISpecFile is served under /docs; docs are disabled when empty
	APISpecFile string `env:"API_SPEC_FILE" envDefault:"docs/swagger.yaml"`

	// Storage configuration
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"postgres"`
	// MemorySeedCases lists caseID:userID pairs created at startup by the memory driver
	MemorySeedCases string `env:"MEMORY_SEED_CASES"`

	// Database configuration
	DatabaseURL         string        `env:"DATABASE_URL"`
	MigrationsSource    string        `env:"MIGRATIONS_SOURCE" envDefault:"file://internal/repository/migrations"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// Retries of serialization failures in answer writes
	DBRetry pkgRetry.RetryConfig `envPrefix:"DB_RETRY_"`

	// Interview engine configuration
	InterviewCfg InterviewConfig `envPrefix:"INTERVIEW_"`

	// Per-user limits on interview routes
	RateLimitCfg RateLimitConfig `envPrefix:"RATE_LIMIT_"`

	// Outbound event delivery
	CallbackConnectorCfg CallbackConnectorConfig `envPrefix:"CALLBACK_"`

	// Telegram front-end, only read by the telegram-bot binary
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Environment (set from flag, not from env var)
	Environment string
}

type InterviewConfig struct {
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	// MaxQuestions overrides the rule catalog limit when positive
	MaxQuestions int `env:"MAX_QUESTIONS" envDefault:"0"`
	// RulesFile is a YAML rule catalog; the embedded catalog is used when empty
	RulesFile    string        `env:"RULES_FILE"`
	CacheTTL     time.Duration `env:"CACHE_TTL" envDefault:"10m"`
	CacheCleanup time.Duration `env:"CACHE_CLEANUP" envDefault:"15m"`
}

type RateLimitConfig struct {
	Enabled   bool `env:"ENABLED" envDefault:"true"`
	PerMinute int  `env:"PER_MINUTE" envDefault:"120"`
	Burst     int  `env:"BURST" envDefault:"20"`
	// IdleTTL drops the limiter of a user that has been quiet this long
	IdleTTL time.Duration `env:"IDLE_TTL" envDefault:"10m"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string        `env:"BOT_TOKEN"`
	UpdateTimeout      int           `env:"UPDATE_TIMEOUT" envDefault:"60"`
	RateLimitPerMinute int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"30"`
	RateLimitBurst     int           `env:"RATE_LIMIT_BURST" envDefault:"5"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	// ChatStateTTL drops the chat to session mapping of an idle chat
	ChatStateTTL time.Duration `env:"CHAT_STATE_TTL" envDefault:"24h"`
}

// Validate checks the settings the bot needs; the HTTP server never calls it
func (c *TelegramConfig) Validate() error {
	var errs []string

	if c.BotToken == "" {
		errs = append(errs, "TELEGRAM_BOT_TOKEN is required")
	}
	if c.UpdateTimeout < 1 || c.UpdateTimeout > 600 {
		errs = append(errs, fmt.Sprintf("TELEGRAM_UPDATE_TIMEOUT must be between 1 and 600 seconds, got %d", c.UpdateTimeout))
	}
	if c.RateLimitPerMinute < 1 || c.RateLimitPerMinute > 60 {
		errs = append(errs, fmt.Sprintf("TELEGRAM_RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", c.RateLimitPerMinute))
	}
	if c.RateLimitBurst < 1 || c.RateLimitBurst > 20 {
		errs = append(errs, fmt.Sprintf("TELEGRAM_RATE_LIMIT_BURST must be between 1 and 20, got %d", c.RateLimitBurst))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("TELEGRAM_SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout))
	}
	if c.ChatStateTTL <= 0 {
		errs = append(errs, fmt.Sprintf("TELEGRAM_CHAT_STATE_TTL must be positive, got %s", c.ChatStateTTL))
	}

	if len(errs) > 0 {
		return fmt.Errorf("telegram configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

type CallbackConnectorConfig struct {
	Enabled bool `env:"ENABLED" envDefault:"false"`
	HTTPClientConfig
	Retry pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"10s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"5s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"10s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

// LoadConfig reads the -env flag and loads the matching configuration
func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	return Load(*envFlag)
}

// Load reads .env.<environment> when present, then the process environment
func Load(environment string) (*Config, error) {
	envFile := getEnvFile(environment)
	// In containerized/prod environments variables are usually set externally
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = environment

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errs []string

	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		if cfg.DatabaseURL == "" {
			errs = append(errs, "DATABASE_URL is required for the postgres storage driver")
		}
		if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
			errs = append(errs, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
		}
		if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
			errs = append(errs, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
		}
	case StorageDriverMemory:
	default:
		errs = append(errs, fmt.Sprintf("STORAGE_DRIVER must be %q or %q, got %q",
			StorageDriverPostgres, StorageDriverMemory, cfg.StorageDriver))
	}

	if cfg.InterviewCfg.SessionTTL <= 0 {
		errs = append(errs, fmt.Sprintf("INTERVIEW_SESSION_TTL must be positive, got %s", cfg.InterviewCfg.SessionTTL))
	}
	if cfg.InterviewCfg.MaxQuestions < 0 || cfg.InterviewCfg.MaxQuestions > 100 {
		errs = append(errs, fmt.Sprintf("INTERVIEW_MAX_QUESTIONS must be between 0 and 100, got %d", cfg.InterviewCfg.MaxQuestions))
	}

	if cfg.RateLimitCfg.Enabled {
		if cfg.RateLimitCfg.PerMinute < 1 || cfg.RateLimitCfg.PerMinute > 6000 {
			errs = append(errs, fmt.Sprintf("RATE_LIMIT_PER_MINUTE must be between 1 and 6000, got %d", cfg.RateLimitCfg.PerMinute))
		}
		if cfg.RateLimitCfg.Burst < 1 || cfg.RateLimitCfg.Burst > 1000 {
			errs = append(errs, fmt.Sprintf("RATE_LIMIT_BURST must be between 1 and 1000, got %d", cfg.RateLimitCfg.Burst))
		}
	}

	if cfg.CallbackConnectorCfg.Enabled && cfg.CallbackConnectorCfg.Url == "" {
		errs = append(errs, "CALLBACK_SERVICE_URL is required when CALLBACK_ENABLED is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
