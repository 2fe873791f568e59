package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/visa-interview/internal/api"
	interviewapi "github.com/futig/visa-interview/internal/api/interview"
	"github.com/futig/visa-interview/internal/api/middleware"
	"github.com/futig/visa-interview/internal/config"
	"github.com/futig/visa-interview/internal/integration/callback"
	"github.com/futig/visa-interview/internal/narrowing"
	"github.com/futig/visa-interview/internal/pkg/formatter"
	"github.com/futig/visa-interview/internal/pkg/validator"
	"github.com/futig/visa-interview/internal/telegram"
	"github.com/futig/visa-interview/internal/usecase/interview"
	"go.uber.org/zap"
)

// core is what both front-ends share: storage, narrowing and the interview usecase
type core struct {
	cfg       *config.Config
	logger    *zap.Logger
	storage   *storage
	interview *interview.InterviewUsecase
}

func buildCore(ctx context.Context, component string) (*core, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building "+component,
		zap.String("environment", cfg.Environment),
		zap.String("storage_driver", cfg.StorageDriver),
	)

	// Initialize repositories
	store, err := setupStorage(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup storage: %w", err)
	}
	logger.Info("Repositories initialized")

	// Load narrowing rules
	catalog, err := narrowing.LoadCatalog(cfg.InterviewCfg.RulesFile)
	if err != nil {
		store.close()
		return nil, fmt.Errorf("load rule catalog: %w", err)
	}
	engine := narrowing.NewEngine(catalog, narrowing.WithMaxQuestions(cfg.InterviewCfg.MaxQuestions))
	narrower := narrowing.NewCachedEngine(engine, cfg.InterviewCfg.CacheTTL, cfg.InterviewCfg.CacheCleanup)
	logger.Info("Narrowing engine initialized",
		zap.Int("visa_categories", len(engine.Universe())),
		zap.Int("max_questions", engine.MaxQuestions()),
		zap.Bool("custom_rules", cfg.InterviewCfg.RulesFile != ""),
	)

	// Initialize connectors
	var publisher interview.EventPublisher
	if cfg.CallbackConnectorCfg.Enabled {
		logger.Info("Using callback connector", zap.String("url", cfg.CallbackConnectorCfg.Url))
		publisher = callback.NewConnector(cfg.CallbackConnectorCfg, logger)
	} else {
		logger.Info("Callbacks disabled, events are only logged")
		publisher = callback.NewMockConnector()
	}

	// Initialize use cases
	interviewUC := interview.NewUsecase(
		store.cases,
		store.sessions,
		store.answers,
		store.recs,
		narrower,
		formatter.NewFactory(),
		interview.WithSessionTTL(cfg.InterviewCfg.SessionTTL),
		interview.WithEventPublisher(publisher),
	)
	logger.Info("Use cases initialized")

	return &core{
		cfg:       cfg,
		logger:    logger,
		storage:   store,
		interview: interviewUC,
	}, nil
}

// Build creates the HTTP application
func Build() (*App, error) {
	c, err := buildCore(context.Background(), "application")
	if err != nil {
		return nil, err
	}
	cfg, logger := c.cfg, c.logger

	// Setup API handlers
	interviewHandler := interviewapi.NewHandler(c.interview, validator.New())
	logger.Info("API handlers initialized")

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitCfg.Enabled {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimitCfg.PerMinute, cfg.RateLimitCfg.Burst, cfg.RateLimitCfg.IdleTTL)
	}

	// Setup router
	router := api.SetupRouter(interviewHandler, rateLimiter, cfg, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	return &App{
		server:          server,
		storage:         c.storage,
		events:          c.interview,
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
	}, nil
}

// BuildTelegramBot creates and initializes the Telegram bot
func BuildTelegramBot() (*BotApp, error) {
	c, err := buildCore(context.Background(), "Telegram bot")
	if err != nil {
		return nil, err
	}

	if err := c.cfg.TelegramCfg.Validate(); err != nil {
		c.storage.close()
		return nil, fmt.Errorf("invalid telegram configuration: %w", err)
	}

	chatStates := c.storage.chatStates(context.Background(), c.cfg.TelegramCfg.ChatStateTTL, c.logger)

	bot, err := telegram.NewBot(&c.cfg.TelegramCfg, chatStates, c.interview, c.logger)
	if err != nil {
		c.storage.close()
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &BotApp{
		bot:             bot,
		storage:         c.storage,
		events:          c.interview,
		shutdownTimeout: c.cfg.ShutdownTimeout,
		logger:          c.logger,
	}, nil
}
