package builder

import (
	"context"
	"fmt"
	"time"

	"github.com/futig/visa-interview/internal/config"
	"github.com/futig/visa-interview/internal/repository"
	"github.com/futig/visa-interview/internal/repository/memory"
	"github.com/futig/visa-interview/internal/telegram/state"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// storage bundles the repositories of one storage driver
type storage struct {
	cases    repository.CaseRepository
	sessions repository.SessionRepository
	answers  repository.AnswerRepository
	recs     repository.RecommendationRepository
	// db is nil for the memory driver
	db *pgxpool.Pool
}

// chatStates returns the Telegram chat state store: PostgreSQL when a database is
// configured, otherwise an in-process cache
func (s *storage) chatStates(ctx context.Context, ttl time.Duration, logger *zap.Logger) state.Storage {
	if s.db == nil {
		return state.NewCacheStorage(ttl)
	}

	states := repository.NewChatStatePostgres(s.db, ttl)
	if n, err := states.Prune(ctx); err != nil {
		logger.Warn("Failed to prune stale chat states", zap.Error(err))
	} else {
		logger.Info("Pruned stale chat states", zap.Int64("count", n))
	}
	return states
}

func setupStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		return setupMemoryStorage(ctx, cfg, logger)
	default:
		return setupPostgresStorage(ctx, cfg, logger)
	}
}

func setupPostgresStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage, error) {
	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	logger.Info("Running database migrations", zap.String("source", cfg.MigrationsSource))
	if err := repository.RunMigrations(cfg.DatabaseURL, cfg.MigrationsSource); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	return &storage{
		cases:    repository.NewCasePostgres(db),
		sessions: repository.NewInterviewSessionPostgres(db),
		answers:  repository.NewAnswerPostgres(db, cfg.DBRetry),
		recs:     repository.NewRecommendationPostgres(db),
		db:       db,
	}, nil
}

func setupMemoryStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage, error) {
	cases, err := memory.ParseSeedCases(cfg.MemorySeedCases)
	if err != nil {
		return nil, fmt.Errorf("parse MEMORY_SEED_CASES: %w", err)
	}

	store := memory.NewStore()
	if err := store.Seed(ctx, cases, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("seed memory store: %w", err)
	}

	logger.Warn("Using in-memory storage, data is lost on restart",
		zap.Int("seeded_cases", len(cases)),
	)

	return &storage{
		cases:    store,
		sessions: store,
		answers:  store,
		recs:     store,
	}, nil
}

// setupDatabase creates a new database connection pool
func setupDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	// Configure pool settings from config
	poolConfig.MaxConns = int32(cfg.DBMaxConns)
	poolConfig.MinConns = int32(cfg.DBMinConns)
	poolConfig.MaxConnLifetime = cfg.DBMaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.DBMaxConnIdleTime
	poolConfig.HealthCheckPeriod = cfg.DBHealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("database connection pool established",
		zap.Int32("max_conns", poolConfig.MaxConns),
		zap.Int32("min_conns", poolConfig.MinConns),
		zap.Duration("max_conn_lifetime", poolConfig.MaxConnLifetime),
		zap.Duration("max_conn_idle_time", poolConfig.MaxConnIdleTime),
		zap.Duration("health_check_period", poolConfig.HealthCheckPeriod),
	)

	return pool, nil
}

func (s *storage) close() {
	if s.db != nil {
		s.db.Close()
	}
}
