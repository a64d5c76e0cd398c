// Package app assembles the lineup service from configuration.  The
// server and lineupctl share it so both talk to the same store, cache
// and broker.
package app

import (
	"database/sql"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/live-show-lineup/internal/cache"
	"github.com/iliyamo/live-show-lineup/internal/config"
	"github.com/iliyamo/live-show-lineup/internal/database"
	"github.com/iliyamo/live-show-lineup/internal/lineup"
	"github.com/iliyamo/live-show-lineup/internal/repository"
	"github.com/iliyamo/live-show-lineup/internal/repository/memstore"
)

// App holds the long-lived dependencies.  DB and Redis are nil when the
// memory store is selected or Redis is unreachable.
type App struct {
	Config config.Config
	Logger *zap.Logger
	Store  repository.Store
	DB     *sql.DB
	Redis  *redis.Client
	Lineup *lineup.Service
}

// New opens the store, applies migrations when configured, connects
// Redis and builds the lineup service.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	switch cfg.StoreDriver {
	case config.StoreMemory:
		logger.Warn("using in-memory store; state is lost on restart")
		a.Store = memstore.New()
	default:
		db, err := database.Open(cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if cfg.DB.Migrate {
			if err := database.RunMigrations(db, logger); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		a.DB = db
		a.Store = repository.NewMySQLStore(db)
	}

	a.Redis = config.NewRedisClient(cfg.Redis)
	if a.Redis == nil {
		logger.Warn("redis unreachable; lineup cache and rate limiting disabled",
			zap.String("addr", cfg.Redis.Address()))
	}

	a.Lineup = lineup.NewService(a.Store, logger,
		lineup.WithCache(cache.NewLineupCache(cfg.LineupCache, a.Redis, logger)))
	return a, nil
}

// Close releases the database pool and the Redis client.
func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}
