// Package database provides PostgreSQL connection management and schema
// migrations using pgx.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ryanwdavies/final-project-ThamesBoats/internal/config"
)

// retryDelay is the pause between connection attempts while the database
// container starts up.
var retryDelay = 2 * time.Second

// Connect creates a connection pool and validates it with a ping.
// It retries up to cfg.ConnectAttempts times.
func Connect(ctx context.Context, cfg config.DBConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	if logger == nil {
		logger = slog.Default()
	}

	poolCfg, err := pgxpool.ParseConfig(BuildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	attempts := max(cfg.ConnectAttempts, 1)
	for attempt := 1; ; attempt++ {
		pool, err := open(ctx, poolCfg)
		if err == nil {
			return pool, nil
		}
		if attempt == attempts {
			return nil, fmt.Errorf("connect to postgres after %d attempts: %w", attempts, err)
		}

		logger.Warn("database connect failed, retrying",
			"attempt", attempt,
			"max_attempts", attempts,
			"retry_in", retryDelay,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
}

func open(ctx context.Context, poolCfg *pgxpool.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
