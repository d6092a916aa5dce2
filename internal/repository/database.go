package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"auction-settlement/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// PoolOptions tunes the connection pool and the startup retry loop
type PoolOptions struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	ConnectAttempts int
	RetryDelay      time.Duration
}

// DefaultPoolOptions returns the pool settings used when none are configured
func DefaultPoolOptions() PoolOptions {
	return PoolOptions{
		MaxConns:        10,
		MinConns:        0,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
		ConnectAttempts: 3,
		RetryDelay:      5 * time.Second,
	}
}

// ConnectDB opens a pgx pool and pings it, retrying a bounded number of times
func ConnectDB(ctx context.Context, databaseURL string, opts PoolOptions) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, errors.New("connect db: empty database URL")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect db: unable to parse database URL: %w", err)
	}
	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	config.MinConns = opts.MinConns
	if opts.MaxConnLifetime > 0 {
		config.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	attempts := opts.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		pool, err := pgxpool.NewWithConfig(ctx, config)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				utils.Info("database connection established", map[string]any{"attempt": attempt})
				return pool, nil
			}
			pool.Close()
		}
		lastErr = err
		utils.Warn("database connection attempt failed", map[string]any{
			"attempt":   attempt,
			"remaining": attempts - attempt,
			"error":     err.Error(),
		})
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connect db: %w", ctx.Err())
		case <-time.After(opts.RetryDelay):
		}
	}
	return nil, fmt.Errorf("connect db: unable to connect after %d attempts: %w", attempts, lastErr)
}

// Migrate applies the embedded schema. Statements are idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return errors.New("migrate: nil pool")
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
