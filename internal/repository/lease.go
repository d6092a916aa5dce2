package repository

import (
	"context"
	"fmt"
	"time"

	"auction-settlement/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AdvisoryLease grants at most one holder per name across every process
// sharing the database. The lock lives on a dedicated pooled connection
// for the duration of the hold.
type AdvisoryLease struct {
	pool *pgxpool.Pool
}

// NewAdvisoryLease creates a lease backed by PostgreSQL session advisory locks
func NewAdvisoryLease(pool *pgxpool.Pool) *AdvisoryLease {
	return &AdvisoryLease{pool: pool}
}

// TryAcquire takes the lease for name without waiting. When ok is false the
// lease is held elsewhere and release is nil.
func (l *AdvisoryLease) TryAcquire(ctx context.Context, name string) (release func(), ok bool, err error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("lease %s: acquire connection: %w", name, err)
	}

	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock(hashtext($1))`, name).Scan(&ok); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("lease %s: %w", name, err)
	}
	if !ok {
		conn.Release()
		return nil, false, nil
	}

	release = func() {
		unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := conn.Exec(unlockCtx, `SELECT pg_advisory_unlock(hashtext($1))`, name); err != nil {
			utils.Error("lease release failed, closing connection", map[string]any{"lease": name, "error": err.Error()})
			// closing the session drops any advisory lock it still holds
			_ = conn.Conn().Close(unlockCtx)
		}
		conn.Release()
	}
	return release, true, nil
}
