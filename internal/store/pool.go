// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package store manages the PostgreSQL connection pool and schema migrations.
package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// DefaultConnectAttempts is how many times Connect tries to reach the
// database before giving up.
const DefaultConnectAttempts = 5

const connectBackoffBase = 200 * time.Millisecond

// pinger is satisfied by *pgxpool.Pool.
type pinger interface {
	Ping(ctx context.Context) error
	Close()
}

// Connect opens a pool for databaseURL and pings it, retrying with
// exponential backoff. A malformed URL fails immediately.
func Connect(ctx context.Context, databaseURL string, attempts int, logger *slog.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONFIG_INVALID").With("operation", "parse database url").Wrap(err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	var pool *pgxpool.Pool
	err = connectWithRetry(ctx, attempts, logger, func(ctx context.Context) (pinger, error) {
		p, err := pgxpool.NewWithConfig(ctx, cfg.Copy())
		if err != nil {
			return nil, err
		}
		pool = p
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

func connectWithRetry(ctx context.Context, attempts int, logger *slog.Logger, open func(context.Context) (pinger, error)) error {
	if attempts < 1 {
		attempts = 1
	}
	backoff := retry.WithMaxRetries(uint64(attempts-1), retry.NewExponential(connectBackoffBase)) //nolint:gosec // attempts >= 1

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		p, err := open(ctx)
		if err == nil {
			if err = p.Ping(ctx); err != nil {
				p.Close()
			}
		}
		if err != nil {
			logger.WarnContext(ctx, "database not reachable", "attempt", attempt, "max_attempts", attempts, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").
			With("attempts", attempt).
			Wrap(err)
	}
	return nil
}
