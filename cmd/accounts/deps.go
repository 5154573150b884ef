// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/pflag"

	"github.com/holomush/accounts/internal/account"
	"github.com/holomush/accounts/internal/account/postgres"
	"github.com/holomush/accounts/internal/config"
	"github.com/holomush/accounts/internal/notify"
	"github.com/holomush/accounts/internal/store"
)

// Deps contains injectable dependencies for the commands.
// All fields with nil values will use their default implementations.
type Deps struct {
	// ConfigLoader loads configuration from a file and the command flags.
	// Default: config.Load
	ConfigLoader func(path string, flags *pflag.FlagSet) (*config.Config, error)

	// RepositoryOpener connects to the account store. The returned func
	// releases the connection.
	// Default: store.Connect + postgres.NewRepository
	RepositoryOpener func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (account.Repository, func(), error)

	// MailerOpener builds the mail transport.
	// Default: notify.New
	MailerOpener func(cfg notify.Config, logger *slog.Logger) (notify.Transport, error)

	// MigratorOpener creates a schema migrator.
	// Default: store.NewMigrator
	MigratorOpener func(databaseURL string) (Migrator, error)

	// Clock supplies the current time to the lifecycle service.
	// Default: time.Now
	Clock func() time.Time
}

// Migrator interface wraps the methods used from store.Migrator.
type Migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Status() (store.Status, error)
	Force(version int) error
	Close() error
}

func (d *Deps) withDefaults() *Deps {
	out := Deps{}
	if d != nil {
		out = *d
	}
	if out.ConfigLoader == nil {
		out.ConfigLoader = config.Load
	}
	if out.RepositoryOpener == nil {
		out.RepositoryOpener = openRepository
	}
	if out.MailerOpener == nil {
		out.MailerOpener = notify.New
	}
	if out.MigratorOpener == nil {
		out.MigratorOpener = func(databaseURL string) (Migrator, error) {
			return store.NewMigrator(databaseURL)
		}
	}
	if out.Clock == nil {
		out.Clock = time.Now
	}
	return &out
}

func openRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (account.Repository, func(), error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, nil, err
	}
	pool, err := store.Connect(ctx, cfg.Database.URL, cfg.Database.ConnectAttempts, logger)
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewRepository(pool), pool.Close, nil
}
