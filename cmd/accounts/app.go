// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/accounts/internal/account"
	"github.com/holomush/accounts/internal/config"
	"github.com/holomush/accounts/internal/logging"
	"github.com/holomush/accounts/internal/notify"
	"github.com/holomush/accounts/internal/observability"
	"github.com/holomush/accounts/pkg/errutil"
)

const serviceName = "accounts"

// app is the runtime assembled for one command.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	service *account.Service
	mailer  notify.Transport
	run     *observability.Run
	release func()
}

func loadConfig(cmd *cobra.Command, deps *Deps) (*config.Config, *slog.Logger, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	cfg, err := deps.ConfigLoader(path, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	logger := logging.Setup(serviceName, version, cfg.Log.Format, cfg.LogLevel(), cmd.ErrOrStderr())
	return cfg, logger, nil
}

func setup(ctx context.Context, cmd *cobra.Command, deps *Deps) (*app, error) {
	cfg, logger, err := loadConfig(cmd, deps)
	if err != nil {
		return nil, err
	}

	run := observability.NewRun(cmd.Name())
	metrics := account.NewMetrics(run.Registry())

	repo, release, err := deps.RepositoryOpener(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	mailer, err := deps.MailerOpener(cfg.Notify(), logger)
	if err != nil {
		release()
		return nil, err
	}
	svc, err := account.NewService(repo, mailer, cfg.Account(),
		account.WithLogger(logger),
		account.WithMetrics(metrics),
		account.WithClock(deps.Clock),
	)
	if err != nil {
		_ = mailer.Close() //nolint:errcheck // setup error takes precedence
		release()
		return nil, err
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		service: svc,
		mailer:  mailer,
		run:     run,
		release: release,
	}, nil
}

// close releases resources and exports run metrics. Failures here are
// logged; they never mask the command result.
func (a *app) close(ctx context.Context, runErr error) {
	a.run.Finish(runErr)
	if err := a.mailer.Close(); err != nil {
		errutil.LogWarn(a.logger, "mail transport did not close cleanly", err)
	}
	a.release()

	target := observability.Target{Textfile: a.cfg.Metrics.Textfile, PushURL: a.cfg.Metrics.PushURL}
	if target.Enabled() {
		if err := a.run.Export(ctx, target); err != nil {
			errutil.LogWarn(a.logger, "run metrics not exported", err)
		}
	}
}

// withApp assembles the runtime, runs fn and tears the runtime down.
func withApp(cmd *cobra.Command, deps *Deps, fn func(ctx context.Context, a *app) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := setup(ctx, cmd, deps)
	if err != nil {
		return err
	}
	defer func() { a.close(ctx, err) }()
	return fn(ctx, a)
}

// lookupFlags selects an account by username, e-mail or both.
type lookupFlags struct {
	username string
	email    string
}

func (l *lookupFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&l.username, "username", "", "account username")
	cmd.Flags().StringVar(&l.email, "email", "", "account e-mail address")
}

func (l *lookupFlags) lookup() account.Lookup {
	return account.Lookup{Username: l.username, Email: l.email}
}

// messageFlags supply a notification template inline or from a file.
type messageFlags struct {
	text string
	file string
}

func (m *messageFlags) register(cmd *cobra.Command, usage string) {
	cmd.Flags().StringVar(&m.text, "message", "", usage+" ($username, $email, $password, $url, $sender are substituted)")
	cmd.Flags().StringVar(&m.file, "message-file", "", "read the message template from this file")
	cmd.MarkFlagsMutuallyExclusive("message", "message-file")
}

func (m *messageFlags) template() (string, error) {
	if m.file == "" {
		return m.text, nil
	}
	b, err := os.ReadFile(m.file)
	if err != nil {
		return "", oops.Code("MESSAGE_READ_FAILED").With("path", m.file).Wrap(err)
	}
	return string(b), nil
}

// confirmation resolves --confirm: on by default when a message is sent,
// unless given explicitly.
func confirmation(cmd *cobra.Command, explicit bool, message string) bool {
	if cmd.Flags().Changed("confirm") {
		return explicit
	}
	return message != ""
}
