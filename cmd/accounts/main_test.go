// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/accounts/internal/account"
	"github.com/holomush/accounts/internal/account/mocks"
	"github.com/holomush/accounts/internal/config"
	"github.com/holomush/accounts/internal/notify"
)

var fixedNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

// harness runs the root command against a mock repository and a log
// mailer writing into mail.
type harness struct {
	repo     *mocks.MockRepository
	mail     bytes.Buffer
	out      bytes.Buffer
	errOut   bytes.Buffer
	released int
	deps     *Deps
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(config.DatabaseURLEnv, "")

	h := &harness{repo: mocks.NewMockRepository(t)}
	h.deps = &Deps{
		RepositoryOpener: func(context.Context, *config.Config, *slog.Logger) (account.Repository, func(), error) {
			return h.repo, func() { h.released++ }, nil
		},
		MailerOpener: func(_ notify.Config, logger *slog.Logger) (notify.Transport, error) {
			return notify.NewLogMailer(&h.mail, logger), nil
		},
		Clock: func() time.Time { return fixedNow },
	}
	return h
}

func (h *harness) run(stdin string, args ...string) error {
	cmd := newRootCmd(h.deps)
	cmd.SetOut(&h.out)
	cmd.SetErr(&h.errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	return cmd.Execute()
}

// stored builds a persisted account for alice with password "secret".
func stored(t *testing.T, active bool) *account.Account {
	t.Helper()
	acct, err := account.Restore(account.Record{
		ID:           ulid.Make(),
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: account.HashPassword("alice", "secret"),
		Active:       active,
		RegisteredAt: fixedNow.Add(-24 * time.Hour),
	})
	require.NoError(t, err)
	return acct
}

func TestRootCommand_HasExpectedSubcommands(t *testing.T) {
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())

	for _, sub := range []string{"migrate", "register", "confirm", "login", "reset-password", "delete", "suspend", "show"} {
		assert.Contains(t, buf.String(), sub, "Help missing %q command", sub)
	}
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	cmd := NewRootCmd()
	for _, name := range []string{"config", "database-url", "log-format", "log-level", "mail", "metrics-textfile", "metrics-push-url"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "missing --%s", name)
	}
}

func TestRootCommand_VersionFlag(t *testing.T) {
	cmd := NewRootCmd()
	cmd.Version = "test-version"
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "test-version")
}

func TestRootCommand_InvalidConfig(t *testing.T) {
	h := newHarness(t)
	err := h.run("", "show", "--username", "alice", "--log-format", "xml")
	require.Error(t, err)
	assert.Zero(t, h.released, "repository must not be opened")
}
