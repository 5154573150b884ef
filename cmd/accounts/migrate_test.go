// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/accounts/internal/store"
	"github.com/holomush/accounts/pkg/errutil"
)

// fakeMigrator records the calls the migrate commands make.
type fakeMigrator struct {
	calls  []string
	steps  int
	forced int
	status store.Status
	err    error
	closed bool
}

func (m *fakeMigrator) Up() error   { m.calls = append(m.calls, "up"); return m.err }
func (m *fakeMigrator) Down() error { m.calls = append(m.calls, "down"); return m.err }
func (m *fakeMigrator) Steps(n int) error {
	m.calls = append(m.calls, "steps")
	m.steps = n
	return m.err
}

func (m *fakeMigrator) Status() (store.Status, error) {
	m.calls = append(m.calls, "status")
	return m.status, m.err
}

func (m *fakeMigrator) Force(v int) error {
	m.calls = append(m.calls, "force")
	m.forced = v
	return m.err
}
func (m *fakeMigrator) Close() error { m.closed = true; return nil }

func (h *harness) withMigrator(m *fakeMigrator) *string {
	var gotURL string
	h.deps.MigratorOpener = func(url string) (Migrator, error) {
		gotURL = url
		return m, nil
	}
	return &gotURL
}

func TestMigrate_Up(t *testing.T) {
	h := newHarness(t)
	m := &fakeMigrator{}
	url := h.withMigrator(m)

	require.NoError(t, h.run("", "migrate", "up", "--database-url", "postgres://localhost/accounts"))
	assert.Equal(t, []string{"up"}, m.calls)
	assert.Equal(t, "postgres://localhost/accounts", *url)
	assert.True(t, m.closed)
	assert.Contains(t, h.out.String(), "Migrations completed successfully")
}

func TestMigrate_UsesEnvironmentURL(t *testing.T) {
	h := newHarness(t)
	t.Setenv("DATABASE_URL", "postgres://env/accounts")
	m := &fakeMigrator{}
	url := h.withMigrator(m)

	require.NoError(t, h.run("", "migrate", "up"))
	assert.Equal(t, "postgres://env/accounts", *url)
}

func TestMigrate_RequiresDatabaseURL(t *testing.T) {
	h := newHarness(t)
	m := &fakeMigrator{}
	h.withMigrator(m)

	err := h.run("", "migrate", "up")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
	assert.Empty(t, m.calls)
}

func TestMigrate_Down(t *testing.T) {
	h := newHarness(t)
	m := &fakeMigrator{}
	h.withMigrator(m)

	require.NoError(t, h.run("", "migrate", "down", "--database-url", "postgres://x/db"))
	assert.Equal(t, []string{"down"}, m.calls)

	m2 := &fakeMigrator{}
	h.withMigrator(m2)
	require.NoError(t, h.run("", "migrate", "down", "--steps", "2", "--database-url", "postgres://x/db"))
	assert.Equal(t, []string{"steps"}, m2.calls)
	assert.Equal(t, -2, m2.steps)
}

func TestMigrate_Force(t *testing.T) {
	h := newHarness(t)
	m := &fakeMigrator{}
	h.withMigrator(m)

	require.NoError(t, h.run("", "migrate", "force", "1", "--database-url", "postgres://x/db"))
	assert.Equal(t, 1, m.forced)

	err := h.run("", "migrate", "force", "abc", "--database-url", "postgres://x/db")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "INVALID_VERSION")
}

func TestMigrate_StatusJSON(t *testing.T) {
	h := newHarness(t)
	m := &fakeMigrator{status: store.Status{Version: 1, Applied: []uint{1}, Pending: []uint{2}}}
	h.withMigrator(m)

	require.NoError(t, h.run("", "migrate", "status", "--json", "--database-url", "postgres://x/db"))

	var view migrationStatusView
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &view))
	assert.Equal(t, uint(1), view.Version)
	assert.Equal(t, []uint{1}, view.Applied)
	assert.Equal(t, []uint{2}, view.Pending)
}

func TestMigrate_StatusTable(t *testing.T) {
	h := newHarness(t)
	m := &fakeMigrator{status: store.Status{Version: 2, Dirty: true, Applied: []uint{1, 2}}}
	h.withMigrator(m)

	require.NoError(t, h.run("", "migrate", "status", "--database-url", "postgres://x/db"))
	out := h.out.String()
	assert.Contains(t, out, "DIRTY")
	assert.Contains(t, out, "000001_create_accounts")
	assert.Contains(t, out, "000002_interaction_code_index")
}

func TestMigrate_Failure(t *testing.T) {
	h := newHarness(t)
	m := &fakeMigrator{err: errors.New("database locked")}
	h.withMigrator(m)

	err := h.run("", "migrate", "up", "--database-url", "postgres://x/db")
	require.Error(t, err)
	assert.True(t, m.closed)
}

func TestParseForceVersion(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"valid integer", "3", 3, false},
		{"zero", "0", 0, false},
		{"leading whitespace", "  42", 42, false},
		{"trailing characters ignored", "3abc", 3, false},
		{"negative", "-1", -1, false},
		{"non-numeric", "abc", 0, true},
		{"empty", "", 0, true},
		{"whitespace only", "   ", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseForceVersion(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, "INVALID_VERSION")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
