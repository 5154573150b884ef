// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/accounts/internal/account"
	"github.com/holomush/accounts/internal/notify"
	"github.com/holomush/accounts/pkg/errutil"
)

// isolate points the XDG config dir at an empty temp dir and clears
// DATABASE_URL so the host environment cannot leak in.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(DatabaseURLEnv, "")
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.String("database-url", "", "")
	fs.String("log-format", "json", "")
	fs.String("log-level", "info", "")
	fs.String("mail", "log", "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Empty(t, cfg.Database.URL)
	assert.Equal(t, 5, cfg.Database.ConnectAttempts)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel())
	assert.Equal(t, notify.TransportLog, cfg.Mail.Transport)
	assert.Equal(t, account.DefaultConfig().Subjects, cfg.Account().Subjects)
	assert.Equal(t, 48*time.Hour, cfg.Accounts.ActivationDeadline)
	assert.Equal(t, account.DefaultMinPasswordLength, cfg.Accounts.MinPasswordLength)
	assert.Equal(t, "account-mail", cfg.Mail.Kafka.Topic)
}

func TestLoad_File(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
database:
  url: postgres://accounts@db/accounts
accounts:
  min_password_length: 8
  reset_deadline: 2h
mail:
  transport: smtp
  sender: noreply@example.com
  subjects:
    activation: Welcome aboard
  smtp:
    host: smtp.example.com
    port: 2525
    tls: opportunistic
  kafka:
    brokers: [k1:9092, k2:9092]
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "postgres://accounts@db/accounts", cfg.Database.URL)

	ac := cfg.Account()
	assert.Equal(t, "noreply@example.com", ac.Sender)
	assert.Equal(t, "Welcome aboard", ac.Subjects.Activation)
	assert.Equal(t, "Password reset", ac.Subjects.Reset, "unset subjects keep defaults")
	assert.Equal(t, 8, ac.MinPasswordLength)
	assert.Equal(t, 2*time.Hour, ac.ResetDeadline)
	assert.Equal(t, 48*time.Hour, ac.DeleteDeadline)

	nc := cfg.Notify()
	assert.Equal(t, notify.TransportSMTP, nc.Transport)
	assert.Equal(t, "smtp.example.com", nc.SMTP.Host)
	assert.Equal(t, 2525, nc.SMTP.Port)
	assert.Equal(t, "opportunistic", nc.SMTP.TLS)
	assert.Equal(t, notify.DefaultSMTPAttempts, nc.SMTP.Attempts)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, nc.Kafka.Brokers)
}

func TestLoad_DefaultFileFromXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv(DatabaseURLEnv, "")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "accounts"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "accounts", "config.yaml"),
		[]byte("log:\n  level: debug\n"), 0o600))

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "log:\n  format: json\n  level: warn\nmail:\n  transport: kafka\n")

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--log-format", "text", "--database-url", "postgres://flag/db"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "warn", cfg.Log.Level, "unchanged flag must not override file")
	assert.Equal(t, "kafka", cfg.Mail.Transport, "unchanged flag must not override file")
	assert.Equal(t, "postgres://flag/db", cfg.Database.URL)
}

func TestLoad_DatabaseURLFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv(DatabaseURLEnv, "postgres://env/db")

	cfg, err := Load("", testFlags())
	require.NoError(t, err)
	assert.Equal(t, "postgres://env/db", cfg.Database.URL)
	assert.NoError(t, cfg.RequireDatabase())

	path := writeConfig(t, "database:\n  url: postgres://file/db\n")
	cfg, err = Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres://file/db", cfg.Database.URL, "configured url wins over the environment")
}

func TestLoad_Errors(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		path func(t *testing.T) string
		code string
	}{
		{"missing explicit file", func(t *testing.T) string {
			return filepath.Join(t.TempDir(), "nope.yaml")
		}, "CONFIG_NOT_FOUND"},
		{"malformed yaml", func(t *testing.T) string {
			return writeConfig(t, "log: [unterminated\n")
		}, "CONFIG_INVALID"},
		{"bad log format", func(t *testing.T) string {
			return writeConfig(t, "log:\n  format: xml\n")
		}, "LOG_FORMAT_INVALID"},
		{"bad log level", func(t *testing.T) string {
			return writeConfig(t, "log:\n  level: chatty\n")
		}, "LOG_LEVEL_INVALID"},
		{"negative password length", func(t *testing.T) string {
			return writeConfig(t, "accounts:\n  min_password_length: -1\n")
		}, account.CodeConfigInvalid},
		{"zero deadline", func(t *testing.T) string {
			return writeConfig(t, "accounts:\n  delete_deadline: 0s\n")
		}, account.CodeConfigInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path(t), nil)
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, tt.code)
		})
	}
}

func TestRequireDatabase(t *testing.T) {
	err := (&Config{}).RequireDatabase()
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
}
