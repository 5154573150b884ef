// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads the accounts tool configuration.
//
// Values are layered: built-in defaults, then the YAML config file, then
// command-line flags. DATABASE_URL from the environment fills database.url
// when no layer sets it.
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/holomush/accounts/internal/account"
	"github.com/holomush/accounts/internal/logging"
	"github.com/holomush/accounts/internal/notify"
	"github.com/holomush/accounts/internal/store"
	"github.com/holomush/accounts/internal/xdg"
)

// DatabaseURLEnv is read when database.url is not configured.
const DatabaseURLEnv = "DATABASE_URL"

// Config is the full tool configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
	Accounts AccountsConfig `koanf:"accounts"`
	Mail     MailConfig     `koanf:"mail"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// DatabaseConfig holds the PostgreSQL settings.
type DatabaseConfig struct {
	URL             string `koanf:"url"`
	ConnectAttempts int    `koanf:"connect_attempts"`
}

// LogConfig holds the logging settings.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// AccountsConfig holds the lifecycle settings.
type AccountsConfig struct {
	MinPasswordLength  int           `koanf:"min_password_length"`
	ActivationDeadline time.Duration `koanf:"activation_deadline"`
	ResetDeadline      time.Duration `koanf:"reset_deadline"`
	DeleteDeadline     time.Duration `koanf:"delete_deadline"`
}

// MetricsConfig selects where run metrics are exported. Both are optional.
type MetricsConfig struct {
	// Textfile is a path for the node_exporter textfile collector.
	Textfile string `koanf:"textfile"`
	// PushURL is a Prometheus Pushgateway base URL.
	PushURL string `koanf:"push_url"`
}

// MailConfig holds the notification settings.
type MailConfig struct {
	Transport string         `koanf:"transport"`
	Sender    string         `koanf:"sender"`
	Subjects  SubjectsConfig `koanf:"subjects"`
	SMTP      SMTPConfig     `koanf:"smtp"`
	Kafka     KafkaConfig    `koanf:"kafka"`
}

// SubjectsConfig holds the notification subject lines.
type SubjectsConfig struct {
	Activation string `koanf:"activation"`
	Reset      string `koanf:"reset"`
	Delete     string `koanf:"delete"`
	Suspend    string `koanf:"suspend"`
}

// SMTPConfig holds the SMTP relay settings.
type SMTPConfig struct {
	Host     string        `koanf:"host"`
	Port     int           `koanf:"port"`
	Username string        `koanf:"username"`
	Password string        `koanf:"password"`
	TLS      string        `koanf:"tls"`
	Attempts int           `koanf:"attempts"`
	Timeout  time.Duration `koanf:"timeout"`
}

// KafkaConfig holds the Kafka outbox settings.
type KafkaConfig struct {
	Brokers []string `koanf:"brokers"`
	Topic   string   `koanf:"topic"`
}

func defaults() map[string]any {
	ac := account.DefaultConfig()
	return map[string]any{
		"database.connect_attempts":    store.DefaultConnectAttempts,
		"log.format":                   logging.FormatJSON,
		"log.level":                    "info",
		"accounts.min_password_length": ac.MinPasswordLength,
		"accounts.activation_deadline": ac.ActivationDeadline,
		"accounts.reset_deadline":      ac.ResetDeadline,
		"accounts.delete_deadline":     ac.DeleteDeadline,
		"mail.transport":               notify.TransportLog,
		"mail.subjects.activation":     ac.Subjects.Activation,
		"mail.subjects.reset":          ac.Subjects.Reset,
		"mail.subjects.delete":         ac.Subjects.Delete,
		"mail.subjects.suspend":        ac.Subjects.Suspend,
		"mail.smtp.port":               587,
		"mail.smtp.tls":                "mandatory",
		"mail.smtp.attempts":           notify.DefaultSMTPAttempts,
		"mail.kafka.topic":             "account-mail",
	}
}

// flagKeys maps command-line flag names to configuration keys. Flags not
// listed here are not configuration.
var flagKeys = map[string]string{
	"database-url":     "database.url",
	"log-format":       "log.format",
	"log-level":        "log.level",
	"mail":             "mail.transport",
	"metrics-textfile": "metrics.textfile",
	"metrics-push-url": "metrics.push_url",
}

// Load reads the configuration. An empty path means the default XDG config
// file, which may be absent; an explicit path must exist. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	for key, val := range defaults() {
		if err := k.Set(key, val); err != nil {
			return nil, oops.Code("CONFIG_INVALID").With("key", key).Wrap(err)
		}
	}

	if err := loadFile(k, path); err != nil {
		return nil, err
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_INVALID").With("operation", "load flags").Wrap(err)
		}
	}

	if !k.Exists("database.url") || k.String("database.url") == "" {
		if url := os.Getenv(DatabaseURLEnv); url != "" {
			if err := k.Set("database.url", url); err != nil {
				return nil, oops.Code("CONFIG_INVALID").With("key", "database.url").Wrap(err)
			}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("operation", "decode config").Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	explicit := path != ""
	if !explicit {
		p, err := xdg.DefaultConfigFile()
		if err != nil {
			return nil //nolint:nilerr // no home directory means no default file
		}
		path = p
	}

	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return oops.Code("CONFIG_NOT_FOUND").With("path", path).Wrap(err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return oops.Code("CONFIG_INVALID").With("path", path).Wrap(err)
	}
	return nil
}

// Validate checks values the loaders cannot type-check.
func (c *Config) Validate() error {
	if err := logging.ValidateFormat(c.Log.Format); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return c.Account().Validate()
}

// LogLevel returns the parsed log level. Validate has already rejected bad
// values, so the fallback is never used after Load.
func (c *Config) LogLevel() slog.Level {
	level, _ := logging.ParseLevel(c.Log.Level) //nolint:errcheck // validated on load
	return level
}

// RequireDatabase reports a CONFIG_INVALID error when no database URL is set.
func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").
			Errorf("database url is required: set database.url, --database-url or %s", DatabaseURLEnv)
	}
	return nil
}

// Account returns the lifecycle configuration.
func (c *Config) Account() account.Config {
	return account.Config{
		Sender: c.Mail.Sender,
		Subjects: account.Subjects{
			Activation: c.Mail.Subjects.Activation,
			Reset:      c.Mail.Subjects.Reset,
			Delete:     c.Mail.Subjects.Delete,
			Suspend:    c.Mail.Subjects.Suspend,
		},
		MinPasswordLength:  c.Accounts.MinPasswordLength,
		ActivationDeadline: c.Accounts.ActivationDeadline,
		ResetDeadline:      c.Accounts.ResetDeadline,
		DeleteDeadline:     c.Accounts.DeleteDeadline,
	}
}

// Notify returns the mail transport configuration.
func (c *Config) Notify() notify.Config {
	return notify.Config{
		Transport: c.Mail.Transport,
		SMTP: notify.SMTPConfig{
			Host:     c.Mail.SMTP.Host,
			Port:     c.Mail.SMTP.Port,
			Username: c.Mail.SMTP.Username,
			Password: c.Mail.SMTP.Password,
			TLS:      c.Mail.SMTP.TLS,
			Attempts: c.Mail.SMTP.Attempts,
			Timeout:  c.Mail.SMTP.Timeout,
		},
		Kafka: notify.KafkaConfig{
			Brokers: c.Mail.Kafka.Brokers,
			Topic:   c.Mail.Kafka.Topic,
		},
	}
}
