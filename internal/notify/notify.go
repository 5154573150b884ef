// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package notify provides the e-mail transports behind account.Mailer.
//
// Three transports are available:
//   - log writes rendered messages to a writer (stdout by default) and is
//     meant for development and operator use
//   - smtp delivers through an SMTP relay with retries
//   - kafka publishes each message as JSON for an external mail worker
package notify

import (
	"log/slog"
	"os"
	"time"

	"github.com/samber/oops"

	"github.com/holomush/accounts/internal/account"
)

// Transport names accepted by New.
const (
	TransportLog   = "log"
	TransportSMTP  = "smtp"
	TransportKafka = "kafka"
)

// Config selects and configures a transport.
type Config struct {
	Transport string
	SMTP      SMTPConfig
	Kafka     KafkaConfig
}

// SMTPConfig configures the SMTP transport.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// TLS is one of "mandatory", "opportunistic" or "none".
	TLS string
	// Attempts is the total number of delivery attempts per message.
	Attempts int
	// Timeout bounds dialing and each SMTP command.
	Timeout time.Duration
}

// KafkaConfig configures the Kafka transport.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Transport is a Mailer that may hold connections.
type Transport interface {
	account.Mailer
	Close() error
}

// New builds the transport named by cfg.Transport. An empty name selects
// the log transport writing to stdout.
func New(cfg Config, logger *slog.Logger) (Transport, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Transport {
	case "", TransportLog:
		return NewLogMailer(os.Stdout, logger), nil
	case TransportSMTP:
		return NewSMTPMailer(cfg.SMTP, logger)
	case TransportKafka:
		return NewKafkaMailer(cfg.Kafka, logger)
	default:
		return nil, oops.Code(CodeConfigInvalid).
			With("transport", cfg.Transport).
			Errorf("unknown mail transport %q", cfg.Transport)
	}
}

// Error codes.
const (
	CodeConfigInvalid = "NOTIFY_CONFIG_INVALID"
	CodeBuildFailed   = "NOTIFY_BUILD_FAILED"
	CodeSendFailed    = "NOTIFY_SEND_FAILED"
)

// nopCloser adapts a Mailer without resources.
type nopCloser struct{}

func (nopCloser) Close() error { return nil }
