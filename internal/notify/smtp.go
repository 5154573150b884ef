// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
	"github.com/wneessen/go-mail"

	"github.com/holomush/accounts/internal/account"
)

// DefaultSMTPAttempts applies when SMTPConfig.Attempts is unset.
const DefaultSMTPAttempts = 3

const (
	defaultSMTPPort    = 587
	defaultSMTPTimeout = 15 * time.Second
	smtpBackoffBase    = 500 * time.Millisecond
)

// smtpSender is satisfied by *mail.Client.
type smtpSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPMailer delivers messages through an SMTP relay.
type SMTPMailer struct {
	nopCloser

	client   smtpSender
	attempts int
	backoff  time.Duration
	logger   *slog.Logger
}

var _ Transport = (*SMTPMailer)(nil)

// NewSMTPMailer creates an SMTPMailer for the relay in cfg.
func NewSMTPMailer(cfg SMTPConfig, logger *slog.Logger) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, oops.Code(CodeConfigInvalid).Errorf("smtp host is required")
	}
	policy, err := tlsPolicy(cfg.TLS)
	if err != nil {
		return nil, err
	}
	port := cfg.Port
	if port == 0 {
		port = defaultSMTPPort
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultSMTPTimeout
	}

	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithTLSPolicy(policy),
		mail.WithTimeout(timeout),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, oops.Code(CodeConfigInvalid).
			With("host", cfg.Host).
			With("port", port).
			Wrap(err)
	}
	return newSMTPMailer(client, cfg.Attempts, smtpBackoffBase, logger), nil
}

func newSMTPMailer(client smtpSender, attempts int, backoff time.Duration, logger *slog.Logger) *SMTPMailer {
	if attempts < 1 {
		attempts = DefaultSMTPAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPMailer{client: client, attempts: attempts, backoff: backoff, logger: logger}
}

func tlsPolicy(name string) (mail.TLSPolicy, error) {
	switch name {
	case "", "mandatory":
		return mail.TLSMandatory, nil
	case "opportunistic":
		return mail.TLSOpportunistic, nil
	case "none":
		return mail.NoTLS, nil
	default:
		return mail.NoTLS, oops.Code(CodeConfigInvalid).
			With("tls", name).
			Errorf("unknown smtp tls policy %q", name)
	}
}

// Send delivers msg, retrying transient failures with exponential backoff.
func (m *SMTPMailer) Send(ctx context.Context, msg account.Message) error {
	mm, err := buildMsg(msg)
	if err != nil {
		return err
	}

	b := retry.WithMaxRetries(uint64(m.attempts-1), retry.NewExponential(m.backoff)) //nolint:gosec // attempts >= 1
	attempt := 0
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		if err := m.client.DialAndSendWithContext(ctx, mm); err != nil {
			m.logger.WarnContext(ctx, "smtp delivery failed",
				"attempt", attempt,
				"max_attempts", m.attempts,
				"to", msg.To,
				"error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return oops.Code(CodeSendFailed).
			With("transport", TransportSMTP).
			With("to", msg.To).
			With("attempts", attempt).
			Wrap(err)
	}
	return nil
}

func buildMsg(msg account.Message) (*mail.Msg, error) {
	mm := mail.NewMsg()
	if err := mm.From(msg.From); err != nil {
		return nil, oops.Code(CodeBuildFailed).With("from", msg.From).Wrap(err)
	}
	if err := mm.To(msg.To); err != nil {
		return nil, oops.Code(CodeBuildFailed).With("to", msg.To).Wrap(err)
	}
	mm.Subject(msg.Subject)
	mm.SetBodyString(mail.TypeTextPlain, msg.Body)
	return mm, nil
}
