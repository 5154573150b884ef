// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/samber/oops"

	"github.com/holomush/accounts/internal/account"
)

// LogMailer writes each message to w in a plain header/body layout.
type LogMailer struct {
	nopCloser

	mu     sync.Mutex
	w      io.Writer
	logger *slog.Logger
}

var _ Transport = (*LogMailer)(nil)

// NewLogMailer creates a LogMailer writing to w.
func NewLogMailer(w io.Writer, logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{w: w, logger: logger}
}

// Send writes msg to the underlying writer.
func (m *LogMailer) Send(ctx context.Context, msg account.Message) error {
	if err := ctx.Err(); err != nil {
		return oops.Code(CodeSendFailed).Wrap(err)
	}

	m.mu.Lock()
	_, err := fmt.Fprintf(m.w, "From: %s\nTo: %s\nSubject: %s\n\n%s\n\n",
		msg.From, msg.To, msg.Subject, msg.Body)
	m.mu.Unlock()
	if err != nil {
		return oops.Code(CodeSendFailed).
			With("transport", TransportLog).
			With("to", msg.To).
			Wrap(err)
	}

	m.logger.DebugContext(ctx, "message written", "to", msg.To, "subject", msg.Subject)
	return nil
}
