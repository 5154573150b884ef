// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package account

import (
	"context"
	"regexp"
	"strings"
)

// Message is a rendered e-mail.
type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Mailer delivers messages over a side channel.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Template variable names available to message templates.
const (
	VarUsername = "username"
	VarEmail    = "email"
	VarPassword = "password"
	VarURL      = "url"
	VarSender   = "sender"
)

var placeholder = regexp.MustCompile(`\$(?:\$|([A-Za-z_][A-Za-z0-9_]*)|\{([A-Za-z_][A-Za-z0-9_]*)\})`)

// Render substitutes $name and ${name} placeholders in template with vars.
// "$$" renders a literal "$". Names missing from vars, and a "$" not followed
// by a name (as in "$5"), are left as written.
func Render(template string, vars map[string]string) string {
	return placeholder.ReplaceAllStringFunc(template, func(m string) string {
		if m == "$$" {
			return "$"
		}
		name := strings.Trim(m, "${}")
		if v, ok := vars[name]; ok {
			return v
		}
		return m
	})
}
