// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package account

import (
	"time"

	"github.com/samber/oops"
)

// Subjects holds the e-mail subject line for each notification.
type Subjects struct {
	Activation string
	Reset      string
	Delete     string
	Suspend    string
}

// Config is the lifecycle configuration. It is read-only once passed to
// NewService.
type Config struct {
	// Sender is the From address of every notification.
	Sender string
	// Subjects are the notification subject lines.
	Subjects Subjects
	// MinPasswordLength is the shortest accepted password.
	MinPasswordLength int
	// ActivationDeadline bounds the age of an activation code.
	ActivationDeadline time.Duration
	// ResetDeadline bounds the age of a password reset code.
	ResetDeadline time.Duration
	// DeleteDeadline bounds the age of a deletion code.
	DeleteDeadline time.Duration
}

// DefaultConfig returns the default lifecycle configuration.
func DefaultConfig() Config {
	return Config{
		Subjects: Subjects{
			Activation: "Account activation",
			Reset:      "Password reset",
			Delete:     "Account removed",
			Suspend:    "Account suspended",
		},
		MinPasswordLength:  DefaultMinPasswordLength,
		ActivationDeadline: DefaultActivationDeadline,
		ResetDeadline:      DefaultActivationDeadline,
		DeleteDeadline:     DefaultActivationDeadline,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.MinPasswordLength < 0 {
		return oops.Code(CodeConfigInvalid).
			With("min_password_length", c.MinPasswordLength).
			Errorf("minimum password length cannot be negative")
	}
	for name, d := range map[string]time.Duration{
		"activation_deadline": c.ActivationDeadline,
		"reset_deadline":      c.ResetDeadline,
		"delete_deadline":     c.DeleteDeadline,
	} {
		if d <= 0 {
			return oops.Code(CodeConfigInvalid).
				With(name, d.String()).
				Errorf("%s must be positive", name)
		}
	}
	return nil
}

// PasswordPolicy returns the policy derived from the configuration.
func (c Config) PasswordPolicy() PasswordPolicy {
	return PasswordPolicy{MinLength: c.MinPasswordLength}
}

// Deadline returns how long a code of the given kind stays valid.
func (c Config) Deadline(kind InteractionKind) time.Duration {
	switch kind {
	case InteractionReset:
		return c.ResetDeadline
	case InteractionDelete:
		return c.DeleteDeadline
	default:
		return c.ActivationDeadline
	}
}
