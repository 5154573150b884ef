// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package account

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Lookup selects an account by username, e-mail, or both. When both are set
// an account must match both.
type Lookup struct {
	Username string
	Email    string
}

// ByUsername returns a lookup on username.
func ByUsername(username string) Lookup { return Lookup{Username: username} }

// ByEmail returns a lookup on e-mail.
func ByEmail(email string) Lookup { return Lookup{Email: email} }

// Validate requires at least one key and checks the format of each key set.
func (l Lookup) Validate() error {
	if l.Username == "" && l.Email == "" {
		return oops.Code(CodeMissingLookupKey).Wrap(ErrMissingLookupKey)
	}
	if l.Username != "" {
		if err := ValidateUsername(l.Username); err != nil {
			return err
		}
	}
	if l.Email != "" {
		if err := ValidateEmail(l.Email); err != nil {
			return err
		}
	}
	return nil
}

// Repository persists accounts. Every write runs in its own transaction: on
// failure it rolls back and returns the original error.
type Repository interface {
	// FindBy returns the account matching lookup, or ErrNotFound.
	FindBy(ctx context.Context, lookup Lookup) (*Account, error)

	// FindByInteractionCode returns the account holding code, or
	// ErrNoMatchingInteraction.
	FindByInteractionCode(ctx context.Context, code string) (*Account, error)

	// Exists reports whether any account has value in the field's column.
	Exists(ctx context.Context, field Field, value string) (bool, error)

	// Insert stores a new account and returns the assigned id and
	// registration time. A unique violation returns ErrDuplicateUsername or
	// ErrDuplicateEmail.
	Insert(ctx context.Context, data Assignments) (ulid.ULID, time.Time, error)

	// Update writes data to the account with the given id. Returns
	// ErrNotFound when no row matches.
	Update(ctx context.Context, id ulid.ULID, data Assignments) error

	// ConsumeInteraction applies data to the account only if it still holds
	// code, clearing the interaction slot in the same statement. Returns
	// ErrNoMatchingInteraction when the code is no longer present.
	ConsumeInteraction(ctx context.Context, id ulid.ULID, code string, data Assignments) error

	// DeleteByInteraction removes the account only if it still holds code.
	// Returns ErrNoMatchingInteraction when the code is no longer present.
	DeleteByInteraction(ctx context.Context, id ulid.ULID, code string) error

	// Delete removes accounts matching lookup and returns how many were removed.
	Delete(ctx context.Context, lookup Lookup) (int64, error)

	// SetActive sets the active flag on accounts matching lookup and returns
	// how many were changed.
	SetActive(ctx context.Context, lookup Lookup, active bool) (int64, error)
}
