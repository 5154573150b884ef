// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package account

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Account is the in-memory representation of a user record.
//
// Fields are only reachable through setters, which validate, hash and record
// the field as dirty. Accounts loaded from a repository start clean.
type Account struct {
	id                  ulid.ULID
	username            string
	email               string
	passwordHash        string
	pendingPasswordHash string
	interaction         *Interaction
	active              bool
	registeredAt        time.Time

	cleartext string
	dirty     FieldSet
}

// New creates an unsaved account. Both username and email must be valid.
func New(username, email string) (*Account, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	return &Account{username: username, email: email}, nil
}

// Record is the persisted form of an account, as read by a repository.
type Record struct {
	ID                  ulid.ULID
	Username            string
	Email               string
	PasswordHash        string
	PendingPasswordHash *string
	InteractionCode     *string
	InteractionIssuedAt *time.Time
	InteractionType     *string
	Active              bool
	RegisteredAt        time.Time
}

// Restore rebuilds an account from a stored record. The result has an empty
// dirty set and no cleartext.
func Restore(rec Record) (*Account, error) {
	a, err := New(rec.Username, rec.Email)
	if err != nil {
		return nil, oops.With("id", rec.ID.String()).Wrap(err)
	}
	a.id = rec.ID
	a.passwordHash = rec.PasswordHash
	a.active = rec.Active
	a.registeredAt = rec.RegisteredAt
	if rec.PendingPasswordHash != nil {
		a.pendingPasswordHash = *rec.PendingPasswordHash
	}
	if rec.InteractionCode != nil && *rec.InteractionCode != "" {
		in := Interaction{Code: *rec.InteractionCode}
		if rec.InteractionIssuedAt != nil {
			in.IssuedAt = *rec.InteractionIssuedAt
		}
		if rec.InteractionType != nil {
			kind, err := ParseInteractionKind(*rec.InteractionType)
			if err != nil {
				return nil, oops.With("id", rec.ID.String()).Wrap(err)
			}
			in.Kind = kind
		}
		a.interaction = &in
	}
	return a, nil
}

// ID returns the repository-assigned identifier (zero for new accounts).
func (a *Account) ID() ulid.ULID { return a.id }

// IsNew reports whether the account has not been stored yet.
func (a *Account) IsNew() bool { return a.id == ulid.ULID{} }

// Username returns the username.
func (a *Account) Username() string { return a.username }

// Email returns the e-mail address.
func (a *Account) Email() string { return a.email }

// PasswordHash returns the stored salt$digest credential, or "" if unset.
func (a *Account) PasswordHash() string { return a.passwordHash }

// PendingPasswordHash returns the staged credential of an unconfirmed reset.
func (a *Account) PendingPasswordHash() (string, bool) {
	return a.pendingPasswordHash, a.pendingPasswordHash != ""
}

// Interaction returns the pending interaction, if any.
func (a *Account) Interaction() (Interaction, bool) {
	if a.interaction == nil {
		return Interaction{}, false
	}
	return *a.interaction, true
}

// Active reports whether the account may authenticate.
func (a *Account) Active() bool { return a.active }

// RegisteredAt returns the server-assigned registration time.
func (a *Account) RegisteredAt() time.Time { return a.registeredAt }

// Cleartext returns the most recently set or generated password. It is held
// in memory for one-time disclosure and never persisted.
func (a *Account) Cleartext() string { return a.cleartext }

// DirtyFields returns the fields mutated since the account was loaded or
// last stored, in mutation order.
func (a *Account) DirtyFields() []Field { return a.dirty.Fields() }

// SetUsername changes the username. The password hash is bound to the
// username it was computed with.
func (a *Account) SetUsername(username string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	a.username = username
	a.dirty.Add(FieldUsername)
	return nil
}

// SetEmail changes the e-mail address.
func (a *Account) SetEmail(email string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	a.email = email
	a.dirty.Add(FieldEmail)
	return nil
}

// SetPassword validates cleartext against policy and replaces the live
// credential with its hash.
func (a *Account) SetPassword(cleartext string, policy PasswordPolicy) error {
	if err := policy.Validate(cleartext); err != nil {
		return err
	}
	a.cleartext = cleartext
	a.passwordHash = HashPassword(a.username, cleartext)
	a.dirty.Add(FieldPasswordHash)
	return nil
}

// SetPendingPassword stages a credential that replaces the live one only
// after PromotePendingPassword.
func (a *Account) SetPendingPassword(cleartext string, policy PasswordPolicy) error {
	if err := policy.Validate(cleartext); err != nil {
		return err
	}
	a.cleartext = cleartext
	a.pendingPasswordHash = HashPassword(a.username, cleartext)
	a.dirty.Add(FieldPendingPasswordHash)
	return nil
}

// PromotePendingPassword makes the staged credential live and clears the
// pending slot.
func (a *Account) PromotePendingPassword() error {
	if a.pendingPasswordHash == "" {
		return oops.Code(CodeNoMatchingInteraction).
			With("username", a.username).
			Wrapf(ErrNoMatchingInteraction, "no pending password")
	}
	a.passwordHash = a.pendingPasswordHash
	a.pendingPasswordHash = ""
	a.dirty.Add(FieldPasswordHash)
	a.dirty.Add(FieldPendingPasswordHash)
	return nil
}

// Activate marks the account active.
func (a *Account) Activate() { a.SetActive(true) }

// SetActive sets the active flag.
func (a *Account) SetActive(active bool) {
	a.active = active
	a.dirty.Add(FieldActive)
}

// SetInteraction issues a new code of the given kind, replacing any pending
// interaction.
func (a *Account) SetInteraction(kind InteractionKind, now time.Time) (Interaction, error) {
	in, err := IssueInteraction(a.username, kind, now)
	if err != nil {
		return Interaction{}, err
	}
	a.interaction = &in
	a.markInteractionDirty()
	return in, nil
}

// ClearInteraction empties the interaction slot.
func (a *Account) ClearInteraction() {
	a.interaction = nil
	a.markInteractionDirty()
}

func (a *Account) markInteractionDirty() {
	a.dirty.Add(FieldInteractionCode)
	a.dirty.Add(FieldInteractionIssuedAt)
	a.dirty.Add(FieldInteractionType)
}

// Assignment pairs a field with the value to persist.
type Assignment struct {
	Field Field
	Value any
}

// Assignments is an ordered list of column writes.
type Assignments []Assignment

// Columns returns the column names in order.
func (as Assignments) Columns() []string {
	cols := make([]string, len(as))
	for i, a := range as {
		cols[i] = a.Field.Column()
	}
	return cols
}

// Values returns the values in order.
func (as Assignments) Values() []any {
	vals := make([]any, len(as))
	for i, a := range as {
		vals[i] = a.Value
	}
	return vals
}

// Map returns the assignments keyed by column name.
func (as Assignments) Map() map[string]any {
	m := make(map[string]any, len(as))
	for _, a := range as {
		m[a.Field.Column()] = a.Value
	}
	return m
}

// DataToInsert projects every persistable field for a first insert. The
// pending password and interaction columns are included only when set.
func (a *Account) DataToInsert() Assignments {
	fields := []Field{FieldUsername, FieldEmail, FieldPasswordHash, FieldActive}
	if a.pendingPasswordHash != "" {
		fields = append(fields, FieldPendingPasswordHash)
	}
	if a.interaction != nil {
		fields = append(fields, FieldInteractionCode, FieldInteractionIssuedAt, FieldInteractionType)
	}
	return a.assignments(fields)
}

// DataToStore projects only the dirty fields, for a partial update.
func (a *Account) DataToStore() Assignments {
	return a.assignments(a.dirty.Fields())
}

func (a *Account) assignments(fields []Field) Assignments {
	out := make(Assignments, 0, len(fields))
	for _, f := range fields {
		out = append(out, Assignment{Field: f, Value: a.value(f)})
	}
	return out
}

func (a *Account) value(f Field) any {
	switch f {
	case FieldUsername:
		return a.username
	case FieldEmail:
		return a.email
	case FieldPasswordHash:
		return a.passwordHash
	case FieldPendingPasswordHash:
		if a.pendingPasswordHash == "" {
			return nil
		}
		return a.pendingPasswordHash
	case FieldInteractionCode:
		if a.interaction == nil {
			return nil
		}
		return a.interaction.Code
	case FieldInteractionIssuedAt:
		if a.interaction == nil {
			return nil
		}
		return a.interaction.IssuedAt
	case FieldInteractionType:
		if a.interaction == nil {
			return nil
		}
		return string(a.interaction.Kind)
	case FieldActive:
		return a.active
	default:
		return nil
	}
}

// MarkStored records the identity assigned by a successful insert and
// clears the dirty set.
func (a *Account) MarkStored(id ulid.ULID, registeredAt time.Time) {
	a.id = id
	a.registeredAt = registeredAt
	a.dirty.Reset()
}

// MarkClean clears the dirty set after a successful update.
func (a *Account) MarkClean() { a.dirty.Reset() }
