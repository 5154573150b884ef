// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package account

import (
	"errors"

	"github.com/samber/oops"
)

// Sentinel errors. Every error returned by this package (and by repository
// implementations) wraps exactly one of these, so callers can use errors.Is.
var (
	// Validation errors.
	ErrInvalidUsername        = errors.New("invalid username")
	ErrInvalidEmail           = errors.New("invalid e-mail")
	ErrInvalidPassword        = errors.New("invalid password")
	ErrMissingLookupKey       = errors.New("no account information to look for")
	ErrInvalidInteractionKind = errors.New("invalid interaction kind")

	// Conflict errors.
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("e-mail already exists")

	// State errors.
	ErrInactiveAccount       = errors.New("cannot authenticate inactive account")
	ErrAccountNotNew         = errors.New("account is not new")
	ErrAccountIsNew          = errors.New("account has not been stored")
	ErrNoMatchingInteraction = errors.New("no matching pending interaction")
	ErrInteractionExpired    = errors.New("interaction expired")
	ErrInvalidCredentials    = errors.New("invalid username or password")

	// ErrNotFound is returned when a requested account does not exist.
	ErrNotFound = errors.New("not found")

	// ErrMalformedHash means a stored credential is not in salt$digest form.
	ErrMalformedHash = errors.New("malformed password hash")
)

// Error codes attached to oops errors.
const (
	CodeInvalidUsername        = "ACCOUNT_INVALID_USERNAME"
	CodeInvalidEmail           = "ACCOUNT_INVALID_EMAIL"
	CodeInvalidPassword        = "ACCOUNT_INVALID_PASSWORD"
	CodeMissingLookupKey       = "ACCOUNT_MISSING_LOOKUP_KEY"
	CodeInvalidInteractionKind = "ACCOUNT_INVALID_INTERACTION_KIND"
	CodeDuplicateUsername      = "ACCOUNT_DUPLICATE_USERNAME"
	CodeDuplicateEmail         = "ACCOUNT_DUPLICATE_EMAIL"
	CodeInactive               = "ACCOUNT_INACTIVE"
	CodeNotNew                 = "ACCOUNT_NOT_NEW"
	CodeIsNew                  = "ACCOUNT_IS_NEW"
	CodeNoMatchingInteraction  = "ACCOUNT_NO_MATCHING_INTERACTION"
	CodeInteractionExpired     = "ACCOUNT_INTERACTION_EXPIRED"
	CodeInvalidCredentials     = "ACCOUNT_INVALID_CREDENTIALS"
	CodeNotFound               = "ACCOUNT_NOT_FOUND"
	CodeMalformedHash          = "ACCOUNT_MALFORMED_HASH"
	CodeStoreFailed            = "ACCOUNT_STORE_FAILED"
	CodeLookupFailed           = "ACCOUNT_LOOKUP_FAILED"
	CodeDeleteFailed           = "ACCOUNT_DELETE_FAILED"
	CodeConfirmFailed          = "ACCOUNT_CONFIRM_FAILED"
	CodeSuspendFailed          = "ACCOUNT_SUSPEND_FAILED"
	CodeNotificationFailed     = "ACCOUNT_NOTIFICATION_FAILED"
	CodeConfigInvalid          = "ACCOUNT_CONFIG_INVALID"
)

// ErrorKind classifies an error returned by the lifecycle layer.
type ErrorKind int

// Error kinds, from the caller's point of view.
const (
	// KindNone is reported for a nil error.
	KindNone ErrorKind = iota
	// KindValidation: malformed input, fixable by the caller.
	KindValidation
	// KindConflict: a unique field is already taken.
	KindConflict
	// KindState: the account is in the wrong state for the operation.
	KindState
	// KindNotFound: the addressed account does not exist.
	KindNotFound
	// KindInternal: persistence or programming failure, opaque to end users.
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindState:
		return "state"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

var errorKinds = []struct {
	target error
	kind   ErrorKind
}{
	{ErrInvalidUsername, KindValidation},
	{ErrInvalidEmail, KindValidation},
	{ErrInvalidPassword, KindValidation},
	{ErrMissingLookupKey, KindValidation},
	{ErrInvalidInteractionKind, KindValidation},
	{ErrDuplicateUsername, KindConflict},
	{ErrDuplicateEmail, KindConflict},
	{ErrInactiveAccount, KindState},
	{ErrAccountNotNew, KindState},
	{ErrAccountIsNew, KindState},
	{ErrNoMatchingInteraction, KindState},
	{ErrInteractionExpired, KindState},
	{ErrInvalidCredentials, KindState},
	{ErrNotFound, KindNotFound},
}

// KindOf reports the class of err. Anything not wrapping a known sentinel,
// including ErrMalformedHash and database failures, is KindInternal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	for _, ek := range errorKinds {
		if errors.Is(err, ek.target) {
			return ek.kind
		}
	}
	return KindInternal
}

func invalidUsername(username string, reason error) error {
	b := oops.Code(CodeInvalidUsername).With("username", username)
	if reason != nil {
		b = b.With("reason", reason.Error())
	}
	return b.Wrap(ErrInvalidUsername)
}

func invalidEmail(email string, reason error) error {
	b := oops.Code(CodeInvalidEmail).With("email", email)
	if reason != nil {
		b = b.With("reason", reason.Error())
	}
	return b.Wrap(ErrInvalidEmail)
}

// DuplicateUsername builds the conflict error for a taken username.
// Repository implementations use it when the unique constraint fires.
func DuplicateUsername(username string) error {
	return oops.Code(CodeDuplicateUsername).
		With("username", username).
		Wrapf(ErrDuplicateUsername, "username '%s' already exists", username)
}

// DuplicateEmail builds the conflict error for a taken e-mail address.
func DuplicateEmail(email string) error {
	return oops.Code(CodeDuplicateEmail).
		With("email", email).
		Wrapf(ErrDuplicateEmail, "e-mail '%s' already exists", email)
}

// NotFound builds the error repositories return for a missing account.
func NotFound(lookup Lookup) error {
	return oops.Code(CodeNotFound).
		With("username", lookup.Username).
		With("email", lookup.Email).
		Wrap(ErrNotFound)
}

// NoMatchingInteraction builds the error for an unknown or consumed code.
func NoMatchingInteraction() error {
	return oops.Code(CodeNoMatchingInteraction).Wrap(ErrNoMatchingInteraction)
}
