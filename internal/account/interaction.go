// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package account

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/samber/oops"
)

// InteractionKind tags the operation a pending interaction code gates.
type InteractionKind string

// Interaction kinds. The values are the single-character tags persisted in
// the interaction_type column.
const (
	InteractionActivate InteractionKind = "a"
	InteractionDelete   InteractionKind = "d"
	InteractionReset    InteractionKind = "r"
)

// InteractionCodeLength is the length of an interaction code (sha256 hex).
const InteractionCodeLength = sha256.Size * 2

// DefaultActivationDeadline is how long an activation code stays valid.
const DefaultActivationDeadline = 48 * time.Hour

// interactionTimestampLayout has second resolution. Two codes issued for the
// same username within one second are identical.
const interactionTimestampLayout = "2006_01_02_15_04_05"

var interactionNames = map[InteractionKind]string{
	InteractionActivate: "activate",
	InteractionDelete:   "delete",
	InteractionReset:    "reset",
}

// ParseInteractionKind maps "activate", "delete" or "reset" (or their
// single-character tags) to a kind.
func ParseInteractionKind(s string) (InteractionKind, error) {
	for kind, name := range interactionNames {
		if s == name || s == string(kind) {
			return kind, nil
		}
	}
	return "", oops.Code(CodeInvalidInteractionKind).
		With("kind", s).
		Wrap(ErrInvalidInteractionKind)
}

// String returns the long name of the kind.
func (k InteractionKind) String() string {
	if name, ok := interactionNames[k]; ok {
		return name
	}
	return string(k)
}

// Valid reports whether k is one of the known kinds.
func (k InteractionKind) Valid() bool {
	_, ok := interactionNames[k]
	return ok
}

// Interaction is a pending, single-use confirmation code.
type Interaction struct {
	Code     string
	IssuedAt time.Time
	Kind     InteractionKind
}

// IssueInteraction creates a code for username at time now.
func IssueInteraction(username string, kind InteractionKind, now time.Time) (Interaction, error) {
	if !kind.Valid() {
		return Interaction{}, oops.Code(CodeInvalidInteractionKind).
			With("kind", string(kind)).
			Wrap(ErrInvalidInteractionKind)
	}
	issuedAt := now.UTC().Truncate(time.Second)
	return Interaction{
		Code:     interactionCode(username, issuedAt),
		IssuedAt: issuedAt,
		Kind:     kind,
	}, nil
}

func interactionCode(username string, issuedAt time.Time) string {
	sum := sha256.Sum256([]byte(username + issuedAt.Format(interactionTimestampLayout)))
	return hex.EncodeToString(sum[:])
}

// IsTimely reports whether now - issuedAt <= deadline.
func IsTimely(issuedAt time.Time, deadline time.Duration, now time.Time) bool {
	return now.Sub(issuedAt) <= deadline
}
