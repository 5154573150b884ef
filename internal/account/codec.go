// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package account

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"math/rand/v2"
	"strings"

	"github.com/samber/oops"
)

// Credential format constants.
const (
	// PasswordChars is the alphabet for generated passwords. Visually
	// ambiguous characters (i, l, o, I, O, 1) are left out.
	PasswordChars = "abcdefghjkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ234567890"

	// GeneratedPasswordLength is the length of generated passwords.
	GeneratedPasswordLength = 8

	// DefaultMinPasswordLength applies when the configuration leaves it unset.
	DefaultMinPasswordLength = 4

	saltChars  = "abcdefghijklmnopqrstuvwxyz0123456789"
	saltLength = 16

	// HashLength is the length of a stored hash: 16 salt + "$" + 64 hex digits.
	HashLength = saltLength + 1 + sha256.Size*2

	hashSeparator = "$"
)

// PasswordPolicy holds the rules a cleartext password must satisfy.
type PasswordPolicy struct {
	MinLength int
}

// DefaultPasswordPolicy returns the policy with the default minimum length.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{MinLength: DefaultMinPasswordLength}
}

// Validate rejects blank passwords and passwords shorter than MinLength.
func (p PasswordPolicy) Validate(cleartext string) error {
	if cleartext == "" {
		return oops.Code(CodeInvalidPassword).
			Wrapf(ErrInvalidPassword, "passwords cannot be blank")
	}
	if len(cleartext) < p.MinLength {
		return oops.Code(CodeInvalidPassword).
			With("min", p.MinLength).
			Wrapf(ErrInvalidPassword, "passwords cannot be shorter than %d characters", p.MinLength)
	}
	return nil
}

// GeneratePassword returns a random human-usable password. It is meant for
// one-time disclosure, not as a secret token.
func GeneratePassword() string {
	return randomString(PasswordChars, GeneratedPasswordLength)
}

// HashPassword salts and hashes cleartext for username. The result has the
// form salt$digest where digest = hex(sha256(username + salt + cleartext)).
// Two calls with the same input produce different results.
func HashPassword(username, cleartext string) string {
	salt := randomString(saltChars, saltLength)
	return salt + hashSeparator + passwordDigest(username, salt, cleartext)
}

// VerifyPassword reports whether candidate matches the stored hash.
// A stored value not in salt$digest form returns ErrMalformedHash.
func VerifyPassword(username, stored, candidate string) (bool, error) {
	salt, digest, ok := strings.Cut(stored, hashSeparator)
	if !ok || salt == "" || digest == "" || strings.Contains(digest, hashSeparator) {
		return false, oops.Code(CodeMalformedHash).
			With("username", username).
			Wrap(ErrMalformedHash)
	}
	computed := passwordDigest(username, salt, candidate)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1, nil
}

func passwordDigest(username, salt, cleartext string) string {
	sum := sha256.Sum256([]byte(username + salt + cleartext))
	return hex.EncodeToString(sum[:])
}

// randomString draws n characters uniformly from alphabet. math/rand/v2 is
// seeded from the platform entropy source.
func randomString(alphabet string, n int) string {
	var b strings.Builder
	b.Grow(n)
	for range n {
		b.WriteByte(alphabet[rand.IntN(len(alphabet))]) //nolint:gosec // not a secret token
	}
	return b.String()
}
