// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package account

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Username and e-mail constraints, matching the accounts table columns.
const (
	MinUsernameLength = 4
	MaxUsernameLength = 40
	MaxEmailLength    = 80
)

// usernameRegex matches usernames that start with a letter and continue with
// letters, digits, dots, dashes or underscores.
var usernameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9._-]*$`)

// ValidateUsername checks the username format.
func ValidateUsername(username string) error {
	err := validation.Validate(username,
		validation.Required,
		validation.RuneLength(MinUsernameLength, MaxUsernameLength),
		validation.Match(usernameRegex).Error("must start with a letter and contain only letters, digits, dots, dashes or underscores"),
	)
	if err != nil {
		return invalidUsername(username, err)
	}
	return nil
}

// ValidateEmail checks that email is a canonical e-mail address.
func ValidateEmail(email string) error {
	err := validation.Validate(email,
		validation.Required,
		validation.RuneLength(0, MaxEmailLength),
		is.EmailFormat,
	)
	if err != nil {
		return invalidEmail(email, err)
	}
	return nil
}
