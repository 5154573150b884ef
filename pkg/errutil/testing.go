// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package errutil

import (
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertErrorCode asserts that err is an oops error whose deepest code is
// code.
func AssertErrorCode(t testing.TB, err error, code string) {
	t.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T: %v", err, err)
	assert.Equal(t, code, oopsErr.Code(), "error: %v", err)
}

// AssertErrorContext asserts that err carries key=value in its oops context.
func AssertErrorContext(t testing.TB, err error, key string, value any) {
	t.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T: %v", err, err)
	ctx := oopsErr.Context()
	if assert.Contains(t, ctx, key) {
		assert.Equal(t, value, ctx[key])
	}
}

// AssertCodedError asserts that err wraps target and carries code. Domain
// errors are sentinels wrapped by oops, so callers usually need both.
func AssertCodedError(t testing.TB, err, target error, code string) {
	t.Helper()
	assert.ErrorIs(t, err, target)
	AssertErrorCode(t, err, code)
}

// AssertErrorClass asserts that classify maps err to want, as with
// account.KindOf.
func AssertErrorClass[K comparable](t testing.TB, err error, classify func(error) K, want K) {
	t.Helper()
	assert.Equal(t, want, classify(err), "error: %v", err)
}
