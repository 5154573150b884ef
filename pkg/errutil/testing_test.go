// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package errutil_test

import (
	"errors"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"

	"github.com/holomush/accounts/pkg/errutil"
)

// recorder captures assertion failures instead of failing the test.
type recorder struct {
	testing.TB
	failed bool
}

func (r *recorder) Helper()               {}
func (r *recorder) Name() string          { return "recorder" }
func (r *recorder) Errorf(string, ...any) { r.failed = true }
func (r *recorder) FailNow()              { r.failed = true }

var (
	errLocked  = errors.New("locked")
	errMissing = errors.New("missing")
)

func TestAssertErrorCode_DeepestCode(t *testing.T) {
	inner := oops.Code("ROW_LOCKED").Wrap(errLocked)
	errutil.AssertErrorCode(t, oops.With("operation", "update").Wrap(inner), "ROW_LOCKED")
}

func TestAssertErrorContext(t *testing.T) {
	err := oops.With("username", "alice").Errorf("test error")
	errutil.AssertErrorContext(t, err, "username", "alice")

	rec := &recorder{}
	errutil.AssertErrorContext(rec, err, "email", "alice@example.com")
	assert.True(t, rec.failed)
}

func TestAssertCodedError(t *testing.T) {
	err := oops.Code("ROW_LOCKED").Wrap(errLocked)
	errutil.AssertCodedError(t, err, errLocked, "ROW_LOCKED")

	rec := &recorder{}
	errutil.AssertCodedError(rec, err, errMissing, "ROW_LOCKED")
	assert.True(t, rec.failed, "wrong sentinel must fail")

	rec = &recorder{}
	errutil.AssertCodedError(rec, err, errLocked, "ROW_MISSING")
	assert.True(t, rec.failed, "wrong code must fail")
}

func TestAssertErrorClass(t *testing.T) {
	classify := func(err error) string {
		if errors.Is(err, errMissing) {
			return "not_found"
		}
		return "internal"
	}
	errutil.AssertErrorClass(t, oops.Wrap(errMissing), classify, "not_found")

	rec := &recorder{}
	errutil.AssertErrorClass(rec, errLocked, classify, "not_found")
	assert.True(t, rec.failed)
}
