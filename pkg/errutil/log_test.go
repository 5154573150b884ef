// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package errutil_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/accounts/pkg/errutil"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogError_WithOopsError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := oops.Code("TEST_ERROR").
		With("key", "value").
		Errorf("something failed")

	errutil.LogError(logger, "operation failed", err)

	entry := decode(t, &buf)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "operation failed", entry["msg"])
	assert.Equal(t, "TEST_ERROR", entry["code"])
	ctx, ok := entry["context"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "value", ctx["key"])
}

func TestLogError_WithStandardError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	errutil.LogError(logger, "operation failed", errors.New("standard error"))

	entry := decode(t, &buf)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Contains(t, entry["error"], "standard error")
	assert.NotContains(t, entry, "code")
}

func TestLogWarn_UsesWarnLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	errutil.LogWarn(logger, "delivery failed", oops.Code("SEND_FAILED").Errorf("smtp down"))

	entry := decode(t, &buf)
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "SEND_FAILED", entry["code"])
}
