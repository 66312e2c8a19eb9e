// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_EmptyPathIsNop(t *testing.T) {
	log, closeFn, err := New("", false)
	require.NoError(t, err)

	log.Info("dropped")
	assert.NoError(t, closeFn())
	assert.False(t, log.Core().Enabled(zap.ErrorLevel))
}

func TestNew_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patcher.log")

	log, closeFn, err := New(path, false)
	require.NoError(t, err)

	log.Debug("not written")
	log.Info("patch accepted", zap.String("path", "a.txt"), zap.Int("applied", 2))
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "patch accepted", entry["msg"])
	assert.Equal(t, "a.txt", entry["path"])
	assert.Equal(t, float64(2), entry["applied"])
}

func TestNew_DevelopmentIncludesDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev.log")

	log, closeFn, err := New(path, true)
	require.NoError(t, err)
	log.Debug("hunk outcome", zap.Int("hunk", 1))
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hunk outcome")
	assert.Contains(t, string(data), "DEBUG")
}

func TestNew_BadPath(t *testing.T) {
	_, _, err := New(filepath.Join(t.TempDir(), "missing", "x.log"), false)
	assert.Error(t, err)
}
