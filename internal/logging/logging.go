// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package logging builds the zap logger used across go-patcher.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Stderr is the path value that sends logs to standard error.
const Stderr = "-"

// New returns a logger writing to path and a function that flushes and
// closes it. An empty path disables logging. development switches to the
// readable console encoder at Debug level; otherwise JSON at Info.
func New(path string, development bool) (*zap.Logger, func() error, error) {
	if path == "" {
		return zap.NewNop(), func() error { return nil }, nil
	}

	var (
		sink      zapcore.WriteSyncer
		closeFile = func() error { return nil }
	)
	if path == Stderr {
		sink = zapcore.Lock(os.Stderr)
	} else {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		sink = zapcore.AddSync(f)
		closeFile = f.Close
	}

	var (
		encoder zapcore.Encoder
		level   = zapcore.InfoLevel
	)
	if development {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		level = zapcore.DebugLevel
	} else {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	logger := zap.New(zapcore.NewCore(encoder, sink, level))
	return logger, func() error {
		_ = logger.Sync()
		return closeFile()
	}, nil
}
