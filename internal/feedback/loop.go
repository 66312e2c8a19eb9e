// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package feedback

import (
	"context"
	"errors"
	"fmt"
)

const defaultMaxRetries = 3

// ErrRetriesExhausted is returned when the last attempt still fell short.
var ErrRetriesExhausted = errors.New("retries exhausted")

// RetryFunc is called on each retry iteration with the formatted feedback.
// It should ask the model for a corrected diff, apply it to the original
// text, verify the result, and return the new attempt.
type RetryFunc func(ctx context.Context, feedback string) (*Attempt, error)

// LoopConfig configures the retry loop.
type LoopConfig struct {
	FormatConfig FormatConfig
	MaxRetries   int // Maximum retry iterations (default 3, negative disables retries)
}

// LoopResult holds the outcome of the retry loop.
type LoopResult struct {
	Success bool
	Retries int      // Number of retry iterations performed
	Final   *Attempt // Last attempt made
}

// Run evaluates the initial attempt and, while it falls short, formats
// feedback and calls retryFn, up to MaxRetries times. The best answer is
// always the last one: each retry is applied to the original text, not on
// top of the previous attempt.
func Run(ctx context.Context, cfg LoopConfig, initial *Attempt, retryFn RetryFunc) (*LoopResult, error) {
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = defaultMaxRetries
	}
	if maxRetries < 0 {
		maxRetries = 0
	}

	result := &LoopResult{Final: initial}
	if initial.Success() {
		result.Success = true
		return result, nil
	}

	for i := 0; i < maxRetries; i++ {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("context canceled after %d retries: %w", result.Retries, err)
		}

		result.Retries++
		prompt := FormatFailures(result.Final, cfg.FormatConfig)

		next, err := retryFn(ctx, prompt)
		if err != nil {
			return result, fmt.Errorf("retry %d failed: %w", result.Retries, err)
		}
		result.Final = next

		if next.Success() {
			result.Success = true
			return result, nil
		}
	}

	return result, fmt.Errorf("%w: %d retries with remaining problems", ErrRetriesExhausted, result.Retries)
}
