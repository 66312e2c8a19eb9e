// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package assistant is the public entry point for model-driven patching:
// ask for a change to one file, review the proposed diff, then accept or
// reject it.
package assistant

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/petar-djukic/go-patcher/pkg/types"
)

// Error types for the Assistant API.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLLMFailure    = errors.New("LLM call failed")
	ErrParseFailure  = errors.New("failed to parse LLM response into hunks")
)

// Config configures an Assistant instance.
type Config struct {
	WorkDir     string      // Directory relative paths resolve against (required)
	Model       string      // Bedrock model ID (required)
	Region      string      // AWS region (required)
	Profile     string      // AWS credential profile (optional)
	MaxRetries  int         // Feedback loop iterations (default 3, negative disables)
	MaxTokens   int         // Maximum tokens for the LLM response (default 4096)
	NoGit       bool        // Disable git operations
	AutoCommit  bool        // Commit accepted patches
	DirtyCommit bool        // Commit pending changes to the target before patching
	Logger      *zap.Logger // Optional
}

// Result holds a proposed change. Nothing is written until Accept.
type Result struct {
	Path       string
	Diff       string            // Unified diff of the proposal
	Reply      string            // The model's final diff as received
	Patched    string            // Full text after patching
	Report     types.PatchReport // Hunk outcomes
	Errors     []string          // Problems remaining after all retries
	TokensUsed types.TokenUsage
	Retries    int
	Success    bool // Every hunk applied and the result verified

	accept func(instruction string) error
	reject func() error
}

// Accept writes the patched text and commits it when git is enabled.
func (r *Result) Accept(instruction string) error {
	if r.accept == nil {
		return ErrParseFailure
	}
	return r.accept(instruction)
}

// Reject discards the proposal. It is a no-op once the proposal was
// accepted or rejected.
func (r *Result) Reject() error {
	if r.reject == nil {
		return nil
	}
	return r.reject()
}

// Assistant proposes patches to files.
type Assistant interface {
	// Suggest sends the file and instruction to the model, applies the
	// returned diff in memory, verifies it, and retries with feedback on
	// failure. The file is left untouched.
	Suggest(ctx context.Context, path, instruction string) (*Result, error)
}
