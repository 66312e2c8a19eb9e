// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package patch is the public entry point for go-patcher: lenient
// unified-diff parsing and content-anchored patch application.
//
// Hunks are located by the lines they carry, not by the line numbers in
// their headers, so a diff produced against a slightly different version
// of a file still applies. Application is best-effort; the returned
// report says how many hunks located.
package patch

import (
	"strings"

	"github.com/petar-djukic/go-patcher/internal/diffparse"
	"github.com/petar-djukic/go-patcher/internal/engine"
	"github.com/petar-djukic/go-patcher/pkg/types"
)

// ErrNoHunksFound is returned when the diff text has no "@@" hunk header.
var ErrNoHunksFound = diffparse.ErrNoHunksFound

// Parse extracts the ordered hunks from diff text.
func Parse(diffText string) ([]types.Hunk, error) {
	return diffparse.Parse(diffText)
}

// Apply applies hunks to original, split on "\n". Join Report.Lines with
// "\n" (or call Report.Text) to get the patched document.
func Apply(original string, hunks []types.Hunk) types.PatchReport {
	return engine.Apply(SplitLines(original), hunks)
}

// ApplyLines is Apply for callers that already hold the document as lines.
func ApplyLines(original []string, hunks []types.Hunk) types.PatchReport {
	return engine.Apply(original, hunks)
}

// ApplyDiff parses diffText and applies it to original.
func ApplyDiff(original, diffText string) (types.PatchReport, error) {
	hunks, err := Parse(diffText)
	if err != nil {
		return types.PatchReport{}, err
	}
	return Apply(original, hunks), nil
}

// Locate reports where a single hunk would apply in original.
func Locate(original string, h types.Hunk) types.MatchResult {
	return engine.Locate(SplitLines(original), h)
}

// SplitLines splits text on "\n". An empty document is a single empty
// line, so joining the result always reproduces the input.
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}
