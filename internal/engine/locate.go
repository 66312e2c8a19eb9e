// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package engine locates parsed hunks in the current text of a file and
// splices them in. Hunk positions are derived from content alone; the
// line numbers a diff claims are never consulted.
//
// Every function here is pure: inputs are never mutated and no state is
// kept between calls, so callers may use the package concurrently.
package engine

import (
	"strings"

	"github.com/petar-djukic/go-patcher/pkg/types"
)

// Locate finds where hunk h applies in source. Comparison trims
// leading and trailing whitespace on both sides; stored content is
// untouched.
func Locate(source []string, h types.Hunk) types.MatchResult {
	return locate(trimAll(source), h)
}

// locate runs against source lines that are already trimmed.
func locate(trimmed []string, h types.Hunk) types.MatchResult {
	context := trimAll(h.ContextLines())
	if len(context) > 0 {
		return anchoredMatch(trimmed, context)
	}

	removes := trimAll(h.RemoveLines())
	if len(removes) > 0 {
		return windowMatch(trimmed, removes)
	}

	// Pure insertion or empty hunk: nothing to anchor on.
	return types.NotFound
}

// anchoredMatch scans for the first context line and, at each hit,
// confirms the remaining context lines appear in order after it. Source
// lines that match nothing are skipped, which tolerates lines added since
// the diff was generated.
func anchoredMatch(source, context []string) types.MatchResult {
	anchor := context[0]
	for i, line := range source {
		if line != anchor {
			continue
		}
		if followsInOrder(source[i+1:], context[1:]) {
			return types.MatchResult{Start: i, Found: true}
		}
	}
	return types.NotFound
}

// followsInOrder reports whether every expected line occurs in source in
// order, with any number of unrelated lines in between.
func followsInOrder(source, expected []string) bool {
	next := 0
	for _, line := range source {
		if next == len(expected) {
			break
		}
		if line == expected[next] {
			next++
		}
	}
	return next == len(expected)
}

// windowMatch slides a window the size of needle over source and returns
// the first position where every line is equal.
func windowMatch(source, needle []string) types.MatchResult {
	for i := 0; i+len(needle) <= len(source); i++ {
		match := true
		for j := range needle {
			if source[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return types.MatchResult{Start: i, Found: true}
		}
	}
	return types.NotFound
}

func trimAll(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.TrimSpace(l)
	}
	return out
}
