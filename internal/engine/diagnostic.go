// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package engine

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/petar-djukic/go-patcher/pkg/types"
)

// maxDiagnosticWindows bounds the closest-match search on very large files.
const maxDiagnosticWindows = 20000

// Diagnose explains why hunk h could not be located by finding the region
// of source most similar to the lines the hunk expected to find there.
// number is the hunk's 1-based position, used for reporting.
func Diagnose(source []string, h types.Hunk, number int) *types.Diagnostic {
	signature := expectedLines(h)
	d := &types.Diagnostic{
		Hunk:      number,
		Signature: strings.Join(signature, "\n"),
	}
	if len(signature) == 0 || len(source) == 0 {
		return d
	}

	closest, sim, lineStart, lineEnd := findClosestMatch(source, signature)
	d.ClosestMatch = closest
	d.Similarity = sim
	d.ClosestLineStart = lineStart
	d.ClosestLineEnd = lineEnd
	return d
}

// expectedLines returns the Context and Remove lines of a hunk in order:
// the text the hunk expects to exist in the source.
func expectedLines(h types.Hunk) []string {
	var out []string
	for _, l := range h.Lines {
		if l.Kind != types.Add {
			out = append(out, l.Content)
		}
	}
	return out
}

// findClosestMatch slides a window of len(search) lines over source and
// returns the most similar region with its 1-based line range.
func findClosestMatch(source, search []string) (closest string, sim float64, lineStart, lineEnd int) {
	size := len(search)
	if size > len(source) {
		size = len(source)
	}
	target := strings.Join(trimAll(search), "\n")
	normalized := trimAll(source)

	var (
		bestSim   float64
		bestStart int
	)
	windows := len(source) - size + 1
	if windows > maxDiagnosticWindows {
		windows = maxDiagnosticWindows
	}
	for i := 0; i < windows; i++ {
		candidate := strings.Join(normalized[i:i+size], "\n")
		if s := similarity(candidate, target); s > bestSim {
			bestSim = s
			bestStart = i
		}
	}

	if bestSim == 0 {
		return "", 0, 0, 0
	}
	closest = strings.Join(source[bestStart:bestStart+size], "\n")
	return closest, bestSim, bestStart + 1, bestStart + size
}

// similarity computes the Levenshtein-based similarity ratio between two
// strings. Returns a value between 0.0 and 1.0.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)
	distance := dmp.DiffLevenshtein(diffs)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	return 1.0 - float64(distance)/float64(maxLen)
}
