// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package diffparse turns unified-diff text produced by an LLM into ordered
// hunks. The grammar is lenient: anything before the first hunk header is
// discarded, and body lines without a recognized marker are skipped.
package diffparse

import (
	"errors"
	"strings"

	"github.com/petar-djukic/go-patcher/pkg/types"
)

const hunkMarker = "@@"

// ErrNoHunksFound is returned when the diff text has no hunk header at all.
var ErrNoHunksFound = errors.New("diff contains no valid hunks")

// Parse extracts hunks from diff text. Line-number ranges in the "@@"
// headers are discarded, never trusted. Hunks with no lines are still
// returned so the caller sees every header the producer emitted.
func Parse(diffText string) ([]types.Hunk, error) {
	start := strings.Index(diffText, hunkMarker)
	if start < 0 {
		return nil, ErrNoHunksFound
	}

	var (
		hunks   []types.Hunk
		current *types.Hunk
	)

	for _, line := range strings.Split(diffText[start:], "\n") {
		if strings.HasPrefix(line, hunkMarker) {
			if current != nil {
				hunks = append(hunks, *current)
			}
			current = &types.Hunk{}
			continue
		}
		if current == nil {
			continue
		}
		if hl, ok := classify(line); ok {
			current.Lines = append(current.Lines, hl)
		}
	}

	if current != nil {
		hunks = append(hunks, *current)
	}

	return hunks, nil
}

// classify tags a hunk body line by its leading marker. Lines with no
// recognized marker report ok=false.
func classify(line string) (types.HunkLine, bool) {
	if line == "" {
		return types.HunkLine{}, false
	}
	switch line[0] {
	case '+':
		return types.HunkLine{Kind: types.Add, Content: line[1:]}, true
	case '-':
		return types.HunkLine{Kind: types.Remove, Content: line[1:]}, true
	case ' ':
		return types.HunkLine{Kind: types.Context, Content: line[1:]}, true
	default:
		return types.HunkLine{}, false
	}
}
