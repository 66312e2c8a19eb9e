// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package types defines shared types used across go-patcher packages.
package types

import (
	"fmt"
	"strings"
)

// LineKind identifies the role of a line inside a hunk.
type LineKind int

const (
	Context LineKind = iota // Unchanged line, used to anchor the hunk
	Add                     // Line inserted by the hunk
	Remove                  // Line deleted by the hunk
)

// String returns the human-readable name of the line kind.
func (k LineKind) String() string {
	switch k {
	case Context:
		return "context"
	case Add:
		return "add"
	case Remove:
		return "remove"
	default:
		return "unknown"
	}
}

// Marker returns the unified-diff prefix character for the kind.
func (k LineKind) Marker() string {
	switch k {
	case Add:
		return "+"
	case Remove:
		return "-"
	default:
		return " "
	}
}

// MarshalText encodes the kind by name.
func (k LineKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name written by MarshalText.
func (k *LineKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "context":
		*k = Context
	case "add":
		*k = Add
	case "remove":
		*k = Remove
	default:
		return fmt.Errorf("unknown line kind %q", b)
	}
	return nil
}

// HunkLine is one line of a hunk with its marker already stripped.
type HunkLine struct {
	Kind    LineKind `json:"kind"`
	Content string   `json:"content"` // Line text without marker or trailing newline
}

// Hunk is one contiguous region of change parsed from a diff.
type Hunk struct {
	Lines []HunkLine `json:"lines"`
}

// ContextLines returns the contents of the Context lines, in order.
func (h Hunk) ContextLines() []string {
	return h.contentsOf(Context)
}

// RemoveLines returns the contents of the Remove lines, in order.
func (h Hunk) RemoveLines() []string {
	return h.contentsOf(Remove)
}

// AddLines returns the contents of the Add lines, in order.
func (h Hunk) AddLines() []string {
	return h.contentsOf(Add)
}

// Consumed is the number of original lines the hunk replaces: every line
// that is not an Add.
func (h Hunk) Consumed() int {
	n := 0
	for _, l := range h.Lines {
		if l.Kind != Add {
			n++
		}
	}
	return n
}

// Emitted returns the lines the hunk writes in place of the consumed region:
// Context and Add lines in their original relative order.
func (h Hunk) Emitted() []string {
	out := make([]string, 0, len(h.Lines))
	for _, l := range h.Lines {
		if l.Kind != Remove {
			out = append(out, l.Content)
		}
	}
	return out
}

// String renders the hunk back to unified-diff body lines under a bare
// "@@" header.
func (h Hunk) String() string {
	var b strings.Builder
	b.WriteString("@@")
	for _, l := range h.Lines {
		b.WriteByte('\n')
		b.WriteString(l.Kind.Marker())
		b.WriteString(l.Content)
	}
	return b.String()
}

func (h Hunk) contentsOf(kind LineKind) []string {
	var out []string
	for _, l := range h.Lines {
		if l.Kind == kind {
			out = append(out, l.Content)
		}
	}
	return out
}

// MatchResult is the resolved location of a hunk in the source.
type MatchResult struct {
	Start int  // Zero-based index of the first consumed source line
	Found bool // False when the hunk could not be located
}

// NotFound is the MatchResult for a hunk that could not be located.
var NotFound = MatchResult{Start: -1}

// HunkStatus records what happened to a hunk during application.
type HunkStatus string

const (
	StatusApplied  HunkStatus = "applied"
	StatusNotFound HunkStatus = "not_found"
	// StatusShadowed marks a located hunk whose start fell inside a region
	// already consumed by an earlier hunk, so nothing was spliced for it.
	StatusShadowed HunkStatus = "shadowed"
)

// HunkOutcome is the per-hunk entry of a PatchReport.
type HunkOutcome struct {
	Number     int         `json:"number"` // 1-based position in the hunk sequence
	Status     HunkStatus  `json:"status"`
	Start      int         `json:"start"` // Zero-based match start, -1 when not found
	Diagnostic *Diagnostic `json:"diagnostic,omitempty"`
}

// Located reports whether the hunk resolved to a location, shadowed or not.
func (o HunkOutcome) Located() bool {
	return o.Status != StatusNotFound
}

// PatchReport is the result of applying a sequence of hunks to a source.
type PatchReport struct {
	Lines   []string      `json:"lines"`
	Applied int           `json:"applied"`
	Total   int           `json:"total"`
	Hunks   []HunkOutcome `json:"hunks"`
}

// Text joins the patched lines with "\n".
func (r PatchReport) Text() string {
	return strings.Join(r.Lines, "\n")
}

// Complete is true when every hunk located.
func (r PatchReport) Complete() bool {
	return r.Applied == r.Total
}

// Failed returns the outcomes of hunks that could not be located.
func (r PatchReport) Failed() []HunkOutcome {
	var out []HunkOutcome
	for _, o := range r.Hunks {
		if o.Status == StatusNotFound {
			out = append(out, o)
		}
	}
	return out
}

// PartialMessage returns the user-facing warning for a partially applied
// patch, or "" when every hunk applied.
func PartialMessage(applied, total int) string {
	if applied >= total {
		return ""
	}
	if applied == 0 {
		return fmt.Sprintf("Could not apply any of %d changes", total)
	}
	return fmt.Sprintf("Could only apply %d of %d changes", applied, total)
}

// Diagnostic describes why a hunk could not be located, with the closest
// partial match found in the source.
type Diagnostic struct {
	Hunk             int     `json:"hunk"`              // 1-based hunk number
	Signature        string  `json:"signature"`         // Lines that were searched for
	ClosestMatch     string  `json:"closest_match"`     // Best partial match found (empty if none)
	Similarity       float64 `json:"similarity"`        // Similarity score of closest match
	ClosestLineStart int     `json:"closest_line_start"` // Starting line of the closest match (1-based)
	ClosestLineEnd   int     `json:"closest_line_end"`   // Ending line of the closest match (1-based)
}

func (d Diagnostic) Error() string {
	if d.ClosestMatch == "" {
		return fmt.Sprintf("hunk %d: context not found", d.Hunk)
	}
	return fmt.Sprintf("hunk %d: context not found (closest match at lines %d-%d, similarity %.2f)",
		d.Hunk, d.ClosestLineStart, d.ClosestLineEnd, d.Similarity)
}
