// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package feedback

import (
	"fmt"
	"strings"

	"github.com/petar-djukic/go-patcher/pkg/types"
)

const (
	defaultContextLines  = 3
	defaultMinSimilarity = 0.5
)

// FormatConfig configures follow-up prompt formatting.
type FormatConfig struct {
	ContextLines  int     // Lines of context above/below each syntax error (default 3)
	MinSimilarity float64 // Closest matches below this are not shown (default 0.5)
}

// Attempt is one diff the model produced and what happened to it.
type Attempt struct {
	DiffText string
	Hunks    []types.Hunk
	Report   types.PatchReport
	Verify   *VerifyResult
	ParseErr error // Set when the response held no hunks
}

// Success is true when the diff parsed, every hunk located, and the
// patched text passed verification.
func (a *Attempt) Success() bool {
	return a != nil && a.ParseErr == nil && a.Report.Total > 0 && a.Report.Complete() && a.Verify.Success()
}

// FormatFailures produces the follow-up prompt describing why an attempt
// fell short: hunks that could not be located (with the closest region
// found), hunks that were shadowed by an earlier one, and syntax errors in
// the patched text.
func FormatFailures(a *Attempt, cfg FormatConfig) string {
	contextLines := cfg.ContextLines
	if contextLines == 0 {
		contextLines = defaultContextLines
	}
	minSim := cfg.MinSimilarity
	if minSim == 0 {
		minSim = defaultMinSimilarity
	}

	var buf strings.Builder

	if a.ParseErr != nil {
		buf.WriteString("Your reply contained no hunks. Every change must start with a line beginning with \"@@\".\n")
		return buf.String()
	}

	if msg := types.PartialMessage(a.Report.Applied, a.Report.Total); msg != "" {
		buf.WriteString(msg + ".\n\n")
	}

	for _, o := range a.Report.Hunks {
		if o.Status == types.StatusApplied {
			continue
		}
		var h types.Hunk
		if o.Number-1 < len(a.Hunks) {
			h = a.Hunks[o.Number-1]
		}

		switch o.Status {
		case types.StatusNotFound:
			fmt.Fprintf(&buf, "## Hunk %d could not be located\n\n", o.Number)
			writeHunk(&buf, h)
			if len(h.ContextLines()) == 0 && len(h.RemoveLines()) == 0 {
				buf.WriteString("It has no context or removed lines, so there is nothing to anchor it to.\n\n")
			} else if d := o.Diagnostic; d != nil && d.ClosestMatch != "" && d.Similarity >= minSim {
				fmt.Fprintf(&buf, "The closest text in the file is at lines %d-%d (similarity %.2f):\n\n```\n%s\n```\n\n",
					d.ClosestLineStart, d.ClosestLineEnd, d.Similarity, d.ClosestMatch)
			} else {
				buf.WriteString("None of its context appears in the file.\n\n")
			}
		case types.StatusShadowed:
			fmt.Fprintf(&buf, "## Hunk %d overlaps an earlier hunk and was skipped\n\n", o.Number)
			writeHunk(&buf, h)
		}
	}

	if v := a.Verify; v != nil && len(v.Errors) > 0 {
		patched := a.Report.Lines
		fmt.Fprintf(&buf, "## Syntax Errors in %s after patching\n\n", v.Path)
		for _, e := range v.Errors {
			fmt.Fprintf(&buf, "### %s\n\n", e.String())
			if ctx := codeContext(patched, e.Line, contextLines); ctx != "" {
				buf.WriteString("```\n")
				buf.WriteString(ctx)
				buf.WriteString("```\n\n")
			}
		}
	}

	return buf.String()
}

func writeHunk(buf *strings.Builder, h types.Hunk) {
	buf.WriteString("```diff\n")
	buf.WriteString(h.String())
	buf.WriteString("\n```\n\n")
}

// codeContext returns numbered lines around errorLine, with the error line
// marked.
func codeContext(lines []string, errorLine, contextLines int) string {
	if errorLine < 1 || errorLine > len(lines) {
		return ""
	}
	start := errorLine - contextLines - 1
	if start < 0 {
		start = 0
	}
	end := errorLine + contextLines
	if end > len(lines) {
		end = len(lines)
	}

	var buf strings.Builder
	for i := start; i < end; i++ {
		lineNum := i + 1
		marker := "  "
		if lineNum == errorLine {
			marker = "> "
		}
		fmt.Fprintf(&buf, "%s%4d │ %s\n", marker, lineNum, lines[i])
	}
	return buf.String()
}
