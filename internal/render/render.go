// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package render produces the human-facing views of a patch: a unified
// diff of original against patched text, its colored form, and the
// one-line summary.
package render

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/petar-djukic/go-patcher/pkg/types"
)

const defaultDiffContext = 3

// UnifiedDiff renders the change from original to patched as a unified
// diff with a/ and b/ path prefixes. Identical inputs give "".
func UnifiedDiff(path, original, patched string) (string, error) {
	if original == patched {
		return "", nil
	}
	out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        diffLines(original),
		B:        diffLines(patched),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  defaultDiffContext,
	})
	if err != nil {
		return "", fmt.Errorf("rendering diff for %s: %w", path, err)
	}
	return out, nil
}

const noNewlineMarker = "\\ No newline at end of file\n"

// diffLines splits text into newline-terminated lines for difflib. A final
// line without a newline carries git's "\ No newline at end of file"
// marker, so it still counts as one line and differs from its terminated
// form.
func diffLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if last := len(lines) - 1; lines[last] == "" {
		lines = lines[:last]
	} else {
		lines[last] += "\n" + noNewlineMarker
	}
	return lines
}

var (
	headerColor = color.New(color.Bold)
	hunkColor   = color.New(color.FgCyan)
	addColor    = color.New(color.FgGreen)
	removeColor = color.New(color.FgRed)
)

// Colorize adds terminal colors to a unified diff. Output is unchanged
// when color is disabled (color.NoColor).
func Colorize(diff string) string {
	if diff == "" {
		return ""
	}
	lines := strings.SplitAfter(diff, "\n")
	var b strings.Builder
	for _, l := range lines {
		if l == "" {
			continue
		}
		body := strings.TrimSuffix(l, "\n")
		nl := l[len(body):]
		switch {
		case strings.HasPrefix(body, "+++"), strings.HasPrefix(body, "---"):
			b.WriteString(headerColor.Sprint(body))
		case strings.HasPrefix(body, "@@"):
			b.WriteString(hunkColor.Sprint(body))
		case strings.HasPrefix(body, "+"):
			b.WriteString(addColor.Sprint(body))
		case strings.HasPrefix(body, "-"):
			b.WriteString(removeColor.Sprint(body))
		default:
			b.WriteString(body)
		}
		b.WriteString(nl)
	}
	return b.String()
}

// Summary describes a patch outcome in one line.
func Summary(report types.PatchReport) string {
	if msg := types.PartialMessage(report.Applied, report.Total); msg != "" {
		return msg
	}
	if report.Total == 1 {
		return "Applied 1 change"
	}
	return fmt.Sprintf("Applied %d changes", report.Total)
}

// Details lists every hunk that did not splice cleanly, one per line.
func Details(report types.PatchReport) string {
	var b strings.Builder
	for _, o := range report.Hunks {
		switch o.Status {
		case types.StatusNotFound:
			if o.Diagnostic != nil {
				b.WriteString(o.Diagnostic.Error())
			} else {
				fmt.Fprintf(&b, "hunk %d: context not found", o.Number)
			}
			b.WriteByte('\n')
		case types.StatusShadowed:
			fmt.Fprintf(&b, "hunk %d: overlaps an earlier hunk at line %d, skipped\n", o.Number, o.Start+1)
		}
	}
	return b.String()
}
