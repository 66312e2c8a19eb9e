// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package diffparse

import (
	"strings"
)

const devNull = "/dev/null"

// FileHeader holds the paths named by the "--- " and "+++ " lines of a
// unified diff.
type FileHeader struct {
	OldPath string
	NewPath string
}

// Target returns the path the diff should be applied to. The new path wins
// unless it is /dev/null or missing.
func (h FileHeader) Target() string {
	if h.NewPath != "" && h.NewPath != devNull {
		return h.NewPath
	}
	if h.OldPath != devNull {
		return h.OldPath
	}
	return ""
}

// FileDiff is the portion of a multi-file diff that belongs to one file.
type FileDiff struct {
	Header FileHeader
	Body   string // Diff text for this file, header lines included
}

// ParseFileHeader reads the file header lines that precede the first hunk.
// It reports false when neither a "--- " nor a "+++ " line is present.
func ParseFileHeader(diffText string) (FileHeader, bool) {
	var (
		h     FileHeader
		found bool
	)
	for _, line := range strings.Split(diffText, "\n") {
		if strings.HasPrefix(line, hunkMarker) {
			break
		}
		if p, ok := strings.CutPrefix(line, "--- "); ok {
			h.OldPath = cleanPath(p, "a/")
			found = true
			continue
		}
		if p, ok := strings.CutPrefix(line, "+++ "); ok {
			h.NewPath = cleanPath(p, "b/")
			found = true
		}
	}
	return h, found
}

// SplitFiles breaks a diff covering several files into one FileDiff per
// "--- "/"+++ " header pair. Text before the first pair stays with the
// first file. A diff with no header pair comes back as a single FileDiff
// with an empty header.
func SplitFiles(diffText string) []FileDiff {
	lines := strings.Split(diffText, "\n")

	var starts []int
	for i := 0; i+1 < len(lines); i++ {
		if strings.HasPrefix(lines[i], "--- ") && strings.HasPrefix(lines[i+1], "+++ ") {
			starts = append(starts, i)
			i++
		}
	}

	if len(starts) == 0 {
		return []FileDiff{{Body: diffText}}
	}

	files := make([]FileDiff, 0, len(starts))
	for n, s := range starts {
		from := s
		if n == 0 {
			from = 0
		}
		to := len(lines)
		if n+1 < len(starts) {
			to = starts[n+1]
		}
		body := strings.Join(lines[from:to], "\n")
		header, _ := ParseFileHeader(strings.Join(lines[s:to], "\n"))
		files = append(files, FileDiff{Header: header, Body: body})
	}
	return files
}

// cleanPath strips the git-style prefix and any trailing timestamp from a
// header path.
func cleanPath(raw, prefix string) string {
	p := strings.TrimSpace(raw)
	if tab := strings.IndexByte(p, '\t'); tab >= 0 {
		p = p[:tab]
	}
	p = strings.Trim(p, "\"")
	if p == devNull {
		return p
	}
	return strings.TrimPrefix(p, prefix)
}
