// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package git

import (
	"fmt"
	"path"
	"strings"
	"unicode"
)

const maxSubjectLength = 72

// commitTypes maps instruction keywords to conventional commit types.
var commitTypes = []struct {
	keywords []string
	prefix   string
}{
	{[]string{"fix", "bug", "repair", "resolve", "correct"}, "fix"},
	{[]string{"refactor", "restructure", "reorganize", "clean up", "simplify", "rename"}, "refactor"},
	{[]string{"test", "coverage"}, "test"},
	{[]string{"doc", "docs", "comment", "readme", "documentation"}, "docs"},
	{[]string{"style", "format", "lint", "whitespace"}, "style"},
	{[]string{"perf", "performance", "optimize", "speed"}, "perf"},
	{[]string{"ci", "pipeline", "workflow", "github action"}, "ci"},
	{[]string{"build", "dependency", "deps", "module"}, "build"},
	{[]string{"chore", "cleanup", "maintain", "bump"}, "chore"},
	// "feat" is the default, so it comes last with broad keywords.
	{[]string{"add", "create", "implement", "new", "feature", "introduce"}, "feat"},
}

// GenerateMessage creates a conventional commit message for a patch.
// instruction is what the user asked for; when empty the subject names
// the patched files instead. summary, if set, opens the body.
func GenerateMessage(instruction string, files []string, summary string) string {
	var subject string
	if strings.TrimSpace(instruction) == "" {
		subject = buildSubject("chore", "apply patch to "+joinBase(files))
	} else {
		subject = buildSubject(inferCommitType(instruction), instruction)
	}

	var body []string
	if summary != "" {
		body = append(body, summary)
	}
	if b := buildBody(files); b != "" {
		body = append(body, b)
	}

	msg := subject
	if len(body) > 0 {
		msg += "\n\n" + strings.Join(body, "\n\n")
	}
	return msg + "\n\n" + coAuthorTrailer
}

// inferCommitType determines the conventional commit type from keywords.
func inferCommitType(instruction string) string {
	lower := strings.ToLower(instruction)
	for _, ct := range commitTypes {
		for _, kw := range ct.keywords {
			if containsWord(lower, kw) {
				return ct.prefix
			}
		}
	}
	return "feat"
}

// containsWord checks whether text contains keyword as a whole word
// (bounded by non-letter characters or string edges). For multi-word
// keywords like "clean up", it falls back to substring matching.
func containsWord(text, keyword string) bool {
	if strings.Contains(keyword, " ") {
		return strings.Contains(text, keyword)
	}
	idx := 0
	for {
		i := strings.Index(text[idx:], keyword)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(keyword)
		leftOK := start == 0 || !unicode.IsLetter(rune(text[start-1]))
		rightOK := end == len(text) || !unicode.IsLetter(rune(text[end]))
		if leftOK && rightOK {
			return true
		}
		idx = start + 1
	}
}

// buildSubject creates the first line: "type: summary", at most 72 chars.
// Only the first line of text is used.
func buildSubject(commitType, text string) string {
	summary := strings.TrimSpace(text)
	if i := strings.IndexByte(summary, '\n'); i >= 0 {
		summary = strings.TrimSpace(summary[:i])
	}
	if summary != "" {
		summary = strings.ToLower(summary[:1]) + summary[1:]
	}
	summary = strings.TrimRight(summary, ".")

	subject := fmt.Sprintf("%s: %s", commitType, summary)
	if len(subject) > maxSubjectLength {
		subject = subject[:maxSubjectLength-3] + "..."
	}
	return subject
}

// buildBody lists the patched files.
func buildBody(files []string) string {
	if len(files) == 0 {
		return ""
	}

	var buf strings.Builder
	buf.WriteString("Patched files:\n")
	for _, f := range files {
		fmt.Fprintf(&buf, "- %s\n", f)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func joinBase(files []string) string {
	if len(files) == 0 {
		return "working tree"
	}
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = path.Base(f)
	}
	return strings.Join(names, ", ")
}
