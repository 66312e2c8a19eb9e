// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package render

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/go-patcher/internal/engine"
	"github.com/petar-djukic/go-patcher/pkg/types"
)

func TestUnifiedDiff(t *testing.T) {
	out, err := UnifiedDiff("notes.txt", "a\nb\nc\n", "a\nx\nb\nc\n")
	require.NoError(t, err)

	assert.Contains(t, out, "--- a/notes.txt\n")
	assert.Contains(t, out, "+++ b/notes.txt\n")
	assert.Contains(t, out, "@@ -1,3 +1,4 @@\n")
	assert.Contains(t, out, "+x\n")
	assert.Contains(t, out, " a\n")
	assert.True(t, strings.HasSuffix(out, " c\n"), "no phantom line after the final newline: %q", out)
}

func TestUnifiedDiff_LineCounts(t *testing.T) {
	tests := []struct {
		name     string
		original string
		patched  string
		want     string
	}{
		{
			name:     "trailing newline on both sides",
			original: "a\nb\nc\n",
			patched:  "a\nb\nz\n",
			want:     "--- a/f.txt\n+++ b/f.txt\n@@ -1,3 +1,3 @@\n a\n b\n-c\n+z\n",
		},
		{
			name:     "no trailing newline",
			original: "a\nb",
			patched:  "a\nb\nc",
			want: "--- a/f.txt\n+++ b/f.txt\n@@ -1,2 +1,3 @@\n a\n" +
				"-b\n\\ No newline at end of file\n+b\n+c\n\\ No newline at end of file\n",
		},
		{
			name:     "final newline added",
			original: "a",
			patched:  "a\n",
			want:     "--- a/f.txt\n+++ b/f.txt\n@@ -1 +1 @@\n-a\n\\ No newline at end of file\n+a\n",
		},
		{
			name:     "from empty file",
			original: "",
			patched:  "x\n",
			want:     "--- a/f.txt\n+++ b/f.txt\n@@ -0,0 +1 @@\n+x\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := UnifiedDiff("f.txt", tt.original, tt.patched)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestDiffLines(t *testing.T) {
	assert.Nil(t, diffLines(""))
	assert.Equal(t, []string{"a\n", "b\n"}, diffLines("a\nb\n"))
	assert.Equal(t, []string{"a\n", "b\n" + noNewlineMarker}, diffLines("a\nb"))
	assert.Equal(t, []string{"\n"}, diffLines("\n"))
}

func TestUnifiedDiff_Identical(t *testing.T) {
	out, err := UnifiedDiff("notes.txt", "same\n", "same\n")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestColorize(t *testing.T) {
	prev := color.NoColor
	t.Cleanup(func() { color.NoColor = prev })

	diff := "--- a/f\n+++ b/f\n@@ -1 +1 @@\n-old\n+new\n ctx\n"

	color.NoColor = true
	assert.Equal(t, diff, Colorize(diff))

	color.NoColor = false
	colored := Colorize(diff)
	assert.Contains(t, colored, "\x1b[32m+new\x1b[0m\n")
	assert.Contains(t, colored, "\x1b[31m-old\x1b[0m\n")
	assert.Contains(t, colored, " ctx\n")
	assert.Empty(t, Colorize(""))
}

func TestSummary(t *testing.T) {
	tests := []struct {
		applied, total int
		want           string
	}{
		{1, 1, "Applied 1 change"},
		{3, 3, "Applied 3 changes"},
		{0, 0, "Applied 0 changes"},
		{2, 3, "Could only apply 2 of 3 changes"},
		{0, 2, "Could not apply any of 2 changes"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Summary(types.PatchReport{Applied: tt.applied, Total: tt.total}))
	}
}

func TestDetails(t *testing.T) {
	hunk := func(kind types.LineKind, content string) types.Hunk {
		return types.Hunk{Lines: []types.HunkLine{{Kind: types.Context, Content: "a"}, {Kind: kind, Content: content}}}
	}
	report := engine.Apply([]string{"a", "b"}, []types.Hunk{
		hunk(types.Remove, "b"),
		hunk(types.Add, "z"),
		{Lines: []types.HunkLine{{Kind: types.Context, Content: "missing"}}},
	})

	out := Details(report)

	assert.Contains(t, out, "hunk 2: overlaps an earlier hunk at line 1, skipped\n")
	assert.Contains(t, out, "hunk 3: context not found")
	assert.NotContains(t, out, "hunk 1")
}
