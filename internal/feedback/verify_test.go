// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package feedback

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify_Go(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantOK      bool
		needsFormat bool
	}{
		{
			name:   "valid formatted source",
			text:   "package main\n\nfunc main() {}\n",
			wantOK: true,
		},
		{
			name:        "valid but unformatted",
			text:        "package main\nfunc main(){\nreturn}\n",
			wantOK:      true,
			needsFormat: true,
		},
		{
			name:   "syntax error",
			text:   "package main\n\nfunc main() {\n\tx :=\n}\n",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Verify(context.Background(), "main.go", tt.text)

			assert.True(t, result.Checked)
			assert.Equal(t, tt.wantOK, result.Success(), "errors: %v", result.Errors)
			assert.Equal(t, tt.needsFormat, result.NeedsFormat)
			if !tt.wantOK {
				require.NotEmpty(t, result.Errors)
				assert.Greater(t, result.Errors[0].Line, 0)
				assert.NotEmpty(t, result.Errors[0].Message)
			}
		})
	}
}

func TestVerify_GoFormattedOutput(t *testing.T) {
	result := Verify(context.Background(), "main.go", "package main\nfunc main(){}\n")

	require.True(t, result.Success())
	assert.Equal(t, "package main\n\nfunc main() {}\n", result.Formatted)
}

func TestVerify_TreeSitter(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		text   string
		wantOK bool
	}{
		{"valid python", "app.py", "def f():\n    return 1\n", true},
		{"broken python", "app.py", "def f(:\n    return 1\n", false},
		{"valid javascript", "app.js", "function f(a) { return a + 1; }\n", true},
		{"broken javascript", "app.js", "const x = ;\n", false},
		{"valid typescript", "app.ts", "interface A { n: number }\nconst a: A = { n: 1 };\n", true},
		{"valid yaml", "ci.yaml", "name: build\nsteps:\n  - run: make\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Verify(context.Background(), tt.path, tt.text)

			assert.True(t, result.Checked)
			assert.Equal(t, tt.wantOK, result.Success(), "errors: %v", result.Errors)
			if !tt.wantOK {
				require.NotEmpty(t, result.Errors)
				assert.Equal(t, 1, result.Errors[0].Line)
			}
		})
	}
}

func TestVerify_UncheckedType(t *testing.T) {
	result := Verify(context.Background(), "README.txt", "anything {{{ goes")

	assert.False(t, result.Checked)
	assert.True(t, result.Success())
	assert.Empty(t, result.Errors)
}

func TestVerifyResult_NilIsSuccess(t *testing.T) {
	var r *VerifyResult
	assert.True(t, r.Success())
}

func TestGoErrors_NonScannerError(t *testing.T) {
	errs := goErrors(errors.New("plain failure"))
	require.Len(t, errs, 1)
	assert.Equal(t, "1: plain failure", errs[0].String())
}

func TestSyntaxError_String(t *testing.T) {
	assert.Equal(t, "4:7: expected operand", SyntaxError{Line: 4, Column: 7, Message: "expected operand"}.String())
	assert.Equal(t, "2: missing )", SyntaxError{Line: 2, Message: "missing )"}.String())
}

func TestSnippet(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "short text unchanged", in: "  x := )  ", want: "x := )"},
		{name: "first line only", in: "foo(\nbar", want: "foo("},
		{name: "ascii cut", in: strings.Repeat("a", 50), want: strings.Repeat("a", 37) + "..."},
		{name: "multibyte cut on rune boundary", in: strings.Repeat("é", 50), want: strings.Repeat("é", 37) + "..."},
		{name: "exactly forty runes", in: strings.Repeat("世", 40), want: strings.Repeat("世", 40)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := snippet(tt.in)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
