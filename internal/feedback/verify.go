// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package feedback checks patched text for syntax errors, formats failed
// hunks and errors into a follow-up prompt, and drives the retry loop.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"go/parser"
	"go/scanner"
	"go/token"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"github.com/smacker/go-tree-sitter/yaml"
	"golang.org/x/tools/imports"
)

// maxReportedErrors caps how many syntax errors one check returns.
const maxReportedErrors = 10

// SyntaxError is a single problem found in patched text.
type SyntaxError struct {
	Line    int    // 1-based
	Column  int    // 1-based, 0 if not available
	Message string
}

func (e SyntaxError) String() string {
	if e.Column > 0 {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.Line, e.Message)
}

// VerifyResult holds the outcome of checking one patched document.
type VerifyResult struct {
	Path        string
	Checked     bool          // False when no checker exists for the file type
	Errors      []SyntaxError // Empty on success
	NeedsFormat bool          // Go only: goimports would change the text
	Formatted   string        // Go only: goimports output when parsing succeeded
}

// Success returns true when no syntax errors were found. Unchecked file
// types always succeed.
func (r *VerifyResult) Success() bool {
	return r == nil || len(r.Errors) == 0
}

// treeSitterLangs maps file extensions to the grammars used for checking.
var treeSitterLangs = map[string]*sitter.Language{
	".py":   python.GetLanguage(),
	".js":   javascript.GetLanguage(),
	".mjs":  javascript.GetLanguage(),
	".cjs":  javascript.GetLanguage(),
	".ts":   typescript.GetLanguage(),
	".yaml": yaml.GetLanguage(),
	".yml":  yaml.GetLanguage(),
}

// Verify checks text as the contents of path. Go files are parsed with
// go/parser and run through goimports; Python, JavaScript, TypeScript and
// YAML are parsed with tree-sitter. Other types are not checked.
func Verify(ctx context.Context, path, text string) *VerifyResult {
	result := &VerifyResult{Path: path}
	ext := strings.ToLower(filepath.Ext(path))

	if ext == ".go" {
		result.Checked = true
		verifyGo(result, path, text)
		return result
	}

	lang, ok := treeSitterLangs[ext]
	if !ok {
		return result
	}
	result.Checked = true

	root, err := sitter.ParseCtx(ctx, []byte(text), lang)
	if err != nil {
		result.Errors = append(result.Errors, SyntaxError{Line: 1, Message: fmt.Sprintf("parse failed: %v", err)})
		return result
	}
	if root != nil && root.HasError() {
		result.Errors = collectTreeErrors(root, []byte(text), nil)
		if len(result.Errors) == 0 {
			result.Errors = []SyntaxError{{Line: 1, Message: "syntax error"}}
		}
	}
	return result
}

func verifyGo(result *VerifyResult, path, text string) {
	fset := token.NewFileSet()
	if _, err := parser.ParseFile(fset, path, text, parser.AllErrors); err != nil {
		result.Errors = goErrors(err)
		return
	}

	out, err := imports.Process(path, []byte(text), nil)
	if err != nil {
		result.Errors = goErrors(err)
		return
	}
	result.Formatted = string(out)
	result.NeedsFormat = result.Formatted != text
}

// goErrors converts a go/parser error into SyntaxErrors.
func goErrors(err error) []SyntaxError {
	var list scanner.ErrorList
	if !errors.As(err, &list) {
		return []SyntaxError{{Line: 1, Message: err.Error()}}
	}

	var out []SyntaxError
	for _, e := range list {
		if len(out) == maxReportedErrors {
			break
		}
		out = append(out, SyntaxError{Line: e.Pos.Line, Column: e.Pos.Column, Message: e.Msg})
	}
	return out
}

// collectTreeErrors walks the subtrees that contain errors and records
// every ERROR or MISSING node.
func collectTreeErrors(n *sitter.Node, content []byte, out []SyntaxError) []SyntaxError {
	if n == nil || len(out) >= maxReportedErrors {
		return out
	}

	switch {
	case n.IsMissing():
		out = append(out, SyntaxError{
			Line:    int(n.StartPoint().Row) + 1,
			Column:  int(n.StartPoint().Column) + 1,
			Message: fmt.Sprintf("missing %s", n.Type()),
		})
		return out
	case n.Type() == "ERROR":
		out = append(out, SyntaxError{
			Line:    int(n.StartPoint().Row) + 1,
			Column:  int(n.StartPoint().Column) + 1,
			Message: fmt.Sprintf("syntax error near %q", snippet(n.Content(content))),
		})
		return out
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child != nil && (child.HasError() || child.IsMissing()) {
			out = collectTreeErrors(child, content, out)
		}
	}
	return out
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if r := []rune(s); len(r) > 40 {
		s = string(r[:37]) + "..."
	}
	return s
}
