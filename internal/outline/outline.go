// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package outline lists the top-level definitions in a source file using
// tree-sitter. The outline goes into the prompt next to the file so the
// model can orient itself in long files.
package outline

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"github.com/smacker/go-tree-sitter/yaml"
)

const maxSignatureLength = 100

// Symbol is one definition found in a file.
type Symbol struct {
	Name      string
	Line      int    // 1-based
	Signature string // Trimmed source line of the definition
}

// langSpec holds the tree-sitter language and definition query for a file type.
type langSpec struct {
	lang *sitter.Language
	defQ string // Captures @name
}

var yamlSpec = &langSpec{
	lang: yaml.GetLanguage(),
	defQ: `(block_mapping_pair key: (flow_node) @name)`,
}

var supportedLangs = map[string]*langSpec{
	".go": {
		lang: golang.GetLanguage(),
		defQ: `
			(function_declaration name: (identifier) @name)
			(method_declaration name: (field_identifier) @name)
			(type_declaration (type_spec name: (type_identifier) @name))
		`,
	},
	".py": {
		lang: python.GetLanguage(),
		defQ: `
			(function_definition name: (identifier) @name)
			(class_definition name: (identifier) @name)
		`,
	},
	".js": {
		lang: javascript.GetLanguage(),
		defQ: `
			(function_declaration name: (identifier) @name)
			(class_declaration name: (identifier) @name)
		`,
	},
	".ts": {
		lang: typescript.GetLanguage(),
		defQ: `
			(function_declaration name: (identifier) @name)
			(class_declaration name: (type_identifier) @name)
			(interface_declaration name: (type_identifier) @name)
		`,
	},
	".yaml": yamlSpec,
	".yml":  yamlSpec,
}

// Supported reports whether path has an outline grammar.
func Supported(path string) bool {
	_, ok := supportedLangs[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extract returns the definitions in content, ordered by line. Unsupported
// file types return nil without error.
func Extract(ctx context.Context, path string, content []byte) ([]Symbol, error) {
	spec, ok := supportedLangs[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, nil
	}

	root, err := sitter.ParseCtx(ctx, content, spec.lang)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if root == nil {
		return nil, nil
	}

	q, err := sitter.NewQuery([]byte(spec.defQ), spec.lang)
	if err != nil {
		return nil, fmt.Errorf("compiling query for %s: %w", path, err)
	}
	defer q.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, root)

	lines := strings.Split(string(content), "\n")
	seen := make(map[string]bool)
	var symbols []Symbol

	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			name := c.Node.Content(content)
			line := int(c.Node.StartPoint().Row) + 1
			key := fmt.Sprintf("%s:%d", name, line)
			if name == "" || seen[key] {
				continue
			}
			seen[key] = true
			symbols = append(symbols, Symbol{Name: name, Line: line, Signature: signature(lines, line)})
		}
	}

	sort.SliceStable(symbols, func(i, j int) bool { return symbols[i].Line < symbols[j].Line })
	return symbols, nil
}

// Render formats symbols as an indented listing under the file path,
// keeping at most limit entries (0 means no limit).
func Render(path string, symbols []Symbol, limit int) string {
	if len(symbols) == 0 {
		return ""
	}

	shown := symbols
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n", path)
	for _, s := range shown {
		fmt.Fprintf(&b, "  %4d │ %s\n", s.Line, s.Signature)
	}
	if n := len(symbols) - len(shown); n > 0 {
		fmt.Fprintf(&b, "  ... %d more\n", n)
	}
	return b.String()
}

func signature(lines []string, line int) string {
	if line < 1 || line > len(lines) {
		return ""
	}
	sig := strings.TrimSpace(lines[line-1])
	if len(sig) > maxSignatureLength {
		sig = sig[:maxSignatureLength-3] + "..."
	}
	return sig
}
