// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package outline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(symbols []Symbol) []string {
	out := make([]string, len(symbols))
	for i, s := range symbols {
		out[i] = s.Name
	}
	return out
}

func TestExtract_Go(t *testing.T) {
	src := `package store

type Cache struct{}

func New() *Cache { return &Cache{} }

func (c *Cache) Get(key string) string { return "" }
`
	symbols, err := Extract(context.Background(), "store.go", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, []string{"Cache", "New", "Get"}, names(symbols))
	assert.Equal(t, 3, symbols[0].Line)
	assert.Equal(t, "func New() *Cache { return &Cache{} }", symbols[1].Signature)
}

func TestExtract_Python(t *testing.T) {
	src := "class Shape:\n    def area(self):\n        return 0\n\ndef helper():\n    pass\n"

	symbols, err := Extract(context.Background(), "shapes.py", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, []string{"Shape", "area", "helper"}, names(symbols))
	assert.Equal(t, []int{1, 2, 5}, []int{symbols[0].Line, symbols[1].Line, symbols[2].Line})
}

func TestExtract_Unsupported(t *testing.T) {
	symbols, err := Extract(context.Background(), "notes.txt", []byte("hello"))
	require.NoError(t, err)
	assert.Nil(t, symbols)
	assert.False(t, Supported("notes.txt"))
	assert.True(t, Supported("x.YAML"))
}

func TestRender(t *testing.T) {
	symbols := []Symbol{
		{Name: "A", Line: 3, Signature: "type A struct{}"},
		{Name: "B", Line: 10, Signature: "func B()"},
		{Name: "C", Line: 20, Signature: "func C()"},
	}

	assert.Equal(t, "x.go:\n     3 │ type A struct{}\n    10 │ func B()\n  ... 1 more\n", Render("x.go", symbols, 2))
	assert.NotContains(t, Render("x.go", symbols, 0), "more")
	assert.Empty(t, Render("x.go", nil, 0))
}

func TestSignature_Truncates(t *testing.T) {
	long := make([]byte, 150)
	for i := range long {
		long[i] = 'x'
	}
	sig := signature([]string{string(long)}, 1)
	assert.Len(t, sig, maxSignatureLength)
	assert.Empty(t, signature([]string{"a"}, 5))
}
