// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package assistant

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/petar-djukic/go-patcher/internal/session"
	"github.com/petar-djukic/go-patcher/pkg/types"
)

type scriptedPrompter struct {
	replies []string
	calls   int
}

func (p *scriptedPrompter) Generate(_ context.Context, _ []brtypes.SystemContentBlock, _ []brtypes.Message) (string, error) {
	if p.calls >= len(p.replies) {
		return "", fmt.Errorf("no more replies")
	}
	r := p.replies[p.calls]
	p.calls++
	return r, nil
}

func (p *scriptedPrompter) Usage() types.TokenUsage {
	return types.TokenUsage{InputTokens: 100 * p.calls, OutputTokens: 10 * p.calls}
}

const (
	original = "def greet():\n    print('hi')\n"
	reply    = "@@ -1,2 +1,2 @@\n def greet():\n-    print('hi')\n+    print('hello')\n"
)

func TestValidateConfig(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"valid", Config{WorkDir: dir, Model: "m", Region: "r"}, ""},
		{"missing workdir", Config{Model: "m", Region: "r"}, "WorkDir is required"},
		{"workdir not a directory", Config{WorkDir: file, Model: "m", Region: "r"}, "not a directory"},
		{"missing model", Config{WorkDir: dir, Region: "r"}, "Model is required"},
		{"missing region", Config{WorkDir: dir, Model: "m"}, "Region is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfig(tt.cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	applyDefaults(&cfg)
	assert.Equal(t, defaultMaxRetries, cfg.MaxRetries)
	assert.Equal(t, defaultMaxTokens, cfg.MaxTokens)
	assert.NotNil(t, cfg.Logger)

	cfg = Config{MaxRetries: -1, MaxTokens: 10}
	applyDefaults(&cfg)
	assert.Equal(t, -1, cfg.MaxRetries)
	assert.Equal(t, 10, cfg.MaxTokens)
}

func memStore(t *testing.T, files map[string]string) *session.Store {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	return session.NewStore(fs)
}

func TestSuggest_AcceptWritesFile(t *testing.T) {
	store := memStore(t, map[string]string{"/w/greet.py": original})
	cfg := Config{WorkDir: "/w", NoGit: true}
	applyDefaults(&cfg)

	a, err := newAdapter(cfg, &scriptedPrompter{replies: []string{reply}}, store)
	require.NoError(t, err)

	res, err := a.Suggest(context.Background(), "greet.py", "say hello")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Contains(t, res.Diff, "+    print('hello')")
	assert.Equal(t, 110, res.TokensUsed.Total())

	require.NoError(t, res.Accept("say hello"))
	got, err := store.Read("/w/greet.py")
	require.NoError(t, err)
	assert.Equal(t, "def greet():\n    print('hello')\n", got)

	assert.Equal(t, reply, res.Reply)
	assert.ErrorIs(t, res.Accept("again"), session.ErrSessionClosed)
	assert.NoError(t, res.Reject(), "rejecting an accepted proposal does nothing")
}

func TestSuggest_RejectLeavesFile(t *testing.T) {
	store := memStore(t, map[string]string{"/w/greet.py": original})
	cfg := Config{WorkDir: "/w", NoGit: true}
	applyDefaults(&cfg)

	a, err := newAdapter(cfg, &scriptedPrompter{replies: []string{reply}}, store)
	require.NoError(t, err)

	res, err := a.Suggest(context.Background(), "greet.py", "say hello")
	require.NoError(t, err)
	require.NoError(t, res.Reject())
	require.NoError(t, res.Reject())
	assert.ErrorIs(t, res.Accept("say hello"), session.ErrSessionClosed)

	got, err := store.Read("/w/greet.py")
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestSuggest_ParseFailure(t *testing.T) {
	store := memStore(t, map[string]string{"/w/greet.py": original})
	cfg := Config{WorkDir: "/w", NoGit: true, MaxRetries: -1}

	a, err := newAdapter(cfg, &scriptedPrompter{replies: []string{"no diff here"}}, store)
	require.NoError(t, err)

	res, err := a.Suggest(context.Background(), "greet.py", "say hello")
	assert.ErrorIs(t, err, ErrParseFailure)
	assert.ErrorIs(t, res.Accept("x"), ErrParseFailure)
	assert.NoError(t, res.Reject())
}

func TestSuggest_AcceptCommits(t *testing.T) {
	dir := t.TempDir()
	r, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	path := filepath.Join(dir, "greet.py")
	require.NoError(t, os.WriteFile(path, []byte(original), 0o644))
	wt, err := r.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("greet.py")
	require.NoError(t, err)
	_, err = wt.Commit("initial", &gogit.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com"},
	})
	require.NoError(t, err)

	cfg := Config{WorkDir: dir, AutoCommit: true}
	applyDefaults(&cfg)
	a, err := newAdapter(cfg, &scriptedPrompter{replies: []string{reply}}, session.NewStore(nil))
	require.NoError(t, err)
	require.NotNil(t, a.repo)

	res, err := a.Suggest(context.Background(), "greet.py", "fix greeting")
	require.NoError(t, err)
	require.NoError(t, res.Accept("fix greeting"))

	head, err := r.Head()
	require.NoError(t, err)
	commit, err := r.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.Contains(t, commit.Message, "fix: fix greeting")
	assert.Contains(t, commit.Message, "Co-Authored-By: go-patcher")
}

func TestNewAdapter_NoRepository(t *testing.T) {
	cfg := Config{WorkDir: t.TempDir()}
	a, err := newAdapter(cfg, &scriptedPrompter{}, memStore(t, nil))
	require.NoError(t, err)
	assert.Nil(t, a.repo)
}
