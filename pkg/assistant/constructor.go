// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package assistant

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	internal "github.com/petar-djukic/go-patcher/internal/assistant"
	gitpkg "github.com/petar-djukic/go-patcher/internal/git"
	"github.com/petar-djukic/go-patcher/internal/llm"
	"github.com/petar-djukic/go-patcher/internal/session"
)

const (
	defaultMaxRetries = 3
	defaultMaxTokens  = 4096
	defaultLLMTimeout = 5 * time.Minute
)

// New validates the config, initializes the LLM client, and returns a
// ready-to-use Assistant.
func New(cfg Config) (Assistant, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	applyDefaults(&cfg)

	client, err := llm.NewClient(context.Background(), llm.ClientConfig{
		ModelID:   cfg.Model,
		Region:    cfg.Region,
		Profile:   cfg.Profile,
		Timeout:   defaultLLMTimeout,
		MaxTokens: cfg.MaxTokens,
		Logger:    cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLLMFailure, err)
	}

	return newAdapter(cfg, client, session.NewStore(nil))
}

func newAdapter(cfg Config, prompter internal.Prompter, store *session.Store) (*adapter, error) {
	var repo *gitpkg.Repo
	if !cfg.NoGit {
		r, err := gitpkg.Open(gitpkg.Config{
			WorkDir:     cfg.WorkDir,
			AutoCommit:  cfg.AutoCommit,
			DirtyCommit: cfg.DirtyCommit,
		})
		if err != nil && !errors.Is(err, gitpkg.ErrNoGit) {
			return nil, err
		}
		repo = r
	}

	runner := internal.NewRunner(internal.Deps{
		Prompter:   prompter,
		Store:      store,
		WorkDir:    cfg.WorkDir,
		MaxRetries: cfg.MaxRetries,
		Logger:     cfg.Logger,
	})
	return &adapter{runner: runner, repo: repo}, nil
}

// adapter adapts internal/assistant.Runner to the public Assistant interface.
type adapter struct {
	runner *internal.Runner
	repo   *gitpkg.Repo // nil when git is disabled or absent
}

func (a *adapter) Suggest(ctx context.Context, path, instruction string) (*Result, error) {
	ir, err := a.runner.Suggest(ctx, path, instruction)
	if ir == nil {
		return &Result{}, err
	}

	res := &Result{
		Path:       ir.Path,
		Diff:       ir.Diff,
		Patched:    ir.Patched,
		Report:     ir.Report,
		Errors:     ir.Errors,
		TokensUsed: ir.TokensUsed,
		Retries:    ir.Retries,
		Success:    ir.Success,
	}
	if sess := ir.Session; sess != nil {
		res.accept = func(instruction string) error {
			return internal.Accept(sess, a.repo, instruction)
		}
		res.Reply = sess.DiffText()
		res.reject = func() error {
			if sess.Closed() {
				return nil
			}
			return sess.Reject()
		}
	}

	if err != nil {
		switch {
		case errors.Is(err, llm.ErrLLMFailure):
			err = fmt.Errorf("%w: %v", ErrLLMFailure, err)
		case ir.Session == nil && len(ir.Errors) > 0:
			err = fmt.Errorf("%w: %v", ErrParseFailure, err)
		}
	}
	return res, err
}

// validateConfig checks that required fields are present.
func validateConfig(cfg Config) error {
	if cfg.WorkDir == "" {
		return fmt.Errorf("WorkDir is required")
	}
	if info, err := os.Stat(cfg.WorkDir); err != nil || !info.IsDir() {
		return fmt.Errorf("WorkDir %q does not exist or is not a directory", cfg.WorkDir)
	}
	if cfg.Model == "" {
		return fmt.Errorf("Model is required")
	}
	if cfg.Region == "" {
		return fmt.Errorf("Region is required")
	}
	return nil
}

// applyDefaults fills in zero-value fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
}
