// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package git records accepted patches as commits and undoes them.
// Commits made here carry a Co-Authored-By trailer, which is how Undo
// recognizes its own work.
package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	coAuthorTrailer = "Co-Authored-By: go-patcher <noreply@go-patcher>"
	dirtyCommitMsg  = "go-patcher: save uncommitted changes before patch"
)

var (
	// ErrNotPatcherCommit is returned when undo targets a commit not made by go-patcher.
	ErrNotPatcherCommit = errors.New("not a go-patcher commit")
	// ErrDirtyWorkTree is returned when uncommitted changes exist and DirtyCommit is false.
	ErrDirtyWorkTree = errors.New("uncommitted changes exist")
	// ErrNoGit is returned when the working directory is not inside a git repository.
	ErrNoGit = errors.New("not a git repository")
	// ErrOutsideRepo is returned for paths that are not under the repository root.
	ErrOutsideRepo = errors.New("path is outside the repository")
)

// Config configures git integration behavior.
type Config struct {
	WorkDir     string // Any directory inside the repository
	AutoCommit  bool   // Create a commit when a patch is accepted
	DirtyCommit bool   // Commit pending changes to patched files first
}

// Repo wraps a go-git repository for the operations we need.
type Repo struct {
	repo *gogit.Repository
	root string
	cfg  Config
}

// Open finds the repository containing cfg.WorkDir.
// Returns ErrNoGit if there is none.
func Open(cfg Config) (*Repo, error) {
	r, err := gogit.PlainOpenWithOptions(cfg.WorkDir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoGit, err)
	}
	wt, err := r.Worktree()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoGit, err)
	}
	return &Repo{repo: r, root: wt.Filesystem.Root(), cfg: cfg}, nil
}

// Root returns the repository's working tree root.
func (r *Repo) Root() string {
	return r.root
}

// Rel converts path to a slash-separated path relative to the repository
// root. Relative inputs are taken as relative to the root already.
func (r *Repo) Rel(path string) (string, error) {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(filepath.Clean(path)), nil
	}
	rel, err := filepath.Rel(r.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRepo, path)
	}
	return filepath.ToSlash(rel), nil
}

// IsDirty reports whether any of files has uncommitted changes. With no
// files it checks the whole working tree.
func (r *Repo) IsDirty(files ...string) (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("getting worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("getting status: %w", err)
	}

	if len(files) == 0 {
		return !status.IsClean(), nil
	}
	for _, f := range files {
		rel, err := r.Rel(f)
		if err != nil {
			return false, err
		}
		if s, ok := status[rel]; ok && (s.Staging != gogit.Unmodified || s.Worktree != gogit.Unmodified) {
			return true, nil
		}
	}
	return false, nil
}

// IsPatcherCommit checks whether the HEAD commit was made by go-patcher
// by looking for the Co-Authored-By trailer.
func (r *Repo) IsPatcherCommit() (bool, error) {
	commit, err := r.headCommit()
	if err != nil {
		return false, err
	}
	return strings.Contains(commit.Message, coAuthorTrailer), nil
}

func (r *Repo) headCommit() (*object.Commit, error) {
	head, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("getting HEAD: %w", err)
	}
	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("getting commit: %w", err)
	}
	return commit, nil
}

// lastCommitMessage returns the message of the HEAD commit.
func (r *Repo) lastCommitMessage() (string, error) {
	commit, err := r.headCommit()
	if err != nil {
		return "", err
	}
	return commit.Message, nil
}

// commitCount returns the total number of commits reachable from HEAD.
func (r *Repo) commitCount() (int, error) {
	iter, err := r.repo.Log(&gogit.LogOptions{})
	if err != nil {
		return 0, err
	}
	count := 0
	err = iter.ForEach(func(c *object.Commit) error {
		count++
		return nil
	})
	return count, err
}
