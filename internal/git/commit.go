// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	authorName  = "go-patcher"
	authorEmail = "noreply@go-patcher"
)

func signature() *object.Signature {
	return &object.Signature{Name: authorName, Email: authorEmail, When: time.Now()}
}

// HandleDirty makes sure files have no uncommitted changes before a patch
// lands on them. Pending changes are committed separately when
// Config.DirtyCommit is set; otherwise ErrDirtyWorkTree is returned.
func (r *Repo) HandleDirty(files ...string) error {
	dirty, err := r.IsDirty(files...)
	if err != nil {
		return err
	}
	if !dirty {
		return nil
	}
	if !r.cfg.DirtyCommit {
		return ErrDirtyWorkTree
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}

	if len(files) == 0 {
		if _, err := wt.Add("."); err != nil {
			return fmt.Errorf("staging dirty files: %w", err)
		}
	} else if err := r.stage(wt, files); err != nil {
		return err
	}

	if _, err := wt.Commit(dirtyCommitMsg, &gogit.CommitOptions{Author: signature()}); err != nil {
		return fmt.Errorf("committing dirty files: %w", err)
	}
	return nil
}

// AutoCommit stages files and commits them with a generated message and
// the Co-Authored-By trailer. summary, when set, goes in the body.
func (r *Repo) AutoCommit(files []string, instruction, summary string) error {
	if !r.cfg.AutoCommit {
		return nil
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}

	rels := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := r.Rel(f)
		if err != nil {
			return err
		}
		rels = append(rels, rel)
	}
	if err := r.stage(wt, rels); err != nil {
		return err
	}

	msg := GenerateMessage(instruction, rels, summary)
	if _, err := wt.Commit(msg, &gogit.CommitOptions{Author: signature()}); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

func (r *Repo) stage(wt *gogit.Worktree, files []string) error {
	for _, f := range files {
		rel, err := r.Rel(f)
		if err != nil {
			return err
		}
		if _, err := wt.Add(rel); err != nil {
			return fmt.Errorf("staging %s: %w", rel, err)
		}
	}
	return nil
}

// Undo removes the last commit if go-patcher made it. Without restore it
// is a soft reset: the patched content stays in the working tree, staged.
// With restore the files the commit touched are put back to their prior
// content as well. It returns those files, relative to the root.
func (r *Repo) Undo(restore bool) ([]string, error) {
	commit, err := r.headCommit()
	if err != nil {
		return nil, err
	}
	if !strings.Contains(commit.Message, coAuthorTrailer) {
		return nil, ErrNotPatcherCommit
	}
	if commit.NumParents() == 0 {
		return nil, fmt.Errorf("cannot undo: HEAD is the initial commit")
	}

	parent, err := commit.Parent(0)
	if err != nil {
		return nil, fmt.Errorf("getting parent commit: %w", err)
	}

	changed, err := changedFiles(parent, commit)
	if err != nil {
		return nil, err
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}

	mode := gogit.SoftReset
	if restore {
		mode = gogit.MixedReset
	}
	if err := wt.Reset(&gogit.ResetOptions{Commit: parent.Hash, Mode: mode}); err != nil {
		return nil, fmt.Errorf("resetting to parent: %w", err)
	}

	if restore {
		if err := r.restoreFrom(parent, changed); err != nil {
			return changed, err
		}
	}
	return changed, nil
}

// changedFiles lists every path that differs between two commits.
func changedFiles(from, to *object.Commit) ([]string, error) {
	fromTree, err := from.Tree()
	if err != nil {
		return nil, fmt.Errorf("reading tree: %w", err)
	}
	toTree, err := to.Tree()
	if err != nil {
		return nil, fmt.Errorf("reading tree: %w", err)
	}
	changes, err := object.DiffTree(fromTree, toTree)
	if err != nil {
		return nil, fmt.Errorf("diffing trees: %w", err)
	}

	files := make([]string, 0, len(changes))
	for _, c := range changes {
		name := c.To.Name
		if name == "" {
			name = c.From.Name
		}
		files = append(files, name)
	}
	return files, nil
}

// restoreFrom writes each file's content at commit c into the working
// tree, removing files c does not have.
func (r *Repo) restoreFrom(c *object.Commit, files []string) error {
	tree, err := c.Tree()
	if err != nil {
		return fmt.Errorf("reading tree: %w", err)
	}
	for _, name := range files {
		path := filepath.Join(r.root, filepath.FromSlash(name))

		f, err := tree.File(name)
		if errors.Is(err, object.ErrFileNotFound) {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("removing %s: %w", name, err)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}

		content, err := f.Contents()
		if err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}
		mode, err := f.Mode.ToOSFileMode()
		if err != nil {
			mode = 0o644
		}
		if err := os.WriteFile(path, []byte(content), mode.Perm()); err != nil {
			return fmt.Errorf("restoring %s: %w", name, err)
		}
	}
	return nil
}
