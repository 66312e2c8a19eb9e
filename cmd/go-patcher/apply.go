// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/petar-djukic/go-patcher/internal/diffparse"
	gitpkg "github.com/petar-djukic/go-patcher/internal/git"
	"github.com/petar-djukic/go-patcher/internal/render"
	"github.com/petar-djukic/go-patcher/internal/session"
	"github.com/petar-djukic/go-patcher/pkg/types"
)

// fileResult is the JSON form of one patched file.
type fileResult struct {
	Path    string            `json:"path"`
	Summary string            `json:"summary"`
	Report  types.PatchReport `json:"report"`
	Written bool              `json:"written"`
}

// newApplyCmd creates the "apply" command.
func newApplyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a unified diff",
		Long: "Apply locates each hunk of the diff by its context lines, shows the result as a diff, " +
			"and writes it with --write. A diff covering several files is split by its file headers.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runApply(cmd)
		},
	}

	cmd.Flags().String("diff", "", "Diff file to apply, \"-\" for stdin (required)")
	cmd.Flags().String("target", "", "File to patch (default: taken from the diff header)")
	cmd.Flags().Bool("write", false, "Write the patched files")
	cmd.Flags().Bool("commit", false, "Commit written files (implies --write)")
	cmd.Flags().StringP("message", "m", "", "Commit message subject")
	cmd.Flags().Bool("json", false, "Print the reports as JSON")
	_ = cmd.MarkFlagRequired("diff")

	return cmd
}

func (a *app) runApply(cmd *cobra.Command) error {
	diffPath, _ := cmd.Flags().GetString("diff")
	target, _ := cmd.Flags().GetString("target")
	write, _ := cmd.Flags().GetBool("write")
	commit, _ := cmd.Flags().GetBool("commit")
	message, _ := cmd.Flags().GetString("message")
	asJSON, _ := cmd.Flags().GetBool("json")
	write = write || commit

	diffText, err := readInput(cmd, diffPath)
	if err != nil {
		return err
	}

	sessions, err := a.openSessions(session.NewStore(nil), diffText, target)
	if err != nil {
		return err
	}

	results := make([]fileResult, 0, len(sessions))
	for _, sess := range sessions {
		report, err := sess.Report()
		if err != nil {
			return err
		}
		results = append(results, fileResult{Path: a.display(sess.Path()), Summary: render.Summary(report), Report: report})
	}

	if write {
		if err := a.write(sessions, results, commit, message); err != nil {
			return err
		}
	} else {
		for _, sess := range sessions {
			_ = sess.Reject()
		}
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for i, sess := range sessions {
		r := results[i]
		diff, err := render.UnifiedDiff(r.Path, sess.Original(), r.Report.Text())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), render.Colorize(diff))
		printSummary(cmd.ErrOrStderr(), r)
	}
	return nil
}

// openSessions opens one session per file the diff covers. An explicit
// target takes the whole diff.
func (a *app) openSessions(store *session.Store, diffText, target string) ([]*session.Session, error) {
	parts := []diffparse.FileDiff{{Body: diffText}}
	if target == "" {
		parts = diffparse.SplitFiles(diffText)
	}

	sessions := make([]*session.Session, 0, len(parts))
	for _, part := range parts {
		path, err := session.ResolveTarget(a.workDir(), part.Body, target)
		if err != nil {
			return nil, err
		}
		sess, err := session.Open(store, path, part.Body, session.WithLogger(a.log))
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

// write accepts every session that changed something, committing the
// files when asked. Sessions where no hunk applied are rejected.
func (a *app) write(sessions []*session.Session, results []fileResult, commit bool, message string) error {
	var repo *gitpkg.Repo
	if commit && !a.v.GetBool("no-git") {
		r, err := gitpkg.Open(gitpkg.Config{
			WorkDir:     a.workDir(),
			AutoCommit:  true,
			DirtyCommit: a.v.GetBool("dirty-commit"),
		})
		if err != nil {
			return fmt.Errorf("opening repository: %w", err)
		}
		repo = r
	}

	var paths []string
	for _, sess := range sessions {
		report, _ := sess.Report()
		if report.Applied > 0 {
			paths = append(paths, sess.Path())
		}
	}

	if repo != nil && len(paths) > 0 {
		if err := repo.HandleDirty(paths...); err != nil {
			return fmt.Errorf("handling dirty files: %w", err)
		}
	}

	var summaries []string
	for i, sess := range sessions {
		if results[i].Report.Applied == 0 {
			_ = sess.Reject()
			continue
		}
		if err := sess.Accept(); err != nil {
			return err
		}
		results[i].Written = true
		summaries = append(summaries, results[i].Path+": "+results[i].Summary)
		a.log.Info("patched", zap.String("path", sess.Path()), zap.String("summary", results[i].Summary))
	}

	if repo != nil && len(paths) > 0 {
		if err := repo.AutoCommit(paths, message, strings.Join(summaries, "\n")); err != nil {
			return fmt.Errorf("auto-commit failed: %w", err)
		}
	}
	return nil
}

// display shortens path relative to the work dir when it lies inside it.
func (a *app) display(path string) string {
	rel, err := filepath.Rel(a.workDir(), path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return filepath.ToSlash(rel)
}

func printSummary(w io.Writer, r fileResult) {
	if r.Report.Complete() {
		fmt.Fprintf(w, "%s: %s\n", r.Path, r.Summary)
		return
	}
	fmt.Fprintf(w, "warning: %s: %s\n", r.Path, r.Summary)
	fmt.Fprint(w, render.Details(r.Report))
}

// readInput reads a file, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("diff file %s not found", path)
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}
