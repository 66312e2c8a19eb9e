// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package assistant runs the suggest lifecycle: prompt the model for a
// diff against one file, apply it in a session, verify the result, and
// retry with feedback until it applies cleanly or retries run out.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"github.com/petar-djukic/go-patcher/internal/diffparse"
	"github.com/petar-djukic/go-patcher/internal/engine"
	"github.com/petar-djukic/go-patcher/internal/feedback"
	gitpkg "github.com/petar-djukic/go-patcher/internal/git"
	"github.com/petar-djukic/go-patcher/internal/llm"
	"github.com/petar-djukic/go-patcher/internal/outline"
	"github.com/petar-djukic/go-patcher/internal/render"
	"github.com/petar-djukic/go-patcher/internal/session"
	"github.com/petar-djukic/go-patcher/pkg/types"

	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

const defaultOutlineLimit = 200

// Prompter abstracts LLM interactions so the runner is testable.
type Prompter interface {
	Generate(ctx context.Context, system []brtypes.SystemContentBlock, messages []brtypes.Message) (string, error)
	Usage() types.TokenUsage
}

// Deps holds injected dependencies for the runner.
type Deps struct {
	Prompter     Prompter
	Store        *session.Store // Defaults to the OS filesystem
	WorkDir      string         // Base for relative paths
	MaxRetries   int            // 0 uses the feedback default, negative disables
	OutlineLimit int            // Maximum outline entries (default 200)
	Format       feedback.FormatConfig
	Logger       *zap.Logger
}

// RunResult holds the outcome of a Runner.Suggest invocation.
type RunResult struct {
	Session    *session.Session // Open when a diff was produced; nil otherwise
	Path       string
	Patched    string
	Diff       string // Unified diff of original against patched
	Report     types.PatchReport
	Errors     []string // Remaining problems after all retries
	TokensUsed types.TokenUsage
	Retries    int
	Success    bool
}

// Runner orchestrates the suggest lifecycle.
type Runner struct {
	deps Deps
	log  *zap.Logger
}

// NewRunner creates a Runner with the given dependencies.
func NewRunner(deps Deps) *Runner {
	if deps.Store == nil {
		deps.Store = session.NewStore(nil)
	}
	if deps.OutlineLimit == 0 {
		deps.OutlineLimit = defaultOutlineLimit
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{deps: deps, log: log}
}

// Suggest asks the model to carry out instruction on the file at path and
// returns the pending result. The file is not written; accept or reject
// the returned session.
func (r *Runner) Suggest(ctx context.Context, path, instruction string) (*RunResult, error) {
	if r.deps.Prompter == nil {
		return nil, fmt.Errorf("no LLM client configured")
	}
	if !filepath.IsAbs(path) && r.deps.WorkDir != "" {
		path = filepath.Join(r.deps.WorkDir, path)
	}
	result := &RunResult{Path: path}

	original, err := r.deps.Store.Read(path)
	if err != nil {
		return result, err
	}

	systemPrompt, err := llm.RenderSystemPrompt(llm.TemplateData{
		Path:     filepath.Base(path),
		Language: llm.LanguageFor(path),
		OS:       runtime.GOOS,
	})
	if err != nil {
		return result, fmt.Errorf("rendering system prompt: %w", err)
	}

	file := types.FileContent{Path: filepath.Base(path), Content: original}
	system, messages := llm.ConstructMessages(systemPrompt, r.outline(ctx, path, original), file, instruction)

	responseText, err := r.deps.Prompter.Generate(ctx, system, messages)
	if err != nil {
		result.TokensUsed = r.deps.Prompter.Usage()
		return result, fmt.Errorf("LLM call failed: %w", err)
	}

	initial := r.evaluate(ctx, path, original, responseText)
	prevMessages := messages
	prevResponse := responseText

	loopResult, loopErr := feedback.Run(ctx, feedback.LoopConfig{
		FormatConfig: r.deps.Format,
		MaxRetries:   r.deps.MaxRetries,
	}, initial, func(ctx context.Context, prompt string) (*feedback.Attempt, error) {
		r.log.Info("retrying with feedback", zap.String("path", path))
		retryMessages := llm.ConstructRetryMessages(prevMessages, prevResponse, prompt)

		retryText, err := r.deps.Prompter.Generate(ctx, system, retryMessages)
		if err != nil {
			return nil, fmt.Errorf("retry LLM call: %w", err)
		}

		prevMessages = retryMessages
		prevResponse = retryText
		return r.evaluate(ctx, path, original, retryText), nil
	})

	result.TokensUsed = r.deps.Prompter.Usage()
	final := initial
	if loopResult != nil {
		result.Retries = loopResult.Retries
		result.Success = loopResult.Success
		final = loopResult.Final
	}

	result.Errors = problems(final)
	if final.ParseErr != nil {
		return result, fmt.Errorf("parsing model response: %w", final.ParseErr)
	}

	sess, err := session.Open(r.deps.Store, path, final.DiffText, session.WithLogger(r.log))
	if err != nil {
		return result, err
	}
	result.Session = sess
	result.Report, _ = sess.Report()
	result.Patched = result.Report.Text()
	result.Diff, err = render.UnifiedDiff(filepath.Base(path), original, result.Patched)
	if err != nil {
		return result, err
	}

	if loopErr != nil && !errors.Is(loopErr, feedback.ErrRetriesExhausted) {
		return result, loopErr
	}
	return result, nil
}

// evaluate parses a model reply and applies it to the original text
// without touching the file.
func (r *Runner) evaluate(ctx context.Context, path, original, reply string) *feedback.Attempt {
	a := &feedback.Attempt{DiffText: reply}

	hunks, err := diffparse.Parse(reply)
	if err != nil {
		a.ParseErr = err
		r.log.Warn("model reply has no hunks", zap.String("path", path))
		return a
	}
	a.Hunks = hunks
	a.Report = engine.Apply(strings.Split(original, "\n"), hunks)
	a.Verify = feedback.Verify(ctx, path, a.Report.Text())

	r.log.Debug("attempt evaluated",
		zap.String("path", path),
		zap.Int("applied", a.Report.Applied),
		zap.Int("total", a.Report.Total),
		zap.Int("syntax_errors", len(a.Verify.Errors)))
	return a
}

// outline renders the file's definitions, or "" when there are none.
func (r *Runner) outline(ctx context.Context, path, content string) string {
	symbols, err := outline.Extract(ctx, path, []byte(content))
	if err != nil {
		r.log.Debug("outline skipped", zap.String("path", path), zap.Error(err))
		return ""
	}
	return outline.Render(filepath.Base(path), symbols, r.deps.OutlineLimit)
}

// problems lists what is still wrong with an attempt.
func problems(a *feedback.Attempt) []string {
	if a == nil {
		return nil
	}
	if a.ParseErr != nil {
		return []string{a.ParseErr.Error()}
	}
	var out []string
	if msg := types.PartialMessage(a.Report.Applied, a.Report.Total); msg != "" {
		out = append(out, msg)
	}
	for _, o := range a.Report.Failed() {
		if o.Diagnostic != nil {
			out = append(out, o.Diagnostic.Error())
		}
	}
	if a.Verify != nil {
		for _, e := range a.Verify.Errors {
			out = append(out, "syntax error: "+e.String())
		}
	}
	return out
}

// Accept writes a session's patched text and, when repo is set, records it
// as a commit. Pending changes to the file are committed first so Undo
// only rolls back the patch.
func Accept(sess *session.Session, repo *gitpkg.Repo, instruction string) error {
	if repo != nil {
		if err := repo.HandleDirty(sess.Path()); err != nil {
			return fmt.Errorf("handling dirty file: %w", err)
		}
	}

	report, err := sess.Report()
	if err != nil {
		return err
	}
	if err := sess.Accept(); err != nil {
		return err
	}

	if repo != nil {
		if err := repo.AutoCommit([]string{sess.Path()}, instruction, render.Summary(report)); err != nil {
			return fmt.Errorf("auto-commit failed: %w", err)
		}
	}
	return nil
}
