// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package session holds a pending patch against one document until the
// user accepts or rejects it. Only one diff is active per Session; the
// original text is captured when the session opens and the file is not
// written until Accept.
package session

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/petar-djukic/go-patcher/internal/diffparse"
	"github.com/petar-djukic/go-patcher/internal/engine"
	"github.com/petar-djukic/go-patcher/pkg/types"
)

var (
	ErrSessionClosed   = errors.New("session is closed")
	ErrDocumentChanged = errors.New("document changed since the session opened")
	ErrNoTarget        = errors.New("no target file: pass one explicitly or include a file header in the diff")
)

// Session is an active diff against one document.
type Session struct {
	mu       sync.Mutex
	store    *Store
	log      *zap.Logger
	path     string
	original string
	diffText string
	report   types.PatchReport
	closed   bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// Open reads the document at path, parses diffText, and computes the
// patched result. Nothing is written.
func Open(store *Store, path, diffText string, opts ...Option) (*Session, error) {
	s := &Session{store: store, log: zap.NewNop(), path: path, diffText: diffText}
	for _, o := range opts {
		o(s)
	}

	original, err := store.Read(path)
	if err != nil {
		return nil, err
	}
	s.original = original

	hunks, err := diffparse.Parse(diffText)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.report = engine.Apply(strings.Split(original, "\n"), hunks)

	for _, o := range s.report.Hunks {
		s.log.Debug("hunk outcome",
			zap.String("path", path),
			zap.Int("hunk", o.Number),
			zap.String("status", string(o.Status)),
			zap.Int("start", o.Start))
	}
	if !s.report.Complete() {
		s.log.Warn("partial patch",
			zap.String("path", path),
			zap.Int("applied", s.report.Applied),
			zap.Int("total", s.report.Total))
	}

	return s, nil
}

// Path returns the document path.
func (s *Session) Path() string { return s.path }

// Original returns the document text as it was when the session opened.
func (s *Session) Original() string { return s.original }

// DiffText returns the diff the session was opened with.
func (s *Session) DiffText() string { return s.diffText }

// Report returns the pending patch report.
func (s *Session) Report() (types.PatchReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return types.PatchReport{}, ErrSessionClosed
	}
	return s.report, nil
}

// Patched returns the pending patched text.
func (s *Session) Patched() (string, error) {
	r, err := s.Report()
	if err != nil {
		return "", err
	}
	return r.Text(), nil
}

// Accept writes the patched text to the document and closes the session.
// It refuses if the file on disk no longer matches the captured original.
func (s *Session) Accept() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}

	current, err := s.store.Read(s.path)
	if err != nil {
		return err
	}
	if current != s.original {
		return fmt.Errorf("%w: %s", ErrDocumentChanged, s.path)
	}

	if err := s.store.WriteAtomic(s.path, []byte(s.report.Text())); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	s.closed = true
	s.log.Info("patch accepted", zap.String("path", s.path), zap.Int("applied", s.report.Applied))
	return nil
}

// Reject discards the pending patch and closes the session.
func (s *Session) Reject() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.closed = true
	s.log.Info("patch rejected", zap.String("path", s.path))
	return nil
}

// Closed reports whether Accept or Reject has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// ResolveTarget picks the file a diff applies to. An explicit override
// wins; otherwise the diff's "+++"/"---" header is used. Relative paths
// are joined to workDir.
func ResolveTarget(workDir, diffText, override string) (string, error) {
	target := override
	if target == "" {
		header, ok := diffparse.ParseFileHeader(diffText)
		if ok {
			target = header.Target()
		}
	}
	if target == "" {
		return "", ErrNoTarget
	}
	if !filepath.IsAbs(target) && workDir != "" {
		target = filepath.Join(workDir, target)
	}
	return filepath.Clean(target), nil
}
