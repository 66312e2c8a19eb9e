// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDiff = "--- a/docs/notes.txt\n+++ b/docs/notes.txt\n@@ -1,2 +1,3 @@\n alpha\n+inserted\n beta\n"

func newMemStore(t *testing.T, files map[string]string) *Store {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return NewStore(fs)
}

func TestOpen_ComputesPendingPatch(t *testing.T) {
	store := newMemStore(t, map[string]string{"/docs/notes.txt": "alpha\nbeta\ngamma\n"})

	s, err := Open(store, "/docs/notes.txt", sampleDiff)
	require.NoError(t, err)

	patched, err := s.Patched()
	require.NoError(t, err)
	assert.Equal(t, "alpha\ninserted\nbeta\ngamma\n", patched)

	report, err := s.Report()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Applied)
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, sampleDiff, s.DiffText())

	// Nothing is written before Accept.
	onDisk, err := store.Read("/docs/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "alpha\nbeta\ngamma\n", onDisk)
}

func TestOpen_Errors(t *testing.T) {
	store := newMemStore(t, map[string]string{"/a.txt": "x\n"})

	_, err := Open(store, "/missing.txt", sampleDiff)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	_, err = Open(store, "/a.txt", "no diff here")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "diff contains no valid hunks")
}

func TestAccept_WritesAndCloses(t *testing.T) {
	store := newMemStore(t, map[string]string{"/docs/notes.txt": "alpha\nbeta\n"})

	s, err := Open(store, "/docs/notes.txt", sampleDiff)
	require.NoError(t, err)
	require.NoError(t, s.Accept())

	got, err := store.Read("/docs/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "alpha\ninserted\nbeta\n", got)
	assert.True(t, s.Closed())

	assert.ErrorIs(t, s.Accept(), ErrSessionClosed)
	assert.ErrorIs(t, s.Reject(), ErrSessionClosed)
	_, err = s.Report()
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, err = s.Patched()
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestAccept_RefusesChangedDocument(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/docs/notes.txt", []byte("alpha\nbeta\n"), 0o644))
	store := NewStore(fs)

	s, err := Open(store, "/docs/notes.txt", sampleDiff)
	require.NoError(t, err)

	require.NoError(t, afero.WriteFile(fs, "/docs/notes.txt", []byte("edited elsewhere\n"), 0o644))

	err = s.Accept()
	assert.ErrorIs(t, err, ErrDocumentChanged)
	assert.False(t, s.Closed())

	got, err := store.Read("/docs/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "edited elsewhere\n", got)
}

func TestReject_LeavesDocument(t *testing.T) {
	store := newMemStore(t, map[string]string{"/docs/notes.txt": "alpha\nbeta\n"})

	s, err := Open(store, "/docs/notes.txt", sampleDiff)
	require.NoError(t, err)
	require.NoError(t, s.Reject())

	got, err := store.Read("/docs/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "alpha\nbeta\n", got)
	assert.True(t, s.Closed())
}

func TestWriteAtomic_PreservesPermissions(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/bin/run.sh", []byte("echo hi\n"), 0o755))
	store := NewStore(fs)

	require.NoError(t, store.WriteAtomic("/bin/run.sh", []byte("echo bye\n")))

	info, err := fs.Stat("/bin/run.sh")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	got, err := store.Read("/bin/run.sh")
	require.NoError(t, err)
	assert.Equal(t, "echo bye\n", got)
}

func TestWriteAtomic_OnDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	store := NewStore(nil)

	require.NoError(t, store.WriteAtomic(path, []byte("content")))
	assert.True(t, store.Exists(path))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be renamed away")
}

func TestResolveTarget(t *testing.T) {
	tests := []struct {
		name     string
		workDir  string
		diff     string
		override string
		want     string
		wantErr  error
	}{
		{
			name:    "from git header",
			workDir: "/repo",
			diff:    sampleDiff,
			want:    "/repo/docs/notes.txt",
		},
		{
			name:     "override wins",
			workDir:  "/repo",
			diff:     sampleDiff,
			override: "other.txt",
			want:     "/repo/other.txt",
		},
		{
			name:     "absolute override kept",
			workDir:  "/repo",
			diff:     sampleDiff,
			override: "/abs/file.txt",
			want:     "/abs/file.txt",
		},
		{
			name:    "no header and no override",
			workDir: "/repo",
			diff:    "@@\n a\n",
			wantErr: ErrNoTarget,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveTarget(tt.workDir, tt.diff, tt.override)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
