package files

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "taxwizz/internal/errors"
)

func TestBackupFilename(t *testing.T) {
	now := time.Date(2025, 4, 15, 10, 30, 45, 0, time.UTC)
	assert.Equal(t, "taxwizz_backup_alice_20250415_103045.zip", BackupFilename("alice", now))
}

func TestWriteBackup(t *testing.T) {
	m, paths := testManager(t)
	require.NoError(t, m.EnsureUserTree("alice"))

	wantFiles := map[string]string{
		"converted/out.json": `{"ok":true}`,
		"uploads/in.xlsx":    "workbook",
		"preferences.json":   `{"theme":"dark"}`,
	}
	for rel, content := range wantFiles {
		full := filepath.Join(paths.UserDir("alice"), filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}

	var buf bytes.Buffer
	count, err := m.WriteBackup(context.Background(), "alice", &buf)
	require.NoError(t, err)
	assert.Equal(t, len(wantFiles), count)

	reader, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, reader.File, len(wantFiles))

	for _, f := range reader.File {
		want, ok := wantFiles[f.Name]
		require.True(t, ok, "unexpected archive entry %s", f.Name)

		rc, err := f.Open()
		require.NoError(t, err)
		var content bytes.Buffer
		_, err = content.ReadFrom(rc)
		rc.Close()
		require.NoError(t, err)
		assert.Equal(t, want, content.String())
	}
}

func TestWriteBackup_NothingToBackup(t *testing.T) {
	m, _ := testManager(t)

	var buf bytes.Buffer
	_, err := m.WriteBackup(context.Background(), "nobody", &buf)
	assert.ErrorIs(t, err, apierrors.ErrNothingToBackup)

	// A user tree with only empty directories is also nothing to back up
	require.NoError(t, m.EnsureUserTree("bob"))
	_, err = m.WriteBackup(context.Background(), "bob", &buf)
	assert.ErrorIs(t, err, apierrors.ErrNothingToBackup)
}

func TestWriteBackup_CancelledContext(t *testing.T) {
	m, paths := testManager(t)
	require.NoError(t, m.EnsureUserTree("alice"))
	require.NoError(t, os.WriteFile(filepath.Join(paths.UserConvertedDir("alice"), "a.json"), []byte("{}"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	_, err := m.WriteBackup(ctx, "alice", &buf)
	assert.Error(t, err)
}
