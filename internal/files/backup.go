package files

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	apierrors "taxwizz/internal/errors"
)

// backupReaders caps concurrent file reads while staging an archive.
const backupReaders = 4

// BackupFilename names a backup archive for the user
func BackupFilename(username string, now time.Time) string {
	return fmt.Sprintf("taxwizz_backup_%s_%s.zip", username, now.Format("20060102_150405"))
}

// backupEntry is one file staged for the archive.
type backupEntry struct {
	relPath string
	modTime time.Time
	data    []byte
}

// WriteBackup zips the user's entire data tree into w. File contents are
// read concurrently, then written in walk order so archives are
// reproducible. Returns the number of files archived.
func (m *Manager) WriteBackup(ctx context.Context, username string, w io.Writer) (int, error) {
	root := m.paths.UserDir(username)
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return 0, apierrors.ErrNothingToBackup
	}

	var relPaths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPaths = append(relPaths, rel)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to walk user directory %s: %w", root, err)
	}
	if len(relPaths) == 0 {
		return 0, apierrors.ErrNothingToBackup
	}

	entries := make([]backupEntry, len(relPaths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(backupReaders)
	for i, rel := range relPaths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			full := filepath.Join(root, rel)
			info, err := os.Stat(full)
			if err != nil {
				return fmt.Errorf("failed to stat %s: %w", rel, err)
			}
			data, err := os.ReadFile(full)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", rel, err)
			}
			entries[i] = backupEntry{relPath: rel, modTime: info.ModTime(), data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	zw := zip.NewWriter(w)
	for _, entry := range entries {
		header := &zip.FileHeader{
			Name:     filepath.ToSlash(entry.relPath),
			Method:   zip.Deflate,
			Modified: entry.modTime,
		}
		fw, err := zw.CreateHeader(header)
		if err != nil {
			return 0, fmt.Errorf("failed to add %s to archive: %w", entry.relPath, err)
		}
		if _, err := fw.Write(entry.data); err != nil {
			return 0, fmt.Errorf("failed to write %s to archive: %w", entry.relPath, err)
		}
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("failed to finalize archive: %w", err)
	}

	m.logger.Info("backup archive written",
		slog.String("username", username),
		slog.Int("files", len(entries)))

	return len(entries), nil
}
