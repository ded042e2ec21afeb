package files

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"taxwizz/internal/config"
	apierrors "taxwizz/internal/errors"
)

// RecentFile describes one entry in a user's converted directory.
type RecentFile struct {
	Filename string    `json:"filename"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
	Type     string    `json:"type"`
}

// Manager provides file operations scoped to per-user directories
type Manager struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(paths *config.Paths, logger *slog.Logger) *Manager {
	return &Manager{
		paths:  paths,
		logger: logger.With(slog.String("component", "files")),
	}
}

// EnsureUserTree creates the user's uploads and converted directories
func (m *Manager) EnsureUserTree(username string) error {
	for _, dir := range []string{m.paths.UserUploadsDir(username), m.paths.UserConvertedDir(username)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create user directory %s: %w", dir, err)
		}
	}
	return nil
}

// OutputFilename derives the on-disk name of a converted document from
// the uploaded statement's name: {username}_{basename}_{timestamp}.json.
func OutputFilename(username, original string, now time.Time) string {
	base := filepath.Base(original)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s_%s_%s.json", username, name, now.Format("20060102_150405"))
}

// SaveDocument writes a converted document into the user's converted
// directory as indented JSON. HTML escaping is disabled so keys like
// "Realized P&L" stay literal in the output file.
func (m *Manager) SaveDocument(username, filename string, doc any) (string, int64, error) {
	if err := m.EnsureUserTree(username); err != nil {
		return "", 0, err
	}

	path := filepath.Join(m.paths.UserConvertedDir(username), filepath.Base(filename))
	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create document %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return "", 0, fmt.Errorf("failed to encode document %s: %w", path, err)
	}

	if err := f.Sync(); err != nil {
		return "", 0, fmt.Errorf("failed to sync document %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		return "", 0, err
	}

	m.logger.Info("document saved",
		slog.String("username", username),
		slog.String("filename", filepath.Base(path)),
		slog.Int64("size_bytes", info.Size()))

	return path, info.Size(), nil
}

// SaveUpload archives an uploaded statement into the user's uploads
// directory under its sanitized base name.
func (m *Manager) SaveUpload(username, filename string, data []byte) (string, error) {
	if err := m.EnsureUserTree(username); err != nil {
		return "", err
	}

	path := filepath.Join(m.paths.UserUploadsDir(username), filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save upload %s: %w", path, err)
	}

	m.logger.Info("upload archived",
		slog.String("username", username),
		slog.String("filename", filepath.Base(path)),
		slog.Int("size_bytes", len(data)))

	return path, nil
}

// ListRecent returns up to limit JSON documents from the user's converted
// directory, newest first.
func (m *Manager) ListRecent(username string, limit int) ([]RecentFile, error) {
	dir := m.paths.UserConvertedDir(username)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []RecentFile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read converted directory %s: %w", dir, err)
	}

	files := make([]RecentFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, RecentFile{
			Filename: entry.Name(),
			Size:     info.Size(),
			Modified: info.ModTime(),
			Type:     "json",
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Modified.After(files[j].Modified)
	})

	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	return files, nil
}

// ResolveDownload maps a requested filename to a path inside the user's
// converted directory. Only plain .json base names resolve; anything that
// smells like traversal is rejected before touching the filesystem.
func (m *Manager) ResolveDownload(username, filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.Contains(filename, "..") {
		return "", apierrors.ErrFileNotFound
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".json") {
		return "", apierrors.ErrFileNotFound
	}

	path := filepath.Join(m.paths.UserConvertedDir(username), filename)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", apierrors.ErrFileNotFound
	}
	return path, nil
}

// Stats walks the user's tree and totals files and bytes
func (m *Manager) Stats(username string) (int, int64, error) {
	root := m.paths.UserDir(username)
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return 0, 0, nil
	}

	var count int
	var bytes int64
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		count++
		bytes += info.Size()
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to walk user directory %s: %w", root, err)
	}

	return count, bytes, nil
}
