package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths resolves the on-disk layout of the service's data tree:
//
//	data/
//	  users/
//	    <username>/
//	      uploads/
//	      converted/
//	      preferences.json
//	logs/
type Paths struct {
	DataDir  string
	UsersDir string
	LogsDir  string
}

// NewPaths resolves the directory layout from the configured data and logs
// directories. Relative paths are anchored at the working directory.
func NewPaths(cfg *Config) (*Paths, error) {
	dataDir, err := filepath.Abs(cfg.Paths.DataDir)
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	logsDir, err := filepath.Abs(cfg.Paths.LogsDir)
	if err != nil {
		return nil, fmt.Errorf("resolve logs dir: %w", err)
	}

	return &Paths{
		DataDir:  dataDir,
		UsersDir: filepath.Join(dataDir, "users"),
		LogsDir:  logsDir,
	}, nil
}

// EnsureDirectories creates the base directory tree.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.UsersDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// UserDir returns the root of one user's data tree.
func (p *Paths) UserDir(username string) string {
	return filepath.Join(p.UsersDir, username)
}

// UserUploadsDir returns where a user's uploaded statements land.
func (p *Paths) UserUploadsDir(username string) string {
	return filepath.Join(p.UserDir(username), "uploads")
}

// UserConvertedDir returns where a user's generated documents land.
func (p *Paths) UserConvertedDir(username string) string {
	return filepath.Join(p.UserDir(username), "converted")
}

// UserPreferencesPath returns the user's settings file.
func (p *Paths) UserPreferencesPath(username string) string {
	return filepath.Join(p.UserDir(username), "preferences.json")
}

// LogPath returns a file path inside the logs directory.
func (p *Paths) LogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// FileExists checks if a file exists and is not a directory
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
