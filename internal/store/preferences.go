package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"taxwizz/internal/config"
	"taxwizz/pkg/contracts/domain"
)

// PreferencesStore persists per-user settings.
type PreferencesStore interface {
	// Get returns the user's preferences, falling back to defaults when
	// nothing has been saved.
	Get(username string) (domain.Preferences, error)

	// Put saves the user's preferences.
	Put(username string, prefs domain.Preferences) error
}

// FilePreferencesStore keeps preferences as JSON files under each user's
// data directory with a write-through in-memory cache.
type FilePreferencesStore struct {
	paths *config.Paths

	mu    sync.RWMutex
	cache map[string]domain.Preferences
}

// NewFilePreferencesStore creates a preferences store rooted at the
// configured user data directory.
func NewFilePreferencesStore(paths *config.Paths) *FilePreferencesStore {
	return &FilePreferencesStore{
		paths: paths,
		cache: make(map[string]domain.Preferences),
	}
}

// Get loads preferences from cache, then disk, then defaults
func (s *FilePreferencesStore) Get(username string) (domain.Preferences, error) {
	s.mu.RLock()
	prefs, cached := s.cache[username]
	s.mu.RUnlock()
	if cached {
		return prefs, nil
	}

	path := s.paths.UserPreferencesPath(username)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return domain.DefaultPreferences(), nil
	}
	if err != nil {
		return domain.Preferences{}, fmt.Errorf("failed to read preferences for %s: %w", username, err)
	}

	// Decode over defaults so fields absent from older files keep their
	// default values.
	prefs = domain.DefaultPreferences()
	if err := json.Unmarshal(data, &prefs); err != nil {
		return domain.Preferences{}, fmt.Errorf("failed to parse preferences for %s: %w", username, err)
	}

	s.mu.Lock()
	s.cache[username] = prefs
	s.mu.Unlock()

	return prefs, nil
}

// Put writes preferences to disk and refreshes the cache
func (s *FilePreferencesStore) Put(username string, prefs domain.Preferences) error {
	path := s.paths.UserPreferencesPath(username)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create user directory for %s: %w", username, err)
	}

	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode preferences for %s: %w", username, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write preferences for %s: %w", username, err)
	}

	s.mu.Lock()
	s.cache[username] = prefs
	s.mu.Unlock()

	return nil
}
