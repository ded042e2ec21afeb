package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxwizz/internal/config"
	"taxwizz/pkg/contracts/domain"
)

func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	dataDir := t.TempDir()
	return &config.Paths{
		DataDir:  dataDir,
		UsersDir: filepath.Join(dataDir, "users"),
		LogsDir:  filepath.Join(dataDir, "logs"),
	}
}

func TestFilePreferencesStore_DefaultsWhenMissing(t *testing.T) {
	s := NewFilePreferencesStore(testPaths(t))

	prefs, err := s.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPreferences(), prefs)
}

func TestFilePreferencesStore_PutThenGet(t *testing.T) {
	paths := testPaths(t)
	s := NewFilePreferencesStore(paths)

	want := domain.Preferences{
		Theme:           "dark",
		DefaultTemplate: "compact",
		Notifications:   false,
		AutoSave:        true,
	}
	require.NoError(t, s.Put("alice", want))

	got, err := s.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Persisted on disk, not just cached
	data, err := os.ReadFile(paths.UserPreferencesPath("alice"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"theme": "dark"`)
	assert.Contains(t, string(data), `"auto_save": true`)
}

func TestFilePreferencesStore_ReadsThroughCache(t *testing.T) {
	paths := testPaths(t)
	s := NewFilePreferencesStore(paths)

	require.NoError(t, s.Put("alice", domain.Preferences{Theme: "dark", DefaultTemplate: "default"}))

	// A second store over the same tree reads from disk
	fresh := NewFilePreferencesStore(paths)
	got, err := fresh.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, "dark", got.Theme)
}

func TestFilePreferencesStore_PartialFileKeepsDefaults(t *testing.T) {
	paths := testPaths(t)
	path := paths.UserPreferencesPath("alice")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`{"theme":"dark"}`), 0o644))

	s := NewFilePreferencesStore(paths)
	got, err := s.Get("alice")
	require.NoError(t, err)

	assert.Equal(t, "dark", got.Theme)
	assert.Equal(t, "default", got.DefaultTemplate)
	assert.True(t, got.Notifications)
}

func TestFilePreferencesStore_CorruptFile(t *testing.T) {
	paths := testPaths(t)
	path := paths.UserPreferencesPath("alice")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := NewFilePreferencesStore(paths)
	_, err := s.Get("alice")
	assert.ErrorContains(t, err, "failed to parse preferences")
}
