package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxwizz/internal/config"
	"taxwizz/internal/files"
	"taxwizz/internal/store"
	"taxwizz/pkg/contracts/domain"
)

func newStatsFixture(t *testing.T) (*StatsService, *files.Manager, *store.MemoryActivityStore) {
	t.Helper()
	dataDir := t.TempDir()
	paths := &config.Paths{
		DataDir:  dataDir,
		UsersDir: filepath.Join(dataDir, "users"),
		LogsDir:  filepath.Join(dataDir, "logs"),
	}
	manager := files.NewManager(paths, discardLogger())
	activities := store.NewMemoryActivityStore(100)
	return NewStatsService(manager, activities, discardLogger()), manager, activities
}

func TestStats_AggregatesFilesAndActivities(t *testing.T) {
	svc, manager, activities := newStatsFixture(t)

	_, _, err := manager.SaveDocument("alice", "alice_statement_1.json", map[string]any{"a": 1})
	require.NoError(t, err)
	_, _, err = manager.SaveDocument("alice", "alice_statement_2.json", map[string]any{"b": 2})
	require.NoError(t, err)

	activities.Record("alice", domain.Activity{Type: domain.ActivityConversion, Message: "Converted"})
	activities.Record("alice", domain.Activity{Type: domain.ActivityConversion, Message: "Converted"})
	activities.Record("alice", domain.Activity{Type: domain.ActivityLogin, Message: "Logged in"})

	stats, err := svc.ForUser(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, "alice", stats.Username)
	assert.Equal(t, 2, stats.Conversions)
	assert.Equal(t, 2, stats.FilesOnDisk)
	assert.Greater(t, stats.BytesUsed, int64(0))
	assert.Equal(t, 1, stats.ActivityByType[domain.ActivityLogin])
	require.NotNil(t, stats.LastActivity)
}

func TestStats_ZeroForUnknownUser(t *testing.T) {
	svc, _, _ := newStatsFixture(t)

	stats, err := svc.ForUser(context.Background(), "nobody")
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Conversions)
	assert.Equal(t, 0, stats.FilesOnDisk)
	assert.Equal(t, int64(0), stats.BytesUsed)
	assert.Nil(t, stats.LastActivity)
}
