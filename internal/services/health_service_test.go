package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxwizz/internal/config"
	"taxwizz/internal/store"
	"taxwizz/pkg/contracts"
)

func newHealthFixture(t *testing.T, dataDir string) *HealthService {
	t.Helper()
	paths := &config.Paths{
		DataDir:  dataDir,
		UsersDir: filepath.Join(dataDir, "users"),
		LogsDir:  filepath.Join(dataDir, "logs"),
	}
	users := store.NewMemoryUserStore()
	require.NoError(t, store.SeedDefaultUsers(users))
	return NewHealthService(paths, users, discardLogger())
}

func TestHealthCheck_Healthy(t *testing.T) {
	svc := newHealthFixture(t, t.TempDir())

	report := svc.Check(context.Background())

	assert.Equal(t, HealthStatusHealthy, report.Status)
	assert.Equal(t, contracts.Version, report.Version)
	assert.NotEmpty(t, report.Uptime)
	require.Len(t, report.Checks, 2)
	for _, check := range report.Checks {
		assert.Equal(t, HealthStatusHealthy, check.Status, check.Name)
	}
	assert.True(t, svc.Ready(context.Background()))
}

func TestHealthCheck_DegradedWhenDataDirUnusable(t *testing.T) {
	// A regular file in the way makes the data dir impossible to create
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	svc := newHealthFixture(t, filepath.Join(blocker, "data"))

	report := svc.Check(context.Background())

	assert.Equal(t, HealthStatusDegraded, report.Status)
	assert.False(t, svc.Ready(context.Background()))
}

func TestHealthCheck_DegradedWhenUserStoreEmpty(t *testing.T) {
	paths := &config.Paths{DataDir: t.TempDir()}
	svc := NewHealthService(paths, store.NewMemoryUserStore(), discardLogger())

	report := svc.Check(context.Background())
	assert.Equal(t, HealthStatusDegraded, report.Status)
}

func TestVersion(t *testing.T) {
	svc := newHealthFixture(t, t.TempDir())

	info := svc.Version()
	assert.Equal(t, contracts.Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
}
