package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"taxwizz/internal/config"
	"taxwizz/internal/conversion"
	apierrors "taxwizz/internal/errors"
	"taxwizz/internal/files"
	"taxwizz/internal/store"
	"taxwizz/pkg/contracts/domain"
	"taxwizz/pkg/contracts/events"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeBroadcaster records broadcasts for assertions.
type fakeBroadcaster struct {
	statuses  []domain.StatusUpdate
	progress  []string
	completed []events.ConversionCompletePayload
	errors    []string
}

func (f *fakeBroadcaster) BroadcastStatus(username string, update domain.StatusUpdate) {
	f.statuses = append(f.statuses, update)
}

func (f *fakeBroadcaster) BroadcastProgress(step string, progress int, message string) {
	f.progress = append(f.progress, step)
}

func (f *fakeBroadcaster) BroadcastConversionComplete(payload events.ConversionCompletePayload) {
	f.completed = append(f.completed, payload)
}

func (f *fakeBroadcaster) BroadcastError(code, message string) {
	f.errors = append(f.errors, code)
}

type conversionFixture struct {
	service    *ConversionService
	activities *store.MemoryActivityStore
	statuses   *store.MemoryStatusStore
	hub        *fakeBroadcaster
	paths      *config.Paths
}

func newConversionFixture(t *testing.T) *conversionFixture {
	t.Helper()
	dataDir := t.TempDir()
	paths := &config.Paths{
		DataDir:  dataDir,
		UsersDir: filepath.Join(dataDir, "users"),
		LogsDir:  filepath.Join(dataDir, "logs"),
	}

	activities := store.NewMemoryActivityStore(100)
	statuses := store.NewMemoryStatusStore(20)
	hub := &fakeBroadcaster{}

	service := NewConversionService(
		conversion.NewRegistry(),
		files.NewManager(paths, discardLogger()),
		activities,
		statuses,
		hub,
		nil,
		discardLogger(),
	)

	return &conversionFixture{
		service:    service,
		activities: activities,
		statuses:   statuses,
		hub:        hub,
		paths:      paths,
	}
}

// statementWorkbook builds an xlsx with one intraday row at 42 and
// long-term rows at 55-57, matching the built-in template windows.
func statementWorkbook(t *testing.T) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	cells := map[string]any{
		"A42": "RELIANCE", "B42": 10, "C42": 24000.0, "D42": 24500.0, "E42": 500.0,
		"A55": "TCS", "B55": 5, "C55": 15000.0, "D55": 17500.0, "E55": 2500.0,
		"A56": "INFY", "B56": 8, "C56": 11200.0, "D56": 10800.0, "E56": -400.0,
	}
	for ref, value := range cells {
		require.NoError(t, f.SetCellValue("Sheet1", ref, value))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestConvert_HappyPath(t *testing.T) {
	fx := newConversionFixture(t)

	result, err := fx.service.Convert(context.Background(), "alice", "statement.xlsx", statementWorkbook(t), "default", conversion.Overrides{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.IntradayTrades)
	assert.Equal(t, 2, result.LongTermTrades)
	assert.Equal(t, domain.FormatStandard, result.Format)
	assert.True(t, strings.HasPrefix(result.OutputFile, "alice_statement_"))
	assert.True(t, strings.HasSuffix(result.OutputFile, ".json"))
	assert.Greater(t, result.SizeBytes, int64(0))

	// The document landed in the user's converted directory
	data, err := os.ReadFile(result.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "capitalGain")
	assert.Contains(t, string(data), "nameOfTheUnits")

	// Conversion activity recorded
	last, ok := fx.activities.Last("alice")
	require.True(t, ok)
	assert.Equal(t, domain.ActivityConversion, last.Type)
	assert.Equal(t, result.OutputFile, last.Filename)

	// Status feed ends in completed
	latest, ok := fx.statuses.Latest("alice")
	require.True(t, ok)
	assert.Equal(t, domain.SyncCompleted, latest.State)
	assert.Equal(t, 100, latest.Progress)

	// Realtime broadcasts went out
	require.Len(t, fx.hub.completed, 1)
	assert.Equal(t, "alice", fx.hub.completed[0].Username)
	assert.Equal(t, 1, fx.hub.completed[0].IntradayTrades)
	assert.Equal(t, []string{"open", "extract", "build", "save"}, fx.hub.progress)
}

func TestConvert_CompactTemplate(t *testing.T) {
	fx := newConversionFixture(t)

	result, err := fx.service.Convert(context.Background(), "alice", "statement.xlsx", statementWorkbook(t), "compact", conversion.Overrides{})
	require.NoError(t, err)

	assert.Equal(t, domain.FormatCompact, result.Format)
	data, err := os.ReadFile(result.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "summary")
}

func TestConvert_OverridesApplyPerRequest(t *testing.T) {
	fx := newConversionFixture(t)

	// Shift the intraday window to the long-term rows; picks up 2 records
	start, end := 55, 57
	result, err := fx.service.Convert(context.Background(), "alice", "statement.xlsx", statementWorkbook(t), "default",
		conversion.Overrides{IntradayStart: &start, IntradayEnd: &end})
	require.NoError(t, err)
	assert.Equal(t, 2, result.IntradayTrades)

	// A second request without overrides sees the original window
	result, err = fx.service.Convert(context.Background(), "alice", "statement.xlsx", statementWorkbook(t), "default", conversion.Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.IntradayTrades)
}

func TestConvert_UnknownTemplate(t *testing.T) {
	fx := newConversionFixture(t)

	_, err := fx.service.Convert(context.Background(), "alice", "statement.xlsx", statementWorkbook(t), "missing", conversion.Overrides{})
	require.ErrorIs(t, err, apierrors.ErrUnknownTemplate)

	last, ok := fx.activities.Last("alice")
	require.True(t, ok)
	assert.Equal(t, domain.ActivityError, last.Type)

	latest, ok := fx.statuses.Latest("alice")
	require.True(t, ok)
	assert.Equal(t, domain.SyncError, latest.State)
}

func TestConvert_GarbageStatement(t *testing.T) {
	fx := newConversionFixture(t)

	_, err := fx.service.Convert(context.Background(), "alice", "statement.xlsx", strings.NewReader("not a workbook"), "default", conversion.Overrides{})
	require.Error(t, err)

	latest, ok := fx.statuses.Latest("alice")
	require.True(t, ok)
	assert.Equal(t, domain.SyncError, latest.State)
}

func TestConvert_EmptySheet(t *testing.T) {
	fx := newConversionFixture(t)

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "only one row"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, err = fx.service.Convert(context.Background(), "alice", "statement.xlsx", buf, "default", conversion.Overrides{})
	require.ErrorIs(t, err, apierrors.ErrEmptySheet)
}

func TestTemplates_ListsBuiltins(t *testing.T) {
	fx := newConversionFixture(t)

	templates := fx.service.Templates()
	require.Len(t, templates, 2)
	assert.Equal(t, "compact", templates[0].Name)
	assert.Equal(t, "default", templates[1].Name)
}
