package http

import (
	"archive/zip"
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxwizz/pkg/contracts/domain"
)

func newBackupHandler(t *testing.T) (*BackupHandler, *handlerFixture) {
	t.Helper()
	fx := newHandlerFixture(t)
	return NewBackupHandler(fx.manager, fx.activities, testErrorHandler(), testLogger()), fx
}

func TestBackupEndpoint(t *testing.T) {
	h, fx := newBackupHandler(t)

	_, _, err := fx.manager.SaveDocument(testUser.Username, "alice_statement_1.json", map[string]any{"a": 1})
	require.NoError(t, err)
	_, _, err = fx.manager.SaveDocument(testUser.Username, "alice_statement_2.json", map[string]any{"b": 2})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, "/", nil)
	w := do(http.HandlerFunc(h.Create), r)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "taxwizz_backup_alice_")

	// The body is a readable zip with both documents
	reader, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	require.NoError(t, err)
	assert.Len(t, reader.File, 2)

	last, ok := fx.activities.Last(testUser.Username)
	require.True(t, ok)
	assert.Equal(t, domain.ActivityBackup, last.Type)
}

func TestBackupEndpoint_NothingToBackup(t *testing.T) {
	h, _ := newBackupHandler(t)

	r := httptest.NewRequest(http.MethodPost, "/", nil)
	w := do(http.HandlerFunc(h.Create), r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
