package http

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"taxwizz/internal/config"
	"taxwizz/internal/conversion"
	apierrors "taxwizz/internal/errors"
	"taxwizz/internal/files"
	"taxwizz/internal/middleware"
	"taxwizz/internal/services"
	"taxwizz/internal/store"
	"taxwizz/internal/validation"
	"taxwizz/pkg/contracts/domain"
)

// testUser is the identity handler tests run as.
var testUser = domain.User{
	Username: "alice",
	Name:     "Alice",
	Role:     domain.RoleUser,
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testErrorHandler() *apierrors.ErrorHandler {
	return apierrors.NewErrorHandler(testLogger(), false)
}

// stubValidator resolves every token to the fixed test user.
type stubValidator struct {
	user domain.User
	err  error
}

func (s stubValidator) ValidateToken(string) (domain.User, error) {
	return s.user, s.err
}

// authenticated wraps a handler in the bearer-token middleware with a
// stub validator so tests exercise the real user-context plumbing.
func authenticated(handler http.Handler) http.Handler {
	auth := middleware.NewAuthenticator(stubValidator{user: testUser}, testErrorHandler(), testLogger())
	return auth.Handler(handler)
}

// withBearer stamps the header the auth middleware expects.
func withBearer(r *http.Request) *http.Request {
	r.Header.Set("Authorization", "Bearer test-token")
	return r
}

// handlerFixture wires the full service stack onto a temp directory.
type handlerFixture struct {
	paths      *config.Paths
	manager    *files.Manager
	activities *store.MemoryActivityStore
	statuses   *store.MemoryStatusStore
	conversion *services.ConversionService
	uploads    *validation.UploadValidator
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	dataDir := t.TempDir()
	paths := &config.Paths{
		DataDir:  dataDir,
		UsersDir: filepath.Join(dataDir, "users"),
		LogsDir:  filepath.Join(dataDir, "logs"),
	}

	manager := files.NewManager(paths, testLogger())
	activities := store.NewMemoryActivityStore(100)
	statuses := store.NewMemoryStatusStore(20)

	conversionService := services.NewConversionService(
		conversion.NewRegistry(),
		manager,
		activities,
		statuses,
		nil,
		nil,
		testLogger(),
	)

	uploads := validation.NewUploadValidator(config.ConversionConfig{
		MaxUploadBytes:    16 << 20,
		AllowedExtensions: []string{".xlsx", ".xls"},
	}, testLogger())

	return &handlerFixture{
		paths:      paths,
		manager:    manager,
		activities: activities,
		statuses:   statuses,
		conversion: conversionService,
		uploads:    uploads,
	}
}

// statementUpload builds a multipart body carrying a small workbook with
// rows in the built-in template windows, plus any extra form fields.
func statementUpload(t *testing.T, filename string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	cells := map[string]any{
		"A42": "RELIANCE", "B42": 10, "C42": 24000.0, "D42": 24500.0, "E42": 500.0,
		"A55": "TCS", "B55": 5, "C55": 15000.0, "D55": 17500.0, "E55": 2500.0,
	}
	for ref, value := range cells {
		require.NoError(t, f.SetCellValue("Sheet1", ref, value))
	}
	workbook, err := f.WriteToBuffer()
	require.NoError(t, err)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.Copy(part, workbook)
	require.NoError(t, err)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

// do runs a request through an authenticated handler and returns the
// recorder.
func do(handler http.Handler, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	authenticated(handler).ServeHTTP(w, withBearer(r))
	return w
}
