package app

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"taxwizz/internal/config"
	"taxwizz/internal/infrastructure"
	"taxwizz/pkg/contracts"
	"taxwizz/pkg/contracts/events"
)

// newTestApplication builds an Application on a temp directory with
// inert telemetry providers, skipping the global OTel/Prometheus setup
// that NewApplication performs.
func newTestApplication(t *testing.T) *Application {
	t.Helper()

	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()

	paths, err := config.NewPaths(cfg)
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	providers := &infrastructure.OTelProviders{
		Tracer: sdktrace.NewTracerProvider().Tracer("test"),
		Meter:  sdkmetric.NewMeterProvider().Meter("test"),
		Logger: logger,
	}
	metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: providers,
		Metrics:       metrics,
	}
	require.NoError(t, app.initializeServices())
	app.setupRouter()
	t.Cleanup(app.Hub.Stop)

	return app
}

func login(t *testing.T, app *Application) string {
	t.Helper()

	body := strings.NewReader(`{"username":"admin","password":"admin123"}`)
	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", body)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	var session struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	require.NotEmpty(t, session.Token)
	return session.Token
}

func TestHealthEndpointIsPublic(t *testing.T) {
	app := newTestApplication(t)

	r := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestVersionEndpointIsPublic(t *testing.T) {
	app := newTestApplication(t)

	r := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), contracts.Version)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApplication(t)

	for _, path := range []string{
		"/api/templates",
		"/api/files/recent",
		"/api/stats",
		"/api/sync/status",
		"/api/notifications",
		"/api/preferences",
	} {
		r := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		app.Router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/problem+json", path)
	}
}

func TestLoginGrantsAccessToProtectedRoutes(t *testing.T) {
	app := newTestApplication(t)
	token := login(t, app)

	r := httptest.NewRequest(http.MethodGet, "/api/templates", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "default")
	assert.Contains(t, w.Body.String(), "compact")
}

func TestUnknownAPIRouteReturnsProblem(t *testing.T) {
	app := newTestApplication(t)

	r := httptest.NewRequest(http.MethodGet, "/api/does-not-exist", nil)
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/problem+json")
}

func TestSecurityHeadersApplied(t *testing.T) {
	app := newTestApplication(t)

	r := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, r)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestRequestIDPropagated(t *testing.T) {
	app := newTestApplication(t)

	r := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, r)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestWebSocketUpgrade(t *testing.T) {
	app := newTestApplication(t)

	server := httptest.NewServer(app.Router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, resp, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	defer resp.Body.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)

	var envelope events.Envelope
	require.NoError(t, json.Unmarshal(message, &envelope))
	assert.Equal(t, events.MessageTypeConnection, envelope.Type)
}

func TestWebSocketRejectsDisallowedOrigin(t *testing.T) {
	app := newTestApplication(t)

	server := httptest.NewServer(app.Router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	header := http.Header{"Origin": []string{"http://evil.example.com"}}
	conn, resp, err := gorillaws.DefaultDialer.Dial(url, header)
	if conn != nil {
		conn.Close()
	}
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
