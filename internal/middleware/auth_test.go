package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "taxwizz/internal/errors"
	"taxwizz/pkg/contracts/domain"
)

type stubValidator struct {
	user domain.User
	err  error
}

func (s *stubValidator) ValidateToken(token string) (domain.User, error) {
	if s.err != nil {
		return domain.User{}, s.err
	}
	return s.user, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testAuthenticator(v TokenValidator) *Authenticator {
	logger := testLogger()
	return NewAuthenticator(v, apierrors.NewErrorHandler(logger, false), logger)
}

func TestAuthenticator_ValidToken(t *testing.T) {
	auth := testAuthenticator(&stubValidator{user: domain.User{Username: "admin", Role: domain.RoleAdmin}})

	var captured domain.User
	handler := auth.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		require.True(t, ok)
		captured = user
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/files/recent", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", captured.Username)
}

func TestAuthenticator_MissingHeader(t *testing.T) {
	auth := testAuthenticator(&stubValidator{})

	handler := auth.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without a token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/files/recent", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "/errors/auth/token-invalid")
}

func TestAuthenticator_MalformedHeader(t *testing.T) {
	auth := testAuthenticator(&stubValidator{})

	handler := auth.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run with a malformed header")
	}))

	for _, header := range []string{"some-token", "Basic abc", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestAuthenticator_ExpiredToken(t *testing.T) {
	auth := testAuthenticator(&stubValidator{err: apierrors.ErrTokenExpired})

	handler := auth.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run with an expired token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer stale")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "/errors/auth/token-expired")
}

func TestRequireRole(t *testing.T) {
	auth := testAuthenticator(&stubValidator{user: domain.User{Username: "user", Role: domain.RoleUser}})

	handler := auth.Handler(auth.RequireRole(domain.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("non-admin should not reach the handler")
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/admin", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
