package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	apierrors "taxwizz/internal/errors"
	"taxwizz/pkg/contracts/domain"
)

// userContextKey is the private context key the authenticated user is
// stored under.
type userContextKey struct{}

// TokenValidator resolves a bearer token to its user. AuthService
// implements this.
type TokenValidator interface {
	ValidateToken(token string) (domain.User, error)
}

// Authenticator guards API routes behind bearer-token authentication.
type Authenticator struct {
	validator    TokenValidator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewAuthenticator creates the bearer-token middleware.
func NewAuthenticator(validator TokenValidator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "auth_middleware")),
	}
}

// Handler resolves the Authorization header and stores the user in the
// request context. Missing or invalid tokens end the request with a 401
// problem response.
func (a *Authenticator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			a.errorHandler.HandleError(w, r, apierrors.ErrTokenInvalid)
			return
		}

		user, err := a.validator.ValidateToken(token)
		if err != nil {
			a.logger.WarnContext(r.Context(), "token rejected",
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()))
			a.errorHandler.HandleError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole allows only users with the given role past. Must run after
// Handler.
func (a *Authenticator) RequireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				a.errorHandler.HandleError(w, r, apierrors.ErrTokenInvalid)
				return
			}
			if user.Role != role {
				a.errorHandler.HandleError(w, r, apierrors.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserFromContext returns the authenticated user stored by Handler.
func UserFromContext(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(domain.User)
	return user, ok
}

// bearerToken extracts the token from an "Authorization: Bearer ..."
// header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
