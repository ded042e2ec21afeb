package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	apierrors "taxwizz/internal/errors"
	"taxwizz/internal/middleware"
	"taxwizz/internal/services"
	api "taxwizz/pkg/contracts/api/v1"
)

// AuthHandler handles login and logout requests.
type AuthHandler struct {
	service      *services.AuthService
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
	loginLimiter *rate.Limiter
	logger       *slog.Logger
}

// NewAuthHandler creates a new auth handler. loginLimiter throttles login
// attempts process-wide; nil disables throttling.
func NewAuthHandler(service *services.AuthService, errorHandler *apierrors.ErrorHandler, loginLimiter *rate.Limiter, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service:      service,
		errorHandler: errorHandler,
		validate:     validator.New(),
		loginLimiter: loginLimiter,
		logger:       logger.With(slog.String("handler", "auth")),
	}
}

// Routes returns the public routes mounted at /api/auth. Logout requires
// authentication and is wired separately by the application.
func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.Login)
	return r
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.loginLimiter != nil && !h.loginLimiter.Allow() {
		h.errorHandler.HandleError(w, r, apierrors.ErrRateLimitExceeded)
		return
	}

	var req api.LoginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewValidationError("username and password are required"))
		return
	}

	session, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, session)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrTokenInvalid)
		return
	}

	h.service.Logout(r.Context(), user.Username)
	render.JSON(w, r, map[string]string{"status": "logged_out"})
}
