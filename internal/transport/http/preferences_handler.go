package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "taxwizz/internal/errors"
	"taxwizz/internal/middleware"
	"taxwizz/internal/store"
	api "taxwizz/pkg/contracts/api/v1"
	"taxwizz/pkg/contracts/domain"
)

// PreferencesHandler serves the per-user settings endpoints.
type PreferencesHandler struct {
	preferences  store.PreferencesStore
	activities   store.ActivityStore
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
	logger       *slog.Logger
}

// NewPreferencesHandler creates a new preferences handler
func NewPreferencesHandler(preferences store.PreferencesStore, activities store.ActivityStore, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *PreferencesHandler {
	return &PreferencesHandler{
		preferences:  preferences,
		activities:   activities,
		errorHandler: errorHandler,
		validate:     validator.New(),
		logger:       logger.With(slog.String("handler", "preferences")),
	}
}

// Routes returns the routes mounted at /api/preferences.
func (h *PreferencesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Get)
	r.Put("/", h.Put)
	return r
}

// Get handles GET /api/preferences
func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrTokenInvalid)
		return
	}

	prefs, err := h.preferences.Get(user.Username)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, prefs)
}

// Put handles PUT /api/preferences
func (h *PreferencesHandler) Put(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrTokenInvalid)
		return
	}

	var req api.PreferencesRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		var errs []apierrors.ValidationError
		for _, fieldErr := range err.(validator.ValidationErrors) {
			errs = append(errs, apierrors.ValidationError{
				Field:   fieldErr.Field(),
				Message: "failed " + fieldErr.Tag() + " validation",
			})
		}
		h.errorHandler.HandleError(w, r, apierrors.NewValidationErrors(errs))
		return
	}

	prefs := domain.Preferences{
		Theme:           req.Theme,
		DefaultTemplate: req.DefaultTemplate,
		Notifications:   req.Notifications,
		AutoSave:        req.AutoSave,
	}
	if err := h.preferences.Put(user.Username, prefs); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.activities.Record(user.Username, domain.Activity{
		Type:    domain.ActivityPreferences,
		Message: "Preferences updated",
	})

	render.JSON(w, r, prefs)
}
