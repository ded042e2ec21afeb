package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "taxwizz/internal/errors"
	"taxwizz/internal/middleware"
	"taxwizz/internal/store"
	"taxwizz/pkg/contracts/domain"
)

// defaultHistoryLimit caps sync history responses when no limit is given.
const defaultHistoryLimit = 20

// SyncHandler serves the status feed and activity history endpoints.
type SyncHandler struct {
	statuses     store.StatusStore
	activities   store.ActivityStore
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(statuses store.StatusStore, activities store.ActivityStore, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{
		statuses:     statuses,
		activities:   activities,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "sync")),
	}
}

// Routes returns the routes mounted at /api/sync.
func (h *SyncHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/status", h.Status)
	r.Get("/history", h.History)
	return r
}

// Status handles GET /api/sync/status
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrTokenInvalid)
		return
	}

	latest, found := h.statuses.Latest(user.Username)
	if !found {
		latest = domain.StatusUpdate{State: domain.SyncIdle, Message: "No activity yet"}
	}

	queueDepth := 0
	if latest.State == domain.SyncUploading || latest.State == domain.SyncProcessing {
		queueDepth = 1
	}

	render.JSON(w, r, map[string]any{
		"status":      latest,
		"queue_depth": queueDepth,
	})
}

// History handles GET /api/sync/history
func (h *SyncHandler) History(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrTokenInvalid)
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("limit", "must be an integer between 1 and 100"))
			return
		}
		limit = parsed
	}

	render.JSON(w, r, map[string]any{
		"activities": h.activities.Recent(user.Username, limit),
	})
}
