package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "taxwizz/internal/errors"
	"taxwizz/internal/files"
	"taxwizz/internal/middleware"
	"taxwizz/internal/services"
	"taxwizz/internal/store"
	"taxwizz/pkg/contracts/domain"
)

// FilesHandler serves a user's converted documents and usage stats.
type FilesHandler struct {
	files        *files.Manager
	stats        *services.StatsService
	activities   store.ActivityStore
	errorHandler *apierrors.ErrorHandler
	recentLimit  int
	logger       *slog.Logger
}

// NewFilesHandler creates a new files handler
func NewFilesHandler(fileManager *files.Manager, stats *services.StatsService, activities store.ActivityStore, errorHandler *apierrors.ErrorHandler, recentLimit int, logger *slog.Logger) *FilesHandler {
	return &FilesHandler{
		files:        fileManager,
		stats:        stats,
		activities:   activities,
		errorHandler: errorHandler,
		recentLimit:  recentLimit,
		logger:       logger.With(slog.String("handler", "files")),
	}
}

// Routes returns the routes mounted at /api/files.
func (h *FilesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/recent", h.Recent)
	r.Get("/download/{filename}", h.Download)
	return r
}

// Recent handles GET /api/files/recent
func (h *FilesHandler) Recent(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrTokenInvalid)
		return
	}

	recent, err := h.files.ListRecent(user.Username, h.recentLimit)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]any{"files": recent})
}

// Download handles GET /api/files/download/{filename}
func (h *FilesHandler) Download(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrTokenInvalid)
		return
	}

	filename := chi.URLParam(r, "filename")
	path, err := h.files.ResolveDownload(user.Username, filename)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.activities.Record(user.Username, domain.Activity{
		Type:     domain.ActivityDownload,
		Message:  "Downloaded " + filename,
		Filename: filename,
	})

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	http.ServeFile(w, r, path)
}

// Stats handles GET /api/stats
func (h *FilesHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrTokenInvalid)
		return
	}

	stats, err := h.stats.ForUser(r.Context(), user.Username)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, stats)
}
