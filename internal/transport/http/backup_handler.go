package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	apierrors "taxwizz/internal/errors"
	"taxwizz/internal/files"
	"taxwizz/internal/middleware"
	"taxwizz/internal/store"
	"taxwizz/pkg/contracts/domain"
)

// BackupHandler streams zip exports of a user's converted documents.
type BackupHandler struct {
	files        *files.Manager
	activities   store.ActivityStore
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewBackupHandler creates a new backup handler
func NewBackupHandler(fileManager *files.Manager, activities store.ActivityStore, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{
		files:        fileManager,
		activities:   activities,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "backup")),
	}
}

// Create handles POST /api/backup. The archive is streamed, so the
// response is committed before all files are read; failures mid-stream
// truncate the zip rather than producing a problem response.
func (h *BackupHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrTokenInvalid)
		return
	}

	filename := files.BackupFilename(user.Username, time.Now())
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	count, err := h.files.WriteBackup(r.Context(), user.Username, w)
	if err != nil {
		// Headers may already be out; log and let the client see the
		// truncated stream. ErrNothingToBackup is detected before any
		// bytes are written, so it still renders a problem.
		if count == 0 {
			w.Header().Del("Content-Type")
			w.Header().Del("Content-Disposition")
			h.errorHandler.HandleError(w, r, err)
			return
		}
		h.logger.ErrorContext(r.Context(), "backup stream failed",
			slog.String("username", user.Username),
			slog.String("error", err.Error()))
		return
	}

	h.activities.Record(user.Username, domain.Activity{
		Type:     domain.ActivityBackup,
		Message:  fmt.Sprintf("Backed up %d files", count),
		Filename: filename,
	})
}
