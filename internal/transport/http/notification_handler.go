package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	apierrors "taxwizz/internal/errors"
	"taxwizz/internal/middleware"
	"taxwizz/internal/services"
)

// NotificationHandler serves the notification feed.
type NotificationHandler struct {
	service      *services.NotificationService
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(service *services.NotificationService, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		service:      service,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "notifications")),
	}
}

// List handles GET /api/notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrTokenInvalid)
		return
	}

	render.JSON(w, r, map[string]any{
		"notifications": h.service.Recent(r.Context(), user.Username),
	})
}
