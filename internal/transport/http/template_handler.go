package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"taxwizz/internal/services"
)

// TemplateHandler serves the conversion template catalog.
type TemplateHandler struct {
	service *services.ConversionService
	logger  *slog.Logger
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(service *services.ConversionService, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "templates")),
	}
}

// Routes returns the routes mounted at /api/templates.
func (h *TemplateHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	return r
}

// List handles GET /api/templates
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"templates": h.service.Templates(),
	})
}
