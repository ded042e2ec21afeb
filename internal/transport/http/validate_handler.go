package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	apierrors "taxwizz/internal/errors"
	"taxwizz/internal/validation"
)

// maxValidateBytes caps document validation request bodies.
const maxValidateBytes = 8 << 20

// ValidateHandler checks candidate tax documents against the standard
// document shape.
type ValidateHandler struct {
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewValidateHandler creates a new document validation handler
func NewValidateHandler(errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *ValidateHandler {
	return &ValidateHandler{
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "validate")),
	}
}

// Validate handles POST /api/validate. Malformed JSON is an invalid
// report, not an error response.
func (h *ValidateHandler) Validate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxValidateBytes))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	render.JSON(w, r, validation.CheckStandardDocument(body))
}
