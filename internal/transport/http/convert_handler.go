package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"taxwizz/internal/conversion"
	apierrors "taxwizz/internal/errors"
	"taxwizz/internal/middleware"
	"taxwizz/internal/services"
	"taxwizz/internal/validation"
	api "taxwizz/pkg/contracts/api/v1"
	"taxwizz/pkg/contracts/domain"
)

// uploadFieldName is the multipart form field carrying the statement.
const uploadFieldName = "file"

// ConvertHandler handles statement upload and conversion requests.
type ConvertHandler struct {
	service         *services.ConversionService
	uploads         *validation.UploadValidator
	errorHandler    *apierrors.ErrorHandler
	validate        *validator.Validate
	defaultTemplate string
	logger          *slog.Logger
}

// NewConvertHandler creates a new conversion handler
func NewConvertHandler(service *services.ConversionService, uploads *validation.UploadValidator, errorHandler *apierrors.ErrorHandler, defaultTemplate string, logger *slog.Logger) *ConvertHandler {
	return &ConvertHandler{
		service:         service,
		uploads:         uploads,
		errorHandler:    errorHandler,
		validate:        validator.New(),
		defaultTemplate: defaultTemplate,
		logger:          logger.With(slog.String("handler", "convert")),
	}
}

// Routes returns the routes mounted at /api/convert.
func (h *ConvertHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Convert)
	r.Post("/custom", h.ConvertCustom)
	return r
}

// Convert handles POST /api/convert: the uploaded statement converted
// with the default template.
func (h *ConvertHandler) Convert(w http.ResponseWriter, r *http.Request) {
	h.convert(w, r, h.defaultTemplate, conversion.Overrides{})
}

// ConvertCustom handles POST /api/convert/custom: the upload plus form
// fields selecting a template and optional row/format overrides.
func (h *ConvertHandler) ConvertCustom(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseCustomFields(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	templateName := req.Template
	if templateName == "" {
		templateName = h.defaultTemplate
	}

	h.convert(w, r, templateName, overridesFromRequest(req))
}

func (h *ConvertHandler) convert(w http.ResponseWriter, r *http.Request, templateName string, overrides conversion.Overrides) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrTokenInvalid)
		return
	}

	// Cap the whole request body before the multipart parser buffers it
	r.Body = http.MaxBytesReader(w, r.Body, h.uploads.MaxBytes()+1<<20)

	file, header, err := r.FormFile(uploadFieldName)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrMissingFile)
		return
	}
	defer file.Close()

	if apiErr := h.uploads.ValidateUpload(header.Filename, header.Size); apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	result, err := h.service.Convert(r.Context(), user.Username, header.Filename, file, templateName, overrides)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]any{
		"status":      "success",
		"output_file": result.OutputFile,
		"template":    result.Template,
		"format":      result.Format,
		"document":    result.Document,
		"summary": map[string]int{
			"intraday_trades":  result.IntradayTrades,
			"long_term_trades": result.LongTermTrades,
		},
	})
}

// parseCustomFields reads the non-file multipart fields of a custom
// conversion request and validates them.
func (h *ConvertHandler) parseCustomFields(r *http.Request) (api.ConvertRequest, error) {
	// ParseMultipartForm runs implicitly on the first FormValue call; do it
	// explicitly so a malformed body fails before the file is touched.
	if err := r.ParseMultipartForm(h.uploads.MaxBytes() + 1<<20); err != nil {
		return api.ConvertRequest{}, apierrors.InvalidRequestWithError(err)
	}

	req := api.ConvertRequest{
		Template:     r.FormValue("template"),
		OutputFormat: r.FormValue("output_format"),
	}

	var errs []apierrors.ValidationError
	for field, target := range map[string]*int{
		"intraday_start": &req.IntradayStart,
		"intraday_end":   &req.IntradayEnd,
		"longterm_start": &req.LongTermStart,
		"longterm_end":   &req.LongTermEnd,
	} {
		raw := r.FormValue(field)
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, apierrors.ValidationError{Field: field, Message: "must be an integer"})
			continue
		}
		*target = value
	}
	if len(errs) > 0 {
		return api.ConvertRequest{}, apierrors.NewValidationErrors(errs)
	}

	if err := h.validate.Struct(req); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			errs = append(errs, apierrors.ValidationError{
				Field:   fieldErr.Field(),
				Message: "failed " + fieldErr.Tag() + " validation",
			})
		}
		return api.ConvertRequest{}, apierrors.NewValidationErrors(errs)
	}

	return req, nil
}

// overridesFromRequest maps supplied request fields to template
// overrides; zero row values mean "keep the template's window".
func overridesFromRequest(req api.ConvertRequest) conversion.Overrides {
	var o conversion.Overrides
	if req.IntradayStart > 0 {
		o.IntradayStart = &req.IntradayStart
	}
	if req.IntradayEnd > 0 {
		o.IntradayEnd = &req.IntradayEnd
	}
	if req.LongTermStart > 0 {
		o.LongTermStart = &req.LongTermStart
	}
	if req.LongTermEnd > 0 {
		o.LongTermEnd = &req.LongTermEnd
	}
	if req.OutputFormat != "" {
		format := domain.OutputFormat(req.OutputFormat)
		o.OutputFormat = &format
	}
	return o
}
