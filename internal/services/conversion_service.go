package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"taxwizz/internal/conversion"
	"taxwizz/internal/files"
	"taxwizz/internal/infrastructure"
	"taxwizz/internal/store"
	"taxwizz/pkg/contracts/domain"
	"taxwizz/pkg/contracts/events"
)

// Broadcaster pushes realtime updates to connected clients. The websocket
// hub satisfies it; a nil broadcaster disables realtime updates.
type Broadcaster interface {
	BroadcastStatus(username string, update domain.StatusUpdate)
	BroadcastProgress(step string, progress int, message string)
	BroadcastConversionComplete(payload events.ConversionCompletePayload)
	BroadcastError(code, message string)
}

// ConversionResult is the outcome of a successful conversion.
type ConversionResult struct {
	OutputFile     string              `json:"output_file"`
	OutputPath     string              `json:"-"`
	SizeBytes      int64               `json:"size_bytes"`
	Document       domain.TaxDocument  `json:"document"`
	Template       string              `json:"template"`
	Format         domain.OutputFormat `json:"format"`
	IntradayTrades int                 `json:"intraday_trades"`
	LongTermTrades int                 `json:"long_term_trades"`
	Duration       time.Duration       `json:"-"`
}

// ConversionService runs the statement-to-document pipeline: open the
// uploaded workbook, check its structure, extract the template's row
// windows, build the tax document, and persist it to the user's converted
// directory. Every run leaves an activity entry and a status update.
type ConversionService struct {
	registry   *conversion.Registry
	builder    *conversion.Builder
	files      *files.Manager
	activities store.ActivityStore
	statuses   store.StatusStore
	hub        Broadcaster
	metrics    *infrastructure.BusinessMetrics
	logger     *slog.Logger
	now        func() time.Time
}

// NewConversionService creates a new conversion service. hub and metrics
// may be nil.
func NewConversionService(
	registry *conversion.Registry,
	fileManager *files.Manager,
	activities store.ActivityStore,
	statuses store.StatusStore,
	hub Broadcaster,
	metrics *infrastructure.BusinessMetrics,
	logger *slog.Logger,
) *ConversionService {
	return &ConversionService{
		registry:   registry,
		builder:    conversion.NewBuilder(),
		files:      fileManager,
		activities: activities,
		statuses:   statuses,
		hub:        hub,
		metrics:    metrics,
		logger:     logger.With(slog.String("component", "conversion")),
		now:        time.Now,
	}
}

// Templates returns the available conversion templates sorted by name.
func (s *ConversionService) Templates() []conversion.Template {
	return s.registry.List()
}

// Convert runs the full pipeline for one uploaded statement. The template
// is resolved by name and the overrides are applied to a request-scoped
// copy, so concurrent requests never see each other's row windows.
func (s *ConversionService) Convert(ctx context.Context, username, filename string, statement io.Reader, templateName string, overrides conversion.Overrides) (ConversionResult, error) {
	started := s.now()

	template, err := s.registry.Get(templateName)
	if err != nil {
		s.fail(ctx, username, filename, "unknown template requested", templateName, "", 0, started, err)
		return ConversionResult{}, err
	}
	template = template.With(overrides)
	format := string(template.OutputFormat)

	s.pushStatus(username, domain.SyncProcessing, "Converting "+filename, 10)
	s.progress("open", 20, "Opening statement")

	sheet, err := conversion.OpenSheet(statement)
	if err != nil {
		s.fail(ctx, username, filename, "failed to open statement", templateName, format, 0, started, err)
		return ConversionResult{}, err
	}

	if err := conversion.CheckStructure(sheet); err != nil {
		s.fail(ctx, username, filename, "statement failed structural check", templateName, format, 0, started, err)
		return ConversionResult{}, err
	}

	s.progress("extract", 50, "Extracting trade records")
	intraday := conversion.Extract(sheet, template.IntradayStart, template.IntradayEnd)
	longTerm := conversion.Extract(sheet, template.LongTermStart, template.LongTermEnd)
	records := len(intraday) + len(longTerm)

	s.progress("build", 70, "Building tax document")
	document := s.builder.Build(intraday, longTerm, template.OutputFormat)

	s.progress("save", 90, "Saving document")
	outputFile := files.OutputFilename(username, filename, s.now())
	outputPath, size, err := s.files.SaveDocument(username, outputFile, document)
	if err != nil {
		s.fail(ctx, username, filename, "failed to save document", templateName, format, records, started, err)
		return ConversionResult{}, err
	}

	duration := s.now().Sub(started)
	s.activities.Record(username, domain.Activity{
		Type:     domain.ActivityConversion,
		Message:  "Converted " + filename,
		Filename: outputFile,
	})
	s.pushStatus(username, domain.SyncCompleted, "Conversion complete", 100)
	if s.hub != nil {
		s.hub.BroadcastConversionComplete(events.ConversionCompletePayload{
			Username:       username,
			OutputFile:     outputFile,
			Format:         format,
			IntradayTrades: len(intraday),
			LongTermTrades: len(longTerm),
		})
	}
	infrastructure.RecordConversionMetrics(ctx, s.metrics, templateName, format, records, duration, nil)

	s.logger.InfoContext(ctx, "conversion completed",
		slog.String("username", username),
		slog.String("template", templateName),
		slog.String("format", format),
		slog.String("output_file", outputFile),
		slog.Int("intraday_trades", len(intraday)),
		slog.Int("long_term_trades", len(longTerm)),
		slog.Duration("duration", duration))

	return ConversionResult{
		OutputFile:     outputFile,
		OutputPath:     outputPath,
		SizeBytes:      size,
		Document:       document,
		Template:       templateName,
		Format:         template.OutputFormat,
		IntradayTrades: len(intraday),
		LongTermTrades: len(longTerm),
		Duration:       duration,
	}, nil
}

func (s *ConversionService) fail(ctx context.Context, username, filename, message, template, format string, records int, started time.Time, err error) {
	s.activities.Record(username, domain.Activity{
		Type:     domain.ActivityError,
		Message:  message,
		Filename: filename,
	})
	s.pushStatus(username, domain.SyncError, message, 0)
	infrastructure.RecordConversionMetrics(ctx, s.metrics, template, format, records, s.now().Sub(started), err)

	s.logger.ErrorContext(ctx, "conversion failed",
		slog.String("username", username),
		slog.String("filename", filename),
		slog.String("template", template),
		slog.String("error", err.Error()))
}

func (s *ConversionService) pushStatus(username string, state domain.SyncState, message string, progress int) {
	update := s.statuses.Push(username, domain.StatusUpdate{
		State:    state,
		Message:  message,
		Progress: progress,
	})
	if s.hub != nil {
		s.hub.BroadcastStatus(username, update)
	}
}

func (s *ConversionService) progress(step string, progress int, message string) {
	if s.hub != nil {
		s.hub.BroadcastProgress(step, progress, message)
	}
}
