package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"taxwizz/internal/conversion"
	"taxwizz/pkg/contracts/domain"
)

// options collects the command-line flags for one conversion run.
type options struct {
	input         string
	output        string
	template      string
	format        string
	intradayStart int
	intradayEnd   int
	longTermStart int
	longTermEnd   int
}

func main() {
	var opts options
	flag.StringVar(&opts.input, "in", "", "path to the broker statement (.xlsx)")
	flag.StringVar(&opts.output, "out", "", "output JSON path (defaults to the input path with a .json extension)")
	flag.StringVar(&opts.template, "template", "default", "conversion template name")
	flag.StringVar(&opts.format, "format", "", "output format override: standard or compact")
	flag.IntVar(&opts.intradayStart, "intraday-start", 0, "override the first intraday row (1-based)")
	flag.IntVar(&opts.intradayEnd, "intraday-end", 0, "override the last intraday row (1-based)")
	flag.IntVar(&opts.longTermStart, "longterm-start", 0, "override the first long-term row (1-based)")
	flag.IntVar(&opts.longTermEnd, "longterm-end", 0, "override the last long-term row (1-based)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	result, err := run(opts, logger)
	if err != nil {
		logger.Error("Conversion failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("Converted %d intraday and %d long-term trades\n", result.IntradayTrades, result.LongTermTrades)
	fmt.Printf("Wrote %s (%s format)\n", result.OutputPath, result.Format)
}

// result summarizes a completed conversion for the final report.
type result struct {
	OutputPath     string
	Format         domain.OutputFormat
	IntradayTrades int
	LongTermTrades int
}

// run performs the whole conversion: open the statement, check its
// structure, extract both row windows, build the document, and write
// the indented JSON next to the input.
func run(opts options, logger *slog.Logger) (result, error) {
	if opts.input == "" {
		return result{}, fmt.Errorf("missing -in: path to the broker statement")
	}

	template, err := resolveTemplate(opts)
	if err != nil {
		return result{}, err
	}

	f, err := os.Open(opts.input)
	if err != nil {
		return result{}, fmt.Errorf("failed to open statement: %w", err)
	}
	defer f.Close()

	sheet, err := conversion.OpenSheet(f)
	if err != nil {
		return result{}, fmt.Errorf("failed to read workbook: %w", err)
	}
	if err := conversion.CheckStructure(sheet); err != nil {
		return result{}, err
	}

	logger.Info("Statement opened",
		slog.String("input", opts.input),
		slog.String("sheet", sheet.Name()),
		slog.Int("rows", sheet.RowCount()))

	intraday := conversion.Extract(sheet, template.IntradayStart, template.IntradayEnd)
	longTerm := conversion.Extract(sheet, template.LongTermStart, template.LongTermEnd)
	doc := conversion.NewBuilder().Build(intraday, longTerm, template.OutputFormat)

	outputPath := opts.output
	if outputPath == "" {
		ext := filepath.Ext(opts.input)
		outputPath = strings.TrimSuffix(opts.input, ext) + ".json"
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return result{}, fmt.Errorf("failed to encode document: %w", err)
	}
	if err := os.WriteFile(outputPath, append(data, '\n'), 0o644); err != nil {
		return result{}, fmt.Errorf("failed to write output: %w", err)
	}

	logger.Info("Conversion complete",
		slog.String("template", template.Name),
		slog.String("format", string(template.OutputFormat)),
		slog.Int("intraday_trades", len(intraday)),
		slog.Int("longterm_trades", len(longTerm)),
		slog.String("output", outputPath))

	return result{
		OutputPath:     outputPath,
		Format:         template.OutputFormat,
		IntradayTrades: len(intraday),
		LongTermTrades: len(longTerm),
	}, nil
}

// resolveTemplate looks the template up and applies the flag overrides.
func resolveTemplate(opts options) (conversion.Template, error) {
	template, err := conversion.NewRegistry().Get(opts.template)
	if err != nil {
		return conversion.Template{}, err
	}

	var overrides conversion.Overrides
	if opts.intradayStart > 0 {
		overrides.IntradayStart = &opts.intradayStart
	}
	if opts.intradayEnd > 0 {
		overrides.IntradayEnd = &opts.intradayEnd
	}
	if opts.longTermStart > 0 {
		overrides.LongTermStart = &opts.longTermStart
	}
	if opts.longTermEnd > 0 {
		overrides.LongTermEnd = &opts.longTermEnd
	}
	if opts.format != "" {
		format := domain.OutputFormat(opts.format)
		if !format.Valid() {
			return conversion.Template{}, fmt.Errorf("unsupported output format %q", opts.format)
		}
		overrides.OutputFormat = &format
	}

	return template.With(overrides), nil
}
