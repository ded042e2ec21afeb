package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"taxwizz/internal/config"
	apierrors "taxwizz/internal/errors"
)

// officeTempPrefix marks lock files Excel leaves next to open workbooks.
const officeTempPrefix = "~$"

// UploadValidator screens uploaded statements before any parsing happens
type UploadValidator struct {
	logger     *slog.Logger
	extensions map[string]struct{}
	maxBytes   int64
}

// NewUploadValidator creates a validator from the conversion configuration
func NewUploadValidator(cfg config.ConversionConfig, logger *slog.Logger) *UploadValidator {
	if logger == nil {
		logger = slog.Default()
	}

	extensions := make(map[string]struct{}, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		extensions[strings.ToLower(ext)] = struct{}{}
	}

	return &UploadValidator{
		logger:     logger.With(slog.String("component", "upload_validator")),
		extensions: extensions,
		maxBytes:   cfg.MaxUploadBytes,
	}
}

// ValidateUpload checks an upload's name and size against the configured
// limits. size <= 0 means the size is unknown and only the name is checked.
func (v *UploadValidator) ValidateUpload(filename string, size int64) *apierrors.APIError {
	if strings.TrimSpace(filename) == "" {
		return apierrors.ErrMissingFile
	}

	base := filepath.Base(filename)
	if strings.HasPrefix(base, officeTempPrefix) {
		v.logger.Warn("rejected Office temp file", slog.String("filename", base))
		return apierrors.NewWithDetails(
			apierrors.ErrInvalidFileType.StatusCode,
			apierrors.ErrInvalidFileType.ErrorCode,
			"Office temporary files cannot be converted",
			base,
		)
	}

	ext := strings.ToLower(filepath.Ext(base))
	if _, ok := v.extensions[ext]; !ok {
		v.logger.Warn("rejected upload extension",
			slog.String("filename", base),
			slog.String("extension", ext))
		return apierrors.NewWithDetails(
			apierrors.ErrInvalidFileType.StatusCode,
			apierrors.ErrInvalidFileType.ErrorCode,
			fmt.Sprintf("File type %q not allowed, expected one of: %s", ext, strings.Join(v.AllowedExtensions(), ", ")),
			base,
		)
	}

	if size > 0 && v.maxBytes > 0 && size > v.maxBytes {
		v.logger.Warn("rejected oversized upload",
			slog.String("filename", base),
			slog.Int64("size_bytes", size),
			slog.Int64("limit_bytes", v.maxBytes))
		return apierrors.NewWithDetails(
			apierrors.ErrFileTooLarge.StatusCode,
			apierrors.ErrFileTooLarge.ErrorCode,
			fmt.Sprintf("Uploaded file is %d bytes, limit is %d bytes", size, v.maxBytes),
			base,
		)
	}

	return nil
}

// MaxBytes returns the configured upload size cap
func (v *UploadValidator) MaxBytes() int64 {
	return v.maxBytes
}

// AllowedExtensions returns the allow-list in sorted order
func (v *UploadValidator) AllowedExtensions() []string {
	extensions := make([]string, 0, len(v.extensions))
	for ext := range v.extensions {
		extensions = append(extensions, ext)
	}
	sort.Strings(extensions)
	return extensions
}

// DirWritable reports whether dir exists (or can be created) and accepts
// writes, by round-tripping a probe file.
func DirWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	probe := filepath.Join(dir, ".write_test")
	file, err := os.Create(probe)
	if err != nil {
		return fmt.Errorf("directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(probe)

	return nil
}
