package services

import (
	"context"
	"fmt"
	"log/slog"

	"taxwizz/internal/files"
	"taxwizz/internal/store"
	"taxwizz/pkg/contracts/domain"
)

// StatsService aggregates a user's footprint: conversions recorded, files
// on disk, and activity counts.
type StatsService struct {
	files      *files.Manager
	activities store.ActivityStore
	logger     *slog.Logger
}

// NewStatsService creates a new stats service
func NewStatsService(fileManager *files.Manager, activities store.ActivityStore, logger *slog.Logger) *StatsService {
	return &StatsService{
		files:      fileManager,
		activities: activities,
		logger:     logger.With(slog.String("component", "stats")),
	}
}

// ForUser computes the user's stats. Users with no activity and no files
// get a zero-valued report, not an error.
func (s *StatsService) ForUser(ctx context.Context, username string) (domain.UserStats, error) {
	fileCount, bytesUsed, err := s.files.Stats(username)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("stats for %s: %w", username, err)
	}

	byType := s.activities.CountByType(username)

	stats := domain.UserStats{
		Username:       username,
		Conversions:    byType[domain.ActivityConversion],
		FilesOnDisk:    fileCount,
		BytesUsed:      bytesUsed,
		ActivityByType: byType,
	}

	if last, ok := s.activities.Last(username); ok {
		ts := last.Timestamp
		stats.LastActivity = &ts
	}

	s.logger.DebugContext(ctx, "stats computed",
		slog.String("username", username),
		slog.Int("files", fileCount),
		slog.Int64("bytes", bytesUsed))

	return stats, nil
}
