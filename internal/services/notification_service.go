package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"taxwizz/internal/store"
	"taxwizz/pkg/contracts/domain"
)

// notificationLimit caps how many recent activities surface as
// notifications.
const notificationLimit = 10

// NotificationService renders a user's recent activity log as
// notifications for the frontend bell.
type NotificationService struct {
	activities store.ActivityStore
	logger     *slog.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(activities store.ActivityStore, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		activities: activities,
		logger:     logger.With(slog.String("component", "notifications")),
	}
}

// Recent returns the user's latest activities rendered as notifications,
// newest first.
func (s *NotificationService) Recent(ctx context.Context, username string) []domain.Notification {
	activities := s.activities.Recent(username, notificationLimit)

	notifications := make([]domain.Notification, 0, len(activities))
	for _, activity := range activities {
		notifications = append(notifications, domain.Notification{
			ID:        notificationID(activity),
			Type:      notificationLevel(activity.Type),
			Title:     notificationTitle(activity.Type),
			Message:   activity.Message,
			Timestamp: activity.Timestamp,
			Read:      false,
		})
	}

	s.logger.DebugContext(ctx, "notifications rendered",
		slog.String("username", username),
		slog.Int("count", len(notifications)))

	return notifications
}

// notificationID derives a stable short id from the activity's content, so
// the frontend can deduplicate across polls.
func notificationID(activity domain.Activity) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%d",
		activity.Type, activity.Message, activity.Filename, activity.Timestamp.UnixNano())))
	return hex.EncodeToString(sum[:8])
}

func notificationLevel(activityType domain.ActivityType) domain.NotificationLevel {
	switch activityType {
	case domain.ActivityConversion, domain.ActivityBackup:
		return domain.NotifySuccess
	case domain.ActivityError:
		return domain.NotifyError
	default:
		return domain.NotifyInfo
	}
}

func notificationTitle(activityType domain.ActivityType) string {
	switch activityType {
	case domain.ActivityLogin:
		return "Signed in"
	case domain.ActivityLogout:
		return "Signed out"
	case domain.ActivityUpload:
		return "Statement uploaded"
	case domain.ActivityConversion:
		return "Conversion complete"
	case domain.ActivityDownload:
		return "File downloaded"
	case domain.ActivityBackup:
		return "Backup created"
	case domain.ActivityPreferences:
		return "Preferences saved"
	case domain.ActivityError:
		return "Something went wrong"
	default:
		return "Activity"
	}
}
