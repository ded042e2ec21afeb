package domain

import "time"

// ActivityType classifies entries in a user's activity log.
type ActivityType string

const (
	ActivityLogin       ActivityType = "login"
	ActivityLogout      ActivityType = "logout"
	ActivityUpload      ActivityType = "file_uploaded"
	ActivityConversion  ActivityType = "conversion_completed"
	ActivityDownload    ActivityType = "file_downloaded"
	ActivityBackup      ActivityType = "backup_created"
	ActivityPreferences ActivityType = "preferences_updated"
	ActivityError       ActivityType = "error_occurred"
)

// Activity is one entry in a user's activity log.
type Activity struct {
	ID        string       `json:"id"`
	Type      ActivityType `json:"type"`
	Message   string       `json:"message"`
	Filename  string       `json:"filename,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// SyncState describes the processing state reported on the status feed.
type SyncState string

const (
	SyncIdle       SyncState = "idle"
	SyncUploading  SyncState = "uploading"
	SyncProcessing SyncState = "processing"
	SyncCompleted  SyncState = "completed"
	SyncError      SyncState = "error"
)

// StatusUpdate is one entry on a user's status feed.
type StatusUpdate struct {
	State     SyncState `json:"state"`
	Message   string    `json:"message"`
	Progress  int       `json:"progress"`
	Timestamp time.Time `json:"timestamp"`
}

// NotificationLevel maps activity outcomes to notification severities.
type NotificationLevel string

const (
	NotifySuccess NotificationLevel = "success"
	NotifyError   NotificationLevel = "error"
	NotifyInfo    NotificationLevel = "info"
)

// Notification is a user-facing rendering of a recent activity.
type Notification struct {
	ID        string            `json:"id"`
	Type      NotificationLevel `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Read      bool              `json:"read"`
}

// UserStats aggregates a user's footprint on the service.
type UserStats struct {
	Username       string               `json:"username"`
	Conversions    int                  `json:"conversions"`
	FilesOnDisk    int                  `json:"files_on_disk"`
	BytesUsed      int64                `json:"bytes_used"`
	ActivityByType map[ActivityType]int `json:"activity_by_type"`
	LastActivity   *time.Time           `json:"last_activity,omitempty"`
}
