package config

import "time"

// Application constants shared across the service
const (
	// Application Info
	AppName    = "TaxWizz"
	AppVersion = "2.0.0"

	// Session Settings
	SessionTimeout     = 24 * time.Hour
	MaxLoginAttempts   = 5
	LoginBlockDuration = 15 * time.Minute

	// Upload Settings
	MaxUploadBytes   = 16 << 20
	UploadFieldName  = "file"
	OfficeTempPrefix = "~$"

	// Store Capacities
	ActivityLogCapacity = 100
	StatusFeedCapacity  = 20
	NotificationLimit   = 10

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// WebSocket Settings
	WebSocketPingPeriod      = 30 * time.Second
	WebSocketPongWait        = 60 * time.Second
	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024

	// File Paths (relative to working directory)
	DefaultDataDir = "data"
	DefaultLogsDir = "logs"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)
