// Package api contains API contract definitions for the TaxWizz service.
// Version v1 represents the current stable API version.
package api

// Auth API Requests

// LoginRequest carries the credentials for POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1,max=64"`
	Password string `json:"password" validate:"required,min=1,max=128"`
}

// Conversion API Requests

// ConvertRequest carries the optional customization fields accepted by
// POST /api/convert/custom as multipart form fields alongside the upload.
// Zero row values mean "use the template's value"; the validator only
// constrains fields that were actually supplied.
type ConvertRequest struct {
	Template      string `json:"template" form:"template" validate:"omitempty,min=1,max=64"`
	IntradayStart int    `json:"intraday_start" form:"intraday_start" validate:"omitempty,min=1"`
	IntradayEnd   int    `json:"intraday_end" form:"intraday_end" validate:"omitempty,min=1"`
	LongTermStart int    `json:"longterm_start" form:"longterm_start" validate:"omitempty,min=1"`
	LongTermEnd   int    `json:"longterm_end" form:"longterm_end" validate:"omitempty,min=1"`
	OutputFormat  string `json:"output_format" form:"output_format" validate:"omitempty,oneof=standard compact"`
}

// Preferences API Requests

// PreferencesRequest is the body of PUT /api/preferences.
type PreferencesRequest struct {
	Theme           string `json:"theme" validate:"required,oneof=light dark system"`
	DefaultTemplate string `json:"default_template" validate:"required,min=1,max=64"`
	Notifications   bool   `json:"notifications"`
	AutoSave        bool   `json:"auto_save"`
}

// Sync API Requests

// SyncHistoryRequest carries the query parameters of GET /api/sync/history.
type SyncHistoryRequest struct {
	Limit int `json:"limit" query:"limit" validate:"omitempty,min=1,max=100"`
}
