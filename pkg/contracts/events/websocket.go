// Package events contains the WebSocket message contracts shared by the
// hub and its browser clients.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Conversion lifecycle messages
	MessageTypeStatus             MessageType = "status"
	MessageTypeProgress           MessageType = "progress"
	MessageTypeConversionComplete MessageType = "conversion:complete"

	// Connection messages
	MessageTypeConnection MessageType = "connection"
	MessageTypeError      MessageType = "error"
)

// Envelope is the wire shape of every WebSocket message. Payload carries
// the type-specific body.
type Envelope struct {
	Type      MessageType `json:"type"`
	Subtype   string      `json:"subtype,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// StatusPayload is the body of a status message, mirroring the entries on
// the per-user status feed.
type StatusPayload struct {
	Username string `json:"username"`
	State    string `json:"state"`
	Message  string `json:"message"`
	Progress int    `json:"progress"`
}

// ProgressPayload is the body of a progress message emitted while a
// conversion moves through its steps.
type ProgressPayload struct {
	Step     string `json:"step"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`
}

// ConversionCompletePayload is the body of a conversion:complete message.
type ConversionCompletePayload struct {
	Username       string `json:"username"`
	OutputFile     string `json:"output_file"`
	Format         string `json:"format"`
	IntradayTrades int    `json:"intraday_trades"`
	LongTermTrades int    `json:"long_term_trades"`
}

// ConnectionPayload is sent to a client right after it registers.
type ConnectionPayload struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	ClientID string `json:"client_id"`
}

// ErrorPayload is the body of an error message.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
