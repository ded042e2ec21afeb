// Package app wires the application together: configuration, logging,
// OpenTelemetry, stores, services, HTTP handlers, the websocket hub,
// and the chi router, and runs the HTTP server with graceful shutdown.
//
// NewApplication builds the whole dependency graph; Run serves until an
// interrupt arrives and then drains in-flight requests within the
// configured shutdown timeout.
package app
