// Package http contains the chi HTTP handlers of the TaxWizz API.
//
// Each handler owns one concern (auth, conversion, files, sync, ...) and
// exposes a Routes() chi.Router that the application mounts under the
// matching /api prefix. Handlers parse and validate requests, call into
// the services layer, and render JSON responses with go-chi/render;
// errors flow through the central ErrorHandler so every failure becomes
// an RFC 7807 problem response.
package http
