// Package services implements the business logic layer between the HTTP
// handlers and the stores: authentication, statement conversion,
// notifications, and health reporting.
//
// # Architecture
//
// Services follow these principles:
//
//  1. Dependencies come in through constructors, never globals
//  2. Context propagation for cancellation and tracing
//  3. Sentinel errors from internal/errors so handlers can map them
//     to problem responses with errors.Is
//  4. Structured logging through an injected *slog.Logger
//
// # Available Services
//
//   - AuthService: login, logout, and JWT validation
//   - ConversionService: the upload-to-document pipeline
//   - NotificationService: renders recent activity as notifications
//   - HealthService: liveness, readiness, and version reporting
package services
