// Package logging provides structured logging utilities for the quickgraph server.
//
// This package centralizes logging patterns to ensure consistent, structured
// logging throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - Credential sanitization (tokens are never logged directly)
//   - Consistent attribute naming across the codebase
//   - Logger adapter interface for flexibility
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "intuit.execute")
//	logger.Info("executing query",
//	    logging.Status("success"))
//
// Sanitize sensitive data before logging:
//
//	logger.Debug("using cached token",
//	    "token", logging.SanitizeToken(token))
//
// # Security Considerations
//
// Access and refresh tokens are only ever logged through SanitizeToken, which
// reports the length without exposing any token content. All diagnostics go
// to stderr and never appear in tool results.
package logging
