// Package instrumentation provides OpenTelemetry instrumentation for the
// quickgraph MCP server.
//
// This package enables production-grade observability through:
//   - OpenTelemetry metrics for MCP tool invocations, Intuit API operations,
//     and OAuth token lifecycle events
//   - Distributed tracing for tool and API call flows
//   - Prometheus metrics export via /metrics endpoint on a dedicated port
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// The package exposes the following metric categories:
//
// Intuit API Metrics:
//   - intuit_api_operations_total: Counter of API operations by operation and status
//   - intuit_api_operation_duration_seconds: Histogram of API operation durations
//
// OAuth Token Metrics:
//   - oauth_token_refresh_total: Counter of token refresh attempts by result
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// REST Fallback Metrics:
//   - rest_fallback_attempts_total: Counter of REST fallback attempts by status
//
// # Configuration
//
// Instrumentation is configured through environment variables; see
// DefaultConfig. Set INSTRUMENTATION_ENABLED=false to disable entirely, in
// which case a no-op Metrics recorder is returned and all recording calls
// become cheap no-ops.
package instrumentation
