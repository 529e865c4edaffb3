package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys - using constants for consistency.
const (
	attrStatus    = "status"
	attrOperation = "operation"
	attrResult    = "result"
	attrTool      = "tool"
	attrTransport = "transport"
)

// Operation values for Intuit API metrics.
const (
	OperationGraphQL      = "graphql"
	OperationRESTFallback = "rest_fallback"
	OperationTokenRefresh = "token_refresh"
)

// Metrics provides methods for recording observability metrics.
// The zero value is a no-op recorder, so callers never need nil checks.
type Metrics struct {
	// Intuit API metrics
	apiOperationsTotal   metric.Int64Counter
	apiOperationDuration metric.Float64Histogram

	// OAuth token lifecycle metrics
	tokenRefreshTotal metric.Int64Counter

	// MCP tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	// REST fallback metrics
	fallbackAttemptsTotal metric.Int64Counter
}

// NewMetrics creates a new Metrics instance with all instruments initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.apiOperationsTotal, err = meter.Int64Counter(
		"intuit_api_operations_total",
		metric.WithDescription("Total number of Intuit API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create intuit_api_operations_total counter: %w", err)
	}

	m.apiOperationDuration, err = meter.Float64Histogram(
		"intuit_api_operation_duration_seconds",
		metric.WithDescription("Intuit API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create intuit_api_operation_duration_seconds histogram: %w", err)
	}

	m.tokenRefreshTotal, err = meter.Int64Counter(
		"oauth_token_refresh_total",
		metric.WithDescription("Total number of OAuth token refresh attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_token_refresh_total counter: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	m.fallbackAttemptsTotal, err = meter.Int64Counter(
		"rest_fallback_attempts_total",
		metric.WithDescription("Total number of REST fallback attempts after GraphQL errors"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rest_fallback_attempts_total counter: %w", err)
	}

	return m, nil
}

// RecordAPIOperation records an Intuit API operation with operation type,
// status, and duration.
//
// Parameters:
//   - operation: Operation type (graphql, rest_fallback, token_refresh)
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the operation
func (m *Metrics) RecordAPIOperation(ctx context.Context, operation, status string, duration time.Duration) {
	if m.apiOperationsTotal == nil || m.apiOperationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.apiOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.apiOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordTokenRefresh records an OAuth token refresh attempt with result.
// Result should be one of: "success", "failure", "cached"
func (m *Metrics) RecordTokenRefresh(ctx context.Context, result string) {
	if m.tokenRefreshTotal == nil {
		return // Instrumentation not initialized
	}

	m.tokenRefreshTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrResult, result),
	))
}

// RecordToolInvocation records an MCP tool invocation with tool name, status, and duration.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordFallbackAttempt records a REST fallback attempt with result.
func (m *Metrics) RecordFallbackAttempt(ctx context.Context, status string) {
	if m.fallbackAttemptsTotal == nil {
		return // Instrumentation not initialized
	}

	m.fallbackAttemptsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrStatus, status),
	))
}
