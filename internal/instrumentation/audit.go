package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// queryPreviewLimit bounds the query text included in audit logs.
const queryPreviewLimit = 100

// ToolInvocation captures all information about a tool invocation for audit
// logging. This provides an audit trail for all MCP tool calls.
//
// # Privacy Considerations
//
// The QueryText field may embed customer data in GraphQL literals. It is only
// included in log output when the audit logger is configured with
// IncludeQueryText; otherwise only the realm and outcome are recorded.
type ToolInvocation struct {
	// Tool name
	Tool string

	// Target information
	Realm     string // Company/realm identifier the call applies to
	Operation string // Operation type (graphql, rest_fallback)
	QueryText string // Leading portion of the GraphQL query text

	// Execution details
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	// Whether the REST fallback replaced the GraphQL result
	FallbackUsed bool

	// Tracing context
	TraceID string
	SpanID  string
}

// Status returns "success" or "error" based on the Success field.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns slog attributes for structured logging without query text.
func (ti *ToolInvocation) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}

	if ti.Realm != "" {
		attrs = append(attrs, slog.String("realm", ti.Realm))
	}
	if ti.Operation != "" {
		attrs = append(attrs, slog.String("operation", ti.Operation))
	}
	if ti.FallbackUsed {
		attrs = append(attrs, slog.Bool("fallback_used", true))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}

	return attrs
}

// LogAuditAttrs returns slog attributes including the query text preview.
// Route these logs to storage with appropriate access controls.
func (ti *ToolInvocation) LogAuditAttrs() []slog.Attr {
	attrs := ti.LogAttrs()

	if ti.QueryText != "" {
		attrs = append(attrs, slog.String("query", ti.QueryText))
	}
	if ti.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", ti.SpanID))
	}

	return attrs
}

// NewToolInvocation creates a new ToolInvocation with timing started.
// Call Complete() when the tool operation finishes.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		StartTime: time.Now(),
	}
}

// WithRealm sets the company/realm identifier.
func (ti *ToolInvocation) WithRealm(realm string) *ToolInvocation {
	ti.Realm = realm
	return ti
}

// WithOperation sets the operation type.
func (ti *ToolInvocation) WithOperation(operation string) *ToolInvocation {
	ti.Operation = operation
	return ti
}

// WithQueryText records a bounded preview of the query text.
func (ti *ToolInvocation) WithQueryText(query string) *ToolInvocation {
	if len(query) > queryPreviewLimit {
		query = query[:queryPreviewLimit]
	}
	ti.QueryText = query
	return ti
}

// WithFallbackUsed marks that the REST fallback replaced the GraphQL result.
func (ti *ToolInvocation) WithFallbackUsed() *ToolInvocation {
	ti.FallbackUsed = true
	return ti
}

// fallbackMarkerKey carries the per-invocation fallback flag through context.
type fallbackMarkerKey struct{}

// ContextWithFallbackMarker returns a context carrying a slot the tool handler
// sets when the REST fallback replaces the GraphQL result. The instrumented
// wrapper installs the marker before calling the handler and reads it back
// when building the audit record.
func ContextWithFallbackMarker(ctx context.Context) context.Context {
	return context.WithValue(ctx, fallbackMarkerKey{}, new(bool))
}

// MarkFallbackUsed flags the marker carried in ctx, if any.
func MarkFallbackUsed(ctx context.Context) {
	if used, ok := ctx.Value(fallbackMarkerKey{}).(*bool); ok {
		*used = true
	}
}

// FallbackUsedFromContext reports whether MarkFallbackUsed was called on a
// context derived from ContextWithFallbackMarker.
func FallbackUsedFromContext(ctx context.Context) bool {
	used, ok := ctx.Value(fallbackMarkerKey{}).(*bool)
	return ok && *used
}

// WithSpanContext extracts trace context from the current span.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		ti.TraceID = span.SpanContext().TraceID().String()
		ti.SpanID = span.SpanContext().SpanID().String()
	}
	return ti
}

// Complete marks the invocation as completed and calculates duration.
// Returns the same ToolInvocation for method chaining.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// CompleteWithError marks the invocation as failed with the given error.
func (ti *ToolInvocation) CompleteWithError(err error) *ToolInvocation {
	return ti.Complete(false, err)
}

// CompleteSuccess marks the invocation as successful.
func (ti *ToolInvocation) CompleteSuccess() *ToolInvocation {
	return ti.Complete(true, nil)
}

// AuditLogger provides structured audit logging for tool invocations.
type AuditLogger struct {
	logger           *slog.Logger
	includeQueryText bool
	enabled          bool
}

// NewAuditLogger creates a new AuditLogger with the given slog.Logger.
// By default, query text is not included in logs.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:           logger,
		includeQueryText: false,
		enabled:          true,
	}
}

// NewAuditLoggerWithConfig creates a new AuditLogger with the given configuration.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:           logger,
		includeQueryText: config.IncludeQueryText,
		enabled:          config.Enabled,
	}
}

// SetEnabled sets whether audit logging is enabled.
func (al *AuditLogger) SetEnabled(enabled bool) {
	al.enabled = enabled
}

// LogToolInvocation logs a tool invocation using the standard log attributes.
// When the logger is configured with IncludeQueryText, the bounded query
// preview is included; otherwise only realm and outcome are recorded.
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if !al.enabled {
		return
	}

	var attrs []slog.Attr
	if al.includeQueryText {
		attrs = ti.LogAuditAttrs()
	} else {
		attrs = ti.LogAttrs()
	}

	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	if ti.Success {
		al.logger.Info("tool_executed", args...)
	} else {
		al.logger.Warn("tool_failed", args...)
	}
}
