package instrumentation

import (
	"context"
	"testing"
	"time"
)

func newTestProvider(t *testing.T, ctx context.Context) *Provider {
	t.Helper()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })
	return provider
}

func TestMetrics_RecordAPIOperation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()
	if metrics == nil {
		t.Fatal("expected metrics to be non-nil")
	}

	// Should not panic
	metrics.RecordAPIOperation(ctx, OperationGraphQL, StatusSuccess, 100*time.Millisecond)
	metrics.RecordAPIOperation(ctx, OperationRESTFallback, StatusError, 50*time.Millisecond)
}

func TestMetrics_RecordTokenRefresh(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	metrics.RecordTokenRefresh(ctx, RefreshResultSuccess)
	metrics.RecordTokenRefresh(ctx, RefreshResultFailure)
	metrics.RecordTokenRefresh(ctx, RefreshResultCached)
}

func TestMetrics_RecordToolInvocation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	metrics.RecordToolInvocation(ctx, "intuit_execute_graphql", StatusSuccess, 200*time.Millisecond)
	metrics.RecordToolInvocation(ctx, "intuit_execute_graphql", StatusError, 10*time.Millisecond)
}

func TestMetrics_RecordFallbackAttempt(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	metrics.RecordFallbackAttempt(ctx, StatusSuccess)
	metrics.RecordFallbackAttempt(ctx, StatusError)
}

func TestMetrics_ZeroValueIsNoOp(t *testing.T) {
	ctx := context.Background()
	var m Metrics

	// The zero value must be safe without initialization
	m.RecordAPIOperation(ctx, OperationGraphQL, StatusSuccess, time.Second)
	m.RecordTokenRefresh(ctx, RefreshResultSuccess)
	m.RecordToolInvocation(ctx, "tool", StatusSuccess, time.Second)
	m.RecordFallbackAttempt(ctx, StatusSuccess)
}
