package server

import (
	"context"
	"sync"

	"github.com/teemow/quickgraph/internal/instrumentation"
	"github.com/teemow/quickgraph/internal/intuit"
)

// ServerContext holds the shared state for the MCP server: the Intuit client,
// the metrics recorder, and the audit logger. Tool handlers receive it at
// registration time instead of reaching for globals.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	client      *intuit.Client
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context wrapping the given Intuit client.
func NewServerContext(ctx context.Context, client *intuit.Client) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:    shutdownCtx,
		cancel: cancel,
		client: client,
	}
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// IntuitClient returns the Intuit API client.
func (sc *ServerContext) IntuitClient() *intuit.Client {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.client
}

// SetIntuitClient replaces the Intuit API client. Used by tests.
func (sc *ServerContext) SetIntuitClient(client *intuit.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.client = client
}

// Metrics returns the metrics recorder, or nil if instrumentation is not configured.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetMetrics sets the metrics recorder for tool instrumentation.
func (sc *ServerContext) SetMetrics(metrics *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = metrics
}

// AuditLogger returns the audit logger, or nil if not configured.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// SetAuditLogger sets the audit logger for tool instrumentation.
func (sc *ServerContext) SetAuditLogger(auditLogger *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = auditLogger
}

// IsShutdown returns whether the server has been shutdown.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
