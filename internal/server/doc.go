// Package server provides the MCP server context and the operational HTTP
// surface for the quickgraph application.
//
// # Key Components
//
// ServerContext holds the shared Intuit API client together with the
// instrumentation hooks (metrics, audit logging) that tool handlers use.
// It tracks shutdown state so in-flight handlers can bail out early.
//
// MetricsServer serves Prometheus metrics on a dedicated port, isolated
// from MCP traffic. It also hosts the health check endpoints.
//
// HealthChecker implements Kubernetes-style liveness (/healthz) and
// readiness (/readyz) probes. Readiness reflects server startup state,
// shutdown state, and whether the Intuit client has been configured.
package server
