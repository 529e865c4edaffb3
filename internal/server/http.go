package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

// HTTPServer serves the MCP streamable HTTP transport together with the
// health check endpoints on one listener.
type HTTPServer struct {
	mcpServer     *mcpserver.MCPServer
	httpServer    *http.Server
	healthChecker *HealthChecker
	stateless     bool
}

// HTTPServerOption configures an HTTPServer.
type HTTPServerOption func(*HTTPServer)

// WithHealthChecker attaches health check endpoints to the server mux.
func WithHealthChecker(h *HealthChecker) HTTPServerOption {
	return func(s *HTTPServer) {
		s.healthChecker = h
	}
}

// WithStatelessMode disables per-session state in the streamable HTTP
// transport, for clients that reconnect frequently.
func WithStatelessMode() HTTPServerOption {
	return func(s *HTTPServer) {
		s.stateless = true
	}
}

// NewHTTPServer creates an HTTP server exposing the MCP server at /mcp.
func NewHTTPServer(mcpSrv *mcpserver.MCPServer, opts ...HTTPServerOption) *HTTPServer {
	s := &HTTPServer{mcpServer: mcpSrv}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start starts the HTTP server on the given address. It blocks until the
// server stops.
func (s *HTTPServer) Start(addr string) error {
	mux := http.NewServeMux()

	streamOpts := []mcpserver.StreamableHTTPOption{
		mcpserver.WithEndpointPath("/mcp"),
	}
	if s.stateless {
		streamOpts = append(streamOpts, mcpserver.WithStateLess(true))
	}
	streamServer := mcpserver.NewStreamableHTTPServer(s.mcpServer, streamOpts...)
	mux.Handle("/mcp", streamServer)

	if s.healthChecker != nil {
		s.healthChecker.RegisterHealthEndpoints(mux)
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return fmt.Errorf("server not started")
	}
	return s.httpServer.Shutdown(ctx)
}
