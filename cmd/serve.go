package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/quickgraph/internal/instrumentation"
	"github.com/teemow/quickgraph/internal/intuit"
	"github.com/teemow/quickgraph/internal/logging"
	"github.com/teemow/quickgraph/internal/server"
	"github.com/teemow/quickgraph/internal/tools/intuit_tools"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

func newServeCmd() *cobra.Command {
	var (
		debugMode bool
		transport string
		httpAddr  string
		stateless bool
		// Metrics server configuration
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server exposing the Intuit
GraphQL API to AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport

Configuration:
  Credentials are read from environment variables:
    INTUIT_CLIENT_ID       OAuth2 client ID (required)
    INTUIT_CLIENT_SECRET   OAuth2 client secret (required)
    INTUIT_REFRESH_TOKEN   OAuth2 refresh token (required)
    INTUIT_ENVIRONMENT     "sandbox" (default) or "production"
    INTUIT_COMPANY_ID      QuickBooks company ID, enables realm injection
                           and the REST company-info fallback (optional)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			metricsConfig := MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			}
			loadMetricsEnvVars(cmd, &metricsConfig)

			return runServe(transport, debugMode, httpAddr, stateless, metricsConfig)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&stateless, "stateless", false, "Disable per-session state for the streamable-http transport")

	// Metrics server flags
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(transport string, debugMode bool, httpAddr string, stateless bool, metricsConfig MetricsConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	setupLogging(transport, debugMode)

	// Load and validate the Intuit configuration before anything else.
	// Missing credentials are fatal; the tool is never served half-configured.
	config := intuit.ConfigFromEnv()
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid Intuit configuration: %w", err)
	}

	slog.Debug("Intuit configuration loaded",
		"environment", config.Environment,
		"client_id", logging.SanitizeToken(config.ClientID),
		"client_secret", logging.SanitizeToken(config.ClientSecret),
		"refresh_token", logging.SanitizeToken(config.RefreshToken),
		"realm_configured", config.RealmID != "",
		"graphql_url", config.ResolvedGraphQLURL(),
		"token_url", config.ResolvedTokenURL(),
	)

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			if transport != "stdio" {
				log.Printf("Error during instrumentation shutdown: %v", err)
			}
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	var healthChecker *server.HealthChecker
	if transport != "stdio" && metricsConfig.Enabled && provider.Enabled() {
		var err error
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsConfig.Addr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		// Use ready channel to confirm metrics server started successfully
		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		// Wait for metrics server to be ready or fail
		select {
		case <-metricsReady:
			log.Printf("Metrics server started on %s", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
	}

	// Build the Intuit client with the cached token provider
	var tokenOpts []intuit.TokenProviderOption
	if provider.Enabled() {
		tokenOpts = append(tokenOpts, intuit.WithTokenMetrics(provider.Metrics()))
	}
	tokens := intuit.NewCachedTokenProvider(config, tokenOpts...)
	intuitClient := intuit.NewClient(config, tokens,
		intuit.WithUserAgent("quickgraph/"+version),
	)

	serverContext := server.NewServerContext(shutdownCtx, intuitClient)

	// Set metrics and audit logger on server context for tool instrumentation
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(nil, instrConfig.AuditLogging))
	}
	defer func() {
		// Shutdown metrics server first
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Printf("Error during metrics server shutdown: %v", err)
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			if transport != "stdio" {
				log.Printf("Error during server context shutdown: %v", err)
			}
		}
	}()

	// Create MCP server
	mcpSrv := mcpserver.NewMCPServer("quickgraph", version,
		mcpserver.WithToolCapabilities(true),
	)

	// Register all tools
	if err := registerAllTools(mcpSrv, serverContext); err != nil {
		return err
	}

	if transport != "stdio" {
		log.Printf("Connecting to Intuit %s environment", config.Environment)
		if config.RealmID != "" {
			log.Printf("QuickBooks company ID configured: realm injection and REST fallback enabled")
		}
	}

	// Start the appropriate server based on transport type
	switch transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "streamable-http":
		fmt.Printf("Starting quickgraph MCP server with %s transport...\n", transport)
		healthChecker = server.NewHealthChecker(serverContext)
		return runHTTPServer(shutdownCtx, mcpSrv, healthChecker, httpAddr, stateless, metricsConfig)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", transport)
	}
}

// setupLogging configures the default slog logger. For stdio transport all
// logs go to stderr so they never corrupt the protocol stream.
func setupLogging(transport string, debugMode bool) {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))

	if transport == "stdio" {
		// log package output must stay off stdout as well
		log.SetOutput(os.Stderr)
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, healthChecker *server.HealthChecker, addr string, stateless bool, metricsConfig MetricsConfig) error {
	opts := []server.HTTPServerOption{
		server.WithHealthChecker(healthChecker),
	}
	if stateless {
		opts = append(opts, server.WithStatelessMode())
	}
	httpServer := server.NewHTTPServer(mcpSrv, opts...)

	fmt.Printf("Streamable HTTP server starting on %s\n", addr)
	fmt.Printf("  HTTP endpoint: /mcp\n")
	fmt.Printf("  Health endpoints: /healthz, /readyz\n")
	if metricsConfig.Enabled {
		fmt.Printf("  Metrics endpoint: %s/metrics\n", metricsConfig.Addr)
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(addr); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		fmt.Println("Shutdown signal received, stopping HTTP server...")
		if healthChecker != nil {
			healthChecker.SetReady(false)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		fmt.Println("HTTP server stopped normally")
	}

	fmt.Println("HTTP server gracefully stopped")
	return nil
}

// registerAllTools registers all MCP tools
func registerAllTools(mcpSrv *mcpserver.MCPServer, ctx *server.ServerContext) error {
	// Define all tool registrations
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Intuit",
			register: func() error {
				return intuit_tools.RegisterIntuitTools(mcpSrv, ctx)
			},
		},
	}

	// Register all tools
	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}

// loadMetricsEnvVars loads metrics server configuration from environment
// variables. Environment variables only apply when the corresponding flag was
// not explicitly set.
func loadMetricsEnvVars(cmd *cobra.Command, config *MetricsConfig) {
	if !cmd.Flags().Changed("metrics-enabled") {
		if enabled := os.Getenv("METRICS_ENABLED"); enabled != "" {
			config.Enabled = enabled == "true"
		}
	}

	if !cmd.Flags().Changed("metrics-addr") {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			config.Addr = addr
		}
	}
}
