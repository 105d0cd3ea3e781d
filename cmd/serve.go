package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/giantswarm/prometheus-mcp/internal/server"
	"github.com/giantswarm/prometheus-mcp/internal/telemetry"
	"github.com/giantswarm/prometheus-mcp/internal/tools/prometheus"
)

// Supported transports.
const (
	transportStdio          = "stdio"
	transportSSE            = "sse"
	transportStreamableHTTP = "streamable-http"
)

const shutdownTimeout = 30 * time.Second

// serveOptions holds the flags of the serve command.
type serveOptions struct {
	debugMode  bool
	configFile string

	// Transport options
	transport       string
	httpAddr        string
	sseEndpoint     string
	messageEndpoint string
	httpEndpoint    string
}

func (o serveOptions) validate() error {
	switch o.transport {
	case transportStdio, transportSSE, transportStreamableHTTP:
		return nil
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: %s, %s, %s)",
			o.transport, transportStdio, transportSSE, transportStreamableHTTP)
	}
}

// newServeCmd creates the Cobra command for starting the MCP server.
func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Prometheus MCP server",
		Long: `Start the Prometheus MCP server to provide tools for querying
Prometheus via the Model Context Protocol.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - sse: Server-Sent Events over HTTP
  - streamable-http: Streamable HTTP transport

Configuration is read from the file given with --config, then overridden by
environment variables:
  PROMETHEUS_URL      - Prometheus server URL (default: http://localhost:9090)
  PROMETHEUS_USERNAME - Optional: Basic auth username
  PROMETHEUS_PASSWORD - Optional: Basic auth password
  PROMETHEUS_TOKEN    - Optional: Bearer token for authentication
  PROMETHEUS_ORGID    - Optional: Organization ID for multi-tenant setups

Tracing is enabled when OTEL_EXPORTER_OTLP_ENDPOINT is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return runServe(ctx, opts, cmd.Root().Version, os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().BoolVar(&opts.debugMode, "debug", false, "Enable debug logging (default: false)")
	cmd.Flags().StringVar(&opts.configFile, "config", "", "Path to a YAML configuration file")

	// Transport flags
	cmd.Flags().StringVar(&opts.transport, "transport", transportStdio, "Transport type: stdio, sse, or streamable-http")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", ":8080", "HTTP server address (for sse and streamable-http transports)")
	cmd.Flags().StringVar(&opts.sseEndpoint, "sse-endpoint", "/sse", "SSE endpoint path (for sse transport)")
	cmd.Flags().StringVar(&opts.messageEndpoint, "message-endpoint", "/message", "Message endpoint path (for sse transport)")
	cmd.Flags().StringVar(&opts.httpEndpoint, "http-endpoint", "/mcp", "HTTP endpoint path (for streamable-http transport)")

	return cmd
}

// runServe wires configuration, tracing and tools, then blocks on the
// selected transport until ctx is cancelled or the transport fails.
func runServe(ctx context.Context, opts serveOptions, version string, stdin io.Reader, stdout io.Writer) error {
	sink := server.NewStderrLogr(opts.debugMode)
	logger := server.NewLogger(sink)

	serverContext, err := server.NewServerContext(ctx,
		server.WithDebugMode(opts.debugMode),
		server.WithLogger(logger),
		server.WithVersion(version),
		server.WithConfigFile(opts.configFile),
	)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Error("Error during server context shutdown", "error", err)
		}
	}()

	shutdownTracer, err := telemetry.InitTracer(ctx, serviceName, serverContext.Version(), sink)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracer(flushCtx); err != nil {
			logger.Error("Error flushing traces", "error", err)
		}
	}()

	logConfig(logger, serverContext.PrometheusConfig())

	mcpSrv := mcpserver.NewMCPServer(serviceName, serverContext.Version(),
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithToolHandlerMiddleware(telemetry.ToolMiddleware()),
		mcpserver.WithRecovery(),
	)

	if err := prometheus.RegisterPrometheusTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register Prometheus tools: %w", err)
	}

	logger.Info("Starting Prometheus MCP server", "transport", opts.transport, "version", serverContext.Version())

	switch opts.transport {
	case transportStdio:
		return runStdioServer(serverContext.Context(), mcpSrv, logger, stdin, stdout)
	case transportSSE:
		sseServer := mcpserver.NewSSEServer(mcpSrv,
			mcpserver.WithSSEEndpoint(opts.sseEndpoint),
			mcpserver.WithMessageEndpoint(opts.messageEndpoint),
		)
		logger.Info("SSE server starting", "addr", opts.httpAddr,
			"sseEndpoint", opts.sseEndpoint, "messageEndpoint", opts.messageEndpoint)
		return runHTTPServer(serverContext.Context(), sseServer, opts.httpAddr, logger)
	case transportStreamableHTTP:
		httpServer := mcpserver.NewStreamableHTTPServer(mcpSrv,
			mcpserver.WithEndpointPath(opts.httpEndpoint),
		)
		logger.Info("Streamable HTTP server starting", "addr", opts.httpAddr, "endpoint", opts.httpEndpoint)
		return runHTTPServer(serverContext.Context(), httpServer, opts.httpAddr, logger)
	default:
		return opts.validate()
	}
}

// logConfig reports the effective Prometheus configuration without secrets.
func logConfig(logger server.Logger, config server.PrometheusConfig) {
	auth := "none"
	switch {
	case config.Token != "":
		auth = "bearer"
	case config.Username != "" && config.Password != "":
		auth = "basic"
	}
	logger.Info("Prometheus configuration", "url", config.URL, "auth", auth, "orgID", config.OrgID)
}

// runStdioServer serves MCP over stdin and stdout. Logs go to stderr only.
func runStdioServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, logger server.Logger, stdin io.Reader, stdout io.Writer) error {
	stdioServer := mcpserver.NewStdioServer(mcpSrv)
	stdioServer.SetErrorLogger(log.New(os.Stderr, serviceName+": ", log.LstdFlags))

	if err := stdioServer.Listen(ctx, stdin, stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server stopped with error: %w", err)
	}

	logger.Info("Server gracefully stopped")
	return nil
}

// httpTransport is implemented by the SSE and streamable HTTP servers.
type httpTransport interface {
	Start(addr string) error
	Shutdown(ctx context.Context) error
}

// runHTTPServer runs an HTTP based transport and shuts it down when ctx ends.
func runHTTPServer(ctx context.Context, srv httpTransport, addr string, logger server.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received, stopping server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("Server gracefully stopped")
	return nil
}
