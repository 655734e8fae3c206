package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"mcp-kusto/internal/authcache"
	"mcp-kusto/internal/config"
	"mcp-kusto/internal/kusto"
	"mcp-kusto/internal/logging"
	"mcp-kusto/internal/server"
	"mcp-kusto/internal/tools/query"
	"mcp-kusto/internal/tools/schema"
)

// Transport type constants for the MCP server.
const (
	transportStdio          = "stdio"
	transportSSE            = "sse"
	transportStreamableHTTP = "streamable-http"
)

// newServeCmd creates the Cobra command for starting the MCP server.
func newServeCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
		logFile    string

		// Transport options
		transport       string
		httpAddr        string
		sseEndpoint     string
		messageEndpoint string
		httpEndpoint    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP Kusto server",
		Long: `Start the MCP Kusto server to expose read-only KQL query tools
over the Model Context Protocol.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - sse: Server-Sent Events over HTTP
  - streamable-http: Streamable HTTP transport

Configuration is read from --config, $MCP_KUSTO_CONFIG, or
~/.config/mcp-kusto/config.yaml; a single cluster can alternatively be
supplied through KUSTO_CLUSTER_URL / KUSTO_DATABASE. Authentication
reuses the cached Azure credential established by an earlier offline
login (for example 'az login'); the server never prompts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			// Flags override the file-supplied logging settings.
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}
			if logFile != "" {
				cfg.Logging.File = logFile
			}

			logger, closeLog, err := logging.Setup(cfg.Logging.Level, cfg.Logging.File)
			if err != nil {
				return err
			}
			defer func() { _ = closeLog() }()
			slog.SetDefault(logger)

			store, err := authcache.OpenStore()
			if err != nil {
				return fmt.Errorf("opening credential store: %w", err)
			}
			accessor, err := authcache.NewAccessor(store, logger)
			if err != nil {
				return fmt.Errorf("initializing credential accessor: %w", err)
			}

			factory := func(endpoint, token string) kusto.Client {
				return kusto.NewRESTClient(endpoint, token, logger)
			}
			registry := kusto.NewRegistry(cfg, accessor, factory, logger)

			// Handle shutdown signals before serving starts.
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sc, err := server.NewServerContext(ctx,
				server.WithConfig(cfg),
				server.WithRegistry(registry),
				server.WithLogger(logger),
			)
			if err != nil {
				return fmt.Errorf("creating server context: %w", err)
			}
			defer func() {
				if err := sc.Shutdown(); err != nil {
					logger.Error("server context shutdown", logging.Err(err))
				}
			}()

			mcpSrv := mcpserver.NewMCPServer("mcp-kusto", rootCmd.Version,
				mcpserver.WithToolCapabilities(true),
				mcpserver.WithResourceCapabilities(false, true),
				mcpserver.WithRecovery(),
			)

			if err := query.RegisterQueryTools(mcpSrv, sc); err != nil {
				return fmt.Errorf("registering query tools: %w", err)
			}
			if err := schema.RegisterSchemaTools(mcpSrv, sc); err != nil {
				return fmt.Errorf("registering schema tools: %w", err)
			}
			if err := schema.RegisterClusterResources(mcpSrv, sc); err != nil {
				return fmt.Errorf("registering cluster resources: %w", err)
			}

			logger.Info("starting mcp-kusto server",
				slog.String("transport", transport),
				slog.Int("clusters", len(cfg.Clusters)))

			switch transport {
			case transportStdio:
				return runStdioServer(mcpSrv)
			case transportSSE:
				return runSSEServer(ctx, mcpSrv, httpAddr, sseEndpoint, messageEndpoint)
			case transportStreamableHTTP:
				return runStreamableHTTPServer(ctx, mcpSrv, sc, httpAddr, httpEndpoint)
			default:
				return fmt.Errorf("unsupported transport %q (valid: %s, %s, %s)",
					transport, transportStdio, transportSSE, transportStreamableHTTP)
			}
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to the configuration file")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Log file path (overrides config; stderr if unset)")
	cmd.Flags().StringVar(&transport, "transport", transportStdio,
		fmt.Sprintf("Transport type: %s, %s, or %s", transportStdio, transportSSE, transportStreamableHTTP))
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "Listen address for HTTP transports")
	cmd.Flags().StringVar(&sseEndpoint, "sse-endpoint", "/sse", "SSE endpoint path")
	cmd.Flags().StringVar(&messageEndpoint, "message-endpoint", "/message", "SSE message endpoint path")
	cmd.Flags().StringVar(&httpEndpoint, "http-endpoint", "/mcp", "Streamable HTTP endpoint path")

	return cmd
}
