// Package server provides the ServerContext pattern and related
// infrastructure for the mcp-kusto server.
//
// The ServerContext struct encapsulates the long-lived dependencies of the
// server and provides clean separation of concerns. It includes:
//
//   - Cluster connection registry
//   - Immutable configuration
//   - Structured logger
//   - Metrics recorder
//   - Context for cancellation and lifecycle management
//
// All dependencies are injected using functional options, making the code
// testable and modular:
//
//	serverCtx, err := server.NewServerContext(ctx,
//		server.WithConfig(cfg),
//		server.WithRegistry(registry),
//		server.WithLogger(logger),
//	)
//	if err != nil {
//		return err
//	}
//	defer serverCtx.Shutdown()
//
// The package also provides the HTTP-transport extras: health check
// endpoints (/healthz, /readyz), the Prometheus metrics registry exposed
// at /metrics, and the request-count middleware. These are only wired up
// for the SSE and streamable HTTP transports; stdio mode has no HTTP
// surface.
package server
