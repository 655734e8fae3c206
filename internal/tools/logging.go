package tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"mcp-kusto/internal/logging"
	"mcp-kusto/internal/server"
)

// ToolHandler is the signature for MCP tool handlers that take ServerContext.
type ToolHandler func(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error)

// WrapWithOperationLogging wraps a tool handler so every dispatched
// operation emits one structured log event (tool, cluster, duration,
// outcome) and one metrics sample. Protocol-level errors (non-nil Go
// errors) are logged too, though handlers are expected to report domain
// failures through structured error results instead.
func WrapWithOperationLogging(
	toolName string,
	handler ToolHandler,
	sc *server.ServerContext,
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logger := logging.WithTool(sc.Logger(), toolName)
		start := time.Now()

		result, err := handler(ctx, request, sc)

		duration := time.Since(start)
		cluster := StringArg(request.GetArguments(), "cluster")
		if cluster == "" {
			cluster = sc.Config().ResolveDefaultCluster()
		}

		status := logging.StatusSuccess
		switch {
		case err != nil:
			status = logging.StatusError
			logger.Error("tool invocation failed",
				logging.Cluster(cluster),
				logging.Duration(duration),
				logging.Status(status),
				logging.Err(err))
		case result != nil && result.IsError:
			status = logging.StatusError
			logger.Warn("tool returned error result",
				logging.Cluster(cluster),
				logging.Duration(duration),
				logging.Status(status))
		default:
			logger.Info("tool invocation completed",
				logging.Cluster(cluster),
				logging.Duration(duration),
				logging.Status(status))
		}

		sc.Metrics().RecordToolInvocation(toolName, status, duration)
		return result, err
	}
}
