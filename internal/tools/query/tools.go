// Package query implements the KQL execution tools: execute_kql for
// ad-hoc queries and analyze_data for templated aggregations.
package query

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"mcp-kusto/internal/server"
	"mcp-kusto/internal/tools"
)

// RegisterQueryTools registers the query execution tools with the MCP server.
func RegisterQueryTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	clusterNames := strings.Join(sc.Config().ClusterNames(), ", ")
	maxLimit := sc.Config().DefaultLimit

	executeTool := mcp.NewTool("execute_kql",
		mcp.WithDescription("Execute a read-only KQL (Kusto Query Language) query against a configured Kusto cluster"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("KQL query to execute. Management commands and mutating operations are rejected."),
		),
		mcp.WithString("cluster",
			mcp.Description(fmt.Sprintf("Cluster name (optional, default: %s). Available: %s", sc.Config().ResolveDefaultCluster(), clusterNames)),
		),
		mcp.WithString("database",
			mcp.Description("Database name (optional, uses the cluster's configured default)"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of rows to return (optional, capped at %d)", maxLimit)),
		),
	)
	s.AddTool(executeTool, tools.WrapWithOperationLogging("execute_kql", handleExecuteKQL, sc))

	analyzeTool := mcp.NewTool("analyze_data",
		mcp.WithDescription("Run a templated analysis query (row counts, time trends, schema patterns) over a table"),
		mcp.WithString("table",
			mcp.Required(),
			mcp.Description("Table name to analyze"),
		),
		mcp.WithString("analysis_type",
			mcp.Description("Type of analysis to perform"),
			mcp.Enum("summary", "trends", "patterns"),
		),
		mcp.WithString("time_column",
			mcp.Description("Datetime column for time-based analysis (required for trends)"),
		),
		mcp.WithString("cluster",
			mcp.Description(fmt.Sprintf("Cluster name (optional). Available: %s", clusterNames)),
		),
		mcp.WithString("database",
			mcp.Description("Database name (optional, uses the cluster's configured default)"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of rows to analyze (optional, capped at %d)", maxLimit)),
		),
	)
	s.AddTool(analyzeTool, tools.WrapWithOperationLogging("analyze_data", handleAnalyzeData, sc))

	return nil
}
