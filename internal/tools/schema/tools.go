// Package schema implements the metadata tools (list_tables,
// get_table_schema, list_functions) and the kusto:// MCP resources.
// These operations issue server-built management commands only, so the
// query safety gate is bypassed by construction.
package schema

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"mcp-kusto/internal/server"
	"mcp-kusto/internal/tools"
)

// Management commands used by the metadata tools.
const (
	showTablesCommand      = ".show tables | project TableName"
	showFunctionsCommand   = ".show functions | project Name, Parameters"
	showTableSchemaCommand = ".show table %s schema as json"
)

// RegisterSchemaTools registers the metadata tools with the MCP server.
func RegisterSchemaTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	clusterNames := strings.Join(sc.Config().ClusterNames(), ", ")

	clusterOpt := mcp.WithString("cluster",
		mcp.Description(fmt.Sprintf("Cluster name (optional, default: %s). Available: %s", sc.Config().ResolveDefaultCluster(), clusterNames)),
	)
	databaseOpt := mcp.WithString("database",
		mcp.Description("Database name (optional, uses the cluster's configured default)"),
	)

	listTablesTool := mcp.NewTool("list_tables",
		mcp.WithDescription("List all tables available in a Kusto database"),
		clusterOpt,
		databaseOpt,
	)
	s.AddTool(listTablesTool, tools.WrapWithOperationLogging("list_tables", handleListTables, sc))

	schemaTool := mcp.NewTool("get_table_schema",
		mcp.WithDescription("Get the schema of a specific table in a Kusto database"),
		mcp.WithString("table",
			mcp.Required(),
			mcp.Description("Table name to get the schema for"),
		),
		clusterOpt,
		databaseOpt,
	)
	s.AddTool(schemaTool, tools.WrapWithOperationLogging("get_table_schema", handleGetTableSchema, sc))

	listFunctionsTool := mcp.NewTool("list_functions",
		mcp.WithDescription("List stored functions available in a Kusto database"),
		clusterOpt,
		databaseOpt,
	)
	s.AddTool(listFunctionsTool, tools.WrapWithOperationLogging("list_functions", handleListFunctions, sc))

	return nil
}
