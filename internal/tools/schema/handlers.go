package schema

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"mcp-kusto/internal/kusto"
	"mcp-kusto/internal/server"
	"mcp-kusto/internal/tools"
)

// metadataResponse is the success payload for metadata tools.
type metadataResponse struct {
	Cluster  string `json:"cluster"`
	Database string `json:"database"`
	Table    string `json:"table,omitempty"`
	*kusto.Payload
}

func handleListTables(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	cluster, database, err := tools.ResolveTarget(sc, request.GetArguments())
	if err != nil {
		return tools.NewErrorResult(err), nil
	}

	payload, err := tools.ExecuteMgmt(ctx, sc, cluster, database, showTablesCommand)
	if err != nil {
		return tools.NewErrorResult(err), nil
	}

	return tools.NewJSONResult(metadataResponse{
		Cluster:  cluster,
		Database: database,
		Payload:  payload,
	})
}

func handleGetTableSchema(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	table, err := tools.RequiredStringArg(args, "table")
	if err != nil {
		return tools.NewErrorResult(err), nil
	}
	// The table name is interpolated into a management command, so it
	// must be a plain identifier.
	if err := kusto.ValidateIdentifier(table); err != nil {
		return tools.NewErrorResult(err), nil
	}
	cluster, database, err := tools.ResolveTarget(sc, args)
	if err != nil {
		return tools.NewErrorResult(err), nil
	}

	payload, err := tools.ExecuteMgmt(ctx, sc, cluster, database, fmt.Sprintf(showTableSchemaCommand, table))
	if err != nil {
		return tools.NewErrorResult(err), nil
	}

	return tools.NewJSONResult(metadataResponse{
		Cluster:  cluster,
		Database: database,
		Table:    table,
		Payload:  payload,
	})
}

func handleListFunctions(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	cluster, database, err := tools.ResolveTarget(sc, request.GetArguments())
	if err != nil {
		return tools.NewErrorResult(err), nil
	}

	payload, err := tools.ExecuteMgmt(ctx, sc, cluster, database, showFunctionsCommand)
	if err != nil {
		return tools.NewErrorResult(err), nil
	}

	return tools.NewJSONResult(metadataResponse{
		Cluster:  cluster,
		Database: database,
		Payload:  payload,
	})
}
