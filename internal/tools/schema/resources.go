package schema

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"mcp-kusto/internal/server"
	"mcp-kusto/internal/tools"
)

// RegisterClusterResources registers one kusto://<cluster>/tables and
// one kusto://<cluster>/functions resource per configured cluster, so
// MCP hosts can browse cluster metadata without a tool call.
func RegisterClusterResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	for _, name := range sc.Config().ClusterNames() {
		cluster := name

		tablesResource := mcp.NewResource(
			fmt.Sprintf("kusto://%s/tables", cluster),
			fmt.Sprintf("Tables in %s", cluster),
			mcp.WithResourceDescription(fmt.Sprintf("List of tables in Kusto cluster %s", cluster)),
			mcp.WithMIMEType("application/json"),
		)
		s.AddResource(tablesResource, metadataResourceHandler(sc, cluster, showTablesCommand))

		functionsResource := mcp.NewResource(
			fmt.Sprintf("kusto://%s/functions", cluster),
			fmt.Sprintf("Functions in %s", cluster),
			mcp.WithResourceDescription(fmt.Sprintf("List of stored functions in Kusto cluster %s", cluster)),
			mcp.WithMIMEType("application/json"),
		)
		s.AddResource(functionsResource, metadataResourceHandler(sc, cluster, showFunctionsCommand))
	}
	return nil
}

// metadataResourceHandler serves a resource read by running the given
// management command against the cluster's default database and
// rendering the rows as a JSON array of name->value objects.
func metadataResourceHandler(sc *server.ServerContext, cluster, command string) mcpserver.ResourceHandlerFunc {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		database := sc.Config().Clusters[cluster].Database

		payload, err := tools.ExecuteMgmt(ctx, sc, cluster, database, command)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", request.Params.URI, err)
		}

		records := make([]map[string]any, 0, len(payload.Rows))
		for _, row := range payload.Rows {
			record := make(map[string]any, len(payload.Columns))
			for i, col := range payload.Columns {
				if i < len(row) {
					record[col.Name] = row[i]
				}
			}
			records = append(records, record)
		}

		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", request.Params.URI, err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}
