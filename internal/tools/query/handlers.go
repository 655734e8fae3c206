package query

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"mcp-kusto/internal/kusto"
	"mcp-kusto/internal/server"
	"mcp-kusto/internal/tools"
)

// queryResponse is the success payload for query tools.
type queryResponse struct {
	Cluster  string `json:"cluster"`
	Database string `json:"database"`
	Query    string `json:"query"`
	*kusto.Payload
}

// handleExecuteKQL validates the query through the safety gate, executes
// it against the resolved cluster and returns the shaped payload.
func handleExecuteKQL(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	queryText, err := tools.RequiredStringArg(args, "query")
	if err != nil {
		return tools.NewErrorResult(err), nil
	}
	cluster, database, err := tools.ResolveTarget(sc, args)
	if err != nil {
		return tools.NewErrorResult(err), nil
	}

	cfg := sc.Config()
	gate := kusto.NewGate(cfg.LimitFor(cluster), cfg.TimeoutFor(cluster))
	safe, err := gate.Validate(queryText, tools.IntArg(args, "limit"))
	if err != nil {
		return tools.NewErrorResult(err), nil
	}

	payload, err := tools.ExecuteQuery(ctx, sc, cluster, database, safe)
	if err != nil {
		return tools.NewErrorResult(err), nil
	}

	return tools.NewJSONResult(queryResponse{
		Cluster:  cluster,
		Database: database,
		Query:    safe.Text,
		Payload:  payload,
	})
}

// handleAnalyzeData builds a KQL aggregation from the analysis template
// and runs it through the same gate and execution path as execute_kql.
func handleAnalyzeData(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	table, err := tools.RequiredStringArg(args, "table")
	if err != nil {
		return tools.NewErrorResult(err), nil
	}
	if err := kusto.ValidateIdentifier(table); err != nil {
		return tools.NewErrorResult(err), nil
	}
	cluster, database, err := tools.ResolveTarget(sc, args)
	if err != nil {
		return tools.NewErrorResult(err), nil
	}

	queryText, err := buildAnalysisQuery(table, tools.StringArg(args, "analysis_type"), tools.StringArg(args, "time_column"))
	if err != nil {
		return tools.NewErrorResult(err), nil
	}

	cfg := sc.Config()
	gate := kusto.NewGate(cfg.LimitFor(cluster), cfg.TimeoutFor(cluster))
	safe, err := gate.Validate(queryText, tools.IntArg(args, "limit"))
	if err != nil {
		return tools.NewErrorResult(err), nil
	}

	payload, err := tools.ExecuteQuery(ctx, sc, cluster, database, safe)
	if err != nil {
		return tools.NewErrorResult(err), nil
	}

	return tools.NewJSONResult(queryResponse{
		Cluster:  cluster,
		Database: database,
		Query:    safe.Text,
		Payload:  payload,
	})
}

// buildAnalysisQuery maps an analysis type onto its KQL template. The
// result still passes through the safety gate before execution.
func buildAnalysisQuery(table, analysisType, timeColumn string) (string, error) {
	switch analysisType {
	case "", "summary":
		return fmt.Sprintf("%s | summarize Rows=count()", table), nil
	case "trends":
		if timeColumn == "" {
			return "", fmt.Errorf("%w: trends analysis requires time_column", kusto.ErrInvalidArgument)
		}
		if err := kusto.ValidateIdentifier(timeColumn); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s | summarize Rows=count() by bin(%s, 1h) | order by %s desc", table, timeColumn, timeColumn), nil
	case "patterns":
		return fmt.Sprintf("%s | getschema", table), nil
	default:
		return "", fmt.Errorf("%w: unknown analysis_type %q", kusto.ErrInvalidArgument, analysisType)
	}
}
