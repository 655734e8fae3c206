package query

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-kusto/internal/authcache"
	"mcp-kusto/internal/config"
	"mcp-kusto/internal/kusto"
	"mcp-kusto/internal/server"
)

type stubKustoClient struct {
	queryFn func(ctx context.Context, database string, q kusto.SafeQuery) (*kusto.QueryResult, error)
}

func (c *stubKustoClient) Query(ctx context.Context, database string, q kusto.SafeQuery) (*kusto.QueryResult, error) {
	if c.queryFn != nil {
		return c.queryFn(ctx, database, q)
	}
	return &kusto.QueryResult{}, nil
}

func (c *stubKustoClient) Mgmt(ctx context.Context, database, command string) (*kusto.QueryResult, error) {
	return &kusto.QueryResult{}, nil
}

type staticTokenProvider struct{}

func (staticTokenProvider) Token(ctx context.Context) (authcache.CachedCredential, error) {
	return authcache.CachedCredential{Token: "tok", ExpiresOn: time.Now().Add(time.Hour)}, nil
}

func newTestServerContext(t *testing.T, client kusto.Client) *server.ServerContext {
	t.Helper()

	cfg := config.NewDefaultConfig()
	cfg.Clusters["prod"] = config.ClusterConfig{
		URL:      "https://prod.kusto.windows.net",
		Database: "Telemetry",
	}

	factory := func(endpoint, token string) kusto.Client { return client }
	registry := kusto.NewRegistry(cfg, staticTokenProvider{}, factory, nil)

	sc, err := server.NewServerContext(context.Background(),
		server.WithConfig(cfg),
		server.WithRegistry(registry),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func getTextContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent")
	return textContent.Text
}

func errorKind(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	var payload struct {
		Error struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(getTextContent(t, result)), &payload))
	return payload.Error.Kind
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	request := mcp.CallToolRequest{}
	request.Params.Arguments = args
	return request
}

func TestHandleExecuteKQL(t *testing.T) {
	client := &stubKustoClient{
		queryFn: func(ctx context.Context, database string, q kusto.SafeQuery) (*kusto.QueryResult, error) {
			assert.Equal(t, "Telemetry", database)
			assert.Contains(t, q.Text, "| take")
			return &kusto.QueryResult{
				Columns: []kusto.Column{{Name: "Level", Type: "string"}, {Name: "Count", Type: "long"}},
				Rows: [][]any{
					{"Error", json.Number("12")},
					{"Warning", json.Number("45")},
				},
			}, nil
		},
	}
	sc := newTestServerContext(t, client)

	result, err := handleExecuteKQL(context.Background(),
		callRequest(map[string]any{"query": "Events | summarize Count=count() by Level"}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)

	var resp queryResponse
	require.NoError(t, json.Unmarshal([]byte(getTextContent(t, result)), &resp))
	assert.Equal(t, "prod", resp.Cluster)
	assert.Equal(t, "Telemetry", resp.Database)
	assert.Equal(t, 2, resp.RowCount)
	assert.False(t, resp.Truncated)
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, "Error", resp.Rows[0][0])
}

func TestHandleExecuteKQLMissingQuery(t *testing.T) {
	sc := newTestServerContext(t, &stubKustoClient{})

	result, err := handleExecuteKQL(context.Background(), callRequest(map[string]any{}), sc)
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Equal(t, "InvalidArgumentError", errorKind(t, result))
}

func TestHandleExecuteKQLUnsafeQuery(t *testing.T) {
	sc := newTestServerContext(t, &stubKustoClient{})

	tests := []string{
		".drop table Events",
		".ingest into table Events ('https://x')",
		"Events; .alter table Events",
	}
	for _, query := range tests {
		result, err := handleExecuteKQL(context.Background(), callRequest(map[string]any{"query": query}), sc)
		require.NoError(t, err)
		require.True(t, result.IsError, query)
		assert.Equal(t, "UnsafeQueryError", errorKind(t, result), query)
	}
}

func TestHandleExecuteKQLUnknownCluster(t *testing.T) {
	sc := newTestServerContext(t, &stubKustoClient{})

	result, err := handleExecuteKQL(context.Background(),
		callRequest(map[string]any{"query": "Events", "cluster": "nope"}), sc)
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Equal(t, "UnknownClusterError", errorKind(t, result))
}

func TestHandleExecuteKQLRemoteError(t *testing.T) {
	client := &stubKustoClient{
		queryFn: func(ctx context.Context, database string, q kusto.SafeQuery) (*kusto.QueryResult, error) {
			return nil, kusto.ErrRemoteExecution
		},
	}
	sc := newTestServerContext(t, client)

	result, err := handleExecuteKQL(context.Background(), callRequest(map[string]any{"query": "Events"}), sc)
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Equal(t, "RemoteExecutionError", errorKind(t, result))
}

func TestHandleExecuteKQLAuthRejectionInvalidatesHandle(t *testing.T) {
	client := &stubKustoClient{
		queryFn: func(ctx context.Context, database string, q kusto.SafeQuery) (*kusto.QueryResult, error) {
			return nil, kusto.ErrAuthRejected
		},
	}
	sc := newTestServerContext(t, client)

	result, err := handleExecuteKQL(context.Background(), callRequest(map[string]any{"query": "Events"}), sc)
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Equal(t, "CredentialExpiredError", errorKind(t, result))
	assert.Equal(t, 0, sc.Registry().Len(), "auth rejection must drop the cached handle")
}

func TestHandleExecuteKQLTruncation(t *testing.T) {
	client := &stubKustoClient{
		queryFn: func(ctx context.Context, database string, q kusto.SafeQuery) (*kusto.QueryResult, error) {
			rows := make([][]any, 10)
			for i := range rows {
				rows[i] = []any{"x"}
			}
			return &kusto.QueryResult{Columns: []kusto.Column{{Name: "C", Type: "string"}}, Rows: rows}, nil
		},
	}
	sc := newTestServerContext(t, client)
	sc.Config().MaxPayloadRows = 3

	result, err := handleExecuteKQL(context.Background(), callRequest(map[string]any{"query": "Events"}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)

	var resp queryResponse
	require.NoError(t, json.Unmarshal([]byte(getTextContent(t, result)), &resp))
	assert.True(t, resp.Truncated)
	assert.Equal(t, 3, resp.RowCount)
}

func TestHandleAnalyzeData(t *testing.T) {
	var gotQuery string
	client := &stubKustoClient{
		queryFn: func(ctx context.Context, database string, q kusto.SafeQuery) (*kusto.QueryResult, error) {
			gotQuery = q.Text
			return &kusto.QueryResult{
				Columns: []kusto.Column{{Name: "Rows", Type: "long"}},
				Rows:    [][]any{{json.Number("100")}},
			}, nil
		},
	}
	sc := newTestServerContext(t, client)

	tests := []struct {
		name      string
		args      map[string]any
		wantQuery string
	}{
		{
			"default summary",
			map[string]any{"table": "Events"},
			"Events | summarize Rows=count() | take 1000",
		},
		{
			"explicit summary",
			map[string]any{"table": "Events", "analysis_type": "summary"},
			"Events | summarize Rows=count() | take 1000",
		},
		{
			"trends",
			map[string]any{"table": "Events", "analysis_type": "trends", "time_column": "Timestamp"},
			"Events | summarize Rows=count() by bin(Timestamp, 1h) | order by Timestamp desc | take 1000",
		},
		{
			"patterns",
			map[string]any{"table": "Events", "analysis_type": "patterns"},
			"Events | getschema | take 1000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handleAnalyzeData(context.Background(), callRequest(tt.args), sc)
			require.NoError(t, err)
			require.False(t, result.IsError, getTextContent(t, result))
			assert.Equal(t, tt.wantQuery, gotQuery)
		})
	}
}

func TestHandleAnalyzeDataInvalidArguments(t *testing.T) {
	sc := newTestServerContext(t, &stubKustoClient{})

	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing table", map[string]any{}},
		{"invalid table name", map[string]any{"table": "1bad name"}},
		{"unknown analysis type", map[string]any{"table": "Events", "analysis_type": "magic"}},
		{"trends without time column", map[string]any{"table": "Events", "analysis_type": "trends"}},
		{"trends with bad time column", map[string]any{"table": "Events", "analysis_type": "trends", "time_column": "t;drop"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handleAnalyzeData(context.Background(), callRequest(tt.args), sc)
			require.NoError(t, err)
			require.True(t, result.IsError)
			assert.Equal(t, "InvalidArgumentError", errorKind(t, result))
		})
	}
}
