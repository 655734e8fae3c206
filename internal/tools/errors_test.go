package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-kusto/internal/authcache"
	"mcp-kusto/internal/kusto"
)

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unknown cluster", kusto.ErrUnknownCluster, KindUnknownCluster},
		{"credential expired", authcache.ErrCredentialExpired, KindCredentialExpired},
		{"auth rejected maps to credential expired", kusto.ErrAuthRejected, KindCredentialExpired},
		{"connection failed", kusto.ErrConnectionFailed, KindConnectionFailed},
		{"unsafe query", kusto.ErrUnsafeQuery, KindUnsafeQuery},
		{"invalid argument", kusto.ErrInvalidArgument, KindInvalidArgument},
		{"query timeout", kusto.ErrQueryTimeout, KindQueryTimeout},
		{"remote execution", kusto.ErrRemoteExecution, KindRemoteExecution},
		{"result too large", kusto.ErrResultTooLarge, KindResultTooLarge},
		{"wrapped sentinel", fmt.Errorf("context: %w", kusto.ErrUnsafeQuery), KindUnsafeQuery},
		{"unclassified", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorKind(tt.err))
		})
	}
}

func TestNewErrorResult(t *testing.T) {
	err := fmt.Errorf("%w: query contains '.drop'", kusto.ErrUnsafeQuery)
	result := NewErrorResult(err)

	require.True(t, result.IsError)
	require.NotEmpty(t, result.Content)
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var payload struct {
		Error struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(textContent.Text), &payload))
	assert.Equal(t, KindUnsafeQuery, payload.Error.Kind)
	assert.Contains(t, payload.Error.Message, ".drop")
}

func TestNewJSONResult(t *testing.T) {
	result, err := NewJSONResult(map[string]any{"rows": 3})
	require.NoError(t, err)
	require.False(t, result.IsError)

	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, textContent.Text, `"rows": 3`)
}

func TestStringArg(t *testing.T) {
	args := map[string]any{"cluster": "prod", "limit": 5.0}
	assert.Equal(t, "prod", StringArg(args, "cluster"))
	assert.Empty(t, StringArg(args, "missing"))
	assert.Empty(t, StringArg(args, "limit"))
}

func TestIntArg(t *testing.T) {
	args := map[string]any{"limit": 100.0, "count": 7, "name": "x"}
	assert.Equal(t, 100, IntArg(args, "limit"))
	assert.Equal(t, 7, IntArg(args, "count"))
	assert.Equal(t, 0, IntArg(args, "name"))
	assert.Equal(t, 0, IntArg(args, "missing"))
}

func TestRequiredStringArg(t *testing.T) {
	args := map[string]any{"query": "Events", "empty": ""}

	got, err := RequiredStringArg(args, "query")
	require.NoError(t, err)
	assert.Equal(t, "Events", got)

	_, err = RequiredStringArg(args, "empty")
	require.Error(t, err)
	assert.ErrorIs(t, err, kusto.ErrInvalidArgument)

	_, err = RequiredStringArg(args, "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, kusto.ErrInvalidArgument)
}
