// Package tools provides shared plumbing for MCP tool handlers: the
// structured error boundary, argument extraction helpers, and the
// per-operation logging wrapper.
package tools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"mcp-kusto/internal/authcache"
	"mcp-kusto/internal/kusto"
)

// Error kinds reported to the caller. The assistant relays the message
// to the end user, so kinds stay stable and messages stay explanatory.
const (
	KindUnknownCluster    = "UnknownClusterError"
	KindCredentialExpired = "CredentialExpiredError"
	KindConnectionFailed  = "ConnectionEstablishmentError"
	KindUnsafeQuery       = "UnsafeQueryError"
	KindInvalidArgument   = "InvalidArgumentError"
	KindQueryTimeout      = "QueryTimeoutError"
	KindRemoteExecution   = "RemoteExecutionError"
	KindResultTooLarge    = "ResultTooLargeError"
	KindInternal          = "InternalError"
)

// ErrorKind classifies an error into its protocol-visible kind.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, kusto.ErrUnknownCluster):
		return KindUnknownCluster
	case errors.Is(err, authcache.ErrCredentialExpired), errors.Is(err, kusto.ErrAuthRejected):
		return KindCredentialExpired
	case errors.Is(err, kusto.ErrConnectionFailed):
		return KindConnectionFailed
	case errors.Is(err, kusto.ErrUnsafeQuery):
		return KindUnsafeQuery
	case errors.Is(err, kusto.ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, kusto.ErrQueryTimeout):
		return KindQueryTimeout
	case errors.Is(err, kusto.ErrResultTooLarge):
		return KindResultTooLarge
	case errors.Is(err, kusto.ErrRemoteExecution):
		return KindRemoteExecution
	default:
		return KindInternal
	}
}

// toolError is the structured error payload returned to the caller.
type toolError struct {
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewErrorResult converts an internal error into a structured MCP error
// result. This is the single point where the failure taxonomy crosses
// the protocol boundary; handlers must never return raw Go errors for
// domain failures.
func NewErrorResult(err error) *mcp.CallToolResult {
	var te toolError
	te.Error.Kind = ErrorKind(err)
	te.Error.Message = err.Error()

	data, marshalErr := json.Marshal(te)
	if marshalErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %s", te.Error.Kind, te.Error.Message))
	}
	return mcp.NewToolResultError(string(data))
}

// NewJSONResult marshals a success payload into an MCP text result.
func NewJSONResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result payload: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
