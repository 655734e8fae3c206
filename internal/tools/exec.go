package tools

import (
	"context"
	"errors"

	"mcp-kusto/internal/kusto"
	"mcp-kusto/internal/server"
)

// ExecuteQuery resolves the cluster handle, runs a validated query and
// shapes the result. An auth rejection drops the handle so the next
// request rebuilds it with a fresh credential; the error itself still
// surfaces to the caller unretried.
func ExecuteQuery(ctx context.Context, sc *server.ServerContext, cluster, database string, safe kusto.SafeQuery) (*kusto.Payload, error) {
	handle, err := sc.Registry().Get(ctx, cluster)
	if err != nil {
		return nil, err
	}

	result, err := handle.Client().Query(ctx, database, safe)
	if err != nil {
		if errors.Is(err, kusto.ErrAuthRejected) {
			sc.Registry().Invalidate(cluster)
		}
		return nil, err
	}

	return kusto.NewShaper(sc.Config().MaxPayloadRows).Shape(result)
}

// ExecuteMgmt runs a read-only management command built by this server
// (never user query text) and shapes the result.
func ExecuteMgmt(ctx context.Context, sc *server.ServerContext, cluster, database, command string) (*kusto.Payload, error) {
	handle, err := sc.Registry().Get(ctx, cluster)
	if err != nil {
		return nil, err
	}

	result, err := handle.Client().Mgmt(ctx, database, command)
	if err != nil {
		if errors.Is(err, kusto.ErrAuthRejected) {
			sc.Registry().Invalidate(cluster)
		}
		return nil, err
	}

	return kusto.NewShaper(sc.Config().MaxPayloadRows).Shape(result)
}
