package tools

import (
	"fmt"

	"mcp-kusto/internal/kusto"
	"mcp-kusto/internal/server"
)

// StringArg extracts an optional string argument.
func StringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// IntArg extracts an optional integer argument. JSON numbers arrive as
// float64; zero means absent.
func IntArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// RequiredStringArg extracts a mandatory string argument, failing with
// ErrInvalidArgument when missing or empty.
func RequiredStringArg(args map[string]any, key string) (string, error) {
	s, ok := args[key].(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%w: %q is required", kusto.ErrInvalidArgument, key)
	}
	return s, nil
}

// ResolveTarget resolves the cluster and database a request addresses:
// the cluster argument falls back to the configured default cluster,
// the database argument falls back to that cluster's configured
// database. Unknown clusters fail with ErrUnknownCluster so the caller
// gets the same error whether the name came from arguments or config.
func ResolveTarget(sc *server.ServerContext, args map[string]any) (cluster, database string, err error) {
	cfg := sc.Config()

	cluster = StringArg(args, "cluster")
	if cluster == "" {
		cluster = cfg.ResolveDefaultCluster()
	}
	cc, ok := cfg.Clusters[cluster]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", kusto.ErrUnknownCluster, cluster)
	}

	database = StringArg(args, "database")
	if database == "" {
		database = cc.Database
	}
	return cluster, database, nil
}
