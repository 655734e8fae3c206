package kusto

import "context"

// Client executes statements against one Kusto cluster endpoint.
// Implementations must be safe for concurrent use.
type Client interface {
	// Query runs a validated query against the given database. The
	// SafeQuery carries the execution deadline; implementations must
	// honor it and report overruns as ErrQueryTimeout.
	Query(ctx context.Context, database string, query SafeQuery) (*QueryResult, error)

	// Mgmt runs a read-only management command (`.show ...`) against the
	// given database. Only this package and the schema tools issue
	// management commands; user query text never reaches here.
	Mgmt(ctx context.Context, database string, command string) (*QueryResult, error)
}

// ClientFactory constructs a Client bound to a cluster endpoint with a
// bearer token. The registry calls it lazily, once per cluster handle;
// tests substitute stub clients through it.
type ClientFactory func(endpoint, token string) Client
