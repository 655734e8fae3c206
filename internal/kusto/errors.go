package kusto

import "errors"

// Sentinel errors for the failure taxonomy. Handlers convert these to
// structured tool errors at the protocol boundary; nothing here crosses
// it as a raw Go error.
var (
	// ErrUnknownCluster means the requested cluster name is not configured.
	ErrUnknownCluster = errors.New("unknown cluster")

	// ErrUnsafeQuery means the query failed read-only policy validation.
	ErrUnsafeQuery = errors.New("unsafe query rejected")

	// ErrInvalidArgument means a tool argument failed validation.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrQueryTimeout means the query exceeded its execution deadline.
	// The operation is abandoned, never retried here.
	ErrQueryTimeout = errors.New("query timed out")

	// ErrConnectionFailed wraps a transport failure reaching the cluster.
	ErrConnectionFailed = errors.New("connection to cluster failed")

	// ErrAuthRejected means the cluster refused the bearer token. The
	// registry drops the handle so the next request rebuilds it with a
	// fresh credential.
	ErrAuthRejected = errors.New("cluster rejected credentials")

	// ErrRemoteExecution is the catch-all for cluster-reported query
	// failures (bad KQL, missing table, throttling).
	ErrRemoteExecution = errors.New("remote query execution failed")

	// ErrResultTooLarge is returned instead of truncating when the
	// shaper is configured to fail on oversized results.
	ErrResultTooLarge = errors.New("result exceeds payload ceiling")
)
