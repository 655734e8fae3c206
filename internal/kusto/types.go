// Package kusto implements the Kusto-facing core: an authenticated REST
// client, the per-cluster connection registry, the read-only query
// safety gate, and the result shaper that bounds payloads returned to
// the MCP layer.
package kusto

// Column describes one column of a tabular result.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// QueryResult is the raw primary result of a query or management
// command: column metadata plus row data, before shaping.
type QueryResult struct {
	Columns []Column
	Rows    [][]any
}

// RowCount returns the number of rows in the result.
func (r *QueryResult) RowCount() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}
