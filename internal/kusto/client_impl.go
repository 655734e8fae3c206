package kusto

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"mcp-kusto/internal/logging"
)

// Paths of the Kusto REST API v1.
const (
	queryPath = "/v1/rest/query"
	mgmtPath  = "/v1/rest/mgmt"
)

// defaultMgmtTimeout bounds management commands, which carry no
// caller-supplied deadline.
const defaultMgmtTimeout = 30 * time.Second

// restClient talks to a single cluster endpoint over the Kusto REST API.
type restClient struct {
	endpoint   string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewRESTClient returns a Client for the given cluster endpoint using
// bearer token authentication.
func NewRESTClient(endpoint, token string, logger *slog.Logger) Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &restClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		token:    token,
		// The per-request context carries the query deadline; the
		// transport itself stays unbounded.
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// restRequest is the JSON body of a query or management call.
type restRequest struct {
	DB         string          `json:"db"`
	CSL        string          `json:"csl"`
	Properties *restProperties `json:"properties,omitempty"`
}

type restProperties struct {
	Options map[string]any `json:"Options,omitempty"`
}

// restResponse is the v1 result envelope. For queries with multiple
// tables, the last table is a table of contents naming the primary
// result; management commands return a single table.
type restResponse struct {
	Tables []restTable `json:"Tables"`
}

type restTable struct {
	TableName string       `json:"TableName"`
	Columns   []restColumn `json:"Columns"`
	Rows      [][]any      `json:"Rows"`
}

type restColumn struct {
	ColumnName string `json:"ColumnName"`
	ColumnType string `json:"ColumnType"`
	DataType   string `json:"DataType"`
}

// restError is the service error body on non-2xx responses.
type restError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *restClient) Query(ctx context.Context, database string, query SafeQuery) (*QueryResult, error) {
	ctx, cancel := context.WithTimeout(ctx, query.Timeout)
	defer cancel()

	return c.execute(ctx, queryPath, restRequest{
		DB:  database,
		CSL: query.Text,
		Properties: &restProperties{
			Options: map[string]any{
				"servertimeout": formatTimespan(query.Timeout),
			},
		},
	})
}

func (c *restClient) Mgmt(ctx context.Context, database string, command string) (*QueryResult, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultMgmtTimeout)
	defer cancel()

	return c.execute(ctx, mgmtPath, restRequest{DB: database, CSL: command})
}

func (c *restClient) execute(ctx context.Context, path string, reqBody restRequest) (*QueryResult, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-ms-client-application", "mcp-kusto")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrQueryTimeout, logging.SanitizeHost(c.endpoint))
		}
		if ctx.Err() != nil {
			// Host cancelled the invocation; abandon without classification.
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w (HTTP %d)", ErrAuthRejected, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.serviceError(resp)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var envelope restResponse
	if err := dec.Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrRemoteExecution, err)
	}
	return primaryResult(&envelope)
}

// serviceError converts a non-2xx response into ErrRemoteExecution
// carrying the service-reported message when one is present.
func (c *restClient) serviceError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var svcErr restError
	if json.Unmarshal(data, &svcErr) == nil && svcErr.Error.Message != "" {
		return fmt.Errorf("%w: %s (HTTP %d)", ErrRemoteExecution, svcErr.Error.Message, resp.StatusCode)
	}
	return fmt.Errorf("%w: HTTP %d", ErrRemoteExecution, resp.StatusCode)
}

// primaryResult picks the primary result table from the envelope. With a
// single table that table is the result; otherwise the trailing table of
// contents names the ordinal of the QueryResult table.
func primaryResult(envelope *restResponse) (*QueryResult, error) {
	if len(envelope.Tables) == 0 {
		return nil, fmt.Errorf("%w: response contains no tables", ErrRemoteExecution)
	}
	table := envelope.Tables[0]
	if len(envelope.Tables) > 1 {
		if ord, ok := queryResultOrdinal(envelope.Tables[len(envelope.Tables)-1]); ok && ord < len(envelope.Tables) {
			table = envelope.Tables[ord]
		}
	}

	result := &QueryResult{
		Columns: make([]Column, 0, len(table.Columns)),
		Rows:    table.Rows,
	}
	for _, col := range table.Columns {
		colType := col.ColumnType
		if colType == "" {
			colType = col.DataType
		}
		result.Columns = append(result.Columns, Column{Name: col.ColumnName, Type: colType})
	}
	if result.Rows == nil {
		result.Rows = [][]any{}
	}
	return result, nil
}

// queryResultOrdinal scans a table-of-contents table for the row of kind
// QueryResult and returns its ordinal.
func queryResultOrdinal(toc restTable) (int, bool) {
	ordIdx, kindIdx := -1, -1
	for i, col := range toc.Columns {
		switch col.ColumnName {
		case "Ordinal":
			ordIdx = i
		case "Kind":
			kindIdx = i
		}
	}
	if ordIdx < 0 || kindIdx < 0 {
		return 0, false
	}
	for _, row := range toc.Rows {
		if len(row) <= ordIdx || len(row) <= kindIdx {
			continue
		}
		if kind, _ := row[kindIdx].(string); kind != "QueryResult" {
			continue
		}
		if num, ok := row[ordIdx].(json.Number); ok {
			if ord, err := num.Int64(); err == nil {
				return int(ord), true
			}
		}
	}
	return 0, false
}

// formatTimespan renders a duration in the hh:mm:ss timespan form the
// service expects for the servertimeout option.
func formatTimespan(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
