package kusto

import (
	"encoding/json"
	"fmt"
	"time"
)

// Payload is the bounded, serializable form of a tabular result handed
// back to the MCP layer.
type Payload struct {
	Columns   []Column `json:"columns"`
	Rows      [][]any  `json:"rows"`
	RowCount  int      `json:"row_count"`
	Truncated bool     `json:"truncated"`
}

// Shaper converts raw results into bounded payloads. The row ceiling is
// a defensive cap on payload size, independent of the per-query limit.
type Shaper struct {
	maxRows  int
	truncate bool
}

// NewShaper returns a Shaper that truncates results above maxRows and
// marks the payload accordingly.
func NewShaper(maxRows int) *Shaper {
	return &Shaper{maxRows: maxRows, truncate: true}
}

// NewStrictShaper returns a Shaper that fails with ErrResultTooLarge
// instead of truncating.
func NewStrictShaper(maxRows int) *Shaper {
	return &Shaper{maxRows: maxRows, truncate: false}
}

// Shape converts a raw result into a payload, coercing non-primitive
// cells to canonical representations and applying the row ceiling.
func (s *Shaper) Shape(result *QueryResult) (*Payload, error) {
	rows := result.Rows
	truncated := false
	if len(rows) > s.maxRows {
		if !s.truncate {
			return nil, fmt.Errorf("%w: %d rows exceed ceiling of %d", ErrResultTooLarge, len(rows), s.maxRows)
		}
		rows = rows[:s.maxRows]
		truncated = true
	}

	shaped := make([][]any, len(rows))
	for i, row := range rows {
		out := make([]any, len(row))
		for j, cell := range row {
			out[j] = coerceCell(cell)
		}
		shaped[i] = out
	}

	columns := result.Columns
	if columns == nil {
		columns = []Column{}
	}
	return &Payload{
		Columns:   columns,
		Rows:      shaped,
		RowCount:  len(shaped),
		Truncated: truncated,
	}, nil
}

// coerceCell maps a raw cell value onto a JSON-serializable primitive.
// Dynamics (nested maps/arrays) become canonical JSON strings, matching
// how timestamps and other non-primitives arrive as strings from the
// service.
func coerceCell(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string, bool, json.Number, float64, int, int64:
		return val
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case []byte:
		return string(val)
	case map[string]any, []any:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", val)
	}
}
