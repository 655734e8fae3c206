package kusto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGate() *Gate {
	return NewGate(1000, 60*time.Second)
}

func TestGateRejectsUnsafeQueries(t *testing.T) {
	gate := newTestGate()

	tests := []struct {
		name  string
		query string
	}{
		{"empty query", ""},
		{"whitespace only", "   \n\t  "},
		{"management command", ".show tables"},
		{"drop command", ".drop table Events"},
		{"embedded ingest", "Events | take 5; .ingest into table Events ('https://x')"},
		{"embedded drop", "Events | take 5 .drop table Events"},
		{"set command", ".set Events <| OtherTable"},
		{"set-or-append form", "set-or-append Events <| OtherTable"},
		{"ingest inline form", "ingest inline into table Events <| 1,2,3"},
		{"alter command", ".alter table Events policy retention"},
		{"purge command", ".purge table Events records"},
		{"leading operator junk", "| take 5"},
		{"non-numeric take operand", "Events | take abc"},
		{"non-numeric limit operand", "Events | limit ten"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gate.Validate(tt.query, 0)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnsafeQuery)
		})
	}
}

func TestGateAcceptsReadOnlyQueries(t *testing.T) {
	gate := newTestGate()

	queries := []string{
		"Events",
		"Events | take 5",
		"Events | where Timestamp > ago(1h) | summarize count() by Level",
		"print now()",
		"let x = 5; Events | where Count > x",
		"search \"error\"",
		"union Events, Traces | take 10",
		"range i from 1 to 10 step 1",
		"StormEvents | project State, EventType | order by State asc",
	}

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			safe, err := gate.Validate(q, 0)
			require.NoError(t, err)
			assert.NotEmpty(t, safe.Text)
			assert.Equal(t, 60*time.Second, safe.Timeout)
		})
	}
}

func TestGateClampsLimit(t *testing.T) {
	gate := newTestGate()

	tests := []struct {
		name      string
		requested int
		wantLimit int
	}{
		{"absent limit uses maximum", 0, 1000},
		{"limit above maximum is clamped", 50000, 1000},
		{"limit at maximum is preserved", 1000, 1000},
		{"limit below maximum is preserved", 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			safe, err := gate.Validate("Events | where Level == \"Error\"", tt.requested)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, safe.Limit)
			assert.Contains(t, safe.Text, "| take")
		})
	}
}

func TestGateAppendsTakeWhenAbsent(t *testing.T) {
	gate := newTestGate()

	safe, err := gate.Validate("Events | where Level == \"Error\"", 100)
	require.NoError(t, err)
	assert.Equal(t, "Events | where Level == \"Error\" | take 100", safe.Text)
}

func TestGateRewritesOversizedTake(t *testing.T) {
	gate := newTestGate()

	safe, err := gate.Validate("Events | take 50000", 0)
	require.NoError(t, err)
	assert.Equal(t, "Events | take 1000", safe.Text)
	assert.Equal(t, 1000, safe.Limit)
}

func TestGatePreservesSmallerExistingTake(t *testing.T) {
	gate := newTestGate()

	safe, err := gate.Validate("Events | take 5", 0)
	require.NoError(t, err)
	assert.Equal(t, "Events | take 5", safe.Text)
}

func TestGateRewritesOversizedLimitKeyword(t *testing.T) {
	gate := newTestGate()

	safe, err := gate.Validate("Events | limit 99999 | project Name", 0)
	require.NoError(t, err)
	assert.Equal(t, "Events | limit 1000 | project Name", safe.Text)
}

func TestGateClampsMultipleCapStages(t *testing.T) {
	gate := newTestGate()

	safe, err := gate.Validate("Events | take 2000 | where Level == \"Error\" | take 3000", 0)
	require.NoError(t, err)
	assert.Equal(t, "Events | take 1000 | where Level == \"Error\" | take 1000", safe.Text)
}

func TestGateRespectsPerClusterOverride(t *testing.T) {
	gate := NewGate(50, 5*time.Second)

	safe, err := gate.Validate("Events", 100)
	require.NoError(t, err)
	assert.Equal(t, 50, safe.Limit)
	assert.Equal(t, "Events | take 50", safe.Text)
	assert.Equal(t, 5*time.Second, safe.Timeout)
}

func TestValidateIdentifier(t *testing.T) {
	valid := []string{"Events", "_private", "Table_1", "stormEvents"}
	for _, name := range valid {
		assert.NoError(t, ValidateIdentifier(name), name)
	}

	invalid := []string{"", "1invalid", "name with spaces", "tbl;drop", "a-b", ".show"}
	for _, name := range invalid {
		err := ValidateIdentifier(name)
		require.Error(t, err, name)
		assert.ErrorIs(t, err, ErrInvalidArgument, name)
	}
}
