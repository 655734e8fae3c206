package kusto

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SafeQuery is the only form of user query text ever handed to a
// cluster connection: validated read-only text with an enforced row
// limit and execution deadline.
type SafeQuery struct {
	Text    string
	Limit   int
	Timeout time.Duration
}

// Gate validates untrusted query text against read-only policy and
// bounds it with a row limit and timeout.
type Gate struct {
	maxLimit int
	timeout  time.Duration
}

// NewGate returns a Gate enforcing the given maximum row limit and
// execution timeout.
func NewGate(maxLimit int, timeout time.Duration) *Gate {
	return &Gate{maxLimit: maxLimit, timeout: timeout}
}

// dotCommandRe matches embedded management commands. Kusto reserves the
// leading dot for control commands (ingestion, schema changes, policy);
// none of them are valid inside a read-only query.
var dotCommandRe = regexp.MustCompile(`(?i)\.(ingest|set|append|drop|alter|create|delete|purge|clear|rename|replace|move|execute)\b`)

// ingestionFormRe matches ingestion forms that can appear without a
// leading dot in command text.
var ingestionFormRe = regexp.MustCompile(`(?i)\b(ingest\s+inline|set-or-append|set-or-replace)\b`)

// identifierRe matches a plain KQL identifier (table, function, let name).
var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// allowedLeadingKeywords are the read-only query forms accepted as the
// first token of a pipeline, besides a plain table identifier.
var allowedLeadingKeywords = map[string]bool{
	"let": true, "print": true, "search": true, "union": true,
	"range": true, "find": true, "datatable": true, "materialize": true,
}

// rowCapRe matches take/limit stages so existing caps can be inspected
// and rewritten.
var rowCapRe = regexp.MustCompile(`(?i)\|\s*(take|limit)\s+([^\s|]+)`)

// ValidateIdentifier checks that name is a plain KQL identifier suitable
// for interpolation into a management command.
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidArgument)
	}
	if !identifierRe.MatchString(name) {
		return fmt.Errorf("%w: %q is not a valid identifier", ErrInvalidArgument, name)
	}
	return nil
}

// Validate enforces read-only policy on query text and returns the
// bounded SafeQuery. requestedLimit <= 0 means the caller did not ask
// for a limit; limits above the configured maximum are clamped down,
// limits at or below it are preserved.
func (g *Gate) Validate(query string, requestedLimit int) (SafeQuery, error) {
	text := strings.TrimSpace(query)
	if text == "" {
		return SafeQuery{}, fmt.Errorf("%w: query is empty", ErrUnsafeQuery)
	}
	if strings.HasPrefix(text, ".") {
		return SafeQuery{}, fmt.Errorf("%w: management commands are not allowed", ErrUnsafeQuery)
	}
	if m := dotCommandRe.FindString(text); m != "" {
		verb := cases.Title(language.English).String(strings.TrimPrefix(strings.ToLower(m), "."))
		return SafeQuery{}, fmt.Errorf("%w: %s commands are not allowed", ErrUnsafeQuery, verb)
	}
	if m := ingestionFormRe.FindString(text); m != "" {
		return SafeQuery{}, fmt.Errorf("%w: ingestion form %q is not allowed", ErrUnsafeQuery, strings.ToLower(m))
	}
	if err := checkLeadingToken(text); err != nil {
		return SafeQuery{}, err
	}

	limit := requestedLimit
	if limit <= 0 || limit > g.maxLimit {
		limit = g.maxLimit
	}

	text, capped, err := applyRowCap(text, limit)
	if err != nil {
		return SafeQuery{}, err
	}
	if !capped {
		text = fmt.Sprintf("%s | take %d", text, limit)
	}

	return SafeQuery{Text: text, Limit: limit, Timeout: g.timeout}, nil
}

// checkLeadingToken enforces the allow-list on the first pipeline token:
// a plain identifier (table or function name) or a read-only keyword.
func checkLeadingToken(text string) error {
	if strings.HasPrefix(text, "|") {
		return fmt.Errorf("%w: query must not start with a pipe operator", ErrUnsafeQuery)
	}
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '|' || r == '('
	})
	if len(fields) == 0 {
		return fmt.Errorf("%w: query is empty", ErrUnsafeQuery)
	}
	first := fields[0]
	if allowedLeadingKeywords[strings.ToLower(first)] {
		return nil
	}
	if identifierRe.MatchString(first) {
		return nil
	}
	return fmt.Errorf("%w: query must start with a table name or read-only operator, got %q", ErrUnsafeQuery, first)
}

// applyRowCap clamps every existing take/limit stage to max. A stage
// with a non-numeric operand means the cap cannot be injected safely,
// which fails validation rather than passing an unbounded query on.
func applyRowCap(text string, max int) (string, bool, error) {
	matches := rowCapRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, false, nil
	}

	var b strings.Builder
	prev := 0
	for _, m := range matches {
		opStart, opEnd := m[4], m[5]
		operand := text[opStart:opEnd]
		n, err := strconv.Atoi(operand)
		if err != nil {
			return "", false, fmt.Errorf("%w: row limit %q is not a number, cannot enforce cap", ErrUnsafeQuery, operand)
		}
		b.WriteString(text[prev:opStart])
		if n > max {
			b.WriteString(strconv.Itoa(max))
		} else {
			b.WriteString(operand)
		}
		prev = opEnd
	}
	b.WriteString(text[prev:])
	return b.String(), true, nil
}
