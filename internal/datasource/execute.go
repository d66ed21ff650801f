package datasource

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/semsql/internal/dialect"
)

// Result holds the rows of an executed query. Values are normalized to
// int64, float64, bool, string, time.Time or nil.
type Result struct {
	QueryID string   `json:"query_id"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Column returns the values of one column, or nil if it does not exist.
func (r *Result) Column(name string) []any {
	idx := -1
	for i, c := range r.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]any, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row[idx]
	}
	return out
}

// Execute runs a rendered query. The query must have been rendered for
// this source's dialect.
func (s *Source) Execute(ctx context.Context, rq *dialect.RenderedQuery) (*Result, error) {
	if rq.Dialect != "" && rq.Dialect != s.bridge.Name() {
		return nil, fmt.Errorf("query %s was rendered for %s, source speaks %s", rq.ID, rq.Dialect, s.bridge.Name())
	}
	start := time.Now()
	result, err := s.Query(ctx, rq.SQL)
	if err != nil {
		return nil, fmt.Errorf("execute query %s: %w", rq.ID, err)
	}
	result.QueryID = rq.ID
	s.logger.Debug("executed query",
		"dialect", s.bridge.Name(),
		"id", rq.ID,
		"rows", len(result.Rows),
		"duration", time.Since(start))
	return result, nil
}

// Query runs raw SQL and collects every row.
func (s *Source) Query(ctx context.Context, query string, args ...any) (*Result, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	result := &Result{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			values[i] = normalize(v)
		}
		result.Rows = append(result.Rows, values)
	}
	return result, rows.Err()
}

// normalize maps driver-specific scan results onto a small set of Go types.
func normalize(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case uint8:
		return int64(val)
	case uint16:
		return int64(val)
	case uint32:
		return int64(val)
	case uint64:
		return int64(val)
	case float32:
		return float64(val)
	case time.Time:
		return val.UTC()
	case fmt.Stringer:
		// DuckDB decimals, hugeints and UUIDs.
		return val.String()
	default:
		return val
	}
}
