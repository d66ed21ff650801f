package querysql

import (
	"strings"

	"github.com/roach88/semsql/internal/dialect"
	"github.com/roach88/semsql/internal/queryir"
)

// Passthrough returns the generator for raw SQL. The text is sent as is;
// a limit wraps it in a subquery.
func Passthrough() dialect.Generator {
	return dialect.GeneratorFunc(generatePassthrough)
}

func generatePassthrough(b *dialect.Bridge, ctx dialect.GeneratorContext, q queryir.Query) (*dialect.RenderedQuery, error) {
	var raw queryir.RawSQL
	switch query := q.(type) {
	case queryir.RawSQL:
		raw = query
	case *queryir.RawSQL:
		if query == nil {
			return nil, wrongQuery(queryir.KindSQL, q)
		}
		raw = *query
	default:
		return nil, wrongQuery(queryir.KindSQL, q)
	}

	sql := strings.TrimRight(strings.TrimSpace(raw.SQL), "; \t\n")
	if raw.Limit > 0 {
		lines := []string{selectKeyword(b, raw.Limit) + " *", "FROM (\n" + sql + "\n) AS " + b.QuoteIdentifier("q")}
		if limit := limitClause(b, raw.Limit); limit != "" {
			lines = append(lines, limit)
		}
		sql = strings.Join(lines, "\n")
	}
	return &dialect.RenderedQuery{
		SQL:        sql,
		Options:    queryOptions(ctx, nil),
		References: dialect.References{},
	}, nil
}
