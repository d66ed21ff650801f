package querysql

import (
	"fmt"
	"maps"
	"strconv"

	"github.com/roach88/semsql/internal/dialect"
	"github.com/roach88/semsql/internal/queryir"
)

// Standard returns the ANSI generators for every query kind. Dialect
// definitions use it as their generator table.
func Standard() map[queryir.Kind]dialect.Generator {
	return map[queryir.Kind]dialect.Generator{
		queryir.KindSegmentation: Segmentation(),
		queryir.KindFunnel:       Funnel(),
		queryir.KindSQL:          Passthrough(),
	}
}

// selectKeyword returns "SELECT", or "SELECT TOP n" for dialects that cap
// rows with TOP.
func selectKeyword(b *dialect.Bridge, limit int) string {
	if limit > 0 && b.LimitStyle() == dialect.LimitTop {
		return "SELECT TOP " + strconv.Itoa(limit)
	}
	return "SELECT"
}

// limitClause returns the trailing LIMIT clause, or "" when the dialect uses
// TOP or no limit is set.
func limitClause(b *dialect.Bridge, limit int) string {
	if limit > 0 && b.LimitStyle() == dialect.LimitClause {
		return "LIMIT " + strconv.Itoa(limit)
	}
	return ""
}

// queryOptions merges the request options with generator-specific ones.
func queryOptions(ctx dialect.GeneratorContext, extra map[string]string) map[string]string {
	if len(ctx.Options) == 0 && len(extra) == 0 {
		return nil
	}
	out := make(map[string]string, len(ctx.Options)+len(extra))
	maps.Copy(out, ctx.Options)
	maps.Copy(out, extra)
	return out
}

func wrongQuery(want queryir.Kind, q queryir.Query) error {
	return fmt.Errorf("%s generator cannot render %T", want, q)
}
