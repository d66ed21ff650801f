package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/semsql/internal/dialect"
	"github.com/roach88/semsql/internal/ir"
	"github.com/roach88/semsql/internal/queryir"
)

// Segmentation returns the generator for segmentation queries:
//
//	SELECT <dimensions>, <measures>
//	FROM <model target> AS "model" [JOIN <relations>]
//	WHERE <dimension filters>
//	GROUP BY <dimensions>
//	HAVING <measure filters>
//	ORDER BY ... LIMIT ...
//
// Measures are aggregated in the query's AggregationContext. When the query
// asks for materialization, the SELECT is wrapped in the dialect's DDL.
func Segmentation() dialect.Generator {
	return dialect.GeneratorFunc(generateSegmentation)
}

func generateSegmentation(b *dialect.Bridge, ctx dialect.GeneratorContext, q queryir.Query) (*dialect.RenderedQuery, error) {
	var seg queryir.Segmentation
	switch query := q.(type) {
	case queryir.Segmentation:
		seg = query
	case *queryir.Segmentation:
		if query == nil {
			return nil, wrongQuery(queryir.KindSegmentation, q)
		}
		seg = *query
	default:
		return nil, wrongQuery(queryir.KindSegmentation, q)
	}

	refs := dialect.NewReferenceSet()
	r, err := newResolver(b, ctx.Models, seg.Model, seg.Context, refs)
	if err != nil {
		return nil, err
	}

	selected := make(map[string]bool, len(seg.Dimensions)+len(seg.Measures))
	var dims, measures []field
	for _, ref := range seg.Dimensions {
		f, err := r.dimension(ref)
		if err != nil {
			return nil, err
		}
		dims = append(dims, f)
		selected[f.Alias()] = true
	}
	for _, ref := range seg.Measures {
		f, err := r.measure(ref)
		if err != nil {
			return nil, err
		}
		measures = append(measures, f)
		selected[f.Alias()] = true
	}

	where, err := r.filters(seg.Filter)
	if err != nil {
		return nil, err
	}
	from, err := r.from()
	if err != nil {
		return nil, err
	}

	columns := make([]string, 0, len(dims)+len(measures))
	for _, f := range append(append([]field(nil), dims...), measures...) {
		columns = append(columns, f.Expr+" AS "+b.QuoteIdentifier(f.Alias()))
	}

	lines := []string{selectKeyword(b, seg.Limit) + " " + strings.Join(columns, ", "), from}
	if len(where.where) > 0 {
		lines = append(lines, "WHERE "+strings.Join(where.where, " AND "))
	}
	if len(dims) > 0 {
		groupBy := make([]string, len(dims))
		for i, f := range dims {
			groupBy[i] = f.Expr
		}
		lines = append(lines, "GROUP BY "+strings.Join(groupBy, ", "))
	}
	if len(where.having) > 0 {
		lines = append(lines, "HAVING "+strings.Join(where.having, " AND "))
	}
	if len(seg.OrderBy) > 0 {
		order := make([]string, len(seg.OrderBy))
		for i, o := range seg.OrderBy {
			if !selected[o.Field] {
				return nil, fmt.Errorf("order by %q: field is not selected", o.Field)
			}
			order[i] = b.QuoteIdentifier(o.Field)
			if o.Descending {
				order[i] += " DESC"
			}
		}
		lines = append(lines, "ORDER BY "+strings.Join(order, ", "))
	}
	if limit := limitClause(b, seg.Limit); limit != "" {
		lines = append(lines, limit)
	}
	sql := strings.Join(lines, "\n")

	if m := seg.Materialize; m != nil {
		if sql, err = b.CreateObject(m.Kind, m.Name, sql); err != nil {
			return nil, err
		}
	}

	var extra map[string]string
	if seg.Context != ir.ContextAdhoc {
		extra = map[string]string{"aggregation_context": seg.Context.String()}
	}
	return &dialect.RenderedQuery{
		SQL:        sql,
		Options:    queryOptions(ctx, extra),
		References: refs.References(),
	}, nil
}
