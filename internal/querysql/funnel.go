package querysql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/semsql/internal/dialect"
	"github.com/roach88/semsql/internal/ir"
	"github.com/roach88/semsql/internal/queryir"
)

// Funnel returns the generator for funnel queries. Each step becomes a CTE
// holding the users that reached it:
//
//	"step_1": first matching event per user; its time anchors the window
//	"step_k": first matching event after step k-1 and no later than
//	          anchor + window
//
// The final SELECT counts distinct users per step, optionally broken down
// by a dimension of the first step.
func Funnel() dialect.Generator {
	return dialect.GeneratorFunc(generateFunnel)
}

const (
	colUser      = "user_id"
	colStepTime  = "step_time"
	colAnchor    = "anchor_time"
	colDimension = "dimension"
)

func stepName(i int) string { return "step_" + strconv.Itoa(i+1) }

func generateFunnel(b *dialect.Bridge, ctx dialect.GeneratorContext, q queryir.Query) (*dialect.RenderedQuery, error) {
	var f queryir.Funnel
	switch query := q.(type) {
	case queryir.Funnel:
		f = query
	case *queryir.Funnel:
		if query == nil {
			return nil, wrongQuery(queryir.KindFunnel, q)
		}
		f = *query
	default:
		return nil, wrongQuery(queryir.KindFunnel, q)
	}

	unit, err := ir.ParseTimeUnit(f.Window.Unit)
	if err != nil {
		return nil, fmt.Errorf("funnel window: %w", err)
	}

	quote := b.QuoteIdentifier
	col := func(step int, name string) string { return quote(stepName(step)) + "." + quote(name) }
	hasDim := f.Dimension != ""

	refs := dialect.NewReferenceSet()
	ctes := make([]string, 0, len(f.Steps))
	for i, step := range f.Steps {
		r, err := newResolver(b, ctx.Models, step.Model, ir.ContextAdhoc, refs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", stepName(i), err)
		}
		user, ts, err := r.eventColumns()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", stepName(i), err)
		}

		columns := []string{user + " AS " + quote(colUser), "MIN(" + ts + ") AS " + quote(colStepTime)}
		groupBy := []string{user}
		var where []string
		var joinPrev string

		if i == 0 {
			columns = append(columns, "MIN("+ts+") AS "+quote(colAnchor))
			if hasDim {
				dim, err := r.dimension(f.Dimension)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", stepName(i), err)
				}
				columns = append(columns, dim.Expr+" AS "+quote(colDimension))
				groupBy = append(groupBy, dim.Expr)
			}
		} else {
			deadline, err := b.DateAdd(col(i-1, colAnchor), unit, f.Window.Value)
			if err != nil {
				return nil, err
			}
			joinPrev = fmt.Sprintf("INNER JOIN %s ON %s = %s", quote(stepName(i-1)), col(i-1, colUser), user)
			where = append(where, ts+" > "+col(i-1, colStepTime), ts+" <= "+deadline)
			columns = append(columns, col(i-1, colAnchor)+" AS "+quote(colAnchor))
			groupBy = append(groupBy, col(i-1, colAnchor))
			if hasDim {
				columns = append(columns, col(i-1, colDimension)+" AS "+quote(colDimension))
				groupBy = append(groupBy, col(i-1, colDimension))
			}
		}

		filters, err := r.filters(step.Filter)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", stepName(i), err)
		}
		if len(filters.having) > 0 {
			return nil, fmt.Errorf("%s: funnel steps cannot filter on measures", stepName(i))
		}
		where = append(where, filters.where...)

		from, err := r.from()
		if err != nil {
			return nil, err
		}
		lines := []string{"SELECT " + strings.Join(columns, ", "), from}
		if joinPrev != "" {
			lines = append(lines, joinPrev)
		}
		if len(where) > 0 {
			lines = append(lines, "WHERE "+strings.Join(where, " AND "))
		}
		lines = append(lines, "GROUP BY "+strings.Join(groupBy, ", "))
		ctes = append(ctes, quote(stepName(i))+" AS (\n"+strings.Join(lines, "\n")+"\n)")
	}

	counts := make([]string, 0, len(f.Steps)+1)
	if hasDim {
		counts = append(counts, col(0, colDimension)+" AS "+quote(colDimension))
	}
	for i := range f.Steps {
		counts = append(counts, "COUNT(DISTINCT "+col(i, colUser)+") AS "+quote(stepName(i)))
	}
	lines := []string{
		"WITH " + strings.Join(ctes, ",\n"),
		selectKeyword(b, f.Limit) + " " + strings.Join(counts, ", "),
		"FROM " + quote(stepName(0)),
	}
	for i := 1; i < len(f.Steps); i++ {
		on := col(i, colUser) + " = " + col(i-1, colUser) + " AND " + col(i, colAnchor) + " = " + col(i-1, colAnchor)
		lines = append(lines, "LEFT JOIN "+quote(stepName(i))+" ON "+on)
	}
	if hasDim {
		lines = append(lines, "GROUP BY "+col(0, colDimension), "ORDER BY "+quote(colDimension))
	}
	if limit := limitClause(b, f.Limit); limit != "" {
		lines = append(lines, limit)
	}

	return &dialect.RenderedQuery{
		SQL: strings.Join(lines, "\n"),
		Options: queryOptions(ctx, map[string]string{
			"funnel_window": strconv.Itoa(f.Window.Value) + " " + string(unit),
		}),
		References: refs.References(),
	}, nil
}

// eventColumns resolves the user and event-time columns named by the root
// model's mappings. A mapping may name a dimension or a physical column.
func (r *resolver) eventColumns() (user, ts string, err error) {
	m := r.root.Mappings
	if m.UserID == "" || m.EventTimestamp == "" {
		return "", "", fmt.Errorf("model %q must map user_id and event_timestamp", r.root.Name)
	}
	return r.mapped(m.UserID), r.mapped(m.EventTimestamp), nil
}

func (r *resolver) mapped(name string) string {
	if dim, ok := r.root.Dimension(name); ok {
		r.refs.AddDimension(r.root.Name, dim.Name)
		return r.columnExpr(r.tableAlias(""), dim.Name, dim.Column, dim.SQL)
	}
	return r.columnExpr(r.tableAlias(""), name, "", "")
}
