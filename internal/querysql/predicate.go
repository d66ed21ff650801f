package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/semsql/internal/dialect"
	"github.com/roach88/semsql/internal/ir"
	"github.com/roach88/semsql/internal/queryir"
)

// clauses holds rendered predicates split by where they apply.
type clauses struct {
	where  []string
	having []string
}

// filters renders a predicate tree. Top-level conjuncts are split between
// WHERE (dimension groups) and HAVING (measure groups); a disjunction must
// stay on one side.
func (r *resolver) filters(p queryir.Predicate) (clauses, error) {
	var out clauses
	if p == nil {
		return out, nil
	}
	var conjuncts []queryir.Predicate
	switch pred := p.(type) {
	case queryir.And:
		conjuncts = pred.Predicates
	case *queryir.And:
		if pred == nil {
			return out, fmt.Errorf("nil predicate")
		}
		conjuncts = pred.Predicates
	default:
		conjuncts = []queryir.Predicate{p}
	}
	for _, c := range conjuncts {
		sql, measure, err := r.predicate(c)
		if err != nil {
			return clauses{}, err
		}
		if sql == "" {
			continue
		}
		if measure {
			out.having = append(out.having, sql)
		} else {
			out.where = append(out.where, sql)
		}
	}
	return out, nil
}

// predicate renders one predicate and reports whether it filters measures.
func (r *resolver) predicate(p queryir.Predicate) (string, bool, error) {
	switch pred := p.(type) {
	case queryir.Group:
		return r.group(pred)
	case *queryir.Group:
		if pred == nil {
			return "", false, fmt.Errorf("nil predicate")
		}
		return r.group(*pred)
	case queryir.And:
		return r.junction(pred.Predicates, "AND")
	case *queryir.And:
		if pred == nil {
			return "", false, fmt.Errorf("nil predicate")
		}
		return r.junction(pred.Predicates, "AND")
	case queryir.Or:
		return r.junction(pred.Predicates, "OR")
	case *queryir.Or:
		if pred == nil {
			return "", false, fmt.Errorf("nil predicate")
		}
		return r.junction(pred.Predicates, "OR")
	default:
		return "", false, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (r *resolver) junction(preds []queryir.Predicate, connective string) (string, bool, error) {
	if len(preds) == 0 {
		if connective == "OR" {
			return "", false, fmt.Errorf("empty disjunction")
		}
		return "", false, nil
	}
	parts := make([]string, 0, len(preds))
	measure := false
	for _, p := range preds {
		sql, m, err := r.predicate(p)
		if err != nil {
			return "", false, err
		}
		if sql == "" {
			continue
		}
		if len(parts) > 0 && m != measure {
			return "", false, fmt.Errorf("cannot combine dimension and measure filters with %s", connective)
		}
		measure = m
		parts = append(parts, sql)
	}
	if len(parts) == 0 {
		return "", false, nil
	}
	if len(parts) == 1 {
		return parts[0], measure, nil
	}
	return "(" + strings.Join(parts, " "+connective+" ") + ")", measure, nil
}

// group renders all conditions on one field through the bridge.
func (r *resolver) group(g queryir.Group) (string, bool, error) {
	f, err := r.filterField(g.Field)
	if err != nil {
		return "", false, err
	}
	filters := make([]ir.Filter, 0, len(g.Conditions))
	for _, c := range g.Conditions {
		op, err := ir.OperatorFor(f.Type, c.Operator)
		if err != nil {
			return "", false, dialect.NewError(dialect.ErrInvalidFilterCombination, r.b.Name(),
				map[string]string{"field": g.Field, "field_type": f.Type.String(), "operator": c.Operator},
				"filter on %q: %v", g.Field, err)
		}
		filters = append(filters, ir.Filter{Type: f.Type, Operator: op, Value: c.Value})
	}
	sql, err := r.b.RenderFilterGroup(f.Expr, filters, g.Match)
	if err != nil {
		return "", false, fmt.Errorf("filter on %q: %w", g.Field, err)
	}
	return sql, f.Measure, nil
}
