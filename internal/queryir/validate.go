package queryir

import (
	"fmt"
	"strings"

	"github.com/roach88/semsql/internal/ir"
)

// ValidationResult lists the structural problems found in a query.
//
// Validation is structural only: references are not resolved against models
// and operators are not checked against field types. Generators do that.
type ValidationResult struct {
	Valid    bool
	Problems []string
}

// Validate checks the shape of a query. Pure function, collects every problem.
func Validate(query Query) ValidationResult {
	v := &validator{problems: []string{}}
	v.validateQuery(query)
	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

type validator struct {
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	if q == nil {
		v.addProblem("nil query")
		return
	}

	switch query := q.(type) {
	case Segmentation:
		v.validateSegmentation(query)
	case *Segmentation:
		if query == nil {
			v.addProblem("nil segmentation query")
			return
		}
		v.validateSegmentation(*query)
	case Funnel:
		v.validateFunnel(query)
	case *Funnel:
		if query == nil {
			v.addProblem("nil funnel query")
			return
		}
		v.validateFunnel(*query)
	case RawSQL:
		v.validateRawSQL(query)
	case *RawSQL:
		if query == nil {
			v.addProblem("nil sql query")
			return
		}
		v.validateRawSQL(*query)
	default:
		v.addProblem("unknown query type: %T", q)
	}
}

func (v *validator) validateSegmentation(seg Segmentation) {
	if seg.Model == "" {
		v.addProblem("segmentation: model is required")
	}
	if len(seg.Dimensions) == 0 && len(seg.Measures) == 0 {
		v.addProblem("segmentation: at least one dimension or measure is required")
	}
	if seg.Limit < 0 {
		v.addProblem("segmentation: limit must not be negative, got %d", seg.Limit)
	}
	if !seg.Context.Valid() {
		v.addProblem("segmentation: invalid aggregation context %s", seg.Context)
	}

	selected := make(map[string]bool, len(seg.Dimensions)+len(seg.Measures))
	for _, ref := range append(append([]string{}, seg.Dimensions...), seg.Measures...) {
		if _, err := ir.ParseFieldRef(ref); err != nil {
			v.addProblem("segmentation: %v", err)
		}
		if selected[ref] {
			v.addProblem("segmentation: %q selected twice", ref)
		}
		selected[ref] = true
	}
	for _, o := range seg.OrderBy {
		if !selected[o.Field] {
			v.addProblem("segmentation: order by %q which is not selected", o.Field)
		}
	}
	if m := seg.Materialize; m != nil {
		if m.Name == "" {
			v.addProblem("segmentation: materialize name is required")
		}
		if !ir.ValidObjectKinds[m.Kind] {
			v.addProblem("segmentation: invalid materialize kind %q", m.Kind)
		}
	}
	v.validatePredicate("segmentation", seg.Filter)
}

func (v *validator) validateFunnel(f Funnel) {
	if len(f.Steps) < 2 {
		v.addProblem("funnel: at least two steps are required, got %d", len(f.Steps))
	}
	for i, step := range f.Steps {
		if step.Model == "" {
			v.addProblem("funnel: step %d: model is required", i)
		}
		v.validatePredicate(fmt.Sprintf("funnel: step %d", i), step.Filter)
	}
	if f.Window.Value <= 0 {
		v.addProblem("funnel: window must be positive, got %d", f.Window.Value)
	}
	if f.Window.Unit == "" {
		v.addProblem("funnel: window unit is required")
	}
	if f.Limit < 0 {
		v.addProblem("funnel: limit must not be negative, got %d", f.Limit)
	}
}

func (v *validator) validateRawSQL(r RawSQL) {
	if strings.TrimSpace(r.SQL) == "" {
		v.addProblem("sql: query text is required")
	}
	if r.Limit < 0 {
		v.addProblem("sql: limit must not be negative, got %d", r.Limit)
	}
}

func (v *validator) validatePredicate(where string, p Predicate) {
	if p == nil {
		return
	}

	switch pred := p.(type) {
	case Group:
		v.validateGroup(where, pred)
	case *Group:
		if pred == nil {
			v.addProblem("%s: nil predicate", where)
			return
		}
		v.validateGroup(where, *pred)
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(where, sub)
		}
	case *And:
		if pred == nil {
			v.addProblem("%s: nil predicate", where)
			return
		}
		for _, sub := range pred.Predicates {
			v.validatePredicate(where, sub)
		}
	case Or:
		v.validateOr(where, pred)
	case *Or:
		if pred == nil {
			v.addProblem("%s: nil predicate", where)
			return
		}
		v.validateOr(where, *pred)
	default:
		v.addProblem("%s: unknown predicate type: %T", where, p)
	}
}

func (v *validator) validateOr(where string, or Or) {
	if len(or.Predicates) == 0 {
		v.addProblem("%s: empty OR never matches", where)
	}
	for _, sub := range or.Predicates {
		v.validatePredicate(where, sub)
	}
}

func (v *validator) validateGroup(where string, g Group) {
	if _, err := ir.ParseFieldRef(g.Field); err != nil {
		v.addProblem("%s: filter: %v", where, err)
	}
	if len(g.Conditions) == 0 {
		v.addProblem("%s: filter on %q has no conditions", where, g.Field)
	}
	if g.Match != "" && g.Match != ir.MatchAll && g.Match != ir.MatchAny {
		v.addProblem("%s: filter on %q has invalid match %q", where, g.Field, g.Match)
	}
	for i, c := range g.Conditions {
		if c.Operator == "" {
			v.addProblem("%s: filter on %q: condition %d has no operator", where, g.Field, i)
		}
	}
}
