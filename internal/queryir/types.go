package queryir

import "github.com/roach88/semsql/internal/ir"

// Query is an abstract query. Sealed: only types in this package implement it.
type Query interface {
	queryNode()
}

// Predicate is a filter condition. Sealed: only Group, And and Or implement it.
type Predicate interface {
	predicateNode()
}

// Kind identifies the generator responsible for a query.
type Kind string

const (
	KindSegmentation Kind = "segmentation"
	KindFunnel       Kind = "funnel"
	KindSQL          Kind = "sql"
)

// KindOf returns the generator kind for a query, or "" for nil/unknown queries.
func KindOf(q Query) Kind {
	switch q.(type) {
	case Segmentation, *Segmentation:
		return KindSegmentation
	case Funnel, *Funnel:
		return KindFunnel
	case RawSQL, *RawSQL:
		return KindSQL
	default:
		return ""
	}
}

// Segmentation selects dimensions and aggregated measures from one model.
//
//	SELECT <dimensions>, <measures> FROM <model> [JOIN <relations>]
//	WHERE <dimension filters> GROUP BY <dimensions>
//	HAVING <measure filters> ORDER BY ... LIMIT ...
//
// Dimensions and measures are field references ("name", "rel.name",
// "name::day"). Context selects how measures are aggregated; ContextAccumulate
// yields partial sketches meant to be merged by a later ContextMerge query.
type Segmentation struct {
	Model       string
	Dimensions  []string
	Measures    []string
	Filter      Predicate // nil = no filter
	OrderBy     []Order
	Limit       int // 0 = no limit
	Context     ir.AggregationContext
	Materialize *Materialize
}

func (Segmentation) queryNode() {}

// Funnel counts distinct users who completed each step in order within a window.
//
// Each step is a model with an optional filter. The first step anchors the
// window; later steps must occur after the previous step and before
// anchor + Window. Models must map event_timestamp and user_id.
type Funnel struct {
	Steps     []FunnelStep
	Window    Window
	Dimension string // optional breakdown on the first step
	Limit     int
}

func (Funnel) queryNode() {}

// FunnelStep is one stage of a funnel.
type FunnelStep struct {
	Model  string
	Filter Predicate
}

// Window is a conversion window, e.g. {7, "day"}.
type Window struct {
	Value int
	Unit  string
}

// RawSQL passes user SQL through, optionally wrapped with a row limit.
type RawSQL struct {
	SQL   string
	Limit int
}

func (RawSQL) queryNode() {}

// Order sorts the result by a selected dimension or measure.
type Order struct {
	Field      string
	Descending bool
}

// Materialize requests that the result be persisted as a warehouse object.
type Materialize struct {
	Kind ir.ObjectKind
	Name string
}

// Condition is one unresolved filter on a group's field. Operator is an
// unqualified kind ("contains") or a qualified name ("string.contains");
// generators resolve it against the field's type.
type Condition struct {
	Operator string
	Value    ir.IRValue
}

// Group is the set of conditions on one field.
//
//	(<cond1> AND <cond2> ...)   Match = all (default)
//	(<cond1> OR <cond2> ...)    Match = any
//
// Field may reference a dimension or a measure; measure groups render into HAVING.
type Group struct {
	Field      string
	Conditions []Condition
	Match      ir.FilterMatch
}

func (Group) predicateNode() {}

// And is a conjunction of predicates. Empty means always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or is a disjunction of predicates. Empty means always false and is
// rejected by Validate.
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

// Groups flattens a predicate tree into its groups in traversal order.
func Groups(p Predicate) []Group {
	var out []Group
	var walk func(Predicate)
	walk = func(p Predicate) {
		switch pred := p.(type) {
		case Group:
			out = append(out, pred)
		case *Group:
			out = append(out, *pred)
		case And:
			for _, sub := range pred.Predicates {
				walk(sub)
			}
		case *And:
			for _, sub := range pred.Predicates {
				walk(sub)
			}
		case Or:
			for _, sub := range pred.Predicates {
				walk(sub)
			}
		case *Or:
			for _, sub := range pred.Predicates {
				walk(sub)
			}
		}
	}
	if p != nil {
		walk(p)
	}
	return out
}
