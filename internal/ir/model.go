package ir

import (
	"fmt"
	"strings"
)

// ObjectKind is a kind of warehouse object a bridge can read from or materialize into.
type ObjectKind string

const (
	ObjectTable            ObjectKind = "table"
	ObjectView             ObjectKind = "view"
	ObjectIncremental      ObjectKind = "incremental"
	ObjectMaterializedView ObjectKind = "materialized_view"
)

// ValidObjectKinds defines the allowed object kinds.
var ValidObjectKinds = map[ObjectKind]bool{
	ObjectTable:            true,
	ObjectView:             true,
	ObjectIncremental:      true,
	ObjectMaterializedView: true,
}

// Target is the physical source of a model: a qualified table or a SQL subquery.
// Exactly one of Table or SQL is set.
type Target struct {
	Database string `json:"database,omitempty" yaml:"database,omitempty"`
	Schema   string `json:"schema,omitempty" yaml:"schema,omitempty"`
	Table    string `json:"table,omitempty" yaml:"table,omitempty"`
	SQL      string `json:"sql,omitempty" yaml:"sql,omitempty"`
}

// String renders the target for messages, e.g. "db.schema.table" or "(sql)".
func (t Target) String() string {
	if t.SQL != "" {
		return "(" + t.SQL + ")"
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{t.Database, t.Schema, t.Table} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

// Dimension is a non-aggregated, directly selectable column.
type Dimension struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Column      string    `json:"column,omitempty"` // physical column; defaults to Name
	SQL         string    `json:"sql,omitempty"`    // expression; {{TABLE}} is replaced by the model alias
	Type        FieldType `json:"type"`
	// PostOperations are timeframes (hour, day, week, month, ...) exposed as
	// "name::op" variants, rendered through the DATE_TRUNC function.
	PostOperations []string `json:"post_operations,omitempty"`
	Hidden         bool     `json:"hidden,omitempty"`
}

// Measure is an aggregated column, always paired with an AggregationType.
// AggregationNone means SQL is already an aggregate expression.
type Measure struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Column      string          `json:"column,omitempty"`
	SQL         string          `json:"sql,omitempty"`
	Aggregation AggregationType `json:"aggregation"`
	Type        FieldType       `json:"type"`
	Hidden      bool            `json:"hidden,omitempty"`
}

// JoinType is the SQL join used for a relation.
type JoinType string

const (
	JoinLeft  JoinType = "left"
	JoinInner JoinType = "inner"
	JoinRight JoinType = "right"
	JoinFull  JoinType = "full"
)

// ValidJoinTypes defines the allowed join types.
var ValidJoinTypes = map[JoinType]bool{
	JoinLeft:  true,
	JoinInner: true,
	JoinRight: true,
	JoinFull:  true,
}

// SQL returns the join keyword, e.g. "LEFT JOIN".
func (j JoinType) SQL() string {
	if j == "" {
		return "LEFT JOIN"
	}
	return strings.ToUpper(string(j)) + " JOIN"
}

// Relation is a declared join from one model to another.
type Relation struct {
	Name         string   `json:"name"`
	Model        string   `json:"model"`
	Join         JoinType `json:"join,omitempty"`
	SourceColumn string   `json:"source_column,omitempty"`
	TargetColumn string   `json:"target_column,omitempty"`
	// SQL is a custom join condition using {{TABLE}} and {{TARGET}} placeholders.
	SQL string `json:"sql,omitempty"`
}

// Mappings name the columns with well-known roles, used by funnel queries.
type Mappings struct {
	EventTimestamp string `json:"event_timestamp,omitempty"`
	UserID         string `json:"user_id,omitempty"`
}

// Model is a compiled semantic model.
type Model struct {
	Name        string      `json:"name"`
	Label       string      `json:"label,omitempty"`
	Description string      `json:"description,omitempty"`
	Target      Target      `json:"target"`
	Dimensions  []Dimension `json:"dimensions"`
	Measures    []Measure   `json:"measures"`
	Relations   []Relation  `json:"relations,omitempty"`
	Mappings    Mappings    `json:"mappings,omitempty"`
}

// Dimension returns the named dimension.
func (m *Model) Dimension(name string) (*Dimension, bool) {
	for i := range m.Dimensions {
		if m.Dimensions[i].Name == name {
			return &m.Dimensions[i], true
		}
	}
	return nil, false
}

// Measure returns the named measure.
func (m *Model) Measure(name string) (*Measure, bool) {
	for i := range m.Measures {
		if m.Measures[i].Name == name {
			return &m.Measures[i], true
		}
	}
	return nil, false
}

// Relation returns the named relation.
func (m *Model) Relation(name string) (*Relation, bool) {
	for i := range m.Relations {
		if m.Relations[i].Name == name {
			return &m.Relations[i], true
		}
	}
	return nil, false
}

// Models is a set of compiled models keyed by name.
type Models map[string]*Model

// Get returns the named model or an error naming the missing model.
func (ms Models) Get(name string) (*Model, error) {
	m, ok := ms[name]
	if !ok {
		return nil, fmt.Errorf("unknown model %q", name)
	}
	return m, nil
}

// FieldRef splits a dimension or measure reference of the form
// "[relation.]name[::post_operation]".
type FieldRef struct {
	Relation      string
	Name          string
	PostOperation string
}

// ParseFieldRef parses "rel.name::op", "name::op", "rel.name" or "name".
func ParseFieldRef(ref string) (FieldRef, error) {
	var out FieldRef
	rest, post, hasPost := strings.Cut(ref, "::")
	if hasPost {
		if post == "" {
			return FieldRef{}, fmt.Errorf("empty post operation in %q", ref)
		}
		out.PostOperation = post
	}
	if rel, name, ok := strings.Cut(rest, "."); ok {
		out.Relation, out.Name = rel, name
	} else {
		out.Name = rest
	}
	if out.Name == "" || (out.Relation == "" && strings.HasPrefix(rest, ".")) {
		return FieldRef{}, fmt.Errorf("invalid field reference %q", ref)
	}
	return out, nil
}

// String formats the reference back to its textual form.
func (r FieldRef) String() string {
	s := r.Name
	if r.Relation != "" {
		s = r.Relation + "." + s
	}
	if r.PostOperation != "" {
		s += "::" + r.PostOperation
	}
	return s
}
