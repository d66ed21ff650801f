package queryir

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/roach88/semsql/internal/ir"
)

// Request is the document form of a query, read from YAML or JSON.
//
//	type: segmentation
//	model: events
//	dimensions: [country, created_at::day]
//	measures: [total_events]
//	filters:
//	  - field: country
//	    conditions: [{operator: in, value: [DE, FR]}]
//	limit: 100
type Request struct {
	Type        Kind              `yaml:"type" json:"type"`
	Model       string            `yaml:"model,omitempty" json:"model,omitempty"`
	Dimensions  []string          `yaml:"dimensions,omitempty" json:"dimensions,omitempty"`
	Measures    []string          `yaml:"measures,omitempty" json:"measures,omitempty"`
	Filters     []FilterSpec      `yaml:"filters,omitempty" json:"filters,omitempty"`
	OrderBy     []OrderSpec       `yaml:"order_by,omitempty" json:"order_by,omitempty"`
	Limit       int               `yaml:"limit,omitempty" json:"limit,omitempty"`
	Context     string            `yaml:"context,omitempty" json:"context,omitempty"`
	Materialize *MaterializeSpec  `yaml:"materialize,omitempty" json:"materialize,omitempty"`
	Steps       []FunnelStepSpec  `yaml:"steps,omitempty" json:"steps,omitempty"`
	Window      *WindowSpec       `yaml:"window,omitempty" json:"window,omitempty"`
	Dimension   string            `yaml:"dimension,omitempty" json:"dimension,omitempty"`
	SQL         string            `yaml:"sql,omitempty" json:"sql,omitempty"`
	Options     map[string]string `yaml:"options,omitempty" json:"options,omitempty"`
}

// FilterSpec is one filter group, or an OR of nested groups when Any is set.
type FilterSpec struct {
	Field      string          `yaml:"field,omitempty" json:"field,omitempty"`
	Match      ir.FilterMatch  `yaml:"match,omitempty" json:"match,omitempty"`
	Conditions []ConditionSpec `yaml:"conditions,omitempty" json:"conditions,omitempty"`
	Any        []FilterSpec    `yaml:"any,omitempty" json:"any,omitempty"`
}

// ConditionSpec is one operator and operand. Value is kept as a YAML node so
// numbers retain their textual form.
type ConditionSpec struct {
	Operator string    `yaml:"operator" json:"operator"`
	Value    yaml.Node `yaml:"value,omitempty" json:"-"`
}

// OrderSpec sorts by a selected field.
type OrderSpec struct {
	Field string `yaml:"field" json:"field"`
	Desc  bool   `yaml:"desc,omitempty" json:"desc,omitempty"`
}

// MaterializeSpec requests a CREATE TABLE/VIEW around the query.
type MaterializeSpec struct {
	Kind ir.ObjectKind `yaml:"kind" json:"kind"`
	Name string        `yaml:"name" json:"name"`
}

// FunnelStepSpec is one funnel step.
type FunnelStepSpec struct {
	Model   string       `yaml:"model" json:"model"`
	Filters []FilterSpec `yaml:"filters,omitempty" json:"filters,omitempty"`
}

// WindowSpec is a funnel conversion window.
type WindowSpec struct {
	Value int    `yaml:"value" json:"value"`
	Unit  string `yaml:"unit" json:"unit"`
}

// ParseRequest decodes a YAML (or JSON) query document. Unknown fields are errors.
func ParseRequest(data []byte) (*Request, error) {
	return DecodeRequest(bytes.NewReader(data))
}

// DecodeRequest reads one YAML (or JSON) query document from r.
func DecodeRequest(r io.Reader) (*Request, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var req Request
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty query document")
		}
		return nil, fmt.Errorf("decode query: %w", err)
	}
	return &req, nil
}

// Query converts the document into a Query.
func (r *Request) Query() (Query, error) {
	switch r.Type {
	case KindSegmentation, "":
		return r.segmentation()
	case KindFunnel:
		return r.funnel()
	case KindSQL:
		return &RawSQL{SQL: r.SQL, Limit: r.Limit}, nil
	default:
		return nil, fmt.Errorf("unknown query type %q", r.Type)
	}
}

func (r *Request) segmentation() (*Segmentation, error) {
	ctx, err := ir.ParseAggregationContext(r.Context)
	if err != nil {
		return nil, err
	}
	filter, err := filtersToPredicate(r.Filters)
	if err != nil {
		return nil, err
	}
	seg := &Segmentation{
		Model:      r.Model,
		Dimensions: r.Dimensions,
		Measures:   r.Measures,
		Filter:     filter,
		Limit:      r.Limit,
		Context:    ctx,
	}
	for _, o := range r.OrderBy {
		seg.OrderBy = append(seg.OrderBy, Order{Field: o.Field, Descending: o.Desc})
	}
	if r.Materialize != nil {
		seg.Materialize = &Materialize{Kind: r.Materialize.Kind, Name: r.Materialize.Name}
	}
	return seg, nil
}

func (r *Request) funnel() (*Funnel, error) {
	f := &Funnel{Dimension: r.Dimension, Limit: r.Limit}
	if r.Window != nil {
		f.Window = Window{Value: r.Window.Value, Unit: r.Window.Unit}
	}
	for i, s := range r.Steps {
		filter, err := filtersToPredicate(s.Filters)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		f.Steps = append(f.Steps, FunnelStep{Model: s.Model, Filter: filter})
	}
	return f, nil
}

// filtersToPredicate ANDs a filter list. A single group is returned bare.
func filtersToPredicate(specs []FilterSpec) (Predicate, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	preds := make([]Predicate, 0, len(specs))
	for _, s := range specs {
		p, err := s.predicate()
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	if len(preds) == 1 {
		return preds[0], nil
	}
	return &And{Predicates: preds}, nil
}

func (s FilterSpec) predicate() (Predicate, error) {
	if len(s.Any) > 0 {
		if s.Field != "" || len(s.Conditions) > 0 {
			return nil, fmt.Errorf("filter: any cannot be combined with field or conditions")
		}
		or := &Or{}
		for _, sub := range s.Any {
			p, err := sub.predicate()
			if err != nil {
				return nil, err
			}
			or.Predicates = append(or.Predicates, p)
		}
		return or, nil
	}
	g := &Group{Field: s.Field, Match: s.Match}
	for i, c := range s.Conditions {
		val, err := ValueFromNode(&c.Value)
		if err != nil {
			return nil, fmt.Errorf("filter on %q: condition %d: %w", s.Field, i, err)
		}
		g.Conditions = append(g.Conditions, Condition{Operator: c.Operator, Value: val})
	}
	return g, nil
}

// ValueFromNode converts a YAML operand into an IRValue. Integers become
// IRInt when they fit int64; floats keep their source text as IRNumber.
// An absent node yields nil.
func ValueFromNode(n *yaml.Node) (ir.IRValue, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.AliasNode:
		return ValueFromNode(n.Alias)
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return ValueFromNode(n.Content[0])
	case yaml.SequenceNode:
		arr := make(ir.IRArray, 0, len(n.Content))
		for i, elem := range n.Content {
			v, err := ValueFromNode(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			if v == nil {
				v = ir.IRNull{}
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.MappingNode:
		return nil, fmt.Errorf("line %d: object operands are not supported", n.Line)
	}

	switch n.ShortTag() {
	case "!!null":
		return ir.IRNull{}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return ir.IRBool(b), nil
	case "!!int":
		if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
			return ir.IRInt(i), nil
		}
		num, err := ir.NewIRNumber(n.Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return num, nil
	case "!!float":
		num, err := ir.NewIRNumber(n.Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return num, nil
	default:
		return ir.IRString(n.Value), nil
	}
}
