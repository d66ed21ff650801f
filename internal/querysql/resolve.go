package querysql

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/semsql/internal/dialect"
	"github.com/roach88/semsql/internal/ir"
)

// field is a dimension or measure reference resolved to SQL.
type field struct {
	Ref     ir.FieldRef
	Model   string // model that owns the field
	Expr    string // SQL expression
	Type    ir.FieldType
	Measure bool
}

// Alias is the output column name, e.g. "created_at::day".
func (f field) Alias() string { return f.Ref.String() }

// join is a relation pulled into the FROM clause.
type join struct {
	relation *ir.Relation
	target   *ir.Model
}

// resolver resolves field references against a root model and records the
// relations and references they touch.
type resolver struct {
	b      *dialect.Bridge
	models ir.Models
	root   *ir.Model
	ctx    ir.AggregationContext
	refs   *dialect.ReferenceSet
	joins  []join
}

func newResolver(b *dialect.Bridge, models ir.Models, root string, ctx ir.AggregationContext, refs *dialect.ReferenceSet) (*resolver, error) {
	m, err := models.Get(root)
	if err != nil {
		return nil, err
	}
	refs.AddModel(m.Name)
	return &resolver{b: b, models: models, root: m, ctx: ctx, refs: refs}, nil
}

// tableAlias is the quoted alias of the root model or a joined relation.
func (r *resolver) tableAlias(relation string) string {
	if relation == "" {
		return r.b.QuoteIdentifier(r.root.Name)
	}
	return r.b.QuoteIdentifier(relation)
}

// owner returns the model a reference points into, joining the relation if needed.
func (r *resolver) owner(ref ir.FieldRef) (*ir.Model, error) {
	if ref.Relation == "" {
		return r.root, nil
	}
	for _, j := range r.joins {
		if j.relation.Name == ref.Relation {
			return j.target, nil
		}
	}
	rel, ok := r.root.Relation(ref.Relation)
	if !ok {
		return nil, fmt.Errorf("model %q has no relation %q", r.root.Name, ref.Relation)
	}
	target, err := r.models.Get(rel.Model)
	if err != nil {
		return nil, fmt.Errorf("relation %q: %w", rel.Name, err)
	}
	r.joins = append(r.joins, join{relation: rel, target: target})
	r.refs.AddModel(target.Name)
	return target, nil
}

// columnExpr renders a column or SQL expression qualified by a table alias.
func (r *resolver) columnExpr(alias, name, column, sql string) string {
	if sql != "" {
		return strings.ReplaceAll(sql, "{{TABLE}}", alias)
	}
	if column == "" {
		column = name
	}
	return alias + "." + r.b.QuoteIdentifier(column)
}

func (r *resolver) dimension(refText string) (field, error) {
	ref, err := ir.ParseFieldRef(refText)
	if err != nil {
		return field{}, err
	}
	owner, err := r.owner(ref)
	if err != nil {
		return field{}, err
	}
	dim, ok := owner.Dimension(ref.Name)
	if !ok {
		return field{}, fmt.Errorf("model %q has no dimension %q", owner.Name, ref.Name)
	}
	expr := r.columnExpr(r.tableAlias(ref.Relation), dim.Name, dim.Column, dim.SQL)

	if ref.PostOperation != "" {
		if !slices.Contains(dim.PostOperations, ref.PostOperation) {
			return field{}, fmt.Errorf("dimension %q has no post operation %q", refText, ref.PostOperation)
		}
		unit, err := ir.ParseTimeUnit(ref.PostOperation)
		if err != nil {
			return field{}, err
		}
		if !unit.AppliesTo(dim.Type) {
			return field{}, fmt.Errorf("post operation %q does not apply to %s dimension %q", unit, dim.Type, refText)
		}
		if expr, err = r.b.DateTrunc(expr, unit); err != nil {
			return field{}, err
		}
	}
	r.refs.AddDimension(owner.Name, dim.Name)
	return field{Ref: ref, Model: owner.Name, Expr: expr, Type: dim.Type}, nil
}

func (r *resolver) measure(refText string) (field, error) {
	ref, err := ir.ParseFieldRef(refText)
	if err != nil {
		return field{}, err
	}
	if ref.PostOperation != "" {
		return field{}, fmt.Errorf("measure %q cannot take a post operation", refText)
	}
	owner, err := r.owner(ref)
	if err != nil {
		return field{}, err
	}
	m, ok := owner.Measure(ref.Name)
	if !ok {
		return field{}, fmt.Errorf("model %q has no measure %q", owner.Name, ref.Name)
	}
	column := r.columnExpr(r.tableAlias(ref.Relation), m.Name, m.Column, m.SQL)
	expr, err := r.b.RenderAggregation(column, m.Aggregation, r.ctx)
	if err != nil {
		return field{}, err
	}
	r.refs.AddMeasure(owner.Name, m.Name)
	return field{Ref: ref, Model: owner.Name, Expr: expr, Type: m.Aggregation.ResultType(m.Type), Measure: true}, nil
}

// filterField resolves a filter's field as a dimension, falling back to a measure.
func (r *resolver) filterField(refText string) (field, error) {
	f, dimErr := r.dimension(refText)
	if dimErr == nil {
		return f, nil
	}
	ref, err := ir.ParseFieldRef(refText)
	if err != nil {
		return field{}, err
	}
	if owner, err := r.owner(ref); err == nil {
		if _, ok := owner.Measure(ref.Name); ok {
			return r.measure(refText)
		}
	}
	return field{}, dimErr
}

// from renders the FROM clause with every joined relation.
func (r *resolver) from() (string, error) {
	ref, err := r.b.SQLReferenceForTarget(r.b.FillDefaultsToTarget(r.root.Target))
	if err != nil {
		return "", fmt.Errorf("model %q: %w", r.root.Name, err)
	}
	var sb strings.Builder
	sb.WriteString("FROM " + ref + " AS " + r.tableAlias(""))
	for _, j := range r.joins {
		target, err := r.b.SQLReferenceForTarget(r.b.FillDefaultsToTarget(j.target.Target))
		if err != nil {
			return "", fmt.Errorf("model %q: %w", j.target.Name, err)
		}
		on, err := r.joinCondition(j.relation)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, "\n%s %s AS %s ON %s", j.relation.Join.SQL(), target, r.tableAlias(j.relation.Name), on)
	}
	return sb.String(), nil
}

func (r *resolver) joinCondition(rel *ir.Relation) (string, error) {
	source, target := r.tableAlias(""), r.tableAlias(rel.Name)
	if rel.SQL != "" {
		on := strings.ReplaceAll(rel.SQL, "{{TABLE}}", source)
		return strings.ReplaceAll(on, "{{TARGET}}", target), nil
	}
	if rel.SourceColumn == "" || rel.TargetColumn == "" {
		return "", fmt.Errorf("relation %q needs source and target columns or a join expression", rel.Name)
	}
	return fmt.Sprintf("%s.%s = %s.%s",
		source, r.b.QuoteIdentifier(rel.SourceColumn),
		target, r.b.QuoteIdentifier(rel.TargetColumn)), nil
}
