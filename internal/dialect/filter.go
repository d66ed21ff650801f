package dialect

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/roach88/semsql/internal/ir"
)

// likeEscape is appended to every LIKE predicate; patterns escape wildcards
// with a backslash.
const likeEscape = `ESCAPE '\'`

// FilterData is the input of a filter override template.
//
//	{{.Expr}}     the field's SQL expression
//	{{.Value}}    the operand as a dialect literal ('liet', 42, DATE '2000-01-03')
//	{{.Pattern}}  the LIKE pattern literal for string matching ('%liet%')
//	{{.Values}}   comma-separated literals for IN / NOT_IN
//	{{.Escape}}   the LIKE escape clause
type FilterData struct {
	Expr    string
	Value   string
	Pattern string
	Values  string
	Escape  string
}

func (b *Bridge) compileFilters() error {
	b.filterOverrides = make(map[ir.Operator]*template.Template, len(b.def.Filters))
	for op, text := range b.def.Filters {
		if !op.Valid() {
			return NewError(ErrInvalidDefinition, b.def.Name, nil, "filter override for invalid operator %s", op)
		}
		t, err := parseChecked(op.String(), text, FilterData{Expr: "x", Value: "1", Pattern: "'%'", Values: "1", Escape: likeEscape})
		if err != nil {
			return NewError(ErrInvalidDefinition, b.def.Name, nil, "filter %s: %v", op, err)
		}
		b.filterOverrides[op] = t
	}
	return nil
}

// RenderFilter renders one typed filter on expr as a boolean SQL predicate.
//
// The operator must belong to the field type's legal set and the operand
// must fit the type; otherwise it fails with ErrInvalidFilterCombination and
// returns no SQL.
func (b *Bridge) RenderFilter(expr string, f ir.Filter) (string, error) {
	op := f.Operator
	details := map[string]string{"field_type": f.Type.String(), "operator": op.String()}
	invalid := func(format string, args ...any) (string, error) {
		return "", NewError(ErrInvalidFilterCombination, b.def.Name, details, format, args...)
	}

	if !op.Valid() {
		return invalid("invalid operator %s", op)
	}
	if !op.AppliesTo(f.Type) {
		return invalid("operator %s cannot be applied to a %s field", op, f.Type)
	}

	if op.Family == ir.FamilyAny {
		switch op.Kind {
		case ir.OpIsSet:
			return expr + " IS NOT NULL", nil
		case ir.OpIsNotSet:
			return expr + " IS NULL", nil
		}
	}

	if isNull(f.Value) {
		return invalid("operator %s requires an operand", op)
	}

	data := FilterData{Expr: expr, Escape: likeEscape}
	switch {
	case op.TakesList():
		values, err := b.listLiterals(f.Type, f.Value)
		if err != nil {
			return invalid("%s: %v", op, err)
		}
		data.Values = values
	case op.Family == ir.FamilyArray:
		elem, _ := f.Type.ElementType()
		lit, err := b.literal(elem, f.Value)
		if err != nil {
			return invalid("%s: %v", op, err)
		}
		data.Value = lit
	default:
		lit, err := b.literal(f.Type, f.Value)
		if err != nil {
			return invalid("%s: %v", op, err)
		}
		data.Value = lit
		if op.Family == ir.FamilyString {
			data.Pattern = b.likePattern(op.Kind, f.Value)
		}
	}

	if t, ok := b.filterOverrides[op]; ok {
		var buf bytes.Buffer
		if err := t.Execute(&buf, data); err != nil {
			return invalid("render %s: %v", op, err)
		}
		return buf.String(), nil
	}

	switch op.Kind {
	case ir.OpEquals, ir.OpIs:
		return expr + " = " + data.Value, nil
	case ir.OpNotEquals:
		return fmt.Sprintf("(%s <> %s OR %s IS NULL)", expr, data.Value, expr), nil
	case ir.OpContains, ir.OpStartsWith, ir.OpEndsWith:
		return fmt.Sprintf("%s LIKE %s %s", expr, data.Pattern, likeEscape), nil
	case ir.OpIn:
		return fmt.Sprintf("%s IN (%s)", expr, data.Values), nil
	case ir.OpNotIn:
		return fmt.Sprintf("(%s NOT IN (%s) OR %s IS NULL)", expr, data.Values, expr), nil
	case ir.OpGreaterThan:
		return expr + " > " + data.Value, nil
	case ir.OpGreaterThanOrEquals:
		return expr + " >= " + data.Value, nil
	case ir.OpLessThan:
		return expr + " < " + data.Value, nil
	case ir.OpLessThanOrEquals:
		return expr + " <= " + data.Value, nil
	default:
		return invalid("operator %s is not supported by this dialect", op)
	}
}

// RenderFilterGroup renders all filters on one field as a parenthesized
// predicate joined by AND (MatchAll) or OR (MatchAny). Any failing filter
// fails the whole group.
func (b *Bridge) RenderFilterGroup(expr string, filters []ir.Filter, match ir.FilterMatch) (string, error) {
	if len(filters) == 0 {
		return "", NewError(ErrInvalidFilterCombination, b.def.Name, nil, "empty filter group on %s", expr)
	}
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		sql, err := b.RenderFilter(expr, f)
		if err != nil {
			return "", err
		}
		parts = append(parts, sql)
	}
	return "(" + strings.Join(parts, " "+match.Connective()+" ") + ")", nil
}

func (b *Bridge) listLiterals(ft ir.FieldType, v ir.IRValue) (string, error) {
	list, ok := v.(ir.IRArray)
	if !ok {
		list = ir.IRArray{v}
	}
	if len(list) == 0 {
		return "", fmt.Errorf("empty value list")
	}
	lits := make([]string, 0, len(list))
	for i, elem := range list {
		if isNull(elem) {
			return "", fmt.Errorf("value %d is null; use is_set or is_not_set", i)
		}
		lit, err := b.literal(ft, elem)
		if err != nil {
			return "", fmt.Errorf("value %d: %w", i, err)
		}
		lits = append(lits, lit)
	}
	return strings.Join(lits, ", "), nil
}

func (b *Bridge) likePattern(kind ir.OperatorKind, v ir.IRValue) string {
	s, ok := v.(ir.IRString)
	if !ok {
		return ""
	}
	escaped := b.def.Literals.escapeLike(string(s))
	switch kind {
	case ir.OpContains:
		return QuoteString("%" + escaped + "%")
	case ir.OpStartsWith:
		return QuoteString(escaped + "%")
	case ir.OpEndsWith:
		return QuoteString("%" + escaped)
	}
	return ""
}

func isNull(v ir.IRValue) bool {
	if v == nil {
		return true
	}
	_, null := v.(ir.IRNull)
	return null
}
