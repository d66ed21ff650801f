package dialect

import (
	"bytes"
	"text/template"

	"github.com/roach88/semsql/internal/ir"
)

// AggregationTemplate renders one aggregation per context. Templates use
// {{.Column}} for the column expression.
//
// For aggregations that are not context-sensitive only Adhoc is needed; it
// is used in every context. Context-sensitive aggregations must set all three.
type AggregationTemplate struct {
	Adhoc      string
	Accumulate string
	Merge      string
}

// ansiAggregations are the defaults every dialect inherits. They render the
// same function in every context. APPROXIMATE_UNIQUE has no ANSI form.
var ansiAggregations = map[ir.AggregationType]string{
	ir.AggregationSum:             "SUM({{.Column}})",
	ir.AggregationSumDistinct:     "SUM(DISTINCT {{.Column}})",
	ir.AggregationCount:           "COUNT({{.Column}})",
	ir.AggregationCountUnique:     "COUNT(DISTINCT {{.Column}})",
	ir.AggregationAverage:         "AVG({{.Column}})",
	ir.AggregationAverageDistinct: "AVG(DISTINCT {{.Column}})",
	ir.AggregationMinimum:         "MIN({{.Column}})",
	ir.AggregationMaximum:         "MAX({{.Column}})",
}

var ansiAggregationTemplates = func() map[ir.AggregationType]*template.Template {
	out := make(map[ir.AggregationType]*template.Template, len(ansiAggregations))
	for a, text := range ansiAggregations {
		out[a] = template.Must(template.New(a.String()).Option("missingkey=error").Parse(text))
	}
	return out
}()

type compiledAggregation [3]*template.Template // indexed by ir.AggregationContext

type aggregationData struct {
	Column string
}

func (b *Bridge) compileAggregations() error {
	name := b.def.Name
	b.unsupported = make(map[ir.AggregationType]bool, len(b.def.UnsupportedAggregations))
	for _, a := range b.def.UnsupportedAggregations {
		if !a.Valid() || a == ir.AggregationNone {
			return NewError(ErrInvalidDefinition, name, nil, "cannot declare %s unsupported", a)
		}
		b.unsupported[a] = true
	}

	b.aggOverrides = make(map[ir.AggregationType]compiledAggregation, len(b.def.Aggregations))
	for a, tmpl := range b.def.Aggregations {
		if !a.Valid() || a == ir.AggregationNone {
			return NewError(ErrInvalidDefinition, name, nil, "cannot override aggregation %s", a)
		}
		if b.unsupported[a] {
			return NewError(ErrInvalidDefinition, name, nil, "aggregation %s is both overridden and unsupported", a)
		}
		texts := [3]string{tmpl.Adhoc, tmpl.Accumulate, tmpl.Merge}
		if !a.ContextSensitive() {
			if tmpl.Adhoc == "" {
				return NewError(ErrInvalidDefinition, name, nil, "aggregation %s override has no template", a)
			}
			for i := range texts {
				if texts[i] == "" {
					texts[i] = tmpl.Adhoc
				}
			}
		}
		var compiled compiledAggregation
		for _, ctx := range ir.AllAggregationContexts() {
			if texts[ctx] == "" {
				return NewError(ErrUnsupportedAggregationContext, name,
					map[string]string{"aggregation": a.String(), "context": ctx.String()},
					"%s has no %s rendering; declare it unsupported or supply all three contexts", a, ctx)
			}
			t, err := parseChecked(a.String()+"/"+ctx.String(), texts[ctx], aggregationData{Column: "x"})
			if err != nil {
				return NewError(ErrInvalidDefinition, name, nil, "aggregation %s: %v", a, err)
			}
			compiled[ctx] = t
		}
		b.aggOverrides[a] = compiled
	}

	// Every aggregation must be either renderable in all contexts or declared unsupported.
	for _, a := range ir.AllAggregationTypes() {
		_, overridden := b.aggOverrides[a]
		_, ansi := ansiAggregationTemplates[a]
		if !overridden && !ansi && !b.unsupported[a] {
			return NewError(ErrUnsupportedAggregationContext, name,
				map[string]string{"aggregation": a.String()},
				"%s has no rendering in any context and is not declared unsupported", a)
		}
	}
	return nil
}

// RenderAggregation renders an aggregation of column in the given context.
//
// Overrides are consulted first, then the ANSI defaults. AggregationNone
// returns column unchanged: the expression is already an aggregate.
func (b *Bridge) RenderAggregation(column string, a ir.AggregationType, ctx ir.AggregationContext) (string, error) {
	details := map[string]string{"aggregation": a.String(), "context": ctx.String()}
	if !ctx.Valid() {
		return "", NewError(ErrUnsupportedAggregationContext, b.def.Name, details, "invalid aggregation context %s", ctx)
	}
	if a == ir.AggregationNone {
		return column, nil
	}
	if b.unsupported[a] {
		return "", NewError(ErrUnsupportedAggregationContext, b.def.Name, details,
			"%s is not supported by this dialect", a)
	}

	var t *template.Template
	if compiled, ok := b.aggOverrides[a]; ok {
		t = compiled[ctx]
	} else if def, ok := ansiAggregationTemplates[a]; ok {
		t = def
	}
	if t == nil {
		return "", NewError(ErrUnsupportedAggregationContext, b.def.Name, details,
			"%s cannot be rendered in %s context", a, ctx)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, aggregationData{Column: column}); err != nil {
		return "", NewError(ErrInvalidDefinition, b.def.Name, details, "render %s: %v", a, err)
	}
	return buf.String(), nil
}
