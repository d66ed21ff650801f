package dialect

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"text/template"

	"github.com/roach88/semsql/internal/ir"
)

// Function is a semantic function name resolved through the function table.
type Function string

const (
	// FuncNow: current timestamp. No arguments.
	FuncNow Function = "NOW"
	// FuncDateAdd: (expr, unit, amount).
	FuncDateAdd Function = "DATE_ADD"
	// FuncDateTrunc: (expr, unit).
	FuncDateTrunc Function = "DATE_TRUNC"
	// FuncDateDiff: (start, end, unit), whole units from start to end.
	FuncDateDiff Function = "DATE_DIFF"
	// FuncCreateTable: (name, select) persists a query result as a table.
	FuncCreateTable Function = "CREATE_TABLE_AS"
	// FuncCreateView: (name, select).
	FuncCreateView Function = "CREATE_VIEW_AS"
	// FuncCreateMaterializedView: (name, select).
	FuncCreateMaterializedView Function = "CREATE_MATERIALIZED_VIEW_AS"
)

var functionArity = map[Function]int{
	FuncNow:       0,
	FuncDateAdd:   3,
	FuncDateTrunc: 2,
	FuncDateDiff:  3,

	FuncCreateTable:            2,
	FuncCreateView:             2,
	FuncCreateMaterializedView: 2,
}

var ansiFunctions = map[Function]string{
	FuncNow:       "CURRENT_TIMESTAMP",
	FuncDateAdd:   "{{index . 0}} + INTERVAL '{{index . 2}}' {{index . 1}}",
	FuncDateTrunc: "DATE_TRUNC('{{index . 1}}', {{index . 0}})",
	FuncDateDiff:  "DATE_DIFF('{{index . 2}}', {{index . 0}}, {{index . 1}})",

	FuncCreateTable:            "CREATE TABLE {{index . 0}} AS\n{{index . 1}}",
	FuncCreateView:             "CREATE VIEW {{index . 0}} AS\n{{index . 1}}",
	FuncCreateMaterializedView: "CREATE MATERIALIZED VIEW {{index . 0}} AS\n{{index . 1}}",
}

// Functions returns the semantic function names, sorted.
func Functions() []Function {
	out := make([]Function, 0, len(functionArity))
	for f := range functionArity {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// errUnsupportedFunction is returned by the "unsupported" template function.
var errUnsupportedFunction = errors.New("unsupported")

// templateFuncs are available to every bridge template.
var templateFuncs = template.FuncMap{
	"quote": QuoteString,
	// unsupported aborts rendering; used for argument values a dialect cannot express.
	"unsupported": func(msg string) (string, error) {
		return "", fmt.Errorf("%w: %s", errUnsupportedFunction, msg)
	},
}

// parseChecked parses a template and executes it once against sample data so
// that references to missing fields fail at registration, not at render time.
func parseChecked(name, text string, sample any) (*template.Template, error) {
	t, err := template.New(name).Funcs(templateFuncs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, sample); err != nil && !errors.Is(err, errUnsupportedFunction) {
		return nil, err
	}
	return t, nil
}

func (b *Bridge) compileFunctions() error {
	b.functions = make(map[Function]*template.Template, len(functionArity))
	for f, text := range ansiFunctions {
		if override, ok := b.def.Functions[f]; ok {
			text = override
		}
		sample := make([]string, functionArity[f])
		for i := range sample {
			sample[i] = "day"
		}
		t, err := parseChecked(string(f), text, sample)
		if err != nil {
			return NewError(ErrInvalidDefinition, b.def.Name, nil, "function %s: %v", f, err)
		}
		b.functions[f] = t
	}
	for f := range b.def.Functions {
		if _, ok := functionArity[f]; !ok {
			return NewError(ErrInvalidDefinition, b.def.Name, nil, "unknown function %s", f)
		}
	}
	return nil
}

// RenderFunction renders a semantic function with positional SQL arguments.
func (b *Bridge) RenderFunction(f Function, args ...string) (string, error) {
	details := map[string]string{"function": string(f)}
	t, ok := b.functions[f]
	if !ok {
		return "", NewError(ErrUnimplemented, b.def.Name, details, "function %s is not defined", f)
	}
	if want := functionArity[f]; len(args) != want {
		return "", fmt.Errorf("function %s takes %d arguments, got %d", f, want, len(args))
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, args); err != nil {
		if errors.Is(err, errUnsupportedFunction) {
			return "", NewError(ErrUnimplemented, b.def.Name, details, "%s: %v", f, err)
		}
		return "", NewError(ErrInvalidDefinition, b.def.Name, details, "render %s: %v", f, err)
	}
	return buf.String(), nil
}

// Now renders the current timestamp.
func (b *Bridge) Now() (string, error) {
	return b.RenderFunction(FuncNow)
}

// DateAdd renders expr + amount units. Weeks and quarters are rewritten to
// days and months so every dialect only needs the base units.
func (b *Bridge) DateAdd(expr string, unit ir.TimeUnit, amount int) (string, error) {
	switch unit {
	case ir.UnitWeek:
		unit, amount = ir.UnitDay, amount*7
	case ir.UnitQuarter:
		unit, amount = ir.UnitMonth, amount*3
	}
	if _, err := ir.ParseTimeUnit(string(unit)); err != nil {
		return "", err
	}
	return b.RenderFunction(FuncDateAdd, expr, string(unit), strconv.Itoa(amount))
}

// DateTrunc renders expr truncated to unit.
func (b *Bridge) DateTrunc(expr string, unit ir.TimeUnit) (string, error) {
	if _, err := ir.ParseTimeUnit(string(unit)); err != nil {
		return "", err
	}
	return b.RenderFunction(FuncDateTrunc, expr, string(unit))
}

// DateDiff renders the number of whole units between start and end.
func (b *Bridge) DateDiff(start, end string, unit ir.TimeUnit) (string, error) {
	if _, err := ir.ParseTimeUnit(string(unit)); err != nil {
		return "", err
	}
	return b.RenderFunction(FuncDateDiff, start, end, string(unit))
}
