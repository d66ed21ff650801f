package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/semsql/internal/ir"
)

// CompileModel parses a CUE value into a Model.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the model struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`model: orders: { target: table: "orders", ... }`)
//	m, err := CompileModel(v.LookupPath(cue.ParsePath("model.orders")))
//
// A model looks like:
//
//	model: orders: {
//		description: "One row per order"
//		target: { schema: "sales", table: "orders" } // or target: "sales.orders", or target: sql: "..."
//		dimension: {
//			country: type: "string"
//			created_at: { type: "timestamp", post_operations: ["day", "month"] }
//		}
//		measure: {
//			revenue: { column: "amount", aggregation: "sum", type: "decimal" }
//		}
//		relation: customer: { model: "customers", source_column: "customer_id", target_column: "id" }
//		mappings: { event_timestamp: "created_at", user_id: "customer_id" }
//	}
func CompileModel(v cue.Value) (*ir.Model, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	m := &ir.Model{}

	// Model name is the struct label (the path selector)
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		m.Name = labels[len(labels)-1].String()
	}

	var err error
	if m.Label, err = optionalString(v, "label"); err != nil {
		return nil, err
	}
	if m.Description, err = optionalString(v, "description"); err != nil {
		return nil, err
	}

	targetVal := v.LookupPath(cue.ParsePath("target"))
	if !targetVal.Exists() {
		return nil, &CompileError{Field: "target", Message: "target is required", Pos: v.Pos()}
	}
	if m.Target, err = parseTarget(targetVal); err != nil {
		return nil, err
	}

	if m.Dimensions, err = parseDimensions(v); err != nil {
		return nil, err
	}
	if m.Measures, err = parseMeasures(v); err != nil {
		return nil, err
	}
	if len(m.Dimensions) == 0 && len(m.Measures) == 0 {
		return nil, &CompileError{
			Field:   "dimension",
			Message: "at least one dimension or measure is required",
			Pos:     v.Pos(),
		}
	}
	if m.Relations, err = parseRelations(v); err != nil {
		return nil, err
	}

	mappingsVal := v.LookupPath(cue.ParsePath("mappings"))
	if mappingsVal.Exists() {
		if m.Mappings.EventTimestamp, err = optionalString(mappingsVal, "event_timestamp"); err != nil {
			return nil, err
		}
		if m.Mappings.UserID, err = optionalString(mappingsVal, "user_id"); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// CompileModels compiles every model under the "model" field of v.
// All compile errors are collected; models that fail are left out.
func CompileModels(v cue.Value) (ir.Models, []error) {
	models := ir.Models{}
	modelsVal := v.LookupPath(cue.ParsePath("model"))
	if !modelsVal.Exists() {
		return models, nil
	}

	iter, err := modelsVal.Fields()
	if err != nil {
		return nil, []error{formatCUEError(err)}
	}
	var errs []error
	for iter.Next() {
		m, err := CompileModel(iter.Value())
		if err != nil {
			errs = append(errs, fmt.Errorf("model.%s: %w", iter.Label(), err))
			continue
		}
		models[m.Name] = m
	}
	return models, errs
}

// parseTarget accepts a struct with database/schema/table/sql or a dotted
// "schema.table" string.
func parseTarget(v cue.Value) (ir.Target, error) {
	var t ir.Target
	if s, err := v.String(); err == nil {
		parts := strings.Split(s, ".")
		switch len(parts) {
		case 1:
			t.Table = parts[0]
		case 2:
			t.Schema, t.Table = parts[0], parts[1]
		case 3:
			t.Database, t.Schema, t.Table = parts[0], parts[1], parts[2]
		default:
			return t, &CompileError{Field: "target", Message: fmt.Sprintf("invalid table name %q", s), Pos: v.Pos()}
		}
		return t, nil
	}

	var err error
	if t.Database, err = optionalString(v, "database"); err != nil {
		return t, err
	}
	if t.Schema, err = optionalString(v, "schema"); err != nil {
		return t, err
	}
	if t.Table, err = optionalString(v, "table"); err != nil {
		return t, err
	}
	if t.SQL, err = optionalString(v, "sql"); err != nil {
		return t, err
	}
	if t.Table == "" && t.SQL == "" {
		return t, &CompileError{Field: "target", Message: "target needs a table or sql", Pos: v.Pos()}
	}
	return t, nil
}

// parseDimensions extracts dimension definitions in declaration order.
func parseDimensions(v cue.Value) ([]ir.Dimension, error) {
	var dims []ir.Dimension

	dimVal := v.LookupPath(cue.ParsePath("dimension"))
	if !dimVal.Exists() {
		return dims, nil
	}
	iter, err := dimVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		dv := iter.Value()
		d := ir.Dimension{Name: iter.Label()}
		if d.Type, err = parseFieldType(dv, "dimension."+d.Name); err != nil {
			return nil, err
		}
		if d.Description, err = optionalString(dv, "description"); err != nil {
			return nil, err
		}
		if d.Column, err = optionalString(dv, "column"); err != nil {
			return nil, err
		}
		if d.SQL, err = optionalString(dv, "sql"); err != nil {
			return nil, err
		}
		if d.PostOperations, err = optionalStrings(dv, "post_operations"); err != nil {
			return nil, err
		}
		if d.Hidden, err = optionalBool(dv, "hidden"); err != nil {
			return nil, err
		}
		dims = append(dims, d)
	}
	return dims, nil
}

// parseMeasures extracts measure definitions in declaration order.
func parseMeasures(v cue.Value) ([]ir.Measure, error) {
	var measures []ir.Measure

	measureVal := v.LookupPath(cue.ParsePath("measure"))
	if !measureVal.Exists() {
		return measures, nil
	}
	iter, err := measureVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		mv := iter.Value()
		m := ir.Measure{Name: iter.Label()}
		if m.Type, err = parseFieldType(mv, "measure."+m.Name); err != nil {
			return nil, err
		}
		agg, err := optionalString(mv, "aggregation")
		if err != nil {
			return nil, err
		}
		if m.Aggregation, err = ir.ParseAggregationType(agg); err != nil {
			return nil, &CompileError{Field: "measure." + m.Name + ".aggregation", Message: err.Error(), Pos: mv.Pos()}
		}
		if m.Description, err = optionalString(mv, "description"); err != nil {
			return nil, err
		}
		if m.Column, err = optionalString(mv, "column"); err != nil {
			return nil, err
		}
		if m.SQL, err = optionalString(mv, "sql"); err != nil {
			return nil, err
		}
		if m.Hidden, err = optionalBool(mv, "hidden"); err != nil {
			return nil, err
		}
		measures = append(measures, m)
	}
	return measures, nil
}

// parseRelations extracts relation definitions in declaration order.
func parseRelations(v cue.Value) ([]ir.Relation, error) {
	var relations []ir.Relation

	relVal := v.LookupPath(cue.ParsePath("relation"))
	if !relVal.Exists() {
		return relations, nil
	}
	iter, err := relVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		rv := iter.Value()
		r := ir.Relation{Name: iter.Label()}
		if r.Model, err = optionalString(rv, "model"); err != nil {
			return nil, err
		}
		if r.Model == "" {
			return nil, &CompileError{Field: "relation." + r.Name + ".model", Message: "relation model is required", Pos: rv.Pos()}
		}
		join, err := optionalString(rv, "join")
		if err != nil {
			return nil, err
		}
		r.Join = ir.JoinType(strings.ToLower(join))
		if r.SourceColumn, err = optionalString(rv, "source_column"); err != nil {
			return nil, err
		}
		if r.TargetColumn, err = optionalString(rv, "target_column"); err != nil {
			return nil, err
		}
		if r.SQL, err = optionalString(rv, "sql"); err != nil {
			return nil, err
		}
		relations = append(relations, r)
	}
	return relations, nil
}

// parseFieldType reads the required "type" field.
func parseFieldType(v cue.Value, field string) (ir.FieldType, error) {
	typeVal := v.LookupPath(cue.ParsePath("type"))
	if !typeVal.Exists() {
		return ir.TypeUnknown, &CompileError{Field: field + ".type", Message: "type is required", Pos: v.Pos()}
	}
	name, err := typeVal.String()
	if err != nil {
		return ir.TypeUnknown, formatCUEError(err)
	}
	ft, err := ir.ParseFieldType(name)
	if err != nil {
		return ir.TypeUnknown, &CompileError{Field: field + ".type", Message: err.Error(), Pos: typeVal.Pos()}
	}
	return ft, nil
}

func optionalString(v cue.Value, path string) (string, error) {
	val := v.LookupPath(cue.ParsePath(path))
	if !val.Exists() {
		return "", nil
	}
	s, err := val.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalBool(v cue.Value, path string) (bool, error) {
	val := v.LookupPath(cue.ParsePath(path))
	if !val.Exists() {
		return false, nil
	}
	b, err := val.Bool()
	if err != nil {
		return false, formatCUEError(err)
	}
	return b, nil
}

func optionalStrings(v cue.Value, path string) ([]string, error) {
	val := v.LookupPath(cue.ParsePath(path))
	if !val.Exists() {
		return nil, nil
	}
	iter, err := val.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
