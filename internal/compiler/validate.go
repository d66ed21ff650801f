package compiler

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/roach88/semsql/internal/ir"
)

// Validation error codes (E200-E299)
const (
	// General validation errors (E200)
	ErrUnsupportedIRType = "E200" // unsupported IR type for validation

	// Model errors (E201-E219)
	ErrInvalidTarget        = "E201" // target needs exactly one of table or sql
	ErrModelNoFields        = "E202" // at least one dimension or measure required
	ErrDuplicateName        = "E203" // duplicate dimension/measure/relation name
	ErrInvalidFieldType     = "E204" // unknown or invalid field type
	ErrInvalidPostOperation = "E205" // post operation is not a time unit for the type
	ErrInvalidAggregation   = "E206" // invalid aggregation or missing expression
	ErrInvalidName          = "E207" // name collides with reference syntax
	ErrInvalidMapping       = "E208" // mapping names a missing or mistyped dimension

	// Relation errors (E220-E229)
	ErrUnknownRelationModel = "E220" // relation points at a model that does not exist
	ErrInvalidJoin          = "E221" // bad join type or missing join condition
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates compiled models against schema rules.
// Returns all errors found (does not fail-fast).
// A single model is checked on its own; a model set additionally checks
// that relations point at models in the set.
func Validate(v any) []ValidationError {
	switch m := v.(type) {
	case *ir.Model:
		return validateModel(m, nil)
	case ir.Model:
		return validateModel(&m, nil)
	case ir.Models:
		var errs []ValidationError
		for _, name := range sortedModelNames(m) {
			errs = append(errs, validateModel(m[name], m)...)
		}
		return errs
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

// validateModel validates one model. models is nil when relation targets
// cannot be checked.
func validateModel(m *ir.Model, models ir.Models) []ValidationError {
	var errs []ValidationError
	prefix := "model." + m.Name

	errs = append(errs, validateTarget(prefix+".target", m.Target)...)

	// E202: at least one field
	if len(m.Dimensions) == 0 && len(m.Measures) == 0 {
		errs = append(errs, ValidationError{
			Field:   prefix,
			Message: "at least one dimension or measure is required",
			Code:    ErrModelNoFields,
		})
	}

	// Dimensions and measures share one namespace: references do not say which they mean.
	names := make(map[string]string)
	checkName := func(field, kind, name string) {
		if !isValidFieldName(name) {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%s name %q cannot contain '.', '::' or whitespace", kind, name),
				Code:    ErrInvalidName,
			})
		}
		if prev, dup := names[name]; dup {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate name %q (already used by a %s)", name, prev),
				Code:    ErrDuplicateName,
			})
			return
		}
		names[name] = kind
	}

	for i, d := range m.Dimensions {
		field := fmt.Sprintf("%s.dimensions[%d]", prefix, i)
		checkName(field, "dimension", d.Name)
		errs = append(errs, validateFieldType(field+".type", d.Name, d.Type)...)

		for j, op := range d.PostOperations {
			unit, err := ir.ParseTimeUnit(op)
			switch {
			case err != nil:
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.post_operations[%d]", field, j),
					Message: err.Error(),
					Code:    ErrInvalidPostOperation,
				})
			case !unit.AppliesTo(d.Type):
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.post_operations[%d]", field, j),
					Message: fmt.Sprintf("post operation %q does not apply to %s dimension %q", op, d.Type, d.Name),
					Code:    ErrInvalidPostOperation,
				})
			}
		}
	}

	for i, ms := range m.Measures {
		field := fmt.Sprintf("%s.measures[%d]", prefix, i)
		checkName(field, "measure", ms.Name)
		errs = append(errs, validateFieldType(field+".type", ms.Name, ms.Type)...)

		// E206: aggregation must be known; none requires an aggregate expression
		switch {
		case !ms.Aggregation.Valid():
			errs = append(errs, ValidationError{
				Field:   field + ".aggregation",
				Message: fmt.Sprintf("invalid aggregation %d for measure %q", int(ms.Aggregation), ms.Name),
				Code:    ErrInvalidAggregation,
			})
		case ms.Aggregation == ir.AggregationNone && strings.TrimSpace(ms.SQL) == "":
			errs = append(errs, ValidationError{
				Field:   field + ".sql",
				Message: fmt.Sprintf("measure %q has no aggregation and needs an aggregate sql expression", ms.Name),
				Code:    ErrInvalidAggregation,
			})
		}
	}

	relNames := make(map[string]bool)
	for i, r := range m.Relations {
		field := fmt.Sprintf("%s.relations[%d]", prefix, i)
		if !isValidFieldName(r.Name) {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("relation name %q cannot contain '.', '::' or whitespace", r.Name),
				Code:    ErrInvalidName,
			})
		}
		if relNames[r.Name] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate relation name %q", r.Name),
				Code:    ErrDuplicateName,
			})
		}
		relNames[r.Name] = true
		errs = append(errs, validateRelation(field, r, models)...)
	}

	errs = append(errs, validateMappings(prefix+".mappings", m)...)
	return errs
}

// validateTarget checks that exactly one of table or sql is set (E201).
func validateTarget(field string, t ir.Target) []ValidationError {
	var msg string
	switch {
	case t.Table == "" && t.SQL == "":
		msg = "target needs a table or sql"
	case t.Table != "" && t.SQL != "":
		msg = fmt.Sprintf("target sets both table %q and sql", t.Table)
	case t.SQL != "" && (t.Database != "" || t.Schema != ""):
		msg = "sql targets cannot set a database or schema"
	case t.Database != "" && t.Schema == "":
		msg = fmt.Sprintf("target %s sets a database without a schema", t)
	default:
		return nil
	}
	return []ValidationError{{Field: field, Message: msg, Code: ErrInvalidTarget}}
}

// validateFieldType rejects invalid types and TypeUnknown (E204).
func validateFieldType(field, name string, ft ir.FieldType) []ValidationError {
	if ft.Valid() && ft != ir.TypeUnknown {
		return nil
	}
	return []ValidationError{{
		Field:   field,
		Message: fmt.Sprintf("field %q needs a known type, got %s", name, ft),
		Code:    ErrInvalidFieldType,
	}}
}

func validateRelation(field string, r ir.Relation, models ir.Models) []ValidationError {
	var errs []ValidationError

	// E220: target model must exist when the model set is known
	if models != nil {
		if _, ok := models[r.Model]; !ok {
			errs = append(errs, ValidationError{
				Field:   field + ".model",
				Message: fmt.Sprintf("relation %q points at unknown model %q", r.Name, r.Model),
				Code:    ErrUnknownRelationModel,
			})
		}
	}

	// E221: join type and condition
	if r.Join != "" && !ir.ValidJoinTypes[r.Join] {
		errs = append(errs, ValidationError{
			Field:   field + ".join",
			Message: fmt.Sprintf("invalid join type %q, must be left, inner, right or full", r.Join),
			Code:    ErrInvalidJoin,
		})
	}
	if r.SQL == "" && (r.SourceColumn == "" || r.TargetColumn == "") {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("relation %q needs source_column and target_column or a sql condition", r.Name),
			Code:    ErrInvalidJoin,
		})
	}
	return errs
}

// validateMappings checks that mapped columns are dimensions of the model (E208).
func validateMappings(field string, m *ir.Model) []ValidationError {
	var errs []ValidationError
	if name := m.Mappings.EventTimestamp; name != "" {
		d, ok := m.Dimension(name)
		switch {
		case !ok:
			errs = append(errs, ValidationError{
				Field:   field + ".event_timestamp",
				Message: fmt.Sprintf("event_timestamp names unknown dimension %q", name),
				Code:    ErrInvalidMapping,
			})
		case d.Type != ir.TypeTimestamp && d.Type != ir.TypeDate:
			errs = append(errs, ValidationError{
				Field:   field + ".event_timestamp",
				Message: fmt.Sprintf("event_timestamp dimension %q must be a date or timestamp, got %s", name, d.Type),
				Code:    ErrInvalidMapping,
			})
		}
	}
	if name := m.Mappings.UserID; name != "" {
		if _, ok := m.Dimension(name); !ok {
			errs = append(errs, ValidationError{
				Field:   field + ".user_id",
				Message: fmt.Sprintf("user_id names unknown dimension %q", name),
				Code:    ErrInvalidMapping,
			})
		}
	}
	return errs
}

// isValidFieldName rejects names that cannot be addressed by a field
// reference ("rel.name::op").
func isValidFieldName(name string) bool {
	if name == "" {
		return false
	}
	if strings.Contains(name, ".") || strings.Contains(name, "::") {
		return false
	}
	return !slices.ContainsFunc([]rune(name), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n'
	})
}

func sortedModelNames(models ir.Models) []string {
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
