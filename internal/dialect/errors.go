package dialect

import (
	"errors"
	"fmt"
)

// Error is a failure raised by a dialect bridge.
//
// Every renderer either returns a complete fragment or an *Error; it never
// returns a partial string. All kinds are deterministic input or
// configuration errors and are never worth retrying.
type Error struct {
	// Kind identifies the error category.
	Kind ErrorKind

	// Dialect names the bridge that raised the error.
	Dialect string

	// Message is a human-readable description.
	Message string

	// Details contains additional context (field type, operator, aggregation).
	Details map[string]string
}

// ErrorKind categorizes bridge errors.
type ErrorKind string

const (
	// ErrInvalidFilterCombination: operator, field type and operand do not fit together.
	ErrInvalidFilterCombination ErrorKind = "INVALID_FILTER_COMBINATION"

	// ErrUnsupportedType: a field type or native type has no mapping in the dialect.
	ErrUnsupportedType ErrorKind = "UNSUPPORTED_TYPE"

	// ErrUnsupportedAggregationContext: the dialect cannot render an aggregation
	// in the requested context.
	ErrUnsupportedAggregationContext ErrorKind = "UNSUPPORTED_AGGREGATION_CONTEXT"

	// ErrUnimplemented: an acknowledged gap in a dialect, distinct from unsupported.
	ErrUnimplemented ErrorKind = "UNIMPLEMENTED"

	// ErrUnsupportedGenerator: no generator is registered for the query kind.
	ErrUnsupportedGenerator ErrorKind = "UNSUPPORTED_GENERATOR"

	// ErrInvalidDefinition: a dialect definition is malformed (bad template,
	// non-injective type map, duplicate registration).
	ErrInvalidDefinition ErrorKind = "INVALID_DEFINITION"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Dialect != "" {
		return fmt.Sprintf("%s: %s (dialect=%s)", e.Kind, e.Message, e.Dialect)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError builds a bridge error. Generators use it to report failures in
// the same taxonomy as the renderers.
func NewError(kind ErrorKind, dialect string, details map[string]string, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Dialect: dialect,
		Message: fmt.Sprintf(format, args...),
		Details: details,
	}
}

func hasKind(err error, kind ErrorKind) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind == kind
	}
	return false
}

// KindOf returns the kind of a bridge error, or "" when err is not one.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsInvalidFilterCombination reports whether err is an invalid filter combination.
// Uses errors.As to handle wrapped errors.
func IsInvalidFilterCombination(err error) bool {
	return hasKind(err, ErrInvalidFilterCombination)
}

// IsUnsupportedType reports whether err is an unsupported type error.
func IsUnsupportedType(err error) bool {
	return hasKind(err, ErrUnsupportedType)
}

// IsUnsupportedAggregationContext reports whether err is an unsupported aggregation context error.
func IsUnsupportedAggregationContext(err error) bool {
	return hasKind(err, ErrUnsupportedAggregationContext)
}

// IsUnimplemented reports whether err marks an acknowledged gap in a dialect.
func IsUnimplemented(err error) bool {
	return hasKind(err, ErrUnimplemented)
}

// IsUnsupportedGenerator reports whether err is a missing generator error.
func IsUnsupportedGenerator(err error) bool {
	return hasKind(err, ErrUnsupportedGenerator)
}

// IsInvalidDefinition reports whether err is a malformed dialect definition.
func IsInvalidDefinition(err error) bool {
	return hasKind(err, ErrInvalidDefinition)
}
