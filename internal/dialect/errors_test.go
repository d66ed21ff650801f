package dialect

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := NewError(ErrUnsupportedType, "trino", nil, "%s has no native type", "binary")
	assert.Equal(t, "UNSUPPORTED_TYPE: binary has no native type (dialect=trino)", err.Error())

	err = NewError(ErrInvalidDefinition, "", nil, "dialect name is required")
	assert.Equal(t, "INVALID_DEFINITION: dialect name is required", err.Error())
}

func TestErrorKindsThroughWrapping(t *testing.T) {
	base := NewError(ErrInvalidFilterCombination, "ansi", map[string]string{"operator": "date.equals"}, "bad")
	wrapped := fmt.Errorf("render filter: %w", base)

	assert.True(t, IsInvalidFilterCombination(wrapped))
	assert.False(t, IsUnsupportedType(wrapped))
	assert.Equal(t, ErrInvalidFilterCombination, KindOf(wrapped))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
	assert.False(t, IsUnimplemented(nil))

	var de *Error
	assert.True(t, errors.As(wrapped, &de))
	assert.Equal(t, "date.equals", de.Details["operator"])
}

func TestErrorKindPredicates(t *testing.T) {
	checks := map[ErrorKind]func(error) bool{
		ErrInvalidFilterCombination:      IsInvalidFilterCombination,
		ErrUnsupportedType:               IsUnsupportedType,
		ErrUnsupportedAggregationContext: IsUnsupportedAggregationContext,
		ErrUnimplemented:                 IsUnimplemented,
		ErrUnsupportedGenerator:          IsUnsupportedGenerator,
		ErrInvalidDefinition:             IsInvalidDefinition,
	}
	for kind := range checks {
		err := NewError(kind, "x", nil, "msg")
		for other, otherCheck := range checks {
			assert.Equal(t, kind == other, otherCheck(err), "%s checked as %s", kind, other)
		}
	}
}
