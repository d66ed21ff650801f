package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegalOperatorsTotal(t *testing.T) {
	for _, ft := range AllFieldTypes() {
		t.Run(ft.String(), func(t *testing.T) {
			ops, err := LegalOperators(ft)
			require.NoError(t, err)
			require.NotEmpty(t, ops)
			assert.Contains(t, ops, AnyOp(OpIsSet))
			assert.Contains(t, ops, AnyOp(OpIsNotSet))
			for _, op := range ops {
				assert.True(t, op.AppliesTo(ft), "%s must apply to %s", op, ft)
			}
		})
	}
}

func TestLegalOperatorsOutOfRange(t *testing.T) {
	_, err := LegalOperators(FieldType(-1))
	assert.ErrorIs(t, err, ErrUnknownFieldType)
}

func TestLegalOperatorsPerFamily(t *testing.T) {
	tests := []struct {
		ft       FieldType
		expected []Operator
	}{
		{TypeBoolean, []Operator{AnyOp(OpIsSet), AnyOp(OpIsNotSet), BooleanOp(OpIs)}},
		{TypeArrayInteger, []Operator{AnyOp(OpIsSet), AnyOp(OpIsNotSet), ArrayOp(OpIncludes)}},
		{TypeBinary, []Operator{AnyOp(OpIsSet), AnyOp(OpIsNotSet)}},
		{TypeMapString, []Operator{AnyOp(OpIsSet), AnyOp(OpIsNotSet)}},
		{TypeUnknown, []Operator{AnyOp(OpIsSet), AnyOp(OpIsNotSet)}},
	}
	for _, tt := range tests {
		t.Run(tt.ft.String(), func(t *testing.T) {
			ops, err := LegalOperators(tt.ft)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ops)
		})
	}

	ops, err := LegalOperators(TypeDouble)
	require.NoError(t, err)
	assert.Contains(t, ops, NumberOp(OpGreaterThanOrEquals))
	assert.NotContains(t, ops, StringOp(OpContains))
}

func TestOperatorAppliesTo(t *testing.T) {
	assert.True(t, StringOp(OpContains).AppliesTo(TypeString))
	assert.False(t, StringOp(OpContains).AppliesTo(TypeInteger))
	assert.False(t, DateOp(OpGreaterThan).AppliesTo(TypeString))
	assert.False(t, DateOp(OpGreaterThan).AppliesTo(TypeTimestamp))
	assert.True(t, NumberOp(OpIn).AppliesTo(TypeDecimal))
	assert.False(t, Operator{Family: FamilyBoolean, Kind: OpContains}.AppliesTo(TypeBoolean),
		"kind outside the family is never legal")
}

func TestParseOperator(t *testing.T) {
	op, err := ParseOperator("String.Starts_With")
	require.NoError(t, err)
	assert.Equal(t, StringOp(OpStartsWith), op)

	for _, bad := range []string{"contains", "string.greater_than", "color.equals", "number.between"} {
		_, err := ParseOperator(bad)
		assert.Error(t, err, bad)
	}
}

func TestOperatorFor(t *testing.T) {
	tests := []struct {
		ft       FieldType
		kind     string
		expected Operator
	}{
		{TypeString, "contains", StringOp(OpContains)},
		{TypeLong, "less_than", NumberOp(OpLessThan)},
		{TypeBinary, "is_set", AnyOp(OpIsSet)},
		{TypeTimestamp, "timestamp.greater_than", TimestampOp(OpGreaterThan)},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			op, err := OperatorFor(tt.ft, tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, op)
		})
	}

	_, err := OperatorFor(TypeMapString, "equals")
	assert.Error(t, err)
	_, err = OperatorFor(TypeString, "like")
	assert.Error(t, err)
}

func TestOperatorTextRoundTrip(t *testing.T) {
	for f, kinds := range familyKinds {
		for _, k := range kinds {
			op := Operator{Family: f, Kind: k}
			text, err := op.MarshalText()
			require.NoError(t, err)
			var back Operator
			require.NoError(t, back.UnmarshalText(text))
			assert.Equal(t, op, back)
		}
	}
}

func TestOperatorOperandShape(t *testing.T) {
	assert.True(t, StringOp(OpNotIn).TakesList())
	assert.False(t, StringOp(OpEquals).TakesList())
	assert.False(t, AnyOp(OpIsSet).TakesOperand())
	assert.True(t, BooleanOp(OpIs).TakesOperand())
}
