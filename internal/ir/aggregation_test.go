package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregationTypeRoundTrip(t *testing.T) {
	for _, a := range append(AllAggregationTypes(), AggregationNone) {
		t.Run(a.String(), func(t *testing.T) {
			text, err := a.MarshalText()
			require.NoError(t, err)
			var back AggregationType
			require.NoError(t, back.UnmarshalText(text))
			assert.Equal(t, a, back)
		})
	}

	_, err := ParseAggregationType("median")
	assert.Error(t, err)
}

func TestAggregationTypeProperties(t *testing.T) {
	for _, a := range AllAggregationTypes() {
		assert.Equal(t, a == AggregationApproximateUnique, a.ContextSensitive(), a.String())
	}
	assert.True(t, AggregationCountUnique.Distinct())
	assert.True(t, AggregationSumDistinct.Distinct())
	assert.False(t, AggregationSum.Distinct())

	assert.Equal(t, TypeLong, AggregationCountUnique.ResultType(TypeString))
	assert.Equal(t, TypeDouble, AggregationAverage.ResultType(TypeInteger))
	assert.Equal(t, TypeDecimal, AggregationSum.ResultType(TypeDecimal))
}

func TestParseAggregationContext(t *testing.T) {
	tests := map[string]AggregationContext{
		"":                        ContextAdhoc,
		"ADHOC":                   ContextAdhoc,
		"accumulate":              ContextAccumulate,
		"intermediate_accumulate": ContextAccumulate,
		"merge":                   ContextMerge,
		"INTERMEDIATE_MERGE":      ContextMerge,
	}
	for input, expected := range tests {
		got, err := ParseAggregationContext(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, got, input)
	}

	_, err := ParseAggregationContext("final")
	assert.Error(t, err)
	assert.Len(t, AllAggregationContexts(), 3)
}
