package ir

import (
	"fmt"
	"strings"
)

// AggregationType is the closed set of measure aggregations.
//
// The zero value AggregationNone marks a measure whose SQL is already an
// aggregate expression; it is not a member of AllAggregationTypes.
type AggregationType int

const (
	AggregationNone AggregationType = iota
	AggregationSum
	AggregationSumDistinct
	AggregationCount
	AggregationCountUnique
	AggregationAverage
	AggregationAverageDistinct
	AggregationMinimum
	AggregationMaximum
	AggregationApproximateUnique
)

var aggregationNames = map[AggregationType]string{
	AggregationNone:              "none",
	AggregationSum:               "sum",
	AggregationSumDistinct:       "sum_distinct",
	AggregationCount:             "count",
	AggregationCountUnique:       "count_unique",
	AggregationAverage:           "average",
	AggregationAverageDistinct:   "average_distinct",
	AggregationMinimum:           "minimum",
	AggregationMaximum:           "maximum",
	AggregationApproximateUnique: "approximate_unique",
}

// AllAggregationTypes returns every aggregation a bridge must be able to render.
func AllAggregationTypes() []AggregationType {
	return []AggregationType{
		AggregationSum, AggregationSumDistinct, AggregationCount, AggregationCountUnique,
		AggregationAverage, AggregationAverageDistinct, AggregationMinimum, AggregationMaximum,
		AggregationApproximateUnique,
	}
}

func (a AggregationType) String() string {
	if name, ok := aggregationNames[a]; ok {
		return name
	}
	return fmt.Sprintf("AggregationType(%d)", int(a))
}

// Valid reports whether a is a member of the closed set (including none).
func (a AggregationType) Valid() bool {
	_, ok := aggregationNames[a]
	return ok
}

// Distinct reports whether the aggregation needs a deduplicating rendering path.
func (a AggregationType) Distinct() bool {
	switch a {
	case AggregationSumDistinct, AggregationCountUnique, AggregationAverageDistinct, AggregationApproximateUnique:
		return true
	}
	return false
}

// ContextSensitive reports whether the aggregation renders differently per
// AggregationContext. Only approximate unique counts do: the accumulate phase
// produces a sketch and the merge phase combines sketches.
func (a AggregationType) ContextSensitive() bool {
	return a == AggregationApproximateUnique
}

// ResultType returns the field type an aggregation produces over an input type.
func (a AggregationType) ResultType(input FieldType) FieldType {
	switch a {
	case AggregationCount, AggregationCountUnique, AggregationApproximateUnique:
		return TypeLong
	case AggregationAverage, AggregationAverageDistinct:
		return TypeDouble
	default:
		return input
	}
}

// ParseAggregationType resolves an aggregation name (case-insensitive).
func ParseAggregationType(name string) (AggregationType, error) {
	norm := strings.ToLower(strings.TrimSpace(name))
	if norm == "" {
		return AggregationNone, nil
	}
	for a, n := range aggregationNames {
		if n == norm {
			return a, nil
		}
	}
	return AggregationNone, fmt.Errorf("unknown aggregation type %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (a AggregationType) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid aggregation type %d", int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *AggregationType) UnmarshalText(text []byte) error {
	parsed, err := ParseAggregationType(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// AggregationContext is the execution phase an aggregation is rendered for.
// It is never stored on a measure; callers supply it per render.
type AggregationContext int

const (
	// ContextAdhoc is a single-pass query over raw rows.
	ContextAdhoc AggregationContext = iota
	// ContextAccumulate produces partial state (e.g. a sketch) for a later merge.
	ContextAccumulate
	// ContextMerge combines partial state into the final value.
	ContextMerge
)

var contextNames = map[AggregationContext]string{
	ContextAdhoc:      "adhoc",
	ContextAccumulate: "intermediate_accumulate",
	ContextMerge:      "intermediate_merge",
}

// AllAggregationContexts returns the three rendering contexts.
func AllAggregationContexts() []AggregationContext {
	return []AggregationContext{ContextAdhoc, ContextAccumulate, ContextMerge}
}

func (c AggregationContext) String() string {
	if name, ok := contextNames[c]; ok {
		return name
	}
	return fmt.Sprintf("AggregationContext(%d)", int(c))
}

// Valid reports whether c is one of the three contexts.
func (c AggregationContext) Valid() bool {
	_, ok := contextNames[c]
	return ok
}

// ParseAggregationContext resolves a context name. "accumulate" and "merge"
// are accepted as short forms.
func ParseAggregationContext(name string) (AggregationContext, error) {
	norm := strings.ToLower(strings.TrimSpace(name))
	switch norm {
	case "", "adhoc":
		return ContextAdhoc, nil
	case "accumulate", "intermediate_accumulate":
		return ContextAccumulate, nil
	case "merge", "intermediate_merge":
		return ContextMerge, nil
	}
	return ContextAdhoc, fmt.Errorf("unknown aggregation context %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (c AggregationContext) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid aggregation context %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *AggregationContext) UnmarshalText(text []byte) error {
	parsed, err := ParseAggregationContext(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
