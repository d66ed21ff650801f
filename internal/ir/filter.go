package ir

// Filter is one typed predicate on a field: (field type, operator, operand).
// Value is nil (or IRNull) for operators that take no operand.
type Filter struct {
	Type     FieldType `json:"type"`
	Operator Operator  `json:"operator"`
	Value    IRValue   `json:"value,omitempty"`
}

// NewFilter resolves an unqualified operator name against ft.
func NewFilter(ft FieldType, operator string, value IRValue) (Filter, error) {
	op, err := OperatorFor(ft, operator)
	if err != nil {
		return Filter{}, err
	}
	return Filter{Type: ft, Operator: op, Value: value}, nil
}

// FilterMatch is how filters inside one group combine.
type FilterMatch string

const (
	// MatchAll combines a group's filters with AND (the default).
	MatchAll FilterMatch = "all"
	// MatchAny combines a group's filters with OR.
	MatchAny FilterMatch = "any"
)

// Connective returns the SQL keyword for the match mode.
func (m FilterMatch) Connective() string {
	if m == MatchAny {
		return "OR"
	}
	return "AND"
}
