package ir

import (
	"fmt"
	"sort"
	"strings"
)

// OperatorFamily groups filter operators by the field types they apply to.
type OperatorFamily int

const (
	// FamilyAny applies to every field type (null presence).
	FamilyAny OperatorFamily = iota
	FamilyString
	FamilyNumber
	FamilyBoolean
	FamilyDate
	FamilyTime
	FamilyTimestamp
	FamilyArray
)

var familyNames = map[OperatorFamily]string{
	FamilyAny:       "any",
	FamilyString:    "string",
	FamilyNumber:    "number",
	FamilyBoolean:   "boolean",
	FamilyDate:      "date",
	FamilyTime:      "time",
	FamilyTimestamp: "timestamp",
	FamilyArray:     "array",
}

func (f OperatorFamily) String() string {
	if name, ok := familyNames[f]; ok {
		return name
	}
	return fmt.Sprintf("OperatorFamily(%d)", int(f))
}

// OperatorKind is the comparison an operator performs, independent of family.
type OperatorKind int

const (
	OpIsSet OperatorKind = iota + 1
	OpIsNotSet
	OpEquals
	OpNotEquals
	OpContains
	OpStartsWith
	OpEndsWith
	OpIn
	OpNotIn
	OpGreaterThan
	OpGreaterThanOrEquals
	OpLessThan
	OpLessThanOrEquals
	OpIs
	OpIncludes
)

var kindNames = map[OperatorKind]string{
	OpIsSet:               "is_set",
	OpIsNotSet:            "is_not_set",
	OpEquals:              "equals",
	OpNotEquals:           "not_equals",
	OpContains:            "contains",
	OpStartsWith:          "starts_with",
	OpEndsWith:            "ends_with",
	OpIn:                  "in",
	OpNotIn:               "not_in",
	OpGreaterThan:         "greater_than",
	OpGreaterThanOrEquals: "greater_than_or_equals",
	OpLessThan:            "less_than",
	OpLessThanOrEquals:    "less_than_or_equals",
	OpIs:                  "is",
	OpIncludes:            "includes",
}

func (k OperatorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("OperatorKind(%d)", int(k))
}

// familyKinds is the closed operator set of each family.
var familyKinds = map[OperatorFamily][]OperatorKind{
	FamilyAny:    {OpIsSet, OpIsNotSet},
	FamilyString: {OpEquals, OpNotEquals, OpContains, OpStartsWith, OpEndsWith, OpIn, OpNotIn},
	FamilyNumber: {
		OpEquals, OpNotEquals, OpGreaterThan, OpGreaterThanOrEquals,
		OpLessThan, OpLessThanOrEquals, OpIn, OpNotIn,
	},
	FamilyBoolean:   {OpIs},
	FamilyDate:      {OpEquals, OpGreaterThan, OpGreaterThanOrEquals, OpLessThan, OpLessThanOrEquals},
	FamilyTime:      {OpEquals, OpGreaterThan, OpGreaterThanOrEquals, OpLessThan, OpLessThanOrEquals},
	FamilyTimestamp: {OpEquals, OpGreaterThan, OpGreaterThanOrEquals, OpLessThan, OpLessThanOrEquals},
	FamilyArray:     {OpIncludes},
}

// Operator is a filter operator. It always carries exactly one family; the
// family decides which field types the operator may be applied to.
type Operator struct {
	Family OperatorFamily
	Kind   OperatorKind
}

// AnyOp returns a null-presence operator (IS_SET, IS_NOT_SET).
func AnyOp(k OperatorKind) Operator { return Operator{Family: FamilyAny, Kind: k} }

// StringOp returns a string-family operator.
func StringOp(k OperatorKind) Operator { return Operator{Family: FamilyString, Kind: k} }

// NumberOp returns a number-family operator.
func NumberOp(k OperatorKind) Operator { return Operator{Family: FamilyNumber, Kind: k} }

// BooleanOp returns a boolean-family operator.
func BooleanOp(k OperatorKind) Operator { return Operator{Family: FamilyBoolean, Kind: k} }

// DateOp returns a date-family operator.
func DateOp(k OperatorKind) Operator { return Operator{Family: FamilyDate, Kind: k} }

// TimeOp returns a time-family operator.
func TimeOp(k OperatorKind) Operator { return Operator{Family: FamilyTime, Kind: k} }

// TimestampOp returns a timestamp-family operator.
func TimestampOp(k OperatorKind) Operator { return Operator{Family: FamilyTimestamp, Kind: k} }

// ArrayOp returns an array-family operator.
func ArrayOp(k OperatorKind) Operator { return Operator{Family: FamilyArray, Kind: k} }

// Valid reports whether the kind belongs to the operator's family.
func (o Operator) Valid() bool {
	for _, k := range familyKinds[o.Family] {
		if k == o.Kind {
			return true
		}
	}
	return false
}

// String returns the qualified name, e.g. "string.contains".
func (o Operator) String() string {
	return o.Family.String() + "." + o.Kind.String()
}

// TakesList reports whether the operand is a list (IN, NOT_IN).
func (o Operator) TakesList() bool {
	return o.Kind == OpIn || o.Kind == OpNotIn
}

// TakesOperand reports whether the operator needs an operand at all.
func (o Operator) TakesOperand() bool {
	return o.Family != FamilyAny
}

// AppliesTo reports whether the operator is legal for the field type.
func (o Operator) AppliesTo(ft FieldType) bool {
	if !o.Valid() {
		return false
	}
	if o.Family == FamilyAny {
		return ft.Valid()
	}
	family, ok := familyOf(ft)
	return ok && family == o.Family
}

// familyOf maps a field type to its type-specific operator family.
//
// Every member of the FieldType set has a case. BINARY, MAP and UNKNOWN have
// no type-specific family and only accept null-presence operators.
func familyOf(ft FieldType) (OperatorFamily, bool) {
	switch ft {
	case TypeString:
		return FamilyString, true
	case TypeInteger, TypeLong, TypeDouble, TypeDecimal:
		return FamilyNumber, true
	case TypeBoolean:
		return FamilyBoolean, true
	case TypeDate:
		return FamilyDate, true
	case TypeTime:
		return FamilyTime, true
	case TypeTimestamp:
		return FamilyTimestamp, true
	case TypeArrayString, TypeArrayInteger, TypeArrayLong, TypeArrayDouble,
		TypeArrayBoolean, TypeArrayDate, TypeArrayTime, TypeArrayTimestamp:
		return FamilyArray, true
	case TypeBinary, TypeMapString, TypeUnknown:
		return FamilyAny, false
	default:
		return FamilyAny, false
	}
}

// LegalOperators returns the operators that may be applied to a field type,
// sorted by family then kind. IS_SET and IS_NOT_SET are always members.
//
// Returns ErrUnknownFieldType for values outside the closed set.
func LegalOperators(ft FieldType) ([]Operator, error) {
	if !ft.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFieldType, int(ft))
	}
	ops := make([]Operator, 0, 10)
	for _, k := range familyKinds[FamilyAny] {
		ops = append(ops, AnyOp(k))
	}
	if family, ok := familyOf(ft); ok {
		for _, k := range familyKinds[family] {
			ops = append(ops, Operator{Family: family, Kind: k})
		}
	}
	sort.Slice(ops, func(i, j int) bool {
		if ops[i].Family != ops[j].Family {
			return ops[i].Family < ops[j].Family
		}
		return ops[i].Kind < ops[j].Kind
	})
	return ops, nil
}

// ParseOperator resolves a qualified operator name such as "number.greater_than".
func ParseOperator(name string) (Operator, error) {
	familyName, kindName, ok := strings.Cut(strings.ToLower(strings.TrimSpace(name)), ".")
	if !ok {
		return Operator{}, fmt.Errorf("operator %q must be qualified as family.kind", name)
	}
	var op Operator
	found := false
	for f, n := range familyNames {
		if n == familyName {
			op.Family, found = f, true
			break
		}
	}
	if !found {
		return Operator{}, fmt.Errorf("unknown operator family %q", familyName)
	}
	kind, err := parseKind(kindName)
	if err != nil {
		return Operator{}, err
	}
	op.Kind = kind
	if !op.Valid() {
		return Operator{}, fmt.Errorf("operator %q is not part of the %s family", kindName, op.Family)
	}
	return op, nil
}

// OperatorFor resolves an unqualified kind name against a field type, e.g.
// ("contains", string) → string.contains. Null-presence kinds resolve to the
// any family for every type.
func OperatorFor(ft FieldType, kindName string) (Operator, error) {
	if strings.Contains(kindName, ".") {
		return ParseOperator(kindName)
	}
	kind, err := parseKind(strings.ToLower(strings.TrimSpace(kindName)))
	if err != nil {
		return Operator{}, err
	}
	if kind == OpIsSet || kind == OpIsNotSet {
		return AnyOp(kind), nil
	}
	family, ok := familyOf(ft)
	if !ok {
		return Operator{}, fmt.Errorf("field type %s only accepts is_set and is_not_set, got %q", ft, kindName)
	}
	return Operator{Family: family, Kind: kind}, nil
}

func parseKind(name string) (OperatorKind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown operator %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (o Operator) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("invalid operator %s", o)
	}
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Operator) UnmarshalText(text []byte) error {
	parsed, err := ParseOperator(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}
