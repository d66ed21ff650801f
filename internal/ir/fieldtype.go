package ir

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFieldType is returned when a FieldType value or name is outside the closed set.
var ErrUnknownFieldType = errors.New("unknown field type")

// FieldType is the closed set of semantic value types.
//
// The zero value is TypeUnknown, which is a real member of the set: it marks an
// absent or unresolvable type and is never coerced to a guessed concrete type.
type FieldType int

const (
	TypeUnknown FieldType = iota
	TypeInteger
	TypeLong
	TypeDouble
	TypeDecimal
	TypeString
	TypeBoolean
	TypeDate
	TypeTime
	TypeTimestamp
	TypeBinary
	TypeArrayString
	TypeArrayInteger
	TypeArrayLong
	TypeArrayDouble
	TypeArrayBoolean
	TypeArrayDate
	TypeArrayTime
	TypeArrayTimestamp
	TypeMapString
)

var fieldTypeNames = map[FieldType]string{
	TypeUnknown:        "unknown",
	TypeInteger:        "integer",
	TypeLong:           "long",
	TypeDouble:         "double",
	TypeDecimal:        "decimal",
	TypeString:         "string",
	TypeBoolean:        "boolean",
	TypeDate:           "date",
	TypeTime:           "time",
	TypeTimestamp:      "timestamp",
	TypeBinary:         "binary",
	TypeArrayString:    "array<string>",
	TypeArrayInteger:   "array<integer>",
	TypeArrayLong:      "array<long>",
	TypeArrayDouble:    "array<double>",
	TypeArrayBoolean:   "array<boolean>",
	TypeArrayDate:      "array<date>",
	TypeArrayTime:      "array<time>",
	TypeArrayTimestamp: "array<timestamp>",
	TypeMapString:      "map<string>",
}

// AllFieldTypes returns every member of the closed FieldType set in declaration order.
func AllFieldTypes() []FieldType {
	types := make([]FieldType, 0, len(fieldTypeNames))
	for ft := TypeUnknown; ft <= TypeMapString; ft++ {
		types = append(types, ft)
	}
	return types
}

// Valid reports whether ft is a member of the closed set.
func (ft FieldType) Valid() bool {
	_, ok := fieldTypeNames[ft]
	return ok
}

// String returns the canonical name, e.g. "integer" or "array<string>".
func (ft FieldType) String() string {
	if name, ok := fieldTypeNames[ft]; ok {
		return name
	}
	return fmt.Sprintf("FieldType(%d)", int(ft))
}

// IsArray reports whether ft is one of the ARRAY<T> types.
func (ft FieldType) IsArray() bool {
	_, ok := ft.ElementType()
	return ok
}

// ElementType returns T for ARRAY<T>.
func (ft FieldType) ElementType() (FieldType, bool) {
	switch ft {
	case TypeArrayString:
		return TypeString, true
	case TypeArrayInteger:
		return TypeInteger, true
	case TypeArrayLong:
		return TypeLong, true
	case TypeArrayDouble:
		return TypeDouble, true
	case TypeArrayBoolean:
		return TypeBoolean, true
	case TypeArrayDate:
		return TypeDate, true
	case TypeArrayTime:
		return TypeTime, true
	case TypeArrayTimestamp:
		return TypeTimestamp, true
	default:
		return TypeUnknown, false
	}
}

// IsNumeric reports whether ft is INTEGER, LONG, DOUBLE or DECIMAL.
func (ft FieldType) IsNumeric() bool {
	switch ft {
	case TypeInteger, TypeLong, TypeDouble, TypeDecimal:
		return true
	}
	return false
}

// ParseFieldType resolves a field type name.
//
// Accepts the canonical names ("array<string>") as well as the underscore
// spelling used by model files ("ARRAY_STRING", "map_string"). Matching is
// case-insensitive.
func ParseFieldType(name string) (FieldType, error) {
	norm := strings.ToLower(strings.TrimSpace(name))
	if rest, ok := strings.CutPrefix(norm, "array_"); ok {
		norm = "array<" + rest + ">"
	} else if rest, ok := strings.CutPrefix(norm, "map_"); ok {
		norm = "map<" + rest + ">"
	}
	for ft, n := range fieldTypeNames {
		if n == norm {
			return ft, nil
		}
	}
	return TypeUnknown, fmt.Errorf("%w: %q", ErrUnknownFieldType, name)
}

// MarshalText implements encoding.TextMarshaler.
func (ft FieldType) MarshalText() ([]byte, error) {
	if !ft.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFieldType, int(ft))
	}
	return []byte(ft.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (ft *FieldType) UnmarshalText(text []byte) error {
	parsed, err := ParseFieldType(string(text))
	if err != nil {
		return err
	}
	*ft = parsed
	return nil
}
