package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"unicode/utf16"

	"github.com/shopspring/decimal"
)

// IRValue is a sealed interface for filter operands and canonical hashing input.
// Only IRNull, IRString, IRInt, IRNumber, IRBool, IRArray and IRObject implement it.
//
// There is no float variant. Non-integer numbers travel as IRNumber, which keeps
// the literal's own textual form so renderers never round-trip through float64.
type IRValue interface {
	irValue()
}

// IRNull represents an absent operand.
type IRNull struct{}

func (IRNull) irValue() {}

// MarshalJSON implements json.Marshaler for IRNull.
func (IRNull) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// IRString represents a string operand.
type IRString string

func (IRString) irValue() {}

// IRInt represents an integer operand.
type IRInt int64

func (IRInt) irValue() {}

// IRNumber is a decimal number in its original textual form, e.g. "3.50" or "1e3".
type IRNumber string

func (IRNumber) irValue() {}

// IRBool represents a boolean operand.
type IRBool bool

func (IRBool) irValue() {}

// IRArray represents a list operand (IN, NOT_IN).
type IRArray []IRValue

func (IRArray) irValue() {}

// IRObject represents a map of string keys to IRValue elements.
// Use SortedKeys() for deterministic iteration.
type IRObject map[string]IRValue

func (IRObject) irValue() {}

// NewIRNumber validates s as a decimal literal and returns it unchanged.
func NewIRNumber(s string) (IRNumber, error) {
	s = strings.TrimSpace(s)
	if _, err := decimal.NewFromString(s); err != nil {
		return "", fmt.Errorf("invalid number %q: %w", s, err)
	}
	return IRNumber(s), nil
}

// Decimal parses the number. It only fails for values not built by NewIRNumber.
func (n IRNumber) Decimal() (decimal.Decimal, error) {
	return decimal.NewFromString(string(n))
}

// NewIRArray creates an IRArray from values.
func NewIRArray(vals ...IRValue) IRArray {
	return IRArray(vals)
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
func (obj IRObject) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings by UTF-16 code units. Go's native string
// order is by UTF-8 bytes, which differs for supplementary-plane characters.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	return slices.Compare(a16, b16)
}

// MarshalJSON implements json.Marshaler for IRObject with sorted keys.
// Not canonical: use MarshalCanonical for hashing.
func (obj IRObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range obj.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := MarshalIRValue(obj[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalIRValue marshals an IRValue to JSON bytes.
func MarshalIRValue(v IRValue) ([]byte, error) {
	switch val := v.(type) {
	case IRNull:
		return []byte("null"), nil
	case IRString:
		return json.Marshal(string(val))
	case IRInt:
		return json.Marshal(int64(val))
	case IRNumber:
		return []byte(val), nil
	case IRBool:
		return json.Marshal(bool(val))
	case IRArray:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := MarshalIRValue(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case IRObject:
		return val.MarshalJSON()
	default:
		return nil, fmt.Errorf("unknown IRValue type: %T", v)
	}
}

// UnmarshalIRValue decodes JSON into an IRValue. Integers that fit int64 become
// IRInt; every other number becomes IRNumber with its source text preserved.
func UnmarshalIRValue(data []byte) (IRValue, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return FromAny(raw)
}

// FromAny converts a decoded JSON or YAML value into an IRValue.
//
// Accepts the shapes produced by encoding/json (with UseNumber), gopkg.in/yaml.v3
// and CUE's Decode: nil, bool, string, json.Number, int kinds, float64,
// []any and map[string]any. float64 is accepted only to read YAML and CUE
// documents; it is converted through its shortest decimal representation.
func FromAny(v any) (IRValue, error) {
	switch val := v.(type) {
	case nil:
		return IRNull{}, nil
	case IRValue:
		return val, nil
	case bool:
		return IRBool(val), nil
	case string:
		return IRString(val), nil
	case int:
		return IRInt(val), nil
	case int64:
		return IRInt(val), nil
	case uint64:
		return IRNumber(fmt.Sprintf("%d", val)), nil
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return IRInt(n), nil
		}
		return NewIRNumber(string(val))
	case float64:
		return IRNumber(decimal.NewFromFloat(val).String()), nil
	case []any:
		arr := make(IRArray, len(val))
		for i, elem := range val {
			irElem, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = irElem
		}
		return arr, nil
	case map[string]any:
		obj := make(IRObject, len(val))
		for k, elem := range val {
			irElem, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = irElem
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported operand type: %T", v)
	}
}

// ToAny converts an IRValue back into plain Go values for encoders.
// IRNumber becomes json.Number so its text survives encoding/json.
func ToAny(v IRValue) any {
	switch val := v.(type) {
	case IRString:
		return string(val)
	case IRInt:
		return int64(val)
	case IRNumber:
		return json.Number(val)
	case IRBool:
		return bool(val)
	case IRArray:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToAny(elem)
		}
		return out
	case IRObject:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = ToAny(elem)
		}
		return out
	default:
		return nil
	}
}
