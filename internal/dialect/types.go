package dialect

import (
	"regexp"
	"slices"
	"strings"

	"github.com/roach88/semsql/internal/ir"
)

// UnknownNativeType is the dialect-neutral marker for TypeUnknown in both directions.
const UnknownNativeType = "UNKNOWN"

// TypeMapping pairs a FieldType with its native type. Native is what
// ToNativeType returns; Aliases are extra spellings accepted by ToFieldType
// (e.g. "INT4" for INTEGER).
type TypeMapping struct {
	Field   ir.FieldType
	Native  string
	Aliases []string
}

type typeMapper struct {
	dialect       string
	toNative      map[ir.FieldType]string
	toField       map[string]ir.FieldType
	unimplemented map[ir.FieldType]bool
	unimplNatives []string
}

// precision strips length/precision arguments such as (255) or (10, 2).
var precision = regexp.MustCompile(`\(\s*\d+\s*(,\s*\d+\s*)?\)`)

// NormalizeNativeType canonicalizes a native type name for lookup:
// upper case, single spaces, no length or precision arguments.
// "varchar(255)" and "VARCHAR" normalize to the same name; "ARRAY(VARCHAR)" is kept.
func NormalizeNativeType(native string) string {
	s := precision.ReplaceAllString(strings.ToUpper(native), "")
	return strings.Join(strings.Fields(s), " ")
}

func newTypeMapper(def Definition) (*typeMapper, error) {
	m := &typeMapper{
		dialect:       def.Name,
		toNative:      make(map[ir.FieldType]string, len(def.TypeMap)),
		toField:       make(map[string]ir.FieldType, len(def.TypeMap)*2),
		unimplemented: make(map[ir.FieldType]bool, len(def.UnimplementedTypes)),
	}
	for _, ft := range def.UnimplementedTypes {
		m.unimplemented[ft] = true
	}
	for _, p := range def.UnimplementedNatives {
		m.unimplNatives = append(m.unimplNatives, NormalizeNativeType(p))
	}

	for _, tm := range def.TypeMap {
		if !tm.Field.Valid() || tm.Field == ir.TypeUnknown {
			return nil, NewError(ErrInvalidDefinition, def.Name, nil,
				"type map entry %q has invalid field type %s", tm.Native, tm.Field)
		}
		if m.unimplemented[tm.Field] {
			return nil, NewError(ErrInvalidDefinition, def.Name, nil,
				"field type %s is both mapped and unimplemented", tm.Field)
		}
		if _, dup := m.toNative[tm.Field]; dup {
			return nil, NewError(ErrInvalidDefinition, def.Name, nil,
				"field type %s is mapped twice", tm.Field)
		}
		m.toNative[tm.Field] = tm.Native

		for _, name := range append([]string{tm.Native}, tm.Aliases...) {
			norm := NormalizeNativeType(name)
			if norm == "" || norm == UnknownNativeType {
				return nil, NewError(ErrInvalidDefinition, def.Name, nil,
					"native type %q is reserved or empty", name)
			}
			if prev, dup := m.toField[norm]; dup {
				return nil, NewError(ErrInvalidDefinition, def.Name, nil,
					"native type %q maps to both %s and %s", norm, prev, tm.Field)
			}
			m.toField[norm] = tm.Field
		}
	}
	return m, nil
}

// ToNativeType maps a field type to the dialect's native column type.
//
// TypeUnknown maps to UnknownNativeType. Acknowledged gaps fail with
// ErrUnimplemented; types the warehouse cannot represent fail with
// ErrUnsupportedType.
func (b *Bridge) ToNativeType(ft ir.FieldType) (string, error) {
	m := b.types
	details := map[string]string{"field_type": ft.String()}
	switch {
	case ft == ir.TypeUnknown:
		return UnknownNativeType, nil
	case !ft.Valid():
		return "", NewError(ErrUnsupportedType, m.dialect, details, "invalid field type %d", int(ft))
	case m.unimplemented[ft]:
		return "", NewError(ErrUnimplemented, m.dialect, details, "mapping for %s is not implemented", ft)
	}
	native, ok := m.toNative[ft]
	if !ok {
		return "", NewError(ErrUnsupportedType, m.dialect, details, "%s has no native type", ft)
	}
	return native, nil
}

// ToFieldType maps a native column type (as reported by schema
// introspection) to a field type. Length and precision arguments are ignored.
func (b *Bridge) ToFieldType(native string) (ir.FieldType, error) {
	m := b.types
	norm := NormalizeNativeType(native)
	details := map[string]string{"native_type": native}
	if norm == "" || norm == UnknownNativeType {
		return ir.TypeUnknown, nil
	}
	if ft, ok := m.toField[norm]; ok {
		return ft, nil
	}
	for _, prefix := range m.unimplNatives {
		if strings.HasPrefix(norm, prefix) {
			return ir.TypeUnknown, NewError(ErrUnimplemented, m.dialect, details,
				"mapping for native type %q is not implemented", native)
		}
	}
	return ir.TypeUnknown, NewError(ErrUnsupportedType, m.dialect, details,
		"unable to identify native type %q", native)
}

// SupportedTypes returns the field types with a native mapping, in
// declaration order. TypeUnknown is always included.
func (b *Bridge) SupportedTypes() []ir.FieldType {
	out := []ir.FieldType{ir.TypeUnknown}
	for _, ft := range ir.AllFieldTypes() {
		if _, ok := b.types.toNative[ft]; ok {
			out = append(out, ft)
		}
	}
	return out
}

// UnimplementedTypes returns the field types declared as acknowledged gaps.
func (b *Bridge) UnimplementedTypes() []ir.FieldType {
	out := make([]ir.FieldType, 0, len(b.types.unimplemented))
	for ft := range b.types.unimplemented {
		out = append(out, ft)
	}
	slices.Sort(out)
	return out
}
