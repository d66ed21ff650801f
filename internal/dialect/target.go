package dialect

import (
	"fmt"
	"strings"

	"github.com/roach88/semsql/internal/ir"
)

// FillDefaultsToTarget completes a partially specified table target with the
// dialect's default database and schema. SQL targets are returned unchanged.
func (b *Bridge) FillDefaultsToTarget(t ir.Target) ir.Target {
	if t.SQL != "" {
		return t
	}
	if t.Schema == "" {
		t.Schema = b.def.DefaultSchema
	}
	if t.Database == "" && t.Schema != "" {
		t.Database = b.def.DefaultDatabase
	}
	return t
}

// SQLReferenceForTarget renders a target for a FROM clause: a quoted,
// qualified table name or a parenthesized subquery.
func (b *Bridge) SQLReferenceForTarget(t ir.Target) (string, error) {
	if t.SQL != "" {
		if t.Table != "" {
			return "", fmt.Errorf("target sets both table %q and sql", t.Table)
		}
		return "(" + strings.TrimSpace(t.SQL) + ")", nil
	}
	if t.Table == "" {
		return "", fmt.Errorf("target has neither table nor sql")
	}
	if t.Database != "" && t.Schema == "" {
		return "", fmt.Errorf("target %s sets a database without a schema", t)
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{t.Database, t.Schema, t.Table} {
		if p != "" {
			parts = append(parts, b.QuoteIdentifier(p))
		}
	}
	return strings.Join(parts, "."), nil
}

// QualifiedName quotes a possibly dotted object name ("schema.table").
func (b *Bridge) QualifiedName(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = b.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

// CreateObject wraps a SELECT in the DDL that persists it as an object of
// the given kind. The dialect must advertise the kind.
func (b *Bridge) CreateObject(kind ir.ObjectKind, name, query string) (string, error) {
	details := map[string]string{"object_kind": string(kind)}
	if !b.SupportsObjectKind(kind) {
		return "", NewError(ErrUnsupportedType, b.def.Name, details, "object kind %q is not supported", kind)
	}
	var f Function
	switch kind {
	case ir.ObjectTable:
		f = FuncCreateTable
	case ir.ObjectView:
		f = FuncCreateView
	case ir.ObjectMaterializedView:
		f = FuncCreateMaterializedView
	default:
		return "", NewError(ErrUnimplemented, b.def.Name, details, "cannot create %s objects from a query", kind)
	}
	return b.RenderFunction(f, b.QualifiedName(name), query)
}
