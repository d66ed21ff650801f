// Package duckdb defines the DuckDB dialect.
package duckdb

import (
	"github.com/roach88/semsql/internal/dialect"
	"github.com/roach88/semsql/internal/ir"
	"github.com/roach88/semsql/internal/querysql"
)

// Name is the registry name of the dialect.
const Name = "duckdb"

// Definition returns the DuckDB dialect definition.
//
// DuckDB has approx_count_distinct but no mergeable sketch, so approximate
// unique counts are declared unsupported.
func Definition() dialect.Definition {
	return dialect.Definition{
		Name:        Name,
		Description: "DuckDB",
		TypeMap: []dialect.TypeMapping{
			{Field: ir.TypeInteger, Native: "INTEGER", Aliases: []string{"INT", "INT4", "SIGNED", "SMALLINT", "TINYINT"}},
			{Field: ir.TypeLong, Native: "BIGINT", Aliases: []string{"INT8", "LONG", "HUGEINT"}},
			{Field: ir.TypeDouble, Native: "DOUBLE", Aliases: []string{"FLOAT8", "FLOAT", "REAL"}},
			{Field: ir.TypeDecimal, Native: "DECIMAL", Aliases: []string{"NUMERIC"}},
			{Field: ir.TypeString, Native: "VARCHAR", Aliases: []string{"TEXT", "STRING", "CHAR", "BPCHAR"}},
			{Field: ir.TypeBoolean, Native: "BOOLEAN", Aliases: []string{"BOOL"}},
			{Field: ir.TypeDate, Native: "DATE"},
			{Field: ir.TypeTime, Native: "TIME"},
			{Field: ir.TypeTimestamp, Native: "TIMESTAMP", Aliases: []string{"DATETIME", "TIMESTAMP WITH TIME ZONE", "TIMESTAMPTZ"}},
			{Field: ir.TypeBinary, Native: "BLOB", Aliases: []string{"BYTEA", "BINARY", "VARBINARY"}},
			{Field: ir.TypeArrayString, Native: "VARCHAR[]"},
			{Field: ir.TypeArrayInteger, Native: "INTEGER[]"},
			{Field: ir.TypeArrayLong, Native: "BIGINT[]"},
			{Field: ir.TypeArrayDouble, Native: "DOUBLE[]"},
			{Field: ir.TypeArrayBoolean, Native: "BOOLEAN[]"},
			{Field: ir.TypeArrayDate, Native: "DATE[]"},
			{Field: ir.TypeArrayTime, Native: "TIME[]"},
			{Field: ir.TypeArrayTimestamp, Native: "TIMESTAMP[]"},
			{Field: ir.TypeMapString, Native: "MAP(VARCHAR, VARCHAR)"},
		},
		UnsupportedAggregations: []ir.AggregationType{ir.AggregationApproximateUnique},
		Filters: map[ir.Operator]string{
			ir.ArrayOp(ir.OpIncludes): "list_contains({{.Expr}}, {{.Value}})",
		},
		Functions: map[dialect.Function]string{
			dialect.FuncDateAdd: "{{index . 0}} + INTERVAL '{{index . 2}} {{index . 1}}'",
		},
		ObjectKinds:   []ir.ObjectKind{ir.ObjectTable, ir.ObjectView},
		DefaultSchema: "main",
		Generators:    querysql.Standard(),
	}
}
