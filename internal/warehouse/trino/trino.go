// Package trino defines the Trino (distributed engine) dialect.
//
// Approximate unique counts use HyperLogLog sketches so they can be
// accumulated on pre-aggregated rows and merged later. Binary, array and map
// types are acknowledged gaps.
package trino

import (
	"github.com/roach88/semsql/internal/dialect"
	"github.com/roach88/semsql/internal/ir"
	"github.com/roach88/semsql/internal/querysql"
)

// Name is the registry name of the dialect.
const Name = "trino"

// Definition returns the Trino dialect definition.
func Definition() dialect.Definition {
	return dialect.Definition{
		Name:        Name,
		Description: "Trino / Presto distributed SQL engine",
		TypeMap: []dialect.TypeMapping{
			{Field: ir.TypeInteger, Native: "INTEGER", Aliases: []string{"INT"}},
			{Field: ir.TypeLong, Native: "BIGINT"},
			{Field: ir.TypeDouble, Native: "DOUBLE"},
			{Field: ir.TypeDecimal, Native: "DECIMAL"},
			{Field: ir.TypeString, Native: "VARCHAR", Aliases: []string{"CHAR"}},
			{Field: ir.TypeBoolean, Native: "BOOLEAN"},
			{Field: ir.TypeDate, Native: "DATE"},
			{Field: ir.TypeTime, Native: "TIME"},
			{Field: ir.TypeTimestamp, Native: "TIMESTAMP", Aliases: []string{"TIMESTAMP WITH TIME ZONE"}},
		},
		UnimplementedTypes: []ir.FieldType{
			ir.TypeBinary,
			ir.TypeArrayString, ir.TypeArrayInteger, ir.TypeArrayLong, ir.TypeArrayDouble,
			ir.TypeArrayBoolean, ir.TypeArrayDate, ir.TypeArrayTime, ir.TypeArrayTimestamp,
			ir.TypeMapString,
		},
		UnimplementedNatives: []string{"ARRAY", "MAP", "VARBINARY"},
		Aggregations: map[ir.AggregationType]dialect.AggregationTemplate{
			ir.AggregationApproximateUnique: {
				Adhoc:      "approx_distinct({{.Column}})",
				Accumulate: "approx_set({{.Column}})",
				Merge:      "cardinality(merge({{.Column}}))",
			},
		},
		Filters: map[ir.Operator]string{
			ir.ArrayOp(ir.OpIncludes): "contains({{.Expr}}, {{.Value}})",
		},
		Functions: map[dialect.Function]string{
			dialect.FuncNow:     "CURRENT_TIMESTAMP",
			dialect.FuncDateAdd: "{{index . 0}} + interval '{{index . 2}}' {{index . 1}}",
		},
		ObjectKinds: []ir.ObjectKind{ir.ObjectTable, ir.ObjectView},
		Generators:  querysql.Standard(),
	}
}
