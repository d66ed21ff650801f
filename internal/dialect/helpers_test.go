package dialect

import (
	"github.com/roach88/semsql/internal/ir"
)

// testDefinition is a small ANSI dialect with a full sketch triple.
func testDefinition() Definition {
	return Definition{
		Name: "ansi",
		TypeMap: []TypeMapping{
			{Field: ir.TypeInteger, Native: "INTEGER", Aliases: []string{"INT"}},
			{Field: ir.TypeLong, Native: "BIGINT"},
			{Field: ir.TypeDouble, Native: "DOUBLE"},
			{Field: ir.TypeDecimal, Native: "DECIMAL"},
			{Field: ir.TypeString, Native: "VARCHAR", Aliases: []string{"TEXT"}},
			{Field: ir.TypeBoolean, Native: "BOOLEAN"},
			{Field: ir.TypeDate, Native: "DATE"},
			{Field: ir.TypeTime, Native: "TIME"},
			{Field: ir.TypeTimestamp, Native: "TIMESTAMP"},
		},
		UnimplementedTypes:   []ir.FieldType{ir.TypeArrayString},
		UnimplementedNatives: []string{"ARRAY"},
		Aggregations: map[ir.AggregationType]AggregationTemplate{
			ir.AggregationApproximateUnique: {
				Adhoc:      "approx_distinct({{.Column}})",
				Accumulate: "approx_set({{.Column}})",
				Merge:      "cardinality(merge({{.Column}}))",
			},
		},
		ObjectKinds:   []ir.ObjectKind{ir.ObjectTable, ir.ObjectView},
		DefaultSchema: "public",
	}
}

func testBridge() *Bridge {
	return MustNewBridge(testDefinition())
}

func str(s string) ir.IRValue { return ir.IRString(s) }

func ints(vals ...int64) ir.IRArray {
	out := make(ir.IRArray, len(vals))
	for i, v := range vals {
		out[i] = ir.IRInt(v)
	}
	return out
}
