// Package postgres defines the PostgreSQL dialect.
//
// Approximate unique counts need the hll extension. Arrays map to native
// array types and string maps to hstore.
package postgres

import (
	"github.com/roach88/semsql/internal/dialect"
	"github.com/roach88/semsql/internal/ir"
	"github.com/roach88/semsql/internal/querysql"
)

// Name is the registry name of the dialect.
const Name = "postgresql"

// dateDiff counts whole units between two timestamps. Calendar units above
// a week have no exact epoch arithmetic and are rejected.
const dateDiff = `{{$u := index . 2}}` +
	`{{if eq $u "second"}}CAST(EXTRACT(EPOCH FROM ({{index . 1}} - {{index . 0}})) AS BIGINT)` +
	`{{else if eq $u "minute"}}CAST(EXTRACT(EPOCH FROM ({{index . 1}} - {{index . 0}})) / 60 AS BIGINT)` +
	`{{else if eq $u "hour"}}CAST(EXTRACT(EPOCH FROM ({{index . 1}} - {{index . 0}})) / 3600 AS BIGINT)` +
	`{{else if eq $u "day"}}(CAST({{index . 1}} AS DATE) - CAST({{index . 0}} AS DATE))` +
	`{{else if eq $u "week"}}((CAST({{index . 1}} AS DATE) - CAST({{index . 0}} AS DATE)) / 7)` +
	`{{else}}{{unsupported (printf "DATE_DIFF in %s" $u)}}{{end}}`

// Definition returns the PostgreSQL dialect definition.
func Definition() dialect.Definition {
	return dialect.Definition{
		Name:        Name,
		Description: "PostgreSQL",
		TypeMap: []dialect.TypeMapping{
			{Field: ir.TypeInteger, Native: "INTEGER", Aliases: []string{"INT", "INT4", "SERIAL", "SMALLINT", "INT2"}},
			{Field: ir.TypeLong, Native: "BIGINT", Aliases: []string{"INT8", "BIGSERIAL"}},
			{Field: ir.TypeDouble, Native: "DOUBLE PRECISION", Aliases: []string{"FLOAT8", "REAL", "FLOAT4"}},
			{Field: ir.TypeDecimal, Native: "NUMERIC", Aliases: []string{"DECIMAL"}},
			{Field: ir.TypeString, Native: "TEXT", Aliases: []string{"VARCHAR", "CHARACTER VARYING", "CHAR", "CHARACTER", "BPCHAR"}},
			{Field: ir.TypeBoolean, Native: "BOOLEAN", Aliases: []string{"BOOL"}},
			{Field: ir.TypeDate, Native: "DATE"},
			{Field: ir.TypeTime, Native: "TIME", Aliases: []string{"TIME WITHOUT TIME ZONE"}},
			{Field: ir.TypeTimestamp, Native: "TIMESTAMP", Aliases: []string{
				"TIMESTAMP WITHOUT TIME ZONE", "TIMESTAMP WITH TIME ZONE", "TIMESTAMPTZ",
			}},
			{Field: ir.TypeBinary, Native: "BYTEA"},
			{Field: ir.TypeArrayString, Native: "TEXT[]", Aliases: []string{"_TEXT", "VARCHAR[]", "_VARCHAR"}},
			{Field: ir.TypeArrayInteger, Native: "INTEGER[]", Aliases: []string{"_INT4", "INT[]"}},
			{Field: ir.TypeArrayLong, Native: "BIGINT[]", Aliases: []string{"_INT8"}},
			{Field: ir.TypeArrayDouble, Native: "DOUBLE PRECISION[]", Aliases: []string{"_FLOAT8"}},
			{Field: ir.TypeArrayBoolean, Native: "BOOLEAN[]", Aliases: []string{"_BOOL"}},
			{Field: ir.TypeArrayDate, Native: "DATE[]", Aliases: []string{"_DATE"}},
			{Field: ir.TypeArrayTime, Native: "TIME[]", Aliases: []string{"_TIME"}},
			{Field: ir.TypeArrayTimestamp, Native: "TIMESTAMP[]", Aliases: []string{"_TIMESTAMP"}},
			{Field: ir.TypeMapString, Native: "HSTORE"},
		},
		Aggregations: map[ir.AggregationType]dialect.AggregationTemplate{
			ir.AggregationApproximateUnique: {
				Adhoc:      "hll_cardinality(hll_add_agg(hll_hash_any({{.Column}})))",
				Accumulate: "hll_add_agg(hll_hash_any({{.Column}}))",
				Merge:      "hll_cardinality(hll_union_agg({{.Column}}))",
			},
		},
		Filters: map[ir.Operator]string{
			ir.ArrayOp(ir.OpIncludes): "{{.Value}} = ANY({{.Expr}})",
		},
		Functions: map[dialect.Function]string{
			dialect.FuncDateAdd:  "{{index . 0}} + INTERVAL '{{index . 2}} {{index . 1}}'",
			dialect.FuncDateDiff: dateDiff,
		},
		ObjectKinds:   []ir.ObjectKind{ir.ObjectTable, ir.ObjectView, ir.ObjectMaterializedView},
		DefaultSchema: "public",
		Generators:    querysql.Standard(),
	}
}
