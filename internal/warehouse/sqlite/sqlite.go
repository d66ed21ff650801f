// Package sqlite defines the SQLite dialect.
//
// SQLite stores booleans as 0/1 and dates as ISO-8601 text, so literals are
// plain values. LIKE is case-insensitive in SQLite; string matching uses
// instr and substr instead. ENDS_WITH counts from the start of the string:
// substr(x, -0) is the whole string, so an empty suffix would never match.
package sqlite

import (
	"github.com/roach88/semsql/internal/dialect"
	"github.com/roach88/semsql/internal/ir"
	"github.com/roach88/semsql/internal/querysql"
)

// Name is the registry name of the dialect.
const Name = "sqlite"

const dateTrunc = `{{$u := index . 1}}{{$x := index . 0}}` +
	`{{if eq $u "second"}}strftime('%Y-%m-%d %H:%M:%S', {{$x}})` +
	`{{else if eq $u "minute"}}strftime('%Y-%m-%d %H:%M:00', {{$x}})` +
	`{{else if eq $u "hour"}}strftime('%Y-%m-%d %H:00:00', {{$x}})` +
	`{{else if eq $u "day"}}date({{$x}})` +
	`{{else if eq $u "week"}}date({{$x}}, '-6 days', 'weekday 1')` +
	`{{else if eq $u "month"}}date({{$x}}, 'start of month')` +
	`{{else if eq $u "quarter"}}date({{$x}}, 'start of month', printf('-%d months', (CAST(strftime('%m', {{$x}}) AS INTEGER) - 1) % 3))` +
	`{{else if eq $u "year"}}date({{$x}}, 'start of year')` +
	`{{else}}{{unsupported (printf "DATE_TRUNC to %s" $u)}}{{end}}`

const dateDiff = `{{$u := index . 2}}{{$d := printf "(julianday(%s) - julianday(%s))" (index . 1) (index . 0)}}` +
	`{{if eq $u "second"}}CAST({{$d}} * 86400 AS INTEGER)` +
	`{{else if eq $u "minute"}}CAST({{$d}} * 1440 AS INTEGER)` +
	`{{else if eq $u "hour"}}CAST({{$d}} * 24 AS INTEGER)` +
	`{{else if eq $u "day"}}CAST({{$d}} AS INTEGER)` +
	`{{else if eq $u "week"}}CAST({{$d}} / 7 AS INTEGER)` +
	`{{else}}{{unsupported (printf "DATE_DIFF in %s" $u)}}{{end}}`

// Definition returns the SQLite dialect definition.
func Definition() dialect.Definition {
	return dialect.Definition{
		Name:        Name,
		Description: "SQLite 3",
		Literals: dialect.Literals{
			True:      "1",
			False:     "0",
			Date:      "%s",
			Time:      "%s",
			Timestamp: "%s",
		},
		TypeMap: []dialect.TypeMapping{
			{Field: ir.TypeInteger, Native: "INTEGER", Aliases: []string{"INT", "SMALLINT", "TINYINT", "MEDIUMINT"}},
			{Field: ir.TypeLong, Native: "BIGINT", Aliases: []string{"INT8", "UNSIGNED BIG INT"}},
			{Field: ir.TypeDouble, Native: "REAL", Aliases: []string{"DOUBLE", "DOUBLE PRECISION", "FLOAT"}},
			{Field: ir.TypeDecimal, Native: "NUMERIC", Aliases: []string{"DECIMAL"}},
			{Field: ir.TypeString, Native: "TEXT", Aliases: []string{"VARCHAR", "CHAR", "CHARACTER", "NVARCHAR", "NCHAR", "CLOB"}},
			{Field: ir.TypeBoolean, Native: "BOOLEAN", Aliases: []string{"BOOL"}},
			{Field: ir.TypeDate, Native: "DATE"},
			{Field: ir.TypeTime, Native: "TIME"},
			{Field: ir.TypeTimestamp, Native: "TIMESTAMP", Aliases: []string{"DATETIME"}},
			{Field: ir.TypeBinary, Native: "BLOB"},
		},
		UnsupportedAggregations: []ir.AggregationType{ir.AggregationApproximateUnique},
		Filters: map[ir.Operator]string{
			ir.StringOp(ir.OpContains):   "instr({{.Expr}}, {{.Value}}) > 0",
			ir.StringOp(ir.OpStartsWith): "substr({{.Expr}}, 1, length({{.Value}})) = {{.Value}}",
			ir.StringOp(ir.OpEndsWith):   "substr({{.Expr}}, length({{.Expr}}) - length({{.Value}}) + 1) = {{.Value}}",
		},
		Functions: map[dialect.Function]string{
			dialect.FuncNow:       "CURRENT_TIMESTAMP",
			dialect.FuncDateAdd:   "datetime({{index . 0}}, '{{index . 2}} {{index . 1}}')",
			dialect.FuncDateTrunc: dateTrunc,
			dialect.FuncDateDiff:  dateDiff,
		},
		ObjectKinds: []ir.ObjectKind{ir.ObjectTable, ir.ObjectView},
		Generators:  querysql.Standard(),
	}
}
