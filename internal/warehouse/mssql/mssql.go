// Package mssql defines the Microsoft SQL Server dialect.
//
// SQL Server has no sketch type that can be merged, so approximate unique
// counts are declared unsupported. Rows are capped with TOP.
package mssql

import (
	"github.com/roach88/semsql/internal/dialect"
	"github.com/roach88/semsql/internal/ir"
	"github.com/roach88/semsql/internal/querysql"
)

// Name is the registry name of the dialect.
const Name = "mssql"

// Definition returns the SQL Server dialect definition.
func Definition() dialect.Definition {
	return dialect.Definition{
		Name:            Name,
		Description:     "Microsoft SQL Server 2022",
		IdentifierQuote: [2]string{"[", "]"},
		Literals: dialect.Literals{
			True:        "1",
			False:       "0",
			Date:        "CAST(%s AS DATE)",
			Time:        "CAST(%s AS TIME)",
			Timestamp:   "CAST(%s AS DATETIME2)",
			LikeSpecial: `%_[\`,
		},
		TypeMap: []dialect.TypeMapping{
			{Field: ir.TypeInteger, Native: "INT", Aliases: []string{"INTEGER", "SMALLINT", "TINYINT"}},
			{Field: ir.TypeLong, Native: "BIGINT"},
			{Field: ir.TypeDouble, Native: "FLOAT", Aliases: []string{"REAL", "DOUBLE PRECISION"}},
			{Field: ir.TypeDecimal, Native: "DECIMAL", Aliases: []string{"NUMERIC", "MONEY", "SMALLMONEY"}},
			{Field: ir.TypeString, Native: "NVARCHAR(MAX)", Aliases: []string{
				"NVARCHAR", "VARCHAR", "VARCHAR(MAX)", "NCHAR", "CHAR", "TEXT", "NTEXT",
			}},
			{Field: ir.TypeBoolean, Native: "BIT"},
			{Field: ir.TypeDate, Native: "DATE"},
			{Field: ir.TypeTime, Native: "TIME"},
			{Field: ir.TypeTimestamp, Native: "DATETIME2", Aliases: []string{"DATETIME", "SMALLDATETIME", "DATETIMEOFFSET"}},
			{Field: ir.TypeBinary, Native: "VARBINARY(MAX)", Aliases: []string{"VARBINARY", "BINARY", "IMAGE"}},
		},
		UnsupportedAggregations: []ir.AggregationType{ir.AggregationApproximateUnique},
		Functions: map[dialect.Function]string{
			dialect.FuncDateAdd:     "DATEADD({{index . 1}}, {{index . 2}}, {{index . 0}})",
			dialect.FuncDateTrunc:   "DATETRUNC({{index . 1}}, {{index . 0}})",
			dialect.FuncDateDiff:    "DATEDIFF({{index . 2}}, {{index . 0}}, {{index . 1}})",
			dialect.FuncCreateTable: "SELECT * INTO {{index . 0}} FROM (\n{{index . 1}}\n) AS [src]",
		},
		ObjectKinds:   []ir.ObjectKind{ir.ObjectTable, ir.ObjectView},
		DefaultSchema: "dbo",
		Limit:         dialect.LimitTop,
		Generators:    querysql.Standard(),
	}
}
