package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/semsql/internal/ir"
)

func TestRenderFilter(t *testing.T) {
	b := testBridge()

	tests := []struct {
		name     string
		filter   ir.Filter
		expected string
	}{
		{"is set", ir.Filter{Type: ir.TypeMapString, Operator: ir.AnyOp(ir.OpIsSet)}, `x IS NOT NULL`},
		{"is not set", ir.Filter{Type: ir.TypeBinary, Operator: ir.AnyOp(ir.OpIsNotSet)}, `x IS NULL`},
		{"string equals", ir.Filter{Type: ir.TypeString, Operator: ir.StringOp(ir.OpEquals), Value: str("O'Brien")}, `x = 'O''Brien'`},
		{"string not equals keeps nulls", ir.Filter{Type: ir.TypeString, Operator: ir.StringOp(ir.OpNotEquals), Value: str("a")}, `(x <> 'a' OR x IS NULL)`},
		{"contains", ir.Filter{Type: ir.TypeString, Operator: ir.StringOp(ir.OpContains), Value: str("liet")}, `x LIKE '%liet%' ESCAPE '\'`},
		{"starts with", ir.Filter{Type: ir.TypeString, Operator: ir.StringOp(ir.OpStartsWith), Value: str("charli")}, `x LIKE 'charli%' ESCAPE '\'`},
		{"ends with", ir.Filter{Type: ir.TypeString, Operator: ir.StringOp(ir.OpEndsWith), Value: str("trot")}, `x LIKE '%trot' ESCAPE '\'`},
		{"contains escapes wildcards", ir.Filter{Type: ir.TypeString, Operator: ir.StringOp(ir.OpContains), Value: str(`50%_off\`)}, `x LIKE '%50\%\_off\\%' ESCAPE '\'`},
		{"string in", ir.Filter{Type: ir.TypeString, Operator: ir.StringOp(ir.OpIn), Value: ir.IRArray{str("a"), str("b")}}, `x IN ('a', 'b')`},
		{"number in", ir.Filter{Type: ir.TypeInteger, Operator: ir.NumberOp(ir.OpIn), Value: ints(1, 2, 3)}, `x IN (1, 2, 3)`},
		{"scalar in", ir.Filter{Type: ir.TypeInteger, Operator: ir.NumberOp(ir.OpIn), Value: ir.IRInt(7)}, `x IN (7)`},
		{"not in keeps nulls", ir.Filter{Type: ir.TypeLong, Operator: ir.NumberOp(ir.OpNotIn), Value: ints(1, 2)}, `(x NOT IN (1, 2) OR x IS NULL)`},
		{"greater than", ir.Filter{Type: ir.TypeInteger, Operator: ir.NumberOp(ir.OpGreaterThan), Value: ir.IRInt(3)}, `x > 3`},
		{"decimal keeps text", ir.Filter{Type: ir.TypeDecimal, Operator: ir.NumberOp(ir.OpLessThanOrEquals), Value: ir.IRNumber("0.10")}, `x <= 0.10`},
		{"numeric string", ir.Filter{Type: ir.TypeDouble, Operator: ir.NumberOp(ir.OpGreaterThanOrEquals), Value: str("2.50")}, `x >= 2.50`},
		{"boolean is", ir.Filter{Type: ir.TypeBoolean, Operator: ir.BooleanOp(ir.OpIs), Value: ir.IRBool(true)}, `x = TRUE`},
		{"boolean string", ir.Filter{Type: ir.TypeBoolean, Operator: ir.BooleanOp(ir.OpIs), Value: str("False")}, `x = FALSE`},
		{"date", ir.Filter{Type: ir.TypeDate, Operator: ir.DateOp(ir.OpGreaterThan), Value: str("2000-01-03")}, `x > DATE '2000-01-03'`},
		{"time", ir.Filter{Type: ir.TypeTime, Operator: ir.TimeOp(ir.OpLessThan), Value: str("13:30")}, `x < TIME '13:30:00'`},
		{"timestamp minutes", ir.Filter{Type: ir.TypeTimestamp, Operator: ir.TimestampOp(ir.OpLessThan), Value: str("1970-01-01T03:00")}, `x < TIMESTAMP '1970-01-01 03:00:00'`},
		{"timestamp zoned", ir.Filter{Type: ir.TypeTimestamp, Operator: ir.TimestampOp(ir.OpEquals), Value: str("2020-05-01T12:00:00.5+02:00")}, `x = TIMESTAMP '2020-05-01 10:00:00.5'`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, err := b.RenderFilter("x", tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, sql)
		})
	}
}

func TestRenderFilterInvalidCombination(t *testing.T) {
	b := testBridge()

	tests := []struct {
		name   string
		filter ir.Filter
	}{
		{"date operator on string", ir.Filter{Type: ir.TypeString, Operator: ir.DateOp(ir.OpGreaterThan), Value: str("2000-01-01")}},
		{"string operator on integer", ir.Filter{Type: ir.TypeInteger, Operator: ir.StringOp(ir.OpContains), Value: str("1")}},
		{"kind outside family", ir.Filter{Type: ir.TypeBoolean, Operator: ir.Operator{Family: ir.FamilyBoolean, Kind: ir.OpEquals}, Value: ir.IRBool(true)}},
		{"missing operand", ir.Filter{Type: ir.TypeString, Operator: ir.StringOp(ir.OpEquals)}},
		{"null operand", ir.Filter{Type: ir.TypeInteger, Operator: ir.NumberOp(ir.OpEquals), Value: ir.IRNull{}}},
		{"malformed date", ir.Filter{Type: ir.TypeDate, Operator: ir.DateOp(ir.OpEquals), Value: str("03/01/2000")}},
		{"date operand not a string", ir.Filter{Type: ir.TypeDate, Operator: ir.DateOp(ir.OpEquals), Value: ir.IRInt(20000103)}},
		{"non numeric", ir.Filter{Type: ir.TypeInteger, Operator: ir.NumberOp(ir.OpEquals), Value: str("one")}},
		{"string operand for number", ir.Filter{Type: ir.TypeString, Operator: ir.StringOp(ir.OpEquals), Value: ir.IRInt(1)}},
		{"boolean garbage", ir.Filter{Type: ir.TypeBoolean, Operator: ir.BooleanOp(ir.OpIs), Value: str("yes")}},
		{"empty in", ir.Filter{Type: ir.TypeInteger, Operator: ir.NumberOp(ir.OpIn), Value: ir.IRArray{}}},
		{"null in list", ir.Filter{Type: ir.TypeInteger, Operator: ir.NumberOp(ir.OpIn), Value: ir.IRArray{ir.IRInt(1), ir.IRNull{}}}},
		{"includes without override", ir.Filter{Type: ir.TypeArrayString, Operator: ir.ArrayOp(ir.OpIncludes), Value: str("a")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, err := b.RenderFilter("x", tt.filter)
			require.Error(t, err)
			assert.True(t, IsInvalidFilterCombination(err), "got %v", err)
			assert.Empty(t, sql, "no partial SQL on failure")
		})
	}
}

func TestRenderFilterOverride(t *testing.T) {
	def := testDefinition()
	def.Filters = map[ir.Operator]string{
		ir.ArrayOp(ir.OpIncludes):   "contains({{.Expr}}, {{.Value}})",
		ir.StringOp(ir.OpContains): "instr({{.Expr}}, {{.Value}}) > 0",
	}
	b := MustNewBridge(def)

	sql, err := b.RenderFilter("tags", ir.Filter{Type: ir.TypeArrayString, Operator: ir.ArrayOp(ir.OpIncludes), Value: str("go")})
	require.NoError(t, err)
	assert.Equal(t, `contains(tags, 'go')`, sql)

	sql, err = b.RenderFilter("name", ir.Filter{Type: ir.TypeString, Operator: ir.StringOp(ir.OpContains), Value: str("50%")})
	require.NoError(t, err)
	assert.Equal(t, `instr(name, '50%') > 0`, sql)

	_, err = b.RenderFilter("tags", ir.Filter{Type: ir.TypeArrayInteger, Operator: ir.ArrayOp(ir.OpIncludes), Value: str("x")})
	assert.True(t, IsInvalidFilterCombination(err), "element type is checked before the override runs")
}

func TestRenderFilterGroup(t *testing.T) {
	b := testBridge()
	gt := ir.Filter{Type: ir.TypeInteger, Operator: ir.NumberOp(ir.OpGreaterThan), Value: ir.IRInt(3)}
	lt := ir.Filter{Type: ir.TypeInteger, Operator: ir.NumberOp(ir.OpLessThan), Value: ir.IRInt(5)}

	sql, err := b.RenderFilterGroup(`"int"`, []ir.Filter{gt, lt}, ir.MatchAll)
	require.NoError(t, err)
	assert.Equal(t, `("int" > 3 AND "int" < 5)`, sql)

	sql, err = b.RenderFilterGroup(`"int"`, []ir.Filter{gt, lt}, ir.MatchAny)
	require.NoError(t, err)
	assert.Equal(t, `("int" > 3 OR "int" < 5)`, sql)

	sql, err = b.RenderFilterGroup(`"int"`, []ir.Filter{gt}, "")
	require.NoError(t, err)
	assert.Equal(t, `("int" > 3)`, sql)

	bad := ir.Filter{Type: ir.TypeInteger, Operator: ir.StringOp(ir.OpContains), Value: str("x")}
	sql, err = b.RenderFilterGroup(`"int"`, []ir.Filter{gt, bad}, ir.MatchAll)
	assert.True(t, IsInvalidFilterCombination(err))
	assert.Empty(t, sql)

	_, err = b.RenderFilterGroup(`"int"`, nil, ir.MatchAll)
	assert.True(t, IsInvalidFilterCombination(err))
}

func TestRenderFilterEveryLegalOperator(t *testing.T) {
	b := testBridge()
	operands := map[ir.FieldType]ir.IRValue{
		ir.TypeInteger:   ir.IRInt(1),
		ir.TypeLong:      ir.IRInt(1),
		ir.TypeDouble:    ir.IRNumber("1.5"),
		ir.TypeDecimal:   ir.IRNumber("1.5"),
		ir.TypeString:    str("a"),
		ir.TypeBoolean:   ir.IRBool(true),
		ir.TypeDate:      str("2000-01-01"),
		ir.TypeTime:      str("10:00"),
		ir.TypeTimestamp: str("2000-01-01T10:00"),
	}
	for ft, operand := range operands {
		ops, err := ir.LegalOperators(ft)
		require.NoError(t, err)
		for _, op := range ops {
			sql, err := b.RenderFilter("x", ir.Filter{Type: ft, Operator: op, Value: operand})
			assert.NoError(t, err, "%s on %s", op, ft)
			assert.NotEmpty(t, sql)
		}
	}
}
