package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/semsql/internal/ir"
)

func TestLiteral(t *testing.T) {
	b := testBridge()

	tests := []struct {
		name  string
		ft    ir.FieldType
		value ir.IRValue
		want  string
	}{
		{"string with quote", ir.TypeString, str("it's"), "'it''s'"},
		{"integer", ir.TypeInteger, ir.IRInt(42), "42"},
		{"decimal keeps text", ir.TypeDecimal, ir.IRNumber("1.50"), "1.50"},
		{"boolean", ir.TypeBoolean, ir.IRBool(true), "TRUE"},
		{"date", ir.TypeDate, str("2000-01-03"), "DATE '2000-01-03'"},
		{"time", ir.TypeTime, str("03:00"), "TIME '03:00:00'"},
		{"timestamp with T", ir.TypeTimestamp, str("1970-01-01T03:00"), "TIMESTAMP '1970-01-01 03:00:00'"},
		{"zoned timestamp in UTC", ir.TypeTimestamp, str("2024-01-01T12:00:00+02:00"), "TIMESTAMP '2024-01-01 10:00:00'"},
		{"null", ir.TypeString, ir.IRNull{}, "NULL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.Literal(tt.ft, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLiteral_Mismatch(t *testing.T) {
	b := testBridge()

	_, err := b.Literal(ir.TypeDate, str("yesterday"))
	require.Error(t, err)
	assert.True(t, IsUnsupportedType(err))

	_, err = b.Literal(ir.TypeBinary, str("00ff"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no literal syntax")
}

func TestEscapeLike(t *testing.T) {
	l := Literals{}.withDefaults()
	assert.Equal(t, `50\% off\_now`, l.escapeLike("50% off_now"))

	mssql := Literals{LikeSpecial: `%_[\`}.withDefaults()
	assert.Equal(t, `\[a]`, mssql.escapeLike("[a]"))
}
