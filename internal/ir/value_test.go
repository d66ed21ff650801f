package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIRValueSealed(t *testing.T) {
	var _ IRValue = IRNull{}
	var _ IRValue = IRString("test")
	var _ IRValue = IRInt(42)
	var _ IRValue = IRNumber("4.2")
	var _ IRValue = IRBool(true)
	var _ IRValue = IRArray{IRString("a"), IRInt(1)}
	var _ IRValue = IRObject{"key": IRString("value")}
}

func TestIRObjectSortedKeys(t *testing.T) {
	obj := IRObject{"zebra": IRInt(1), "apple": IRInt(2), "A": IRInt(3), "aa": IRInt(4)}
	assert.Equal(t, []string{"A", "aa", "apple", "zebra"}, obj.SortedKeys())
}

func TestNewIRNumber(t *testing.T) {
	n, err := NewIRNumber(" 3.50 ")
	require.NoError(t, err)
	assert.Equal(t, IRNumber("3.50"), n, "textual form is preserved")

	_, err = NewIRNumber("3.5.0")
	assert.Error(t, err)
	_, err = NewIRNumber("")
	assert.Error(t, err)
}

func TestUnmarshalIRValue(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected IRValue
	}{
		{"string", `"hello"`, IRString("hello")},
		{"int", `42`, IRInt(42)},
		{"decimal keeps text", `0.10`, IRNumber("0.10")},
		{"exponent", `1e3`, IRNumber("1e3")},
		{"beyond int64", `9223372036854775808`, IRNumber("9223372036854775808")},
		{"bool", `true`, IRBool(true)},
		{"null", `null`, IRNull{}},
		{"array", `[1,"a"]`, IRArray{IRInt(1), IRString("a")}},
		{"object", `{"k":[true]}`, IRObject{"k": IRArray{IRBool(true)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := UnmarshalIRValue([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestUnmarshalIRValueInvalid(t *testing.T) {
	_, err := UnmarshalIRValue([]byte(`{`))
	assert.Error(t, err)
}

func TestFromAnyYAMLShapes(t *testing.T) {
	v, err := FromAny(map[string]any{"f": 2.5, "i": 3, "l": []any{"x", false}})
	require.NoError(t, err)
	assert.Equal(t, IRObject{
		"f": IRNumber("2.5"),
		"i": IRInt(3),
		"l": IRArray{IRString("x"), IRBool(false)},
	}, v)

	_, err = FromAny(struct{}{})
	assert.Error(t, err)
}

func TestMarshalIRValueRoundTrip(t *testing.T) {
	v := IRObject{"n": IRNumber("0.10"), "s": IRString("x"), "a": IRArray{IRInt(1)}, "z": IRNull{}}
	data, err := MarshalIRValue(v)
	require.NoError(t, err)
	assert.Equal(t, `{"a":[1],"n":0.10,"s":"x","z":null}`, string(data))

	back, err := UnmarshalIRValue(data)
	require.NoError(t, err)
	assert.Equal(t, v, back)
}

func TestToAny(t *testing.T) {
	out := ToAny(IRArray{IRNumber("1.25"), IRInt(2), IRString("s"), IRBool(true), IRNull{}})
	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Equal(t, `[1.25,2,"s",true,null]`, string(data))
}
