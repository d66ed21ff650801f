package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFieldRef(t *testing.T) {
	tests := []struct {
		input    string
		expected FieldRef
	}{
		{"country", FieldRef{Name: "country"}},
		{"created_at::day", FieldRef{Name: "created_at", PostOperation: "day"}},
		{"user.country", FieldRef{Relation: "user", Name: "country"}},
		{"user.created_at::month", FieldRef{Relation: "user", Name: "created_at", PostOperation: "month"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ref, err := ParseFieldRef(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ref)
			assert.Equal(t, tt.input, ref.String())
		})
	}

	for _, bad := range []string{"", "x::", ".name", "user."} {
		_, err := ParseFieldRef(bad)
		assert.Error(t, err, bad)
	}
}

func TestModelLookups(t *testing.T) {
	m := &Model{
		Name:       "events",
		Dimensions: []Dimension{{Name: "country", Type: TypeString}},
		Measures:   []Measure{{Name: "total", Aggregation: AggregationCount}},
		Relations:  []Relation{{Name: "user", Model: "users"}},
	}

	d, ok := m.Dimension("country")
	require.True(t, ok)
	assert.Equal(t, TypeString, d.Type)
	_, ok = m.Dimension("missing")
	assert.False(t, ok)

	_, ok = m.Measure("total")
	assert.True(t, ok)
	r, ok := m.Relation("user")
	require.True(t, ok)
	assert.Equal(t, "LEFT JOIN", r.Join.SQL())

	models := Models{"events": m}
	_, err := models.Get("users")
	assert.Error(t, err)
}

func TestTargetString(t *testing.T) {
	assert.Equal(t, "db.public.events", Target{Database: "db", Schema: "public", Table: "events"}.String())
	assert.Equal(t, "events", Target{Table: "events"}.String())
	assert.Equal(t, "(select 1)", Target{SQL: "select 1"}.String())
	assert.Equal(t, "INNER JOIN", JoinInner.SQL())
}
