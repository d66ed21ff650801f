package warehouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/semsql/internal/dialect"
	"github.com/roach88/semsql/internal/queryir"
	"github.com/roach88/semsql/internal/testutil"
)

func TestRenderAll(t *testing.T) {
	r := builtin(t)
	q := &queryir.Segmentation{Model: "fixture", Measures: []string{"approx_strings"}}

	outcomes, err := r.RenderAll(context.Background(), dialect.GeneratorContext{Models: testutil.FixtureModels()}, q)
	require.NoError(t, err)
	require.Len(t, outcomes, 5)

	byDialect := make(map[string]Outcome, len(outcomes))
	for i, o := range outcomes {
		assert.Equal(t, r.Names()[i], o.Dialect, "outcomes follow name order")
		byDialect[o.Dialect] = o
	}

	for _, name := range []string{"trino", "postgresql"} {
		o := byDialect[name]
		require.NoError(t, o.Err, name)
		assert.Equal(t, name, o.Query.Dialect)
	}
	assert.Contains(t, byDialect["trino"].Query.SQL, "approx_distinct(")
	assert.Contains(t, byDialect["postgresql"].Query.SQL, "hll_cardinality(")

	for _, name := range []string{"duckdb", "mssql", "sqlite"} {
		o := byDialect[name]
		assert.Nil(t, o.Query, name)
		assert.True(t, dialect.IsUnsupportedAggregationContext(o.Err), "%s: %v", name, o.Err)
	}
}

func TestRenderAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	q := &queryir.Segmentation{Model: "fixture", Measures: []string{"count"}}
	_, err := builtin(t).RenderAll(ctx, dialect.GeneratorContext{Models: testutil.FixtureModels()}, q)
	assert.ErrorIs(t, err, context.Canceled)
}
