package querysql_test

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/roach88/semsql/internal/dialect"
	"github.com/roach88/semsql/internal/ir"
	"github.com/roach88/semsql/internal/queryir"
	"github.com/roach88/semsql/internal/testutil"
)

func newBridge(t *testing.T, def dialect.Definition) *dialect.Bridge {
	t.Helper()
	b, err := dialect.NewBridge(def, dialect.WithIDGenerator(testutil.NewFixedIDGenerator("q-1")))
	require.NoError(t, err)
	return b
}

func fixtureContext() dialect.GeneratorContext {
	return dialect.GeneratorContext{Models: testutil.FixtureModels()}
}

func group(field string, conds ...queryir.Condition) queryir.Group {
	return queryir.Group{Field: field, Conditions: conds}
}

func cond(op string, v ir.IRValue) queryir.Condition {
	return queryir.Condition{Operator: op, Value: v}
}

func strs(values ...string) ir.IRArray {
	out := make(ir.IRArray, len(values))
	for i, v := range values {
		out[i] = ir.IRString(v)
	}
	return out
}

// assertGoldenSQL compares rendered SQL against testdata/golden/<name>.golden.
func assertGoldenSQL(t *testing.T, name, sql string) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(sql+"\n"))
}
