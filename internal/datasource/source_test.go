package datasource

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/semsql/internal/dialect"
	"github.com/roach88/semsql/internal/ir"
	"github.com/roach88/semsql/internal/queryir"
	"github.com/roach88/semsql/internal/testutil"
	"github.com/roach88/semsql/internal/warehouse/duckdb"
	"github.com/roach88/semsql/internal/warehouse/sqlite"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// openSeeded opens an in-memory source for def and loads the fixture tables.
func openSeeded(t *testing.T, def dialect.Definition) *Source {
	t.Helper()
	b, err := dialect.NewBridge(def, dialect.WithIDGenerator(testutil.NewFixedIDGenerator("q-1")))
	require.NoError(t, err)

	var src *Source
	switch def.Name {
	case sqlite.Name:
		src, err = OpenSQLite(":memory:", b, discardLogger())
	case duckdb.Name:
		src, err = OpenDuckDB("", b, discardLogger())
	default:
		t.Fatalf("no embedded engine for %s", def.Name)
	}
	require.NoError(t, err)
	t.Cleanup(func() { src.Close() })

	require.NoError(t, testutil.Seed(context.Background(), src.DB(), b))
	return src
}

func checkoutFunnel() queryir.Funnel {
	step := func(event string) queryir.FunnelStep {
		return queryir.FunnelStep{
			Model: "events",
			Filter: queryir.Group{Field: "event", Conditions: []queryir.Condition{
				{Operator: "equals", Value: ir.IRString(event)},
			}},
		}
	}
	return queryir.Funnel{
		Steps:  []queryir.FunnelStep{step("view"), step("cart"), step("purchase")},
		Window: queryir.Window{Value: 1, Unit: "day"},
	}
}

func TestListSchema(t *testing.T) {
	tests := []struct {
		def     dialect.Definition
		natives []string
	}{
		{sqlite.Definition(), []string{"INTEGER", "TEXT", "REAL", "DATE", "BOOLEAN", "TIMESTAMP"}},
		{duckdb.Definition(), []string{"INTEGER", "VARCHAR", "DOUBLE", "DATE", "BOOLEAN", "TIMESTAMP"}},
	}

	for _, tt := range tests {
		t.Run(tt.def.Name, func(t *testing.T) {
			src := openSeeded(t, tt.def)

			columns, err := src.ListSchema(context.Background(), testutil.FixtureTable)
			require.NoError(t, err)
			require.Len(t, columns, len(testutil.FixtureColumns()))
			for i, want := range testutil.FixtureColumns() {
				assert.Equal(t, want.Name, columns[i].Name)
				assert.Equal(t, want.Type, columns[i].Type, want.Name)
				assert.Equal(t, tt.natives[i], columns[i].Native, want.Name)
			}
		})
	}
}

func TestListSchema_UnsupportedNativeType(t *testing.T) {
	src := openSeeded(t, sqlite.Definition())
	_, err := src.DB().Exec(`CREATE TABLE "shapes" ("id" INTEGER, "area" GEOMETRY)`)
	require.NoError(t, err)

	_, err = src.ListSchema(context.Background(), "shapes")
	require.Error(t, err)
	assert.True(t, dialect.IsUnsupportedType(err))
	assert.Contains(t, err.Error(), "shapes.area")
}

func TestExecute_Segmentation(t *testing.T) {
	for _, def := range []dialect.Definition{sqlite.Definition(), duckdb.Definition()} {
		t.Run(def.Name, func(t *testing.T) {
			src := openSeeded(t, def)
			rq, err := src.Bridge().Generate(dialect.GeneratorContext{Models: testutil.FixtureModels()}, queryir.Segmentation{
				Model:      "events",
				Dimensions: []string{"user.country"},
				Measures:   []string{"users", "count"},
				OrderBy:    []queryir.Order{{Field: "user.country"}},
			})
			require.NoError(t, err)

			result, err := src.Execute(context.Background(), rq)
			require.NoError(t, err)
			assert.Equal(t, "q-1", result.QueryID)
			assert.Equal(t, []string{"user.country", "users", "count"}, result.Columns)
			assert.Equal(t, [][]any{
				{"DE", int64(2), int64(4)},
				{"FR", int64(1), int64(3)},
			}, result.Rows)
		})
	}
}

func TestExecute_Funnel(t *testing.T) {
	for _, def := range []dialect.Definition{sqlite.Definition(), duckdb.Definition()} {
		t.Run(def.Name, func(t *testing.T) {
			src := openSeeded(t, def)
			rq, err := src.Bridge().Generate(dialect.GeneratorContext{Models: testutil.FixtureModels()}, checkoutFunnel())
			require.NoError(t, err)

			result, err := src.Execute(context.Background(), rq)
			require.NoError(t, err)
			require.Len(t, result.Rows, 1)
			assert.Equal(t, []any{int64(3), int64(2), int64(1)}, result.Rows[0])
		})
	}
}

func TestExecute_DialectMismatch(t *testing.T) {
	src := openSeeded(t, sqlite.Definition())
	_, err := src.Execute(context.Background(), &dialect.RenderedQuery{ID: "q-9", Dialect: "trino", SQL: "SELECT 1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rendered for trino")
}

func TestResultColumn(t *testing.T) {
	r := &Result{Columns: []string{"a", "b"}, Rows: [][]any{{int64(1), "x"}, {int64(2), "y"}}}
	assert.Equal(t, []any{"x", "y"}, r.Column("b"))
	assert.Nil(t, r.Column("c"))
}
