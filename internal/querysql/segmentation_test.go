package querysql_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/semsql/internal/dialect"
	"github.com/roach88/semsql/internal/ir"
	"github.com/roach88/semsql/internal/queryir"
	"github.com/roach88/semsql/internal/warehouse/duckdb"
	"github.com/roach88/semsql/internal/warehouse/mssql"
	"github.com/roach88/semsql/internal/warehouse/postgres"
	"github.com/roach88/semsql/internal/warehouse/sqlite"
	"github.com/roach88/semsql/internal/warehouse/trino"
)

func TestSegmentation_Golden(t *testing.T) {
	tests := []struct {
		name  string
		def   dialect.Definition
		query queryir.Segmentation
	}{
		{
			name: "segmentation_trino",
			def:  trino.Definition(),
			query: queryir.Segmentation{
				Model:      "fixture",
				Dimensions: []string{"test_string", "test_date::month"},
				Measures:   []string{"count", "approx_strings"},
				Filter: queryir.And{Predicates: []queryir.Predicate{
					group("test_int", cond("greater_than", ir.IRInt(3)), cond("less_than", ir.IRInt(5))),
					group("count", cond("greater_than", ir.IRInt(0))),
				}},
				OrderBy: []queryir.Order{{Field: "count", Descending: true}},
				Limit:   10,
			},
		},
		{
			name: "segmentation_mssql_top",
			def:  mssql.Definition(),
			query: queryir.Segmentation{
				Model:      "fixture",
				Dimensions: []string{"test_string", "test_date::month"},
				Measures:   []string{"count", "total_int"},
				Filter:     group("test_date", cond("greater_than_or_equals", ir.IRString("2000-01-03"))),
				OrderBy:    []queryir.Order{{Field: "total_int", Descending: true}},
				Limit:      5,
			},
		},
		{
			name: "segmentation_postgres_join",
			def:  postgres.Definition(),
			query: queryir.Segmentation{
				Model:      "events",
				Dimensions: []string{"user.country", "ts::day"},
				Measures:   []string{"users"},
				Filter:     group("event", cond("in", strs("view", "cart"))),
				OrderBy:    []queryir.Order{{Field: "user.country"}},
			},
		},
		{
			name: "segmentation_postgres_materialized_sketch",
			def:  postgres.Definition(),
			query: queryir.Segmentation{
				Model:       "fixture",
				Dimensions:  []string{"test_bool"},
				Measures:    []string{"approx_strings", "count"},
				Filter:      group("test_bool", cond("is", ir.IRBool(true))),
				Context:     ir.ContextAccumulate,
				Materialize: &queryir.Materialize{Kind: ir.ObjectMaterializedView, Name: "analytics.bool_sketch"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBridge(t, tt.def)
			rq, err := b.Generate(fixtureContext(), tt.query)
			require.NoError(t, err)
			assertGoldenSQL(t, tt.name, rq.SQL)
		})
	}
}

func TestSegmentation_SQLite(t *testing.T) {
	b := newBridge(t, sqlite.Definition())

	rq, err := b.Generate(fixtureContext(), queryir.Segmentation{
		Model:    "fixture",
		Measures: []string{"count"},
		Filter: queryir.And{Predicates: []queryir.Predicate{
			group("test_string", cond("contains", ir.IRString("liet"))),
			group("test_bool", cond("is", ir.IRBool(true))),
		}},
		Limit: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, "SELECT COUNT(*) AS \"count\"\n"+
		"FROM \"fixture\" AS \"fixture\"\n"+
		"WHERE (instr(\"fixture\".\"test_string\", 'liet') > 0) AND (\"fixture\".\"test_bool\" = 1)\n"+
		"LIMIT 3", rq.SQL)
	assert.Equal(t, "q-1", rq.ID)
	assert.Equal(t, sqlite.Name, rq.Dialect)
	assert.Equal(t, queryir.KindSegmentation, rq.Kind)
	assert.Equal(t, ir.MustCacheKey(sqlite.Name, rq.SQL, nil), rq.CacheKey)
}

func TestSegmentation_References(t *testing.T) {
	b := newBridge(t, postgres.Definition())

	rq, err := b.Generate(fixtureContext(), queryir.Segmentation{
		Model:      "events",
		Dimensions: []string{"user.country", "ts::day"},
		Measures:   []string{"count"},
		Filter:     group("event", cond("equals", ir.IRString("view"))),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"events", "users"}, rq.References.Models)
	assert.Equal(t, []string{"events.event", "events.ts", "users.country"}, rq.References.Dimensions)
	assert.Equal(t, []string{"events.count"}, rq.References.Measures)
}

func TestSegmentation_Options(t *testing.T) {
	b := newBridge(t, trino.Definition())
	ctx := fixtureContext()
	ctx.Options = map[string]string{"source": "dashboard"}

	t.Run("adhoc keeps request options", func(t *testing.T) {
		rq, err := b.Generate(ctx, queryir.Segmentation{Model: "fixture", Measures: []string{"count"}})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"source": "dashboard"}, rq.Options)
	})

	t.Run("merge context is recorded", func(t *testing.T) {
		rq, err := b.Generate(ctx, queryir.Segmentation{
			Model:    "fixture",
			Measures: []string{"approx_strings"},
			Context:  ir.ContextMerge,
		})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"source":              "dashboard",
			"aggregation_context": "intermediate_merge",
		}, rq.Options)
		assert.Contains(t, rq.SQL, `cardinality(merge("fixture"."test_string"))`)
	})
}

func TestSegmentation_FilterPlacement(t *testing.T) {
	b := newBridge(t, duckdb.Definition())

	t.Run("or of dimension groups stays in where", func(t *testing.T) {
		rq, err := b.Generate(fixtureContext(), queryir.Segmentation{
			Model:    "fixture",
			Measures: []string{"count"},
			Filter: queryir.Or{Predicates: []queryir.Predicate{
				group("test_string", cond("equals", ir.IRString("alpha"))),
				group("test_int", cond("equals", ir.IRInt(9))),
			}},
		})
		require.NoError(t, err)
		assert.Contains(t, rq.SQL,
			"WHERE ((\"fixture\".\"test_string\" = 'alpha') OR (\"fixture\".\"test_int\" = 9))")
		assert.NotContains(t, rq.SQL, "HAVING")
	})

	t.Run("match any joins conditions with or", func(t *testing.T) {
		g := group("test_int", cond("less_than", ir.IRInt(2)), cond("greater_than", ir.IRInt(7)))
		g.Match = ir.MatchAny
		rq, err := b.Generate(fixtureContext(), queryir.Segmentation{
			Model:    "fixture",
			Measures: []string{"count"},
			Filter:   g,
		})
		require.NoError(t, err)
		assert.Contains(t, rq.SQL, "WHERE (\"fixture\".\"test_int\" < 2 OR \"fixture\".\"test_int\" > 7)")
	})

	t.Run("measure group goes to having", func(t *testing.T) {
		rq, err := b.Generate(fixtureContext(), queryir.Segmentation{
			Model:      "fixture",
			Dimensions: []string{"test_bool"},
			Measures:   []string{"total_int"},
			Filter:     group("total_int", cond("greater_than_or_equals", ir.IRInt(10))),
		})
		require.NoError(t, err)
		assert.Contains(t, rq.SQL, "HAVING (SUM(\"fixture\".\"test_int\") >= 10)")
		assert.NotContains(t, rq.SQL, "WHERE")
	})

	t.Run("mixing dimensions and measures in or fails", func(t *testing.T) {
		_, err := b.Generate(fixtureContext(), queryir.Segmentation{
			Model:    "fixture",
			Measures: []string{"count"},
			Filter: queryir.Or{Predicates: []queryir.Predicate{
				group("test_int", cond("equals", ir.IRInt(1))),
				group("count", cond("greater_than", ir.IRInt(1))),
			}},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot combine dimension and measure filters")
	})
}

func TestSegmentation_Errors(t *testing.T) {
	tests := []struct {
		name    string
		def     dialect.Definition
		query   queryir.Segmentation
		wantErr string
		kind    dialect.ErrorKind
	}{
		{
			name:    "unknown model",
			def:     trino.Definition(),
			query:   queryir.Segmentation{Model: "nope", Measures: []string{"count"}},
			wantErr: `unknown model "nope"`,
		},
		{
			name:    "unknown dimension",
			def:     trino.Definition(),
			query:   queryir.Segmentation{Model: "fixture", Dimensions: []string{"missing"}},
			wantErr: `has no dimension "missing"`,
		},
		{
			name:    "undeclared post operation",
			def:     trino.Definition(),
			query:   queryir.Segmentation{Model: "fixture", Dimensions: []string{"test_date::year"}},
			wantErr: `has no post operation "year"`,
		},
		{
			name:    "post operation on a measure",
			def:     trino.Definition(),
			query:   queryir.Segmentation{Model: "fixture", Measures: []string{"count::day"}},
			wantErr: "cannot take a post operation",
		},
		{
			name:    "unknown relation",
			def:     trino.Definition(),
			query:   queryir.Segmentation{Model: "fixture", Dimensions: []string{"owner.name"}},
			wantErr: `has no relation "owner"`,
		},
		{
			name: "date operator on a string",
			def:  trino.Definition(),
			query: queryir.Segmentation{
				Model:    "fixture",
				Measures: []string{"count"},
				Filter:   group("test_string", cond("date.greater_than", ir.IRString("2000-01-01"))),
			},
			kind: dialect.ErrInvalidFilterCombination,
		},
		{
			name: "range operator on a string",
			def:  trino.Definition(),
			query: queryir.Segmentation{
				Model:    "fixture",
				Measures: []string{"count"},
				Filter:   group("test_string", cond("greater_than", ir.IRString("a"))),
			},
			kind: dialect.ErrInvalidFilterCombination,
		},
		{
			name: "approximate unique without sketches",
			def:  mssql.Definition(),
			query: queryir.Segmentation{
				Model:    "fixture",
				Measures: []string{"approx_strings"},
			},
			kind: dialect.ErrUnsupportedAggregationContext,
		},
		{
			name: "materialized view where only tables and views exist",
			def:  trino.Definition(),
			query: queryir.Segmentation{
				Model:       "fixture",
				Measures:    []string{"count"},
				Materialize: &queryir.Materialize{Kind: ir.ObjectMaterializedView, Name: "mv"},
			},
			kind: dialect.ErrUnsupportedType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBridge(t, tt.def)
			rq, err := b.Generate(fixtureContext(), tt.query)
			require.Error(t, err)
			assert.Nil(t, rq)
			if tt.wantErr != "" {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
			if tt.kind != "" {
				assert.Equal(t, tt.kind, dialect.KindOf(err))
			}
		})
	}
}

func TestSegmentation_MaterializeTable(t *testing.T) {
	query := queryir.Segmentation{
		Model:       "fixture",
		Dimensions:  []string{"test_bool"},
		Measures:    []string{"count"},
		Materialize: &queryir.Materialize{Kind: ir.ObjectTable, Name: "reports.by_bool"},
	}
	body := "SELECT %[1]sfixture%[2]s.%[1]stest_bool%[2]s AS %[1]stest_bool%[2]s, COUNT(*) AS %[1]scount%[2]s\n" +
		"FROM %[3]s AS %[1]sfixture%[2]s\n" +
		"GROUP BY %[1]sfixture%[2]s.%[1]stest_bool%[2]s"

	t.Run("ansi", func(t *testing.T) {
		rq, err := newBridge(t, duckdb.Definition()).Generate(fixtureContext(), query)
		require.NoError(t, err)
		assert.Equal(t, "CREATE TABLE \"reports\".\"by_bool\" AS\n"+
			fmt.Sprintf(body, `"`, `"`, `"main"."fixture"`), rq.SQL)
	})

	t.Run("select into", func(t *testing.T) {
		rq, err := newBridge(t, mssql.Definition()).Generate(fixtureContext(), query)
		require.NoError(t, err)
		assert.Equal(t, "SELECT * INTO [reports].[by_bool] FROM (\n"+
			fmt.Sprintf(body, "[", "]", "[dbo].[fixture]")+
			"\n) AS [src]", rq.SQL)
	})
}
