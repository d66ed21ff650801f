package querysql_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/semsql/internal/ir"
	"github.com/roach88/semsql/internal/queryir"
	"github.com/roach88/semsql/internal/warehouse/sqlite"
	"github.com/roach88/semsql/internal/warehouse/trino"
)

func checkoutFunnel() queryir.Funnel {
	step := func(event string) queryir.FunnelStep {
		return queryir.FunnelStep{Model: "events", Filter: group("event", cond("equals", ir.IRString(event)))}
	}
	return queryir.Funnel{
		Steps:  []queryir.FunnelStep{step("view"), step("cart"), step("purchase")},
		Window: queryir.Window{Value: 1, Unit: "day"},
	}
}

func TestFunnel_Golden(t *testing.T) {
	b := newBridge(t, trino.Definition())

	rq, err := b.Generate(fixtureContext(), checkoutFunnel())
	require.NoError(t, err)

	assertGoldenSQL(t, "funnel_trino", rq.SQL)
	assert.Equal(t, queryir.KindFunnel, rq.Kind)
	assert.Equal(t, map[string]string{"funnel_window": "1 day"}, rq.Options)
	assert.Equal(t, []string{"events"}, rq.References.Models)
	assert.Equal(t, []string{"events.event", "events.ts", "events.user_id"}, rq.References.Dimensions)
}

func TestFunnel_Dimension(t *testing.T) {
	b := newBridge(t, sqlite.Definition())
	f := checkoutFunnel()
	f.Dimension = "user.country"
	f.Limit = 10

	rq, err := b.Generate(fixtureContext(), f)
	require.NoError(t, err)

	for _, want := range []string{
		`"user"."country" AS "dimension"`,
		`LEFT JOIN "users" AS "user" ON "events"."user_id" = "user"."id"`,
		`GROUP BY "events"."user_id", "user"."country"`,
		`"step_1"."dimension" AS "dimension"`,
		`GROUP BY "events"."user_id", "step_1"."anchor_time", "step_1"."dimension"`,
		`"events"."ts" <= datetime("step_1"."anchor_time", '1 day')`,
		"SELECT \"step_1\".\"dimension\" AS \"dimension\", COUNT(DISTINCT \"step_1\".\"user_id\") AS \"step_1\"",
		"GROUP BY \"step_1\".\"dimension\"\nORDER BY \"dimension\"\nLIMIT 10",
	} {
		assert.Contains(t, rq.SQL, want)
	}
	assert.Contains(t, rq.References.Models, "users")
}

func TestFunnel_WeekWindow(t *testing.T) {
	b := newBridge(t, trino.Definition())
	f := checkoutFunnel()
	f.Window = queryir.Window{Value: 2, Unit: "week"}

	rq, err := b.Generate(fixtureContext(), f)
	require.NoError(t, err)

	assert.Contains(t, rq.SQL, `"step_1"."anchor_time" + interval '14' day`)
	assert.Equal(t, "2 week", rq.Options["funnel_window"])
}

func TestFunnel_Errors(t *testing.T) {
	b := newBridge(t, trino.Definition())

	tests := []struct {
		name    string
		mutate  func(*queryir.Funnel)
		wantErr string
	}{
		{
			name: "model without event mappings",
			mutate: func(f *queryir.Funnel) {
				f.Steps[1] = queryir.FunnelStep{Model: "fixture"}
			},
			wantErr: "must map user_id and event_timestamp",
		},
		{
			name: "measure filter in a step",
			mutate: func(f *queryir.Funnel) {
				f.Steps[0].Filter = group("count", cond("greater_than", ir.IRInt(1)))
			},
			wantErr: "cannot filter on measures",
		},
		{
			name: "unknown window unit",
			mutate: func(f *queryir.Funnel) {
				f.Window.Unit = "fortnight"
			},
			wantErr: "funnel window",
		},
		{
			name: "unknown step model",
			mutate: func(f *queryir.Funnel) {
				f.Steps[2].Model = "orders"
			},
			wantErr: `step_3: unknown model "orders"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := checkoutFunnel()
			tt.mutate(&f)
			_, err := b.Generate(fixtureContext(), f)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
