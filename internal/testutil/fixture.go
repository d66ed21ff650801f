package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/semsql/internal/dialect"
	"github.com/roach88/semsql/internal/ir"
)

// FixtureTable is the table holding the filter fixture.
const FixtureTable = "fixture"

// NullableTable holds rows with NULLs for checking how negated and
// presence operators treat missing values.
const NullableTable = "nullable"

// Fixture values. Row i has test_int i, the i-th NATO word, a boolean that
// is false only for row 0, test_double i*1.0, the date 2000-01-(i+1) and the
// timestamp i hours after the Unix epoch.
var (
	FixtureStrings = []string{
		"alpha", "bravo", "charlie", "delta", "echo",
		"foxtrot", "golf", "hotel", "india", "juliett",
	}
	fixtureEpoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	fixtureDay0  = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
)

// Column is a fixture column with its semantic type.
type Column struct {
	Name string
	Type ir.FieldType
}

// FixtureColumns lists the fixture table columns in order.
func FixtureColumns() []Column {
	return []Column{
		{"test_int", ir.TypeInteger},
		{"test_string", ir.TypeString},
		{"test_double", ir.TypeDouble},
		{"test_date", ir.TypeDate},
		{"test_bool", ir.TypeBoolean},
		{"test_timestamp", ir.TypeTimestamp},
	}
}

// FixtureRows returns the ten fixture rows. Dates and timestamps are ISO
// strings.
func FixtureRows() [][]any {
	rows := make([][]any, len(FixtureStrings))
	for i, s := range FixtureStrings {
		rows[i] = []any{
			int64(i),
			s,
			float64(i),
			fixtureDay0.AddDate(0, 0, i).Format("2006-01-02"),
			i != 0,
			fixtureEpoch.Add(time.Duration(i) * time.Hour).Format("2006-01-02 15:04:05"),
		}
	}
	return rows
}

// NullableColumns lists the nullable table columns in order. id is never NULL.
func NullableColumns() []Column {
	return []Column{
		{"id", ir.TypeLong},
		{"n_int", ir.TypeInteger},
		{"n_string", ir.TypeString},
	}
}

// NullableRows returns two complete rows and one whose values are all NULL.
func NullableRows() [][]any {
	return [][]any{
		{int64(1), int64(1), "alpha"},
		{int64(2), int64(2), "bravo"},
		{int64(3), nil, nil},
	}
}

// FixtureModels returns the semantic models used across tests: the filter
// fixture, the nullable table, and a small events/users pair for joins and
// funnels.
func FixtureModels() ir.Models {
	fixture := &ir.Model{
		Name:   FixtureTable,
		Target: ir.Target{Table: FixtureTable},
		Dimensions: []ir.Dimension{
			{Name: "test_int", Type: ir.TypeInteger},
			{Name: "test_string", Type: ir.TypeString},
			{Name: "test_double", Type: ir.TypeDouble},
			{Name: "test_date", Type: ir.TypeDate, PostOperations: []string{"day", "week", "month"}},
			{Name: "test_bool", Type: ir.TypeBoolean},
			{Name: "test_timestamp", Type: ir.TypeTimestamp, PostOperations: []string{"hour", "day"}},
		},
		Measures: []ir.Measure{
			{Name: "count", SQL: "*", Aggregation: ir.AggregationCount, Type: ir.TypeLong},
			{Name: "total_int", Column: "test_int", Aggregation: ir.AggregationSum, Type: ir.TypeInteger},
			{Name: "unique_strings", Column: "test_string", Aggregation: ir.AggregationCountUnique, Type: ir.TypeString},
			{Name: "approx_strings", Column: "test_string", Aggregation: ir.AggregationApproximateUnique, Type: ir.TypeString},
			{Name: "avg_double", Column: "test_double", Aggregation: ir.AggregationAverage, Type: ir.TypeDouble},
		},
	}
	events := &ir.Model{
		Name:   "events",
		Target: ir.Target{Table: "events"},
		Dimensions: []ir.Dimension{
			{Name: "event", Type: ir.TypeString},
			{Name: "user_id", Type: ir.TypeLong},
			{Name: "ts", Type: ir.TypeTimestamp, PostOperations: []string{"day"}},
		},
		Measures: []ir.Measure{
			{Name: "count", SQL: "*", Aggregation: ir.AggregationCount, Type: ir.TypeLong},
			{Name: "users", Column: "user_id", Aggregation: ir.AggregationCountUnique, Type: ir.TypeLong},
		},
		Relations: []ir.Relation{
			{Name: "user", Model: "users", Join: ir.JoinLeft, SourceColumn: "user_id", TargetColumn: "id"},
		},
		Mappings: ir.Mappings{EventTimestamp: "ts", UserID: "user_id"},
	}
	users := &ir.Model{
		Name:   "users",
		Target: ir.Target{Table: "users"},
		Dimensions: []ir.Dimension{
			{Name: "id", Type: ir.TypeLong},
			{Name: "country", Type: ir.TypeString},
		},
		Measures: []ir.Measure{
			{Name: "count", SQL: "*", Aggregation: ir.AggregationCount, Type: ir.TypeLong},
		},
	}
	nullable := &ir.Model{
		Name:   NullableTable,
		Target: ir.Target{Table: NullableTable},
		Dimensions: []ir.Dimension{
			{Name: "id", Type: ir.TypeLong},
			{Name: "n_int", Type: ir.TypeInteger},
			{Name: "n_string", Type: ir.TypeString},
		},
		Measures: []ir.Measure{
			{Name: "count", SQL: "*", Aggregation: ir.AggregationCount, Type: ir.TypeLong},
		},
	}
	return ir.Models{
		fixture.Name:  fixture,
		nullable.Name: nullable,
		events.Name:   events,
		users.Name:    users,
	}
}

// EventRows returns (user_id, event, ts) rows: users 1-3 view, users 1-2
// add to cart and only user 1 purchases within a day.
func EventRows() [][]any {
	return [][]any{
		{int64(1), "view", "2024-01-01 10:00:00"},
		{int64(1), "cart", "2024-01-01 10:05:00"},
		{int64(1), "purchase", "2024-01-01 10:10:00"},
		{int64(2), "view", "2024-01-01 11:00:00"},
		{int64(2), "cart", "2024-01-01 11:30:00"},
		{int64(2), "purchase", "2024-01-03 09:00:00"},
		{int64(3), "view", "2024-01-02 08:00:00"},
	}
}

// UserRows returns (id, country) rows.
func UserRows() [][]any {
	return [][]any{
		{int64(1), "DE"},
		{int64(2), "FR"},
		{int64(3), "DE"},
	}
}

// Seed creates and fills the fixture, nullable, events and users tables in db. Column
// types come from the bridge's type map.
func Seed(ctx context.Context, db *sql.DB, b *dialect.Bridge) error {
	tables := []struct {
		name    string
		columns []Column
		rows    [][]any
	}{
		{FixtureTable, FixtureColumns(), FixtureRows()},
		{NullableTable, NullableColumns(), NullableRows()},
		{"events", []Column{{"user_id", ir.TypeLong}, {"event", ir.TypeString}, {"ts", ir.TypeTimestamp}}, EventRows()},
		{"users", []Column{{"id", ir.TypeLong}, {"country", ir.TypeString}}, UserRows()},
	}
	for _, t := range tables {
		if err := createTable(ctx, db, b, t.name, t.columns, t.rows); err != nil {
			return fmt.Errorf("seed %s: %w", t.name, err)
		}
	}
	return nil
}

func createTable(ctx context.Context, db *sql.DB, b *dialect.Bridge, name string, columns []Column, rows [][]any) error {
	defs := make([]string, len(columns))
	names := make([]string, len(columns))
	for i, c := range columns {
		native, err := b.ToNativeType(c.Type)
		if err != nil {
			return err
		}
		names[i] = b.QuoteIdentifier(c.Name)
		defs[i] = names[i] + " " + native
	}
	table := b.QuoteIdentifier(name)
	if _, err := db.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(defs, ", "))); err != nil {
		return err
	}

	// Rows go in as dialect literals so stored dates match filter operands.
	tuples := make([]string, len(rows))
	for r, row := range rows {
		lits := make([]string, len(columns))
		for i, c := range columns {
			lit, err := b.Literal(c.Type, toIRValue(row[i]))
			if err != nil {
				return fmt.Errorf("row %d column %s: %w", r, c.Name, err)
			}
			lits[i] = lit
		}
		tuples[r] = "(" + strings.Join(lits, ", ") + ")"
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES\n%s", table, strings.Join(names, ", "), strings.Join(tuples, ",\n"))
	_, err := db.ExecContext(ctx, insert)
	return err
}

func toIRValue(v any) ir.IRValue {
	switch val := v.(type) {
	case nil:
		return ir.IRNull{}
	case int64:
		return ir.IRInt(val)
	case float64:
		return ir.IRNumber(strconv.FormatFloat(val, 'f', -1, 64))
	case bool:
		return ir.IRBool(val)
	case string:
		return ir.IRString(val)
	default:
		return ir.IRString(fmt.Sprint(val))
	}
}
