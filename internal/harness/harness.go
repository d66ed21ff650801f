package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/semsql/internal/datasource"
	"github.com/roach88/semsql/internal/dialect"
	"github.com/roach88/semsql/internal/testutil"
	"github.com/roach88/semsql/internal/warehouse"
	"github.com/roach88/semsql/internal/warehouse/duckdb"
	"github.com/roach88/semsql/internal/warehouse/sqlite"
)

// QueryID is stamped on every query the harness renders.
const QueryID = "test-query-default"

// Harness executes scenarios. It is safe for concurrent use: each run opens
// its own database.
type Harness struct {
	registry *warehouse.Registry
	logger   *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) { h.logger = logger }
}

// New builds a harness over the builtin dialects.
func New(opts ...Option) (*Harness, error) {
	h := &Harness{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(h)
	}
	reg, err := warehouse.Builtin(h.logger, dialect.WithIDGenerator(testutil.NewFixedIDGenerator(QueryID)))
	if err != nil {
		return nil, err
	}
	h.registry = reg
	return h, nil
}

// Run executes a scenario with a default harness.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	h, err := New()
	if err != nil {
		return nil, err
	}
	return h.Run(ctx, scenario)
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. open a fresh in-memory database for the scenario's dialect
//  2. seed the fixture tables
//  3. render the query; a rendering error ends the run and is checked
//     against the scenario's expect clause
//  4. execute the SQL and evaluate the assertions
//
// An error is returned only when the scenario cannot be run at all.
// Failed expectations are reported in Result.Errors.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	b, err := h.registry.Lookup(scenario.Dialect)
	if err != nil {
		return nil, err
	}
	src, err := h.open(b)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	if err := testutil.Seed(ctx, src.DB(), b); err != nil {
		return nil, fmt.Errorf("failed to seed fixture: %w", err)
	}

	query, err := scenario.Query.Query()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := NewResult(scenario.Name, b.Name())
	rq, err := b.Generate(dialect.GeneratorContext{
		Models:  testutil.FixtureModels(),
		Options: scenario.Query.Options,
	}, query)
	if err != nil {
		result.ErrorKind = string(dialect.KindOf(err))
		checkExpectedError(result, scenario.Expect, err)
		return result, nil
	}
	result.SQL = rq.SQL
	if scenario.Expect != nil {
		result.AddError(fmt.Sprintf("expected %s error, query rendered:\n%s", scenario.Expect.Error, rq.SQL))
		return result, nil
	}

	rows, err := src.Execute(ctx, rq)
	if err != nil {
		result.AddError(fmt.Sprintf("execute: %v\n%s", err, rq.SQL))
		return result, nil
	}
	result.Columns = rows.Columns
	result.Rows = rows.Rows

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	h.logger.Debug("scenario finished", "scenario", scenario.Name, "dialect", b.Name(), "pass", result.Pass)
	return result, nil
}

func (h *Harness) open(b *dialect.Bridge) (*datasource.Source, error) {
	switch b.Name() {
	case sqlite.Name:
		return datasource.OpenSQLite(":memory:", b, h.logger)
	case duckdb.Name:
		return datasource.OpenDuckDB("", b, h.logger)
	default:
		return nil, fmt.Errorf("dialect %s has no embedded engine; use sqlite or duckdb", b.Name())
	}
}

func checkExpectedError(result *Result, expect *ExpectClause, err error) {
	switch {
	case expect == nil:
		result.AddError(fmt.Sprintf("render: %v", err))
	case result.ErrorKind != expect.Error:
		result.AddError(fmt.Sprintf("expected %s error, got %q: %v", expect.Error, result.ErrorKind, err))
	}
}
