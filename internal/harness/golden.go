package harness

import (
	"context"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot is the golden form of a result: the dialect, the rendered SQL
// and the error kind of a failed render.
func Snapshot(result *Result) []byte {
	if result.ErrorKind != "" {
		return []byte(fmt.Sprintf("-- %s\n-- error: %s\n", result.Dialect, result.ErrorKind))
	}
	return []byte(fmt.Sprintf("-- %s\n%s\n", result.Dialect, result.SQL))
}

// RunWithGolden executes a scenario, fails the test on unmet expectations
// and compares the rendered SQL with testdata/golden/<name>.golden.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares a result's snapshot against a golden file.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Snapshot(result))
}
