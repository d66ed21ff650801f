package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/semsql/internal/harness"
)

var testScenariosDir = filepath.Join("..", "harness", "testdata", "scenarios")

func runTestCmd(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// copyScenario copies one scenario file into dir.
func copyScenario(t *testing.T, dir, name string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(testScenariosDir, name+".yaml"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), data, 0644))
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := runTestCmd(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, err := runTestCmd(t, "text", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	out, err := runTestCmd(t, "text", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	out, err := runTestCmd(t, "json", t.TempDir())
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Empty(t, resp.Data.Scenarios)
}

func TestTestCommandRunsScenarios(t *testing.T) {
	out, err := runTestCmd(t, "text", testScenariosDir, "--filter", "string_*")
	require.NoError(t, err)

	assert.Contains(t, out, "✓ string_contains [sqlite]")
	assert.Contains(t, out, "✓ string_ends_with [sqlite]")
	assert.Contains(t, out, "✓ string_starts_with [sqlite]")
	assert.Contains(t, out, "Test Summary: 3 passed, 0 failed, 3 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommandJSON(t *testing.T) {
	out, err := runTestCmd(t, "json", testScenariosDir, "--filter", "duckdb_*")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 3, resp.Data.Total)
	assert.Equal(t, 3, resp.Data.Passed)
	for _, s := range resp.Data.Scenarios {
		assert.Equal(t, "duckdb", s.Dialect, s.Name)
	}
}

func TestTestCommandExpectedError(t *testing.T) {
	out, err := runTestCmd(t, "text", testScenariosDir, "--filter", "date_operator_on_string")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ date_operator_on_string [sqlite]")
}

func TestTestCommandUpdateGolden(t *testing.T) {
	dir := t.TempDir()
	copyScenario(t, dir, "string_contains")

	out, err := runTestCmd(t, "text", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "(golden updated)")

	golden, err := os.ReadFile(goldenFilePath(dir, "string_contains"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(golden, []byte("-- sqlite\nSELECT ")), string(golden))

	_, err = runTestCmd(t, "text", dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(goldenFilePath(dir, "string_contains"), []byte("-- sqlite\nSELECT 1\n"), 0644))
	out, err = runTestCmd(t, "text", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "does not match golden file")
	assert.Contains(t, out, "Test Summary: 0 passed, 1 failed, 1 total")
}

func TestTestCommandFailureJSON(t *testing.T) {
	dir := t.TempDir()
	copyScenario(t, dir, "in_list")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "golden"), 0755))
	require.NoError(t, os.WriteFile(goldenFilePath(dir, "in_list"), []byte("stale\n"), 0644))

	out, err := runTestCmd(t, "json", dir)
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
}

func TestFilterScenarios(t *testing.T) {
	scenarios := []*harness.Scenario{{Name: "string_contains"}, {Name: "in_list"}, {Name: "string_ends_with"}}

	all, err := filterScenarios(scenarios, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	some, err := filterScenarios(scenarios, "string_*")
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, "string_contains", some[0].Name)

	_, err = filterScenarios(scenarios, "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter pattern")
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("scenarios", "golden", "in_list.golden"), goldenFilePath("scenarios", "in_list"))
}
