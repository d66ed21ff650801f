package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/semsql/internal/queryir"
)

// DefaultDialect runs scenarios that do not name a dialect.
const DefaultDialect = "sqlite"

// Scenario is one query with its expected outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Dialect selects the bridge and embedded engine: sqlite or duckdb.
	Dialect string `yaml:"dialect,omitempty"`

	// Query is the query document to render and execute.
	Query queryir.Request `yaml:"query"`

	// Expect describes an expected rendering failure.
	Expect *ExpectClause `yaml:"expect,omitempty"`

	// Assertions validate the rendered SQL and the returned rows.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// ExpectClause specifies an expected rendering error.
type ExpectClause struct {
	// Error is the expected error kind, e.g. INVALID_FILTER_COMBINATION.
	Error string `yaml:"error"`
}

// Assertion validates the result of a scenario.
type Assertion struct {
	// Type is one of column_values, row_count, sql_contains.
	Type string `yaml:"type"`

	// Column names the result column (column_values).
	Column string `yaml:"column,omitempty"`

	// Values are the expected column values (column_values).
	Values []any `yaml:"values,omitempty"`

	// Ordered compares Values in row order instead of as a set (column_values).
	Ordered bool `yaml:"ordered,omitempty"`

	// Count is the expected number of rows (row_count).
	Count int `yaml:"count,omitempty"`

	// Text must appear in the rendered SQL (sql_contains).
	Text string `yaml:"text,omitempty"`
}

// Assertion type constants.
const (
	AssertColumnValues = "column_values"
	AssertRowCount     = "row_count"
	AssertSQLContains  = "sql_contains"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are errors, so typos in keys fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if scenario.Dialect == "" {
		scenario.Dialect = DefaultDialect
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if _, err := s.Query.Query(); err != nil {
		return fmt.Errorf("query: %w", err)
	}

	if s.Expect != nil {
		if s.Expect.Error == "" {
			return fmt.Errorf("expect: error is required")
		}
		if len(s.Assertions) > 0 {
			return fmt.Errorf("assertions cannot be combined with an expected error")
		}
		return nil
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertColumnValues:
		if a.Column == "" {
			return fmt.Errorf("assertions[%d]: column is required for column_values", index)
		}
	case AssertRowCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for row_count", index)
		}
	case AssertSQLContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for sql_contains", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
