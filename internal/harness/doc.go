// Package harness runs filter and query scenarios against the fixture data
// set and checks the rows the rendered SQL returns.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: string_contains
//	description: "contains matches a substring and nothing else"
//	dialect: sqlite
//	query:
//	  type: segmentation
//	  model: fixture
//	  dimensions: [test_string]
//	  filters:
//	    - field: test_string
//	      conditions: [{operator: contains, value: liet}]
//	assertions:
//	  - type: column_values
//	    column: test_string
//	    values: [juliett]
//
// The query block is a query document as accepted by the CLI. A scenario
// that expects rendering to fail names the error kind instead of assertions:
//
//	expect:
//	  error: INVALID_FILTER_COMBINATION
//
// # Assertion Types
//
//   - column_values: the values of one column, compared as a set unless
//     ordered is true
//   - row_count: the number of result rows
//   - sql_contains: a substring of the rendered SQL
//
// # Execution
//
// Each scenario runs in a fresh in-memory database of its dialect (SQLite
// or DuckDB) seeded with testutil.Seed. Query IDs are fixed so the
// rendered SQL can be compared against golden files.
package harness
