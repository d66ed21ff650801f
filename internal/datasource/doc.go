// Package datasource connects rendered SQL to a live database.
//
// A Source pairs a *sql.DB with the bridge of its dialect. It lists table
// schemas by translating native column types through the bridge's type map
// and executes RenderedQuery values. The bridge itself never opens
// connections; Source is the layer that does.
//
// Two embedded engines are supported: SQLite (mattn/go-sqlite3) and DuckDB
// (duckdb-go). Both accept ":memory:"-style in-process databases, which is
// how the fixture tests run rendered SQL end to end.
package datasource
