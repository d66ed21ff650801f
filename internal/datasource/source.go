package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/semsql/internal/dialect"
	"github.com/roach88/semsql/internal/ir"
)

// Source executes SQL for one dialect.
type Source struct {
	db     *sql.DB
	bridge *dialect.Bridge
	logger *slog.Logger
}

// New wraps an open database. The caller keeps ownership of db only if it
// never calls Close.
func New(db *sql.DB, b *dialect.Bridge, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{db: db, bridge: b, logger: logger}
}

// OpenSQLite opens or creates a SQLite database at path. Use ":memory:" for
// a private in-memory database.
//
// The pool is capped at one connection: SQLite allows a single writer, and
// an in-memory database lives only as long as its connection.
func OpenSQLite(path string, b *dialect.Bridge, logger *slog.Logger) (*Source, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to sqlite database: %w", err)
	}
	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	return New(db, b, logger), nil
}

// applyPragmas sets the SQLite connection options. journal_mode silently
// stays "memory" for in-memory databases.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// OpenDuckDB opens a DuckDB database at path. An empty path opens an
// in-memory database.
func OpenDuckDB(path string, b *dialect.Bridge, logger *slog.Logger) (*Source, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to duckdb database: %w", err)
	}
	return New(db, b, logger), nil
}

// Close closes the database connection.
func (s *Source) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying database handle.
func (s *Source) DB() *sql.DB { return s.db }

// Bridge returns the dialect bridge the source renders with.
func (s *Source) Bridge() *dialect.Bridge { return s.bridge }

// Column is one table column with its native and semantic type.
type Column struct {
	Name   string       `json:"name"`
	Native string       `json:"native_type"`
	Type   ir.FieldType `json:"type"`
}

// ListSchema returns the columns of a table. The table name is completed
// with the dialect's default schema.
//
// Native types the bridge cannot map fail the whole call with the bridge's
// UnsupportedType or Unimplemented error, so misconfigured sources surface
// before any query runs.
func (s *Source) ListSchema(ctx context.Context, table string) ([]Column, error) {
	ref, err := s.bridge.SQLReferenceForTarget(s.bridge.FillDefaultsToTarget(ir.Target{Table: table}))
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+ref+" WHERE 1 = 0")
	if err != nil {
		return nil, fmt.Errorf("list schema of %s: %w", table, err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("list schema of %s: %w", table, err)
	}
	columns := make([]Column, 0, len(types))
	for _, ct := range types {
		native := ct.DatabaseTypeName()
		ft, err := s.bridge.ToFieldType(native)
		if err != nil {
			return nil, fmt.Errorf("column %s.%s: %w", table, ct.Name(), err)
		}
		columns = append(columns, Column{Name: ct.Name(), Native: native, Type: ft})
	}
	return columns, rows.Err()
}
