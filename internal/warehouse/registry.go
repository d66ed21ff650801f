// Package warehouse holds the registry of dialect bridges.
//
// A Registry is built once at startup from dialect definitions and is
// read-only afterwards: lookups take no lock and bridges are shared by every
// concurrent render.
package warehouse

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/roach88/semsql/internal/dialect"
	"github.com/roach88/semsql/internal/warehouse/duckdb"
	"github.com/roach88/semsql/internal/warehouse/mssql"
	"github.com/roach88/semsql/internal/warehouse/postgres"
	"github.com/roach88/semsql/internal/warehouse/sqlite"
	"github.com/roach88/semsql/internal/warehouse/trino"
)

// Registry maps dialect names to bridges.
type Registry struct {
	bridges map[string]*dialect.Bridge
	names   []string
}

// Definitions returns the built-in dialect definitions.
func Definitions() []dialect.Definition {
	return []dialect.Definition{
		trino.Definition(),
		postgres.Definition(),
		mssql.Definition(),
		sqlite.Definition(),
		duckdb.Definition(),
	}
}

// NewRegistry validates every definition and builds its bridge. Any
// registration failure (including a context-sensitive aggregation without
// all three renderings) fails the whole registry.
func NewRegistry(logger *slog.Logger, defs []dialect.Definition, opts ...dialect.Option) (*Registry, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r := &Registry{bridges: make(map[string]*dialect.Bridge, len(defs))}
	opts = append([]dialect.Option{dialect.WithLogger(logger)}, opts...)
	for _, def := range defs {
		name := strings.ToLower(def.Name)
		if _, dup := r.bridges[name]; dup {
			return nil, dialect.NewError(dialect.ErrInvalidDefinition, def.Name, nil, "dialect registered twice")
		}
		b, err := dialect.NewBridge(def, opts...)
		if err != nil {
			return nil, fmt.Errorf("register %s: %w", def.Name, err)
		}
		r.bridges[name] = b
		r.names = append(r.names, name)
		logger.Info("registered dialect", "dialect", def.Name, "types", len(b.SupportedTypes()))
	}
	sort.Strings(r.names)
	return r, nil
}

// Builtin builds a registry of the built-in dialects.
func Builtin(logger *slog.Logger, opts ...dialect.Option) (*Registry, error) {
	return NewRegistry(logger, Definitions(), opts...)
}

// Lookup returns the bridge for a dialect name (case-insensitive).
func (r *Registry) Lookup(name string) (*dialect.Bridge, error) {
	b, ok := r.bridges[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown dialect %q (available: %s)", name, strings.Join(r.names, ", "))
	}
	return b, nil
}

// Names returns the registered dialect names, sorted.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Bridges returns the registered bridges in name order.
func (r *Registry) Bridges() []*dialect.Bridge {
	out := make([]*dialect.Bridge, len(r.names))
	for i, name := range r.names {
		out[i] = r.bridges[name]
	}
	return out
}
