package dialect

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sort"
	"strings"
	"text/template"

	"github.com/roach88/semsql/internal/ir"
	"github.com/roach88/semsql/internal/queryir"
)

// LimitStyle is how a dialect caps the number of returned rows.
type LimitStyle int

const (
	// LimitClause appends "LIMIT n".
	LimitClause LimitStyle = iota
	// LimitTop inserts "TOP n" after SELECT.
	LimitTop
)

// Definition is the pure-data description of a warehouse dialect. Everything
// not set falls back to ANSI behavior.
type Definition struct {
	Name        string
	Description string

	// IdentifierQuote holds the opening and closing identifier quote,
	// e.g. {`"`, `"`} or {"[", "]"}. Empty means ANSI double quotes.
	IdentifierQuote [2]string

	Literals Literals

	// TypeMap lists the supported FieldType ⇄ native type pairs. Natives and
	// aliases must be unique after normalization.
	TypeMap []TypeMapping

	// UnimplementedTypes are acknowledged gaps: ToNativeType fails with
	// ErrUnimplemented instead of ErrUnsupportedType.
	UnimplementedTypes []ir.FieldType

	// UnimplementedNatives are native type prefixes (e.g. "ARRAY") that
	// ToFieldType reports as ErrUnimplemented.
	UnimplementedNatives []string

	// Aggregations override the ANSI aggregation templates. Templates use
	// {{.Column}} for the column expression.
	Aggregations map[ir.AggregationType]AggregationTemplate

	// UnsupportedAggregations are declared as not renderable. A
	// context-sensitive aggregation must either be fully overridden or listed here.
	UnsupportedAggregations []ir.AggregationType

	// Filters override the ANSI filter rendering per operator. See FilterData
	// for the template fields.
	Filters map[ir.Operator]string

	// Functions override the ANSI function table. Templates receive the
	// positional arguments as a []string: {{index . 0}}.
	Functions map[Function]string

	// ObjectKinds are the warehouse objects that can be queried or materialized.
	ObjectKinds []ir.ObjectKind

	DefaultDatabase string
	DefaultSchema   string

	Limit LimitStyle

	// Generators produce complete queries from the query IR.
	Generators map[queryir.Kind]Generator
}

// Bridge is a validated, immutable dialect. It is safe for concurrent use
// without synchronization: nothing is mutated after NewBridge returns.
type Bridge struct {
	def    Definition
	logger *slog.Logger
	ids    IDGenerator

	types *typeMapper

	aggOverrides map[ir.AggregationType]compiledAggregation
	unsupported  map[ir.AggregationType]bool

	filterOverrides map[ir.Operator]*template.Template
	functions       map[Function]*template.Template

	objectKinds map[ir.ObjectKind]bool
}

// Option configures a Bridge at construction time.
type Option func(*Bridge)

// WithLogger sets the logger used for registration diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithIDGenerator sets the generator used to stamp rendered queries.
func WithIDGenerator(ids IDGenerator) Option {
	return func(b *Bridge) {
		if ids != nil {
			b.ids = ids
		}
	}
}

// NewBridge validates def and compiles its templates.
//
// Registration fails with:
//   - ErrUnsupportedAggregationContext when a context-sensitive aggregation
//     lacks an accumulate or merge template and is not declared unsupported
//   - ErrInvalidDefinition for template syntax errors, non-injective type
//     maps, filter overrides on operators outside their family, or unknown
//     functions
func NewBridge(def Definition, opts ...Option) (*Bridge, error) {
	if def.Name == "" {
		return nil, NewError(ErrInvalidDefinition, "", nil, "dialect name is required")
	}

	def = def.clone()
	b := &Bridge{
		def:    def,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		ids:    UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.def.IdentifierQuote == [2]string{} {
		b.def.IdentifierQuote = [2]string{`"`, `"`}
	}
	b.def.Literals = def.Literals.withDefaults()

	var err error
	if b.types, err = newTypeMapper(def); err != nil {
		return nil, err
	}
	if err := b.compileAggregations(); err != nil {
		return nil, err
	}
	if err := b.compileFilters(); err != nil {
		return nil, err
	}
	if err := b.compileFunctions(); err != nil {
		return nil, err
	}

	b.objectKinds = make(map[ir.ObjectKind]bool, len(def.ObjectKinds))
	for _, k := range def.ObjectKinds {
		if !ir.ValidObjectKinds[k] {
			return nil, NewError(ErrInvalidDefinition, def.Name, nil, "unknown object kind %q", k)
		}
		b.objectKinds[k] = true
	}

	for _, a := range def.UnsupportedAggregations {
		b.logger.Debug("aggregation declared unsupported", "dialect", def.Name, "aggregation", a.String())
	}
	return b, nil
}

// clone copies the maps and slices of d so that a bridge never shares
// mutable state with the caller.
func (d Definition) clone() Definition {
	d.TypeMap = slices.Clone(d.TypeMap)
	for i := range d.TypeMap {
		d.TypeMap[i].Aliases = slices.Clone(d.TypeMap[i].Aliases)
	}
	d.UnimplementedTypes = slices.Clone(d.UnimplementedTypes)
	d.UnimplementedNatives = slices.Clone(d.UnimplementedNatives)
	d.Aggregations = maps.Clone(d.Aggregations)
	d.UnsupportedAggregations = slices.Clone(d.UnsupportedAggregations)
	d.Filters = maps.Clone(d.Filters)
	d.Functions = maps.Clone(d.Functions)
	d.ObjectKinds = slices.Clone(d.ObjectKinds)
	d.Generators = maps.Clone(d.Generators)
	return d
}

// MustNewBridge is like NewBridge but panics on error. Use only for
// definitions known to be valid, such as the built-in dialects in tests.
func MustNewBridge(def Definition, opts ...Option) *Bridge {
	b, err := NewBridge(def, opts...)
	if err != nil {
		panic(err)
	}
	return b
}

// Name returns the dialect name, e.g. "trino".
func (b *Bridge) Name() string { return b.def.Name }

// Description returns the human-readable dialect description.
func (b *Bridge) Description() string { return b.def.Description }

// LimitStyle returns how the dialect caps result rows.
func (b *Bridge) LimitStyle() LimitStyle { return b.def.Limit }

// Logger returns the bridge logger.
func (b *Bridge) Logger() *slog.Logger { return b.logger }

// Literals returns the dialect literal syntax.
func (b *Bridge) Literals() Literals { return b.def.Literals }

// SupportsObjectKind reports whether the dialect can read or create objects of kind k.
func (b *Bridge) SupportsObjectKind(k ir.ObjectKind) bool {
	return b.objectKinds[k]
}

// ObjectKinds returns the supported object kinds, sorted.
func (b *Bridge) ObjectKinds() []ir.ObjectKind {
	out := make([]ir.ObjectKind, 0, len(b.objectKinds))
	for k := range b.objectKinds {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// SupportsAggregation reports whether the aggregation renders in every context.
func (b *Bridge) SupportsAggregation(a ir.AggregationType) bool {
	return a.Valid() && !b.unsupported[a]
}

// GeneratorKinds returns the query kinds the dialect can generate, sorted.
func (b *Bridge) GeneratorKinds() []queryir.Kind {
	out := make([]queryir.Kind, 0, len(b.def.Generators))
	for k := range b.def.Generators {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// QuoteIdentifier quotes an identifier, doubling any embedded closing quote.
func (b *Bridge) QuoteIdentifier(name string) string {
	opening, closing := b.def.IdentifierQuote[0], b.def.IdentifierQuote[1]
	return opening + strings.ReplaceAll(name, closing, closing+closing) + closing
}

// Capabilities summarizes a bridge for listings (CLI, HTTP).
type Capabilities struct {
	Name                    string   `json:"name"`
	Description             string   `json:"description,omitempty"`
	ObjectKinds             []string `json:"object_kinds"`
	Generators              []string `json:"generators"`
	SupportedTypes          []string `json:"supported_types"`
	UnsupportedAggregations []string `json:"unsupported_aggregations,omitempty"`
}

// Capabilities describes what the bridge supports.
func (b *Bridge) Capabilities() Capabilities {
	c := Capabilities{
		Name:        b.def.Name,
		Description: b.def.Description,
	}
	for _, k := range b.ObjectKinds() {
		c.ObjectKinds = append(c.ObjectKinds, string(k))
	}
	for _, k := range b.GeneratorKinds() {
		c.Generators = append(c.Generators, string(k))
	}
	for _, ft := range b.SupportedTypes() {
		c.SupportedTypes = append(c.SupportedTypes, ft.String())
	}
	for _, a := range ir.AllAggregationTypes() {
		if b.unsupported[a] {
			c.UnsupportedAggregations = append(c.UnsupportedAggregations, a.String())
		}
	}
	return c
}

func (b *Bridge) String() string {
	return fmt.Sprintf("dialect(%s)", b.def.Name)
}
