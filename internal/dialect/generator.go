package dialect

import (
	"fmt"
	"sort"

	"github.com/roach88/semsql/internal/ir"
	"github.com/roach88/semsql/internal/queryir"
)

// Generator turns one kind of query into SQL using a bridge for every
// dialect-specific fragment.
type Generator interface {
	Generate(b *Bridge, ctx GeneratorContext, q queryir.Query) (*RenderedQuery, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(b *Bridge, ctx GeneratorContext, q queryir.Query) (*RenderedQuery, error)

// Generate calls f.
func (f GeneratorFunc) Generate(b *Bridge, ctx GeneratorContext, q queryir.Query) (*RenderedQuery, error) {
	return f(b, ctx, q)
}

// GeneratorContext carries per-request inputs. It is read-only for generators.
type GeneratorContext struct {
	Models  ir.Models
	Options map[string]string
}

// RenderedQuery is the result of one render: SQL text plus the options and
// semantic references collected along the way. Fresh per request.
type RenderedQuery struct {
	ID         string            `json:"id"`
	Dialect    string            `json:"dialect"`
	Kind       queryir.Kind      `json:"kind"`
	SQL        string            `json:"sql"`
	Options    map[string]string `json:"options,omitempty"`
	References References        `json:"references"`
	CacheKey   string            `json:"cache_key"`
}

// References lists the semantic entities a query touched, for caching and lineage.
// Entries are "model.name" and sorted.
type References struct {
	Models     []string `json:"models"`
	Dimensions []string `json:"dimensions,omitempty"`
	Measures   []string `json:"measures,omitempty"`
}

// ReferenceSet accumulates references without duplicates.
type ReferenceSet struct {
	models, dims, measures map[string]bool
}

// NewReferenceSet returns an empty set.
func NewReferenceSet() *ReferenceSet {
	return &ReferenceSet{models: map[string]bool{}, dims: map[string]bool{}, measures: map[string]bool{}}
}

// AddModel records a model.
func (r *ReferenceSet) AddModel(model string) { r.models[model] = true }

// AddDimension records a dimension of a model.
func (r *ReferenceSet) AddDimension(model, name string) {
	r.models[model] = true
	r.dims[model+"."+name] = true
}

// AddMeasure records a measure of a model.
func (r *ReferenceSet) AddMeasure(model, name string) {
	r.models[model] = true
	r.measures[model+"."+name] = true
}

// References returns the sorted reference lists.
func (r *ReferenceSet) References() References {
	return References{
		Models:     sortedKeys(r.models),
		Dimensions: sortedKeys(r.dims),
		Measures:   sortedKeys(r.measures),
	}
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Generate renders a query with the generator registered for its kind and
// stamps the result with an ID and cache key.
func (b *Bridge) Generate(ctx GeneratorContext, q queryir.Query) (*RenderedQuery, error) {
	kind := queryir.KindOf(q)
	gen, ok := b.def.Generators[kind]
	if !ok {
		return nil, NewError(ErrUnsupportedGenerator, b.def.Name, map[string]string{"kind": string(kind)},
			"no generator for %q queries", kind)
	}
	if result := queryir.Validate(q); !result.Valid {
		return nil, fmt.Errorf("invalid %s query: %v", kind, result.Problems)
	}

	rq, err := gen.Generate(b, ctx, q)
	if err != nil {
		return nil, err
	}
	rq.Dialect = b.def.Name
	rq.Kind = kind
	rq.ID = b.ids.Generate()
	if rq.Options == nil && len(ctx.Options) > 0 {
		rq.Options = make(map[string]string, len(ctx.Options))
		for k, v := range ctx.Options {
			rq.Options[k] = v
		}
	}

	opts := make(ir.IRObject, len(rq.Options))
	for k, v := range rq.Options {
		opts[k] = ir.IRString(v)
	}
	if rq.CacheKey, err = ir.CacheKey(b.def.Name, rq.SQL, opts); err != nil {
		return nil, err
	}
	b.logger.Debug("rendered query", "dialect", b.def.Name, "kind", string(kind), "id", rq.ID)
	return rq, nil
}
