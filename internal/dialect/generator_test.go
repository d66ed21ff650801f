package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/semsql/internal/queryir"
)

func passthrough() Generator {
	return GeneratorFunc(func(b *Bridge, ctx GeneratorContext, q queryir.Query) (*RenderedQuery, error) {
		raw := q.(*queryir.RawSQL)
		return &RenderedQuery{SQL: raw.SQL}, nil
	})
}

func TestGenerate(t *testing.T) {
	def := testDefinition()
	def.Generators = map[queryir.Kind]Generator{queryir.KindSQL: passthrough()}
	b := MustNewBridge(def, WithIDGenerator(NewSequenceGenerator("q-1", "q-2")))

	rq, err := b.Generate(GeneratorContext{Options: map[string]string{"timezone": "UTC"}},
		&queryir.RawSQL{SQL: "SELECT 1"})
	require.NoError(t, err)
	assert.Equal(t, "q-1", rq.ID)
	assert.Equal(t, "ansi", rq.Dialect)
	assert.Equal(t, queryir.KindSQL, rq.Kind)
	assert.Equal(t, "SELECT 1", rq.SQL)
	assert.Equal(t, map[string]string{"timezone": "UTC"}, rq.Options)
	assert.Len(t, rq.CacheKey, 64)

	again, err := b.Generate(GeneratorContext{Options: map[string]string{"timezone": "UTC"}},
		&queryir.RawSQL{SQL: "SELECT 1"})
	require.NoError(t, err)
	assert.Equal(t, "q-2", again.ID)
	assert.Equal(t, rq.CacheKey, again.CacheKey, "cache key ignores the query ID")
}

func TestGenerateCacheKeyDependsOnOptions(t *testing.T) {
	def := testDefinition()
	def.Generators = map[queryir.Kind]Generator{queryir.KindSQL: passthrough()}
	b := MustNewBridge(def)

	a, err := b.Generate(GeneratorContext{}, &queryir.RawSQL{SQL: "SELECT 1"})
	require.NoError(t, err)
	c, err := b.Generate(GeneratorContext{Options: map[string]string{"timezone": "Europe/Paris"}}, &queryir.RawSQL{SQL: "SELECT 1"})
	require.NoError(t, err)
	assert.NotEqual(t, a.CacheKey, c.CacheKey)
	assert.NotEqual(t, a.ID, c.ID)
}

func TestGenerateUnsupportedKind(t *testing.T) {
	b := testBridge()
	_, err := b.Generate(GeneratorContext{}, &queryir.Funnel{})
	assert.True(t, IsUnsupportedGenerator(err), "got %v", err)
}

func TestGenerateRejectsInvalidQuery(t *testing.T) {
	def := testDefinition()
	def.Generators = map[queryir.Kind]Generator{queryir.KindSQL: passthrough()}
	b := MustNewBridge(def)

	_, err := b.Generate(GeneratorContext{}, &queryir.RawSQL{SQL: "  "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid sql query")
}

func TestReferenceSet(t *testing.T) {
	refs := NewReferenceSet()
	refs.AddMeasure("orders", "revenue")
	refs.AddDimension("users", "country")
	refs.AddDimension("users", "country")
	refs.AddModel("orders")

	assert.Equal(t, References{
		Models:     []string{"orders", "users"},
		Dimensions: []string{"users.country"},
		Measures:   []string{"orders.revenue"},
	}, refs.References())

	assert.Equal(t, References{}, NewReferenceSet().References())
}
