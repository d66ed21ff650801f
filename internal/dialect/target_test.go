package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/semsql/internal/ir"
)

func TestFillDefaultsToTarget(t *testing.T) {
	def := testDefinition()
	def.DefaultDatabase = "warehouse"
	b := MustNewBridge(def)

	assert.Equal(t,
		ir.Target{Database: "warehouse", Schema: "public", Table: "events"},
		b.FillDefaultsToTarget(ir.Target{Table: "events"}))
	assert.Equal(t,
		ir.Target{Database: "warehouse", Schema: "raw", Table: "events"},
		b.FillDefaultsToTarget(ir.Target{Schema: "raw", Table: "events"}))
	assert.Equal(t,
		ir.Target{Database: "other", Schema: "raw", Table: "events"},
		b.FillDefaultsToTarget(ir.Target{Database: "other", Schema: "raw", Table: "events"}))

	sqlTarget := ir.Target{SQL: "SELECT 1"}
	assert.Equal(t, sqlTarget, b.FillDefaultsToTarget(sqlTarget))
}

func TestFillDefaultsWithoutSchema(t *testing.T) {
	def := testDefinition()
	def.DefaultSchema = ""
	def.DefaultDatabase = "main"
	b := MustNewBridge(def)

	assert.Equal(t, ir.Target{Table: "events"}, b.FillDefaultsToTarget(ir.Target{Table: "events"}),
		"a database is never added without a schema")
}

func TestSQLReferenceForTarget(t *testing.T) {
	b := testBridge()

	ref, err := b.SQLReferenceForTarget(ir.Target{Schema: "public", Table: "events"})
	require.NoError(t, err)
	assert.Equal(t, `"public"."events"`, ref)

	ref, err = b.SQLReferenceForTarget(ir.Target{Table: `odd"name`})
	require.NoError(t, err)
	assert.Equal(t, `"odd""name"`, ref)

	ref, err = b.SQLReferenceForTarget(ir.Target{SQL: "  SELECT * FROM raw  "})
	require.NoError(t, err)
	assert.Equal(t, "(SELECT * FROM raw)", ref)

	for _, bad := range []ir.Target{
		{},
		{Table: "t", SQL: "SELECT 1"},
		{Database: "db", Table: "t"},
	} {
		_, err := b.SQLReferenceForTarget(bad)
		assert.Error(t, err, "%+v", bad)
	}
}

func TestQualifiedNameBrackets(t *testing.T) {
	def := testDefinition()
	def.IdentifierQuote = [2]string{"[", "]"}
	b := MustNewBridge(def)

	assert.Equal(t, "[dbo].[daily]", b.QualifiedName("dbo.daily"))
	assert.Equal(t, "[a]]b]", b.QuoteIdentifier("a]b"))
}

func TestCreateObject(t *testing.T) {
	def := testDefinition()
	def.ObjectKinds = append(def.ObjectKinds, ir.ObjectIncremental)
	b := MustNewBridge(def)

	sql, err := b.CreateObject(ir.ObjectView, "reports.daily", "SELECT 1")
	require.NoError(t, err)
	assert.Equal(t, "CREATE VIEW \"reports\".\"daily\" AS\nSELECT 1", sql)

	_, err = b.CreateObject(ir.ObjectMaterializedView, "daily", "SELECT 1")
	assert.True(t, IsUnsupportedType(err))

	_, err = b.CreateObject(ir.ObjectIncremental, "daily", "SELECT 1")
	assert.True(t, IsUnimplemented(err))
}
