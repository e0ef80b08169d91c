package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/columnar-sql/relbin/internal/rel"
	"github.com/columnar-sql/relbin/internal/types"
)

const sampleFixtureYAML = `
schema: shop
table:
  name: orders
  rowcount: 100
  columns:
    - name: id
      kind: bigint
    - name: total
      kind: decimal
      digits: 10
      scale: 2
      nullable: true
query:
  select:
    - column: id
      op: "="
      value: 7
  project:
    - total
`

func writeFixtureFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadFixtureParsesYAML(t *testing.T) {
	path := writeFixtureFile(t, sampleFixtureYAML)

	f, err := loadFixture(path)
	require.NoError(t, err)
	require.Equal(t, "shop", f.Schema)
	require.Equal(t, "orders", f.Table.Name)
	require.Len(t, f.Table.Columns, 2)
	require.Len(t, f.Query.Select, 1)
	require.Equal(t, []string{"total"}, f.Query.Project)
}

func TestLoadFixtureMissingFileErrors(t *testing.T) {
	_, err := loadFixture(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestKindOfMapsEveryKnownName(t *testing.T) {
	cases := map[string]types.Kind{
		"boolean":   types.KindBoolean,
		"int":       types.KindInt,
		"bigint":    types.KindBigInt,
		"decimal":   types.KindDecimal,
		"double":    types.KindDouble,
		"char":      types.KindChar,
		"varchar":   types.KindVarchar,
		"date":      types.KindDate,
		"time":      types.KindTime,
		"timestamp": types.KindTimestamp,
		"interval":  types.KindInterval,
	}
	for name, want := range cases {
		require.Equal(t, want, kindOf(name), name)
	}
	require.Equal(t, types.KindUnknown, kindOf("nonsense"))
}

func TestBuildCatalogRegistersSchemaAndTable(t *testing.T) {
	path := writeFixtureFile(t, sampleFixtureYAML)
	f, err := loadFixture(path)
	require.NoError(t, err)

	cat, tbl := buildCatalog(f)
	sch, ok := cat.Schema("shop")
	require.True(t, ok)
	got, ok := sch.Table("orders")
	require.True(t, ok)
	require.Same(t, tbl, got)
	require.Len(t, tbl.Columns, 2)
	require.True(t, tbl.Columns[1].Nullable)
}

func TestBuildRelTreeChainsSelectAndProject(t *testing.T) {
	path := writeFixtureFile(t, sampleFixtureYAML)
	f, err := loadFixture(path)
	require.NoError(t, err)
	_, tbl := buildCatalog(f)

	node, err := buildRelTree(tbl, f.Query)
	require.NoError(t, err)
	require.Equal(t, rel.OpProject, node.Op)
	require.Equal(t, rel.OpSelect, node.L.Op)
	require.Equal(t, rel.OpBaseTable, node.L.L.Op)
	require.Len(t, node.Exps, 1)
}

func TestBuildRelTreeUnknownPredicateColumnErrors(t *testing.T) {
	f := &fixture{
		Schema: "shop",
		Table:  fixtureTable{Name: "orders", Columns: []fixtureColumn{{Name: "id", Kind: "bigint"}}},
		Query:  fixtureQuery{Select: []fixturePredicate{{Column: "missing", Op: "=", Value: 1}}},
	}
	_, tbl := buildCatalog(f)
	_, err := buildRelTree(tbl, f.Query)
	require.Error(t, err)
}

func TestBuildRelTreeUnknownProjectColumnErrors(t *testing.T) {
	f := &fixture{
		Schema: "shop",
		Table:  fixtureTable{Name: "orders", Columns: []fixtureColumn{{Name: "id", Kind: "bigint"}}},
		Query:  fixtureQuery{Project: []string{"missing"}},
	}
	_, tbl := buildCatalog(f)
	_, err := buildRelTree(tbl, f.Query)
	require.Error(t, err)
}

func TestBuildRelTreeNoQuerySectionsIsBareBasetable(t *testing.T) {
	f := &fixture{
		Schema: "shop",
		Table:  fixtureTable{Name: "orders", Columns: []fixtureColumn{{Name: "id", Kind: "bigint"}}},
	}
	_, tbl := buildCatalog(f)
	node, err := buildRelTree(tbl, f.Query)
	require.NoError(t, err)
	require.Equal(t, rel.OpBaseTable, node.Op)
}

func TestCmpFlagOfRecognizesAllOperators(t *testing.T) {
	ops := []string{"eq", "=", "ne", "!=", "lt", "<", "le", "<=", "gt", ">", "ge", ">="}
	for _, op := range ops {
		_, err := cmpFlagOf(op)
		require.NoError(t, err, op)
	}
}

func TestCmpFlagOfUnknownOperatorErrors(t *testing.T) {
	_, err := cmpFlagOf("~~")
	require.Error(t, err)
}
