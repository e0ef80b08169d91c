package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/columnar-sql/relbin/internal/planner"
	"github.com/columnar-sql/relbin/internal/relbin"
)

func TestDumpRendersIndentedTreeWithAliases(t *testing.T) {
	path := writeFixtureFile(t, sampleFixtureYAML)
	f, err := loadFixture(path)
	require.NoError(t, err)

	cat, tbl := buildCatalog(f)
	root, err := buildRelTree(tbl, f.Query)
	require.NoError(t, err)

	ctx := planner.New(planner.DefaultConfig(), cat)
	ctx.CurrentSchema = f.Schema
	out, err := relbin.New(ctx).Compile(root)
	require.NoError(t, err)

	rendered := Dump(out)
	require.Contains(t, rendered, "output")
	require.NotEmpty(t, rendered)
}

func TestDumpNilStatementIsEmpty(t *testing.T) {
	require.Equal(t, "", Dump(nil))
}
