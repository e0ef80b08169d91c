package partition

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/columnar-sql/relbin/internal/catalog"
	"github.com/columnar-sql/relbin/internal/prop"
	"github.com/columnar-sql/relbin/internal/rel"
)

func baseTable(name string, rows int64) *rel.Node {
	return rel.NewBaseTable(&catalog.Table{Name: name, RowCount: rows}, nil)
}

func TestMarkPicksLargestBaseTable(t *testing.T) {
	small := baseTable("customers", 10)
	big := baseTable("orders", 1000)
	join := rel.NewJoin(rel.JoinInner, small, big, nil)

	Mark(join)

	require.True(t, big.Props().Has(prop.Partition))
	require.False(t, small.Props().Has(prop.Partition))
}

func TestMarkTiesResolveToFirstEncountered(t *testing.T) {
	first := baseTable("a", 100)
	second := baseTable("b", 100)
	join := rel.NewJoin(rel.JoinInner, first, second, nil)

	Mark(join)

	require.True(t, first.Props().Has(prop.Partition))
	require.False(t, second.Props().Has(prop.Partition))
}

func TestMarkIgnoresNonBaseTableNodes(t *testing.T) {
	bt := baseTable("orders", 5)
	sel := rel.NewSelect(bt, nil)

	Mark(sel)

	require.True(t, bt.Props().Has(prop.Partition))
	require.False(t, sel.Props().Has(prop.Partition))
}

func TestMarkNilRootIsNoop(t *testing.T) {
	require.NotPanics(t, func() { Mark(nil) })
}
