package subquery

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/columnar-sql/relbin/internal/expr"
	"github.com/columnar-sql/relbin/internal/querystack"
	"github.com/columnar-sql/relbin/internal/rel"
	"github.com/columnar-sql/relbin/internal/types"
)

func innerCol(name string) *expr.Column {
	return expr.NewBaseColumn("orders", name, types.NewSubtype(types.KindBigInt), false)
}

func outerCol(name string) *expr.Column {
	return expr.NewAliasColumn("c", name, types.NewSubtype(types.KindBigInt), false)
}

func TestDecorrelateNoCorrelationsReturnsInnerUnchanged(t *testing.T) {
	inner := &rel.Node{Op: rel.OpBaseTable}
	stack := querystack.New()

	out, preds := Decorrelate(inner, nil, stack)
	require.Same(t, inner, out)
	require.Nil(t, preds)
}

func TestDecorrelateBuildsEqualityPredicatesPerCorrelation(t *testing.T) {
	inner := &rel.Node{Op: rel.OpBaseTable}
	stack := querystack.New()
	corrs := []Correlation{
		{Outer: outerCol("id"), Inner: innerCol("customer_id")},
	}

	out, preds := Decorrelate(inner, corrs, stack)
	require.Same(t, inner, out)
	require.Len(t, preds, 1)

	cmp, ok := preds[0].(*expr.Cmp)
	require.True(t, ok)
	require.Equal(t, expr.CmpEqual, cmp.Flag)
	require.Same(t, corrs[0].Inner, cmp.L)
	require.Same(t, corrs[0].Outer, cmp.R)
}

func TestAsInListRequiresSharedInnerColumn(t *testing.T) {
	shared := innerCol("customer_id")
	corrs := []Correlation{
		{Outer: outerCol("a"), Inner: shared},
		{Outer: outerCol("b"), Inner: innerCol("customer_id")},
	}

	col, values, ok := AsInList(shared, corrs)
	require.True(t, ok)
	require.Same(t, shared, col)
	require.Len(t, values, 2)
}

func TestAsInListRejectsMismatchedColumn(t *testing.T) {
	shared := innerCol("customer_id")
	corrs := []Correlation{
		{Outer: outerCol("a"), Inner: shared},
		{Outer: outerCol("b"), Inner: innerCol("other_id")},
	}

	_, _, ok := AsInList(shared, corrs)
	require.False(t, ok)
}

func TestAsInListEmptyCorrelations(t *testing.T) {
	_, _, ok := AsInList(innerCol("x"), nil)
	require.False(t, ok)
}
