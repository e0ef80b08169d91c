package relbin

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/columnar-sql/relbin/internal/catalog"
	"github.com/columnar-sql/relbin/internal/expr"
	"github.com/columnar-sql/relbin/internal/rel"
	"github.com/columnar-sql/relbin/internal/stmt"
	"github.com/columnar-sql/relbin/internal/types"
)

func ordersCustomersLeftJoin() (*rel.Node, *catalog.Table, *catalog.Table) {
	orders := ordersTable()
	customers := &catalog.Table{
		Name: "customers",
		Columns: []catalog.Column{
			{Name: "id", Subtype: types.NewSubtype(types.KindBigInt)},
			{Name: "name", Subtype: types.NewSubtype(types.KindVarchar)},
		},
		RowCount: 20,
	}
	l := rel.NewBaseTable(orders, baseExps(orders))
	r := rel.NewBaseTable(customers, baseExps(customers))
	pred := expr.NewCmp(
		expr.NewBaseColumn(orders.Name, "customer_id", orders.Columns[1].Subtype, false),
		expr.NewBaseColumn(customers.Name, "id", customers.Columns[0].Subtype, false),
		expr.CmpEqual,
	)
	return rel.NewJoin(rel.JoinLeft, l, r, []expr.Expression{pred}), orders, customers
}

// TestCompleteOuterJoinKeepsLeftValueAndNullsRight pins spec.md §4.3.3's
// outer-join NULL-extension: for LEFT JOIN, a left row with no match keeps
// its own left-side values and gets NULLs appended on the right side, not
// the other way around.
func TestCompleteOuterJoinKeepsLeftValueAndNullsRight(t *testing.T) {
	c := newTestCompiler()
	join, orders, customers := ordersCustomersLeftJoin()

	out, err := c.SubrelBin(join)
	require.NoError(t, err)
	require.Len(t, out.Columns, len(orders.Columns)+len(customers.Columns))

	for _, col := range out.Columns[:len(orders.Columns)] {
		require.Equal(t, stmt.StAppend, col.Stmt.Type)
		require.NotNil(t, col.Stmt.R)
		require.NotEqual(t, stmt.StConst, col.Stmt.R.Type,
			"unmatched left rows must keep their original left value, not a NULL const")
	}
	for _, col := range out.Columns[len(orders.Columns):] {
		require.Equal(t, stmt.StAppend, col.Stmt.Type)
		require.NotNil(t, col.Stmt.R)
		require.Equal(t, stmt.StConst, col.Stmt.R.Type,
			"unmatched left rows must null-extend the right side")
		require.True(t, col.Stmt.R.Nullable)
	}
}
