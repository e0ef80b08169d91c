package relbin

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/columnar-sql/relbin/internal/catalog"
	"github.com/columnar-sql/relbin/internal/expr"
	"github.com/columnar-sql/relbin/internal/rel"
	"github.com/columnar-sql/relbin/internal/types"
)

func customersTable() *catalog.Table {
	return &catalog.Table{
		Name: "customers",
		Columns: []catalog.Column{
			{Name: "id", Subtype: types.NewSubtype(types.KindBigInt)},
			{Name: "email", Subtype: types.NewSubtype(types.KindVarchar)},
		},
		RowCount: 50,
	}
}

func TestBinInsertAppendsEveryColumn(t *testing.T) {
	c := newTestCompiler()
	tbl := customersTable()
	src := rel.NewBaseTable(tbl, baseExps(tbl))

	node := rel.NewDML(rel.DMLInsert, nil, src, &rel.DMLSpec{Table: tbl}, rel.UpdNone)
	out, err := c.binDML(node)
	require.NoError(t, err)
	require.Len(t, out.Columns, 1)
}

func TestBinInsertUniqueKeyGuardProduced(t *testing.T) {
	c := newTestCompiler()
	tbl := customersTable()
	tbl.Keys = append(tbl.Keys, &catalog.Key{ID: 1, Name: "pk_customers", Kind: catalog.PrimaryKey, Table: tbl, Columns: []string{"id"}})
	src := rel.NewBaseTable(tbl, baseExps(tbl))

	node := rel.NewDML(rel.DMLInsert, nil, src, &rel.DMLSpec{Table: tbl}, rel.UpdNone)
	out, err := c.binDML(node)
	require.NoError(t, err)
	require.NotNil(t, out)
}

func TestBinInsertNotNullGuardProduced(t *testing.T) {
	c := newTestCompiler()
	tbl := customersTable()
	src := rel.NewBaseTable(tbl, baseExps(tbl))

	node := rel.NewDML(rel.DMLInsert, nil, src, &rel.DMLSpec{Table: tbl}, rel.UpdNone)
	out, err := c.binDML(node)
	require.NoError(t, err)
	require.NotNil(t, out)
}

func TestBinInsertLockedFlagMarksFakeAppend(t *testing.T) {
	c := newTestCompiler()
	tbl := customersTable()
	src := rel.NewBaseTable(tbl, baseExps(tbl))

	node := rel.NewDML(rel.DMLInsert, nil, src, &rel.DMLSpec{Table: tbl}, rel.UpdLocked)
	out, err := c.binDML(node)
	require.NoError(t, err)
	require.NotNil(t, out)
}

func TestBinUpdateAssignsColumn(t *testing.T) {
	c := newTestCompiler()
	tbl := customersTable()
	src := rel.NewBaseTable(tbl, baseExps(tbl))

	newEmail := expr.NewLiteral(types.NewAtom(types.NewSubtype(types.KindVarchar), "a@b.com"))
	spec := &rel.DMLSpec{Table: tbl, Assignments: []rel.ColAssign{{Column: "email", Value: newEmail}}}
	node := rel.NewDML(rel.DMLUpdate, nil, src, spec, rel.UpdNone)

	out, err := c.binDML(node)
	require.NoError(t, err)
	require.Len(t, out.Columns, 1)
}

func TestBinUpdateCascadesOnReferencingForeignKey(t *testing.T) {
	c := newTestCompiler()
	customers := customersTable()
	pk := &catalog.Key{ID: 1, Name: "pk_customers", Kind: catalog.PrimaryKey, Table: customers, Columns: []string{"id"}}
	customers.Keys = append(customers.Keys, pk)

	orders := ordersTable()
	fk := &catalog.Key{ID: 2, Name: "fk_orders_customer", Kind: catalog.ForeignKey, Table: orders,
		Columns: []string{"customer_id"}, RefTable: customers, RefKey: pk, OnUpdate: catalog.ActCascade}
	orders.Keys = append(orders.Keys, fk)

	sch, _ := c.ctx.Catalog.Schema("shop")
	sch.AddTable(customers)
	sch.AddTable(orders)

	src := rel.NewBaseTable(customers, baseExps(customers))
	newID := expr.NewLiteral(types.NewAtom(types.NewSubtype(types.KindBigInt), int64(99)))
	spec := &rel.DMLSpec{Table: customers, Assignments: []rel.ColAssign{{Column: "id", Value: newID}}}
	node := rel.NewDML(rel.DMLUpdate, nil, src, spec, rel.UpdNone)

	out, err := c.binDML(node)
	require.NoError(t, err)
	require.NotNil(t, out)
}

func TestBinDeleteWithFilterMarksRows(t *testing.T) {
	c := newTestCompiler()
	tbl := customersTable()
	src := rel.NewBaseTable(tbl, baseExps(tbl))

	node := rel.NewDML(rel.DMLDelete, nil, src, &rel.DMLSpec{Table: tbl}, rel.UpdNone)
	out, err := c.binDML(node)
	require.NoError(t, err)
	require.Len(t, out.Columns, 1)
}

func TestBinDeleteWithoutSourceClearsTable(t *testing.T) {
	c := newTestCompiler()
	tbl := customersTable()

	node := rel.NewDML(rel.DMLDelete, nil, nil, &rel.DMLSpec{Table: tbl}, rel.UpdNone)
	out, err := c.binDML(node)
	require.NoError(t, err)
	require.Len(t, out.Columns, 1)
}

func TestBinDDLTransDispatch(t *testing.T) {
	c := newTestCompiler()
	node := &rel.Node{Op: rel.OpDDL, DDLKind: rel.DDLTrans, DDL: &rel.DDLSpec{}}

	out, err := c.binDDL(node)
	require.NoError(t, err)
	require.Len(t, out.Columns, 1)
	require.Equal(t, QTrans, c.QueryType())
}

func TestBinDDLCatalogUpdatesQueryType(t *testing.T) {
	c := newTestCompiler()
	node := &rel.Node{Op: rel.OpDDL, DDLKind: rel.DDLCatalogTable, DDL: &rel.DDLSpec{}}

	_, err := c.binDDL(node)
	require.NoError(t, err)
	require.Equal(t, QTable, c.QueryType())
}

func TestBinDDLListFlattensBothSides(t *testing.T) {
	c := newTestCompiler()
	tbl := customersTable()
	left := rel.NewBaseTable(tbl, baseExps(tbl))
	right := rel.NewBaseTable(tbl, baseExps(tbl))
	node := &rel.Node{Op: rel.OpDDL, DDLKind: rel.DDLList, L: left, R: right, DDL: &rel.DDLSpec{}}

	out, err := c.binDDL(node)
	require.NoError(t, err)
	require.Len(t, out.Columns, 1)
}

func TestBinUnionAppendsColumnwise(t *testing.T) {
	c := newTestCompiler()
	tbl := customersTable()
	left := rel.NewBaseTable(tbl, baseExps(tbl))
	right := rel.NewBaseTable(tbl, baseExps(tbl))

	exps := baseExps(tbl)
	node := rel.NewSet(rel.SetUnion, left, right, exps)

	out, err := c.binSet(node)
	require.NoError(t, err)
	require.Len(t, out.Columns, len(tbl.Columns))
}

func TestBinUnionDistinctAppliesGrouping(t *testing.T) {
	c := newTestCompiler()
	tbl := customersTable()
	left := rel.NewBaseTable(tbl, baseExps(tbl))
	right := rel.NewBaseTable(tbl, baseExps(tbl))

	exps := baseExps(tbl)
	node := rel.NewSet(rel.SetUnion, left, right, exps).WithDistinct(true)

	out, err := c.binSet(node)
	require.NoError(t, err)
	require.Len(t, out.Columns, len(tbl.Columns))
}

func TestBinExceptComputesSurvivors(t *testing.T) {
	c := newTestCompiler()
	tbl := customersTable()
	left := rel.NewBaseTable(tbl, baseExps(tbl))
	right := rel.NewBaseTable(tbl, baseExps(tbl))

	exps := baseExps(tbl)
	node := rel.NewSet(rel.SetExcept, left, right, exps)

	out, err := c.binSet(node)
	require.NoError(t, err)
	require.Len(t, out.Columns, len(tbl.Columns))
}

func TestBinIntersectComputesSurvivors(t *testing.T) {
	c := newTestCompiler()
	tbl := customersTable()
	left := rel.NewBaseTable(tbl, baseExps(tbl))
	right := rel.NewBaseTable(tbl, baseExps(tbl))

	exps := baseExps(tbl)
	node := rel.NewSet(rel.SetInter, left, right, exps)

	out, err := c.binSet(node)
	require.NoError(t, err)
	require.Len(t, out.Columns, len(tbl.Columns))
}

func TestBinSemiJoinKeepsMatchingLeftRows(t *testing.T) {
	c := newTestCompiler()
	orders := ordersTable()
	customers := customersTable()
	l := rel.NewBaseTable(orders, baseExps(orders))
	r := rel.NewBaseTable(customers, baseExps(customers))

	pred := expr.NewCmp(
		expr.NewBaseColumn(orders.Name, "customer_id", orders.Columns[1].Subtype, false),
		expr.NewBaseColumn(customers.Name, "id", customers.Columns[0].Subtype, false),
		expr.CmpEqual,
	)
	node := rel.NewJoin(rel.JoinSemi, l, r, []expr.Expression{pred})

	out, err := c.SubrelBin(node)
	require.NoError(t, err)
	require.Len(t, out.Columns, len(orders.Columns))
}

func TestBinAntiJoinExcludesMatchingLeftRows(t *testing.T) {
	c := newTestCompiler()
	orders := ordersTable()
	customers := customersTable()
	l := rel.NewBaseTable(orders, baseExps(orders))
	r := rel.NewBaseTable(customers, baseExps(customers))

	pred := expr.NewCmp(
		expr.NewBaseColumn(orders.Name, "customer_id", orders.Columns[1].Subtype, false),
		expr.NewBaseColumn(customers.Name, "id", customers.Columns[0].Subtype, false),
		expr.CmpEqual,
	)
	node := rel.NewJoin(rel.JoinAnti, l, r, []expr.Expression{pred})

	out, err := c.SubrelBin(node)
	require.NoError(t, err)
	require.Len(t, out.Columns, len(orders.Columns))
}

func TestBinTopNStandaloneLimitsRows(t *testing.T) {
	c := newTestCompiler()
	tbl := ordersTable()
	base := rel.NewBaseTable(tbl, baseExps(tbl))
	limit := expr.NewLiteral(types.NewAtom(types.NewSubtype(types.KindBigInt), int64(10)))
	node := rel.NewTopN(base, &rel.TopNSpec{Limit: limit})

	out, err := c.SubrelBin(node)
	require.NoError(t, err)
	require.Len(t, out.Columns, len(tbl.Columns))
}

func TestBinSampleProjectsEveryColumn(t *testing.T) {
	c := newTestCompiler()
	tbl := ordersTable()
	base := rel.NewBaseTable(tbl, baseExps(tbl))
	size := expr.NewLiteral(types.NewAtom(types.NewSubtype(types.KindBigInt), int64(5)))
	node := rel.NewSample(base, size)

	out, err := c.SubrelBin(node)
	require.NoError(t, err)
	require.Len(t, out.Columns, len(tbl.Columns))
}

func TestBinProjectTopNFusedWithOrderBy(t *testing.T) {
	c := newTestCompiler()
	tbl := ordersTable()
	base := rel.NewBaseTable(tbl, baseExps(tbl))

	idCol := expr.NewBaseColumn(tbl.Name, "id", tbl.Columns[0].Subtype, false)
	limit := expr.NewLiteral(types.NewAtom(types.NewSubtype(types.KindBigInt), int64(10)))

	proj := rel.NewProject(base, []expr.Expression{idCol}).
		WithOrder([]rel.OrderKey{{Expr: idCol, Ascending: true}}).
		WithTopN(&rel.TopNSpec{Limit: limit})

	out, err := c.SubrelBin(proj)
	require.NoError(t, err)
	require.Len(t, out.Columns, 1)
}
