package stmt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/columnar-sql/relbin/internal/catalog"
	"github.com/columnar-sql/relbin/internal/expr"
	"github.com/columnar-sql/relbin/internal/types"
)

func TestTypeStringCoversEveryConstant(t *testing.T) {
	require.Equal(t, "join", StJoin.String())
	require.Equal(t, "gengroup", StGenGroup.String())
	require.Equal(t, "unknown", Type(-1).String())
	require.Equal(t, "unknown", Type(len(typeNames)).String())
}

func TestNColsDefaultsToOneForScalar(t *testing.T) {
	s := Atom(types.NewAtom(types.NewSubtype(types.KindInt), int64(3)))
	require.Equal(t, 0, s.NrCols)
	require.Equal(t, 1, s.NCols())
}

func TestIsConstCol(t *testing.T) {
	s := Atom(types.NewAtom(types.NewSubtype(types.KindInt), int64(3)))
	require.True(t, s.IsConstCol())

	col := Bat(&catalog.Column{Name: "id", Subtype: types.NewSubtype(types.KindBigInt)}, "id", "orders")
	require.False(t, col.IsConstCol())
}

func TestConstBroadcastsBaseWidth(t *testing.T) {
	base := Bat(&catalog.Column{Name: "id", Subtype: types.NewSubtype(types.KindBigInt)}, "id", "orders")
	c := Const(base, types.NewAtom(types.NewSubtype(types.KindInt), int64(1)))
	require.Equal(t, base.NCols(), c.NrCols)
	require.False(t, c.Key)
}

func TestJoinAndSemijoinWidths(t *testing.T) {
	l := Bat(&catalog.Column{Name: "a", Subtype: types.NewSubtype(types.KindInt)}, "a", "t")
	r := Bat(&catalog.Column{Name: "b", Subtype: types.NewSubtype(types.KindInt)}, "b", "u")

	j := Join(l, r, expr.CmpEqual)
	require.Equal(t, StJoin, j.Type)
	require.Equal(t, 2, j.NrCols)

	sj := Semijoin(l, r)
	require.Equal(t, l.NCols(), sj.NrCols)
}

func TestListAndAlias(t *testing.T) {
	a := Atom(types.NewAtom(types.NewSubtype(types.KindInt), int64(1)))
	b := Atom(types.NewAtom(types.NewSubtype(types.KindInt), int64(2)))
	l := List(a, b)
	require.Equal(t, StList, l.Type)
	require.Len(t, l.List, 2)

	aliased := Alias(a, "total", "o")
	require.Equal(t, "total", aliased.Name)
	require.Equal(t, "o", aliased.RName)
	require.NotSame(t, a, aliased)
}

func TestAffectedRowsAndOutputWrap(t *testing.T) {
	count := Atom(types.NewAtom(types.NewSubtype(types.KindBigInt), int64(5)))
	ar := AffectedRows(count)
	require.Equal(t, StAffectedRows, ar.Type)
	require.True(t, ar.IsConstCol())

	root := Bat(&catalog.Column{Name: "id", Subtype: types.NewSubtype(types.KindBigInt)}, "id", "orders")
	out := Output(root)
	require.Equal(t, StOutput, out.Type)
	require.Same(t, root, out.L)
}
