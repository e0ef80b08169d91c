package querystack

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/columnar-sql/relbin/internal/expr"
	"github.com/columnar-sql/relbin/internal/rel"
	"github.com/columnar-sql/relbin/internal/types"
)

func TestPushPopDepth(t *testing.T) {
	s := New()
	require.Equal(t, 0, s.Depth())

	outer := &rel.Node{Op: rel.OpBaseTable}
	s.Push(outer)
	require.Equal(t, 1, s.Depth())

	s.Push(&rel.Node{Op: rel.OpSelect})
	require.Equal(t, 2, s.Depth())

	s.Pop()
	require.Equal(t, 1, s.Depth())
	require.Same(t, outer, s.At(0).Rel)
}

func TestAtOutOfRangeReturnsNil(t *testing.T) {
	s := New()
	require.Nil(t, s.At(0))

	s.Push(&rel.Node{Op: rel.OpBaseTable})
	require.Nil(t, s.At(1))
	require.Nil(t, s.At(-1))
}

func col() expr.Expression {
	return expr.NewBaseColumn("orders", "customer_id", types.NewSubtype(types.KindBigInt), false)
}

func TestQueryOuterUsedExpMarksGroupedOnGroupByUsage(t *testing.T) {
	s := New()
	entry := s.Push(&rel.Node{Op: rel.OpBaseTable})
	require.False(t, entry.Grouped)

	e := col()
	err := QueryOuterUsedExp(s, 0, e, Frame{InGroupBy: true})
	require.NoError(t, err)
	require.True(t, entry.Grouped)
	require.Same(t, e, entry.LastUsed)
}

func TestQueryOuterUsedExpRejectsAggregateOverGroupedOuter(t *testing.T) {
	s := New()
	entry := s.Push(&rel.Node{Op: rel.OpBaseTable})
	entry.Grouped = true

	err := QueryOuterUsedExp(s, 0, col(), Frame{InAggr: true})
	require.ErrorIs(t, err, ErrGroupedAggrConflict)
}

func TestQueryOuterUsedExpNoEntryIsNoop(t *testing.T) {
	s := New()
	err := QueryOuterUsedExp(s, 5, col(), Frame{InAggr: true})
	require.NoError(t, err)
}

func TestAssertInvariant(t *testing.T) {
	ungrouped := &Entry{Grouped: false}
	require.True(t, Assert(ungrouped, false))

	grouped := &Entry{Grouped: true}
	require.False(t, Assert(grouped, false))
	require.True(t, Assert(grouped, true))

	require.True(t, Assert(nil, false))
}
