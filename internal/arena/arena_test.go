package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewArenaHasNonZeroID(t *testing.T) {
	a := New()
	require.NotEqual(t, "00000000-0000-0000-0000-000000000000", a.ID.String())
}

func TestStatsCounters(t *testing.T) {
	a := New()
	a.CountAtom()
	a.CountAtom()
	a.CountExpr()
	a.CountRel()
	a.CountStmt()
	a.CountStmt()
	a.CountStmt()

	stats := a.Stats()
	require.Equal(t, Stats{Atoms: 2, Exprs: 1, Rels: 1, Stmts: 3}, stats)
}

func TestRefTableLookupAndRemember(t *testing.T) {
	rt := NewRefTable()
	type relStub struct{ name string }
	r := &relStub{name: "orders"}

	_, ok := rt.Lookup(r)
	require.False(t, ok)

	rt.Remember(r, "lowered-orders")
	got, ok := rt.Lookup(r)
	require.True(t, ok)
	require.Equal(t, "lowered-orders", got)
}

func TestRefTableDistinguishesPointerIdentity(t *testing.T) {
	rt := NewRefTable()
	type relStub struct{ name string }
	a := &relStub{name: "orders"}
	b := &relStub{name: "orders"}

	rt.Remember(a, "stmt-a")
	_, ok := rt.Lookup(b)
	require.False(t, ok, "distinct pointers with equal structure must not alias in the memo table")
}

func TestHashKeyStableForEqualValues(t *testing.T) {
	type shape struct {
		Op   string
		Cols []string
	}
	k1 := HashKey(shape{Op: "join", Cols: []string{"a", "b"}})
	k2 := HashKey(shape{Op: "join", Cols: []string{"a", "b"}})
	require.Equal(t, k1, k2)

	k3 := HashKey(shape{Op: "select", Cols: []string{"a", "b"}})
	require.NotEqual(t, k1, k3)
}
