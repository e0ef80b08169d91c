package arena

import (
	"github.com/mitchellh/hashstructure"
)

// RefKey identifies a shared sub-relation for the refs memo table
// (spec.md §4.3.1: "a flat [rel0, stmt0, rel1, stmt1, ...] association").
// The memo itself (Lookup/Remember) keys by pointer identity alone, so two
// distinct *rel.Node values that happen to describe the same shape still
// memoize independently — only literal DAG sharing (the same pointer) is
// deduplicated, matching the "multi-parent" ownership model in spec.md §3.
// A RefKey is the structural hash used only by TrackShape.
type RefKey uint64

// HashKey computes a RefKey from the value of v. hashstructure hashes the
// values it reaches, not pointer addresses, so equal-valued inputs get the
// same key; the planner passes it an acyclic shape summary (see
// TrackShape), never a node pointer.
func HashKey(v interface{}) RefKey {
	h, err := hashstructure.Hash(v, &hashstructure.HashOptions{})
	if err != nil {
		// hashstructure only fails on unsupported/cyclic inputs; the
		// planner never hashes cyclic structures (DAGs are memoized by
		// pointer before recursing into children), so this is internal.
		panic("arena: unhashable ref key: " + err.Error())
	}
	return RefKey(h)
}

// RefTable is the "refs" association of spec.md §4.3.1: a memo from a
// relational-node identity to the statement already built for it, so
// common sub-relations are lowered exactly once.
type RefTable struct {
	byPointer map[interface{}]interface{}
	byHash    map[RefKey]int
}

// NewRefTable creates an empty memo table.
func NewRefTable() *RefTable {
	return &RefTable{byPointer: make(map[interface{}]interface{}), byHash: make(map[RefKey]int)}
}

// Lookup returns the memoized statement for rel, if rel was previously
// registered with Remember.
func (t *RefTable) Lookup(rel interface{}) (interface{}, bool) {
	v, ok := t.byPointer[rel]
	return v, ok
}

// Remember records that rel lowered to stmt, so future lookups of the same
// rel pointer return stmt instead of re-lowering.
func (t *RefTable) Remember(rel, stmt interface{}) {
	t.byPointer[rel] = stmt
}

// TrackShape hashes a caller-built, acyclic summary of a node (e.g. its
// operator kind plus output column names, never the node or its children
// themselves) via HashKey and reports whether an equally-shaped value was
// already tracked. This is the value-identity companion to the
// pointer-identity memo Lookup/Remember use for the hot path: it flags two
// distinct sub-plans — not literally DAG-shared, so Lookup would miss them
// — that happen to describe the same operation, a common-subexpression
// diagnostic rather than a lowering shortcut.
func (t *RefTable) TrackShape(shape interface{}) (duplicate bool) {
	k := HashKey(shape)
	duplicate = t.byHash[k] > 0
	t.byHash[k]++
	return duplicate
}
