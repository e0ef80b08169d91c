// Package partition implements the partition marker: it annotates the
// largest basetable in the plan with REL_PARTITION to guide downstream
// placement (spec.md §4 Component 5, §8 testable property 8).
//
// Per SPEC_FULL.md's supplemented-features note, the walk tracks
// candidates per left-deep spine during the same recursive pass rather
// than copying the whole tree, following original_source/rel_partition.c.
package partition

import (
	"github.com/columnar-sql/relbin/internal/prop"
	"github.com/columnar-sql/relbin/internal/rel"
)

// Mark walks the relational tree once and attaches prop.Partition to the
// base-table child with the largest row count seen during planning; ties
// resolve to the first encountered (spec.md §8 property 8).
func Mark(root *rel.Node) {
	c := &candidate{}
	walk(root, c)
	if c.found {
		c.node.Props().Add(prop.Partition, prop.IndexRef{})
	}
}

type candidate struct {
	node  *rel.Node
	count int64
	found bool
}

func (c *candidate) consider(n *rel.Node) {
	if n.Op != rel.OpBaseTable {
		return
	}
	if !c.found || n.Card > c.count {
		c.node, c.count, c.found = n, n.Card, true
	}
}

// walk recurses the left-deep spine first (matching the original's
// per-spine bookkeeping) then the right child, so a tie always keeps the
// earliest-visited (leftmost) base table.
func walk(n *rel.Node, c *candidate) {
	if n == nil {
		return
	}
	c.consider(n)
	walk(n.L, c)
	walk(n.R, c)
}
