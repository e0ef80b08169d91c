package relbin

import (
	"github.com/columnar-sql/relbin/internal/rel"
	"github.com/columnar-sql/relbin/internal/stmt"
)

// binProject lowers op_project. When the node carries both a fused TopN
// and an ORDER BY, the TOP-N+ORDER BY+DISTINCT fusion of spec.md §4.3.9
// takes over; otherwise this is a plain column-list materialization.
func (c *Compiler) binProject(r *rel.Node) (*Relation, error) {
	if r.TopN != nil && len(r.Order) > 0 {
		return c.binTopNFused(r)
	}

	child, err := c.SubrelBin(r.L)
	if err != nil {
		return nil, err
	}
	out := NewRelation()
	for _, e := range r.Exps {
		s, err := c.ExpBin(e, child, NewRelation(), nil, nil)
		if err != nil {
			return nil, err
		}
		out.Add(e.Name(), e.RName(), s)
	}
	out.TID = child.TID

	if len(r.Order) > 0 {
		sorted, err := c.buildSort(r.Order, child)
		if err != nil {
			return nil, err
		}
		return reorderRelation(out, sorted), nil
	}
	return out, nil
}

// buildSort builds a sort by repeatedly stmt_reorder-ing every remaining
// ORDER BY key (spec.md §4.3.9 "If ORDER BY remains after TOP-N/DISTINCT,
// build a sort by repeatedly stmt_reorder-ing").
func (c *Compiler) buildSort(order []rel.OrderKey, left *Relation) (*stmt.Statement, error) {
	var chain *stmt.Statement
	for i, key := range order {
		col, err := c.ExpBin(key.Expr, left, NewRelation(), nil, nil)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			chain = stmt.Order(col, key.Ascending)
		} else {
			chain = stmt.Reorder(chain, col, key.Ascending)
		}
	}
	return stmt.Ordered(chain), nil
}

// reorderRelation projects every output column of out through sorted's
// OID order.
func reorderRelation(out *Relation, sorted *stmt.Statement) *Relation {
	reordered := NewRelation()
	for _, col := range out.Columns {
		reordered.Add(col.Name, col.RName, stmt.Project(sorted, []*stmt.Statement{col.Stmt}))
	}
	reordered.TID = out.TID
	return reordered
}
