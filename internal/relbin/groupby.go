package relbin

import (
	"github.com/columnar-sql/relbin/internal/expr"
	"github.com/columnar-sql/relbin/internal/rel"
	"github.com/columnar-sql/relbin/internal/stmt"
)

// binGroupBy lowers op_groupby (spec.md §4.3.8): build a grouping
// statement chain with grp_create(col, prev), finalize with grp_done(g).
// Aggregates are resolved column-by-column with
// exp_bin(aggr, left, NULL, g, NULL). Re-alias with stmt_rename to
// preserve user-visible names.
func (c *Compiler) binGroupBy(r *rel.Node) (*Relation, error) {
	child, err := c.SubrelBin(r.L)
	if err != nil {
		return nil, err
	}

	// Push this node as the current query-stack scope, marked grouped, so
	// expBinColumn's outer-reference bookkeeping (spec.md §4.5) can detect
	// an aggregate reading an outer column after the scope it belongs to
	// has already been marked grouped.
	entry := c.ctx.QueryStack.Push(r)
	entry.GroupBy = true
	defer c.ctx.QueryStack.Pop()

	grp, err := c.buildGrouping(r.GroupKeys(), child, NewRelation())
	if err != nil {
		return nil, err
	}

	out := NewRelation()
	for _, agg := range r.Exps {
		s, err := c.ExpBin(agg, child, NewRelation(), grp, nil)
		if err != nil {
			return nil, err
		}
		out.Add(agg.Name(), agg.RName(), s)
	}
	return out, nil
}

// buildGrouping builds a grp_create(col, prev) chain over keys, finalizes
// it with grp_done, and binds each key's representative statement for
// direct lookup by later e_column references (spec.md §4.3.8).
func (c *Compiler) buildGrouping(keys []expr.Expression, left, right *Relation) (*Grouping, error) {
	if len(keys) == 0 {
		return &Grouping{}, nil
	}
	keyRel := NewRelation()
	var chain *stmt.Statement
	for _, k := range keys {
		col, err := c.ExpBin(k, left, right, nil, nil)
		if err != nil {
			return nil, err
		}
		chain = grpCreate(col, chain)
		keyRel.Add(k.Name(), k.RName(), col)
	}
	done := grpDone(chain)
	ext := stmt.Mirror(markTail(done, 0))
	return &Grouping{Group: done, Ext: ext, Keys: keyRel}, nil
}

// grpCreate/grpDone model the original's grouping-statement chain: each
// call narrows the running partition by one more key column, and grp_done
// finalizes the chain into the grouping statement exp_bin's e_aggr and
// e_column branches consult (spec.md §4.3.8).
func grpCreate(col, prev *stmt.Statement) *stmt.Statement {
	if prev == nil {
		return stmt.Unique(col, nil)
	}
	return stmt.Unique(col, prev)
}

func grpDone(chain *stmt.Statement) *stmt.Statement {
	return chain
}
