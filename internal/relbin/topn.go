package relbin

import (
	"github.com/columnar-sql/relbin/internal/expr"
	"github.com/columnar-sql/relbin/internal/rel"
	"github.com/columnar-sql/relbin/internal/stmt"
)

var sqlAdd = &expr.Subfunction{Name: "sql_add"}

// binTopNFused implements spec.md §4.3.9: the project node is evaluated
// with a TOP-N context and there is an ORDER BY, avoiding materializing
// all rows.
func (c *Compiler) binTopNFused(r *rel.Node) (*Relation, error) {
	child, err := c.SubrelBin(r.L)
	if err != nil {
		return nil, err
	}

	limitStmt, err := c.ExpBin(r.TopN.Limit, child, NewRelation(), nil, nil)
	if err != nil {
		return nil, err
	}
	var boundStmt *stmt.Statement
	if r.TopN.Offset != nil {
		offsetStmt, err := c.ExpBin(r.TopN.Offset, child, NewRelation(), nil, nil)
		if err != nil {
			return nil, err
		}
		boundStmt = stmt.Binop(offsetStmt, limitStmt, sqlAdd)
	} else {
		boundStmt = limitStmt
	}

	includeBounds := r.Distinct
	first := r.Order[0]
	firstCol, err := c.ExpBin(first.Expr, child, NewRelation(), nil, nil)
	if err != nil {
		return nil, err
	}
	offset := r.TopN.Offset
	var offsetStmt *stmt.Statement
	if offset != nil {
		offsetStmt, err = c.ExpBin(offset, child, NewRelation(), nil, nil)
		if err != nil {
			return nil, err
		}
	}
	running := stmt.Limit(firstCol, offsetStmt, boundStmt, stmt.SortDirection{
		Ascending: first.Ascending, Stable: true, IncludeBounds: includeBounds,
	})

	for _, key := range r.Order[1:] {
		col, err := c.ExpBin(key.Expr, child, NewRelation(), nil, nil)
		if err != nil {
			return nil, err
		}
		running = stmt.Limit2(running, col, stmt.SortDirection{Ascending: key.Ascending, Stable: true, IncludeBounds: includeBounds})
	}

	mirrored := stmt.Mirror(running)
	out := NewRelation()
	for _, e := range r.Exps {
		s, err := c.ExpBin(e, child, NewRelation(), nil, nil)
		if err != nil {
			return nil, err
		}
		out.Add(e.Name(), e.RName(), stmt.Project(mirrored, []*stmt.Statement{s}))
	}
	rebuiltSub := NewRelation()
	for _, col := range child.Columns {
		rebuiltSub.Add(col.Name, col.RName, stmt.Project(mirrored, []*stmt.Statement{col.Stmt}))
	}

	if r.Distinct {
		var err error
		out, err = c.rel2binDistinct(out)
		if err != nil {
			return nil, err
		}
		rebuiltSub, err = c.rel2binDistinct(rebuiltSub)
		if err != nil {
			return nil, err
		}
	}
	_ = rebuiltSub // built (spec.md §4.3.9) but not returned; nothing reads it after this point
	return out, nil
}

// binTopN lowers a standalone op_topn (used when the topn cannot be fused
// into the project directly, e.g. above a DISTINCT, spec.md §4.2).
func (c *Compiler) binTopN(r *rel.Node) (*Relation, error) {
	child, err := c.SubrelBin(r.L)
	if err != nil {
		return nil, err
	}
	limitStmt, err := c.ExpBin(r.TopN.Limit, child, NewRelation(), nil, nil)
	if err != nil {
		return nil, err
	}
	var offsetStmt *stmt.Statement
	if r.TopN.Offset != nil {
		offsetStmt, err = c.ExpBin(r.TopN.Offset, child, NewRelation(), nil, nil)
		if err != nil {
			return nil, err
		}
	}
	anchor := child.FirstColumn()
	running := stmt.Limit(anchor, offsetStmt, limitStmt, stmt.SortDirection{Ascending: true, Stable: true})
	mirrored := stmt.Mirror(running)
	out := NewRelation()
	for _, col := range child.Columns {
		out.Add(col.Name, col.RName, stmt.Project(mirrored, []*stmt.Statement{col.Stmt}))
	}
	return out, nil
}

// binSample lowers op_sample.
func (c *Compiler) binSample(r *rel.Node) (*Relation, error) {
	child, err := c.SubrelBin(r.L)
	if err != nil {
		return nil, err
	}
	size, err := c.ExpBin(r.Exps[0], child, NewRelation(), nil, nil)
	if err != nil {
		return nil, err
	}
	out := NewRelation()
	for _, col := range child.Columns {
		out.Add(col.Name, col.RName, stmt.Sample(col.Stmt, size))
	}
	return out, nil
}

// rel2binDistinct groups by every output column and keeps one
// representative row per group, implementing both the standalone DISTINCT
// lowering and the one TOP-N fusion reuses (spec.md §4.3.7 "UNION...
// Optional DISTINCT applies rel2bin_distinct", §4.3.9).
func (c *Compiler) rel2binDistinct(in *Relation) (*Relation, error) {
	if len(in.Columns) == 0 {
		return in, nil
	}
	var g *stmt.Statement
	for _, col := range in.Columns {
		g = groupChain(g, col.Stmt)
	}
	ext := stmt.Mirror(markTail(g, 0))

	out := NewRelation()
	for _, col := range in.Columns {
		out.Add(col.Name, col.RName, stmt.Project(ext, []*stmt.Statement{col.Stmt}))
	}
	out.TID = in.TID
	return out, nil
}

func groupChain(prev, col *stmt.Statement) *stmt.Statement {
	if prev == nil {
		return stmt.Unique(col, nil)
	}
	return stmt.Unique(col, prev)
}
