package relbin

import (
	"github.com/columnar-sql/relbin/internal/expr"
	"github.com/columnar-sql/relbin/internal/rel"
	"github.com/columnar-sql/relbin/internal/stmt"
	"github.com/columnar-sql/relbin/internal/types"
)

// binSet lowers op_set (UNION/EXCEPT/INTERSECT, spec.md §4.3.7).
func (c *Compiler) binSet(r *rel.Node) (*Relation, error) {
	left, err := c.SubrelBin(r.L)
	if err != nil {
		return nil, err
	}
	right, err := c.SubrelBin(r.R)
	if err != nil {
		return nil, err
	}
	switch r.SetKind {
	case rel.SetUnion:
		return c.binUnion(r, left, right)
	case rel.SetExcept:
		return c.binExceptIntersect(r, left, right, true)
	default:
		return c.binExceptIntersect(r, left, right, false)
	}
}

// binUnion: produced columnwise by st_append(copy(l_col), r_col),
// re-aliased to the original schema. Optional DISTINCT applies
// rel2bin_distinct (spec.md §4.3.7 "UNION").
func (c *Compiler) binUnion(r *rel.Node, left, right *Relation) (*Relation, error) {
	out := NewRelation()
	for i, e := range r.Exps {
		lc := left.Columns[i].Stmt
		rc := right.Columns[i].Stmt
		out.Add(e.Name(), e.RName(), stmt.Append(copyColumn(lc), rc))
	}
	if r.Distinct {
		return c.rel2binDistinct(out)
	}
	return out, nil
}

// binExceptIntersect lowers EXCEPT/INTERSECT (spec.md §4.3.7): both start
// by multi-key grouping left and right by all output columns, compute
// group counts, align matching groups via st_releqjoin, then derive the
// surviving per-group counts and blow them back up to row level with
// st_gen_group.
func (c *Compiler) binExceptIntersect(r *rel.Node, left, right *Relation, except bool) (*Relation, error) {
	lGroup, lCounts, err := c.groupWithCounts(left)
	if err != nil {
		return nil, err
	}
	rGroup, rCounts, err := c.groupWithCounts(right)
	if err != nil {
		return nil, err
	}

	matched := stmt.Releqjoin([]*stmt.Statement{lGroup, rGroup})

	var survivors *stmt.Statement
	if except {
		ld := stmt.Diff(lGroup, matched)
		sub := stmt.Binop(lCounts, rCounts, subFn())
		subPositive := stmt.Uselect(sub, stmt.Atom(zeroAtom()), expr.CmpGT)
		survivors = stmt.Union(ld, subPositive)
	} else {
		survivors = stmt.Binop(lCounts, rCounts, minFn())
	}
	grown := stmt.GenGroup(survivors)
	oids := markTail(grown, 0)

	out := NewRelation()
	for _, col := range left.Columns {
		out.Add(col.Name, col.RName, stmt.Project(oids, []*stmt.Statement{col.Stmt}))
	}
	return out, nil
}

// groupWithCounts groups a relation by every output column and returns
// the grouping statement plus a parallel per-group row count.
func (c *Compiler) groupWithCounts(r *Relation) (group, counts *stmt.Statement, err error) {
	var chain *stmt.Statement
	for _, col := range r.Columns {
		chain = grpCreate(col.Stmt, chain)
	}
	done := grpDone(chain)
	countFn := &expr.Subfunction{Name: "count", ReturnType: done.Subtype}
	return done, stmt.Aggr(done, done, countFn), nil
}

func subFn() *expr.Subfunction { return &expr.Subfunction{Name: "sql_sub"} }
func minFn() *expr.Subfunction { return &expr.Subfunction{Name: "sql_min"} }

func zeroAtom() types.Atom {
	return types.NewAtom(types.NewSubtype(types.KindBigInt), int64(0))
}
