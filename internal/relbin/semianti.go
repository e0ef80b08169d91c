package relbin

import (
	"github.com/columnar-sql/relbin/internal/expr"
	"github.com/columnar-sql/relbin/internal/rel"
	"github.com/columnar-sql/relbin/internal/stmt"
)

// binSemiAnti lowers op_join with JoinSemi/JoinAnti (spec.md §4.3.4):
// identical collection of predicates; if multiple, combine by marking
// matching left/right OIDs, joining each predicate's two sides back to
// those OIDs, applying the predicate function via st_binop, then
// st_uselect for true, and re-joining to produce the surviving OID pairs.
func (c *Compiler) binSemiAnti(r *rel.Node, left, right *Relation) (*Relation, error) {
	var preds []*stmt.Statement
	for _, pred := range r.Exps {
		s, err := c.ExpBin(pred, left, right, nil, nil)
		if err != nil {
			return nil, err
		}
		preds = append(preds, s)
	}

	var join *stmt.Statement
	if len(preds) == 0 {
		join = stmt.Join(left.FirstColumn(), stmt.Reverse(right.FirstColumn()), expr.CmpAll)
	} else if len(preds) == 1 {
		join = preds[0]
	} else {
		lmark := markTail(preds[0], 0)
		rmark := stmt.Reverse(markTail(stmt.Reverse(preds[0]), 0))
		acc := stmt.Uselect(stmt.Binop(lmark, rmark, trueFn()), stmt.Atom(constTrue()), expr.CmpEqual)
		for _, p := range preds[1:] {
			lm := markTail(p, 0)
			rm := stmt.Reverse(markTail(stmt.Reverse(p), 0))
			step := stmt.Uselect(stmt.Binop(lm, rm, trueFn()), stmt.Atom(constTrue()), expr.CmpEqual)
			acc = stmt.Join(acc, step, expr.CmpEqual)
		}
		join = acc
	}

	leftCol := left.FirstColumn()
	var surviving *stmt.Statement
	if r.JoinKind == rel.JoinAnti {
		surviving = stmt.Diff(leftCol, join)
	} else {
		surviving = stmt.Semijoin(leftCol, join)
	}
	oids := markTail(surviving, 0)

	out := NewRelation()
	for _, col := range left.Columns {
		out.Add(col.Name, col.RName, stmt.Project(oids, []*stmt.Statement{col.Stmt}))
	}
	return out, nil
}

func trueFn() *expr.Subfunction {
	return &expr.Subfunction{Name: "="}
}
