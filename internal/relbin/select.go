package relbin

import (
	"github.com/columnar-sql/relbin/internal/expr"
	"github.com/columnar-sql/relbin/internal/prop"
	"github.com/columnar-sql/relbin/internal/rel"
	"github.com/columnar-sql/relbin/internal/stmt"
	"github.com/columnar-sql/relbin/internal/types"
)

// binSelect lowers op_select (spec.md §4.3.5). If no predicates, pass the
// child through (or emit a 1-row "predicate true" column if there is no
// child). If the first predicate carries PROP_HASHIDX, compute a
// rotated-XOR hash over all equality-RHS values and uselect the index
// column for equality against it. Otherwise, accumulate a multi-column
// relational selection of per-predicate uselects, intersect with the
// materialized predicate, and project every child column through the
// final OID set.
func (c *Compiler) binSelect(r *rel.Node) (*Relation, error) {
	child, err := c.SubrelBin(r.L)
	if err != nil {
		return nil, err
	}
	if len(r.Exps) == 0 {
		if child != nil && len(child.Columns) > 0 {
			return child, nil
		}
		out := NewRelation()
		out.Add("predicate", "", stmt.Atom(types.NewAtom(types.NewSubtype(types.KindBoolean), int64(1))))
		return out, nil
	}

	if c.ctx.Config.EnableHashIndexProbe {
		if hashed, ok, err := c.tryHashIndexProbe(r, child); err != nil {
			return nil, err
		} else if ok {
			return hashed, nil
		}
	}

	var sel *stmt.Statement
	var predicate *stmt.Statement
	for _, pred := range r.Exps {
		s, err := c.ExpBin(pred, child, NewRelation(), nil, nil)
		if err != nil {
			return nil, err
		}
		if s.NrCols == 0 {
			// A 0-column predicate folds into a running boolean, combined
			// via st_select (spec.md §4.3.5 "collapsing 0-column
			// predicates into a running boolean predicate folded via
			// st_select(predicate, s, cmp_equal)").
			if predicate == nil {
				predicate = s
			} else {
				predicate = stmt.Uselect(predicate, s, expr.CmpEqual)
			}
			continue
		}
		if sel == nil {
			sel = s
		} else {
			sel = stmt.Join(sel, s, expr.CmpAll)
		}
	}
	if sel == nil {
		sel = predicate
	} else if predicate != nil {
		sel = stmt.Join(sel, predicate, expr.CmpAll)
	}

	oids := markTail(sel, 0)
	out := NewRelation()
	for _, col := range child.Columns {
		if col.Stmt.IsConstCol() {
			out.Add(col.Name, col.RName, stmt.Const(oids, col.Stmt.Atom))
			continue
		}
		out.Add(col.Name, col.RName, stmt.Project(oids, []*stmt.Statement{col.Stmt}))
	}
	out.TID = child.TID
	return out, nil
}

// tryHashIndexProbe implements the PROP_HASHIDX short-circuit of
// spec.md §4.3.5/§4.3.11: a single-shot hash probe instead of scanning
// every predicate, when the first predicate is hash-index-eligible.
func (c *Compiler) tryHashIndexProbe(r *rel.Node, child *Relation) (*Relation, bool, error) {
	first, ok := r.Exps[0].(*expr.Cmp)
	if !ok {
		return nil, false, nil
	}
	idxProp, has := first.Props().Find(prop.HashIdx)
	if !has {
		return nil, false, nil
	}
	idxCol, ok := child.Find("", "%"+idxProp.Index.Name)
	if !ok {
		return nil, false, nil
	}

	var values []*stmt.Statement
	for _, pred := range r.Exps {
		cmp, ok := pred.(*expr.Cmp)
		if !ok || cmp.Flag != expr.CmpEqual {
			return nil, false, nil
		}
		rv, err := c.ExpBin(cmp.R, child, NewRelation(), nil, nil)
		if err != nil {
			return nil, false, err
		}
		values = append(values, rv)
	}

	h := combinedHash(values)
	hashAtom := types.NewAtom(types.NewSubtype(types.KindBigInt), int64(h))
	sel := stmt.Uselect(idxCol, stmt.Atom(hashAtom), expr.CmpEqual)
	oids := markTail(sel, 0)

	out := NewRelation()
	for _, col := range child.Columns {
		out.Add(col.Name, col.RName, stmt.Project(oids, []*stmt.Statement{col.Stmt}))
	}
	out.TID = child.TID
	return out, true, nil
}
