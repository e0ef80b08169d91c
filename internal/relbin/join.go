package relbin

import (
	"github.com/columnar-sql/relbin/internal/expr"
	"github.com/columnar-sql/relbin/internal/prop"
	"github.com/columnar-sql/relbin/internal/rel"
	"github.com/columnar-sql/relbin/internal/stmt"
)

// binJoin lowers an op_join of any inner/left/right/full/semi/anti/cross
// kind (spec.md §4.3.3, §4.3.4).
func (c *Compiler) binJoin(r *rel.Node) (*Relation, error) {
	left, err := c.SubrelBin(r.L)
	if err != nil {
		return nil, err
	}
	right, err := c.SubrelBin(r.R)
	if err != nil {
		return nil, err
	}
	left, right = row2cols(left), row2cols(right)

	switch r.JoinKind {
	case rel.JoinSemi, rel.JoinAnti:
		return c.binSemiAnti(r, left, right)
	default:
		return c.binRegularJoin(r, left, right)
	}
}

// row2cols normalizes a single-row constant list into a constant column
// under the table name (spec.md §4.3.3 "Inputs left and right are first
// 'row-to-columns' normalized"). Every Relation this compiler builds is
// already column-shaped, so this is a no-op hook kept for the seam the
// original names explicitly.
func row2cols(r *Relation) *Relation { return r }

func (c *Compiler) binRegularJoin(r *rel.Node, left, right *Relation) (*Relation, error) {
	joinStmt, err := c.collectJoinStatements(r, left, right)
	if err != nil {
		return nil, err
	}

	out := NewRelation()
	isOuter := r.JoinKind == rel.JoinLeft || r.JoinKind == rel.JoinRight || r.JoinKind == rel.JoinFull
	if !isOuter {
		jl := stmt.Reverse(markTail(joinStmt, 0))
		jr := stmt.Reverse(markTail(stmt.Reverse(joinStmt), 0))
		projectSide(out, left, jl)
		projectSide(out, right, jr)
		return out, nil
	}
	return c.completeOuterJoin(r, left, right, joinStmt)
}

// collectJoinStatements implements the predicate-collection and
// aggregation rules of spec.md §4.3.3.
func (c *Compiler) collectJoinStatements(r *rel.Node, left, right *Relation) (*stmt.Statement, error) {
	var jns []*stmt.Statement
	joinIdxMatched := false

	for _, pred := range r.Exps {
		if cmp, ok := pred.(*expr.Cmp); ok {
			if _, has := cmp.Props().Find(prop.JoinIdx); has && c.ctx.Config.EnableJoinIndexShortcut {
				js, matched, err := c.lowerJoinIndex(cmp, left, right)
				if err != nil {
					return nil, err
				}
				if matched {
					jns = append(jns, js)
					joinIdxMatched = true
					continue
				}
			}
		}
		s, err := c.ExpBin(pred, left, right, nil, nil)
		if err != nil {
			return nil, err
		}
		jns = append(jns, s)
	}

	if len(jns) == 0 {
		// No predicate: cartesian product (spec.md §4.3.3).
		l, r2 := left.FirstColumn(), right.FirstColumn()
		return stmt.Join(l, stmt.Reverse(r2), expr.CmpAll), nil
	}
	if len(jns) == 1 {
		return jns[0], nil
	}
	if joinIdxMatched {
		// A JOINIDX match bypassed evaluation for at least one predicate;
		// spec.md §4.3.3 only aggregates via releqjoin when "no JOINIDX
		// matches happened", so the remaining predicates are intersected
		// directly in declaration order instead.
		acc := jns[0]
		for _, j := range jns[1:] {
			acc = stmt.Join(acc, j, expr.CmpAll)
		}
		return acc, nil
	}

	equi, nonEqui := partitionEquiJoins(jns)
	if len(equi) == 0 {
		acc := nonEqui[0]
		for _, j := range nonEqui[1:] {
			acc = stmt.Join(acc, j, expr.CmpAll)
		}
		return acc, nil
	}
	releq := stmt.Releqjoin(equi)
	if len(nonEqui) == 0 {
		return releq, nil
	}
	return stmt.Reljoin(releq, nonEqui), nil
}

func partitionEquiJoins(jns []*stmt.Statement) (equi, nonEqui []*stmt.Statement) {
	for _, j := range jns {
		if j.Flag == expr.CmpEqual && !j.Anti {
			equi = append(equi, j)
		} else {
			nonEqui = append(nonEqui, j)
		}
	}
	return
}

// lowerJoinIndex synthesizes st_join(l_idx, reverse(r_tid), cmp_equal) or
// its swap, whichever side contains the index column, with a
// micro-optimization when the index already points to a mirrored TID (the
// join is elided to an alias) (spec.md §4.3.3).
func (c *Compiler) lowerJoinIndex(cmp *expr.Cmp, left, right *Relation) (*stmt.Statement, bool, error) {
	lcol, aok := cmp.L.(*expr.Column)
	rcol, bok := cmp.R.(*expr.Column)
	if !aok || !bok {
		return nil, false, nil
	}
	p, has := cmp.Props().Find(prop.JoinIdx)
	if !has {
		return nil, false, nil
	}
	idxName := "%" + p.Index.Name
	if idx, ok := left.Find("", idxName); ok && right.TID != nil {
		if idx == right.TID {
			return stmt.Alias(idx, lcol.Name(), lcol.RName()), true, nil
		}
		return stmt.Join(idx, stmt.Reverse(right.TID), expr.CmpEqual), true, nil
	}
	if idx, ok := right.Find("", idxName); ok && left.TID != nil {
		if idx == left.TID {
			return stmt.Alias(idx, rcol.Name(), rcol.RName()), true, nil
		}
		return stmt.Join(idx, stmt.Reverse(left.TID), expr.CmpEqual), true, nil
	}
	return nil, false, nil
}

// markTail renumbers the tail of join's output column to a consecutive
// OID range starting at seed (GLOSSARY "Mark").
func markTail(s *stmt.Statement, seed int64) *stmt.Statement {
	return stmt.Mark(s, seed)
}

func projectSide(out *Relation, side *Relation, oids *stmt.Statement) {
	for _, col := range side.Columns {
		out.Add(col.Name, col.RName, stmt.Project(oids, []*stmt.Statement{col.Stmt}))
	}
}

// completeOuterJoin implements spec.md §4.3.3's outer-join completion:
// compute jl/jr from the matched join, ld/rd from the unmatched sides,
// then for each column of left/right project via the matched side and
// append nulls/originals for the unmatched side.
func (c *Compiler) completeOuterJoin(r *rel.Node, left, right *Relation, join *stmt.Statement) (*Relation, error) {
	jl := stmt.Reverse(markTail(join, 0))
	jr := stmt.Reverse(markTail(stmt.Reverse(join), 0))

	var ld, rd *stmt.Statement
	if r.JoinKind == rel.JoinLeft || r.JoinKind == rel.JoinFull {
		ld = stmt.Mark(stmt.Reverse(stmt.Diff(left.FirstColumn(), stmt.Reverse(jl))), 0)
	}
	if r.JoinKind == rel.JoinRight || r.JoinKind == rel.JoinFull {
		rd = stmt.Mark(stmt.Reverse(stmt.Diff(right.FirstColumn(), stmt.Reverse(jr))), 0)
	}

	// Row order must line up across every column of both sides: matched
	// rows first, then the unmatched-left (ld) rows, then the
	// unmatched-right (rd) rows. The ld rows keep their original left
	// value and get a NULL right value; the rd rows are the mirror image
	// (spec.md §4.3.3 outer-join NULL-extension).
	out := NewRelation()
	for _, col := range left.Columns {
		result := stmt.Project(jl, []*stmt.Statement{col.Stmt})
		if ld != nil {
			origCol := stmt.Project(ld, []*stmt.Statement{col.Stmt})
			result = stmt.Append(copyColumn(result), origCol)
		}
		if rd != nil {
			nullCol := stmt.Const(rd, nilAtomFor(col.Stmt))
			result = stmt.Append(copyColumn(result), nullCol)
		}
		out.Add(col.Name, col.RName, result)
	}
	for _, col := range right.Columns {
		result := stmt.Project(jr, []*stmt.Statement{col.Stmt})
		if ld != nil {
			nullCol := stmt.Const(ld, nilAtomFor(col.Stmt))
			result = stmt.Append(copyColumn(result), nullCol)
		}
		if rd != nil {
			origCol := stmt.Project(rd, []*stmt.Statement{col.Stmt})
			result = stmt.Append(copyColumn(result), origCol)
		}
		out.Add(col.Name, col.RName, result)
	}
	return out, nil
}

// copyColumn builds an append-safe copy of a column (spec.md §4.3.3:
// "wrap in a fresh Column (append-safe copy)").
func copyColumn(s *stmt.Statement) *stmt.Statement {
	clone := *s
	return &clone
}
