package relbin

import (
	"github.com/columnar-sql/relbin/internal/expr"
	"github.com/columnar-sql/relbin/internal/stmt"
)

// handleInStmt lowers an already-evaluated (column, values) pair for
// cmp_in/cmp_notin (spec.md §4.3.6 "handle_in_exps"): project the column
// via reverse(unique(values)) for IN, or via
// reverse(diff(reverse(col), reverse(unique(values)))) for NOT IN. The
// st_project is returned as is; it is not wrapped as a constant column
// sized to the relation.
func (c *Compiler) handleInStmt(col, values *stmt.Statement, in bool) (*stmt.Statement, error) {
	uniq := stmt.Unique(values, nil)
	if in {
		return stmt.Project(stmt.Reverse(uniq), []*stmt.Statement{col}), nil
	}
	diffed := stmt.Diff(stmt.Reverse(col), stmt.Reverse(uniq))
	return stmt.Project(stmt.Reverse(diffed), []*stmt.Statement{col}), nil
}

// HandleInExps is the expression-level entry point named directly by
// spec.md §4.3.6: build a temp BAT appended with each value, compute the
// column, and lower through handleInStmt.
func (c *Compiler) HandleInExps(column expr.Expression, values []expr.Expression, left, right *Relation, in bool) (*stmt.Statement, error) {
	col, err := c.ExpBin(column, left, right, nil, nil)
	if err != nil {
		return nil, err
	}
	var temp *stmt.Statement
	for i, v := range values {
		vs, err := c.ExpBin(v, left, right, nil, nil)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			temp = vs
		} else {
			temp = stmt.Append(copyColumn(temp), vs)
		}
	}
	return c.handleInStmt(col, temp, in)
}

// HandleEqualityExps implements spec.md §4.3.6 "handle_equality_exps":
// recognize an OR tree of equalities on a common left side
// (col = v1 OR col = v2 ...) and rewrite into an IN over the collected RHS
// atoms. Returns ok=false when the expression is not such a tree.
func HandleEqualityExps(e expr.Expression) (column expr.Expression, values []expr.Expression, ok bool) {
	cmp, isCmp := e.(*expr.Cmp)
	if !isCmp {
		return nil, nil, false
	}
	return collectOrEqualities(cmp, nil)
}

func collectOrEqualities(cmp *expr.Cmp, acc []expr.Expression) (expr.Expression, []expr.Expression, bool) {
	switch cmp.Flag {
	case expr.CmpEqual:
		return cmp.L, append(acc, cmp.R), true
	case expr.CmpOr:
		lcmp, lok := cmp.L.(*expr.Cmp)
		rcmp, rok := cmp.R.(*expr.Cmp)
		if !lok || !rok {
			return nil, nil, false
		}
		lcol, lvals, lgood := collectOrEqualities(lcmp, nil)
		rcol, rvals, rgood := collectOrEqualities(rcmp, nil)
		if !lgood || !rgood || !sameColumnExpr(lcol, rcol) {
			return nil, nil, false
		}
		return lcol, append(append(acc, lvals...), rvals...), true
	default:
		return nil, nil, false
	}
}

func sameColumnExpr(a, b expr.Expression) bool {
	ac, aok := a.(*expr.Column)
	bc, bok := b.(*expr.Column)
	if !aok || !bok {
		return false
	}
	return ac.Qualifier() == bc.Qualifier() && ac.CName == bc.CName
}
