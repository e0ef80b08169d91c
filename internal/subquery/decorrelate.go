// Package subquery models the correlated-subquery outer-reference rewrite
// seam named in SPEC_FULL.md's supplemented features, grounded in
// original_source/rel_subquery.c: it expresses correlations as join
// predicates or as the (column_exp, values_list) shape spec.md §4.3.6
// already specifies. Nothing in this repository calls it; rel_bin's
// handle_in/handle_equality lowering does not go through it.
package subquery

import (
	"github.com/columnar-sql/relbin/internal/expr"
	"github.com/columnar-sql/relbin/internal/querystack"
	"github.com/columnar-sql/relbin/internal/rel"
)

// Correlation describes one outer column referenced from inside a
// subquery, paired with the inner column it is compared against.
type Correlation struct {
	Outer expr.Expression
	Inner expr.Expression
}

// Decorrelate turns each given correlation into an explicit equality join
// predicate (inner = outer) between the subquery and its outer relation.
// It returns inner unchanged together with those predicates, which the
// caller must attach to a join; stack is not consulted.
func Decorrelate(inner *rel.Node, correlations []Correlation, stack *querystack.Stack) (*rel.Node, []expr.Expression) {
	if len(correlations) == 0 {
		return inner, nil
	}
	preds := make([]expr.Expression, 0, len(correlations))
	for _, c := range correlations {
		preds = append(preds, expr.NewCmp(c.Inner, c.Outer, expr.CmpEqual))
	}
	// The subquery itself no longer needs to track these as outer reads
	// once they are expressed as join predicates; querystack.Assert is
	// what the caller uses afterward to confirm the grouping invariant
	// still holds for whatever correlations remain.
	return inner, preds
}

// AsInList converts a set of correlation equalities whose outer sides are
// all atoms sharing one inner column into the IN-list shape handle_in
// expects, mirroring how rel_subquery.c funnels "col = outer1 OR col =
// outer2" style rewrites into the same path as a literal IN list
// (spec.md §4.3.6 handle_equality_exps).
func AsInList(column expr.Expression, correlations []Correlation) (expr.Expression, []expr.Expression, bool) {
	if len(correlations) == 0 {
		return nil, nil, false
	}
	values := make([]expr.Expression, 0, len(correlations))
	for _, c := range correlations {
		if !sameColumn(c.Inner, column) {
			return nil, nil, false
		}
		values = append(values, c.Outer)
	}
	return column, values, true
}

func sameColumn(a, b expr.Expression) bool {
	ac, aok := a.(*expr.Column)
	bc, bok := b.(*expr.Column)
	if !aok || !bok {
		return false
	}
	return ac.Qualifier() == bc.Qualifier() && ac.CName == bc.CName
}
