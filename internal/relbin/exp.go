package relbin

import (
	"github.com/columnar-sql/relbin/internal/expr"
	"github.com/columnar-sql/relbin/internal/planerr"
	"github.com/columnar-sql/relbin/internal/querystack"
	"github.com/columnar-sql/relbin/internal/stmt"
)

// ExpBin resolves a single expression into a statement, given two
// sub-relations (left and optional right) and an optional group context
// and selection statement (spec.md §4.1 "exp_bin(expr, left, right, grp,
// sel) -> stmt").
func (c *Compiler) ExpBin(e expr.Expression, left, right *Relation, grp *Grouping, sel *stmt.Statement) (*stmt.Statement, error) {
	leave, err := c.ctx.Enter("exp_bin")
	if err != nil {
		return nil, err
	}
	defer leave()

	var s *stmt.Statement
	switch v := e.(type) {
	case *expr.Atom:
		s, err = c.expBinAtom(v)
	case *expr.Convert:
		s, err = c.expBinConvert(v, left, right, grp, sel)
	case *expr.Func:
		s, err = c.expBinFunc(v, left, right, grp, sel)
	case *expr.Aggr:
		s, err = c.expBinAggr(v, left, right, grp)
	case *expr.Column:
		s, err = c.expBinColumn(v, left, right, grp, sel)
	case *expr.Cmp:
		s, err = c.expBinCmp(v, left, right, grp, sel)
	case *expr.Psm:
		return nil, planerr.ErrInternal.New("e_psm reaches exp_bin; PSM nodes are compiled by the psm package")
	default:
		return nil, planerr.ErrInternal.New("unknown expression variant")
	}
	if err != nil {
		return nil, err
	}
	if s != nil && e.Name() != "" {
		s = stmt.Alias(s, e.Name(), e.RName())
	}
	return s, nil
}

func (c *Compiler) expBinAtom(a *expr.Atom) (*stmt.Statement, error) {
	switch a.Kind {
	case expr.AtomLiteral:
		return stmt.Atom(a.Literal), nil
	case expr.AtomParam:
		level := c.ctx.Frames.Depth()
		return stmt.Var(a.Param, level, a.Subtype(), a.Nullable()), nil
	case expr.AtomValueList:
		return stmt.Temp(a.Values, a.Subtype()), nil
	case expr.AtomPositional:
		level := c.ctx.Frames.Depth()
		return stmt.Var("?", level, a.Subtype(), a.Nullable()), nil
	}
	return nil, planerr.ErrInternal.New("unknown e_atom kind")
}

func (c *Compiler) expBinConvert(v *expr.Convert, left, right *Relation, grp *Grouping, sel *stmt.Statement) (*stmt.Statement, error) {
	if v.IsNoop() {
		return c.ExpBin(v.Child, left, right, grp, sel)
	}
	// A literal child folds at compile time instead of emitting a runtime
	// st_convert wrapper (spec.md §4.1 "e_convert"; coercion done via
	// github.com/spf13/cast, see internal/expr.FoldConvert).
	if lit, ok := v.Child.(*expr.Atom); ok {
		if folded, ok := expr.FoldConvert(lit, v.To); ok {
			return stmt.Atom(folded), nil
		}
	}
	child, err := c.ExpBin(v.Child, left, right, grp, sel)
	if err != nil {
		return nil, err
	}
	return stmt.Convert(child, v.From, v.To), nil
}

func (c *Compiler) expBinFunc(v *expr.Func, left, right *Relation, grp *Grouping, sel *stmt.Statement) (*stmt.Statement, error) {
	if v.Sub.IsIdentity() {
		arg, err := c.ExpBin(v.Args[0], left, right, grp, sel)
		if err != nil {
			return nil, err
		}
		return stmt.Mirror(arg), nil
	}

	args := make([]*stmt.Statement, 0, len(v.Args)+2)
	for _, a := range v.Args {
		s, err := c.ExpBin(a, left, right, grp, sel)
		if err != nil {
			return nil, err
		}
		args = append(args, s)
	}

	if v.IsWindowed() {
		// Build a grouping from any GROUP BY sub-list, finalize it,
		// construct an ORDER BY statement by successive st_reorder, append
		// the order statement (and grp/ext if present) to the operand
		// list before st_Nop (spec.md §4.1 "e_func windowed").
		var wgrp *Grouping
		var err error
		if len(v.GroupBy) > 0 {
			wgrp, err = c.buildGrouping(v.GroupBy, left, right)
			if err != nil {
				return nil, err
			}
		}
		var order *stmt.Statement
		for i, ot := range v.OrderBy {
			col, err := c.ExpBin(ot.Expr, left, right, grp, sel)
			if err != nil {
				return nil, err
			}
			if i == 0 {
				order = stmt.Order(col, ot.Ascending)
			} else {
				order = stmt.Reorder(order, col, ot.Ascending)
			}
		}
		if order != nil {
			args = append(args, stmt.Ordered(order))
		}
		if wgrp != nil {
			args = append(args, wgrp.Group, wgrp.Ext)
		}
	}
	return stmt.Nop(args, v.Sub), nil
}

func (c *Compiler) expBinAggr(v *expr.Aggr, left, right *Relation, grp *Grouping) (*stmt.Statement, error) {
	var groupStmt *stmt.Statement
	if grp != nil {
		groupStmt = grp.Group
	}

	var col *stmt.Statement
	var err error
	if v.Arg == nil {
		// No attribute: manufacture a constant column (spec.md §4.1
		// "e_aggr"), whether or not a group is present.
		if left != nil && left.FirstColumn() != nil {
			col = stmt.Const(left.FirstColumn(), constTrue())
		} else {
			col = stmt.Atom(constTrue())
		}
	} else {
		c.inAggr++
		col, err = c.ExpBin(v.Arg, left, right, grp, nil)
		c.inAggr--
		if err != nil {
			return nil, err
		}
	}

	if v.NeedNoNil {
		nullAtom := stmt.Atom(nilAtomFor(col))
		col = stmt.Select2(col, nullAtom, nullAtom, expr.CmpNotEqual)
	}
	if v.NeedDistinct {
		col = stmt.Unique(col, groupStmt)
	}

	if v.IsBinary() {
		c.inAggr++
		arg2, err := c.ExpBin(v.Arg2, left, right, grp, nil)
		c.inAggr--
		if err != nil {
			return nil, err
		}
		return stmt.Aggr2(col, arg2, groupStmt, v.Sub), nil
	}
	return stmt.Aggr(col, groupStmt, v.Sub), nil
}

func (c *Compiler) expBinColumn(v *expr.Column, left, right *Relation, grp *Grouping, sel *stmt.Statement) (*stmt.Statement, error) {
	// bin_find_column first on right, then left (spec.md §4.1 "e_column").
	col, ok := right.Find(v.RName, v.CName)
	if !ok {
		col, ok = left.Find(v.Qualifier(), v.CName)
	}
	if !ok && v.RName == "" {
		col, ok = left.Find("", v.CName)
	}
	if !ok {
		return nil, planerr.ErrUnknownColumn.New(v.CName)
	}
	if grp != nil {
		// Join-through grp.ext: try the direct grouping-key binding first,
		// then fall back to an explicit join (spec.md §4.3.8).
		if grp.Keys != nil {
			if keyed, ok := grp.Keys.Find(v.Qualifier(), v.CName); ok {
				col = keyed
			} else if grp.Ext != nil {
				col = stmt.Join(grp.Ext, col, expr.CmpEqual)
			}
		} else if grp.Ext != nil {
			col = stmt.Join(grp.Ext, col, expr.CmpEqual)
		}

		// query_outer_used_exp (spec.md §4.5): record this read against
		// the current query-stack scope and reject an aggregate reading
		// an outer reference whose scope is already grouped.
		frame := querystack.Frame{InAggr: c.inAggr > 0, InGroupBy: grp.Keys != nil}
		if qerr := querystack.QueryOuterUsedExp(c.ctx.QueryStack, 0, v, frame); qerr != nil {
			return nil, planerr.ErrGroupedAggregateConflict.New()
		}
	}
	if sel != nil {
		col = stmt.Semijoin(col, sel)
	}
	return col, nil
}

func (c *Compiler) expBinCmp(v *expr.Cmp, left, right *Relation, grp *Grouping, sel *stmt.Statement) (*stmt.Statement, error) {
	// spec.md §4.3.6 "handle_equality_exps": an OR tree of equalities on a
	// common left side rewrites to an IN before falling back to the plain
	// st_union lowering of CmpOr.
	if v.Flag == expr.CmpOr {
		if col, values, ok := HandleEqualityExps(v); ok {
			return c.HandleInExps(col, values, left, right, true)
		}
	}

	l, err := c.ExpBin(v.L, left, right, grp, sel)
	if err != nil {
		return nil, err
	}
	switch v.Flag {
	case expr.CmpRange:
		lo, err := c.ExpBin(v.R, left, right, grp, sel)
		if err != nil {
			return nil, err
		}
		hi, err := c.ExpBin(v.F, left, right, grp, sel)
		if err != nil {
			return nil, err
		}
		s := stmt.Uselect2(l, lo, hi, v.Inclusion)
		s.Anti = v.Anti
		return s, nil
	case expr.CmpOr:
		r, err := c.ExpBin(v.R, left, right, grp, sel)
		if err != nil {
			return nil, err
		}
		return stmt.Union(l, r), nil
	case expr.CmpIn, expr.CmpNotIn:
		r, err := c.ExpBin(v.R, left, right, grp, sel)
		if err != nil {
			return nil, err
		}
		return c.handleInStmt(l, r, v.Flag == expr.CmpIn)
	default:
		r, err := c.ExpBin(v.R, left, right, grp, sel)
		if err != nil {
			return nil, err
		}
		flag := v.Flag
		// Both sides are BAT-shaped relation columns: this is a join
		// predicate (spec.md §4.1 "map to the corresponding relational
		// ops in st_join/st_uselect"). A constant right side (a literal
		// or a parameter) instead selects against the left column.
		if r.NrCols > 0 && !r.IsConstCol() {
			s := stmt.Join(l, stmt.Reverse(r), flag)
			s.Anti = v.Anti
			return s, nil
		}
		s := stmt.Uselect(l, r, flag)
		s.Anti = v.Anti
		return s, nil
	}
}
