package expr

import "github.com/columnar-sql/relbin/internal/types"

// Aggr is the e_aggr variant: an aggregate function call over zero, one or
// two argument expressions, with the same distinct/no-nil flags as e_func
// (spec.md §3 "e_func/e_aggr", §4.1 "e_aggr").
type Aggr struct {
	Base
	Sub          *Subfunction
	Arg          Expression   // nil for a niladic aggregate like COUNT(*)
	Arg2         Expression   // set only for two-argument aggregates
	NeedDistinct bool
	NeedNoNil    bool
}

func NewAggr(sub *Subfunction, arg Expression, nullable bool) *Aggr {
	return &Aggr{Base: newBase(CardAggr, nullable), Sub: sub, Arg: arg}
}

func NewAggr2(sub *Subfunction, arg, arg2 Expression, nullable bool) *Aggr {
	return &Aggr{Base: newBase(CardAggr, nullable), Sub: sub, Arg: arg, Arg2: arg2}
}

func (a *Aggr) Subtype() types.Subtype { return a.Sub.ReturnType }
func (a *Aggr) exprTag() string        { return "e_aggr" }

// IsBinary reports whether this is a two-argument aggregate (e.g.
// CORR(x, y)), which the lowering reverses-and-pairs (spec.md §4.1).
func (a *Aggr) IsBinary() bool { return a.Arg2 != nil }
