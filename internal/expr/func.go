package expr

import "github.com/columnar-sql/relbin/internal/types"

// Subfunction is the resolved binding of a function call to its concrete
// signature, produced by name resolution (out of scope here) and carried
// unchanged through lowering.
type Subfunction struct {
	Name       string
	ParamTypes []types.Subtype
	ReturnType types.Subtype
	IsAggregate bool
	// IsOpaqueLeaf marks a function whose lowering the planner does not
	// specialize (e.g. an XML value-constructor): it always lowers to a
	// plain st_Nop over its evaluated arguments (SPEC_FULL.md "rel_xml.c
	// leaf helper contract").
	IsOpaqueLeaf bool
}

// Identity is the well-known identity function, which lowers to st_mirror
// instead of st_Nop (spec.md §4.1 "e_func regular").
var Identity = &Subfunction{Name: "identity", ParamTypes: nil, IsOpaqueLeaf: false}

func (f *Subfunction) IsIdentity() bool { return f.Name == "identity" }

// OrderTerm is one ORDER BY key of a windowed function call.
type OrderTerm struct {
	Expr      Expression
	Ascending bool
}

// Func is the e_func variant: a resolved sub-function binding, its
// argument list, an optional ORDER BY list for windowed calls, and the
// need_distinct/need_no_nil flags (spec.md §3 "e_func/e_aggr").
type Func struct {
	Base
	Sub          *Subfunction
	Args         []Expression
	OrderBy      []OrderTerm
	NeedDistinct bool
	NeedNoNil    bool
	GroupBy      []Expression // non-nil only for a windowed call's PARTITION BY
}

func NewFunc(sub *Subfunction, args []Expression, nullable bool) *Func {
	return &Func{Base: newBase(CardAtom, nullable), Sub: sub, Args: args}
}

func (f *Func) Subtype() types.Subtype { return f.Sub.ReturnType }
func (f *Func) exprTag() string        { return "e_func" }

// IsWindowed reports whether the call carries an ORDER BY (spec.md §4.1
// "e_func windowed").
func (f *Func) IsWindowed() bool { return len(f.OrderBy) > 0 }
