package expr

import "github.com/columnar-sql/relbin/internal/types"

// Cmp is the e_cmp variant: l, r, an optional second bound f (for
// BETWEEN/range), and a flag distinguishing simple compare, range, IN,
// OR-tree, LIKE/ILIKE with NOT, generic filter, and join-index equality
// (spec.md §3 "e_cmp").
type Cmp struct {
	Base
	L, R, F Expression // F is the second bound, set only when Flag == CmpRange
	Flag    CmpFlag
	// Inclusion packs the BETWEEN bound-inclusion bits for CmpRange.
	Inclusion RangeInclusion
	// Anti is OR-ed onto the statement flag for negated semantics
	// (spec.md §4.1 "An ANTI flag is OR-ed onto the statement flag").
	Anti bool
	// IsJoinIdx marks this comparison as backed by PROP_JOINIDX; rel_bin's
	// join lowering bypasses evaluation for these (spec.md §4.3.3).
	IsJoinIdx bool
}

func NewCmp(l, r Expression, flag CmpFlag) *Cmp {
	return &Cmp{Base: newBase(CardAtom, false), L: l, R: r, Flag: flag}
}

func NewBetween(l, lo, hi Expression, inclusion RangeInclusion) *Cmp {
	return &Cmp{Base: newBase(CardAtom, false), L: l, R: lo, F: hi, Flag: CmpRange, Inclusion: inclusion}
}

func NewOr(l, r Expression) *Cmp {
	return &Cmp{Base: newBase(CardAtom, false), L: l, R: r, Flag: CmpOr}
}

func (c *Cmp) Subtype() types.Subtype { return types.NewSubtype(types.KindBoolean) }
func (c *Cmp) exprTag() string        { return "e_cmp" }

// SwapSides exchanges L and R and inverts the comparison direction
// (spec.md §4.1 "Swapped sides invert the comparison direction via
// swap_compare").
func (c *Cmp) SwapSides() {
	c.L, c.R = c.R, c.L
	c.Flag = c.Flag.Swap()
}
