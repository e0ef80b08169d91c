// Package expr implements the expression model: a tagged union of
// e_atom | e_convert | e_func | e_aggr | e_column | e_cmp | e_psm
// (spec.md §3 "Expression"). Each tag is its own Go type implementing the
// Expression interface, per the design note in spec.md §9 ("natural fit
// for a discriminated sum type with one variant per tag").
package expr

import (
	"github.com/columnar-sql/relbin/internal/prop"
	"github.com/columnar-sql/relbin/internal/types"
)

// Card is the cardinality class of an expression's result.
type Card int

const (
	CardAtom Card = iota
	CardAggr
	CardMulti
	CardRow
)

// CmpFlag distinguishes the compare kinds an e_cmp can carry. Per the
// design notes, this is its own enum rather than an int smuggled inside a
// generic flag field.
type CmpFlag int

const (
	CmpEqual CmpFlag = iota
	CmpLT
	CmpLE
	CmpGT
	CmpGE
	CmpNotEqual
	CmpIn
	CmpNotIn
	CmpOr
	CmpLike
	CmpNotLike
	CmpILike
	CmpNotILike
	CmpFilter
	CmpAll
	// CmpRange combines with an inclusion mask; use Between for clarity.
	CmpRange
)

// RangeInclusion packs the "include lower/upper bound" bits for a BETWEEN
// style range compare (spec.md §4.1 "range is a pair of bounds with
// inclusion flags packed into the comparison kind").
type RangeInclusion int

const (
	IncludeNone  RangeInclusion = 0
	IncludeLower RangeInclusion = 1 << 0
	IncludeUpper RangeInclusion = 1 << 1
	IncludeBoth  = IncludeLower | IncludeUpper
)

// Negate returns the logical complement of a comparison (= and <>, < and
// >=, ...); swapping the two sides of a compare is Swap's job, not this.
func (f CmpFlag) Negate() CmpFlag {
	switch f {
	case CmpEqual:
		return CmpNotEqual
	case CmpNotEqual:
		return CmpEqual
	case CmpLT:
		return CmpGE
	case CmpLE:
		return CmpGT
	case CmpGT:
		return CmpLE
	case CmpGE:
		return CmpLT
	default:
		return f
	}
}

// Swap returns the comparison kind equivalent to evaluating "r OP l"
// instead of "l OP r" (spec.md §4.1 "swap_compare").
func (f CmpFlag) Swap() CmpFlag {
	switch f {
	case CmpLT:
		return CmpGT
	case CmpLE:
		return CmpGE
	case CmpGT:
		return CmpLT
	case CmpGE:
		return CmpLE
	default:
		return f
	}
}

// Expression is the interface every expression variant satisfies.
type Expression interface {
	// Name is the expression's optional output column name.
	Name() string
	// RName is the optional relation-qualifier (e.g. a table alias).
	RName() string
	SetName(name, rname string)
	// Cardinality classifies the expression's result shape.
	Cardinality() Card
	// Nullable reports whether the expression's result may be null.
	Nullable() bool
	SetNullable(bool)
	// Props returns the attached property list (spec.md §4.1 Component 1).
	Props() *prop.List

	exprTag() string
}

// Base carries the attributes shared by every expression variant: optional
// name/rname, cardinality class, nullability, and property list
// (spec.md §3 "Expression").
type Base struct {
	name, rname string
	card        Card
	nullable    bool
	props       prop.List
}

func (b *Base) Name() string  { return b.name }
func (b *Base) RName() string { return b.rname }
func (b *Base) SetName(name, rname string) {
	b.name, b.rname = name, rname
}
func (b *Base) Cardinality() Card   { return b.card }
func (b *Base) Nullable() bool      { return b.nullable }
func (b *Base) SetNullable(n bool)  { b.nullable = n }
func (b *Base) Props() *prop.List   { return &b.props }

func newBase(card Card, nullable bool) Base {
	return Base{card: card, nullable: nullable}
}

// Subtyped is implemented by expressions that carry a concrete output
// subtype (everything except e_psm control-flow nodes).
type Subtyped interface {
	Expression
	Subtype() types.Subtype
}
