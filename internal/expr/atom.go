package expr

import "github.com/columnar-sql/relbin/internal/types"

// AtomKind distinguishes the four e_atom variants (spec.md §3 "e_atom").
type AtomKind int

const (
	AtomLiteral AtomKind = iota
	AtomParam
	AtomValueList
	AtomPositional
)

// Atom is the e_atom variant: one of {literal atom, named parameter,
// value-list (for IN), positional argument}.
type Atom struct {
	Base
	Kind     AtomKind
	Literal  types.Atom   // AtomLiteral
	Param    string       // AtomParam: bind variable name
	Values   []types.Atom // AtomValueList
	Position int          // AtomPositional: ordinal of a "?" parameter
	subtype  types.Subtype
}

func NewLiteral(lit types.Atom) *Atom {
	a := &Atom{Base: newBase(CardAtom, lit.IsNull), Kind: AtomLiteral, Literal: lit.Dup(), subtype: lit.Subtype}
	return a
}

func NewParam(name string, sub types.Subtype, nullable bool) *Atom {
	return &Atom{Base: newBase(CardAtom, nullable), Kind: AtomParam, Param: name, subtype: sub}
}

func NewValueList(values []types.Atom, sub types.Subtype) *Atom {
	return &Atom{Base: newBase(CardMulti, false), Kind: AtomValueList, Values: values, subtype: sub}
}

func NewPositional(pos int, sub types.Subtype, nullable bool) *Atom {
	return &Atom{Base: newBase(CardAtom, nullable), Kind: AtomPositional, Position: pos, subtype: sub}
}

func (a *Atom) Subtype() types.Subtype { return a.subtype }
func (a *Atom) exprTag() string        { return "e_atom" }
