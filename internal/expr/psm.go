package expr

import "github.com/columnar-sql/relbin/internal/types"

// PsmKind distinguishes the PSM control-flow variants carried by e_psm
// (spec.md §3 "e_psm").
type PsmKind int

const (
	PsmReturn PsmKind = iota
	PsmIf
	PsmWhile
	PsmSet
	PsmVar
	PsmRel
	PsmException
)

// RelRef is implemented by rel.Node so e_psm can carry a relational
// sub-plan (PSM_REL, e.g. a local CREATE TABLE or an INSERT/UPDATE/DELETE
// wrapped as a value) without expr importing the rel package.
type RelRef interface {
	IsRelRef()
}

// Psm is the e_psm variant, a tagged union itself (PSM_RETURN | PSM_IF |
// PSM_WHILE | PSM_SET | PSM_VAR | PSM_REL | PSM_EXCEPTION). Only the
// fields relevant to Kind are populated; this mirrors how rel_psm.c
// reuses one sql_exp shape for every PSM node but, per the design notes
// (spec.md §9), each Kind's payload is named instead of smuggled into a
// generic union.
type Psm struct {
	Base
	Kind PsmKind

	// PsmReturn
	ReturnValue Expression

	// PsmIf / PsmWhile
	Cond Expression
	Then []Expression
	Else []Expression // PsmIf only

	// PsmSet / PsmVar
	VarName string
	SetValue Expression // PsmSet
	VarType  types.Subtype // PsmVar

	// PsmRel
	Rel RelRef

	// PsmException
	SQLState string
	Message  string
}

func NewReturn(value Expression) *Psm {
	return &Psm{Base: newBase(CardRow, false), Kind: PsmReturn, ReturnValue: value}
}

func NewIf(cond Expression, then, els []Expression) *Psm {
	return &Psm{Base: newBase(CardRow, false), Kind: PsmIf, Cond: cond, Then: then, Else: els}
}

func NewWhile(cond Expression, body []Expression) *Psm {
	return &Psm{Base: newBase(CardRow, false), Kind: PsmWhile, Cond: cond, Then: body}
}

func NewSet(varName string, value Expression) *Psm {
	return &Psm{Base: newBase(CardRow, false), Kind: PsmSet, VarName: varName, SetValue: value}
}

func NewVar(varName string, sub types.Subtype) *Psm {
	return &Psm{Base: newBase(CardRow, false), Kind: PsmVar, VarName: varName, VarType: sub}
}

func NewRel(rel RelRef) *Psm {
	return &Psm{Base: newBase(CardRow, false), Kind: PsmRel, Rel: rel}
}

func NewException(sqlstate, message string) *Psm {
	return &Psm{Base: newBase(CardRow, false), Kind: PsmException, SQLState: sqlstate, Message: message}
}

func (p *Psm) exprTag() string { return "e_psm" }
