// Package psm implements the persistent-stored-module compiler: it lowers
// procedural SQL blocks and CREATE FUNCTION/TRIGGER bodies into PSM-typed
// expression lists (spec.md §4.4, the core's second-largest module at
// ~20% of its budget).
package psm

import (
	"github.com/columnar-sql/relbin/internal/catalog"
	"github.com/columnar-sql/relbin/internal/expr"
	"github.com/columnar-sql/relbin/internal/rel"
	"github.com/columnar-sql/relbin/internal/types"
)

// StmtKind enumerates the procedural-statement shapes sequential_block
// dispatches on (spec.md §4.4.1). The lexer/parser producing the
// symbol/dlist tree is out of scope (spec.md §1); StmtKind is this
// package's entry contract in place of that tree, carrying exactly the
// positional fields §4.4.1 documents for each construct.
type StmtKind int

const (
	StmtSet StmtKind = iota
	StmtDeclare
	StmtCreateLocalTable
	StmtWhile
	StmtIf
	StmtCaseSearched
	StmtCaseSimple
	StmtReturn
	StmtSelectInto
	StmtRelUpdate // INSERT/UPDATE/DELETE/COPY
	StmtCall
)

// WhenThen is one WHEN ... THEN ... arm of a searched or simple CASE.
type WhenThen struct {
	Cond  expr.Expression // searched CASE: the condition; simple CASE: the comparand
	Block []Stmt
}

// Stmt is one statement of a procedural block, tagged by Kind; only the
// fields relevant to Kind are populated, mirroring how rel_psm.c walks a
// single dlist shape per statement type (spec.md §4.4.1).
type Stmt struct {
	Kind StmtKind

	// StmtSet
	VarName  string
	SetValue expr.Expression

	// StmtDeclare
	DeclNames []string
	DeclType  types.Subtype

	// StmtCreateLocalTable
	LocalTable *catalog.Table

	// StmtWhile / StmtIf
	Cond expr.Expression
	Then []Stmt
	Else []Stmt // StmtIf: ELSE/ELSIF chain already flattened by the caller

	// StmtCaseSearched / StmtCaseSimple
	CaseValue expr.Expression // StmtCaseSimple only
	Whens     []WhenThen
	CaseElse  []Stmt

	// StmtReturn
	ReturnValue expr.Expression
	ReturnRel   *rel.Node // set when returning a table-shaped relation

	// StmtSelectInto
	IntoTargets []string
	SelectRel   *rel.Node

	// StmtRelUpdate
	UpdateRel *rel.Node

	// StmtCall
	CallExpr expr.Expression
	// CallIsScalar is true when CallExpr resolves to a scalar-returning
	// function, which may not stand alone as a procedure call
	// (spec.md §4.4.1 "CALL").
	CallIsScalar bool
}
