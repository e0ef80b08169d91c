// Package stmt implements the physical statement model produced by
// lowering: column-bat references, join/uselect/select2, aggr, const,
// mark, project, limit, sort, reorder, union/diff, exception, append,
// update-col (spec.md §3 "Statement", §4 Component 4).
package stmt

import (
	"github.com/columnar-sql/relbin/internal/catalog"
	"github.com/columnar-sql/relbin/internal/expr"
	"github.com/columnar-sql/relbin/internal/types"
)

// Type enumerates the physical operator shapes a Statement may carry.
type Type int

const (
	StBat Type = iota
	StIdxBat
	StBasetable
	StRsColumn
	StJoin
	StJoin2
	StJoinN
	StReleqjoin
	StReljoin
	StSemijoin
	StDiff
	StUnion
	StUselect
	StUselect2
	StSelect2
	StConst
	StProject
	StReverse
	StMark
	StMirror
	StOrder
	StReorder
	StOrdered
	StLimit
	StLimit2
	StSample
	StUnique
	StAggr
	StAggr2
	StAppend
	StUpdateCol
	StUpdateIdx
	StDelete
	StTableClear
	StNop
	StBinop
	StUnop
	StConvert
	StAtom
	StVar
	StList
	StAlias
	StException
	StCatalog
	StTrans
	StOutput
	StAffectedRows
	StTemp
	StGenGroup
)

var typeNames = [...]string{
	"bat", "idxbat", "basetable", "rscolumn", "join", "join2", "joinn",
	"releqjoin", "reljoin", "semijoin", "diff", "union", "uselect",
	"uselect2", "select2", "const", "project", "reverse", "mark", "mirror",
	"order", "reorder", "ordered", "limit", "limit2", "sample", "unique",
	"aggr", "aggr2", "append", "updatecol", "updateidx", "delete",
	"tableclear", "nop", "binop", "unop", "convert", "atom", "var", "list",
	"alias", "exception", "catalog", "trans", "output", "affectedrows",
	"temp", "gengroup",
}

// String renders the st_* operator name, e.g. "join" for StJoin.
func (t Type) String() string {
	if int(t) >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// CmpFlag mirrors expr.CmpFlag for statements produced by compare lowering
// (st_join/st_uselect/st_select2 all carry one).
type CmpFlag = expr.CmpFlag

// Statement is a node of the physical operator DAG. Every statement carries
// NrCols (its width) and a nullability/key flag (spec.md §3 "Invariants":
// "every statement carries nrcols ... a nullability/key flag"). The L/R/Third
// fields and List correspond to the op1..op4 child slots of the original
// design; which ones are populated is Type-dependent, exactly as the
// original's void* op1..op4 are Type-dependent (spec.md §3 "op1..op4 hold
// child statements or side data").
type Statement struct {
	Type Type

	L, R, Third *Statement
	// List holds a statement list for StList/multi-arg nodes such as
	// st_releqjoin's key-pair list or st_Nop's argument list (the
	// "op4.lval" slot of spec.md §3).
	List []*Statement

	NrCols int
	// Key is true for a single-value constant column (NrCols == 0) or an
	// output known to carry unique values; spec.md §3 invariant: "each
	// column-carrying statement either has nrcols > 0 (a BAT) or
	// nrcols == 0 && key (a single-value constant column)".
	Key      bool
	Nullable bool
	Subtype  types.Subtype

	Name, RName string

	// Flag carries the comparison kind of join/select-shaped statements;
	// the sort direction lives in Direction and the DDL sub-kind of
	// st_catalog/st_trans in DDLFlag.
	Flag CmpFlag
	// Anti marks a negated join/select (spec.md §4.1 "An ANTI flag is
	// OR-ed onto the statement flag for negated semantics"); on an
	// st_append it marks a fake append (UPD_LOCKED INSERT).
	Anti bool

	// Direction packs ascending/stable/include-bounds for StLimit/StOrder
	// (spec.md §4.3.9).
	Direction SortDirection

	Atom     types.Atom        // StAtom / StConst
	VarName  string            // StVar
	VarLevel int               // StVar binding depth; StMark OID seed
	Column   *catalog.Column   // StBat / StIdxBat leaf
	Table    *catalog.Table    // StBasetable / StDelete / StTableClear
	Func     *expr.Subfunction // StNop / StBinop / StUnop / StAggr[2]

	SQLState string // StException
	Message  string

	// DDLFlag carries the op_ddl sub-kind for StCatalog.
	DDLFlag int
}

// SortDirection packs the ascending/stable/include-bounds bits used by
// st_limit and st_order (spec.md §4.3.9 "direction packs ascending,
// stable, and optional including bounds").
type SortDirection struct {
	Ascending      bool
	Stable         bool
	IncludeBounds  bool
}

// NCols reports the output column width, defaulting to 1 for a bare
// scalar/leaf statement.
func (s *Statement) NCols() int {
	if s.NrCols == 0 {
		return 1
	}
	return s.NrCols
}

// IsConstCol reports the "nrcols == 0 && key" single-value-column shape.
func (s *Statement) IsConstCol() bool {
	return s.NrCols == 0 && s.Key
}
