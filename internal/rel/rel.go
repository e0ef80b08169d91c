// Package rel implements the relational operator model: basetable,
// table-function, join (inner/left/right/full/semi/anti), select,
// project, groupby, topn, sample, set (union/except/inter), DML
// (insert/update/delete), ddl (spec.md §3 "Relational operator", §4.2).
package rel

import (
	"github.com/columnar-sql/relbin/internal/catalog"
	"github.com/columnar-sql/relbin/internal/expr"
	"github.com/columnar-sql/relbin/internal/prop"
)

// Op enumerates the relational operator shapes.
type Op int

const (
	OpBaseTable Op = iota
	OpTableFunc
	OpJoin
	OpSelect
	OpProject
	OpGroupBy
	OpTopN
	OpSample
	OpSet
	OpDML
	OpDDL
)

// JoinKind distinguishes the seven join shapes, cross join included
// (spec.md §1).
type JoinKind int

const (
	JoinInner JoinKind = iota
	JoinLeft
	JoinRight
	JoinFull
	JoinSemi
	JoinAnti
	JoinCross
)

// SetKind distinguishes the three set operations.
type SetKind int

const (
	SetUnion SetKind = iota
	SetExcept
	SetInter
)

// DMLKind distinguishes INSERT/UPDATE/DELETE.
type DMLKind int

const (
	DMLInsert DMLKind = iota
	DMLUpdate
	DMLDelete
)

// UpdFlag packs the UPD_COMP / UPD_LOCKED bits (spec.md §3
// "Relational operator", §4.3.10).
type UpdFlag int

const (
	UpdNone   UpdFlag = 0
	UpdComp   UpdFlag = 1 << 0 // composite: carries an extra prefix source on .l.l
	UpdLocked UpdFlag = 1 << 1 // appends are fake, e.g. COPY INTO's bulk path
)

// DDLKind distinguishes the op_ddl sub-kinds (spec.md §4.3.12).
type DDLKind int

const (
	DDLOutput DDLKind = iota
	DDLList
	DDLSeq
	DDLTrans
	DDLCatalog
	DDLCatalogTable
	DDLCatalog2
)

// Node is a relational operator node. L/R are child relations; Exps holds
// op-dependent content (projections, predicates, group-by keys, ORDER BY
// keys, DML column assignments); DDLKind and UpdFlag carry the DDL
// sub-kind and the UPD bits.
type Node struct {
	Op Op
	L  *Node
	R  *Node

	Exps  []expr.Expression // primary expression list (meaning is op-dependent)
	Order []OrderKey        // op_project's ORDER BY list

	// Distinct marks an op_project as SELECT DISTINCT, consulted by the
	// TOP-N/ORDER BY/DISTINCT fusion of spec.md §4.3.9.
	Distinct bool

	JoinKind JoinKind
	SetKind  SetKind
	DMLKind  DMLKind
	UpdFlag  UpdFlag
	DDLKind  DDLKind

	// BaseTable is set for OpBaseTable.
	BaseTable *catalog.Table

	// TableFunc is set for OpTableFunc: the function being evaluated and
	// its argument expressions (already resolved).
	TableFunc     *catalog.Function
	TableFuncArgs []expr.Expression

	// TopN carries the (limit, offset) pair fused upward into op_project
	// (spec.md §4.2 "its .exps also carries TOP-N").
	TopN *TopNSpec

	// DML carries DML-specific data: the target table lives on L as a
	// basetable (or, for UpdComp, on L.L), the source relation on R.
	DML *DMLSpec

	// DDL carries the argument payload for an op_ddl node.
	DDL *DDLSpec

	// Card is a cardinality summary (estimated row count), the sole input
	// to the partition marker.
	Card int64

	// groupKeys holds op_groupby's grouping keys (spec.md §4.2 "op_groupby
	// carries aggregates in exps and grouping keys in .r").
	groupKeys []expr.Expression

	props  prop.List
	shared bool // "rel_is_ref": set by MarkShared; only shared nodes are memoized by SubrelBin
}

// OrderKey is one ORDER BY term of an op_project.
type OrderKey struct {
	Expr      expr.Expression
	Ascending bool
}

// TopNSpec is the (limit, offset) pair of an op_topn / fused op_project.
type TopNSpec struct {
	Limit  expr.Expression
	Offset expr.Expression // nil when there is no OFFSET
}

// DMLSpec is the payload of an OpDML node.
type DMLSpec struct {
	Table *catalog.Table
	// Assignments is non-nil for UPDATE: one entry per updated column.
	Assignments []ColAssign
}

// ColAssign pairs a target column with its new-value expression
// (spec.md §4.3.10 "UPDATE").
type ColAssign struct {
	Column string
	Value  expr.Expression
}

// DDLSpec is the payload of an OpDDL node.
type DDLSpec struct {
	// Args is built from rel.Exps by exp_bin against no left/right/group
	// relation (spec.md §4.3.12).
	Args []expr.Expression
}

func (n *Node) Props() *prop.List { return &n.props }
func (n *Node) IsShared() bool    { return n.shared }
func (n *Node) MarkShared()       { n.shared = true }

// IsRelRef lets rel.Node be carried inside an expr.Psm's PsmRel payload.
func (n *Node) IsRelRef() {}

// Schema returns the output column names of the node, derived from Exps
// the way every operator's exps defines its output schema (spec.md §3
// "Binding site").
func (n *Node) Schema() []string {
	names := make([]string, 0, len(n.Exps))
	for _, e := range n.Exps {
		names = append(names, e.Name())
	}
	return names
}
