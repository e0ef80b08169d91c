package rel

import (
	"github.com/columnar-sql/relbin/internal/catalog"
	"github.com/columnar-sql/relbin/internal/expr"
)

// NewBaseTable builds an op_basetable node over a catalog table, with the
// output columns re-aliased by exps (spec.md §4.3.2).
func NewBaseTable(t *catalog.Table, exps []expr.Expression) *Node {
	return &Node{Op: OpBaseTable, BaseTable: t, Exps: exps, Card: t.RowCount}
}

// NewTableFunc builds an op_table node over a table function call
// (spec.md §4.3.2 "table").
func NewTableFunc(fn *catalog.Function, args []expr.Expression, exps []expr.Expression) *Node {
	return &Node{Op: OpTableFunc, TableFunc: fn, TableFuncArgs: args, Exps: exps}
}

// NewJoin builds an op_join node with the given predicates in Exps.
func NewJoin(kind JoinKind, l, r *Node, preds []expr.Expression) *Node {
	return &Node{Op: OpJoin, JoinKind: kind, L: l, R: r, Exps: preds, Card: estimateJoinCard(kind, l, r)}
}

func estimateJoinCard(kind JoinKind, l, r *Node) int64 {
	if l == nil || r == nil {
		return 0
	}
	switch kind {
	case JoinSemi, JoinAnti:
		return l.Card
	default:
		return l.Card + r.Card
	}
}

// NewSelect builds an op_select node; exps is a conjunction of predicates
// (spec.md §4.2 "op_select's exps is a conjunction").
func NewSelect(child *Node, preds []expr.Expression) *Node {
	card := int64(0)
	if child != nil {
		card = child.Card
	}
	return &Node{Op: OpSelect, L: child, Exps: preds, Card: card}
}

// NewProject builds an op_project node. order/topn may be attached
// afterward via WithOrder/WithTopN (spec.md §4.2 "op_project's exps is the
// output column list").
func NewProject(child *Node, exps []expr.Expression) *Node {
	card := int64(0)
	if child != nil {
		card = child.Card
	}
	return &Node{Op: OpProject, L: child, Exps: exps, Card: card}
}

func (n *Node) WithOrder(order []OrderKey) *Node {
	n.Order = order
	return n
}

func (n *Node) WithTopN(spec *TopNSpec) *Node {
	n.TopN = spec
	return n
}

func (n *Node) WithDistinct(distinct bool) *Node {
	n.Distinct = distinct
	return n
}

// NewGroupBy builds an op_groupby node: aggregates in exps, grouping keys
// in order (reusing OrderKey-less grouping via the .r slot from spec.md,
// represented here as GroupKeys).
func NewGroupBy(child *Node, aggregates []expr.Expression, groupKeys []expr.Expression) *Node {
	n := &Node{Op: OpGroupBy, L: child, Exps: aggregates, groupKeys: groupKeys}
	if child != nil {
		n.Card = child.Card
	}
	return n
}

func (n *Node) GroupKeys() []expr.Expression { return n.groupKeys }

// NewTopN builds a standalone op_topn node (used when the topn cannot be
// fused into the project directly, e.g. above a DISTINCT).
func NewTopN(child *Node, spec *TopNSpec) *Node {
	return &Node{Op: OpTopN, L: child, TopN: spec}
}

// NewSample builds an op_sample node.
func NewSample(child *Node, size expr.Expression) *Node {
	return &Node{Op: OpSample, L: child, Exps: []expr.Expression{size}}
}

// NewSet builds a set-operation node (UNION/EXCEPT/INTERSECT).
func NewSet(kind SetKind, l, r *Node, outputExps []expr.Expression) *Node {
	return &Node{Op: OpSet, SetKind: kind, L: l, R: r, Exps: outputExps}
}

// NewDML builds a DML relation. basetable is the write target (on L);
// source is the relation producing input rows (on R).
func NewDML(kind DMLKind, basetable, source *Node, spec *DMLSpec, flag UpdFlag) *Node {
	return &Node{Op: OpDML, DMLKind: kind, L: basetable, R: source, DML: spec, UpdFlag: flag}
}

// NewDDL builds a DDL relation.
func NewDDL(kind DDLKind, args []expr.Expression) *Node {
	return &Node{Op: OpDDL, DDLKind: kind, DDL: &DDLSpec{Args: args}}
}
