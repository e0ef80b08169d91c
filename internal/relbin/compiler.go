package relbin

import (
	"github.com/columnar-sql/relbin/internal/partition"
	"github.com/columnar-sql/relbin/internal/planner"
	"github.com/columnar-sql/relbin/internal/rel"
	"github.com/columnar-sql/relbin/internal/stmt"
	"github.com/columnar-sql/relbin/internal/types"
)

// Compiler holds the mutable planner.Context across one rel_bin pass and
// implements the recursive lowering of spec.md §4.3.
type Compiler struct {
	ctx *planner.Context
	// lastQueryType records the sql.type classification computed by the
	// most recent DDL lowering (spec.md §4.3.12).
	lastQueryType QueryType
	// inAggr is non-zero while lowering an e_aggr's argument, consulted by
	// expBinColumn's query-stack bookkeeping (spec.md §4.5).
	inAggr int
}

// New builds a Compiler over an existing compilation context (shared with
// the PSM compiler when a PSM_REL wraps a relation, spec.md §4.4.1).
func New(ctx *planner.Context) *Compiler { return &Compiler{ctx: ctx} }

// Compile is the public entry point: rel_bin(rel) -> statement
// (spec.md §4.3.1). It wraps the lowering in an opentracing span
// (SPEC_FULL.md "Ambient stack — Tracing"), runs the partition marker
// over the tree first (spec.md §2 flow "rel_partition marks a base
// table -> rel_bin lowers", Component 5), and wraps the final result in
// st_output for read queries (spec.md §6); DML and DDL results are
// returned without that wrapper.
func (c *Compiler) Compile(r *rel.Node) (*stmt.Statement, error) {
	span := c.ctx.StartSpan("rel_bin")
	defer span.Finish()

	partition.Mark(r)
	readQuery := r == nil || (r.Op != rel.OpDML && r.Op != rel.OpDDL)

	rel, err := c.SubrelBin(r)
	if err != nil {
		return nil, err
	}
	list := rel.List()
	if !readQuery {
		if len(list) == 1 {
			return list[0], nil
		}
		return stmt.List(list...), nil
	}
	if len(list) == 1 {
		return stmt.Output(list[0]), nil
	}
	return stmt.Output(stmt.List(list...)), nil
}

// SubrelBin dispatches on r.Op, consulting the refs memo table first
// (spec.md §4.3.1): if r is a shared sub-plan already lowered, its
// memoized Relation is returned directly.
func (c *Compiler) SubrelBin(r *rel.Node) (*Relation, error) {
	if r == nil {
		return NewRelation(), nil
	}
	leave, err := c.ctx.Enter("subrel_bin")
	if err != nil {
		return nil, err
	}
	defer leave()

	if r.IsShared() {
		if cached, ok := c.ctx.Refs.Lookup(r); ok {
			return cached.(*Relation), nil
		}
	}

	c.trackShape(r)

	var out *Relation
	switch r.Op {
	case rel.OpBaseTable:
		out, err = c.binBaseTable(r)
	case rel.OpTableFunc:
		out, err = c.binTableFunc(r)
	case rel.OpJoin:
		out, err = c.binJoin(r)
	case rel.OpSelect:
		out, err = c.binSelect(r)
	case rel.OpProject:
		out, err = c.binProject(r)
	case rel.OpGroupBy:
		out, err = c.binGroupBy(r)
	case rel.OpTopN:
		out, err = c.binTopN(r)
	case rel.OpSample:
		out, err = c.binSample(r)
	case rel.OpSet:
		out, err = c.binSet(r)
	case rel.OpDML:
		out, err = c.binDML(r)
	case rel.OpDDL:
		out, err = c.binDDL(r)
	default:
		out, err = nil, unknownOp(r.Op)
	}
	if err != nil {
		return nil, err
	}
	if r.IsShared() {
		c.ctx.Refs.Remember(r, out)
	}
	return out, nil
}

// nodeShape is the acyclic, hashable summary of a rel.Node tracked by
// arena.RefTable.TrackShape: just the operator kind and output column
// names, never the node or its children (spec.md §9 "DAGs are memoized by
// pointer before recursing into children").
type nodeShape struct {
	Op     rel.Op
	Schema []string
}

// trackShape flags a sub-plan that is structurally identical to one
// already lowered under a different pointer — not caught by the
// pointer-identity refs memo above, since only literal DAG sharing is
// (spec.md §4.3.1) — as a common-subexpression diagnostic, logged but
// never changing the lowering itself.
func (c *Compiler) trackShape(r *rel.Node) {
	if c.ctx.Refs.TrackShape(nodeShape{Op: r.Op, Schema: r.Schema()}) {
		c.ctx.Log().WithField("op", r.Op).Debug("rel_bin: structurally duplicate sub-plan lowered under a distinct pointer")
	}
}

func constTrue() types.Atom {
	return types.NewAtom(types.NewSubtype(types.KindBoolean), int64(1))
}

func nilAtomFor(col *stmt.Statement) types.Atom {
	return types.NullAtom(col.Subtype)
}
