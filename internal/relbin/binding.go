// Package relbin implements the relational->statement lowering ("rel_bin"
// in spec.md terms): the recursive compiler that turns a relational tree
// into a physical statement DAG (spec.md §4.3, the dominant module of the
// core, ~45% of its budget).
package relbin

import (
	"github.com/columnar-sql/relbin/internal/stmt"
)

// Relation is the lowered form of a rel.Node: an ordered list of output
// columns, each bound to the statement that produces it. bin_find_column
// (spec.md §3 "Binding site") is Relation.Find.
type Relation struct {
	Columns []Column
	// TID is the synthetic "%TID%" column every base-table lowering
	// includes (spec.md §3 "Invariants").
	TID *stmt.Statement
}

// Column pairs an output name/qualifier with the statement producing it.
type Column struct {
	Name, RName string
	Stmt        *stmt.Statement
}

// NewRelation builds an empty lowered relation.
func NewRelation() *Relation { return &Relation{} }

// Add appends a bound output column.
func (r *Relation) Add(name, rname string, s *stmt.Statement) {
	r.Columns = append(r.Columns, Column{Name: name, RName: rname, Stmt: s})
}

// Find implements bin_find_column: look up a column first by (rname,
// cname), falling back to a bare name match when rname is empty or
// unqualified lookups are in play (spec.md §4.1 "e_column").
func (r *Relation) Find(rname, cname string) (*stmt.Statement, bool) {
	if r == nil {
		return nil, false
	}
	for _, c := range r.Columns {
		if cname == c.Name && (rname == "" || rname == c.RName) {
			return c.Stmt, true
		}
	}
	return nil, false
}

// List returns every bound statement in output order, the shape
// st_project and st_list construction need.
func (r *Relation) List() []*stmt.Statement {
	out := make([]*stmt.Statement, len(r.Columns))
	for i, c := range r.Columns {
		out[i] = c.Stmt
	}
	return out
}

// FirstColumn returns the statement of the first bound column, used by
// cartesian-join fallback and EXCEPT/INTERSECT group alignment
// (spec.md §4.3.3, §4.3.7).
func (r *Relation) FirstColumn() *stmt.Statement {
	if len(r.Columns) == 0 {
		return nil
	}
	return r.Columns[0].Stmt
}

// Rename re-aliases every column of r to the names carried by exps,
// positionally (stmt_rename, spec.md §4.3.8 "Re-alias with stmt_rename to
// preserve user-visible names").
func (r *Relation) Rename(names []struct{ Name, RName string }) *Relation {
	out := NewRelation()
	for i, c := range r.Columns {
		if i < len(names) {
			out.Add(names[i].Name, names[i].RName, c.Stmt)
		} else {
			out.Add(c.Name, c.RName, c.Stmt)
		}
	}
	out.TID = r.TID
	return out
}

// Grouping carries the grp argument to exp_bin: a finished grouping
// statement plus its .ext extent column for group-key joins
// (spec.md §4.1 "if a group is present, join-through grp.ext", §4.3.8).
type Grouping struct {
	// Group is the grp_done-finalized grouping statement.
	Group *stmt.Statement
	// Ext is the per-group representative OID extent used to join group
	// keys back to their original rows (spec.md §4.3.8).
	Ext *stmt.Statement
	// Keys maps a grouping key's bound statement by (rname,cname) so
	// exp_bin can find it directly without rejoining through Ext
	// (spec.md §4.3.8 "Grouping keys referenced by downstream expressions
	// can be found either in the grouping-exp list or by
	// stmt_join(g.ext, col, cmp_equal)").
	Keys *Relation
}
