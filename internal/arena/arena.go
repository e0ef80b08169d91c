// Package arena implements the per-query bump allocator that owns every
// expression, relational and statement node created while compiling one
// query (spec.md §3 "Ownership", §5 "Shared resources").
package arena

import (
	"github.com/google/uuid"
)

// Arena owns every node allocated during the compilation of a single query.
// Nodes are never freed individually; the whole arena is dropped together
// at query end. The Arena also carries the id used to correlate the log
// lines and tracing spans of one compilation (see DESIGN.md, google/uuid).
type Arena struct {
	ID uuid.UUID

	atoms int
	exprs int
	rels  int
	stmts int
}

// New creates a fresh arena for one query compilation.
func New() *Arena {
	return &Arena{ID: uuid.New()}
}

// CountAtom/CountExpr/CountRel/CountStmt are bookkeeping counters used by
// tests and diagnostics to assert the arena is actually being exercised;
// they are not a capacity limit.
func (a *Arena) CountAtom() { a.atoms++ }
func (a *Arena) CountExpr() { a.exprs++ }
func (a *Arena) CountRel()  { a.rels++ }
func (a *Arena) CountStmt() { a.stmts++ }

// Stats reports the number of nodes of each kind allocated so far.
type Stats struct {
	Atoms, Exprs, Rels, Stmts int
}

func (a *Arena) Stats() Stats {
	return Stats{Atoms: a.atoms, Exprs: a.exprs, Rels: a.rels, Stmts: a.stmts}
}
