// Package querystack implements the query-stack bookkeeping used during
// correlated-subquery planning: a stack of outer relations, enforcing
// grouping/aggregation rules across outer references (spec.md §4.5).
package querystack

import (
	"github.com/columnar-sql/relbin/internal/expr"
	"github.com/columnar-sql/relbin/internal/rel"
)

// Entry is one level of the query stack: the outer relation currently
// being compiled, plus the bookkeeping query_outer_used_exp needs.
type Entry struct {
	Rel      *rel.Node
	SQLState string
	LastUsed expr.Expression
	UsedCard expr.Card
	// Grouped becomes true once an outer reference has been used to build
	// a group-by key from this (non-grouped) outer relation (spec.md
	// §4.5 "mark groupby=1").
	Grouped bool
	// GroupBy is true when the outer relation this entry represents is
	// itself the target of a GROUP BY in the current subquery.
	GroupBy bool
}

// Stack is the outer-relation stack consulted by exp_bin while lowering a
// correlated subquery.
type Stack struct {
	entries []*Entry
}

// New returns an empty query stack.
func New() *Stack { return &Stack{} }

// Push enters a new outer relation scope.
func (s *Stack) Push(r *rel.Node) *Entry {
	e := &Entry{Rel: r}
	s.entries = append(s.entries, e)
	return e
}

// Pop leaves the innermost outer relation scope.
func (s *Stack) Pop() {
	if len(s.entries) > 0 {
		s.entries = s.entries[:len(s.entries)-1]
	}
}

// Depth returns the number of outer scopes currently pushed.
func (s *Stack) Depth() int { return len(s.entries) }

// At returns the entry `depth` levels up from the innermost scope (0 is
// the immediately enclosing relation).
func (s *Stack) At(depth int) *Entry {
	idx := len(s.entries) - 1 - depth
	if idx < 0 || idx >= len(s.entries) {
		return nil
	}
	return s.entries[idx]
}

// Frame tells QueryOuterUsedExp whether the expression currently being
// built lives inside an aggregate call (InAggr) or a GROUP BY (InGroupBy);
// the planner context supplies this as `f` per spec.md §4.5 — modeled here
// as a caller-supplied value rather than a global, since the compiler has
// no ambient mutable session state (spec.md §9 "pass an explicit mutable
// context struct").
type Frame struct {
	InAggr    bool
	InGroupBy bool
}

// ErrGroupedAggrConflict is returned by QueryOuterUsedExp when an outer
// reference is read inside an aggregate while its owning scope is already
// marked grouped (spec.md §4.5: "reject with -1").
var ErrGroupedAggrConflict = &conflictError{}

type conflictError struct{}

func (*conflictError) Error() string {
	return "aggregate over an outer reference whose scope is already grouped"
}

// QueryOuterUsedExp implements the rule of spec.md §4.5: when an outer
// column reference at the given depth is resolved, validate and record
// the usage against the outer stack entry.
func QueryOuterUsedExp(s *Stack, depth int, e expr.Expression, f Frame) error {
	entry := s.At(depth)
	if entry == nil {
		return nil
	}
	if f.InAggr && entry.Grouped {
		return ErrGroupedAggrConflict
	}
	if f.InGroupBy && !entry.GroupBy {
		entry.Grouped = true
	}
	entry.LastUsed = e
	entry.UsedCard = e.Cardinality()
	return nil
}

// Assert checks the final invariant of spec.md §4.5: "either the outer is
// ungrouped and no aggregate needed, or it is grouped and only group
// keys/aggregates may be read." Returns true when the invariant holds for
// entry given whether the currently-read expression is itself an
// aggregate or group key.
func Assert(entry *Entry, exprIsAggrOrGroupKey bool) bool {
	if entry == nil {
		return true
	}
	if !entry.Grouped {
		return true
	}
	return exprIsAggrOrGroupKey
}
