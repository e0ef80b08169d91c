package planner

import (
	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"

	"github.com/columnar-sql/relbin/internal/arena"
	"github.com/columnar-sql/relbin/internal/catalog"
	"github.com/columnar-sql/relbin/internal/planerr"
	"github.com/columnar-sql/relbin/internal/querystack"
)

// Context is the single mutable object threaded through rel_bin and the
// PSM compiler. It replaces every piece of global mutable session state
// the original carries: current schema, variable stack, parameter list,
// the refs memo table, and the cascade re-entry guard (spec.md §5, §9).
type Context struct {
	Config  Config
	Catalog *catalog.Catalog
	Arena   *arena.Arena
	Refs    *arena.RefTable

	// CurrentSchema is switched by rel_create_func while compiling a
	// function body in its own schema (spec.md §4.4.2 step 6) and
	// restored afterward by the caller.
	CurrentSchema string

	// Frames is the variable/parameter stack: stack_push_var/table,
	// stack_pop_frame, stack_find_var/type/frame (spec.md §6).
	Frames *FrameStack

	// QueryStack is the outer-relation stack used during correlated
	// subquery planning (spec.md §4.5).
	QueryStack *querystack.Stack

	// cascadeSeen is the cascade_action id-set of spec.md §4.3.10: keys
	// already visited during the current top-level DML, to forbid
	// revisiting the same key twice (spec.md §8 property 6).
	cascadeSeen map[int]bool

	depth int
}

// New creates a fresh compilation context for one query.
func New(cfg Config, cat *catalog.Catalog) *Context {
	return &Context{
		Config:     cfg,
		Catalog:    cat,
		Arena:      arena.New(),
		Refs:       arena.NewRefTable(),
		Frames:     NewFrameStack(),
		QueryStack: querystack.New(),
	}
}

func (c *Context) log() *logrus.Entry {
	l := c.Config.logger()
	return l.WithField("arena", c.Arena.ID.String())
}

// Log exposes the context's structured logger to callers outside this
// package (e.g. relbin's diagnostic logging), tagged with the arena id the
// same way every internal log line is.
func (c *Context) Log() *logrus.Entry {
	return c.log()
}

// StartSpan opens an opentracing span around a top-level compile entry
// point (rel_bin, sequential_block), matching the teacher's use of
// opentracing for visibility into nested compilation (SPEC_FULL.md
// "Ambient stack — Tracing"). Spans are opt-in via the context and never
// change control flow.
func (c *Context) StartSpan(operation string) opentracing.Span {
	span := opentracing.GlobalTracer().StartSpan(operation)
	span.SetTag("arena.id", c.Arena.ID.String())
	return span
}

// Enter increments the recursion depth counter and raises ErrTooComplex
// on overshoot, the explicit-counter port of the original's high-water-
// mark stack probe (spec.md §5, §9 "Deep recursion and stack-overflow
// check"). Callers must invoke the returned leave func on every return
// path, typically via `defer`.
func (c *Context) Enter(site string) (leave func(), err error) {
	c.depth++
	if c.depth > c.Config.MaxRecursionDepth {
		c.depth--
		c.log().WithField("site", site).WithField("depth", c.depth).
			Warn("recursion depth exceeded")
		return func() {}, planerr.New42000()
	}
	return func() { c.depth-- }, nil
}

// Depth reports the current recursion depth, used by tests.
func (c *Context) Depth() int { return c.depth }

// BeginCascade resets the cascade_action id-set at the start of a
// top-level DML (spec.md §4.3.10 "Destroy the set at the end of a
// top-level DML" — we instead clear it at the start of the next one,
// which is observationally identical since nothing reads it between
// statements).
func (c *Context) BeginCascade() {
	c.cascadeSeen = make(map[int]bool)
}

// CascadeSeen reports and records whether keyID has already been visited
// by a cascade in the current top-level DML (spec.md §4.3.10 "Cascade
// re-entry guard", §8 property 6).
func (c *Context) CascadeSeen(keyID int) bool {
	if c.cascadeSeen == nil {
		c.cascadeSeen = make(map[int]bool)
	}
	if c.cascadeSeen[keyID] {
		return true
	}
	c.cascadeSeen[keyID] = true
	return false
}

// NewArenaID is a convenience used by diagnostics that want a fresh
// correlation id distinct from the arena's own (e.g. one per cascade
// visit) without minting a whole new arena.
func NewArenaID() string {
	return uuid.NewString()
}
