package planner

import (
	"github.com/columnar-sql/relbin/internal/catalog"
	"github.com/columnar-sql/relbin/internal/planerr"
	"github.com/columnar-sql/relbin/internal/types"
)

// Var is one declared variable, function parameter, or loop-scoped name
// on the stack.
type Var struct {
	Name    string
	Subtype types.Subtype
	// IsParam marks a function/procedure parameter, which SET may target
	// but DECLARE may not redeclare.
	IsParam bool
}

// TableView is a local table pushed by a PSM CREATE TABLE or a trigger's
// NEW/OLD virtual table binding (spec.md §4.3.10 "Triggers", §4.4.1
// "CREATE TABLE (local)").
type TableView struct {
	Name  string
	Table *catalog.Table
}

// Frame is a lexical scope entry on the variable stack, holding declared
// variables and temporary table views (GLOSSARY "Frame").
type Frame struct {
	Label  string
	Vars   map[string]*Var
	Tables map[string]*TableView
}

func newFrame(label string) *Frame {
	return &Frame{Label: label, Vars: make(map[string]*Var), Tables: make(map[string]*TableView)}
}

// FrameStack is the lexical scope stack: stack_push_var/table/rel_view/
// frame, stack_pop_frame, stack_find_var/type/frame (spec.md §6).
type FrameStack struct {
	frames []*Frame
}

func NewFrameStack() *FrameStack { return &FrameStack{} }

// PushFrame enters a new lexical scope, named label (e.g. "OLD-NEW" for a
// trigger body, spec.md §4.3.10).
func (s *FrameStack) PushFrame(label string) *Frame {
	f := newFrame(label)
	s.frames = append(s.frames, f)
	return f
}

// PopFrame leaves the innermost lexical scope.
func (s *FrameStack) PopFrame() {
	if len(s.frames) > 0 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// Current returns the innermost frame.
func (s *FrameStack) Current() *Frame {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

// Depth reports how many lexical scopes are currently pushed; this is the
// "level" carried by e_atom parameter references and st_var (spec.md §4.1).
func (s *FrameStack) Depth() int { return len(s.frames) }

// PushVar declares name in the current frame. DECLARE rejects
// redeclaration in the same frame (spec.md §4.4.1 "DECLARE").
func (s *FrameStack) PushVar(name string, sub types.Subtype, isParam bool) error {
	f := s.Current()
	if f == nil {
		return planerr.ErrInternal.New("PushVar with no open frame")
	}
	if _, exists := f.Vars[name]; exists {
		return planerr.ErrDuplicateDeclare.New(name)
	}
	f.Vars[name] = &Var{Name: name, Subtype: sub, IsParam: isParam}
	return nil
}

// PushTable registers a local table view in the current frame (spec.md
// §4.4.1 "CREATE TABLE (local)").
func (s *FrameStack) PushTable(name string, t *catalog.Table) {
	f := s.Current()
	if f == nil {
		return
	}
	f.Tables[name] = &TableView{Name: name, Table: t}
}

// FindVar walks the frame stack back to front looking for name, returning
// the var, the frame depth it was found at (0 = innermost), and whether it
// was found at all (stack_find_var, spec.md §6).
func (s *FrameStack) FindVar(name string) (*Var, int, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i].Vars[name]; ok {
			return v, len(s.frames) - 1 - i, true
		}
	}
	return nil, 0, false
}

// FindTable walks the frame stack back to front looking for a local table
// view named name (stack_find_table).
func (s *FrameStack) FindTable(name string) (*TableView, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if t, ok := s.frames[i].Tables[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// FrameFindVar limits the search to the current frame only
// (spec.md §6 "frame_find_var limits the search to the current frame").
func (s *FrameStack) FrameFindVar(name string) (*Var, bool) {
	f := s.Current()
	if f == nil {
		return nil, false
	}
	v, ok := f.Vars[name]
	return v, ok
}
