// Package planner carries the mutable compilation context threaded
// through rel_bin and the PSM compiler: the frame/variable stack, the
// per-query arena, the recursion guard, and the ambient stack (logging,
// tracing, configuration) described in SPEC_FULL.md.
//
// Per spec.md §9's design note ("pass an explicit mutable context struct
// through the recursion"), every piece of what the original treats as
// global mutable session state — current schema, variable stack,
// parameter list, cascade re-entry guard — lives here instead.
package planner

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Config mirrors the teacher's sqle.Config (engine.go): small, exported,
// passed by value into the compiler entry points.
type Config struct {
	// MaxRecursionDepth caps subrel_bin/exp_bin/sequential_block
	// recursion (spec.md §9 "capped at a configurable limit (default
	// ~1000)").
	MaxRecursionDepth int
	// StackCheckEvery is carried as configuration only: Context.Enter
	// checks the depth on every call and does not read this field.
	StackCheckEvery int
	// EnableHashIndexProbe toggles the PROP_HASHIDX single-shot select
	// lowering of spec.md §4.3.5/§4.3.11.
	EnableHashIndexProbe bool
	// EnableJoinIndexShortcut toggles the PROP_JOINIDX join-lowering
	// bypass of spec.md §4.3.3.
	EnableJoinIndexShortcut bool
	// Log receives structured diagnostics: recursion-depth warnings,
	// cascade visits, trigger firing (SPEC_FULL.md "Ambient stack —
	// Logging"). A nil Log is replaced by a discard logger.
	Log *logrus.Entry
}

// DefaultConfig returns the planner's defaults (spec.md §9).
func DefaultConfig() Config {
	return Config{
		MaxRecursionDepth:       1000,
		StackCheckEvery:         1,
		EnableHashIndexProbe:    true,
		EnableJoinIndexShortcut: true,
		Log:                     logrus.NewEntry(logrus.StandardLogger()),
	}
}

func (c Config) logger() *logrus.Entry {
	if c.Log != nil {
		return c.Log
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
