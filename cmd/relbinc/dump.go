package main

import (
	"fmt"
	"strings"

	"github.com/columnar-sql/relbin/internal/stmt"
)

// dumpStatement renders the lowered statement DAG as an indented tree,
// mirroring how a reader would expect rel_bin's output to be inspected
// (there is no st_print in scope, spec.md §1; this is the demo CLI's own
// rendering).
func dumpStatement(s *stmt.Statement, depth int, sb *strings.Builder) {
	if s == nil {
		return
	}
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(s.Type.String())
	if s.Name != "" {
		fmt.Fprintf(sb, " as %s", s.Name)
	}
	if s.NrCols > 0 {
		fmt.Fprintf(sb, " [%d cols]", s.NrCols)
	}
	if s.Type == stmt.StAtom || s.Type == stmt.StConst {
		fmt.Fprintf(sb, " = %v", s.Atom.Value)
	}
	if s.Type == stmt.StBat || s.Type == stmt.StIdxBat {
		if s.Column != nil {
			fmt.Fprintf(sb, " %s.%s", s.RName, s.Column.Name)
		}
	}
	sb.WriteString("\n")

	for _, child := range []*stmt.Statement{s.L, s.R, s.Third} {
		dumpStatement(child, depth+1, sb)
	}
	for _, child := range s.List {
		dumpStatement(child, depth+1, sb)
	}
}

// Dump renders s as a tree-indented string.
func Dump(s *stmt.Statement) string {
	var sb strings.Builder
	dumpStatement(s, 0, &sb)
	return sb.String()
}
