package psm

import "github.com/columnar-sql/relbin/internal/expr"

// CompileStatement implements SPEC_FULL.md's supplemented `sql_psm` legacy
// statement-level variant: a thinner entry point than CompileBlock used
// for a top-level bare CALL or procedural statement issued outside a
// function body (spec.md §2 "or sql_psm for the legacy statement-level
// variant"). It shares CompileBlock's frame/variable-stack machinery but
// compiles exactly one statement, wrapped in its own frame labeled
// "sql_psm", and
// never permits RETURN (there is no enclosing function to return from).
func (c *Compiler) CompileStatement(st Stmt) (expr.Expression, error) {
	es, err := c.CompileBlock(nil, []Stmt{st}, "sql_psm", false)
	if err != nil {
		return nil, err
	}
	if len(es) == 0 {
		return nil, nil
	}
	return es[0], nil
}
