package psm

import (
	"github.com/columnar-sql/relbin/internal/catalog"
	"github.com/columnar-sql/relbin/internal/expr"
	"github.com/columnar-sql/relbin/internal/planerr"
	"github.com/columnar-sql/relbin/internal/types"
)

// FunctionSpec carries the declarative parts of a CREATE FUNCTION/
// PROCEDURE statement that a parser would normally hand to
// rel_create_func directly: name, schema, parameters, declared return
// shape, and either a procedural body or an external module/symbol pair
// (spec.md §4.4.2).
type FunctionSpec struct {
	Schema     string
	Name       string
	Params     []catalog.Column
	IsProc     bool
	ReturnType *types.Subtype
	ReturnTable []catalog.Column

	// External, when true, skips body compilation entirely and just
	// registers Module/Symbol (spec.md §4.4.2 "External functions skip
	// body compilation").
	External bool
	Module   string
	Symbol   string

	// Body is the procedural block for a SQL function/procedure. Nil for
	// External.
	Body []Stmt

	// HasPrivilege is injected by the caller (the privilege check is an
	// external authorization concern, spec.md §1) rather than computed
	// here; rel_create_func still calls it at the documented point so the
	// ordering of checks matches the original.
	HasPrivilege func(schema string) bool
}

// CreateFunction implements spec.md §4.4.2 "rel_create_func": resolve
// name/types, detect a conflicting signature, check privilege, preinstall
// a stub catalog entry so the body can recurse, switch CurrentSchema while
// compiling the body, verify has_return for scalar SQL functions, then
// register the finished Function.
func (c *Compiler) CreateFunction(spec FunctionSpec) (*catalog.Function, error) {
	sch, ok := c.ctx.Catalog.Schema(spec.Schema)
	if !ok {
		return nil, planerr.NewSchemaNotFound(spec.Schema)
	}

	if _, exists := sch.Func(spec.Name, spec.Params); exists {
		return nil, planerr.ErrFunctionExists.New(spec.Name)
	}

	if spec.HasPrivilege != nil && !spec.HasPrivilege(spec.Schema) {
		return nil, planerr.ErrPrivilegeDenied.New("CREATE FUNCTION")
	}

	fn := &catalog.Function{
		Schema:      spec.Schema,
		Name:        spec.Name,
		Params:      spec.Params,
		IsProc:      spec.IsProc,
		ReturnType:  spec.ReturnType,
		ReturnTable: spec.ReturnTable,
		External:    spec.External,
		Module:      spec.Module,
		Symbol:      spec.Symbol,
	}

	// Preinstall the (incomplete) function now, so a recursive call inside
	// its own body resolves during compilation instead of failing lookup
	// (spec.md §4.4.2 "preinstalled before its own body is compiled, so
	// recursive calls resolve").
	sch.AddFunc(fn)

	if spec.External {
		return fn, nil
	}

	prevSchema := c.ctx.CurrentSchema
	c.ctx.CurrentSchema = spec.Schema
	defer func() { c.ctx.CurrentSchema = prevSchema }()

	for _, p := range spec.Params {
		if err := c.ctx.Frames.PushVar(p.Name, p.Subtype, true); err != nil {
			return nil, err
		}
	}

	restype := restypeOf(spec)
	body, err := c.CompileBlock(restype, spec.Body, spec.Name, !spec.IsProc)
	if err != nil {
		return nil, err
	}

	if !spec.IsProc && spec.ReturnType != nil {
		if !hasReturn(body) {
			return nil, planerr.ErrMissingReturn.New(spec.Name)
		}
	}

	fn.Body = body
	return fn, nil
}

func restypeOf(spec FunctionSpec) *ResType {
	if spec.IsProc {
		return nil
	}
	if spec.ReturnTable != nil {
		cols := make([]struct {
			Name string
			Sub  types.Subtype
		}, len(spec.ReturnTable))
		for i, c := range spec.ReturnTable {
			cols[i].Name = c.Name
			cols[i].Sub = c.Subtype
		}
		return &ResType{IsTable: true, TableCol: cols}
	}
	return &ResType{Scalar: spec.ReturnType}
}

// hasReturn implements spec.md §4.4.2's "has_return" control-flow-path
// check: every path through the compiled block must end in a RETURN. A
// block ends in RETURN if its last statement is one, or if it ends in an
// IF whose every branch (including an ELSE) itself ends in RETURN; a
// WHILE never satisfies this since it may execute zero times.
func hasReturn(block []expr.Expression) bool {
	if len(block) == 0 {
		return false
	}
	last := block[len(block)-1]
	p, ok := last.(*expr.Psm)
	if !ok {
		return false
	}
	switch p.Kind {
	case expr.PsmReturn:
		return true
	case expr.PsmIf:
		return len(p.Else) > 0 && hasReturn(p.Then) && hasReturn(p.Else)
	default:
		return false
	}
}

// HasReturn exports hasReturn for callers outside this package (e.g. a
// future DDL lowering that wants to pre-validate a function body without
// going through CreateFunction).
func HasReturn(block []expr.Expression) bool { return hasReturn(block) }
