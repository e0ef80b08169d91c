package psm

import (
	"github.com/columnar-sql/relbin/internal/expr"
	"github.com/columnar-sql/relbin/internal/planerr"
	"github.com/columnar-sql/relbin/internal/planner"
	"github.com/columnar-sql/relbin/internal/rel"
	"github.com/columnar-sql/relbin/internal/types"
)

// Compiler holds the planner context shared with relbin, so a PSM_REL
// payload can invoke the relational lowering for INSERT/UPDATE/DELETE,
// local CREATE TABLE, and SELECT ... INTO bodies (spec.md §4.4.1).
type Compiler struct {
	ctx *planner.Context
	// RelCompile lowers a relational sub-plan to exp.RelRef-compatible
	// form for exp_rel/exp_table wrapping. It is injected rather than
	// imported directly to avoid a relbin<->psm import cycle (relbin's
	// DML path may itself invoke sequential_block for trigger bodies).
	RelCompile func(r interface{ IsRelRef() }) expr.RelRef
}

// New builds a PSM compiler sharing ctx with the rel_bin compiler.
func New(ctx *planner.Context) *Compiler { return &Compiler{ctx: ctx} }

// ResType describes the declared return shape a block's RETURN must
// coerce to: a scalar subtype, or a table schema for table-returning
// functions.
type ResType struct {
	Scalar   *types.Subtype
	IsTable  bool
	TableCol []struct {
		Name string
		Sub  types.Subtype
	}
}

// CompileBlock implements spec.md §4.4.1 "sequential_block": push a frame
// (named label), iterate statements by kind, and return the compiled
// expression list, or an error — never a partial list.
func (c *Compiler) CompileBlock(restype *ResType, block []Stmt, label string, isFunc bool) ([]expr.Expression, error) {
	span := c.ctx.StartSpan("sequential_block")
	defer span.Finish()

	leave, err := c.ctx.Enter("sequential_block")
	if err != nil {
		return nil, err
	}
	defer leave()

	c.ctx.Frames.PushFrame(label)
	defer c.ctx.Frames.PopFrame()

	out := make([]expr.Expression, 0, len(block))
	for i, st := range block {
		isLast := i == len(block)-1
		es, err := c.compileStmt(restype, st, isFunc, isLast)
		if err != nil {
			return nil, err
		}
		out = append(out, es...)
	}
	return out, nil
}

func (c *Compiler) compileStmt(restype *ResType, st Stmt, isFunc, isLast bool) ([]expr.Expression, error) {
	switch st.Kind {
	case StmtSet:
		return c.compileSet(st)
	case StmtDeclare:
		return c.compileDeclare(st)
	case StmtCreateLocalTable:
		c.ctx.Frames.PushTable(st.LocalTable.Name, st.LocalTable)
		return []expr.Expression{expr.NewVar(st.LocalTable.Name, types.Subtype{})}, nil
	case StmtWhile:
		return c.compileWhile(st)
	case StmtIf:
		return c.compileIf(st)
	case StmtCaseSearched:
		return c.compileCaseSearched(st)
	case StmtCaseSimple:
		return c.compileCaseSimple(st)
	case StmtReturn:
		if !isFunc {
			return nil, planerr.ErrReturnInProcedure.New()
		}
		if !isLast {
			return nil, planerr.ErrReturnNotLast.New()
		}
		return c.compileReturn(restype, st)
	case StmtSelectInto:
		return c.compileSelectInto(st)
	case StmtRelUpdate:
		return []expr.Expression{expr.NewRel(c.relRef(st.UpdateRel))}, nil
	case StmtCall:
		if st.CallIsScalar {
			return nil, planerr.ErrBareScalarCall.New()
		}
		return []expr.Expression{st.CallExpr}, nil
	}
	return nil, planerr.ErrInternal.New("unknown psm statement kind")
}

func (c *Compiler) compileSet(st Stmt) ([]expr.Expression, error) {
	v, _, ok := c.ctx.Frames.FindVar(st.VarName)
	if !ok {
		return nil, planerr.ErrUnknownVariable.New(st.VarName)
	}
	value := coerce(st.SetValue, v.Subtype)
	return []expr.Expression{expr.NewSet(st.VarName, value)}, nil
}

func (c *Compiler) compileDeclare(st Stmt) ([]expr.Expression, error) {
	out := make([]expr.Expression, 0, len(st.DeclNames))
	for _, name := range st.DeclNames {
		if err := c.ctx.Frames.PushVar(name, st.DeclType, false); err != nil {
			return nil, err
		}
		out = append(out, expr.NewVar(name, st.DeclType))
	}
	return out, nil
}

func (c *Compiler) compileWhile(st Stmt) ([]expr.Expression, error) {
	if containsRelSubquery(st.Cond) {
		return nil, planerr.ErrRelationalInWhile.New()
	}
	body, err := c.CompileBlock(nil, st.Then, "while", false)
	if err != nil {
		return nil, err
	}
	return []expr.Expression{expr.NewWhile(st.Cond, body)}, nil
}

func (c *Compiler) compileIf(st Stmt) ([]expr.Expression, error) {
	then, err := c.CompileBlock(nil, st.Then, "if-then", false)
	if err != nil {
		return nil, err
	}
	var els []expr.Expression
	if len(st.Else) > 0 {
		els, err = c.CompileBlock(nil, st.Else, "if-else", false)
		if err != nil {
			return nil, err
		}
	}
	return []expr.Expression{expr.NewIf(st.Cond, then, els)}, nil
}

// compileCaseSearched builds a nested if/elsif/else chain from a list of
// WHEN cond THEN stmts arms (spec.md §4.4.1 "CASE").
func (c *Compiler) compileCaseSearched(st Stmt) ([]expr.Expression, error) {
	return c.compileCaseArms(st.Whens, st.CaseElse)
}

// compileCaseSimple synthesizes cond := value = v as an equality e_cmp for
// each arm, then delegates to the same chain-building as the searched form
// (spec.md §4.4.1 "The latter synthesizes cond := value = v").
func (c *Compiler) compileCaseSimple(st Stmt) ([]expr.Expression, error) {
	arms := make([]WhenThen, len(st.Whens))
	for i, w := range st.Whens {
		arms[i] = WhenThen{Cond: expr.NewCmp(st.CaseValue, w.Cond, expr.CmpEqual), Block: w.Block}
	}
	return c.compileCaseArms(arms, st.CaseElse)
}

func (c *Compiler) compileCaseArms(arms []WhenThen, elseBlock []Stmt) ([]expr.Expression, error) {
	if len(arms) == 0 {
		return c.CompileBlock(nil, elseBlock, "case-else", false)
	}
	then, err := c.CompileBlock(nil, arms[0].Block, "case-then", false)
	if err != nil {
		return nil, err
	}
	rest, err := c.compileCaseArms(arms[1:], elseBlock)
	if err != nil {
		return nil, err
	}
	return []expr.Expression{expr.NewIf(arms[0].Cond, then, rest)}, nil
}

func (c *Compiler) compileReturn(restype *ResType, st Stmt) ([]expr.Expression, error) {
	if restype != nil && restype.IsTable {
		ref := c.relRef(projectReturnTable(st.ReturnRel, restype))
		return []expr.Expression{expr.NewReturn(expr.NewRel(ref))}, nil
	}
	var sub types.Subtype
	if restype != nil && restype.Scalar != nil {
		sub = *restype.Scalar
	}
	value := coerce(st.ReturnValue, sub)
	return []expr.Expression{expr.NewReturn(value)}, nil
}

// projectReturnTable re-aliases the inner relation through the declared
// output schema, either by direct list re-alias when the inner relation
// is already a project with a matching column count, or by adding a
// project node over it (spec.md §4.4.1 "RETURN").
func projectReturnTable(r interface{ IsRelRef() }, restype *ResType) interface{ IsRelRef() } {
	node, ok := r.(*rel.Node)
	if !ok || restype == nil || !restype.IsTable || len(restype.TableCol) == 0 {
		return r
	}
	if node.Op == rel.OpProject && len(node.Exps) == len(restype.TableCol) {
		for i, col := range restype.TableCol {
			node.Exps[i].SetName(col.Name, "")
		}
		return node
	}
	schema := node.Schema()
	exps := make([]expr.Expression, len(restype.TableCol))
	for i, col := range restype.TableCol {
		inner := col.Name
		if i < len(schema) {
			inner = schema[i]
		}
		ref := expr.NewAliasColumn("", inner, col.Sub, false)
		ref.SetName(col.Name, "")
		exps[i] = ref
	}
	return rel.NewProject(node, exps)
}

func (c *Compiler) compileSelectInto(st Stmt) ([]expr.Expression, error) {
	cols := st.SelectRel.Exps
	if len(cols) != len(st.IntoTargets) {
		return nil, planerr.ErrInternal.New("select into target count does not match projected column count")
	}
	out := make([]expr.Expression, 0, len(st.IntoTargets)+1)
	for i, target := range st.IntoTargets {
		v, _, ok := c.ctx.Frames.FindVar(target)
		if !ok {
			return nil, planerr.ErrUnknownVariable.New(target)
		}
		out = append(out, expr.NewSet(target, coerce(cols[i], v.Subtype)))
	}
	out = append(out, expr.NewRel(c.relRef(st.SelectRel)))
	return out, nil
}

func (c *Compiler) relRef(r interface{ IsRelRef() }) expr.RelRef {
	if ref, ok := r.(expr.RelRef); ok {
		return ref
	}
	return nil
}

func coerce(e expr.Expression, target types.Subtype) expr.Expression {
	if e == nil {
		return e
	}
	if target.Base == types.KindUnknown {
		return e
	}
	if s, ok := e.(interface{ Subtype() types.Subtype }); ok {
		if s.Subtype().Equal(target) {
			return e
		}
		return expr.NewConvert(e, s.Subtype(), target)
	}
	return e
}

// containsRelSubquery reports whether e embeds a relational sub-plan,
// rejected inside a WHILE condition (spec.md §4.4.1 "WHILE cond DO body").
func containsRelSubquery(e expr.Expression) bool {
	switch v := e.(type) {
	case *expr.Cmp:
		return containsRelSubquery(v.L) || containsRelSubquery(v.R) || (v.F != nil && containsRelSubquery(v.F))
	case *expr.Psm:
		return v.Kind == expr.PsmRel
	default:
		return false
	}
}
