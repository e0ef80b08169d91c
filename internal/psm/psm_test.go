package psm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/columnar-sql/relbin/internal/catalog"
	"github.com/columnar-sql/relbin/internal/expr"
	"github.com/columnar-sql/relbin/internal/planerr"
	"github.com/columnar-sql/relbin/internal/planner"
	"github.com/columnar-sql/relbin/internal/rel"
	"github.com/columnar-sql/relbin/internal/types"
)

func newTestCompiler() (*Compiler, *planner.Context) {
	cat := catalog.New()
	cat.AddSchema("sys")
	ctx := planner.New(planner.DefaultConfig(), cat)
	return New(ctx), ctx
}

func intType() types.Subtype { return types.NewSubtype(types.KindInt) }

func TestCompileBlockDeclareThenSet(t *testing.T) {
	c, ctx := newTestCompiler()
	ctx.Frames.PushFrame("top")
	defer ctx.Frames.PopFrame()

	block := []Stmt{
		{Kind: StmtDeclare, DeclNames: []string{"y"}, DeclType: intType()},
		{Kind: StmtSet, VarName: "y", SetValue: expr.NewLiteral(types.NewAtom(intType(), int64(2)))},
	}
	out, err := c.CompileBlock(nil, block, "body", false)
	require.NoError(t, err)
	require.Len(t, out, 2)

	varNode, ok := out[0].(*expr.Psm)
	require.True(t, ok)
	require.Equal(t, expr.PsmVar, varNode.Kind)

	setNode, ok := out[1].(*expr.Psm)
	require.True(t, ok)
	require.Equal(t, expr.PsmSet, setNode.Kind)
	require.Equal(t, "y", setNode.VarName)
}

func TestCompileBlockSetUnknownVariableFails(t *testing.T) {
	c, ctx := newTestCompiler()
	ctx.Frames.PushFrame("top")
	defer ctx.Frames.PopFrame()

	block := []Stmt{
		{Kind: StmtSet, VarName: "ghost", SetValue: expr.NewLiteral(types.NewAtom(intType(), int64(1)))},
	}
	_, err := c.CompileBlock(nil, block, "body", false)
	require.True(t, planerr.Is(planerr.ErrUnknownVariable, err))
}

func TestCompileBlockDuplicateDeclareRejected(t *testing.T) {
	c, ctx := newTestCompiler()
	ctx.Frames.PushFrame("top")
	defer ctx.Frames.PopFrame()

	block := []Stmt{
		{Kind: StmtDeclare, DeclNames: []string{"y"}, DeclType: intType()},
		{Kind: StmtDeclare, DeclNames: []string{"y"}, DeclType: intType()},
	}
	_, err := c.CompileBlock(nil, block, "body", false)
	require.True(t, planerr.Is(planerr.ErrDuplicateDeclare, err))
}

func TestCompileBlockReturnInProcedureRejected(t *testing.T) {
	c, ctx := newTestCompiler()
	ctx.Frames.PushFrame("top")
	defer ctx.Frames.PopFrame()

	block := []Stmt{
		{Kind: StmtReturn, ReturnValue: expr.NewLiteral(types.NewAtom(intType(), int64(1)))},
	}
	_, err := c.CompileBlock(nil, block, "proc", false)
	require.True(t, planerr.Is(planerr.ErrReturnInProcedure, err))
}

func TestCompileBlockReturnMustBeLast(t *testing.T) {
	c, ctx := newTestCompiler()
	ctx.Frames.PushFrame("top")
	defer ctx.Frames.PopFrame()

	block := []Stmt{
		{Kind: StmtReturn, ReturnValue: expr.NewLiteral(types.NewAtom(intType(), int64(1)))},
		{Kind: StmtDeclare, DeclNames: []string{"y"}, DeclType: intType()},
	}
	_, err := c.CompileBlock(&ResType{Scalar: ptrSub(intType())}, block, "fn", true)
	require.True(t, planerr.Is(planerr.ErrReturnNotLast, err))
}

func TestCompileBlockReturnCoercesToDeclaredType(t *testing.T) {
	c, ctx := newTestCompiler()
	ctx.Frames.PushFrame("top")
	defer ctx.Frames.PopFrame()

	bigint := types.NewSubtype(types.KindBigInt)
	lit := expr.NewLiteral(types.NewAtom(intType(), int64(9)))
	block := []Stmt{{Kind: StmtReturn, ReturnValue: lit}}

	out, err := c.CompileBlock(&ResType{Scalar: &bigint}, block, "fn", true)
	require.NoError(t, err)
	require.Len(t, out, 1)
	ret := out[0].(*expr.Psm)
	require.Equal(t, expr.PsmReturn, ret.Kind)
	conv, ok := ret.ReturnValue.(*expr.Convert)
	require.True(t, ok)
	require.Equal(t, bigint, conv.To)
}

func TestCompileBlockWhileRejectsRelationalCondition(t *testing.T) {
	c, ctx := newTestCompiler()
	ctx.Frames.PushFrame("top")
	defer ctx.Frames.PopFrame()

	relCond := &expr.Psm{Kind: expr.PsmRel}
	block := []Stmt{{Kind: StmtWhile, Cond: relCond, Then: nil}}
	_, err := c.CompileBlock(nil, block, "body", false)
	require.True(t, planerr.Is(planerr.ErrRelationalInWhile, err))
}

func TestCompileBlockWhileBuildsExpWhile(t *testing.T) {
	c, ctx := newTestCompiler()
	ctx.Frames.PushFrame("top")
	defer ctx.Frames.PopFrame()

	cond := expr.NewCmp(expr.NewLiteral(types.NewAtom(intType(), int64(1))), expr.NewLiteral(types.NewAtom(intType(), int64(2))), expr.CmpLT)
	block := []Stmt{{Kind: StmtWhile, Cond: cond, Then: nil}}
	out, err := c.CompileBlock(nil, block, "body", false)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, expr.PsmWhile, out[0].(*expr.Psm).Kind)
}

func TestCompileIfElseNesting(t *testing.T) {
	c, ctx := newTestCompiler()
	ctx.Frames.PushFrame("top")
	defer ctx.Frames.PopFrame()

	cond := expr.NewCmp(expr.NewLiteral(types.NewAtom(intType(), int64(1))), expr.NewLiteral(types.NewAtom(intType(), int64(1))), expr.CmpEqual)
	thenBlk := []Stmt{{Kind: StmtDeclare, DeclNames: []string{"t1"}, DeclType: intType()}}
	elseBlk := []Stmt{{Kind: StmtDeclare, DeclNames: []string{"t2"}, DeclType: intType()}}
	block := []Stmt{{Kind: StmtIf, Cond: cond, Then: thenBlk, Else: elseBlk}}

	out, err := c.CompileBlock(nil, block, "body", false)
	require.NoError(t, err)
	ifNode := out[0].(*expr.Psm)
	require.Equal(t, expr.PsmIf, ifNode.Kind)
	require.Len(t, ifNode.Then, 1)
	require.Len(t, ifNode.Else, 1)
}

func TestCompileCaseSearchedBuildsNestedIfChain(t *testing.T) {
	c, ctx := newTestCompiler()
	ctx.Frames.PushFrame("top")
	defer ctx.Frames.PopFrame()

	condA := expr.NewCmp(expr.NewLiteral(types.NewAtom(intType(), int64(1))), expr.NewLiteral(types.NewAtom(intType(), int64(1))), expr.CmpEqual)
	condB := expr.NewCmp(expr.NewLiteral(types.NewAtom(intType(), int64(2))), expr.NewLiteral(types.NewAtom(intType(), int64(2))), expr.CmpEqual)

	block := []Stmt{{
		Kind: StmtCaseSearched,
		Whens: []WhenThen{
			{Cond: condA, Block: []Stmt{{Kind: StmtDeclare, DeclNames: []string{"a"}, DeclType: intType()}}},
			{Cond: condB, Block: []Stmt{{Kind: StmtDeclare, DeclNames: []string{"b"}, DeclType: intType()}}},
		},
		CaseElse: []Stmt{{Kind: StmtDeclare, DeclNames: []string{"e"}, DeclType: intType()}},
	}}

	out, err := c.CompileBlock(nil, block, "body", false)
	require.NoError(t, err)
	outer := out[0].(*expr.Psm)
	require.Equal(t, expr.PsmIf, outer.Kind)
	require.Same(t, condA, outer.Cond)
	require.Len(t, outer.Else, 1)
	inner := outer.Else[0].(*expr.Psm)
	require.Equal(t, expr.PsmIf, inner.Kind)
	require.Same(t, condB, inner.Cond)
}

func TestCompileCaseSimpleSynthesizesEqualityCond(t *testing.T) {
	c, ctx := newTestCompiler()
	ctx.Frames.PushFrame("top")
	defer ctx.Frames.PopFrame()

	value := expr.NewLiteral(types.NewAtom(intType(), int64(7)))
	arm := expr.NewLiteral(types.NewAtom(intType(), int64(7)))

	block := []Stmt{{
		Kind:      StmtCaseSimple,
		CaseValue: value,
		Whens:     []WhenThen{{Cond: arm, Block: nil}},
	}}

	out, err := c.CompileBlock(nil, block, "body", false)
	require.NoError(t, err)
	ifNode := out[0].(*expr.Psm)
	cmp, ok := ifNode.Cond.(*expr.Cmp)
	require.True(t, ok)
	require.Same(t, value, cmp.L)
	require.Same(t, arm, cmp.R)
	require.Equal(t, expr.CmpEqual, cmp.Flag)
}

func TestCompileCallRejectsScalarResult(t *testing.T) {
	c, ctx := newTestCompiler()
	ctx.Frames.PushFrame("top")
	defer ctx.Frames.PopFrame()

	block := []Stmt{{Kind: StmtCall, CallExpr: expr.NewLiteral(types.NewAtom(intType(), int64(1))), CallIsScalar: true}}
	_, err := c.CompileBlock(nil, block, "body", false)
	require.True(t, planerr.Is(planerr.ErrBareScalarCall, err))
}

func TestCompileSelectIntoCoercesTargets(t *testing.T) {
	c, ctx := newTestCompiler()
	ctx.Frames.PushFrame("top")
	defer ctx.Frames.PopFrame()
	require.NoError(t, ctx.Frames.PushVar("total", intType(), false))

	bigint := types.NewSubtype(types.KindBigInt)
	selectRel := rel.NewProject(nil, []expr.Expression{expr.NewLiteral(types.NewAtom(bigint, int64(5)))})
	block := []Stmt{{Kind: StmtSelectInto, IntoTargets: []string{"total"}, SelectRel: selectRel}}
	out, err := c.CompileBlock(nil, block, "body", false)
	require.NoError(t, err)
	require.Len(t, out, 2)
	set := out[0].(*expr.Psm)
	require.Equal(t, expr.PsmSet, set.Kind)
	_, coerced := set.SetValue.(*expr.Convert)
	require.True(t, coerced)
	rel := out[1].(*expr.Psm)
	require.Equal(t, expr.PsmRel, rel.Kind)
}

func TestCompileStatementWrapsSingleStmt(t *testing.T) {
	c, _ := newTestCompiler()
	st := Stmt{Kind: StmtDeclare, DeclNames: []string{"z"}, DeclType: intType()}
	out, err := c.CompileStatement(st)
	require.NoError(t, err)
	require.Equal(t, expr.PsmVar, out.(*expr.Psm).Kind)
}

func TestHasReturnStructuralCheck(t *testing.T) {
	ret := &expr.Psm{Kind: expr.PsmReturn}
	require.True(t, HasReturn([]expr.Expression{ret}))

	ifBothReturn := &expr.Psm{Kind: expr.PsmIf, Then: []expr.Expression{ret}, Else: []expr.Expression{ret}}
	require.True(t, HasReturn([]expr.Expression{ifBothReturn}))

	ifNoElse := &expr.Psm{Kind: expr.PsmIf, Then: []expr.Expression{ret}}
	require.False(t, HasReturn([]expr.Expression{ifNoElse}))

	whileOnly := &expr.Psm{Kind: expr.PsmWhile, Then: []expr.Expression{ret}}
	require.False(t, HasReturn([]expr.Expression{whileOnly}))

	require.False(t, HasReturn(nil))
}

func TestCreateFunctionHappyPathAndConflict(t *testing.T) {
	c, ctx := newTestCompiler()
	ctx.Frames.PushFrame("top")
	defer ctx.Frames.PopFrame()
	sub := intType()
	spec := FunctionSpec{
		Schema:     "sys",
		Name:       "f",
		Params:     []catalog.Column{{Name: "x", Subtype: sub}},
		ReturnType: &sub,
		Body: []Stmt{
			{Kind: StmtReturn, ReturnValue: expr.NewLiteral(types.NewAtom(sub, int64(1)))},
		},
	}
	fn, err := c.CreateFunction(spec)
	require.NoError(t, err)
	require.Equal(t, "f", fn.Name)
	// CurrentSchema is restored to its pre-call value (empty) once the body
	// compiles, per spec.md §4.4.2 step 6.
	require.Equal(t, "", ctx.CurrentSchema)

	_, err = c.CreateFunction(spec)
	require.True(t, planerr.Is(planerr.ErrFunctionExists, err))
}

func TestCreateFunctionMissingReturnFails(t *testing.T) {
	c, _ := newTestCompiler()
	sub := intType()
	spec := FunctionSpec{
		Schema:     "sys",
		Name:       "g",
		ReturnType: &sub,
		Body: []Stmt{
			{Kind: StmtDeclare, DeclNames: []string{"y"}, DeclType: sub},
		},
	}
	_, err := c.CreateFunction(spec)
	require.True(t, planerr.Is(planerr.ErrMissingReturn, err))
}

func TestCreateFunctionUnknownSchema(t *testing.T) {
	c, _ := newTestCompiler()
	sub := intType()
	_, err := c.CreateFunction(FunctionSpec{Schema: "ghost", Name: "f", ReturnType: &sub})
	require.True(t, planerr.Is(planerr.ErrSchemaNotFound, err))
}

func TestCreateFunctionPrivilegeDenied(t *testing.T) {
	c, _ := newTestCompiler()
	sub := intType()
	spec := FunctionSpec{
		Schema:       "sys",
		Name:         "h",
		ReturnType:   &sub,
		Body:         []Stmt{{Kind: StmtReturn, ReturnValue: expr.NewLiteral(types.NewAtom(sub, int64(1)))}},
		HasPrivilege: func(string) bool { return false },
	}
	_, err := c.CreateFunction(spec)
	require.True(t, planerr.Is(planerr.ErrPrivilegeDenied, err))
}

func TestCreateFunctionExternalSkipsBodyCompilation(t *testing.T) {
	c, _ := newTestCompiler()
	spec := FunctionSpec{
		Schema:   "sys",
		Name:     "ext",
		External: true,
		Module:   "mmath",
		Symbol:   "sqrt",
	}
	fn, err := c.CreateFunction(spec)
	require.NoError(t, err)
	require.True(t, fn.External)
	require.Equal(t, "mmath", fn.Module)
}

func TestCreateTriggerOrdinalAndDuplicateRejection(t *testing.T) {
	c, ctx := newTestCompiler()
	sch, _ := ctx.Catalog.Schema("sys")
	sch.AddTable(&catalog.Table{Name: "t"})

	tr1, err := c.CreateTrigger(TriggerSpec{Schema: "sys", Table: "t", Name: "tr1", Event: catalog.OnInsert, Time: catalog.After})
	require.NoError(t, err)
	require.Equal(t, 0, tr1.Ordinal)

	tr2, err := c.CreateTrigger(TriggerSpec{Schema: "sys", Table: "t", Name: "tr2", Event: catalog.OnInsert, Time: catalog.Before})
	require.NoError(t, err)
	require.Equal(t, 1, tr2.Ordinal)

	_, err = c.CreateTrigger(TriggerSpec{Schema: "sys", Table: "t", Name: "tr1", Event: catalog.OnInsert, Time: catalog.After})
	require.True(t, planerr.Is(planerr.ErrObjectExists, err))
}

func TestInstantiateBodyPushesOldNewFrame(t *testing.T) {
	c, ctx := newTestCompiler()
	sch, _ := ctx.Catalog.Schema("sys")
	table := &catalog.Table{Name: "t"}
	sch.AddTable(table)
	tr := &catalog.Trigger{Name: "tr", Table: table, NewName: "n", OldName: "o"}

	depthBefore := ctx.Frames.Depth()
	leave := c.InstantiateBody(tr, table, table)
	require.Equal(t, depthBefore+1, ctx.Frames.Depth())

	_, ok := ctx.Frames.FindTable("n")
	require.True(t, ok)
	_, ok = ctx.Frames.FindTable("o")
	require.True(t, ok)

	leave()
	require.Equal(t, depthBefore, ctx.Frames.Depth())
}

func ptrSub(s types.Subtype) *types.Subtype { return &s }
