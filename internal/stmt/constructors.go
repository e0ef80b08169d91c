package stmt

import (
	"github.com/columnar-sql/relbin/internal/catalog"
	"github.com/columnar-sql/relbin/internal/expr"
	"github.com/columnar-sql/relbin/internal/types"
)

// Bat builds an st_bat reference to a physical column (spec.md §4.3.2:
// "for each column a st_bat(c, ts, RDONLY)").
func Bat(col *catalog.Column, name, rname string) *Statement {
	return &Statement{Type: StBat, Column: col, NrCols: 1, Subtype: col.Subtype, Nullable: col.Nullable, Name: name, RName: rname}
}

// IdxBat builds an st_idxbat reference, aliased "%"+idx.Name
// (spec.md §3 "Index-backed lookups use columns named '%' + idx_name").
func IdxBat(idx *catalog.Index, name, rname string) *Statement {
	return &Statement{Type: StIdxBat, NrCols: 1, Subtype: types.NewSubtype(types.KindBigInt), Name: "%" + idx.Name, RName: rname}
}

// Basetable builds the st_basetable handle for a scanned table.
func Basetable(t *catalog.Table) *Statement {
	return &Statement{Type: StBasetable, Table: t, NrCols: len(t.Columns)}
}

// RsColumn builds an st_rs_column: one output column of a table function's
// declared result schema (spec.md §4.3.2 "table").
func RsColumn(name string, sub types.Subtype, nullable bool) *Statement {
	return &Statement{Type: StRsColumn, NrCols: 1, Subtype: sub, Nullable: nullable, Name: name}
}

// Atom builds an st_atom carrying a duplicated literal (spec.md §4.1
// "e_atom literal").
func Atom(a types.Atom) *Statement {
	return &Statement{Type: StAtom, NrCols: 0, Key: true, Atom: a.Dup(), Subtype: a.Subtype, Nullable: a.IsNull}
}

// Const builds an st_const column: a constant value broadcast over an OID
// set carried on base (spec.md §4.3.5 "constants become st_const").
func Const(base *Statement, a types.Atom) *Statement {
	return &Statement{Type: StConst, L: base, NrCols: base.NCols(), Key: false, Atom: a.Dup(), Subtype: a.Subtype, Nullable: a.IsNull}
}

// Var builds an st_var bound to a parameter name and frame level
// (spec.md §4.1 "e_atom parameter").
func Var(name string, level int, sub types.Subtype, nullable bool) *Statement {
	return &Statement{Type: StVar, VarName: name, VarLevel: level, Subtype: sub, Nullable: nullable, NrCols: 0, Key: true}
}

// Temp builds a fresh st_temp BAT seeded with literal values, used by
// IN-expansion (spec.md §4.1 "e_atom value-list").
func Temp(values []types.Atom, sub types.Subtype) *Statement {
	return &Statement{Type: StTemp, List: atomsToConsts(values, sub), NrCols: 1, Subtype: sub}
}

func atomsToConsts(values []types.Atom, sub types.Subtype) []*Statement {
	out := make([]*Statement, len(values))
	for i, v := range values {
		out[i] = &Statement{Type: StAtom, Atom: v.Dup(), Subtype: sub, Key: true}
	}
	return out
}

// Convert builds an st_convert(child, from, to).
func Convert(child *Statement, from, to types.Subtype) *Statement {
	return &Statement{Type: StConvert, L: child, Subtype: to, NrCols: child.NrCols, Nullable: child.Nullable}
}

// Nop builds an st_Nop(list, subfunc): a regular function-call lowering
// (spec.md §4.1 "e_func regular").
func Nop(args []*Statement, fn *expr.Subfunction) *Statement {
	return &Statement{Type: StNop, List: args, Func: fn, NrCols: outputWidth(args), Subtype: fn.ReturnType}
}

// Binop/Unop build two- and one-argument operator applications, used by
// semi/anti join predicate evaluation (spec.md §4.3.4), the count
// arithmetic of set operations and constraint checks, and the typed
// sql_add of TOP-N offset+limit (spec.md §4.3.9).
func Binop(l, r *Statement, fn *expr.Subfunction) *Statement {
	return &Statement{Type: StBinop, L: l, R: r, Func: fn, NrCols: outputWidth([]*Statement{l, r}), Subtype: fn.ReturnType}
}

func Unop(l *Statement, fn *expr.Subfunction) *Statement {
	return &Statement{Type: StUnop, L: l, Func: fn, NrCols: l.NCols(), Subtype: fn.ReturnType}
}

func outputWidth(args []*Statement) int {
	for _, a := range args {
		if a.NrCols > 0 {
			return a.NrCols
		}
	}
	return 0
}

// Mirror turns a column into an identity column over its own OID
// positions (GLOSSARY "Mirror").
func Mirror(col *Statement) *Statement {
	return &Statement{Type: StMirror, L: col, NrCols: col.NrCols, Subtype: col.Subtype}
}

// Reverse swaps a column's (OID, value) pair, used pervasively by join
// completion and set-op lowering.
func Reverse(col *Statement) *Statement {
	return &Statement{Type: StReverse, L: col, NrCols: col.NrCols, Subtype: col.Subtype}
}

// Mark renumbers the tail of a column to a consecutive OID range starting
// at seed (GLOSSARY "Mark").
func Mark(col *Statement, seed int64) *Statement {
	return &Statement{Type: StMark, L: col, NrCols: col.NrCols, Subtype: col.Subtype, VarLevel: int(seed)}
}

// Join/Join2/JoinN/Uselect/Uselect2/Select2 build the comparison-shaped
// statements.

// Join builds an st_join(l, r, cmp) — a two-column positional join.
func Join(l, r *Statement, cmp CmpFlag) *Statement {
	return &Statement{Type: StJoin, L: l, R: r, Flag: cmp, NrCols: 2}
}

// Join2 builds an st_join2, a BETWEEN-style range join against two bound
// columns (spec.md §4.1 "range is a pair of bounds").
func Join2(l, lo, hi *Statement, inclusion expr.RangeInclusion) *Statement {
	return &Statement{Type: StJoin2, L: l, R: lo, Third: hi, NrCols: 2, Flag: expr.CmpRange, Anti: inclusion&expr.IncludeLower != 0}
}

// JoinN builds an st_joinN, an n-ary generalization used when a single
// equi-join key spans more than two operand columns.
func JoinN(cols []*Statement, cmp CmpFlag) *Statement {
	return &Statement{Type: StJoinN, List: cols, Flag: cmp, NrCols: 2}
}

// Releqjoin aggregates a list of single-column equi-join statements into
// one multi-column equi-join by sorted key equality (GLOSSARY
// "Releqjoin", spec.md §4.3.3).
func Releqjoin(pairs []*Statement) *Statement {
	return &Statement{Type: StReleqjoin, List: pairs, Flag: expr.CmpEqual, NrCols: 2}
}

// Reljoin wraps a releqjoin together with the non-equi residual predicates
// it must still be intersected against (spec.md §4.3.3 "The result is
// st_reljoin(releqjoin, non_equi_list)").
func Reljoin(base *Statement, nonEqui []*Statement) *Statement {
	return &Statement{Type: StReljoin, L: base, List: nonEqui, NrCols: 2}
}

// Semijoin builds an st_semijoin(l, r): keep l rows that match r.
func Semijoin(l, r *Statement) *Statement {
	return &Statement{Type: StSemijoin, L: l, R: r, NrCols: l.NCols()}
}

// Diff builds an st_diff(l, r): keep l rows that do not match r (used for
// ANTI join completion and NOT IN, spec.md §4.3.4, §4.3.6).
func Diff(l, r *Statement) *Statement {
	return &Statement{Type: StDiff, L: l, R: r, NrCols: l.NCols()}
}

// Union builds an st_union(l, r): row-level union of two OID sets (used
// by EXCEPT/INTERSECT group alignment, not UNION itself which uses
// Append, spec.md §4.3.7).
func Union(l, r *Statement) *Statement {
	return &Statement{Type: StUnion, L: l, R: r, NrCols: l.NCols()}
}

// Uselect builds an st_uselect(col, value, cmp): a single-predicate
// selection against a constant.
func Uselect(col, value *Statement, cmp CmpFlag) *Statement {
	return &Statement{Type: StUselect, L: col, R: value, Flag: cmp, NrCols: 1}
}

// Uselect2 builds an st_uselect2(col, lo, hi, cmp): a BETWEEN-style range
// selection (spec.md §4.1 "range is a pair of bounds").
func Uselect2(col, lo, hi *Statement, inclusion expr.RangeInclusion) *Statement {
	return &Statement{Type: StUselect2, L: col, R: lo, Third: hi, Flag: expr.CmpRange, Anti: inclusion&expr.IncludeUpper != 0, NrCols: 1}
}

// Select2 builds an st_select2(col, lo, hi, cmp): a projecting range
// filter, used e.g. by need_no_nil aggregate filtering.
func Select2(col, lo, hi *Statement, cmp CmpFlag) *Statement {
	return &Statement{Type: StSelect2, L: col, R: lo, Third: hi, Flag: cmp, NrCols: col.NCols()}
}

// RelSelect aggregates a list of per-predicate uselects into a single
// multi-column selection (spec.md §4.3.5).
func RelSelect(preds []*Statement) *Statement {
	return &Statement{Type: StSelect2, List: preds, NrCols: 1}
}

// Project builds an st_project(list): materialize a column list through
// the given OID set (left empty when the project is the root list itself).
func Project(oids *Statement, cols []*Statement) *Statement {
	return &Statement{Type: StProject, L: oids, List: cols, NrCols: len(cols)}
}

// Order builds an st_order key statement (GLOSSARY "Reorder/Order").
func Order(col *Statement, asc bool) *Statement {
	return &Statement{Type: StOrder, L: col, NrCols: col.NCols(), Direction: SortDirection{Ascending: asc, Stable: true}}
}

// Reorder extends an existing sort key with another column
// (GLOSSARY "Reorder/Order").
func Reorder(prev, col *Statement, asc bool) *Statement {
	return &Statement{Type: StReorder, L: prev, R: col, NrCols: col.NCols(), Direction: SortDirection{Ascending: asc, Stable: true}}
}

// Ordered marks the terminal ordered-by list, the root of a chain of
// Reorder calls (spec.md §4.3.9 "build a sort by repeatedly
// stmt_reorder-ing").
func Ordered(chain *Statement) *Statement {
	return &Statement{Type: StOrdered, L: chain, NrCols: chain.NrCols}
}

// Limit builds an st_limit(col, offset, limit, direction): the fused
// TOP-N + first ORDER BY column (spec.md §4.3.9).
func Limit(col, offset, limit *Statement, dir SortDirection) *Statement {
	return &Statement{Type: StLimit, L: col, R: offset, Third: limit, Direction: dir, NrCols: col.NCols()}
}

// Limit2 chains a subsequent ORDER BY column as a tie-break against a
// running limit result (spec.md §4.3.9 "chain with st_limit2 to
// tie-break").
func Limit2(running, col *Statement, dir SortDirection) *Statement {
	return &Statement{Type: StLimit2, L: running, R: col, Direction: dir, NrCols: col.NCols()}
}

// Sample builds an st_sample(child, size).
func Sample(child, size *Statement) *Statement {
	return &Statement{Type: StSample, L: child, R: size, NrCols: child.NrCols}
}

// Unique builds an st_unique(col, grp): deduplicate col's values, within
// group grp if non-nil (spec.md §4.1 "e_aggr... if need_distinct, apply
// st_unique").
func Unique(col, grp *Statement) *Statement {
	return &Statement{Type: StUnique, L: col, R: grp, NrCols: col.NCols()}
}

// Aggr builds a single-argument st_aggr(col, grp, fn).
func Aggr(col, grp *Statement, fn *expr.Subfunction) *Statement {
	return &Statement{Type: StAggr, L: col, R: grp, Func: fn, NrCols: 1, Subtype: fn.ReturnType}
}

// Aggr2 builds a two-argument st_aggr2(a, b, grp, fn); the first argument
// is reversed before pairing (spec.md §4.1 "Two-argument aggregates
// reverse the first argument before pairing").
func Aggr2(a, b, grp *Statement, fn *expr.Subfunction) *Statement {
	return &Statement{Type: StAggr2, L: Reverse(a), R: b, Third: grp, Func: fn, NrCols: 1, Subtype: fn.ReturnType}
}

// GenGroup builds an st_gen_group(counts): blow a group-count column up
// to row level (spec.md §4.3.7 EXCEPT/INTERSECT).
func GenGroup(counts *Statement) *Statement {
	return &Statement{Type: StGenGroup, L: counts, NrCols: 1}
}

// Append builds an st_append(dst, src): used by UNION lowering and
// INSERT's column writes (spec.md §4.3.7, §4.3.10).
func Append(dst, src *Statement) *Statement {
	return &Statement{Type: StAppend, L: dst, R: src, NrCols: dst.NCols()}
}

// UpdateCol builds an st_update_col(col, newValue); UPDATE lowering emits
// one only for the assigned columns (spec.md §4.3.10 "UPDATE").
func UpdateCol(col, newValue *Statement) *Statement {
	return &Statement{Type: StUpdateCol, L: col, R: newValue, Column: col.Column}
}

// UpdateIdx builds an st_update_idx for a hash or join index refresh
// (spec.md §4.3.10 "hash_update"/"join_idx_update").
func UpdateIdx(idx, newValue *Statement) *Statement {
	return &Statement{Type: StUpdateIdx, L: idx, R: newValue}
}

// Delete builds an st_delete(table, rows).
func Delete(t *catalog.Table, rows *Statement) *Statement {
	return &Statement{Type: StDelete, Table: t, L: rows}
}

// TableClear builds an st_table_clear(table) for a whole-table DELETE.
func TableClear(t *catalog.Table) *Statement {
	return &Statement{Type: StTableClear, Table: t}
}

// List builds an st_list wrapping a statement sequence (DML/DDL lowering
// results and a multi-column top-level rel_bin output use this, spec.md §6).
func List(items ...*Statement) *Statement {
	return &Statement{Type: StList, List: items}
}

// Alias re-aliases a statement's output name without changing its value
// (spec.md §4.3.2 "Re-alias outputs according to rel.exps").
func Alias(s *Statement, name, rname string) *Statement {
	clone := *s
	clone.Name, clone.RName = name, rname
	return &clone
}

// Exception builds an st_exception guard: a boolean condition plus
// SQLSTATE and message, raised at execution (spec.md §4.3.10,
// §7 "IntegrityViolation").
func Exception(cond *Statement, sqlstate, message string) *Statement {
	return &Statement{Type: StException, L: cond, SQLState: sqlstate, Message: message}
}

// Catalog builds an st_catalog(flag, list): the payload of a DDL lowering
// (spec.md §4.3.12).
func Catalog(ddlFlag int, args []*Statement) *Statement {
	return &Statement{Type: StCatalog, DDLFlag: ddlFlag, List: args}
}

// Trans builds an st_trans node for COMMIT/ROLLBACK/SAVEPOINT.
func Trans(kind int) *Statement {
	return &Statement{Type: StTrans, DDLFlag: kind}
}

// Output wraps the root statement of a non-DDL read query
// (spec.md §6 "stmt_output is wrapped around the root for non-DDL read
// queries").
func Output(root *Statement) *Statement {
	return &Statement{Type: StOutput, L: root}
}

// AffectedRows wraps any DML final count (spec.md §6 "stmt_affected_rows
// wraps any DML final count").
func AffectedRows(count *Statement) *Statement {
	return &Statement{Type: StAffectedRows, L: count, NrCols: 0, Key: true, Subtype: types.NewSubtype(types.KindBigInt)}
}
