package relbin

import (
	"github.com/columnar-sql/relbin/internal/rel"
	"github.com/columnar-sql/relbin/internal/stmt"
)

// binBaseTable lowers an op_basetable: emit an st_basetable handle, then
// for each column a st_bat(c, ts, RDONLY); synthesize a "%TID%" column by
// mirroring the first column; append one indexed BAT per defined index,
// aliased as "%"+idx.name. Re-alias outputs according to rel.exps so that
// downstream name resolution sees the user-visible names (spec.md §4.3.2).
func (c *Compiler) binBaseTable(r *rel.Node) (*Relation, error) {
	t := r.BaseTable
	// base anchors every BAT of this scan to the table it was read from
	// (spec.md §4.3.2); it is threaded as each leaf's L child rather than
	// discarded, since the executor needs it to resolve the scan.
	base := stmt.Basetable(t)

	out := NewRelation()
	var first *stmt.Statement
	for i := range t.Columns {
		col := &t.Columns[i]
		name, rname := col.Name, t.Name
		if i < len(r.Exps) {
			name, rname = r.Exps[i].Name(), r.Exps[i].RName()
		}
		s := stmt.Bat(col, name, rname)
		s.L = base
		out.Add(name, rname, s)
		if first == nil {
			first = s
		}
	}
	if first != nil {
		out.TID = stmt.Alias(stmt.Mirror(first), "%TID%", t.Name)
	}
	for _, idx := range t.Indexes {
		s := stmt.IdxBat(idx, "%"+idx.Name, t.Name)
		s.L = base
		out.Add(s.Name, s.RName, s)
	}
	return out, nil
}

// binTableFunc lowers an op_table: evaluate the table function argument
// (itself an expression producing a result set), then create one
// st_rs_column per output column of the function's declared result-table
// schema (spec.md §4.3.2 "table").
func (c *Compiler) binTableFunc(r *rel.Node) (*Relation, error) {
	for _, a := range r.TableFuncArgs {
		if _, err := c.ExpBin(a, NewRelation(), NewRelation(), nil, nil); err != nil {
			return nil, err
		}
	}
	out := NewRelation()
	for i, col := range r.TableFunc.ReturnTable {
		name, rname := col.Name, r.TableFunc.Name
		if i < len(r.Exps) {
			name, rname = r.Exps[i].Name(), r.Exps[i].RName()
		}
		out.Add(name, rname, stmt.RsColumn(name, col.Subtype, col.Nullable))
	}
	return out, nil
}
