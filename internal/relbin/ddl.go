package relbin

import (
	"github.com/columnar-sql/relbin/internal/rel"
	"github.com/columnar-sql/relbin/internal/stmt"
)

// QueryType mirrors sql.type, updated by DDL dispatch (spec.md §4.3.12).
type QueryType int

const (
	QSchema QueryType = iota
	QTrans
	QUpdate
	QTable
)

// binDDL implements spec.md §4.3.12: op_ddl sub-kinds dispatch to OUTPUT
// (export), LIST (pair of sub-plans), SEQ (create/alter sequence), TRANS
// (commit/rollback/savepoint), CATALOG (schema/role ops), CATALOG_TABLE
// (table/view ops), CATALOG2 (drop seq and similar two-arg ops). The
// argument list is built from rel.exps via exp_bin(..., NULL, NULL, NULL,
// NULL); TRANS lowers to an st_trans and LIST to an st_list of both
// sub-plans' statements, and every other kind wraps the arguments in
// st_catalog(flag, list).
func (c *Compiler) binDDL(r *rel.Node) (*Relation, error) {
	args := make([]*stmt.Statement, 0, len(r.DDL.Args))
	for _, e := range r.DDL.Args {
		s, err := c.ExpBin(e, NewRelation(), NewRelation(), nil, nil)
		if err != nil {
			return nil, err
		}
		args = append(args, s)
	}

	var s *stmt.Statement
	switch r.DDLKind {
	case rel.DDLTrans:
		s = stmt.Trans(0)
	case rel.DDLList:
		var left, right *Relation
		var err error
		if r.L != nil {
			left, err = c.SubrelBin(r.L)
			if err != nil {
				return nil, err
			}
		}
		if r.R != nil {
			right, err = c.SubrelBin(r.R)
			if err != nil {
				return nil, err
			}
		}
		list := append(append([]*stmt.Statement{}, flattenOrEmpty(left)...), flattenOrEmpty(right)...)
		s = stmt.List(list...)
	default:
		s = stmt.Catalog(int(r.DDLKind), args)
	}

	c.queryType(r.DDLKind)

	out := NewRelation()
	out.Add("", "", s)
	return out, nil
}

func flattenOrEmpty(r *Relation) []*stmt.Statement {
	if r == nil {
		return nil
	}
	return r.List()
}

// queryType records the sql.type update of spec.md §4.3.12; the
// compilation context exposes it to callers that need the final query
// classification (Q_SCHEMA/Q_TRANS/Q_UPDATE/Q_TABLE).
func (c *Compiler) queryType(kind rel.DDLKind) {
	switch kind {
	case rel.DDLTrans:
		c.lastQueryType = QTrans
	case rel.DDLCatalogTable:
		c.lastQueryType = QTable
	case rel.DDLCatalog, rel.DDLCatalog2:
		c.lastQueryType = QSchema
	default:
		c.lastQueryType = QUpdate
	}
}

// QueryType returns the query classification computed by the most recent
// DDL lowering.
func (c *Compiler) QueryType() QueryType { return c.lastQueryType }
