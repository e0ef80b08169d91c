package expr

import "github.com/columnar-sql/relbin/internal/types"

// Column is the e_column variant: a schema.table.column reference, either
// (tname, cname) for a base-table column or (rname, cname) for a column of
// an aliased intermediate relation (spec.md §3 "e_column").
type Column struct {
	Base
	TName   string // base-table name; empty when this is an rname reference
	RName   string // alias of an intermediate relation; empty for base refs
	CName   string
	subtype types.Subtype
}

// NewBaseColumn builds a reference to a physical base-table column.
func NewBaseColumn(tname, cname string, sub types.Subtype, nullable bool) *Column {
	c := &Column{Base: newBase(CardAtom, nullable), TName: tname, CName: cname, subtype: sub}
	c.SetName(cname, tname)
	return c
}

// NewAliasColumn builds a reference to a column of an aliased intermediate
// relation (a derived table, a CTE, a subquery result).
func NewAliasColumn(rname, cname string, sub types.Subtype, nullable bool) *Column {
	c := &Column{Base: newBase(CardAtom, nullable), RName: rname, CName: cname, subtype: sub}
	c.SetName(cname, rname)
	return c
}

func (c *Column) Subtype() types.Subtype { return c.subtype }
func (c *Column) exprTag() string        { return "e_column" }

// Qualifier returns whichever of TName/RName is set, for diagnostics.
func (c *Column) Qualifier() string {
	if c.RName != "" {
		return c.RName
	}
	return c.TName
}
