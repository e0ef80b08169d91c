package expr

import "github.com/columnar-sql/relbin/internal/types"

// Convert is the e_convert variant: a child plus a (from, to) subtype pair.
type Convert struct {
	Base
	Child Expression
	From  types.Subtype
	To    types.Subtype
}

func NewConvert(child Expression, from, to types.Subtype) *Convert {
	nullable := false
	if n, ok := child.(interface{ Nullable() bool }); ok {
		nullable = n.Nullable()
	}
	return &Convert{
		Base:  newBase(child.Cardinality(), nullable),
		Child: child,
		From:  from,
		To:    to,
	}
}

func (c *Convert) Subtype() types.Subtype { return c.To }
func (c *Convert) exprTag() string        { return "e_convert" }

// IsNoop reports whether the conversion is the identity conversion, which
// the lowering may elide instead of emitting an st_convert.
func (c *Convert) IsNoop() bool { return c.From.Equal(c.To) }
