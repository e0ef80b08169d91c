package expr

import (
	"github.com/spf13/cast"

	"github.com/columnar-sql/relbin/internal/types"
)

// FoldConvert constant-folds an e_convert whose child is a literal e_atom,
// coercing the underlying Go value to the shape the target subtype's Kind
// expects (spec.md §4.1 "e_convert ... a (from, to) subtype pair"). rel_bin
// itself never evaluates values; its e_convert lowering calls this for a
// convert whose child is a literal, so the statement layer gets a single
// st_atom already shaped for the target subtype rather than a runtime
// st_convert wrapper around a constant.
//
// ok is false whenever the literal is null or the conversion isn't one
// FoldConvert knows how to fold; callers fall back to emitting a real
// st_convert over the unfolded child in that case.
func FoldConvert(lit *Atom, target types.Subtype) (folded types.Atom, ok bool) {
	if lit.Kind != AtomLiteral || lit.Literal.IsNull {
		return types.Atom{}, false
	}
	v := lit.Literal.Value
	switch target.Base {
	case types.KindInt:
		n, err := cast.ToInt64E(v)
		if err != nil {
			return types.Atom{}, false
		}
		return types.NewAtom(target, n), true
	case types.KindBigInt:
		n, err := cast.ToInt64E(v)
		if err != nil {
			return types.Atom{}, false
		}
		return types.NewAtom(target, n), true
	case types.KindDouble:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return types.Atom{}, false
		}
		return types.NewAtom(target, f), true
	case types.KindChar, types.KindVarchar:
		s, err := cast.ToStringE(v)
		if err != nil {
			return types.Atom{}, false
		}
		return types.NewAtom(target, s), true
	case types.KindBoolean:
		b, err := cast.ToBoolE(v)
		if err != nil {
			return types.Atom{}, false
		}
		return types.NewAtom(target, b), true
	default:
		return types.Atom{}, false
	}
}
