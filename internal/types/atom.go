package types

// Atom is a typed literal with subtype and value. It is immutable after
// creation; the planner duplicates an Atom into the query's arena before
// attaching it to an expression (spec.md §3 "Atom").
type Atom struct {
	Subtype Subtype
	Value   interface{} // int64, float64, string, []byte (decimal mantissa), time value, or nil
	IsNull  bool
}

// NewAtom constructs an atom. A nil value always forces IsNull regardless
// of the caller's intent, since a nil Go value can never be a meaningful
// payload here.
func NewAtom(sub Subtype, value interface{}) Atom {
	return Atom{Subtype: sub, Value: value, IsNull: value == nil}
}

// NullAtom constructs the typed null literal used for e.g. unmatched
// outer-join rows (spec.md §4.3.3).
func NullAtom(sub Subtype) Atom {
	return Atom{Subtype: sub, IsNull: true}
}

// Dup returns a value copy of the atom, matching spec.md's "duplicated
// into the query's arena before attachment to an expression". Because
// Atom never holds a pointer into caller-owned memory for the value kinds
// the planner itself produces (numeric, string, decimal-as-string), a
// plain copy is a faithful duplication.
func (a Atom) Dup() Atom {
	return a
}
