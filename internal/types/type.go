// Package types implements the subtype and atom primitives of the data
// model (spec.md §3 "Atom", "Subtype").
package types

import "fmt"

// Kind names a base SQL type family. It intentionally stays small: the
// planner only needs to know enough about a type to decide conversions,
// comparisons and DECIMAL scale arithmetic, not to render or parse values.
type Kind int

const (
	KindUnknown Kind = iota
	KindBoolean
	KindInt
	KindBigInt
	KindDecimal
	KindDouble
	KindChar
	KindVarchar
	KindDate
	KindTime
	KindTimestamp
	KindInterval
)

func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindInt:
		return "int"
	case KindBigInt:
		return "bigint"
	case KindDecimal:
		return "decimal"
	case KindDouble:
		return "double"
	case KindChar:
		return "char"
	case KindVarchar:
		return "varchar"
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	case KindTimestamp:
		return "timestamp"
	case KindInterval:
		return "interval"
	default:
		return "unknown"
	}
}

// Subtype is a reference to a type descriptor plus digits and scale,
// carried by every expression and every statement column (spec.md §3).
// Digits/Scale only mean something for DECIMAL, INTERVAL and CHAR(n).
type Subtype struct {
	Base   Kind
	Digits int
	Scale  int
}

func NewSubtype(base Kind) Subtype { return Subtype{Base: base} }

func NewDecimal(digits, scale int) Subtype {
	return Subtype{Base: KindDecimal, Digits: digits, Scale: scale}
}

func NewChar(width int) Subtype {
	return Subtype{Base: KindChar, Digits: width}
}

func (s Subtype) String() string {
	switch s.Base {
	case KindDecimal:
		return fmt.Sprintf("decimal(%d,%d)", s.Digits, s.Scale)
	case KindChar, KindVarchar:
		if s.Digits > 0 {
			return fmt.Sprintf("%s(%d)", s.Base, s.Digits)
		}
		return s.Base.String()
	default:
		return s.Base.String()
	}
}

// Numeric reports whether the subtype participates in scale arithmetic.
func (s Subtype) Numeric() bool {
	switch s.Base {
	case KindInt, KindBigInt, KindDecimal, KindDouble:
		return true
	default:
		return false
	}
}

// Equal compares two subtypes structurally, which is what the planner
// needs to decide whether an e_convert is a no-op.
func (s Subtype) Equal(o Subtype) bool {
	return s.Base == o.Base && s.Digits == o.Digits && s.Scale == o.Scale
}

// RescaleFactor returns the power-of-ten multiplier needed to convert a
// DECIMAL value from this scale to target's scale. Used by the planner's
// decimal scale-arithmetic when lowering e_convert between two DECIMAL
// subtypes with different scales.
func (s Subtype) RescaleFactor(target Subtype) int64 {
	d := target.Scale - s.Scale
	factor := int64(1)
	for i := 0; i < d; i++ {
		factor *= 10
	}
	for i := 0; i > d; i-- {
		factor /= 10
	}
	return factor
}
