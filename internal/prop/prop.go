// Package prop implements the property list: singly-linked annotations on
// expressions and relations carrying planner hints such as HASHIDX and
// JOINIDX (spec.md §4.1 Component 1).
package prop

// Kind names a property variant. Per the design notes (spec.md §9), this
// is encoded as a discriminated sum rather than a linked list of
// heterogeneous pointers: each Kind has an explicit payload type.
type Kind int

const (
	// HashIdx marks an expression as backed by a hash index, authorizing
	// the single-probe lowering in rel2bin_select (spec.md §4.3.5, §4.3.11).
	HashIdx Kind = iota
	// JoinIdx marks an equality predicate as backed by a join index,
	// bypassing per-predicate evaluation in join lowering (spec.md §4.3.3).
	JoinIdx
	// Partition marks the base table chosen by the partition marker
	// (spec.md §4 Component 5) as the largest basetable in the plan.
	Partition
)

// IndexRef names the index backing a HashIdx/JoinIdx property.
type IndexRef struct {
	Name    string
	Columns []string
	Unique  bool
}

// Prop is one node in the property list.
type Prop struct {
	Kind  Kind
	Index IndexRef
	Next  *Prop
}

// List is the head of a property list attached to an expression or
// relational node. A nil List means "no properties", the common case.
type List struct {
	head *Prop
}

// Add prepends a new property, preserving the singly-linked structure of
// the original source.
func (l *List) Add(kind Kind, idx IndexRef) {
	l.head = &Prop{Kind: kind, Index: idx, Next: l.head}
}

// Find returns the first property of the given kind, if any.
func (l *List) Find(kind Kind) (Prop, bool) {
	if l == nil {
		return Prop{}, false
	}
	for p := l.head; p != nil; p = p.Next {
		if p.Kind == kind {
			return *p, true
		}
	}
	return Prop{}, false
}

// Has reports whether a property of the given kind is present.
func (l *List) Has(kind Kind) bool {
	_, ok := l.Find(kind)
	return ok
}

// Remove drops all properties of the given kind. Used when a rewrite
// invalidates a hint (e.g. a predicate that consumed its HASHIDX shortcut).
func (l *List) Remove(kind Kind) {
	var prev *Prop
	for p := l.head; p != nil; {
		if p.Kind == kind {
			next := p.Next
			if prev == nil {
				l.head = next
			} else {
				prev.Next = next
			}
			p = next
			continue
		}
		prev = p
		p = p.Next
	}
}
