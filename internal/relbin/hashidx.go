package relbin

import "github.com/columnar-sql/relbin/internal/stmt"

// hashWidth computes width = 1 + ((8*sizeof(word))-1)/(n+1), the bit
// width assigned to each value's slice of the combined hash key
// (spec.md §4.3.11). sizeof(word) is taken as 8 bytes (64-bit), matching
// a native machine word on the columnar engine this core targets.
func hashWidth(n int) int {
	const wordBits = 8 * 8
	return 1 + (wordBits-1)/(n+1)
}

// rotateXorHash folds value's hash into h by rotating h left by width
// bits and XOR-ing in the new hash (spec.md §4.3.11 "rotate_xor_hash").
func rotateXorHash(h uint64, width int, value uint64) uint64 {
	rotated := (h << uint(width)) | (h >> (64 - uint(width)))
	return rotated ^ value
}

// combinedHash computes the rotated-XOR hash over all equality-RHS values
// of a hash-index-eligible select (spec.md §4.3.11): h = hash(v0, width)
// then for each subsequent value h = rotate_xor_hash(h, width, vi).
func combinedHash(values []*stmt.Statement) uint64 {
	width := hashWidth(len(values))
	var h uint64
	for i, v := range values {
		vh := atomHash(v)
		if i == 0 {
			h = vh & ((1 << uint(width)) - 1)
			continue
		}
		h = rotateXorHash(h, width, vh)
	}
	return h
}

// atomHash is a stand-in for the engine's type-dispatched value hash;
// the planner only needs a stable 64-bit digest per literal to combine,
// not a specific hash family.
func atomHash(v *stmt.Statement) uint64 {
	var h uint64 = 1469598103934665603 // FNV offset basis
	switch val := v.Atom.Value.(type) {
	case int64:
		h ^= uint64(val)
	case string:
		for _, b := range []byte(val) {
			h ^= uint64(b)
			h *= 1099511628211
		}
	default:
		h ^= 0x9e3779b97f4a7c15
	}
	return h
}
