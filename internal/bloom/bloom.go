// Package bloom implements the fixed-width Bloom summary used to prune
// subtree descents in the balanced hash tree. It is a pure, allocation-free
// bit-mask helper: given a hash it derives which bits "belong" to that hash,
// and given two masks it answers conservative may-contain /
// may-intersect questions.
//
// Grounded on src/libreset/bloom.c (bloom_from_hash, bloom_may_contain) in
// the retrieved original_source tree; bloom_intersects follows the
// popcount-based definition given in the specification rather than the
// origin's bloom_may_have_common, which is present in the source but never
// called and inverted in sense.
package bloom

import "math/bits"

const (
	// Bits is the width of a Mask, chosen to match the machine word width
	// used for hash values throughout the package (spec: "design chooses
	// the machine word width").
	Bits = 64

	// Variants is the number of bits a single hash sets in a Mask. Kept as
	// a small compile-time constant per the specification; changing it
	// changes the false-positive rate of every prune decision in the tree.
	Variants = 3
)

// Mask is a bit-set of width Bits summarising the hashes present in some
// collection (a single hash, a tree node's subtree, or a whole set).
type Mask uint64

// FromHash derives the Mask for a single hash value. It sets exactly
// Variants bits, chosen by repeatedly reducing h modulo Bits and dividing h
// by Bits between iterations; a position that is already set moves on to
// the next free bit. Two equal hashes always produce equal masks.
func FromHash(h uint64) Mask {
	var m Mask
	for i := 0; i < Variants; i++ {
		b := h % Bits
		for m&(1<<b) != 0 {
			b = (b + 1) % Bits
		}
		m |= 1 << b
		h /= Bits
	}
	return m
}

// Contains reports whether query's bits are a subset of set's bits, i.e.
// whether the element summarised by query may be present in the collection
// summarised by set. A false result is conclusive: the element cannot be
// present. A true result is not: it may be a false positive.
func Contains(query, set Mask) bool {
	return query&^set == 0
}

// Intersects conservatively approximates whether two summarised
// collections could share any element. It reports true when at least
// Variants bits are common to both masks, since any single shared element
// would itself set Variants common bits. A false result is conclusive
// (definitely disjoint); a true result may be a false positive and must
// never be treated as proof of a shared element.
func Intersects(a, b Mask) bool {
	return bits.OnesCount64(uint64(a&b)) >= Variants
}
