// Package bucket implements the bucket table: a fixed power-of-two array
// of balanced hash trees, routing a hash to its tree via the hash's
// high-order bits.
//
// Grounded on src/libreset/ht/base.c in the retrieved original_source
// tree (bucket_index's shift arithmetic, and the hashf/route/delegate
// shape of ht_insert/ht_find/ht_del/ht_ndel).
package bucket

import (
	"github.com/ethereum/go-ethereum/log"

	"github.com/go-reset/reset/internal/ops"
	"github.com/go-reset/reset/internal/wbtree"
)

// wordBits is the bit width of a hash value, used to derive a bucket's
// high-order-bit route.
const wordBits = 64

// Table is a fixed-size array of 2^sizeExp balanced hash trees.
type Table[E any] struct {
	trees   []*wbtree.Tree[E]
	sizeExp int
}

// New allocates a Table with 2^sizeExp buckets.
func New[E any](sizeExp int) *Table[E] {
	trees := make([]*wbtree.Tree[E], 1<<uint(sizeExp))
	for i := range trees {
		trees[i] = &wbtree.Tree[E]{}
	}
	return &Table[E]{trees: trees, sizeExp: sizeExp}
}

// SizeExp returns the table's fixed size exponent (k, where the table
// holds 2^k buckets).
func (t *Table[E]) SizeExp() int { return t.sizeExp }

func route(h uint64, sizeExp int) int {
	return int(h >> uint(wordBits-sizeExp))
}

// InsertHash inserts v, already known to hash to h, into its routed
// bucket.
func (t *Table[E]) InsertHash(h uint64, v E, fn ops.Funcs[E]) error {
	return t.trees[route(h, t.sizeExp)].Insert(h, v, fn)
}

// Insert computes v's hash via fn.Hash and inserts it into its routed
// bucket.
func (t *Table[E]) Insert(v E, fn ops.Funcs[E]) error {
	return t.InsertHash(fn.Hash(v), v, fn)
}

// FindHash looks up q, already known to hash to h, in its routed bucket.
func (t *Table[E]) FindHash(h uint64, q E, eq func(E, E) bool) (E, bool) {
	return t.trees[route(h, t.sizeExp)].Find(h, q, eq)
}

// Find computes q's hash via fn.Hash and looks it up in its routed bucket.
func (t *Table[E]) Find(q E, fn ops.Funcs[E]) (E, bool) {
	return t.FindHash(fn.Hash(q), q, fn.Eq)
}

// DeleteHash removes q, already known to hash to h, from its routed
// bucket.
func (t *Table[E]) DeleteHash(h uint64, q E, fn ops.Funcs[E]) error {
	return t.trees[route(h, t.sizeExp)].DeleteOne(h, q, fn)
}

// Delete computes q's hash via fn.Hash and removes it from its routed
// bucket.
func (t *Table[E]) Delete(q E, fn ops.Funcs[E]) error {
	return t.DeleteHash(fn.Hash(q), q, fn)
}

// DeleteByPredicate removes every element, across every bucket, for which
// pred is true, and returns the number removed.
func (t *Table[E]) DeleteByPredicate(pred func(E) bool, free func(E)) int {
	sum := 0
	for _, tr := range t.trees {
		sum += tr.DeleteByPredicate(pred, free)
	}
	return sum
}

// Cardinality returns the total number of elements across every bucket.
func (t *Table[E]) Cardinality() int {
	sum := 0
	for _, tr := range t.trees {
		sum += tr.Cardinality()
	}
	return sum
}

// Select calls proc for every element, across every bucket, where pred is
// true (or every element, if pred is nil), stopping and returning the
// first negative value proc returns; otherwise returns zero. Bucket and
// within-bucket iteration order is unspecified.
func (t *Table[E]) Select(pred func(E) bool, proc func(E) int) int {
	for _, tr := range t.trees {
		if rc := tr.Select(pred, proc); rc < 0 {
			return rc
		}
	}
	return 0
}

// Close releases every owned element via fn.Free, if set. A no-op
// otherwise, since Go's garbage collector reclaims the tree and bucket
// structures themselves without help.
func (t *Table[E]) Close(fn ops.Funcs[E]) {
	if fn.Free == nil {
		return
	}
	for _, tr := range t.trees {
		tr.Select(nil, func(v E) int {
			fn.Free(v)
			return 0
		})
	}
}

// UnionInto merges src into t, in place. When the tables share the same
// SizeExp, corresponding buckets are unioned pairwise. When src is finer
// (larger SizeExp), each destination bucket absorbs the union of the
// 2^(src.SizeExp-t.SizeExp) source buckets whose top t.SizeExp bits match
// (spec §4.4). When t is finer than src — the spec's open question,
// resolved in SPEC_FULL.md #2 — every element of the coarser src is
// re-routed individually by recomputing its hash, since no fixed grouping
// of t's buckets corresponds to a single src bucket.
func (t *Table[E]) UnionInto(src *Table[E], fn ops.Funcs[E]) {
	switch {
	case t.sizeExp == src.sizeExp:
		for i := range t.trees {
			t.trees[i].UnionInto(src.trees[i], fn)
		}
	case src.sizeExp > t.sizeExp:
		delta := uint(src.sizeExp - t.sizeExp)
		group := 1 << delta
		for i := range t.trees {
			for j := 0; j < group; j++ {
				t.trees[i].UnionInto(src.trees[i*group+j], fn)
			}
		}
	default:
		log.Debug("reset: union with destination finer than source, re-routing elements", "dest_size_exp", t.sizeExp, "src_size_exp", src.sizeExp)
		for _, tr := range src.trees {
			tr.Select(nil, func(v E) int {
				_ = t.Insert(v, fn) // ErrDuplicate is expected union behaviour
				return 0
			})
		}
	}
}

// groupedUnion returns a freshly built tree holding the union of
// trees[start:start+group].
func groupedUnion[E any](trees []*wbtree.Tree[E], start, group int, fn ops.Funcs[E]) *wbtree.Tree[E] {
	u := &wbtree.Tree[E]{}
	for j := 0; j < group; j++ {
		u.UnionInto(trees[start+j], fn)
	}
	return u
}

// IsSubset reports whether every element of t is present in o. When the
// tables' SizeExp differ, the finer side's buckets are grouped and unioned
// before the per-bucket subset test, per spec §4.4.
func (t *Table[E]) IsSubset(o *Table[E], fn ops.Funcs[E]) bool {
	switch {
	case t.sizeExp == o.sizeExp:
		for i := range t.trees {
			if !t.trees[i].IsSubset(o.trees[i], fn) {
				return false
			}
		}
		return true
	case o.sizeExp > t.sizeExp:
		delta := uint(o.sizeExp - t.sizeExp)
		group := 1 << delta
		for i := range t.trees {
			union := groupedUnion(o.trees, i*group, group, fn)
			if !t.trees[i].IsSubset(union, fn) {
				return false
			}
		}
		return true
	default:
		delta := uint(t.sizeExp - o.sizeExp)
		group := 1 << delta
		for i := range o.trees {
			union := groupedUnion(t.trees, i*group, group, fn)
			if !union.IsSubset(o.trees[i], fn) {
				return false
			}
		}
		return true
	}
}

// Equal reports whether t and o hold exactly the same elements. It first
// compares total cardinality, then (as a pruning fast path before falling
// back to full subset checks in both directions) compares cardinality
// per group of corresponding buckets on the finer side, per spec §4.4.
func (t *Table[E]) Equal(o *Table[E], fn ops.Funcs[E]) bool {
	if t.Cardinality() != o.Cardinality() {
		return false
	}
	if !groupCardinalityMatches(t, o) {
		return false
	}
	return t.IsSubset(o, fn) && o.IsSubset(t, fn)
}

func groupCardinalityMatches[E any](t, o *Table[E]) bool {
	switch {
	case t.sizeExp == o.sizeExp:
		for i := range t.trees {
			if t.trees[i].Cardinality() != o.trees[i].Cardinality() {
				return false
			}
		}
		return true
	case o.sizeExp > t.sizeExp:
		delta := uint(o.sizeExp - t.sizeExp)
		group := 1 << delta
		for i := range t.trees {
			sum := 0
			for j := 0; j < group; j++ {
				sum += o.trees[i*group+j].Cardinality()
			}
			if sum != t.trees[i].Cardinality() {
				return false
			}
		}
		return true
	default:
		delta := uint(t.sizeExp - o.sizeExp)
		group := 1 << delta
		for i := range o.trees {
			sum := 0
			for j := 0; j < group; j++ {
				sum += t.trees[i*group+j].Cardinality()
			}
			if sum != o.trees[i].Cardinality() {
				return false
			}
		}
		return true
	}
}
