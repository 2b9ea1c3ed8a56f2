// Package reset implements a reentrant, in-memory set container over
// user-supplied opaque elements identified by a user-supplied hash and
// equality predicate. Its defining engineering is the composite indexing
// structure described by the specification: a fixed-fanout hash bucket
// array (internal/bucket), each bucket holding a weight-balanced tree
// keyed by element hash (internal/wbtree), each tree node holding a
// collision chain of elements sharing that hash (internal/clist) and a
// Bloom filter summarising the hashes present in its subtree
// (internal/bloom).
//
// Grounded on include/libreset/set.h's operation surface in the retrieved
// original_source tree, and on go-ethereum's own "thin struct fronting an
// internal structure, returning error" idiom (e.g. trie.Trie,
// state.StateDB).
package reset

import (
	"github.com/ethereum/go-ethereum/log"

	"github.com/go-reset/reset/internal/bucket"
	"github.com/go-reset/reset/internal/prefilter"
)

// DefaultSizeExp is the bucket table's default size exponent (spec §3:
// "default k = 3"), giving a table of 2^3 = 8 buckets.
const DefaultSizeExp = 3

// Set is a reentrant in-memory set over elements of type E. Operations on
// distinct Sets are fully independent; operations on the same Set must be
// externally synchronised if shared across goroutines (spec §5: this
// library takes no internal locks).
type Set[E any] struct {
	cfg    *Config[E]
	table  *bucket.Table[E]
	filter *prefilter.Filter
}

// Option configures a Set at construction time.
type Option func(*options)

type options struct {
	sizeExp int
}

// WithSizeExp overrides the bucket table's size exponent (spec §3's k).
func WithSizeExp(k int) Option {
	return func(o *options) { o.sizeExp = k }
}

// New allocates a Set bound to cfg. cfg must supply both Hash and Eq;
// New returns ErrInvalidConfig otherwise.
func New[E any](cfg *Config[E], opts ...Option) (*Set[E], error) {
	if !cfg.valid() {
		return nil, ErrInvalidConfig
	}
	o := options{sizeExp: DefaultSizeExp}
	for _, opt := range opts {
		opt(&o)
	}
	log.Trace("reset: new set", "size_exp", o.sizeExp)
	return &Set[E]{
		cfg:    cfg,
		table:  bucket.New[E](o.sizeExp),
		filter: prefilter.New(),
	}, nil
}

// replaceTable swaps in a fresh, empty table and filter, releasing the
// receiver's previous contents via cfg.Free first (the same release path
// Close uses) so that reusing a populated Set as a
// Union/Intersection/Xor/Exclude destination never leaks what Free was
// meant to release.
//
// operands are the operand tables the caller is about to read from — a
// destination Set is explicitly allowed to alias one of its own operands
// (e.g. a.Union(a, b), accumulating into a running set). When the
// receiver's current table is one of those operands, closing it here
// would free the very elements the operation still needs to read, so that
// case is skipped; operands must therefore be captured by the caller
// before calling replaceTable, and read back from those captures
// afterward, never through a.table/b.table again.
func (s *Set[E]) replaceTable(operands ...*bucket.Table[E]) {
	old := s.table
	for _, o := range operands {
		if old == o {
			s.table = bucket.New[E](old.SizeExp())
			s.filter = prefilter.New()
			return
		}
	}
	old.Close(s.cfg.funcs())
	s.table = bucket.New[E](old.SizeExp())
	s.filter = prefilter.New()
}

func (s *Set[E]) rebuildFilter() {
	fn := s.cfg.funcs()
	s.filter = prefilter.New()
	s.table.Select(nil, func(v E) int {
		s.filter.Add(fn.Hash(v))
		return 0
	})
}

// Close passes every stored element to cfg.Free, if set, whether or not
// cfg.Copy is set. Go's garbage collector reclaims
// the tree and bucket structures themselves; Close exists only to run
// cfg.Free, matching the specification's "destroy" lifecycle operation
// (spec §3). Calling any other method on a closed Set is a programmer
// error (spec §4.5's state machine has no transition out of destroyed).
func (s *Set[E]) Close() {
	s.table.Close(s.cfg.funcs())
}

// Insert adds v to the set. Returns ErrDuplicate if an equal element
// (per cfg.Eq) is already present.
func (s *Set[E]) Insert(v E) error {
	fn := s.cfg.funcs()
	h := fn.Hash(v)
	if err := s.table.InsertHash(h, v, fn); err != nil {
		return err
	}
	s.filter.Add(h)
	return nil
}

// Remove deletes the element equal to q (per cfg.Eq), if present. Returns
// ErrNotFound otherwise.
func (s *Set[E]) Remove(q E) error {
	fn := s.cfg.funcs()
	h := fn.Hash(q)
	if !s.filter.MayContain(h) {
		return ErrNotFound
	}
	return s.table.DeleteHash(h, q, fn)
}

// Contains reports whether an element equal to q (per cfg.Eq) is present,
// returning the stored value.
func (s *Set[E]) Contains(q E) (E, bool) {
	fn := s.cfg.funcs()
	h := fn.Hash(q)
	if !s.filter.MayContain(h) {
		var zero E
		return zero, false
	}
	return s.table.FindHash(h, q, fn.Eq)
}

// Cardinality returns the number of elements currently in the set.
func (s *Set[E]) Cardinality() int {
	return s.table.Cardinality()
}

// DeleteByPredicate removes every element for which pred is true and
// returns the number removed.
func (s *Set[E]) DeleteByPredicate(pred func(E) bool) int {
	fn := s.cfg.funcs()
	n := s.table.DeleteByPredicate(pred, fn.Free)
	if n > 0 {
		s.rebuildFilter()
	}
	return n
}

// Select calls proc for every element where pred is true (or every
// element, if pred is nil), stopping and returning the first negative
// value proc returns; otherwise returns zero. proc is expected to write
// accepted elements into a destination of the caller's choosing via
// closure, replacing the origin's predicate/processor "etc" cookie
// parameter with an ordinary Go closure (per REDESIGN FLAGS).
func (s *Set[E]) Select(pred func(E) bool, proc func(E) int) int {
	return s.table.Select(pred, proc)
}

// sameConfig reports whether a and b were built from the identical
// *Config value. The specification calls for "byte-identical" config
// comparison (spec §4.5/§9), which Go cannot express for a struct holding
// func fields (funcs are not comparable); pointer identity is the
// necessary narrowing, documented in DESIGN.md.
func sameConfig[E any](a, b *Config[E]) bool {
	return a == b
}

// Equal reports whether s and o hold exactly the same elements. Returns
// false if they were not built from the identical *Config (spec §4.5:
// "different hash/eq functions define different sets").
func (s *Set[E]) Equal(o *Set[E]) bool {
	if !sameConfig(s.cfg, o.cfg) {
		return false
	}
	return s.table.Equal(o.table, s.cfg.funcs())
}

// IsSubset reports whether every element of s is present in o. Requires
// s and o to share the identical *Config.
func (s *Set[E]) IsSubset(o *Set[E]) bool {
	if !sameConfig(s.cfg, o.cfg) {
		return false
	}
	return s.table.IsSubset(o.table, s.cfg.funcs())
}

// Union replaces the receiver's contents with the union of a and b:
// dest ← a.copy_into(empty); dest.union_into(b) (spec §4.5). Requires s,
// a and b to share the identical *Config; returns ErrInvalidConfig
// otherwise, leaving the receiver untouched.
func (s *Set[E]) Union(a, b *Set[E]) error {
	if !sameConfig(s.cfg, a.cfg) || !sameConfig(s.cfg, b.cfg) {
		return ErrInvalidConfig
	}
	aTable, bTable := a.table, b.table
	s.replaceTable(aTable, bTable)
	fn := s.cfg.funcs()
	s.table.UnionInto(aTable, fn)
	s.table.UnionInto(bTable, fn)
	s.rebuildFilter()
	return nil
}

// Intersection replaces the receiver's contents with the elements present
// in both a and b, testing membership of the smaller operand's elements
// in the larger (spec §4.5). Requires s, a and b to share the identical
// *Config.
func (s *Set[E]) Intersection(a, b *Set[E]) error {
	if !sameConfig(s.cfg, a.cfg) || !sameConfig(s.cfg, b.cfg) {
		return ErrInvalidConfig
	}
	aTable, bTable := a.table, b.table
	small, big := aTable, bTable
	if bTable.Cardinality() < aTable.Cardinality() {
		small, big = bTable, aTable
	}
	s.replaceTable(aTable, bTable)
	fn := s.cfg.funcs()
	small.Select(nil, func(v E) int {
		if _, ok := big.Find(v, fn); ok {
			_ = s.table.Insert(v, fn)
		}
		return 0
	})
	s.rebuildFilter()
	return nil
}

// Xor replaces the receiver's contents with the elements present in
// exactly one of a or b. Requires s, a and b to share the identical
// *Config.
func (s *Set[E]) Xor(a, b *Set[E]) error {
	if !sameConfig(s.cfg, a.cfg) || !sameConfig(s.cfg, b.cfg) {
		return ErrInvalidConfig
	}
	aTable, bTable := a.table, b.table
	s.replaceTable(aTable, bTable)
	fn := s.cfg.funcs()
	aTable.Select(nil, func(v E) int {
		if _, ok := bTable.Find(v, fn); !ok {
			_ = s.table.Insert(v, fn)
		}
		return 0
	})
	bTable.Select(nil, func(v E) int {
		if _, ok := aTable.Find(v, fn); !ok {
			_ = s.table.Insert(v, fn)
		}
		return 0
	})
	s.rebuildFilter()
	return nil
}

// Exclude replaces the receiver's contents with the elements of a not
// present in b. Requires s, a and b to share the identical *Config.
func (s *Set[E]) Exclude(a, b *Set[E]) error {
	if !sameConfig(s.cfg, a.cfg) || !sameConfig(s.cfg, b.cfg) {
		return ErrInvalidConfig
	}
	aTable, bTable := a.table, b.table
	s.replaceTable(aTable, bTable)
	fn := s.cfg.funcs()
	aTable.Select(nil, func(v E) int {
		if _, ok := bTable.Find(v, fn); !ok {
			_ = s.table.Insert(v, fn)
		}
		return 0
	})
	s.rebuildFilter()
	return nil
}
