// Package prefilter wires github.com/holiman/bloomfilter/v2 in as a
// coarse, whole-set Bloom filter sitting one level above the bucket table.
// It is not the per-node subtree summary described by the specification
// (internal/bloom) — that is a bespoke V-bit-per-hash mask the spec
// defines precisely and a general multi-hash-function Bloom filter
// library cannot express — but a derived, purely optional structure: a
// single filter over every hash ever inserted into a Set, consulted before
// a lookup bothers routing into the bucket table at all. It changes no
// observable semantics: Contains/Remove still fall through to an exact
// lookup, so a false positive here costs an extra miss, never a wrong
// answer, and a stale "may contain" after a removal (Bloom filters cannot
// un-set bits) is equally harmless.
package prefilter

import "github.com/holiman/bloomfilter/v2"

// bits/hash-functions sized generously for typical set sizes; false
// positives only cost an avoidable bucket-table descent, never correctness.
const (
	filterBits  = 1 << 20
	filterHashK = 4
)

// hash64 adapts a plain uint64 hash to the hash.Hash64 interface
// bloomfilter.Filter expects, mirroring the "hashable" adapter type used
// in the teacher's own common/bloom and common/expbloom test files.
type hash64 uint64

func (h hash64) Write(p []byte) (int, error) { return 0, nil }
func (h hash64) Sum(b []byte) []byte         { return b }
func (h hash64) Reset()                      {}
func (h hash64) Size() int                   { return 8 }
func (h hash64) BlockSize() int              { return 8 }
func (h hash64) Sum64() uint64               { return uint64(h) }

// Filter is a coarse whole-set Bloom prefilter. The zero value is usable
// but behaves as "may contain everything" until New is used instead.
type Filter struct {
	f *bloomfilter.Filter
}

// New allocates a prefilter sized for general-purpose use.
func New() *Filter {
	f, err := bloomfilter.New(filterBits, filterHashK)
	if err != nil {
		return &Filter{}
	}
	return &Filter{f: f}
}

// Add records that hash h is now present in the set.
func (p *Filter) Add(h uint64) {
	if p == nil || p.f == nil {
		return
	}
	p.f.Add(hash64(h))
}

// MayContain reports whether h might be present. False is conclusive;
// true may be a false positive and must always be followed by an exact
// lookup.
func (p *Filter) MayContain(h uint64) bool {
	if p == nil || p.f == nil {
		return true
	}
	return p.f.Contains(hash64(h))
}
