package reset

import "github.com/go-reset/reset/internal/ops"

// Config describes how a Set stores and compares elements of type E. It is
// the generic, closure-based replacement (per REDESIGN FLAGS) for the
// origin's r_set_cfg struct of function pointers over void*: Hash and Eq
// are required capabilities; Copy and Free are opt-in and, together,
// decide whether the Set owns its payloads or merely borrows the caller's
// references (spec §3).
//
// A Config is immutable once bound to a Set (spec §3) and must not be
// mutated by the caller for the lifetime of any Set built from it.
type Config[E any] struct {
	// Hash must be deterministic and pure for the lifetime of every value
	// currently stored in a Set built from this Config. Collisions are
	// permitted.
	Hash func(v E) uint64

	// Eq must be reflexive, symmetric, transitive, and consistent with
	// Hash (equal values must hash equally).
	Eq func(a, b E) bool

	// Copy, if set, produces an independently owned duplicate of v on
	// every insert — including the internal inserts Union, Intersection,
	// Xor and Exclude perform into a destination Set (see
	// DESIGN.md's resolution of the spec's Open Question on this point).
	// If nil, the Set stores the caller's reference as-is.
	Copy func(v E) E

	// Free, if set, is the sole destruction path for values owned by the
	// Set: called on removal (Remove, DeleteByPredicate) and on Close. If
	// nil, the Set never releases stored values (the caller retains
	// ownership).
	Free func(v E)
}

func (c *Config[E]) valid() bool {
	return c != nil && c.Hash != nil && c.Eq != nil
}

func (c *Config[E]) funcs() ops.Funcs[E] {
	return ops.Funcs[E]{Hash: c.Hash, Eq: c.Eq, Copy: c.Copy, Free: c.Free}
}
