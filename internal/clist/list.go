// Package clist implements the collision list: the chain of elements
// sharing one hash value, stored at a single node of the balanced hash
// tree. It is a singly-linked, insertion-ordered sequence with no two
// entries equal under the bound Eq function.
//
// Grounded on the insert/find/delete/union/is_subset/select contract
// described in src/libreset/avl/base.c's calls into "ll_*" in the
// retrieved original_source tree (the linked-list translation unit itself
// was not kept by the retrieval filter, only its call sites); the
// predicate/processor-without-a-cookie shape follows the REDESIGN FLAGS
// directive to replace a pred(v, etc) + opaque context pointer with plain
// closures.
package clist

import "github.com/go-reset/reset/internal/rerr"

type entry[E any] struct {
	value E
	next  *entry[E]
}

// List is an ordered-by-insertion sequence of elements sharing one hash.
// The zero value is an empty list ready to use.
type List[E any] struct {
	head *entry[E]
	tail *entry[E]
	n    int
}

// IsEmpty reports whether the list holds no elements.
func (l *List[E]) IsEmpty() bool { return l.n == 0 }

// Count returns the number of elements in the list.
func (l *List[E]) Count() int { return l.n }

// Find returns the first entry equal (per eq) to q, if any.
func (l *List[E]) Find(q E, eq func(E, E) bool) (E, bool) {
	for e := l.head; e != nil; e = e.next {
		if eq(e.value, q) {
			return e.value, true
		}
	}
	var zero E
	return zero, false
}

// Insert appends v (or copyFn(v), if copyFn is non-nil) unless an entry
// already compares equal to v, in which case it reports ErrDuplicate and
// leaves the list unchanged.
func (l *List[E]) Insert(v E, eq func(E, E) bool, copyFn func(E) E) error {
	for e := l.head; e != nil; e = e.next {
		if eq(e.value, v) {
			return rerr.ErrDuplicate
		}
	}
	if copyFn != nil {
		v = copyFn(v)
	}
	e := &entry[E]{value: v}
	if l.tail == nil {
		l.head, l.tail = e, e
	} else {
		l.tail.next = e
		l.tail = e
	}
	l.n++
	return nil
}

func (l *List[E]) unlink(e, prev *entry[E]) {
	if prev == nil {
		l.head = e.next
	} else {
		prev.next = e.next
	}
	if e == l.tail {
		l.tail = prev
	}
	l.n--
}

// DeleteOne removes the first entry equal to q, invoking free on it (if
// free is non-nil). Reports ErrNotFound if no entry matched.
func (l *List[E]) DeleteOne(q E, eq func(E, E) bool, free func(E)) error {
	var prev *entry[E]
	for e := l.head; e != nil; e = e.next {
		if eq(e.value, q) {
			l.unlink(e, prev)
			if free != nil {
				free(e.value)
			}
			return nil
		}
		prev = e
	}
	return rerr.ErrNotFound
}

// DeleteByPredicate removes every entry for which pred is true, invoking
// free on each (if free is non-nil), and returns the number removed.
func (l *List[E]) DeleteByPredicate(pred func(E) bool, free func(E)) int {
	var prev *entry[E]
	removed := 0
	e := l.head
	for e != nil {
		next := e.next
		if pred(e.value) {
			l.unlink(e, prev)
			if free != nil {
				free(e.value)
			}
			removed++
		} else {
			prev = e
		}
		e = next
	}
	return removed
}

// IsSubset reports whether every entry of l is found (by eq) in other.
func (l *List[E]) IsSubset(other *List[E], eq func(E, E) bool) bool {
	for e := l.head; e != nil; e = e.next {
		if _, ok := other.Find(e.value, eq); !ok {
			return false
		}
	}
	return true
}

// UnionInto inserts every entry of l into dest unless already present.
// Insertion may invoke copyFn.
func (l *List[E]) UnionInto(dest *List[E], eq func(E, E) bool, copyFn func(E) E) {
	for e := l.head; e != nil; e = e.next {
		// Duplicate is the expected outcome when the element is already
		// present in dest; any other error is not possible here.
		_ = dest.Insert(e.value, eq, copyFn)
	}
}

// Select calls proc for every entry where pred is true (or every entry, if
// pred is nil), stopping and returning the first negative value proc
// returns; otherwise returns zero.
func (l *List[E]) Select(pred func(E) bool, proc func(E) int) int {
	for e := l.head; e != nil; e = e.next {
		if pred == nil || pred(e.value) {
			if rc := proc(e.value); rc < 0 {
				return rc
			}
		}
	}
	return 0
}
