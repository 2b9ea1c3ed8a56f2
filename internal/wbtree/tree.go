// Package wbtree implements the per-bucket balanced hash tree: a binary
// search tree ordered by the numeric value of a 64-bit hash, where every
// node owns a collision list of elements sharing that hash and carries a
// Bloom summary of every hash present in its subtree.
//
// It is not an AVL tree despite that naming surviving in the origin's
// source tree (src/libreset/avl/*.c): the balance discipline enforced here
// is weight-balance — for every node, neither child's node count may
// exceed twice the other's plus one. Rotation and rebalance arithmetic is
// ported directly from src/libreset/avl/common.c and
// src/libreset/avl/base.c in the retrieved original_source tree; the
// merge (union) recursion is ported from
// src/libreset/avl/avl_union.c.
//
// Per the REDESIGN FLAGS, nodes are ordinary Go pointers, not an arena of
// integer handles: the origin's raw-pointer-tree-with-manual-rotations
// pattern is exactly the "owned value with explicit child ownership,
// rotation returns the new root by return" idiom the flags ask for once a
// language has a garbage collector, so no arena is needed.
package wbtree

import (
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"

	"github.com/go-reset/reset/internal/bloom"
	"github.com/go-reset/reset/internal/clist"
	"github.com/go-reset/reset/internal/ops"
	"github.com/go-reset/reset/internal/rerr"
)

var (
	rotationMeter  = metrics.NewRegisteredCounter("reset/wbtree/rotations", nil)
	rebalanceMeter = metrics.NewRegisteredCounter("reset/wbtree/rebalances", nil)
	prunedMeter    = metrics.NewRegisteredCounter("reset/wbtree/pruned", nil)
)

type node[E any] struct {
	hash  uint64
	list  clist.List[E]
	bl    bloom.Mask
	ht    int
	cnt   int
	left  *node[E]
	right *node[E]
}

// Tree is a balanced hash tree. The zero value is an empty tree ready to
// use.
type Tree[E any] struct {
	root *node[E]
}

func height[E any](n *node[E]) int {
	if n == nil {
		return 0
	}
	return n.ht
}

func count[E any](n *node[E]) int {
	if n == nil {
		return 0
	}
	return n.cnt
}

func maskOf[E any](n *node[E]) bloom.Mask {
	if n == nil {
		return 0
	}
	return n.bl
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// regenMetadata recomputes height, node count and subtree Bloom of n from
// its (already up to date) children. Safe to call with n == nil.
func regenMetadata[E any](n *node[E]) {
	if n == nil {
		return
	}
	n.ht = 1 + max(height(n.left), height(n.right))
	n.cnt = 1 + count(n.left) + count(n.right)
	n.bl = bloom.FromHash(n.hash) | maskOf(n.left) | maskOf(n.right)
}

func rotateLeft[E any](n *node[E]) *node[E] {
	if n == nil || n.right == nil {
		return n
	}
	if metrics.Enabled {
		rotationMeter.Inc(1)
	}
	newRoot := n.right
	n.right = newRoot.left
	newRoot.left = n
	regenMetadata(n)
	regenMetadata(newRoot)
	return newRoot
}

func rotateRight[E any](n *node[E]) *node[E] {
	if n == nil || n.left == nil {
		return n
	}
	if metrics.Enabled {
		rotationMeter.Inc(1)
	}
	newRoot := n.left
	n.left = newRoot.right
	newRoot.right = n
	regenMetadata(n)
	regenMetadata(newRoot)
	return newRoot
}

// rebalance restores the weight-balance invariant of the subtree rooted at
// n, short-circuiting subtrees whose node count is already compatible with
// their cached height, and recursing into both children otherwise. Called
// once per mutating tree operation, at the (possibly new) root.
func rebalance[E any](n *node[E]) *node[E] {
	if n == nil {
		return nil
	}
	if metrics.Enabled {
		rebalanceMeter.Inc(1)
	}
	if count(n) > (1<<uint(n.ht-1))-1 {
		return n
	}
	for count(n.right) > 2*count(n.left)+1 {
		for count(n.right.right) <= count(n.left) {
			n.right = rotateRight(n.right)
		}
		n = rotateLeft(n)
	}
	for count(n.left) > 2*count(n.right)+1 {
		for count(n.left.left) <= count(n.right) {
			n.left = rotateLeft(n.left)
		}
		n = rotateRight(n)
	}
	n.left = rebalance(n.left)
	n.right = rebalance(n.right)
	return n
}

func find[E any](n *node[E], h uint64, qb bloom.Mask) *node[E] {
	for n != nil && n.hash != h {
		if !bloom.Contains(qb, n.bl) {
			if metrics.Enabled {
				prunedMeter.Inc(1)
			}
			log.Trace("reset: bloom pruned subtree descent", "target", h, "node", n.hash)
			return nil
		}
		if n.hash > h {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n
}

// Find returns the element equal (per fn.Eq) to q stored under hash h, if
// any, pruning subtree descents whose Bloom summary cannot contain h.
func (t *Tree[E]) Find(h uint64, q E, eq func(E, E) bool) (E, bool) {
	n := find(t.root, h, bloom.FromHash(h))
	if n == nil {
		var zero E
		return zero, false
	}
	return n.list.Find(q, eq)
}

func insertNode[E any](n *node[E], h uint64, v E, fn ops.Funcs[E]) (*node[E], error) {
	if n == nil {
		nn := &node[E]{hash: h}
		_ = nn.list.Insert(v, fn.Eq, fn.Copy) // empty list: duplicate is impossible
		regenMetadata(nn)
		return nn, nil
	}
	switch {
	case h < n.hash:
		left, err := insertNode(n.left, h, v, fn)
		n.left = left
		regenMetadata(n)
		return n, err
	case h > n.hash:
		right, err := insertNode(n.right, h, v, fn)
		n.right = right
		regenMetadata(n)
		return n, err
	default:
		err := n.list.Insert(v, fn.Eq, fn.Copy)
		regenMetadata(n)
		return n, err
	}
}

// Insert adds v under hash h. Reports ErrDuplicate (from internal/rerr) if
// an equal element is already present.
func (t *Tree[E]) Insert(h uint64, v E, fn ops.Funcs[E]) error {
	root, err := insertNode(t.root, h, v, fn)
	t.root = rebalance(root)
	return err
}

// isolateLeftmost removes and returns the leftmost node of the subtree
// rooted at n, returning the subtree root after removal and the extracted
// node (nil if n was nil to begin with).
func isolateLeftmost[E any](n *node[E]) (*node[E], *node[E]) {
	if n == nil {
		return nil, nil
	}
	if n.left == nil {
		return n.right, n
	}
	newLeft, extracted := isolateLeftmost(n.left)
	n.left = newLeft
	regenMetadata(n)
	return n, extracted
}

// isolate removes n from the tree, promoting either its lone child or the
// leftmost descendant of its right subtree in its place.
func isolate[E any](n *node[E]) *node[E] {
	if n.left == nil {
		return n.right
	}
	newRight, extracted := isolateLeftmost(n.right)
	if extracted == nil {
		return n.left
	}
	extracted.left = n.left
	extracted.right = newRight
	regenMetadata(extracted)
	return extracted
}

func deleteNode[E any](n *node[E], h uint64, q E, fn ops.Funcs[E]) (*node[E], error) {
	if n == nil {
		return nil, rerr.ErrNotFound
	}
	switch {
	case h < n.hash:
		left, err := deleteNode(n.left, h, q, fn)
		n.left = left
		regenMetadata(n)
		return n, err
	case h > n.hash:
		right, err := deleteNode(n.right, h, q, fn)
		n.right = right
		regenMetadata(n)
		return n, err
	default:
		err := n.list.DeleteOne(q, fn.Eq, fn.Free)
		if err != nil {
			return n, err
		}
		if n.list.IsEmpty() {
			next := isolate(n)
			regenMetadata(next)
			return next, nil
		}
		regenMetadata(n)
		return n, nil
	}
}

// DeleteOne removes the element equal to q stored under hash h. Reports
// ErrNotFound if no such element exists.
func (t *Tree[E]) DeleteOne(h uint64, q E, fn ops.Funcs[E]) error {
	root, err := deleteNode(t.root, h, q, fn)
	t.root = rebalance(root)
	return err
}

func deleteByPredNode[E any](n *node[E], pred func(E) bool, free func(E)) (*node[E], int) {
	if n == nil {
		return nil, 0
	}
	left, lc := deleteByPredNode(n.left, pred, free)
	n.left = left
	right, rc := deleteByPredNode(n.right, pred, free)
	n.right = right
	removed := lc + rc + n.list.DeleteByPredicate(pred, free)
	if n.list.IsEmpty() {
		n = isolate(n)
	}
	regenMetadata(n)
	return n, removed
}

// DeleteByPredicate removes every element for which pred is true and
// returns the number removed.
func (t *Tree[E]) DeleteByPredicate(pred func(E) bool, free func(E)) int {
	root, n := deleteByPredNode(t.root, pred, free)
	t.root = rebalance(root)
	return n
}

func cardinality[E any](n *node[E]) int {
	if n == nil {
		return 0
	}
	return n.list.Count() + cardinality(n.left) + cardinality(n.right)
}

// Cardinality returns the total number of elements stored in the tree
// (the sum of every node's collision-list length, not the node count used
// for weight balancing).
func (t *Tree[E]) Cardinality() int {
	return cardinality(t.root)
}

func selectNode[E any](n *node[E], pred func(E) bool, proc func(E) int) int {
	if n == nil {
		return 0
	}
	if rc := selectNode(n.left, pred, proc); rc < 0 {
		return rc
	}
	if rc := selectNode(n.right, pred, proc); rc < 0 {
		return rc
	}
	return n.list.Select(pred, proc)
}

// Select calls proc for every stored element where pred is true (or every
// element, if pred is nil), stopping and returning the first negative
// value proc returns; otherwise returns zero.
func (t *Tree[E]) Select(pred func(E) bool, proc func(E) int) int {
	return selectNode(t.root, pred, proc)
}

func nodeIsSubset[E any](n *node[E], other *Tree[E], fn ops.Funcs[E]) bool {
	if n == nil {
		return true
	}
	if !nodeIsSubset(n.left, other, fn) {
		return false
	}
	if !nodeIsSubset(n.right, other, fn) {
		return false
	}
	match := find(other.root, n.hash, bloom.FromHash(n.hash))
	if match == nil {
		return false
	}
	return n.list.IsSubset(&match.list, fn.Eq)
}

// IsSubset reports whether every element of t is found in other.
func (t *Tree[E]) IsSubset(other *Tree[E], fn ops.Funcs[E]) bool {
	return nodeIsSubset(t.root, other, fn)
}

// unionNode merges src into dest, following the origin's merge_trees
// recursion: when the hashes differ, the whole src node is pushed down the
// appropriate side of dest, and src's other child is merged in separately
// at the current level, since it may land on either side of dest's hash.
func unionNode[E any](dest, src *node[E], fn ops.Funcs[E]) *node[E] {
	if src == nil {
		return dest
	}
	if dest == nil {
		dest = &node[E]{hash: src.hash}
	} else if src.hash > dest.hash {
		dest.right = unionNode(dest.right, &node[E]{hash: src.hash, list: src.list, right: src.right}, fn)
		regenMetadata(dest)
		return unionNode(dest, src.left, fn)
	} else if src.hash < dest.hash {
		dest.left = unionNode(dest.left, &node[E]{hash: src.hash, list: src.list, left: src.left}, fn)
		regenMetadata(dest)
		return unionNode(dest, src.right, fn)
	}
	dest.left = unionNode(dest.left, src.left, fn)
	dest.right = unionNode(dest.right, src.right, fn)
	src.list.UnionInto(&dest.list, fn.Eq, fn.Copy)
	regenMetadata(dest)
	return dest
}

// UnionInto merges src into t, in place.
func (t *Tree[E]) UnionInto(src *Tree[E], fn ops.Funcs[E]) {
	t.root = rebalance(unionNode(t.root, src.root, fn))
}

func findClosestLower[E any](root *node[E], h uint64) *node[E] {
	n := root
	for n != nil {
		if n.hash <= h {
			break
		}
		n = n.left
	}
	result := n
	for n != nil {
		if n.hash > h {
			n = n.left
			continue
		}
		result = n
		n = n.right
	}
	return result
}

func findClosestGreater[E any](root *node[E], h uint64) *node[E] {
	n := root
	for n != nil {
		if n.hash >= h {
			break
		}
		n = n.right
	}
	result := n
	for n != nil {
		if n.hash < h {
			n = n.right
			continue
		}
		result = n
		n = n.left
	}
	return result
}

// ClosestLower returns the largest stored hash <= h, if any. Not part of
// the public Set surface (ordered iteration by a user-meaningful key is an
// explicit non-goal) but useful internally and directly ported from
// src/libreset/avl/common.c's find_closest_lower.
func (t *Tree[E]) ClosestLower(h uint64) (uint64, bool) {
	n := findClosestLower(t.root, h)
	if n == nil {
		return 0, false
	}
	return n.hash, true
}

// ClosestGreater returns the smallest stored hash >= h, if any. See
// ClosestLower.
func (t *Tree[E]) ClosestGreater(h uint64) (uint64, bool) {
	n := findClosestGreater(t.root, h)
	if n == nil {
		return 0, false
	}
	return n.hash, true
}
