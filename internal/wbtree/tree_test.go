package wbtree

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slices"

	"github.com/go-reset/reset/internal/bloom"
	"github.com/go-reset/reset/internal/ops"
	"github.com/go-reset/reset/internal/rerr"
)

// collectHashes returns every hash stored in the tree, in ascending order,
// by selecting every element and sorting the hashes it recomputes — an
// independent check that in-order traversal of the BST ordering matches
// what Select visits, regardless of visit order.
func collectHashes(tr *Tree[int]) []uint64 {
	var got []uint64
	tr.Select(nil, func(v int) int {
		got = append(got, uint64(v))
		return 0
	})
	slices.Sort(got)
	return got
}

func intFuncs() ops.Funcs[int] {
	return ops.Funcs[int]{
		Hash: func(v int) uint64 { return uint64(v) },
		Eq:   func(a, b int) bool { return a == b },
	}
}

// checkBalance walks every node and asserts the weight-balance invariant:
// neither child's node count exceeds twice the other's plus one.
func checkBalance[E any](t *testing.T, n *node[E]) {
	t.Helper()
	if n == nil {
		return
	}
	lc, rc := count(n.left), count(n.right)
	assert.LessOrEqualf(t, rc, 2*lc+1, "right-heavy violation at hash %v", n.hash)
	assert.LessOrEqualf(t, lc, 2*rc+1, "left-heavy violation at hash %v", n.hash)
	checkBalance[E](t, n.left)
	checkBalance[E](t, n.right)
}

// checkBloomSoundness asserts every node's subtree Bloom mask contains the
// hash of every node beneath it (a necessary, not sufficient, soundness
// property: Contains must never be false for a hash that is actually
// present).
func checkBloomSoundness[E any](t *testing.T, root, n *node[E]) {
	t.Helper()
	if n == nil {
		return
	}
	got := find(root, n.hash, bloom.FromHash(n.hash))
	assert.NotNilf(t, got, "bloom pruning incorrectly skipped present hash %v", n.hash)
	checkBloomSoundness(t, root, n.left)
	checkBloomSoundness(t, root, n.right)
}

func TestInsertFindDelete(t *testing.T) {
	var tr Tree[int]
	fn := intFuncs()
	vals := []int{50, 20, 70, 10, 30, 60, 80, 5, 90, 1}
	for _, v := range vals {
		require.NoError(t, tr.Insert(uint64(v), v, fn))
	}
	assert.Equal(t, len(vals), tr.Cardinality())
	checkBalance[int](t, tr.root)

	for _, v := range vals {
		got, ok := tr.Find(uint64(v), v, fn.Eq)
		require.True(t, ok)
		assert.Equal(t, v, got)
	}

	_, ok := tr.Find(9999, 9999, fn.Eq)
	assert.False(t, ok)

	require.NoError(t, tr.DeleteOne(uint64(20), 20, fn))
	_, ok = tr.Find(uint64(20), 20, fn.Eq)
	assert.False(t, ok)
	assert.Equal(t, len(vals)-1, tr.Cardinality())
	checkBalance[int](t, tr.root)

	err := tr.DeleteOne(uint64(20), 20, fn)
	assert.ErrorIs(t, err, rerr.ErrNotFound)
}

func TestInsertDuplicate(t *testing.T) {
	var tr Tree[int]
	fn := intFuncs()
	require.NoError(t, tr.Insert(1, 1, fn))
	err := tr.Insert(1, 1, fn)
	assert.ErrorIs(t, err, rerr.ErrDuplicate)
	assert.Equal(t, 1, tr.Cardinality())
}

func TestCollisionsShareOneNode(t *testing.T) {
	var tr Tree[string]
	fn := ops.Funcs[string]{
		Hash: func(s string) uint64 { return 7 }, // force collisions
		Eq:   func(a, b string) bool { return a == b },
	}
	require.NoError(t, tr.Insert(7, "a", fn))
	require.NoError(t, tr.Insert(7, "b", fn))
	require.NoError(t, tr.Insert(7, "c", fn))
	assert.Equal(t, 3, tr.Cardinality())
	assert.Equal(t, 1, count(tr.root))

	got, ok := tr.Find(7, "b", fn.Eq)
	require.True(t, ok)
	assert.Equal(t, "b", got)

	require.NoError(t, tr.DeleteOne(7, "b", fn))
	assert.Equal(t, 2, tr.Cardinality())
	_, ok = tr.Find(7, "b", fn.Eq)
	assert.False(t, ok)
}

func TestBalanceUnderSortedInsertion(t *testing.T) {
	var tr Tree[int]
	fn := intFuncs()
	for i := 0; i < 500; i++ {
		require.NoError(t, tr.Insert(uint64(i), i, fn))
	}
	assert.Equal(t, 500, tr.Cardinality())
	checkBalance[int](t, tr.root)

	want := make([]uint64, 500)
	for i := range want {
		want[i] = uint64(i)
	}
	assert.Equal(t, want, collectHashes(&tr))
}

func TestDeleteByPredicate(t *testing.T) {
	var tr Tree[int]
	fn := intFuncs()
	for i := 0; i < 20; i++ {
		require.NoError(t, tr.Insert(uint64(i), i, fn))
	}
	n := tr.DeleteByPredicate(func(v int) bool { return v%2 == 0 }, nil)
	assert.Equal(t, 10, n)
	assert.Equal(t, 10, tr.Cardinality())
	checkBalance[int](t, tr.root)
	tr.Select(nil, func(v int) int {
		assert.NotEqual(t, 0, v%2, "even value %d survived DeleteByPredicate", v)
		return 0
	})
}

func TestSelectVisitsEveryElement(t *testing.T) {
	var tr Tree[int]
	fn := intFuncs()
	for i := 0; i < 10; i++ {
		require.NoError(t, tr.Insert(uint64(i), i, fn))
	}
	seen := 0
	tr.Select(nil, func(v int) int {
		seen++
		return 0
	})
	assert.Equal(t, 10, seen)
}

func TestUnionInto(t *testing.T) {
	var a, b Tree[int]
	fn := intFuncs()
	for _, v := range []int{1, 2, 3} {
		require.NoError(t, a.Insert(uint64(v), v, fn))
	}
	for _, v := range []int{3, 4, 5} {
		require.NoError(t, b.Insert(uint64(v), v, fn))
	}
	a.UnionInto(&b, fn)
	assert.Equal(t, 5, a.Cardinality())
	checkBalance[int](t, a.root)
	for _, v := range []int{1, 2, 3, 4, 5} {
		_, ok := a.Find(uint64(v), v, fn.Eq)
		assert.True(t, ok, "missing %d after union", v)
	}
}

func TestUnionIntoLarger(t *testing.T) {
	var a, b Tree[int]
	fn := intFuncs()
	for i := 0; i < 300; i++ {
		require.NoError(t, a.Insert(uint64(i), i, fn))
	}
	for i := 200; i < 500; i++ {
		require.NoError(t, b.Insert(uint64(i), i, fn))
	}
	a.UnionInto(&b, fn)
	assert.Equal(t, 500, a.Cardinality())
	checkBalance[int](t, a.root)
}

func TestIsSubset(t *testing.T) {
	var a, b Tree[int]
	fn := intFuncs()
	for _, v := range []int{1, 2, 3} {
		require.NoError(t, a.Insert(uint64(v), v, fn))
	}
	for _, v := range []int{1, 2, 3, 4, 5} {
		require.NoError(t, b.Insert(uint64(v), v, fn))
	}
	assert.True(t, a.IsSubset(&b, fn))
	assert.False(t, b.IsSubset(&a, fn))
}

func TestClosestLowerAndGreater(t *testing.T) {
	var tr Tree[int]
	fn := intFuncs()
	for _, v := range []int{10, 20, 30, 40} {
		require.NoError(t, tr.Insert(uint64(v), v, fn))
	}
	lower, ok := tr.ClosestLower(25)
	require.True(t, ok)
	assert.Equal(t, uint64(20), lower)

	greater, ok := tr.ClosestGreater(25)
	require.True(t, ok)
	assert.Equal(t, uint64(30), greater)

	_, ok = tr.ClosestLower(5)
	assert.False(t, ok)

	exact, ok := tr.ClosestLower(20)
	require.True(t, ok)
	assert.Equal(t, uint64(20), exact)
}

func TestBloomSoundnessAcrossInserts(t *testing.T) {
	var tr Tree[int]
	fn := intFuncs()
	for i := 0; i < 200; i++ {
		require.NoError(t, tr.Insert(uint64(i*31+7), i, fn))
	}
	checkBloomSoundness[int](t, tr.root, tr.root)
}

func TestEmptyTree(t *testing.T) {
	var tr Tree[int]
	assert.Equal(t, 0, tr.Cardinality())
	_, ok := tr.Find(1, 1, intFuncs().Eq)
	assert.False(t, ok)
	assert.Equal(t, 0, tr.DeleteByPredicate(func(int) bool { return true }, nil))
}

func TestManyInsertsPseudoRandomOrder(t *testing.T) {
	var tr Tree[int]
	fn := intFuncs()
	const n = 1000
	for i := 0; i < n; i++ {
		h := uint64((i * 2654435761) % 100003)
		require.NoError(t, tr.Insert(h, i, fn), fmt.Sprintf("insert %d", i))
	}
	checkBalance[int](t, tr.root)
}
