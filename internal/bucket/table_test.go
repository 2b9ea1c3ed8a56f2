package bucket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-reset/reset/internal/ops"
	"github.com/go-reset/reset/internal/rerr"
)

func intFuncs() ops.Funcs[int] {
	return ops.Funcs[int]{
		Hash: func(v int) uint64 { return uint64(v) },
		Eq:   func(a, b int) bool { return a == b },
	}
}

func TestRouteSpreadsAcrossBuckets(t *testing.T) {
	seen := map[int]bool{}
	for i := 0; i < 8; i++ {
		h := uint64(i) << (wordBits - 3)
		seen[route(h, 3)] = true
	}
	assert.Len(t, seen, 8)
}

func TestInsertFindDelete(t *testing.T) {
	tbl := New[int](3)
	fn := intFuncs()
	for i := 0; i < 100; i++ {
		require.NoError(t, tbl.Insert(i, fn))
	}
	assert.Equal(t, 100, tbl.Cardinality())

	for i := 0; i < 100; i++ {
		got, ok := tbl.Find(i, fn)
		require.True(t, ok)
		assert.Equal(t, i, got)
	}

	require.NoError(t, tbl.Delete(50, fn))
	_, ok := tbl.Find(50, fn)
	assert.False(t, ok)

	err := tbl.Delete(50, fn)
	assert.ErrorIs(t, err, rerr.ErrNotFound)
}

func TestInsertDuplicate(t *testing.T) {
	tbl := New[int](2)
	fn := intFuncs()
	require.NoError(t, tbl.Insert(1, fn))
	assert.ErrorIs(t, tbl.Insert(1, fn), rerr.ErrDuplicate)
}

func TestDeleteByPredicate(t *testing.T) {
	tbl := New[int](3)
	fn := intFuncs()
	for i := 0; i < 50; i++ {
		require.NoError(t, tbl.Insert(i, fn))
	}
	n := tbl.DeleteByPredicate(func(v int) bool { return v < 25 }, nil)
	assert.Equal(t, 25, n)
	assert.Equal(t, 25, tbl.Cardinality())
}

func TestSelect(t *testing.T) {
	tbl := New[int](3)
	fn := intFuncs()
	for i := 0; i < 20; i++ {
		require.NoError(t, tbl.Insert(i, fn))
	}
	sum := 0
	tbl.Select(nil, func(v int) int {
		sum += v
		return 0
	})
	assert.Equal(t, 190, sum)
}

func TestClose(t *testing.T) {
	tbl := New[int](2)
	var freed []int
	fn := ops.Funcs[int]{
		Hash: func(v int) uint64 { return uint64(v) },
		Eq:   func(a, b int) bool { return a == b },
		Free: func(v int) { freed = append(freed, v) },
	}
	for i := 0; i < 10; i++ {
		require.NoError(t, tbl.Insert(i, fn))
	}
	tbl.Close(fn)
	assert.Len(t, freed, 10)
}

func TestUnionIntoSameSize(t *testing.T) {
	a, b := New[int](3), New[int](3)
	fn := intFuncs()
	for _, v := range []int{1, 2, 3} {
		require.NoError(t, a.Insert(v, fn))
	}
	for _, v := range []int{3, 4, 5} {
		require.NoError(t, b.Insert(v, fn))
	}
	a.UnionInto(b, fn)
	assert.Equal(t, 5, a.Cardinality())
}

func TestUnionIntoFinerSource(t *testing.T) {
	dest := New[int](2)
	src := New[int](4)
	fn := intFuncs()
	for i := 0; i < 200; i++ {
		require.NoError(t, src.Insert(i, fn))
	}
	dest.UnionInto(src, fn)
	assert.Equal(t, 200, dest.Cardinality())
}

func TestUnionIntoCoarserSource(t *testing.T) {
	dest := New[int](4)
	src := New[int](2)
	fn := intFuncs()
	for i := 0; i < 200; i++ {
		require.NoError(t, src.Insert(i, fn))
	}
	dest.UnionInto(src, fn)
	assert.Equal(t, 200, dest.Cardinality())
	for i := 0; i < 200; i++ {
		_, ok := dest.Find(i, fn)
		assert.True(t, ok)
	}
}

func TestIsSubsetAndEqualAcrossSizes(t *testing.T) {
	small := New[int](2)
	big := New[int](4)
	fn := intFuncs()
	for i := 0; i < 50; i++ {
		require.NoError(t, small.Insert(i, fn))
		require.NoError(t, big.Insert(i, fn))
	}
	require.NoError(t, big.Insert(999, fn))

	assert.True(t, small.IsSubset(big, fn))
	assert.False(t, big.IsSubset(small, fn))
	assert.False(t, small.Equal(big, fn))

	require.NoError(t, small.Insert(999, fn))
	assert.True(t, small.Equal(big, fn))
}
