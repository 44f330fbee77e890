package keytree

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBTreeInvalidDegree(t *testing.T) {
	t.Parallel()

	_, err := NewBTree[int, int](1)
	assert.Equal(t, ErrInvalidDegree, err)
	_, err = NewBTree[int, int](0)
	assert.Equal(t, ErrInvalidDegree, err)

	tree, err := NewBTree[int, int](2)
	require.NoError(t, err)
	assert.Equal(t, 2, tree.Degree())
}

func TestBTreeBasicOps(t *testing.T) {
	t.Parallel()

	tree, err := NewBTree[string, string](3)
	require.NoError(t, err)

	err = tree.Insert("key1", "value1")
	assert.NoError(t, err)

	val, err := tree.Get("key1")
	assert.NoError(t, err)
	assert.Equal(t, "value1", val)

	_, err = tree.Get("nonexistent")
	assert.Equal(t, ErrKeyNotFound, err)

	err = tree.Delete("key1")
	assert.NoError(t, err)
	assert.Equal(t, 0, tree.Len())
}

func TestBTreeDuplicateLeavesShapeUntouched(t *testing.T) {
	t.Parallel()

	tree, err := NewBTree[int, int](2)
	require.NoError(t, err)

	// Fill the root so a naive split-first insert would restructure.
	for _, k := range []int{1, 2, 3} {
		require.NoError(t, tree.Insert(k, k))
	}
	require.Equal(t, 1, tree.Height())

	err = tree.Insert(2, 99)
	assert.Equal(t, ErrKeyExists, err)
	assert.Equal(t, 1, tree.Height(), "rejected duplicate must not split the root")
	assert.Equal(t, 3, tree.Len())

	val, err := tree.Get(2)
	require.NoError(t, err)
	assert.Equal(t, 2, val)
	assert.NoError(t, tree.Check())
}

// TestBTreeSequentialSplits inserts 1..7 into a t=2 tree and checks
// the shape after the two splits: root [2 4] over leaves [1] [3]
// [5 6 7].
func TestBTreeSequentialSplits(t *testing.T) {
	t.Parallel()

	tree, err := NewBTree[int, int](2)
	require.NoError(t, err)

	for i := 1; i <= 7; i++ {
		require.NoError(t, tree.Insert(i, i))
		require.NoError(t, tree.Check())
	}

	require.Equal(t, 2, tree.Height())
	assert.Equal(t, []int{2, 4}, tree.root.keys)
	require.Len(t, tree.root.children, 3)
	for _, child := range tree.root.children {
		assert.True(t, child.leaf())
	}
	assert.Equal(t, []int{1}, tree.root.children[0].keys)
	assert.Equal(t, []int{3}, tree.root.children[1].keys)
	assert.Equal(t, []int{5, 6, 7}, tree.root.children[2].keys)
}

func TestBTreeDeleteLastKeyLeavesEmptyTree(t *testing.T) {
	t.Parallel()

	tree, err := NewBTree[int, string](2)
	require.NoError(t, err)

	require.NoError(t, tree.Insert(42, "answer"))
	require.NoError(t, tree.Delete(42))

	assert.Equal(t, 0, tree.Len())
	assert.Equal(t, 0, tree.Height())
	assert.True(t, tree.root.leaf())

	_, err = tree.Get(42)
	assert.Equal(t, ErrKeyNotFound, err)
	_, err = tree.Get(7)
	assert.Equal(t, ErrKeyNotFound, err)
	assert.NoError(t, tree.Check())
}

func TestBTreeRootDemotion(t *testing.T) {
	t.Parallel()

	tree, err := NewBTree[int, int](2)
	require.NoError(t, err)

	for i := 1; i <= 10; i++ {
		require.NoError(t, tree.Insert(i, i))
	}
	grown := tree.Height()
	require.Greater(t, grown, 1)

	for i := 1; i <= 10; i++ {
		require.NoError(t, tree.Delete(i))
		require.NoError(t, tree.Check(), "after deleting %d", i)
	}
	assert.Equal(t, 0, tree.Height(), "height shrinks back through root demotion")
}

func TestBTreeDeleteFromInternalNode(t *testing.T) {
	t.Parallel()

	tree, err := NewBTree[int, int](2)
	require.NoError(t, err)
	for i := 1; i <= 7; i++ {
		require.NoError(t, tree.Insert(i, i*10))
	}

	// 2 and 4 live in the root after the sequential splits; deleting
	// them exercises predecessor/successor replacement.
	require.NoError(t, tree.Delete(4))
	require.NoError(t, tree.Check())
	_, err = tree.Get(4)
	assert.Equal(t, ErrKeyNotFound, err)

	require.NoError(t, tree.Delete(2))
	require.NoError(t, tree.Check())

	for _, k := range []int{1, 3, 5, 6, 7} {
		val, err := tree.Get(k)
		require.NoError(t, err)
		assert.Equal(t, k*10, val)
	}
}

func TestBTreeBorrowBeforeMerge(t *testing.T) {
	t.Parallel()

	tree, err := NewBTree[int, int](2)
	require.NoError(t, err)
	for i := 1; i <= 7; i++ {
		require.NoError(t, tree.Insert(i, i))
	}
	// Leaves are [1] [3] [5 6 7]. Deleting 3 forces a fix on a minimal
	// leaf whose right sibling can afford to lend; height must not
	// change, which it would if the fix had merged.
	require.NoError(t, tree.Delete(3))
	require.NoError(t, tree.Check())
	assert.Equal(t, 2, tree.Height())
}

func TestBTreeRandomOpsKeepInvariants(t *testing.T) {
	t.Parallel()

	for _, degree := range []int{2, 3, 5} {
		degree := degree
		t.Run(fmt.Sprintf("t=%d", degree), func(t *testing.T) {
			t.Parallel()

			rng := rand.New(rand.NewSource(int64(degree)))
			tree, err := NewBTree[int, int](degree)
			require.NoError(t, err)
			present := make(map[int]bool)

			for i := 0; i < 3000; i++ {
				k := rng.Intn(600)
				if rng.Intn(3) == 0 {
					err := tree.Delete(k)
					if present[k] {
						require.NoError(t, err)
						delete(present, k)
					} else {
						require.Equal(t, ErrKeyNotFound, err)
					}
				} else {
					err := tree.Insert(k, k)
					if present[k] {
						require.Equal(t, ErrKeyExists, err)
					} else {
						require.NoError(t, err)
						present[k] = true
					}
				}
				require.NoError(t, tree.Check(), "after op %d", i)
			}
			require.Equal(t, len(present), tree.Len())
		})
	}
}

func TestBTreeMinMax(t *testing.T) {
	t.Parallel()

	tree, err := NewBTree[int, int](3)
	require.NoError(t, err)

	_, _, err = tree.Min()
	assert.Equal(t, ErrEmptyTree, err)

	for i := 20; i >= 1; i-- {
		require.NoError(t, tree.Insert(i, i))
	}

	k, _, err := tree.Min()
	require.NoError(t, err)
	assert.Equal(t, 1, k)

	k, _, err = tree.Max()
	require.NoError(t, err)
	assert.Equal(t, 20, k)
}

func TestBTreeAscendDescend(t *testing.T) {
	t.Parallel()

	tree, err := NewBTree[int, int](2)
	require.NoError(t, err)
	keys := []int{8, 3, 11, 1, 6, 9, 14, 4, 7, 10, 12, 16, 13, 2, 5, 15}
	for _, k := range keys {
		require.NoError(t, tree.Insert(k, k))
	}

	var asc []int
	tree.Ascend(func(k, _ int) bool {
		asc = append(asc, k)
		return true
	})
	var desc []int
	tree.Descend(func(k, _ int) bool {
		desc = append(desc, k)
		return true
	})

	require.Len(t, asc, len(keys))
	for i := range asc {
		assert.Equal(t, i+1, asc[i])
		assert.Equal(t, len(keys)-i, desc[i])
	}
}

func TestBTreeAscendRange(t *testing.T) {
	t.Parallel()

	tree, err := NewBTree[int, int](2)
	require.NoError(t, err)
	for i := 1; i <= 30; i++ {
		require.NoError(t, tree.Insert(i, i))
	}

	var got []int
	tree.AscendRange(10, 20, func(k, _ int) bool {
		got = append(got, k)
		return true
	})
	want := make([]int, 0, 11)
	for i := 10; i <= 20; i++ {
		want = append(want, i)
	}
	assert.Equal(t, want, got)

	// Single-key range.
	got = nil
	tree.AscendRange(7, 7, func(k, _ int) bool {
		got = append(got, k)
		return true
	})
	assert.Equal(t, []int{7}, got)
}
