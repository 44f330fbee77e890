package keytree

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAVLCursorForward(t *testing.T) {
	t.Parallel()

	tree := NewAVL[int, int]()
	for _, k := range []int{5, 1, 9, 3, 7} {
		require.NoError(t, tree.Insert(k, k*10))
	}

	c := tree.Cursor()
	var got []int
	for k, v, ok := c.First(); ok; k, v, ok = c.Next() {
		assert.Equal(t, k*10, v)
		got = append(got, k)
	}
	assert.Equal(t, []int{1, 3, 5, 7, 9}, got)
	assert.False(t, c.Valid())
}

func TestAVLCursorBackward(t *testing.T) {
	t.Parallel()

	tree := NewAVL[int, int]()
	for i := 1; i <= 20; i++ {
		require.NoError(t, tree.Insert(i, i))
	}

	c := tree.Cursor()
	var got []int
	for k, _, ok := c.Last(); ok; k, _, ok = c.Prev() {
		got = append(got, k)
	}
	require.Len(t, got, 20)
	for i, k := range got {
		assert.Equal(t, 20-i, k)
	}
}

func TestAVLCursorSeek(t *testing.T) {
	t.Parallel()

	tree := NewAVL[int, int]()
	for _, k := range []int{10, 20, 30, 40, 50} {
		require.NoError(t, tree.Insert(k, k))
	}

	c := tree.Cursor()

	k, _, ok := c.Seek(30)
	require.True(t, ok)
	assert.Equal(t, 30, k)

	// Between keys: lands on the successor.
	k, _, ok = c.Seek(31)
	require.True(t, ok)
	assert.Equal(t, 40, k)

	// Before all keys.
	k, _, ok = c.Seek(-5)
	require.True(t, ok)
	assert.Equal(t, 10, k)

	// Past the end.
	_, _, ok = c.Seek(51)
	assert.False(t, ok)

	// Seek then step both directions.
	k, _, _ = c.Seek(25)
	assert.Equal(t, 30, k)
	k, _, _ = c.Prev()
	assert.Equal(t, 20, k)
	k, _, _ = c.Next()
	assert.Equal(t, 30, k)
}

func TestBTreeCursorForward(t *testing.T) {
	t.Parallel()

	tree, err := NewBTree[int, int](2)
	require.NoError(t, err)
	keys := rand.New(rand.NewSource(7)).Perm(200)
	for _, k := range keys {
		require.NoError(t, tree.Insert(k, k+1000))
	}

	c := tree.Cursor()
	var got []int
	for k, v, ok := c.First(); ok; k, v, ok = c.Next() {
		assert.Equal(t, k+1000, v)
		got = append(got, k)
	}
	require.Len(t, got, 200)
	for i, k := range got {
		assert.Equal(t, i, k)
	}
}

func TestBTreeCursorBackward(t *testing.T) {
	t.Parallel()

	tree, err := NewBTree[int, int](3)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		require.NoError(t, tree.Insert(i, i))
	}

	c := tree.Cursor()
	var got []int
	for k, _, ok := c.Last(); ok; k, _, ok = c.Prev() {
		got = append(got, k)
	}
	require.Len(t, got, 100)
	for i, k := range got {
		assert.Equal(t, 99-i, k)
	}
}

func TestBTreeCursorSeek(t *testing.T) {
	t.Parallel()

	tree, err := NewBTree[int, int](2)
	require.NoError(t, err)
	for i := 0; i < 50; i += 2 {
		require.NoError(t, tree.Insert(i, i))
	}

	c := tree.Cursor()

	// Exact hits, including keys that live in branch nodes.
	for i := 0; i < 50; i += 2 {
		k, _, ok := c.Seek(i)
		require.True(t, ok)
		require.Equal(t, i, k)
	}

	// Absent keys land on the successor.
	for i := 1; i < 49; i += 2 {
		k, _, ok := c.Seek(i)
		require.True(t, ok)
		require.Equal(t, i+1, k)
	}

	_, _, ok := c.Seek(49)
	assert.False(t, ok)
}

func TestBTreeCursorMixedDirections(t *testing.T) {
	t.Parallel()

	tree, err := NewBTree[int, int](2)
	require.NoError(t, err)
	for i := 1; i <= 30; i++ {
		require.NoError(t, tree.Insert(i, i))
	}

	c := tree.Cursor()
	k, _, _ := c.Seek(15)
	assert.Equal(t, 15, k)
	k, _, _ = c.Next()
	assert.Equal(t, 16, k)
	k, _, _ = c.Prev()
	assert.Equal(t, 15, k)
	k, _, _ = c.Prev()
	assert.Equal(t, 14, k)
	k, _, _ = c.Next()
	assert.Equal(t, 15, k)
}

func TestBTreeCursorEmptyTree(t *testing.T) {
	t.Parallel()

	tree, err := NewBTree[int, int](2)
	require.NoError(t, err)

	c := tree.Cursor()
	_, _, ok := c.First()
	assert.False(t, ok)
	_, _, ok = c.Last()
	assert.False(t, ok)
	_, _, ok = c.Seek(1)
	assert.False(t, ok)
	_, _, ok = c.Next()
	assert.False(t, ok)
}

func TestBPlusCursorForward(t *testing.T) {
	t.Parallel()

	tree, err := NewBPlusTree[int, int](2)
	require.NoError(t, err)
	keys := rand.New(rand.NewSource(9)).Perm(300)
	for _, k := range keys {
		require.NoError(t, tree.Insert(k, k))
	}

	c := tree.Cursor()
	var got []int
	for k, _, ok := c.First(); ok; k, _, ok = c.Next() {
		got = append(got, k)
	}
	require.Len(t, got, 300)
	for i, k := range got {
		assert.Equal(t, i, k)
	}
}

func TestBPlusCursorSeek(t *testing.T) {
	t.Parallel()

	tree, err := NewBPlusTree[int, int](2)
	require.NoError(t, err)
	for i := 0; i < 100; i += 5 {
		require.NoError(t, tree.Insert(i, i))
	}

	c := tree.Cursor()

	k, _, ok := c.Seek(35)
	require.True(t, ok)
	assert.Equal(t, 35, k)

	k, _, ok = c.Seek(36)
	require.True(t, ok)
	assert.Equal(t, 40, k)

	_, _, ok = c.Seek(96)
	assert.False(t, ok)

	// The seek cost is one descent; the scan then rides the chain.
	k, _, _ = c.Seek(50)
	count := 1
	for _, _, ok := c.Next(); ok; _, _, ok = c.Next() {
		count++
	}
	assert.Equal(t, 50, k)
	assert.Equal(t, 10, count)
}

func TestBPlusCursorEmptyTree(t *testing.T) {
	t.Parallel()

	tree, err := NewBPlusTree[int, int](2)
	require.NoError(t, err)

	c := tree.Cursor()
	_, _, ok := c.First()
	assert.False(t, ok)
	_, _, ok = c.Seek(0)
	assert.False(t, ok)
}
