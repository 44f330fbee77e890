package keytree

// Cursors provide ordered, resumable iteration in the style of a
// database cursor: position with First/Last/Seek, then step with
// Next/Prev. A cursor holds direct references into the tree it was
// created from; mutating the tree invalidates every live cursor, and
// continuing to use one afterwards is undefined. Re-acquire a fresh
// cursor instead.

// AVLCursor iterates an AVL tree using an explicit ancestor stack
// (O(height) auxiliary memory).
type AVLCursor[K, V any] struct {
	tree  *AVL[K, V]
	stack []*avlNode[K, V] // path from root; top is the current node
	valid bool
}

// Cursor returns an unpositioned cursor; call First, Last, or Seek.
func (t *AVL[K, V]) Cursor() *AVLCursor[K, V] {
	return &AVLCursor[K, V]{tree: t}
}

// First positions the cursor at the smallest key.
func (c *AVLCursor[K, V]) First() (K, V, bool) {
	c.stack = c.stack[:0]
	for n := c.tree.root; n != nil; n = n.left {
		c.stack = append(c.stack, n)
	}
	c.valid = len(c.stack) > 0
	return c.current()
}

// Last positions the cursor at the largest key.
func (c *AVLCursor[K, V]) Last() (K, V, bool) {
	c.stack = c.stack[:0]
	for n := c.tree.root; n != nil; n = n.right {
		c.stack = append(c.stack, n)
	}
	c.valid = len(c.stack) > 0
	return c.current()
}

// Seek positions the cursor at the first key >= seek.
func (c *AVLCursor[K, V]) Seek(seek K) (K, V, bool) {
	c.stack = c.stack[:0]
	n := c.tree.root
	for n != nil {
		c.stack = append(c.stack, n)
		switch {
		case c.tree.less(seek, n.key):
			n = n.left
		case c.tree.less(n.key, seek):
			n = n.right
		default:
			c.valid = true
			return c.current()
		}
	}
	// Ran off the tree: unwind ancestors smaller than the target. The
	// deepest ancestor the descent went left at is the successor.
	for len(c.stack) > 0 && c.tree.less(c.stack[len(c.stack)-1].key, seek) {
		c.stack = c.stack[:len(c.stack)-1]
	}
	c.valid = len(c.stack) > 0
	return c.current()
}

// Next advances to the in-order successor.
func (c *AVLCursor[K, V]) Next() (K, V, bool) {
	if !c.valid {
		return c.current()
	}
	n := c.stack[len(c.stack)-1]
	if n.right != nil {
		for m := n.right; m != nil; m = m.left {
			c.stack = append(c.stack, m)
		}
		return c.current()
	}
	// Climb until arriving from a left child.
	for {
		child := c.stack[len(c.stack)-1]
		c.stack = c.stack[:len(c.stack)-1]
		if len(c.stack) == 0 {
			c.valid = false
			return c.current()
		}
		if c.stack[len(c.stack)-1].left == child {
			return c.current()
		}
	}
}

// Prev steps to the in-order predecessor.
func (c *AVLCursor[K, V]) Prev() (K, V, bool) {
	if !c.valid {
		return c.current()
	}
	n := c.stack[len(c.stack)-1]
	if n.left != nil {
		for m := n.left; m != nil; m = m.right {
			c.stack = append(c.stack, m)
		}
		return c.current()
	}
	for {
		child := c.stack[len(c.stack)-1]
		c.stack = c.stack[:len(c.stack)-1]
		if len(c.stack) == 0 {
			c.valid = false
			return c.current()
		}
		if c.stack[len(c.stack)-1].right == child {
			return c.current()
		}
	}
}

// Key returns the current key; only meaningful while Valid.
func (c *AVLCursor[K, V]) Key() K {
	k, _, _ := c.current()
	return k
}

// Value returns the current value; only meaningful while Valid.
func (c *AVLCursor[K, V]) Value() V {
	_, v, _ := c.current()
	return v
}

// Valid reports whether the cursor is positioned on a key.
func (c *AVLCursor[K, V]) Valid() bool {
	return c.valid
}

func (c *AVLCursor[K, V]) current() (K, V, bool) {
	if !c.valid || len(c.stack) == 0 {
		var k K
		var v V
		return k, v, false
	}
	n := c.stack[len(c.stack)-1]
	return n.key, n.value, true
}

// btreePos is one level in a BTree cursor's navigation path. For the
// top frame idx is the current key index; for frames below it, idx is
// the child index the cursor descended into.
type btreePos[K, V any] struct {
	n   *btreeNode[K, V]
	idx int
}

// BTreeCursor iterates a BTree in key order. Unlike a leaf-only tree,
// keys live in branch nodes too, so the path stack emits a branch key
// every time the walk returns from the child to its left.
type BTreeCursor[K, V any] struct {
	tree  *BTree[K, V]
	stack []btreePos[K, V]
	valid bool
}

// Cursor returns an unpositioned cursor; call First, Last, or Seek.
func (t *BTree[K, V]) Cursor() *BTreeCursor[K, V] {
	return &BTreeCursor[K, V]{tree: t}
}

// First positions the cursor at the smallest key.
func (c *BTreeCursor[K, V]) First() (K, V, bool) {
	c.stack = c.stack[:0]
	c.descendFirst(c.tree.root)
	return c.current()
}

// Last positions the cursor at the largest key.
func (c *BTreeCursor[K, V]) Last() (K, V, bool) {
	c.stack = c.stack[:0]
	c.descendLast(c.tree.root)
	return c.current()
}

// descendFirst pushes the leftmost path under n; the cursor lands on
// the first key of the leftmost leaf.
func (c *BTreeCursor[K, V]) descendFirst(n *btreeNode[K, V]) {
	for {
		c.stack = append(c.stack, btreePos[K, V]{n: n, idx: 0})
		if n.leaf() {
			break
		}
		n = n.children[0]
	}
	c.valid = len(n.keys) > 0
}

// descendLast pushes the rightmost path under n; the cursor lands on
// the last key of the rightmost leaf.
func (c *BTreeCursor[K, V]) descendLast(n *btreeNode[K, V]) {
	for !n.leaf() {
		c.stack = append(c.stack, btreePos[K, V]{n: n, idx: len(n.keys)})
		n = n.children[len(n.keys)]
	}
	c.stack = append(c.stack, btreePos[K, V]{n: n, idx: len(n.keys) - 1})
	c.valid = len(n.keys) > 0
}

// Seek positions the cursor at the first key >= seek.
func (c *BTreeCursor[K, V]) Seek(seek K) (K, V, bool) {
	c.stack = c.stack[:0]
	n := c.tree.root
	for {
		i := c.tree.scan(n, seek)
		if i < len(n.keys) && !c.tree.less(seek, n.keys[i]) {
			// Exact hit; may be a branch key.
			c.stack = append(c.stack, btreePos[K, V]{n: n, idx: i})
			c.valid = true
			return c.current()
		}
		c.stack = append(c.stack, btreePos[K, V]{n: n, idx: i})
		if n.leaf() {
			if i < len(n.keys) {
				c.valid = true
				return c.current()
			}
			// Ran past the leaf; the successor is the branch key the
			// descent last went left at.
			c.popToNext()
			return c.current()
		}
		n = n.children[i]
	}
}

// Next advances to the in-order successor.
func (c *BTreeCursor[K, V]) Next() (K, V, bool) {
	if !c.valid {
		return c.current()
	}
	top := &c.stack[len(c.stack)-1]
	if !top.n.leaf() {
		// Successor of a branch key is the leftmost key of the child
		// to its right.
		top.idx++
		c.descendFirst(top.n.children[top.idx])
		return c.current()
	}
	top.idx++
	if top.idx < len(top.n.keys) {
		return c.current()
	}
	c.stack = c.stack[:len(c.stack)-1]
	c.popToNext()
	return c.current()
}

// popToNext unwinds to the nearest ancestor with an unemitted key to
// the right of the child the walk returned from.
func (c *BTreeCursor[K, V]) popToNext() {
	for len(c.stack) > 0 {
		top := &c.stack[len(c.stack)-1]
		if top.idx < len(top.n.keys) {
			c.valid = true
			return
		}
		c.stack = c.stack[:len(c.stack)-1]
	}
	c.valid = false
}

// Prev steps to the in-order predecessor.
func (c *BTreeCursor[K, V]) Prev() (K, V, bool) {
	if !c.valid {
		return c.current()
	}
	top := &c.stack[len(c.stack)-1]
	if !top.n.leaf() {
		// Predecessor of a branch key is the rightmost key of the
		// child to its left.
		c.descendLast(top.n.children[top.idx])
		return c.current()
	}
	top.idx--
	if top.idx >= 0 {
		return c.current()
	}
	c.stack = c.stack[:len(c.stack)-1]
	for len(c.stack) > 0 {
		top := &c.stack[len(c.stack)-1]
		if top.idx > 0 {
			top.idx--
			c.valid = true
			return c.current()
		}
		c.stack = c.stack[:len(c.stack)-1]
	}
	c.valid = false
	return c.current()
}

// Key returns the current key; only meaningful while Valid.
func (c *BTreeCursor[K, V]) Key() K {
	k, _, _ := c.current()
	return k
}

// Value returns the current value; only meaningful while Valid.
func (c *BTreeCursor[K, V]) Value() V {
	_, v, _ := c.current()
	return v
}

// Valid reports whether the cursor is positioned on a key.
func (c *BTreeCursor[K, V]) Valid() bool {
	return c.valid
}

func (c *BTreeCursor[K, V]) current() (K, V, bool) {
	if !c.valid || len(c.stack) == 0 {
		var k K
		var v V
		return k, v, false
	}
	top := c.stack[len(c.stack)-1]
	return top.n.keys[top.idx], top.n.values[top.idx], true
}

// BPlusCursor iterates a BPlusTree by walking the leaf chain: one
// descent to position, then O(1) amortized steps with O(1) auxiliary
// memory. The chain is forward-only, so the cursor has no Prev; use
// Descend for reverse iteration.
type BPlusCursor[K, V any] struct {
	tree  *BPlusTree[K, V]
	leaf  *bpNode[K, V]
	idx   int
	valid bool
}

// Cursor returns an unpositioned cursor; call First or Seek.
func (t *BPlusTree[K, V]) Cursor() *BPlusCursor[K, V] {
	return &BPlusCursor[K, V]{tree: t}
}

// First positions the cursor at the smallest key.
func (c *BPlusCursor[K, V]) First() (K, V, bool) {
	c.leaf = c.tree.firstLeaf()
	c.idx = 0
	c.valid = len(c.leaf.keys) > 0
	return c.current()
}

// Seek positions the cursor at the first key >= seek.
func (c *BPlusCursor[K, V]) Seek(seek K) (K, V, bool) {
	c.leaf = c.tree.findLeaf(seek)
	c.idx = 0
	for c.idx < len(c.leaf.keys) && c.tree.less(c.leaf.keys[c.idx], seek) {
		c.idx++
	}
	if c.idx == len(c.leaf.keys) {
		// The owning leaf holds nothing >= seek; the next leaf's first
		// key (if any) is the successor.
		c.leaf = c.leaf.next
		c.idx = 0
	}
	c.valid = c.leaf != nil && c.idx < len(c.leaf.keys)
	return c.current()
}

// Next advances to the next key, following the chain across leaf
// boundaries.
func (c *BPlusCursor[K, V]) Next() (K, V, bool) {
	if !c.valid {
		return c.current()
	}
	c.idx++
	if c.idx == len(c.leaf.keys) {
		c.leaf = c.leaf.next
		c.idx = 0
		c.valid = c.leaf != nil && len(c.leaf.keys) > 0
	}
	return c.current()
}

// Key returns the current key; only meaningful while Valid.
func (c *BPlusCursor[K, V]) Key() K {
	k, _, _ := c.current()
	return k
}

// Value returns the current value; only meaningful while Valid.
func (c *BPlusCursor[K, V]) Value() V {
	_, v, _ := c.current()
	return v
}

// Valid reports whether the cursor is positioned on a key.
func (c *BPlusCursor[K, V]) Valid() bool {
	return c.valid
}

func (c *BPlusCursor[K, V]) current() (K, V, bool) {
	if !c.valid {
		var k K
		var v V
		return k, v, false
	}
	return c.leaf.keys[c.idx], c.leaf.values[c.idx], true
}
