package keytree

import "cmp"

// btreeNode is a multiway node. A leaf has no children; an internal
// node with k keys has exactly k+1 children. Keys within a node are
// strictly ascending.
type btreeNode[K, V any] struct {
	keys     []K
	values   []V
	children []*btreeNode[K, V]
}

func (n *btreeNode[K, V]) leaf() bool {
	return len(n.children) == 0
}

// BTree is a bounded-fanout search tree of minimum degree t. Every
// node except the root holds between t-1 and 2t-1 keys, and all leaves
// sit at the same depth. The tree grows only by splitting a full root
// and shrinks only by demoting a keyless root.
type BTree[K, V any] struct {
	root   *btreeNode[K, V]
	less   LessFunc[K]
	degree int
	size   int
	opts   Options
}

// NewBTree creates an empty B-tree of minimum degree t over an ordered
// primitive key type. Returns ErrInvalidDegree if t < 2.
func NewBTree[K cmp.Ordered, V any](t int, opts ...Option) (*BTree[K, V], error) {
	return NewBTreeFunc[K, V](t, Less[K](), opts...)
}

// NewBTreeFunc creates an empty B-tree of minimum degree t ordered by
// less. Returns ErrInvalidDegree if t < 2.
func NewBTreeFunc[K, V any](t int, less LessFunc[K], opts ...Option) (*BTree[K, V], error) {
	if t < 2 {
		return nil, ErrInvalidDegree
	}
	return &BTree[K, V]{
		root:   &btreeNode[K, V]{},
		less:   less,
		degree: t,
		opts:   applyOptions(opts),
	}, nil
}

func (t *BTree[K, V]) maxKeys() int { return 2*t.degree - 1 }
func (t *BTree[K, V]) minKeys() int { return t.degree - 1 }

// Degree returns the minimum degree the tree was constructed with.
func (t *BTree[K, V]) Degree() int {
	return t.degree
}

// Len returns the number of keys in the tree.
func (t *BTree[K, V]) Len() int {
	return t.size
}

// Height returns the number of node levels (0 for an empty tree).
func (t *BTree[K, V]) Height() int {
	if t.size == 0 {
		return 0
	}
	h := 0
	for n := t.root; n != nil; {
		h++
		if n.leaf() {
			break
		}
		n = n.children[0]
	}
	return h
}

// scan returns the index of the first key in n that is >= key.
func (t *BTree[K, V]) scan(n *btreeNode[K, V], key K) int {
	i := 0
	for i < len(n.keys) && t.less(n.keys[i], key) {
		i++
	}
	return i
}

// Get returns the value stored under key, or ErrKeyNotFound.
func (t *BTree[K, V]) Get(key K) (V, error) {
	n := t.root
	for {
		i := t.scan(n, key)
		if i < len(n.keys) && !t.less(key, n.keys[i]) {
			return n.values[i], nil
		}
		if n.leaf() {
			var zero V
			return zero, ErrKeyNotFound
		}
		n = n.children[i]
	}
}

// Min returns the smallest key and its value, or ErrEmptyTree.
func (t *BTree[K, V]) Min() (K, V, error) {
	if t.size == 0 {
		var k K
		var v V
		return k, v, ErrEmptyTree
	}
	n := t.root
	for !n.leaf() {
		n = n.children[0]
	}
	return n.keys[0], n.values[0], nil
}

// Max returns the largest key and its value, or ErrEmptyTree.
func (t *BTree[K, V]) Max() (K, V, error) {
	if t.size == 0 {
		var k K
		var v V
		return k, v, ErrEmptyTree
	}
	n := t.root
	for !n.leaf() {
		n = n.children[len(n.children)-1]
	}
	last := len(n.keys) - 1
	return n.keys[last], n.values[last], nil
}

// Insert adds key with value. If the key is already present the tree
// is left untouched (shape included) and ErrKeyExists is returned.
// Splits happen on the way down, so the recursion always lands on a
// non-full node.
func (t *BTree[K, V]) Insert(key K, value V) error {
	// Probe before any restructuring so a rejected duplicate cannot
	// leave pre-emptive splits behind.
	if _, err := t.Get(key); err == nil {
		return ErrKeyExists
	}

	if len(t.root.keys) == t.maxKeys() {
		// Splitting the full root is the only way the tree gains a
		// level.
		old := t.root
		t.root = &btreeNode[K, V]{children: []*btreeNode[K, V]{old}}
		t.splitChild(t.root, 0)
	}

	t.insertNonFull(t.root, key, value)
	t.size++
	return nil
}

func (t *BTree[K, V]) insertNonFull(n *btreeNode[K, V], key K, value V) {
	if n.leaf() {
		i := t.scan(n, key)
		n.keys = insertAt(n.keys, i, key)
		n.values = insertAt(n.values, i, value)
		return
	}

	i := t.scan(n, key)
	if len(n.children[i].keys) == t.maxKeys() {
		t.splitChild(n, i)
		// The promoted median now sits at index i; step right of it if
		// that is where the key belongs.
		if t.less(n.keys[i], key) {
			i++
		}
	}
	t.insertNonFull(n.children[i], key, value)
}

// splitChild splits the full child at index i of parent. The sibling
// is built completely before the parent is touched, so a caller never
// observes a half-restructured node. The child keeps its lower t-1
// keys, the sibling takes the upper t-1, and the median is promoted
// into the parent.
func (t *BTree[K, V]) splitChild(parent *btreeNode[K, V], i int) {
	child := parent.children[i]
	mid := t.degree - 1

	sibling := &btreeNode[K, V]{
		keys:   append([]K(nil), child.keys[mid+1:]...),
		values: append([]V(nil), child.values[mid+1:]...),
	}
	if !child.leaf() {
		sibling.children = append([]*btreeNode[K, V](nil), child.children[mid+1:]...)
	}

	midKey := child.keys[mid]
	midValue := child.values[mid]

	child.keys = child.keys[:mid]
	child.values = child.values[:mid]
	if !child.leaf() {
		child.children = child.children[:mid+1]
	}

	parent.keys = insertAt(parent.keys, i, midKey)
	parent.values = insertAt(parent.values, i, midValue)
	parent.children = insertAt(parent.children, i+1, sibling)
}

// Delete removes key from the tree, or returns ErrKeyNotFound. Every
// child is topped up to at least t keys before the walk descends into
// it, so no unwind pass is needed.
func (t *BTree[K, V]) Delete(key K) error {
	// Probe first: an absent key must not trigger borrows or merges.
	if _, err := t.Get(key); err != nil {
		return err
	}

	t.deleteFrom(t.root, key)

	// A keyless internal root hands the tree to its only child; the
	// height shrinks by one. A keyless leaf root is simply the empty
	// tree.
	if len(t.root.keys) == 0 && !t.root.leaf() {
		t.root = t.root.children[0]
	}
	t.size--
	return nil
}

func (t *BTree[K, V]) deleteFrom(n *btreeNode[K, V], key K) {
	i := t.scan(n, key)

	if i < len(n.keys) && !t.less(key, n.keys[i]) {
		if n.leaf() {
			n.keys = removeAt(n.keys, i)
			n.values = removeAt(n.values, i)
			return
		}
		t.deleteInternal(n, i, key)
		return
	}

	// Key lives below; n cannot be a leaf because presence was probed
	// before the walk started.
	if len(n.children[i].keys) == t.minKeys() {
		i = t.fill(n, i)
	}
	t.deleteFrom(n.children[i], key)
}

// deleteInternal removes the key at index i of internal node n by
// substituting a neighboring entry from a child that can afford to
// lose one, merging both children only as a last resort.
func (t *BTree[K, V]) deleteInternal(n *btreeNode[K, V], i int, key K) {
	left := n.children[i]
	right := n.children[i+1]

	switch {
	case len(left.keys) > t.minKeys():
		// Replace with the predecessor (max of left subtree).
		pk, pv := t.subtreeMax(left)
		n.keys[i] = pk
		n.values[i] = pv
		t.deleteFrom(left, pk)
	case len(right.keys) > t.minKeys():
		// Replace with the successor (min of right subtree).
		sk, sv := t.subtreeMin(right)
		n.keys[i] = sk
		n.values[i] = sv
		t.deleteFrom(right, sk)
	default:
		// Both children are minimal: merge them around the key, then
		// delete it from the merged node.
		t.merge(n, i)
		t.deleteFrom(n.children[i], key)
	}
}

func (t *BTree[K, V]) subtreeMax(n *btreeNode[K, V]) (K, V) {
	for !n.leaf() {
		n = n.children[len(n.children)-1]
	}
	last := len(n.keys) - 1
	return n.keys[last], n.values[last]
}

func (t *BTree[K, V]) subtreeMin(n *btreeNode[K, V]) (K, V) {
	for !n.leaf() {
		n = n.children[0]
	}
	return n.keys[0], n.values[0]
}

// fill tops up the minimal child at index i before the delete walk
// descends into it: borrow from the left sibling, else from the right,
// else merge. Borrowing is preferred because it keeps fan-out high.
// Returns the index of the child to descend into (merging with the
// left sibling shifts it).
func (t *BTree[K, V]) fill(parent *btreeNode[K, V], i int) int {
	if i > 0 && len(parent.children[i-1].keys) > t.minKeys() {
		t.borrowFromLeft(parent, i)
		return i
	}
	if i < len(parent.children)-1 && len(parent.children[i+1].keys) > t.minKeys() {
		t.borrowFromRight(parent, i)
		return i
	}
	if i > 0 {
		t.merge(parent, i-1)
		return i - 1
	}
	t.merge(parent, i)
	return i
}

// borrowFromLeft rotates one entry from the left sibling through the
// parent into the child at index i.
func (t *BTree[K, V]) borrowFromLeft(parent *btreeNode[K, V], i int) {
	child := parent.children[i]
	sibling := parent.children[i-1]
	last := len(sibling.keys) - 1

	child.keys = insertAt(child.keys, 0, parent.keys[i-1])
	child.values = insertAt(child.values, 0, parent.values[i-1])
	parent.keys[i-1] = sibling.keys[last]
	parent.values[i-1] = sibling.values[last]
	sibling.keys = sibling.keys[:last]
	sibling.values = sibling.values[:last]

	if !child.leaf() {
		lastChild := len(sibling.children) - 1
		child.children = insertAt(child.children, 0, sibling.children[lastChild])
		sibling.children = sibling.children[:lastChild]
	}
}

// borrowFromRight rotates one entry from the right sibling through the
// parent into the child at index i.
func (t *BTree[K, V]) borrowFromRight(parent *btreeNode[K, V], i int) {
	child := parent.children[i]
	sibling := parent.children[i+1]

	child.keys = append(child.keys, parent.keys[i])
	child.values = append(child.values, parent.values[i])
	parent.keys[i] = sibling.keys[0]
	parent.values[i] = sibling.values[0]
	sibling.keys = removeAt(sibling.keys, 0)
	sibling.values = removeAt(sibling.values, 0)

	if !child.leaf() {
		child.children = append(child.children, sibling.children[0])
		sibling.children = removeAt(sibling.children, 0)
	}
}

// merge absorbs the child at index i+1 and the separating parent entry
// into the child at index i, shrinking the parent by one key.
func (t *BTree[K, V]) merge(parent *btreeNode[K, V], i int) {
	left := parent.children[i]
	right := parent.children[i+1]

	left.keys = append(left.keys, parent.keys[i])
	left.values = append(left.values, parent.values[i])
	left.keys = append(left.keys, right.keys...)
	left.values = append(left.values, right.values...)
	if !left.leaf() {
		left.children = append(left.children, right.children...)
	}

	parent.keys = removeAt(parent.keys, i)
	parent.values = removeAt(parent.values, i)
	parent.children = removeAt(parent.children, i+1)
}

// Ascend calls fn for every key in ascending order until fn returns
// false.
func (t *BTree[K, V]) Ascend(fn func(key K, value V) bool) {
	t.ascend(t.root, fn)
}

func (t *BTree[K, V]) ascend(n *btreeNode[K, V], fn func(key K, value V) bool) bool {
	if n == nil {
		return true
	}
	for i := range n.keys {
		if !n.leaf() && !t.ascend(n.children[i], fn) {
			return false
		}
		if !fn(n.keys[i], n.values[i]) {
			return false
		}
	}
	if !n.leaf() {
		return t.ascend(n.children[len(n.keys)], fn)
	}
	return true
}

// Descend calls fn for every key in descending order until fn returns
// false.
func (t *BTree[K, V]) Descend(fn func(key K, value V) bool) {
	t.descend(t.root, fn)
}

func (t *BTree[K, V]) descend(n *btreeNode[K, V], fn func(key K, value V) bool) bool {
	if n == nil {
		return true
	}
	if !n.leaf() && !t.descend(n.children[len(n.keys)], fn) {
		return false
	}
	for i := len(n.keys) - 1; i >= 0; i-- {
		if !fn(n.keys[i], n.values[i]) {
			return false
		}
		if !n.leaf() && !t.descend(n.children[i], fn) {
			return false
		}
	}
	return true
}

// AscendRange calls fn for every key in [lo, hi], both bounds
// inclusive, in ascending order until fn returns false.
func (t *BTree[K, V]) AscendRange(lo, hi K, fn func(key K, value V) bool) {
	t.ascendRange(t.root, lo, hi, fn)
}

func (t *BTree[K, V]) ascendRange(n *btreeNode[K, V], lo, hi K, fn func(key K, value V) bool) bool {
	if n == nil {
		return true
	}
	i := t.scan(n, lo)
	for ; i < len(n.keys); i++ {
		if !n.leaf() && !t.ascendRange(n.children[i], lo, hi, fn) {
			return false
		}
		if t.less(hi, n.keys[i]) {
			return true
		}
		if !fn(n.keys[i], n.values[i]) {
			return false
		}
	}
	if !n.leaf() {
		return t.ascendRange(n.children[len(n.keys)], lo, hi, fn)
	}
	return true
}
