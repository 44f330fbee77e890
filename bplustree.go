package keytree

import "cmp"

// bpNode is a B+ tree node. Branch nodes hold routing keys only; all
// values live in leaves. Each leaf carries a non-owning forward link
// to the next leaf in ascending key order.
type bpNode[K, V any] struct {
	keys     []K
	values   []V             // leaves only
	children []*bpNode[K, V] // branches only
	next     *bpNode[K, V]   // leaves only
}

func (n *bpNode[K, V]) leaf() bool {
	return n.children == nil
}

// BPlusTree is a bounded-fanout search tree whose leaves form an
// ordered forward chain, so a range scan walks sibling leaves without
// re-descending from the root. Branch keys are routing copies: each
// separator is a lower bound for its right subtree (keys >= separator
// go right), and deleting a key never requires touching the separators
// above it.
//
// The occupancy rules match BTree: minimum degree t, every non-root
// node holds between t-1 and 2t-1 keys, all leaves at equal depth.
type BPlusTree[K, V any] struct {
	root   *bpNode[K, V]
	less   LessFunc[K]
	degree int
	size   int
	opts   Options
}

// NewBPlusTree creates an empty B+ tree of minimum degree t over an
// ordered primitive key type. Returns ErrInvalidDegree if t < 2.
func NewBPlusTree[K cmp.Ordered, V any](t int, opts ...Option) (*BPlusTree[K, V], error) {
	return NewBPlusTreeFunc[K, V](t, Less[K](), opts...)
}

// NewBPlusTreeFunc creates an empty B+ tree of minimum degree t
// ordered by less. Returns ErrInvalidDegree if t < 2.
func NewBPlusTreeFunc[K, V any](t int, less LessFunc[K], opts ...Option) (*BPlusTree[K, V], error) {
	if t < 2 {
		return nil, ErrInvalidDegree
	}
	return &BPlusTree[K, V]{
		root:   &bpNode[K, V]{values: []V{}},
		less:   less,
		degree: t,
		opts:   applyOptions(opts),
	}, nil
}

func (t *BPlusTree[K, V]) maxKeys() int { return 2*t.degree - 1 }
func (t *BPlusTree[K, V]) minKeys() int { return t.degree - 1 }

// Degree returns the minimum degree the tree was constructed with.
func (t *BPlusTree[K, V]) Degree() int {
	return t.degree
}

// Len returns the number of keys in the tree.
func (t *BPlusTree[K, V]) Len() int {
	return t.size
}

// Height returns the number of node levels (0 for an empty tree).
func (t *BPlusTree[K, V]) Height() int {
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

// route returns the child index to descend into for key: separators
// are minimums of their right subtrees, so key >= separator goes
// right.
func (t *BPlusTree[K, V]) route(n *bpNode[K, V], key K) int {
	i := 0
	for i < len(n.keys) && !t.less(key, n.keys[i]) {
		i++
	}
	return i
}

// findLeaf descends routing keys to the leaf that would hold key.
func (t *BPlusTree[K, V]) findLeaf(key K) *bpNode[K, V] {
	n := t.root
	for !n.leaf() {
		n = n.children[t.route(n, key)]
	}
	return n
}

// Get returns the value stored under key, or ErrKeyNotFound.
func (t *BPlusTree[K, V]) Get(key K) (V, error) {
	leaf := t.findLeaf(key)
	for i, k := range leaf.keys {
		if !t.less(k, key) {
			if !t.less(key, k) {
				return leaf.values[i], nil
			}
			break
		}
	}
	var zero V
	return zero, ErrKeyNotFound
}

// Min returns the smallest key and its value, or ErrEmptyTree.
func (t *BPlusTree[K, V]) Min() (K, V, error) {
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
func (t *BPlusTree[K, V]) Max() (K, V, error) {
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

// Insert adds key with value into the leaf that owns its key range.
// Duplicates are rejected with ErrKeyExists before any restructuring.
func (t *BPlusTree[K, V]) Insert(key K, value V) error {
	if _, err := t.Get(key); err == nil {
		return ErrKeyExists
	}

	if len(t.root.keys) == t.maxKeys() {
		old := t.root
		t.root = &bpNode[K, V]{children: []*bpNode[K, V]{old}}
		t.splitChild(t.root, 0)
	}

	t.insertNonFull(t.root, key, value)
	t.size++
	return nil
}

func (t *BPlusTree[K, V]) insertNonFull(n *bpNode[K, V], key K, value V) {
	if n.leaf() {
		i := 0
		for i < len(n.keys) && t.less(n.keys[i], key) {
			i++
		}
		n.keys = insertAt(n.keys, i, key)
		n.values = insertAt(n.values, i, value)
		return
	}

	i := t.route(n, key)
	if len(n.children[i].keys) == t.maxKeys() {
		t.splitChild(n, i)
		// The new separator at i is the minimum of the right half.
		if !t.less(key, n.keys[i]) {
			i++
		}
	}
	t.insertNonFull(n.children[i], key, value)
}

// splitChild splits the full child at index i of parent.
//
// A leaf split copies its separator: the first key of the new right
// leaf is promoted, both halves keep their entries, and the new leaf
// is spliced into the chain right after its origin. A branch split
// moves the median up, exactly as in BTree.
func (t *BPlusTree[K, V]) splitChild(parent *bpNode[K, V], i int) {
	child := parent.children[i]
	var sep K
	var sibling *bpNode[K, V]

	if child.leaf() {
		// Left keeps t entries, right takes t-1; both stay above the
		// occupancy floor.
		mid := t.degree
		sibling = &bpNode[K, V]{
			keys:   append([]K(nil), child.keys[mid:]...),
			values: append([]V(nil), child.values[mid:]...),
		}
		sep = sibling.keys[0]
		child.keys = child.keys[:mid:mid]
		child.values = child.values[:mid:mid]

		// O(1) chain splice at the split site.
		sibling.next = child.next
		child.next = sibling
	} else {
		mid := t.degree - 1
		sibling = &bpNode[K, V]{
			keys:     append([]K(nil), child.keys[mid+1:]...),
			children: append([]*bpNode[K, V](nil), child.children[mid+1:]...),
		}
		sep = child.keys[mid]
		child.keys = child.keys[:mid]
		child.children = child.children[:mid+1]
	}

	parent.keys = insertAt(parent.keys, i, sep)
	parent.children = insertAt(parent.children, i+1, sibling)
}

// Delete removes key, or returns ErrKeyNotFound. Keys are only ever
// deleted from leaves; a separator equal to the deleted key may remain
// in a branch, where it is still a valid routing bound.
func (t *BPlusTree[K, V]) Delete(key K) error {
	if _, err := t.Get(key); err != nil {
		return err
	}

	t.deleteFrom(t.root, key)

	if len(t.root.keys) == 0 && !t.root.leaf() {
		t.root = t.root.children[0]
	}
	t.size--
	return nil
}

func (t *BPlusTree[K, V]) deleteFrom(n *bpNode[K, V], key K) {
	if n.leaf() {
		for i, k := range n.keys {
			if !t.less(k, key) && !t.less(key, k) {
				n.keys = removeAt(n.keys, i)
				n.values = removeAt(n.values, i)
				return
			}
		}
		return
	}

	i := t.route(n, key)
	if len(n.children[i].keys) == t.minKeys() {
		i = t.fill(n, i)
	}
	t.deleteFrom(n.children[i], key)
}

// fill tops up the minimal child at index i: borrow left, else borrow
// right, else merge. Returns the index of the child to descend into.
func (t *BPlusTree[K, V]) fill(parent *bpNode[K, V], i int) int {
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

// borrowFromLeft moves one entry from the left sibling into the child
// at index i. Leaves move real data and rewrite the separator to the
// child's new minimum; branches rotate through the parent.
func (t *BPlusTree[K, V]) borrowFromLeft(parent *bpNode[K, V], i int) {
	child := parent.children[i]
	sibling := parent.children[i-1]
	last := len(sibling.keys) - 1

	if child.leaf() {
		child.keys = insertAt(child.keys, 0, sibling.keys[last])
		child.values = insertAt(child.values, 0, sibling.values[last])
		sibling.keys = sibling.keys[:last]
		sibling.values = sibling.values[:last]
		parent.keys[i-1] = child.keys[0]
	} else {
		child.keys = insertAt(child.keys, 0, parent.keys[i-1])
		parent.keys[i-1] = sibling.keys[last]
		sibling.keys = sibling.keys[:last]

		lastChild := len(sibling.children) - 1
		child.children = insertAt(child.children, 0, sibling.children[lastChild])
		sibling.children = sibling.children[:lastChild]
	}
}

// borrowFromRight moves one entry from the right sibling into the
// child at index i, symmetrically to borrowFromLeft.
func (t *BPlusTree[K, V]) borrowFromRight(parent *bpNode[K, V], i int) {
	child := parent.children[i]
	sibling := parent.children[i+1]

	if child.leaf() {
		child.keys = append(child.keys, sibling.keys[0])
		child.values = append(child.values, sibling.values[0])
		sibling.keys = removeAt(sibling.keys, 0)
		sibling.values = removeAt(sibling.values, 0)
		parent.keys[i] = sibling.keys[0]
	} else {
		child.keys = append(child.keys, parent.keys[i])
		parent.keys[i] = sibling.keys[0]
		sibling.keys = removeAt(sibling.keys, 0)

		child.children = append(child.children, sibling.children[0])
		sibling.children = removeAt(sibling.children, 0)
	}
}

// merge absorbs the child at index i+1 into the child at index i. A
// leaf merge discards the separator (it was a routing copy) and
// unlinks the absorbed leaf from the chain in O(1); a branch merge
// pulls the separator down.
func (t *BPlusTree[K, V]) merge(parent *bpNode[K, V], i int) {
	left := parent.children[i]
	right := parent.children[i+1]

	if left.leaf() {
		left.keys = append(left.keys, right.keys...)
		left.values = append(left.values, right.values...)
		left.next = right.next
	} else {
		left.keys = append(left.keys, parent.keys[i])
		left.keys = append(left.keys, right.keys...)
		left.children = append(left.children, right.children...)
	}

	parent.keys = removeAt(parent.keys, i)
	parent.children = removeAt(parent.children, i+1)
}

// firstLeaf returns the head of the leaf chain.
func (t *BPlusTree[K, V]) firstLeaf() *bpNode[K, V] {
	n := t.root
	for !n.leaf() {
		n = n.children[0]
	}
	return n
}

// Ascend calls fn for every key in ascending order until fn returns
// false, walking the leaf chain without revisiting branch nodes.
func (t *BPlusTree[K, V]) Ascend(fn func(key K, value V) bool) {
	for leaf := t.firstLeaf(); leaf != nil; leaf = leaf.next {
		for i := range leaf.keys {
			if !fn(leaf.keys[i], leaf.values[i]) {
				return
			}
		}
	}
}

// AscendRange calls fn for every key in [lo, hi], both bounds
// inclusive, in ascending order. A single descent finds the first
// leaf; the rest of the scan follows the chain.
func (t *BPlusTree[K, V]) AscendRange(lo, hi K, fn func(key K, value V) bool) {
	leaf := t.findLeaf(lo)
	i := 0
	for i < len(leaf.keys) && t.less(leaf.keys[i], lo) {
		i++
	}
	for leaf != nil {
		for ; i < len(leaf.keys); i++ {
			if t.less(hi, leaf.keys[i]) {
				return
			}
			if !fn(leaf.keys[i], leaf.values[i]) {
				return
			}
		}
		leaf = leaf.next
		i = 0
	}
}

// Descend calls fn for every key in descending order until fn returns
// false. The chain is forward-only, so this walks the tree structure
// instead.
func (t *BPlusTree[K, V]) Descend(fn func(key K, value V) bool) {
	t.descend(t.root, fn)
}

func (t *BPlusTree[K, V]) descend(n *bpNode[K, V], fn func(key K, value V) bool) bool {
	if n.leaf() {
		for i := len(n.keys) - 1; i >= 0; i-- {
			if !fn(n.keys[i], n.values[i]) {
				return false
			}
		}
		return true
	}
	for i := len(n.children) - 1; i >= 0; i-- {
		if !t.descend(n.children[i], fn) {
			return false
		}
	}
	return true
}
