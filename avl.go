package keytree

import "cmp"

// avlNode is a single-key binary node with a cached subtree height.
// An absent child counts as height 0, so a leaf has height 1.
type avlNode[K, V any] struct {
	key    K
	value  V
	left   *avlNode[K, V]
	right  *avlNode[K, V]
	height int
}

// AVL is a height-balanced binary search tree. After every completed
// Insert or Delete, each node's balance factor (left height minus
// right height) is in {-1, 0, 1}.
type AVL[K, V any] struct {
	root *avlNode[K, V]
	less LessFunc[K]
	size int
	opts Options
}

// NewAVL creates an empty AVL tree over an ordered primitive key type.
func NewAVL[K cmp.Ordered, V any](opts ...Option) *AVL[K, V] {
	return NewAVLFunc[K, V](Less[K](), opts...)
}

// NewAVLFunc creates an empty AVL tree ordered by less.
func NewAVLFunc[K, V any](less LessFunc[K], opts ...Option) *AVL[K, V] {
	return &AVL[K, V]{
		less: less,
		opts: applyOptions(opts),
	}
}

func avlHeight[K, V any](n *avlNode[K, V]) int {
	if n == nil {
		return 0
	}
	return n.height
}

func avlBalance[K, V any](n *avlNode[K, V]) int {
	if n == nil {
		return 0
	}
	return avlHeight(n.left) - avlHeight(n.right)
}

func (n *avlNode[K, V]) recalc() {
	n.height = 1 + max(avlHeight(n.left), avlHeight(n.right))
}

// rotateRight lifts n's left child into n's place. Only the two nodes
// touched have their heights recomputed.
func rotateRight[K, V any](n *avlNode[K, V]) *avlNode[K, V] {
	l := n.left
	n.left = l.right
	l.right = n
	n.recalc()
	l.recalc()
	return l
}

// rotateLeft lifts n's right child into n's place.
func rotateLeft[K, V any](n *avlNode[K, V]) *avlNode[K, V] {
	r := n.right
	n.right = r.left
	r.left = n
	n.recalc()
	r.recalc()
	return r
}

// Len returns the number of keys in the tree.
func (t *AVL[K, V]) Len() int {
	return t.size
}

// Height returns the height of the tree (0 for an empty tree).
func (t *AVL[K, V]) Height() int {
	return avlHeight(t.root)
}

// Get returns the value stored under key, or ErrKeyNotFound.
func (t *AVL[K, V]) Get(key K) (V, error) {
	n := t.root
	for n != nil {
		switch {
		case t.less(key, n.key):
			n = n.left
		case t.less(n.key, key):
			n = n.right
		default:
			return n.value, nil
		}
	}
	var zero V
	return zero, ErrKeyNotFound
}

// Min returns the smallest key and its value, or ErrEmptyTree.
func (t *AVL[K, V]) Min() (K, V, error) {
	if t.root == nil {
		var k K
		var v V
		return k, v, ErrEmptyTree
	}
	n := t.root
	for n.left != nil {
		n = n.left
	}
	return n.key, n.value, nil
}

// Max returns the largest key and its value, or ErrEmptyTree.
func (t *AVL[K, V]) Max() (K, V, error) {
	if t.root == nil {
		var k K
		var v V
		return k, v, ErrEmptyTree
	}
	n := t.root
	for n.right != nil {
		n = n.right
	}
	return n.key, n.value, nil
}

// Insert adds key with value. If the key is already present the tree
// is left untouched and ErrKeyExists is returned; the error is
// informational, not a corruption signal.
func (t *AVL[K, V]) Insert(key K, value V) error {
	root, err := t.insertNode(t.root, key, value)
	if err != nil {
		return err
	}
	t.root = root
	t.size++
	return nil
}

func (t *AVL[K, V]) insertNode(n *avlNode[K, V], key K, value V) (*avlNode[K, V], error) {
	if n == nil {
		return &avlNode[K, V]{key: key, value: value, height: 1}, nil
	}

	switch {
	case t.less(key, n.key):
		child, err := t.insertNode(n.left, key, value)
		if err != nil {
			return n, err
		}
		n.left = child
	case t.less(n.key, key):
		child, err := t.insertNode(n.right, key, value)
		if err != nil {
			return n, err
		}
		n.right = child
	default:
		return n, ErrKeyExists
	}

	n.recalc()
	return t.rebalanceInsert(n, key), nil
}

// rebalanceInsert applies at most one of the four rotation cases. The
// case is picked by comparing the inserted key against the offending
// child's key, which distinguishes left-left from left-right even when
// the child's balance factor alone is ambiguous.
func (t *AVL[K, V]) rebalanceInsert(n *avlNode[K, V], key K) *avlNode[K, V] {
	bf := avlBalance(n)

	if bf > 1 {
		if t.less(key, n.left.key) {
			// left-left
			return rotateRight(n)
		}
		// left-right
		n.left = rotateLeft(n.left)
		return rotateRight(n)
	}

	if bf < -1 {
		if t.less(n.right.key, key) {
			// right-right
			return rotateLeft(n)
		}
		// right-left
		n.right = rotateRight(n.right)
		return rotateLeft(n)
	}

	return n
}

// Delete removes key from the tree, or returns ErrKeyNotFound. The
// tree never restructures on a failed delete.
func (t *AVL[K, V]) Delete(key K) error {
	root, err := t.deleteNode(t.root, key)
	if err != nil {
		return err
	}
	t.root = root
	t.size--
	return nil
}

func (t *AVL[K, V]) deleteNode(n *avlNode[K, V], key K) (*avlNode[K, V], error) {
	if n == nil {
		return nil, ErrKeyNotFound
	}

	switch {
	case t.less(key, n.key):
		child, err := t.deleteNode(n.left, key)
		if err != nil {
			return n, err
		}
		n.left = child
	case t.less(n.key, key):
		child, err := t.deleteNode(n.right, key)
		if err != nil {
			return n, err
		}
		n.right = child
	default:
		if n.left == nil {
			return n.right, nil
		}
		if n.right == nil {
			return n.left, nil
		}
		// Two children: adopt the in-order successor's entry, then
		// delete the successor from the right subtree.
		succ := n.right
		for succ.left != nil {
			succ = succ.left
		}
		n.key = succ.key
		n.value = succ.value
		child, err := t.deleteNode(n.right, succ.key)
		if err != nil {
			return n, err
		}
		n.right = child
	}

	n.recalc()
	return rebalanceDelete(n), nil
}

// rebalanceDelete picks the rotation case from the offending child's
// balance factor; the deleted key tells us nothing about which side of
// the surviving child is heavy.
func rebalanceDelete[K, V any](n *avlNode[K, V]) *avlNode[K, V] {
	bf := avlBalance(n)

	if bf > 1 {
		if avlBalance(n.left) >= 0 {
			return rotateRight(n)
		}
		n.left = rotateLeft(n.left)
		return rotateRight(n)
	}

	if bf < -1 {
		if avlBalance(n.right) <= 0 {
			return rotateLeft(n)
		}
		n.right = rotateRight(n.right)
		return rotateLeft(n)
	}

	return n
}

// Ascend calls fn for every key in ascending order until fn returns
// false.
func (t *AVL[K, V]) Ascend(fn func(key K, value V) bool) {
	t.root.ascend(fn)
}

func (n *avlNode[K, V]) ascend(fn func(key K, value V) bool) bool {
	if n == nil {
		return true
	}
	if !n.left.ascend(fn) {
		return false
	}
	if !fn(n.key, n.value) {
		return false
	}
	return n.right.ascend(fn)
}

// Descend calls fn for every key in descending order until fn returns
// false.
func (t *AVL[K, V]) Descend(fn func(key K, value V) bool) {
	t.root.descend(fn)
}

func (n *avlNode[K, V]) descend(fn func(key K, value V) bool) bool {
	if n == nil {
		return true
	}
	if !n.right.descend(fn) {
		return false
	}
	if !fn(n.key, n.value) {
		return false
	}
	return n.left.descend(fn)
}

// AscendRange calls fn for every key in [lo, hi], both bounds
// inclusive, in ascending order until fn returns false.
func (t *AVL[K, V]) AscendRange(lo, hi K, fn func(key K, value V) bool) {
	t.ascendRange(t.root, lo, hi, fn)
}

func (t *AVL[K, V]) ascendRange(n *avlNode[K, V], lo, hi K, fn func(key K, value V) bool) bool {
	if n == nil {
		return true
	}
	if t.less(lo, n.key) {
		if !t.ascendRange(n.left, lo, hi, fn) {
			return false
		}
	}
	if !t.less(n.key, lo) && !t.less(hi, n.key) {
		if !fn(n.key, n.value) {
			return false
		}
	}
	if t.less(n.key, hi) {
		return t.ascendRange(n.right, lo, hi, fn)
	}
	return true
}
