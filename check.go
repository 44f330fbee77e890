package keytree

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Check walks the whole tree and verifies every structural invariant:
// cached heights, balance factors in {-1, 0, 1}, strictly ascending
// in-order key sequence, and the size counter. Violations are reported
// through the tree's logger and returned wrapped in ErrCorruption.
func (t *AVL[K, V]) Check() error {
	count := 0
	if err := t.checkNode(t.root, nil, nil, &count); err != nil {
		t.opts.logger.Error("avl check failed", "err", err)
		return err
	}
	if count != t.size {
		err := fmt.Errorf("%w: size counter %d, walked %d keys", ErrCorruption, t.size, count)
		t.opts.logger.Error("avl check failed", "err", err)
		return err
	}
	return nil
}

func (t *AVL[K, V]) checkNode(n, lo, hi *avlNode[K, V], count *int) error {
	if n == nil {
		return nil
	}
	if lo != nil && !t.less(lo.key, n.key) {
		return fmt.Errorf("%w: key order violated", ErrCorruption)
	}
	if hi != nil && !t.less(n.key, hi.key) {
		return fmt.Errorf("%w: key order violated", ErrCorruption)
	}
	if want := 1 + max(avlHeight(n.left), avlHeight(n.right)); n.height != want {
		return fmt.Errorf("%w: cached height %d, computed %d", ErrCorruption, n.height, want)
	}
	if bf := avlBalance(n); bf < -1 || bf > 1 {
		return fmt.Errorf("%w: balance factor %d out of range", ErrCorruption, bf)
	}
	*count++
	if err := t.checkNode(n.left, lo, n, count); err != nil {
		return err
	}
	return t.checkNode(n.right, n, hi, count)
}

// Check walks the whole tree and verifies every structural invariant:
// occupancy bounds on non-root nodes, children count, strictly
// ascending keys inside nodes, subtree key separation, equal leaf
// depth, and the size counter.
func (t *BTree[K, V]) Check() error {
	if err := t.check(); err != nil {
		t.opts.logger.Error("btree check failed", "err", err)
		return err
	}
	return nil
}

func (t *BTree[K, V]) check() error {
	count := 0
	leafDepth := -1
	var walk func(n *btreeNode[K, V], lo, hi *K, depth int) error
	walk = func(n *btreeNode[K, V], lo, hi *K, depth int) error {
		if n != t.root {
			if len(n.keys) < t.minKeys() || len(n.keys) > t.maxKeys() {
				return fmt.Errorf("%w: node has %d keys, want %d..%d", ErrCorruption, len(n.keys), t.minKeys(), t.maxKeys())
			}
		} else if len(n.keys) > t.maxKeys() {
			return fmt.Errorf("%w: root has %d keys, want at most %d", ErrCorruption, len(n.keys), t.maxKeys())
		}
		if len(n.values) != len(n.keys) {
			return fmt.Errorf("%w: %d keys but %d values", ErrCorruption, len(n.keys), len(n.values))
		}
		for i, k := range n.keys {
			if i > 0 && !t.less(n.keys[i-1], k) {
				return fmt.Errorf("%w: keys not strictly ascending within node", ErrCorruption)
			}
			if lo != nil && !t.less(*lo, k) {
				return fmt.Errorf("%w: key below subtree lower bound", ErrCorruption)
			}
			if hi != nil && !t.less(k, *hi) {
				return fmt.Errorf("%w: key above subtree upper bound", ErrCorruption)
			}
		}
		count += len(n.keys)
		if n.leaf() {
			if leafDepth == -1 {
				leafDepth = depth
			} else if depth != leafDepth {
				return fmt.Errorf("%w: leaves at depths %d and %d", ErrCorruption, leafDepth, depth)
			}
			return nil
		}
		if len(n.children) != len(n.keys)+1 {
			return fmt.Errorf("%w: %d keys but %d children", ErrCorruption, len(n.keys), len(n.children))
		}
		for i, child := range n.children {
			clo, chi := lo, hi
			if i > 0 {
				clo = &n.keys[i-1]
			}
			if i < len(n.keys) {
				chi = &n.keys[i]
			}
			if err := walk(child, clo, chi, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(t.root, nil, nil, 0); err != nil {
		return err
	}
	if count != t.size {
		return fmt.Errorf("%w: size counter %d, walked %d keys", ErrCorruption, t.size, count)
	}
	return nil
}

// Check walks the whole tree and verifies the BTree invariants plus
// the leaf-chain ones: the chain visits exactly the leaves in
// left-to-right order, separators bound their subtrees (a separator
// may sit below its right subtree's minimum after deletes, but never
// above it), and values appear only in leaves.
func (t *BPlusTree[K, V]) Check() error {
	if err := t.check(); err != nil {
		t.opts.logger.Error("bplustree check failed", "err", err)
		return err
	}
	return nil
}

func (t *BPlusTree[K, V]) check() error {
	count := 0
	leafDepth := -1
	var leaves []*bpNode[K, V]
	var walk func(n *bpNode[K, V], lo, hi *K, depth int) error
	walk = func(n *bpNode[K, V], lo, hi *K, depth int) error {
		if n != t.root {
			if len(n.keys) < t.minKeys() || len(n.keys) > t.maxKeys() {
				return fmt.Errorf("%w: node has %d keys, want %d..%d", ErrCorruption, len(n.keys), t.minKeys(), t.maxKeys())
			}
		} else if len(n.keys) > t.maxKeys() {
			return fmt.Errorf("%w: root has %d keys, want at most %d", ErrCorruption, len(n.keys), t.maxKeys())
		}
		for i, k := range n.keys {
			if i > 0 && !t.less(n.keys[i-1], k) {
				return fmt.Errorf("%w: keys not strictly ascending within node", ErrCorruption)
			}
			// Routing separators are inclusive lower bounds for the
			// right subtree.
			if lo != nil && t.less(k, *lo) {
				return fmt.Errorf("%w: key below subtree lower bound", ErrCorruption)
			}
			if hi != nil && !t.less(k, *hi) {
				return fmt.Errorf("%w: key above subtree upper bound", ErrCorruption)
			}
		}
		if n.leaf() {
			if len(n.values) != len(n.keys) {
				return fmt.Errorf("%w: leaf has %d keys but %d values", ErrCorruption, len(n.keys), len(n.values))
			}
			if leafDepth == -1 {
				leafDepth = depth
			} else if depth != leafDepth {
				return fmt.Errorf("%w: leaves at depths %d and %d", ErrCorruption, leafDepth, depth)
			}
			count += len(n.keys)
			leaves = append(leaves, n)
			return nil
		}
		if len(n.values) != 0 {
			return fmt.Errorf("%w: branch node holds values", ErrCorruption)
		}
		if len(n.children) != len(n.keys)+1 {
			return fmt.Errorf("%w: %d keys but %d children", ErrCorruption, len(n.keys), len(n.children))
		}
		for i, child := range n.children {
			clo, chi := lo, hi
			if i > 0 {
				clo = &n.keys[i-1]
			}
			if i < len(n.keys) {
				chi = &n.keys[i]
			}
			if err := walk(child, clo, chi, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(t.root, nil, nil, 0); err != nil {
		return err
	}
	if count != t.size {
		return fmt.Errorf("%w: size counter %d, walked %d keys", ErrCorruption, t.size, count)
	}

	// The chain must be exactly the in-order leaf sequence.
	chain := t.firstLeaf()
	for i, leaf := range leaves {
		if chain != leaf {
			return fmt.Errorf("%w: leaf chain diverges from tree order at leaf %d", ErrCorruption, i)
		}
		chain = chain.next
	}
	if chain != nil {
		return fmt.Errorf("%w: leaf chain extends past the last leaf", ErrCorruption)
	}
	return nil
}

// fingerprint hashes the ascending (key, value) sequence produced by
// ascend. Two trees holding the same entries fingerprint identically
// regardless of shape, degree, or engine.
func fingerprint[K, V any](ascend func(fn func(K, V) bool)) uint64 {
	d := xxhash.New()
	ascend(func(k K, v V) bool {
		fmt.Fprintf(d, "%v\x00%v\x00", k, v)
		return true
	})
	return d.Sum64()
}

// Fingerprint returns a digest of the tree's ordered contents.
func (t *AVL[K, V]) Fingerprint() uint64 {
	return fingerprint[K, V](t.Ascend)
}

// Fingerprint returns a digest of the tree's ordered contents.
func (t *BTree[K, V]) Fingerprint() uint64 {
	return fingerprint[K, V](t.Ascend)
}

// Fingerprint returns a digest of the tree's ordered contents.
func (t *BPlusTree[K, V]) Fingerprint() uint64 {
	return fingerprint[K, V](t.Ascend)
}
