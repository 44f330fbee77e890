// Package keytree provides in-memory ordered index engines: a
// height-balanced binary search tree (AVL), a bounded-fanout multiway
// search tree (BTree), and a leaf-chained variant (BPlusTree) whose
// leaves form a forward chain for sequential range scans.
//
// All engines share the same contract: Insert rejects duplicate keys
// with ErrKeyExists and leaves the tree untouched, Delete and Get
// report ErrKeyNotFound for absent keys, and ordered iteration is
// available both through per-engine cursors and through Ascend/Descend
// style callbacks.
//
// The engines are not internally synchronized. The required discipline
// is single-writer, multiple-reader: at most one mutation in flight,
// and no reader (including a live cursor) overlapping a mutation.
// Mutating a tree while one of its cursors is live invalidates the
// cursor.
package keytree

import "cmp"

// LessFunc reports whether a sorts before b. It must define a strict
// total order over the key space: irreflexive, transitive, and for any
// a != b exactly one of less(a, b) and less(b, a) holds.
type LessFunc[K any] func(a, b K) bool

// Less returns the natural LessFunc for ordered primitive types.
func Less[K cmp.Ordered]() LessFunc[K] {
	return cmp.Less[K]
}

// insertAt inserts v at index i, shifting the tail right.
func insertAt[T any](s []T, i int, v T) []T {
	s = append(s, v)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

// removeAt removes the element at index i, shifting the tail left.
func removeAt[T any](s []T, i int) []T {
	return append(s[:i], s[i+1:]...)
}
