package keytree

import "errors"

var (
	ErrKeyNotFound = errors.New("key not found")
	ErrKeyExists   = errors.New("key already exists")
	ErrEmptyTree   = errors.New("tree is empty")
	ErrCorruption  = errors.New("structural corruption detected")

	ErrInvalidDegree = errors.New("minimum degree must be at least 2")
)
