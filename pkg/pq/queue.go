// Package pq provides min-priority queues keyed by float64 priorities.
//
// Two interchangeable backends satisfy Queue: MinHeap, an array-backed binary
// heap, and FibHeap, a Fibonacci heap whose forest lives in an index-addressed
// arena. Neither exposes decrease-key; callers re-insert a value with a better
// priority and discard the stale entry when it is extracted.
package pq

import (
	"errors"
	"fmt"
)

// ErrEmptyQueue is returned by ExtractMin when the queue holds no entries.
var ErrEmptyQueue = errors.New("pq: extract from empty queue")

// ErrUnknownKind is returned by ParseKind for an unrecognised backend name.
var ErrUnknownKind = errors.New("pq: unknown queue kind")

// Queue is a min-priority queue over (priority, value) pairs.
type Queue[T any] interface {
	// Insert adds an entry. The same value may be present more than once.
	Insert(priority float64, value T)
	// ExtractMin removes and returns an entry with the smallest priority.
	ExtractMin() (float64, T, error)
	IsEmpty() bool
}

// Kind selects a Queue backend.
type Kind int

const (
	Binary Kind = iota
	Fibonacci
)

func (k Kind) String() string {
	switch k {
	case Binary:
		return "binary"
	case Fibonacci:
		return "fibonacci"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a backend name ("binary", "fibonacci") to its Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "binary", "bin":
		return Binary, nil
	case "fibonacci", "fib":
		return Fibonacci, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// New returns an empty queue of the given kind. Unknown kinds fall back to a
// binary heap.
func New[T any](k Kind) Queue[T] {
	if k == Fibonacci {
		return NewFibHeap[T]()
	}
	return NewMinHeap[T]()
}
