// Package set provides the set CRDTs.
//
// Add and remove do not commute, so a plain set cannot be a CRDT. The types
// here are set approximations whose operations do commute; they differ in
// how concurrent adds and removes resolve:
//
//   - GSet disallows removal altogether. Prefer it whenever removal is not
//     needed.
//   - TpSet allows each element to be added once and removed once; a removed
//     element can never come back. Prefer it when the application never
//     re-adds what it removed.
//   - LwwSet resolves concurrent adds and removes by transaction id, biased
//     toward presence on exact ties. Prefer it when writes to one element
//     are rare relative to the transaction-id resolution.
//   - PnSet counts adds and removes per element and per replica; an element
//     is a member while its total count is positive. It trades set semantics
//     for commutativity: the count can exceed one, at which point a single
//     removal is not locally observable.
//
// An observed-remove set (concurrent add/remove resolving toward add) is a
// desirable future addition; no variant of it ships yet.
package set

import (
	"iter"
	"maps"

	"github.com/danburkert/crdt"
)

// GSet is a grow-only set: elements are only ever added.
type GSet[T comparable] struct {
	elements map[T]struct{}
}

// GSetInsert is the insert operation over GSet replicas.
type GSetInsert[T comparable] struct {
	Element T
}

var _ crdt.Crdt[*GSet[int], GSetInsert[int]] = (*GSet[int])(nil)

// NewGSet creates an empty grow-only set.
func NewGSet[T comparable]() *GSet[T] {
	return &GSet[T]{elements: make(map[T]struct{})}
}

// Insert adds element to the set. The operation to broadcast is returned on
// first insertion; inserting an element already present returns false.
func (s *GSet[T]) Insert(element T) (GSetInsert[T], bool) {
	if _, ok := s.elements[element]; ok {
		return GSetInsert[T]{}, false
	}
	s.elements[element] = struct{}{}
	return GSetInsert[T]{Element: element}, true
}

// Contains reports whether element is in the set.
func (s *GSet[T]) Contains(element T) bool {
	_, ok := s.elements[element]
	return ok
}

// Len returns the number of elements in the set.
func (s *GSet[T]) Len() int {
	return len(s.elements)
}

// IsEmpty reports whether the set has no elements.
func (s *GSet[T]) IsEmpty() bool {
	return len(s.elements) == 0
}

// IsSubset reports whether every element of s is in other.
func (s *GSet[T]) IsSubset(other *GSet[T]) bool {
	for element := range s.elements {
		if !other.Contains(element) {
			return false
		}
	}
	return true
}

// IsDisjoint reports whether s and other share no elements.
func (s *GSet[T]) IsDisjoint(other *GSet[T]) bool {
	for element := range s.elements {
		if other.Contains(element) {
			return false
		}
	}
	return true
}

// All returns an iterator over the set's elements. The set must not be
// mutated while iterating; use Elements for a stable snapshot.
func (s *GSet[T]) All() iter.Seq[T] {
	return maps.Keys(s.elements)
}

// Elements returns a snapshot of the set's elements.
func (s *GSet[T]) Elements() []T {
	elements := make([]T, 0, len(s.elements))
	for element := range s.elements {
		elements = append(elements, element)
	}
	return elements
}

// Merge merges another replica into this set: set union.
func (s *GSet[T]) Merge(other *GSet[T]) {
	for element := range other.elements {
		s.elements[element] = struct{}{}
	}
}

// Apply applies an insert operation.
func (s *GSet[T]) Apply(op GSetInsert[T]) {
	s.elements[op.Element] = struct{}{}
}

// Compare orders sets by inclusion. Two sets where each holds an element the
// other lacks are Concurrent.
func (s *GSet[T]) Compare(other *GSet[T]) crdt.Ordering {
	selfAhead := !s.IsSubset(other)
	otherAhead := !other.IsSubset(s)
	switch {
	case selfAhead && otherAhead:
		return crdt.Concurrent
	case selfAhead:
		return crdt.Greater
	case otherAhead:
		return crdt.Less
	default:
		return crdt.Equal
	}
}

// Equal reports whether both replicas hold the same elements.
func (s *GSet[T]) Equal(other *GSet[T]) bool {
	return maps.Equal(s.elements, other.elements)
}

// Clone returns an independent copy of the set.
func (s *GSet[T]) Clone() *GSet[T] {
	return &GSet[T]{elements: maps.Clone(s.elements)}
}
