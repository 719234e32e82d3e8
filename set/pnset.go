package set

import (
	"iter"

	"github.com/danburkert/crdt"
	"github.com/danburkert/crdt/counter"
)

// PnSet is a counting add/remove set. Every element carries a full PnCounter
// (one crdt.Pn slot per replica, not a single collapsed pair): collapsing
// would lose per-replica provenance and can under-count after some merge
// orders. An element is a member while the sum of its slots is positive.
//
// PnSet trades set semantics for commutativity: the count may exceed one, at
// which point a single removal is not locally observable, and a remove of a
// never-inserted element drives the count negative.
type PnSet[T comparable] struct {
	replica  crdt.ReplicaID
	elements map[T]*counter.PnCounter
}

// PnSetOp is an insert or remove operation over PnSet replicas: the element
// plus the issuing replica's counter snapshot for it.
type PnSetOp[T comparable] struct {
	Element   T
	Increment counter.PnCounterIncrement
}

var _ crdt.Crdt[*PnSet[int], PnSetOp[int]] = (*PnSet[int])(nil)

// NewPnSet creates an empty counting set with the given replica id. Replica
// ids must be unique among replicas of a set.
func NewPnSet[T comparable](replica crdt.ReplicaID) *PnSet[T] {
	return &PnSet[T]{
		replica:  replica,
		elements: make(map[T]*counter.PnCounter),
	}
}

// Insert adds element to the set by incrementing the local replica's count
// for it, and returns the operation to broadcast.
func (s *PnSet[T]) Insert(element T) PnSetOp[T] {
	return s.increment(element, 1)
}

// Remove removes element from the set by decrementing the local replica's
// count for it, and returns the operation to broadcast. The removal only
// cancels contributions this replica has observed; a concurrent insert on
// another replica survives it.
func (s *PnSet[T]) Remove(element T) PnSetOp[T] {
	return s.increment(element, -1)
}

func (s *PnSet[T]) increment(element T, amount int64) PnSetOp[T] {
	ctr, ok := s.elements[element]
	if !ok {
		ctr = counter.NewPnCounter(s.replica)
		s.elements[element] = ctr
	}
	return PnSetOp[T]{Element: element, Increment: ctr.Increment(amount)}
}

// ReplicaID returns the id of the local replica.
func (s *PnSet[T]) ReplicaID() crdt.ReplicaID {
	return s.replica
}

// Contains reports whether element is currently a member: its count summed
// over every replica is positive.
func (s *PnSet[T]) Contains(element T) bool {
	ctr, ok := s.elements[element]
	return ok && ctr.Count() > 0
}

// Len returns the number of current members.
func (s *PnSet[T]) Len() (n int) {
	for _, ctr := range s.elements {
		if ctr.Count() > 0 {
			n++
		}
	}
	return
}

// IsEmpty reports whether the set has no current members.
func (s *PnSet[T]) IsEmpty() bool {
	return s.Len() == 0
}

// IsSubset reports whether every member of s is a member of other.
func (s *PnSet[T]) IsSubset(other *PnSet[T]) bool {
	for element, ctr := range s.elements {
		if ctr.Count() > 0 && !other.Contains(element) {
			return false
		}
	}
	return true
}

// IsDisjoint reports whether s and other share no members.
func (s *PnSet[T]) IsDisjoint(other *PnSet[T]) bool {
	for element, ctr := range s.elements {
		if ctr.Count() > 0 && other.Contains(element) {
			return false
		}
	}
	return true
}

// All returns an iterator over the current members. The set must not be
// mutated while iterating; use Elements for a stable snapshot.
func (s *PnSet[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for element, ctr := range s.elements {
			if ctr.Count() > 0 && !yield(element) {
				return
			}
		}
	}
}

// Elements returns a snapshot of the current members.
func (s *PnSet[T]) Elements() []T {
	elements := make([]T, 0, len(s.elements))
	for element, ctr := range s.elements {
		if ctr.Count() > 0 {
			elements = append(elements, element)
		}
	}
	return elements
}

// Merge merges another replica into this set: per element, per replica,
// the usual pointwise-max Pn merge. An element first seen through a merge
// still gets a counter owned by the local replica, so later local inserts
// and removes credit the local slot rather than the remote's.
func (s *PnSet[T]) Merge(other *PnSet[T]) {
	for element, ctr := range other.elements {
		mine, ok := s.elements[element]
		if !ok {
			mine = counter.NewPnCounter(s.replica)
			s.elements[element] = mine
		}
		mine.Merge(ctr)
	}
}

// Apply applies an insert or remove operation: the carried snapshot is
// merged into the element's counter, so re-delivery is harmless.
func (s *PnSet[T]) Apply(op PnSetOp[T]) {
	ctr, ok := s.elements[op.Element]
	if !ok {
		ctr = counter.NewPnCounter(s.replica)
		s.elements[op.Element] = ctr
	}
	ctr.Apply(op.Increment)
}

// Compare orders replicas by per-element counter dominance, aggregated the
// way the counters aggregate replica slots: s is ahead on an element the
// other side lacks, or one whose counter is ahead on any slot.
func (s *PnSet[T]) Compare(other *PnSet[T]) crdt.Ordering {
	selfAhead := pnElementsAhead(s.elements, other.elements)
	otherAhead := pnElementsAhead(other.elements, s.elements)
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

func pnElementsAhead[T comparable](a, b map[T]*counter.PnCounter) bool {
	for element, ctr := range a {
		bCtr, ok := b[element]
		if !ok {
			return true
		}
		// an element-wise concurrent counter means each side holds
		// slots the other lacks, so this side is ahead too
		if ord := ctr.Compare(bCtr); ord == crdt.Greater || ord == crdt.Concurrent {
			return true
		}
	}
	return false
}

// Equal reports whether both replicas carry the same per-element counters,
// ignoring replica ids.
func (s *PnSet[T]) Equal(other *PnSet[T]) bool {
	if len(s.elements) != len(other.elements) {
		return false
	}
	for element, ctr := range s.elements {
		otherCtr, ok := other.elements[element]
		if !ok || !ctr.Equal(otherCtr) {
			return false
		}
	}
	return true
}

// Clone returns an independent deep copy of the set.
func (s *PnSet[T]) Clone() *PnSet[T] {
	elements := make(map[T]*counter.PnCounter, len(s.elements))
	for element, ctr := range s.elements {
		elements[element] = ctr.Clone()
	}
	return &PnSet[T]{replica: s.replica, elements: elements}
}
