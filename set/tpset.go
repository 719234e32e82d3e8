package set

import (
	"iter"
	"maps"

	"github.com/danburkert/crdt"
)

// TpSet is a two-phase set. Every element passes through at most two phases:
// present, then removed. Once removed it is excluded forever, even from
// merges that carry insert records predating the removal elsewhere.
type TpSet[T comparable] struct {
	// elements tracks every element ever seen; true means currently
	// present, false means removed. A false entry never flips back.
	elements map[T]bool
}

// TpSetOp is an insert or remove operation over TpSet replicas.
type TpSetOp[T comparable] struct {
	Element T
	// Present is true for an insert record, false for a removal record.
	Present bool
}

var _ crdt.Crdt[*TpSet[int], TpSetOp[int]] = (*TpSet[int])(nil)

// NewTpSet creates an empty two-phase set.
func NewTpSet[T comparable]() *TpSet[T] {
	return &TpSet[T]{elements: make(map[T]bool)}
}

// Insert adds element to the set. It succeeds only if the element has never
// been seen: once any record exists for it, present or removed, further
// inserts return false.
func (s *TpSet[T]) Insert(element T) (TpSetOp[T], bool) {
	if _, seen := s.elements[element]; seen {
		return TpSetOp[T]{}, false
	}
	s.elements[element] = true
	return TpSetOp[T]{Element: element, Present: true}, true
}

// Remove removes element from the set. Removing an element never seen
// records the removal immediately; removing an already-removed element is a
// no-op and returns false.
func (s *TpSet[T]) Remove(element T) (TpSetOp[T], bool) {
	present, seen := s.elements[element]
	s.elements[element] = false
	if seen && !present {
		return TpSetOp[T]{}, false
	}
	return TpSetOp[T]{Element: element, Present: false}, true
}

// Contains reports whether element is currently present.
func (s *TpSet[T]) Contains(element T) bool {
	return s.elements[element]
}

// Len returns the number of currently present elements.
func (s *TpSet[T]) Len() (n int) {
	for _, present := range s.elements {
		if present {
			n++
		}
	}
	return
}

// IsEmpty reports whether no element is currently present.
func (s *TpSet[T]) IsEmpty() bool {
	return s.Len() == 0
}

// IsSubset reports whether every present element of s is present in other.
func (s *TpSet[T]) IsSubset(other *TpSet[T]) bool {
	for element, present := range s.elements {
		if present && !other.Contains(element) {
			return false
		}
	}
	return true
}

// IsDisjoint reports whether no present element of s is present in other.
func (s *TpSet[T]) IsDisjoint(other *TpSet[T]) bool {
	for element, present := range s.elements {
		if present && other.Contains(element) {
			return false
		}
	}
	return true
}

// All returns an iterator over the currently present elements. The set must
// not be mutated while iterating; use Elements for a stable snapshot.
func (s *TpSet[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for element, present := range s.elements {
			if present && !yield(element) {
				return
			}
		}
	}
}

// Elements returns a snapshot of the currently present elements.
func (s *TpSet[T]) Elements() []T {
	elements := make([]T, 0, len(s.elements))
	for element, present := range s.elements {
		if present {
			elements = append(elements, element)
		}
	}
	return elements
}

// Merge merges another replica into this set. An incoming insert record
// lands only on a vacant entry; an incoming removal record always
// overwrites. Removal dominates.
func (s *TpSet[T]) Merge(other *TpSet[T]) {
	for element, present := range other.elements {
		s.record(element, present)
	}
}

// Apply applies an insert or remove operation. Same rules as Merge, so
// re-delivery and reordering are harmless.
func (s *TpSet[T]) Apply(op TpSetOp[T]) {
	s.record(op.Element, op.Present)
}

func (s *TpSet[T]) record(element T, present bool) {
	if !present {
		s.elements[element] = false
		return
	}
	if _, seen := s.elements[element]; !seen {
		s.elements[element] = true
	}
}

// Compare orders replicas by observed events: s <= other iff every insert s
// has observed is tracked by other (present or since removed) and every
// removal s has observed is a removal in other.
func (s *TpSet[T]) Compare(other *TpSet[T]) crdt.Ordering {
	if maps.Equal(s.elements, other.elements) {
		return crdt.Equal
	}
	selfAhead := tpAhead(s.elements, other.elements)
	otherAhead := tpAhead(other.elements, s.elements)
	switch {
	case selfAhead && otherAhead:
		return crdt.Concurrent
	case selfAhead:
		return crdt.Greater
	default:
		return crdt.Less
	}
}

// tpAhead reports whether a has observed an event b has not: an insert of an
// element b does not track at all, or a removal b still considers present or
// never saw.
func tpAhead[T comparable](a, b map[T]bool) bool {
	for element, present := range a {
		bPresent, seen := b[element]
		if present {
			if !seen {
				return true
			}
		} else if !seen || bPresent {
			return true
		}
	}
	return false
}

// Equal reports whether both replicas track the same records.
func (s *TpSet[T]) Equal(other *TpSet[T]) bool {
	return maps.Equal(s.elements, other.elements)
}

// Clone returns an independent copy of the set.
func (s *TpSet[T]) Clone() *TpSet[T] {
	return &TpSet[T]{elements: maps.Clone(s.elements)}
}
