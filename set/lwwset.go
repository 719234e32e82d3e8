package set

import (
	"iter"
	"maps"

	"github.com/danburkert/crdt"
)

// lwwEntry is the replicated record for one LwwSet element.
type lwwEntry struct {
	present bool
	tid     crdt.TransactionID
}

// LwwSet is a last-writer-wins set. Each element carries the transaction id
// of its latest write; concurrent inserts and removes of the same element
// resolve toward the higher id. On an exact tie the insert wins: inserts
// accept ids >= the stored one while removes require strictly greater ids.
// The bias is deliberate, not an accident of implementation.
type LwwSet[T comparable] struct {
	elements map[T]lwwEntry
}

// LwwSetOp is an insert or remove operation over LwwSet replicas.
type LwwSetOp[T comparable] struct {
	Element T
	// Present is true for an insert, false for a remove.
	Present       bool
	TransactionID crdt.TransactionID
}

var _ crdt.Crdt[*LwwSet[int], LwwSetOp[int]] = (*LwwSet[int])(nil)

// NewLwwSet creates an empty last-writer-wins set.
func NewLwwSet[T comparable]() *LwwSet[T] {
	return &LwwSet[T]{elements: make(map[T]lwwEntry)}
}

// Insert adds element at the given transaction id. The write succeeds when
// the element is unseen or tid is at least the stored id; a stale insert
// returns false and nothing needs broadcasting.
func (s *LwwSet[T]) Insert(element T, tid crdt.TransactionID) (LwwSetOp[T], bool) {
	entry, seen := s.elements[element]
	if seen && tid < entry.tid {
		return LwwSetOp[T]{}, false
	}
	s.elements[element] = lwwEntry{present: true, tid: tid}
	return LwwSetOp[T]{Element: element, Present: true, TransactionID: tid}, true
}

// Remove removes element at the given transaction id. The write succeeds
// when the element is unseen or tid is strictly greater than the stored id;
// on an exact tie the stored insert wins and Remove returns false.
func (s *LwwSet[T]) Remove(element T, tid crdt.TransactionID) (LwwSetOp[T], bool) {
	entry, seen := s.elements[element]
	if seen && tid <= entry.tid {
		return LwwSetOp[T]{}, false
	}
	s.elements[element] = lwwEntry{present: false, tid: tid}
	return LwwSetOp[T]{Element: element, Present: false, TransactionID: tid}, true
}

// Contains reports whether element is currently present.
func (s *LwwSet[T]) Contains(element T) bool {
	return s.elements[element].present
}

// Len returns the number of currently present elements.
func (s *LwwSet[T]) Len() (n int) {
	for _, entry := range s.elements {
		if entry.present {
			n++
		}
	}
	return
}

// IsEmpty reports whether no element is currently present.
func (s *LwwSet[T]) IsEmpty() bool {
	return s.Len() == 0
}

// IsSubset reports whether every present element of s is present in other.
func (s *LwwSet[T]) IsSubset(other *LwwSet[T]) bool {
	for element, entry := range s.elements {
		if entry.present && !other.Contains(element) {
			return false
		}
	}
	return true
}

// IsDisjoint reports whether no present element of s is present in other.
func (s *LwwSet[T]) IsDisjoint(other *LwwSet[T]) bool {
	for element, entry := range s.elements {
		if entry.present && other.Contains(element) {
			return false
		}
	}
	return true
}

// All returns an iterator over the currently present elements. The set must
// not be mutated while iterating; use Elements for a stable snapshot.
func (s *LwwSet[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for element, entry := range s.elements {
			if entry.present && !yield(element) {
				return
			}
		}
	}
}

// Elements returns a snapshot of the currently present elements.
func (s *LwwSet[T]) Elements() []T {
	elements := make([]T, 0, len(s.elements))
	for element, entry := range s.elements {
		if entry.present {
			elements = append(elements, element)
		}
	}
	return elements
}

// Merge merges another replica into this set, replaying each incoming
// element record through the insert/remove tie-break.
func (s *LwwSet[T]) Merge(other *LwwSet[T]) {
	for element, entry := range other.elements {
		s.record(element, entry)
	}
}

// Apply applies an insert or remove operation. Same rules as Merge.
func (s *LwwSet[T]) Apply(op LwwSetOp[T]) {
	s.record(op.Element, lwwEntry{present: op.Present, tid: op.TransactionID})
}

func (s *LwwSet[T]) record(element T, incoming lwwEntry) {
	entry, seen := s.elements[element]
	if !seen {
		s.elements[element] = incoming
		return
	}
	if incoming.tid > entry.tid || (incoming.tid == entry.tid && incoming.present) {
		s.elements[element] = incoming
	}
}

// Compare orders replicas by per-element transaction ids: s is ahead on an
// element the other side lacks, or one where its stored id is strictly
// greater.
func (s *LwwSet[T]) Compare(other *LwwSet[T]) crdt.Ordering {
	if maps.Equal(s.elements, other.elements) {
		return crdt.Equal
	}
	selfAhead := lwwAhead(s.elements, other.elements)
	otherAhead := lwwAhead(other.elements, s.elements)
	switch {
	case selfAhead && otherAhead:
		return crdt.Concurrent
	case selfAhead:
		return crdt.Greater
	default:
		return crdt.Less
	}
}

func lwwAhead[T comparable](a, b map[T]lwwEntry) bool {
	for element, entry := range a {
		bEntry, seen := b[element]
		if !seen || entry.tid > bEntry.tid {
			return true
		}
		// same id but the add-biased record: the insert is ahead
		if entry.tid == bEntry.tid && entry.present && !bEntry.present {
			return true
		}
	}
	return false
}

// Equal reports whether both replicas track the same element records.
func (s *LwwSet[T]) Equal(other *LwwSet[T]) bool {
	return maps.Equal(s.elements, other.elements)
}

// Clone returns an independent copy of the set.
func (s *LwwSet[T]) Clone() *LwwSet[T] {
	return &LwwSet[T]{elements: maps.Clone(s.elements)}
}
