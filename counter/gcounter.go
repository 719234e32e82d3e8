// Package counter provides the counter CRDTs: the grow-only GCounter and the
// increment/decrement PnCounter.
package counter

import (
	"maps"

	"github.com/danburkert/crdt"
)

// GCounter is a grow-only counter. It tracks one slot per replica; the slot
// of any fixed replica only ever increases, across local increments and
// merges alike.
type GCounter struct {
	replica crdt.ReplicaID
	counts  map[crdt.ReplicaID]uint64
}

// GCounterIncrement is the increment operation over GCounter replicas. It
// carries the issuing replica's resulting count, not the delta, so applying
// it any number of times has the effect of applying it once.
type GCounterIncrement struct {
	Replica crdt.ReplicaID
	Count   uint64
}

var _ crdt.Crdt[*GCounter, GCounterIncrement] = (*GCounter)(nil)

// NewGCounter creates a grow-only counter with an initial count of 0.
// Replica ids must be unique among replicas of a counter.
func NewGCounter(replica crdt.ReplicaID) *GCounter {
	return &GCounter{
		replica: replica,
		counts:  make(map[crdt.ReplicaID]uint64),
	}
}

// Count returns the current count: the sum over every replica's slot.
func (c *GCounter) Count() (sum uint64) {
	for _, count := range c.counts {
		sum += count
	}
	return
}

// Increment increments the counter by amount and returns the operation to
// broadcast to other replicas.
//
// Incrementing one replica's slot past the uint64 range is undefined
// behavior. The bound covers the sum of every increment the replica ever
// issued, is globally shared once states merge, and is never checked.
func (c *GCounter) Increment(amount uint64) GCounterIncrement {
	c.counts[c.replica] += amount
	return GCounterIncrement{Replica: c.replica, Count: c.counts[c.replica]}
}

// ReplicaID returns the id of the local replica.
func (c *GCounter) ReplicaID() crdt.ReplicaID {
	return c.replica
}

// Merge merges another replica into this counter, taking the max of every
// slot (state-based replication).
func (c *GCounter) Merge(other *GCounter) {
	for replica, count := range other.counts {
		c.counts[replica] = max(c.counts[replica], count)
	}
}

// Apply applies an increment operation (operation-based replication).
// Re-applying an already-seen operation is a no-op.
func (c *GCounter) Apply(op GCounterIncrement) {
	c.counts[op.Replica] = max(c.counts[op.Replica], op.Count)
}

// Compare places this counter against another under slotwise dominance:
// c <= other iff every slot known to c is no larger than other's, missing
// slots counting as zero.
func (c *GCounter) Compare(other *GCounter) crdt.Ordering {
	selfAhead := slotsAhead(c.counts, other.counts)
	otherAhead := slotsAhead(other.counts, c.counts)
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

// slotsAhead reports whether a holds any slot b has not caught up with.
func slotsAhead(a, b map[crdt.ReplicaID]uint64) bool {
	for replica, count := range a {
		bCount, ok := b[replica]
		if !ok || count > bCount {
			return true
		}
	}
	return false
}

// Equal reports whether both replicas carry the same slots. The local
// replica id does not participate.
func (c *GCounter) Equal(other *GCounter) bool {
	return maps.Equal(c.counts, other.counts)
}

// Clone returns an independent copy of the counter.
func (c *GCounter) Clone() *GCounter {
	return &GCounter{replica: c.replica, counts: maps.Clone(c.counts)}
}
