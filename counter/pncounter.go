package counter

import (
	"maps"

	"github.com/danburkert/crdt"
)

// PnCounter is an incrementable and decrementable counter. Each replica owns
// a crdt.Pn slot; decrements grow the negative side instead of shrinking the
// positive one, which keeps every slot monotone and the merge a pointwise
// max.
type PnCounter struct {
	replica crdt.ReplicaID
	counts  map[crdt.ReplicaID]crdt.Pn
}

// PnCounterIncrement is the increment/decrement operation over PnCounter
// replicas. It carries a snapshot of the issuing replica's Pn slot, so it is
// merged on apply rather than accumulated, and re-delivery is harmless.
type PnCounterIncrement struct {
	Replica crdt.ReplicaID
	Pn      crdt.Pn
}

var _ crdt.Crdt[*PnCounter, PnCounterIncrement] = (*PnCounter)(nil)

// NewPnCounter creates a counter with an initial count of 0. Replica ids
// must be unique among replicas of a counter.
func NewPnCounter(replica crdt.ReplicaID) *PnCounter {
	return &PnCounter{
		replica: replica,
		counts:  make(map[crdt.ReplicaID]crdt.Pn),
	}
}

// Count returns the current count: the sum of every replica's signed count.
func (c *PnCounter) Count() (sum int64) {
	for _, pn := range c.counts {
		sum += pn.Count()
	}
	return
}

// Increment increments the counter by amount, decrementing when amount is
// negative, and returns the operation to broadcast.
//
// Driving one replica's positive or negative side past the uint64 range is
// undefined behavior. Decrements do not offset increments for the purposes
// of these bounds: the two sides overflow independently. The bounds are
// globally shared once states merge and are never checked.
func (c *PnCounter) Increment(amount int64) PnCounterIncrement {
	pn := c.counts[c.replica]
	pn.Increment(amount)
	c.counts[c.replica] = pn
	return PnCounterIncrement{Replica: c.replica, Pn: pn}
}

// ReplicaID returns the id of the local replica.
func (c *PnCounter) ReplicaID() crdt.ReplicaID {
	return c.replica
}

// Merge merges another replica into this counter (state-based replication).
func (c *PnCounter) Merge(other *PnCounter) {
	for replica, pn := range other.counts {
		mine := c.counts[replica]
		mine.Merge(pn)
		c.counts[replica] = mine
	}
}

// Apply applies an increment operation (operation-based replication).
func (c *PnCounter) Apply(op PnCounterIncrement) {
	pn := c.counts[op.Replica]
	pn.Merge(op.Pn)
	c.counts[op.Replica] = pn
}

// Compare places this counter against another under slotwise (p, n)
// dominance, extended the same way GCounter extends it: a missing slot
// counts as zeroes.
func (c *PnCounter) Compare(other *PnCounter) crdt.Ordering {
	selfAhead := pnSlotsAhead(c.counts, other.counts)
	otherAhead := pnSlotsAhead(other.counts, c.counts)
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

func pnSlotsAhead(a, b map[crdt.ReplicaID]crdt.Pn) bool {
	for replica, pn := range a {
		bPn, ok := b[replica]
		if !ok || pn.P > bPn.P || pn.N > bPn.N {
			return true
		}
	}
	return false
}

// Equal reports whether both replicas carry the same slots, ignoring the
// local replica id.
func (c *PnCounter) Equal(other *PnCounter) bool {
	return maps.Equal(c.counts, other.counts)
}

// Clone returns an independent copy of the counter.
func (c *PnCounter) Clone() *PnCounter {
	return &PnCounter{replica: c.replica, counts: maps.Clone(c.counts)}
}
