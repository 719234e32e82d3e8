// Package crdt is a library of Conflict-free Replicated Data Types.
//
// CRDTs (also called convergent and commutative replicated data types) allow
// concurrent updates to distributed replicas with strong eventual consistency
// and without coordination. Replicas reconcile in two ways: state-based
// replication merges the entire state of a remote replica, while
// operation-based replication ships and applies individual mutations.
// Every type in this library supports both, or any mix of the two.
//
// Mutators return the operation to broadcast; the library itself never
// transmits anything. Operations carry absolute snapshots rather than bare
// deltas, so applying the same operation more than once leaves the state
// unchanged. That makes at-least-once delivery a sufficient transport
// guarantee.
//
// A single replica instance is plain mutable data: it must not be mutated
// from two goroutines without external synchronization. The store package
// provides one such synchronization layer.
//
// Further reading:
//
//  1. A comprehensive study of Convergent and Commutative Replicated Data
//     Types (Shapiro, et al.)
//  2. An Optimized Conflict-free Replicated Set (Bieniusa, et al.)
package crdt

// Ordering is the outcome of comparing two replicas under the partial order
// a CRDT induces over its own replicas: a <= b exactly when every event b
// has observed includes every event a has observed.
type Ordering int

const (
	Less Ordering = iota
	Equal
	Greater
	// Concurrent means neither replica dominates the other. Under
	// partition this is a normal steady-state outcome, not an error.
	Concurrent
)

func (o Ordering) String() string {
	switch o {
	case Less:
		return "Less"
	case Equal:
		return "Equal"
	case Greater:
		return "Greater"
	case Concurrent:
		return "Concurrent"
	default:
		return "Ordering(?)"
	}
}

// Crdt is the contract every replicated type implements. C is the concrete
// replica type (always a pointer), O its operation type.
//
// Merge is the join of the type's semilattice: commutative, associative and
// idempotent, so anti-entropy exchanges converge regardless of schedule or
// overlap. Apply is idempotent per operation. Compare derives the partial
// order from Merge: a.Compare(b) is Less or Equal exactly when merging b
// into a copy of a yields a state equal to b.
//
// Equal and Compare look only at the replicated history, never at the local
// replica identity: two replicas with the same observed events are equal no
// matter who is asking.
type Crdt[C, O any] interface {
	// Merge merges another replica into this one (state-based replication).
	Merge(other C)

	// Apply applies a single operation (operation-based replication).
	Apply(op O)

	// Compare places this replica relative to another under the type's
	// partial order.
	Compare(other C) Ordering

	// Equal reports whether both replicas carry the same replicated state.
	Equal(other C) bool

	// Clone returns an independent deep copy. Replication is always by
	// value; replicas never share memory.
	Clone() C
}
