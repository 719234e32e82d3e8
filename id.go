package crdt

import "github.com/cespare/xxhash/v2"

// ReplicaID distinguishes the local replica issuing operations.
//
// Replica ids must be unique among live replicas of the same logical CRDT.
// This is a caller precondition, not something the library can check: take
// ids from per-replica configuration or from a coordination service such as
// ZooKeeper or etcd. Duplicate ids silently corrupt convergence.
type ReplicaID uint64

// ReplicaIDFromName derives a stable 64-bit replica id from a name, e.g. a
// hostname or a configuration key. The caller still owns uniqueness: two
// distinct names may collide, although xxhash makes that unlikely.
func ReplicaIDFromName(name string) ReplicaID {
	return ReplicaID(xxhash.Sum64String(name))
}

// TransactionID breaks write/write ties in the last-writer-wins types.
//
// Transaction ids supplied to one replica must be non-decreasing across
// successive writes. Ids across replicas should be unique and as close to
// globally monotonic as practical; unlike replica ids this needs no strong
// coordination (Snowflake-style generators qualify). Violations are not
// detected, they just weaken the tie-break.
type TransactionID uint64

// Less reports tid < other. Transaction ids are totally ordered.
func (tid TransactionID) Less(other TransactionID) bool {
	return tid < other
}
