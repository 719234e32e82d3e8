// Package register provides the LwwRegister CRDT, a last-writer-wins value
// slot.
package register

import "github.com/danburkert/crdt"

// LwwRegister holds a single value together with the transaction id of the
// write that produced it. The highest transaction id wins; on an exact tie
// the incoming write wins. State-based and operation-based replication
// coincide for this type: an operation is simply a snapshot of the register.
type LwwRegister[T any] struct {
	value T
	tid   crdt.TransactionID
}

// LwwRegisterSet is the set operation over LwwRegister replicas: the
// winning (value, transaction id) pair.
type LwwRegisterSet[T any] struct {
	Value         T
	TransactionID crdt.TransactionID
}

var _ crdt.Crdt[*LwwRegister[string], LwwRegisterSet[string]] = (*LwwRegister[string])(nil)

// NewLwwRegister creates a register holding the given initial value and
// transaction id.
func NewLwwRegister[T any](value T, tid crdt.TransactionID) *LwwRegister[T] {
	return &LwwRegister[T]{value: value, tid: tid}
}

// Get returns the current value.
func (r *LwwRegister[T]) Get() T {
	return r.value
}

// TransactionID returns the transaction id of the current value.
func (r *LwwRegister[T]) TransactionID() crdt.TransactionID {
	return r.tid
}

// Set writes value at the given transaction id. The write succeeds when tid
// is at least the register's current transaction id; a stale write leaves
// the register untouched and returns false, signalling that nothing needs to
// be broadcast.
func (r *LwwRegister[T]) Set(value T, tid crdt.TransactionID) (LwwRegisterSet[T], bool) {
	if tid < r.tid {
		return LwwRegisterSet[T]{}, false
	}
	r.value = value
	r.tid = tid
	return LwwRegisterSet[T]{Value: value, TransactionID: tid}, true
}

// Merge merges another replica into this register: the incoming pair wins
// whenever its transaction id is at least the local one.
func (r *LwwRegister[T]) Merge(other *LwwRegister[T]) {
	if r.tid <= other.tid {
		r.value = other.value
		r.tid = other.tid
	}
}

// Apply applies a set operation. Same rule as Merge.
func (r *LwwRegister[T]) Apply(op LwwRegisterSet[T]) {
	if r.tid <= op.TransactionID {
		r.value = op.Value
		r.tid = op.TransactionID
	}
}

// Compare orders registers by transaction id. The order is total: two
// registers are never Concurrent.
func (r *LwwRegister[T]) Compare(other *LwwRegister[T]) crdt.Ordering {
	switch {
	case r.tid < other.tid:
		return crdt.Less
	case r.tid > other.tid:
		return crdt.Greater
	default:
		return crdt.Equal
	}
}

// Equal compares transaction ids only. Two registers with equal ids but
// different values compare equal; with unique transaction ids across
// replicas (the documented precondition) the case never arises.
func (r *LwwRegister[T]) Equal(other *LwwRegister[T]) bool {
	return r.tid == other.tid
}

// Clone returns an independent copy of the register.
func (r *LwwRegister[T]) Clone() *LwwRegister[T] {
	return &LwwRegister[T]{value: r.value, tid: r.tid}
}
