// Package crdttest provides the lattice-law checks shared by the tests of
// every replicated type, plus a process-wide source of distinct replica ids.
//
// The helpers are generic over the crdt.Crdt contract so each concrete type
// proves the same algebra: merge is a commutative, associative, idempotent
// join; apply is idempotent and order-independent; the derived partial order
// agrees with merge.
package crdttest

import (
	"math/rand"
	"sync/atomic"

	"github.com/danburkert/crdt"
	"github.com/stretchr/testify/require"
)

// TestingT is the subset of *testing.T the checks need. *rapid.T satisfies
// it too, so the laws run under both plain and property tests.
type TestingT = require.TestingT

var replicaIDs atomic.Uint64

// NextReplicaID returns a replica id unique within this process. That is the
// whole contract: it exists so tests can mint distinct replicas cheaply.
// Production replicas must take ids from real per-replica configuration or a
// coordination service.
func NextReplicaID() crdt.ReplicaID {
	return crdt.ReplicaID(replicaIDs.Add(1))
}

// State is the state-based half of the crdt.Crdt contract.
type State[C any] interface {
	Merge(other C)
	Compare(other C) crdt.Ordering
	Equal(other C) bool
	Clone() C
}

// Ops is the full contract, including operation-based replication.
type Ops[C, O any] interface {
	State[C]
	Apply(op O)
}

// MergeCommutative checks merge(a,b) == merge(b,a).
func MergeCommutative[C State[C]](t TestingT, a, b C) {
	ab := a.Clone()
	ab.Merge(b)
	ba := b.Clone()
	ba.Merge(a)
	require.True(t, ab.Equal(ba), "merge is not commutative: %v vs %v", ab, ba)
}

// MergeIdempotent checks merge(a,a) == a.
func MergeIdempotent[C State[C]](t TestingT, a C) {
	aa := a.Clone()
	aa.Merge(a)
	require.True(t, aa.Equal(a), "merge is not idempotent: %v", a)
}

// MergeAssociative checks merge(merge(a,b),c) == merge(a,merge(b,c)).
func MergeAssociative[C State[C]](t TestingT, a, b, c C) {
	left := a.Clone()
	left.Merge(b)
	left.Merge(c)

	bc := b.Clone()
	bc.Merge(c)
	right := a.Clone()
	right.Merge(bc)

	require.True(t, left.Equal(right), "merge is not associative: %v vs %v", left, right)
}

// JoinDominates checks that merge is the least upper bound of the partial
// order: merge(a,b) >= a, merge(a,b) >= b, and a <= b iff merge(a,b) == b.
func JoinDominates[C State[C]](t TestingT, a, b C) {
	m := a.Clone()
	m.Merge(b)

	ord := m.Compare(a)
	require.True(t, ord == crdt.Greater || ord == crdt.Equal,
		"join does not dominate left input: %v", ord)
	ord = m.Compare(b)
	require.True(t, ord == crdt.Greater || ord == crdt.Equal,
		"join does not dominate right input: %v", ord)

	switch a.Compare(b) {
	case crdt.Less, crdt.Equal:
		require.True(t, m.Equal(b), "a <= b but merge(a,b) != b")
	default:
		require.False(t, m.Equal(b), "a > b or a || b but merge(a,b) == b")
	}
}

// OrderingEquality checks reflexivity and antisymmetry: after mutual merge
// both replicas are equal in both directions and compare Equal.
func OrderingEquality[C State[C]](t TestingT, a, b C) {
	x := a.Clone()
	x.Merge(b)
	y := b.Clone()
	y.Merge(x)
	x.Merge(y)

	require.True(t, x.Equal(y))
	require.True(t, y.Equal(x))
	require.Equal(t, crdt.Equal, x.Compare(y))
	require.Equal(t, crdt.Equal, y.Compare(x))
}

// ApplyOrderIndependent checks that any permutation of an operation sequence
// drives the same starting state to the same final state.
func ApplyOrderIndependent[C Ops[C, O], O any](t TestingT, start C, ops []O) {
	expected := start.Clone()
	for _, op := range ops {
		expected.Apply(op)
	}

	shuffled := append([]O(nil), ops...)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	got := start.Clone()
	for _, op := range shuffled {
		got.Apply(op)
	}
	require.True(t, expected.Equal(got),
		"apply is order-dependent: %v vs %v", expected, got)
}

// ApplyIdempotent checks that re-applying every operation leaves the state
// unchanged, i.e. at-least-once delivery is safe.
func ApplyIdempotent[C Ops[C, O], O any](t TestingT, start C, ops []O) {
	once := start.Clone()
	twice := start.Clone()
	for _, op := range ops {
		once.Apply(op)
		twice.Apply(op)
		twice.Apply(op)
	}
	require.True(t, once.Equal(twice),
		"apply is not idempotent: %v vs %v", once, twice)
}

// StateLaws runs every state-based law on the given triple.
func StateLaws[C State[C]](t TestingT, a, b, c C) {
	MergeCommutative(t, a, b)
	MergeIdempotent(t, a)
	MergeAssociative(t, a, b, c)
	JoinDominates(t, a, b)
	OrderingEquality(t, a, b)
}

// OpLaws runs every operation-based law on the given start state and ops.
func OpLaws[C Ops[C, O], O any](t TestingT, start C, ops []O) {
	ApplyOrderIndependent(t, start, ops)
	ApplyIdempotent(t, start, ops)
}
