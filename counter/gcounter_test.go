package counter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/danburkert/crdt"
	"github.com/danburkert/crdt/crdttest"
)

func genGCounterOp() *rapid.Generator[GCounterIncrement] {
	return rapid.Custom(func(t *rapid.T) GCounterIncrement {
		return GCounterIncrement{
			Replica: crdt.ReplicaID(rapid.Uint64Range(0, 7).Draw(t, "replica")),
			Count:   rapid.Uint64Range(0, 1000).Draw(t, "count"),
		}
	})
}

// genGCounter builds arbitrary states by applying random operations, which
// exercises the op path during generation itself.
func genGCounter() *rapid.Generator[*GCounter] {
	return rapid.Custom(func(t *rapid.T) *GCounter {
		c := NewGCounter(crdttest.NextReplicaID())
		for _, op := range rapid.SliceOfN(genGCounterOp(), 0, 8).Draw(t, "ops") {
			c.Apply(op)
		}
		return c
	})
}

func TestGCounterMutualMerge(t *testing.T) {
	replica1 := NewGCounter(1)
	replica2 := NewGCounter(2)

	replica1.Increment(13)
	replica2.Increment(17)

	replica1.Merge(replica2)
	replica2.Merge(replica1)

	assert.Equal(t, uint64(30), replica1.Count())
	assert.Equal(t, uint64(30), replica2.Count())
	assert.True(t, replica1.Equal(replica2))
}

func TestGCounterIncrementReturnsSnapshot(t *testing.T) {
	local := NewGCounter(1)
	remote := NewGCounter(2)

	local.Increment(5)
	op := local.Increment(8)
	assert.Equal(t, GCounterIncrement{Replica: 1, Count: 13}, op)

	// at-least-once delivery: re-applying changes nothing
	remote.Apply(op)
	remote.Apply(op)
	assert.Equal(t, uint64(13), remote.Count())
}

func TestGCounterStaleOpIsNoop(t *testing.T) {
	local := NewGCounter(1)
	remote := NewGCounter(2)

	first := local.Increment(5)
	second := local.Increment(8)

	remote.Apply(second)
	remote.Apply(first) // delivered out of order
	assert.Equal(t, uint64(13), remote.Count())
}

func TestGCounterCompare(t *testing.T) {
	a := NewGCounter(1)
	b := NewGCounter(2)
	assert.Equal(t, crdt.Equal, a.Compare(b))

	a.Increment(1)
	assert.Equal(t, crdt.Greater, a.Compare(b))
	assert.Equal(t, crdt.Less, b.Compare(a))

	b.Increment(1)
	assert.Equal(t, crdt.Concurrent, a.Compare(b))
	assert.Equal(t, crdt.Concurrent, b.Compare(a))

	a.Merge(b)
	assert.Equal(t, crdt.Greater, a.Compare(b))
}

func TestGCounterLocalIncrement(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		increments := rapid.SliceOf(rapid.Uint64Range(0, 1<<30)).Draw(t, "increments")
		counter := NewGCounter(0)
		var sum uint64
		for _, amount := range increments {
			counter.Increment(amount)
			sum += amount
		}
		assert.Equal(t, sum, counter.Count())
	})
}

func TestGCounterLaws(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := genGCounter().Draw(t, "a")
		b := genGCounter().Draw(t, "b")
		c := genGCounter().Draw(t, "c")
		crdttest.StateLaws(t, a, b, c)

		ops := rapid.SliceOfN(genGCounterOp(), 0, 6).Draw(t, "ops")
		crdttest.OpLaws(t, a, ops)
	})
}
