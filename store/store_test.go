package store_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danburkert/crdt"
	"github.com/danburkert/crdt/counter"
	"github.com/danburkert/crdt/register"
	"github.com/danburkert/crdt/store"
)

func newCounterStore(name string, replica crdt.ReplicaID) *store.Store[*counter.PnCounter, counter.PnCounterIncrement] {
	return store.New[*counter.PnCounter, counter.PnCounterIncrement](name, func() *counter.PnCounter {
		return counter.NewPnCounter(replica)
	}, nil)
}

func TestStoreUpdateSnapshot(t *testing.T) {
	s := newCounterStore("accounts", 1)

	_, ok := s.Snapshot("alice")
	assert.False(t, ok)

	s.Update("alice", func(c *counter.PnCounter) {
		c.Increment(7)
	})

	snap, ok := s.Snapshot("alice")
	assert.True(t, ok)
	assert.Equal(t, int64(7), snap.Count())

	// the snapshot is a copy, mutating it does not touch the store
	snap.Increment(100)
	snap2, _ := s.Snapshot("alice")
	assert.Equal(t, int64(7), snap2.Count())
}

func TestStoreConcurrentUpdates(t *testing.T) {
	const workers = 8
	const perWorker = 100

	s := newCounterStore("hits", 1)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				s.Update("page", func(c *counter.PnCounter) {
					c.Increment(1)
				})
			}
		}()
	}
	wg.Wait()

	snap, _ := s.Snapshot("page")
	assert.Equal(t, int64(workers*perWorker), snap.Count())
	assert.Equal(t, []string{"page"}, s.Keys())
}

func TestStoreApply(t *testing.T) {
	left := newCounterStore("left", 1)
	right := newCounterStore("right", 2)

	var op counter.PnCounterIncrement
	left.Update("k", func(c *counter.PnCounter) {
		op = c.Increment(3)
	})

	right.Apply("k", op)
	right.Apply("k", op)

	snap, _ := right.Snapshot("k")
	assert.Equal(t, int64(3), snap.Count())
}

func TestStoreSyncWith(t *testing.T) {
	left := newCounterStore("left", 1)
	right := newCounterStore("right", 2)

	left.Update("a", func(c *counter.PnCounter) { c.Increment(5) })
	left.Update("b", func(c *counter.PnCounter) { c.Increment(1) })
	right.Update("a", func(c *counter.PnCounter) { c.Increment(-2) })
	right.Update("c", func(c *counter.PnCounter) { c.Increment(9) })

	left.SyncWith(right)

	assert.Equal(t, 3, left.Len())
	assert.Equal(t, 3, right.Len())
	for _, key := range left.Keys() {
		l, _ := left.Snapshot(key)
		r, _ := right.Snapshot(key)
		assert.True(t, l.Equal(r), "key %q diverged", key)
	}

	a, _ := left.Snapshot("a")
	assert.Equal(t, int64(3), a.Count())
}

func TestStoreRegisterValues(t *testing.T) {
	s := store.New[*register.LwwRegister[string], register.LwwRegisterSet[string]]("config", func() *register.LwwRegister[string] {
		return register.NewLwwRegister("", 0)
	}, nil)

	s.Update("motd", func(r *register.LwwRegister[string]) {
		r.Set("hello", 1)
	})
	s.Update("motd", func(r *register.LwwRegister[string]) {
		r.Set("stale", 0)
	})

	snap, _ := s.Snapshot("motd")
	assert.Equal(t, "hello", snap.Get())
}
