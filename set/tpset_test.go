package set

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/danburkert/crdt"
	"github.com/danburkert/crdt/crdttest"
)

func genTpSetOp() *rapid.Generator[TpSetOp[uint8]] {
	return rapid.Custom(func(t *rapid.T) TpSetOp[uint8] {
		return TpSetOp[uint8]{
			Element: rapid.Uint8().Draw(t, "element"),
			Present: rapid.Bool().Draw(t, "present"),
		}
	})
}

func genTpSet() *rapid.Generator[*TpSet[uint8]] {
	return rapid.Custom(func(t *rapid.T) *TpSet[uint8] {
		s := NewTpSet[uint8]()
		for _, op := range rapid.SliceOfN(genTpSetOp(), 0, 8).Draw(t, "ops") {
			s.Apply(op)
		}
		return s
	})
}

func TestTpSetMerge(t *testing.T) {
	local := NewTpSet[int]()
	remote := NewTpSet[int]()

	local.Insert(1)
	remote.Insert(1)
	remote.Insert(2)
	remote.Remove(1)

	local.Merge(remote)
	assert.True(t, local.Contains(2))
	assert.False(t, local.Contains(1))
	assert.Equal(t, 1, local.Len())
}

func TestTpSetInsertOnce(t *testing.T) {
	s := NewTpSet[string]()

	op, ok := s.Insert("a")
	assert.True(t, ok)
	assert.Equal(t, TpSetOp[string]{Element: "a", Present: true}, op)

	_, ok = s.Insert("a")
	assert.False(t, ok)

	_, ok = s.Remove("a")
	assert.True(t, ok)
	assert.False(t, s.Contains("a"))

	// once removed, an element can never come back
	_, ok = s.Insert("a")
	assert.False(t, ok)
	assert.False(t, s.Contains("a"))

	_, ok = s.Remove("a")
	assert.False(t, ok)
}

func TestTpSetRemoveUnseen(t *testing.T) {
	s := NewTpSet[string]()

	// first sighting may be a removal record
	op, ok := s.Remove("ghost")
	assert.True(t, ok)
	assert.Equal(t, TpSetOp[string]{Element: "ghost", Present: false}, op)

	_, ok = s.Insert("ghost")
	assert.False(t, ok)
}

func TestTpSetRemovalDominatesMerge(t *testing.T) {
	local := NewTpSet[int]()
	remote := NewTpSet[int]()

	remote.Insert(7)
	remote.Remove(7)
	local.Insert(7) // concurrent insert, never saw the removal

	local.Merge(remote)
	assert.False(t, local.Contains(7))

	// a later merge carrying only the insert record cannot resurrect it
	fresh := NewTpSet[int]()
	fresh.Insert(7)
	local.Merge(fresh)
	assert.False(t, local.Contains(7))
}

func TestTpSetCompare(t *testing.T) {
	a := NewTpSet[int]()
	b := NewTpSet[int]()
	assert.Equal(t, crdt.Equal, a.Compare(b))

	a.Insert(1)
	assert.Equal(t, crdt.Greater, a.Compare(b))
	assert.Equal(t, crdt.Less, b.Compare(a))

	// b observing the insert as a removal still dominates it
	b.Remove(1)
	assert.Equal(t, crdt.Less, a.Compare(b))

	a.Insert(2)
	assert.Equal(t, crdt.Concurrent, a.Compare(b))
}

func TestTpSetSubsetDisjoint(t *testing.T) {
	a := NewTpSet[int]()
	b := NewTpSet[int]()
	a.Insert(1)
	b.Insert(1)
	b.Insert(2)
	b.Remove(1)

	assert.True(t, b.IsSubset(b))
	assert.False(t, a.IsSubset(b)) // 1 was removed from b
	assert.True(t, a.IsDisjoint(b))
	assert.ElementsMatch(t, []int{2}, b.Elements())
	assert.ElementsMatch(t, []int{2}, slices.Collect(b.All()))
}

func TestTpSetLaws(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := genTpSet().Draw(t, "a")
		b := genTpSet().Draw(t, "b")
		c := genTpSet().Draw(t, "c")
		crdttest.StateLaws(t, a, b, c)

		ops := rapid.SliceOfN(genTpSetOp(), 0, 6).Draw(t, "ops")
		crdttest.OpLaws(t, a, ops)
	})
}
