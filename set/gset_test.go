package set

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/danburkert/crdt"
	"github.com/danburkert/crdt/crdttest"
)

func genGSetOp() *rapid.Generator[GSetInsert[uint8]] {
	return rapid.Custom(func(t *rapid.T) GSetInsert[uint8] {
		return GSetInsert[uint8]{Element: rapid.Uint8().Draw(t, "element")}
	})
}

func genGSet() *rapid.Generator[*GSet[uint8]] {
	return rapid.Custom(func(t *rapid.T) *GSet[uint8] {
		s := NewGSet[uint8]()
		for _, op := range rapid.SliceOfN(genGSetOp(), 0, 8).Draw(t, "ops") {
			s.Apply(op)
		}
		return s
	})
}

func TestGSetInsert(t *testing.T) {
	s := NewGSet[string]()
	assert.True(t, s.IsEmpty())

	op, ok := s.Insert("first-element")
	assert.True(t, ok)
	assert.Equal(t, GSetInsert[string]{Element: "first-element"}, op)
	assert.True(t, s.Contains("first-element"))

	_, ok = s.Insert("first-element")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestGSetMergeIsUnion(t *testing.T) {
	local := NewGSet[int]()
	remote := NewGSet[int]()

	local.Insert(1)
	remote.Insert(2)

	local.Merge(remote)
	assert.True(t, local.Contains(1))
	assert.True(t, local.Contains(2))
	assert.ElementsMatch(t, []int{1, 2}, local.Elements())
	assert.ElementsMatch(t, []int{1, 2}, slices.Collect(local.All()))
}

func TestGSetApply(t *testing.T) {
	local := NewGSet[int]()
	remote := NewGSet[int]()

	op, _ := remote.Insert(13)
	local.Apply(op)
	local.Apply(op)
	assert.True(t, local.Contains(13))
	assert.Equal(t, 1, local.Len())
}

func TestGSetCompareIsInclusion(t *testing.T) {
	a := NewGSet[int]()
	b := NewGSet[int]()
	assert.Equal(t, crdt.Equal, a.Compare(b))

	a.Insert(1)
	assert.Equal(t, crdt.Greater, a.Compare(b))
	assert.Equal(t, crdt.Less, b.Compare(a))
	assert.True(t, b.IsSubset(a))

	b.Insert(2)
	assert.Equal(t, crdt.Concurrent, a.Compare(b))
	assert.True(t, a.IsDisjoint(b))
}

func TestGSetLaws(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := genGSet().Draw(t, "a")
		b := genGSet().Draw(t, "b")
		c := genGSet().Draw(t, "c")
		crdttest.StateLaws(t, a, b, c)

		ops := rapid.SliceOfN(genGSetOp(), 0, 6).Draw(t, "ops")
		crdttest.OpLaws(t, a, ops)
	})
}
