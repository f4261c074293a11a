package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStampOrdering(t *testing.T) {
	earlier := Stamp{Round: 1, Seq: 9}
	later := Stamp{Round: 2, Seq: 0}
	require.True(t, earlier.Before(later))
	require.True(t, later.After(earlier))
	require.Equal(t, later, MaxStamp(earlier, later))
	require.Equal(t, later, MaxStamp(later, earlier))

	sameRound := Stamp{Round: 1, Seq: 10}
	require.True(t, earlier.Before(sameRound))
	require.False(t, earlier.Before(earlier))
}

func TestClockStampsAreStrictlyIncreasing(t *testing.T) {
	var clock Clock
	clock.BeginRound()

	prev := clock.NextStamp()
	for i := 0; i < 100; i++ {
		next := clock.NextStamp()
		require.True(t, prev.Before(next))
		prev = next
	}

	clock.BeginRound()
	next := clock.NextStamp()
	require.True(t, prev.Before(next))
	require.Equal(t, uint64(2), clock.Round())
}

func TestClockReset(t *testing.T) {
	var clock Clock
	clock.BeginRound()
	clock.NextStamp()
	clock.Reset()
	require.Equal(t, uint64(0), clock.Round())
	require.Equal(t, Stamp{}, clock.NextStamp())
}

func TestCacheValidity(t *testing.T) {
	c := newCache()
	slot := RootSlot(1)

	c.put(slot, &cacheEntry{stamp: Stamp{Round: 1}, pure: true})
	entry, ok := c.get(slot)
	require.True(t, ok)
	require.True(t, entry.validAt(1))
	require.True(t, entry.validAt(5))

	impure := RootSlot(2)
	c.put(impure, &cacheEntry{stamp: Stamp{Round: 1}, pure: false})
	entry, ok = c.get(impure)
	require.True(t, ok)
	require.True(t, entry.validAt(1))
	require.False(t, entry.validAt(2))
}

func TestCacheDropScope(t *testing.T) {
	c := newCache()
	inner := RootScope().Child(4).Child(0)
	sibling := RootScope().Child(5)
	c.put(NewSlot(inner, 1), &cacheEntry{pure: true})
	c.put(NewSlot(sibling, 1), &cacheEntry{pure: true})
	c.put(RootSlot(9), &cacheEntry{pure: true})

	c.dropScope(RootScope().Child(4))

	_, ok := c.get(NewSlot(inner, 1))
	require.False(t, ok)
	_, ok = c.get(NewSlot(sibling, 1))
	require.True(t, ok)
	_, ok = c.get(RootSlot(9))
	require.True(t, ok)
}
