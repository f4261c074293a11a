package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScopeChildAndParent(t *testing.T) {
	root := RootScope()
	require.True(t, root.IsRoot())

	child := root.Child(3).Child(7)
	require.False(t, child.IsRoot())
	require.Equal(t, "root/3/7", child.String())

	parent, ok := child.Parent()
	require.True(t, ok)
	require.Equal(t, root.Child(3), parent)

	_, ok = root.Parent()
	require.False(t, ok)
}

func TestScopeContainment(t *testing.T) {
	root := RootScope()
	a := root.Child(1)
	b := a.Child(2)
	other := root.Child(10)

	require.True(t, a.Contains(a))
	require.True(t, a.Contains(b))
	require.True(t, root.Contains(b))
	require.False(t, b.Contains(a))
	require.False(t, a.Contains(other))

	// child 1 is not a prefix of child 10 even though "/1" prefixes "/10"
	require.False(t, a.Contains(other))
	require.True(t, a.IsAncestorOf(b))
	require.False(t, a.IsAncestorOf(a))
}

func TestScopeDepth(t *testing.T) {
	require.Equal(t, 0, RootScope().Depth())
	require.Equal(t, 2, RootScope().Child(0).Child(0).Depth())
}

func TestParseScopeRoundTrip(t *testing.T) {
	for _, scope := range []ScopeId{
		RootScope(),
		RootScope().Child(5),
		RootScope().Child(12).Child(0).Child(99),
	} {
		parsed, err := ParseScope(scope.String())
		require.NoError(t, err)
		require.Equal(t, scope, parsed)
	}

	_, err := ParseScope("bogus/1")
	require.Error(t, err)
	_, err = ParseScope("root/x")
	require.Error(t, err)
}

func TestSlotString(t *testing.T) {
	slot := NewSlot(RootScope().Child(2), 17)
	require.Equal(t, "root/2#17", slot.String())
	require.Equal(t, RootScope(), RootSlot(4).Scope)
}
