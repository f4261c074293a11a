package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"rill/engine-go/pkg/engine"
	"rill/engine-go/pkg/runtime"
)

func sampleHolds() []engine.HoldSnapshot {
	return []engine.HoldSnapshot{
		{Scope: engine.RootScope(), Node: 4, Value: runtime.Int(2)},
		{Scope: engine.RootScope().Child(4).Child(0), Node: 9, Value: runtime.Bool(true)},
		{Scope: engine.RootScope().Child(4).Child(1), Node: 9, Value: runtime.ObjectOf(
			runtime.Field("label", runtime.Text("milk")),
		)},
	}
}

func testStoreRoundTrip(t *testing.T, s Store) {
	t.Helper()

	sessionId, holds, err := s.Load("counter")
	require.NoError(t, err)
	require.Empty(t, sessionId)
	require.Empty(t, holds)

	require.NoError(t, s.Save("counter", "session-1", sampleHolds()))

	sessionId, holds, err = s.Load("counter")
	require.NoError(t, err)
	require.Equal(t, "session-1", sessionId)
	require.Equal(t, sampleHolds(), holds)

	// a second save replaces the snapshot wholesale
	require.NoError(t, s.Save("counter", "session-2", sampleHolds()[:1]))
	sessionId, holds, err = s.Load("counter")
	require.NoError(t, err)
	require.Equal(t, "session-2", sessionId)
	require.Len(t, holds, 1)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	testStoreRoundTrip(t, s)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rill.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()
	testStoreRoundTrip(t, s)
}

func TestSQLiteStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rill.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Save("todo", "session-7", sampleHolds()))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	sessionId, holds, err := reopened.Load("todo")
	require.NoError(t, err)
	require.Equal(t, "session-7", sessionId)
	require.Equal(t, sampleHolds(), holds)
}

func TestSQLiteStoreSkipValueFailsSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rill.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	bad := []engine.HoldSnapshot{{Scope: engine.RootScope(), Node: 1, Value: runtime.Skip()}}
	require.Error(t, s.Save("counter", "session-1", bad))

	// failed save leaves nothing behind
	sessionId, holds, err := s.Load("counter")
	require.NoError(t, err)
	require.Empty(t, sessionId)
	require.Empty(t, holds)
}
