package driver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"rill/engine-go/pkg/engine"
	"rill/engine-go/pkg/runtime"
)

func TestExampleRegistry(t *testing.T) {
	require.Equal(t, []string{"counter", "retain", "todo"}, ExampleNames())

	program, err := LookupExample("counter")
	require.NoError(t, err)
	require.NotNil(t, program)

	_, err = LookupExample("nope")
	require.Error(t, err)
}

func TestEveryExampleRunsAQuietRound(t *testing.T) {
	for name, program := range Examples() {
		session := engine.NewSession(program)
		require.NoError(t, session.EvaluateRound(), "example %s", name)
	}
}

func TestTodoExampleLifecycle(t *testing.T) {
	program, err := LookupExample("todo")
	require.NoError(t, err)
	s := engine.NewSession(program)

	require.NoError(t, s.Inject("new_todo.submit", runtime.Text("buy milk")))
	require.NoError(t, s.EvaluateRound())
	require.NoError(t, s.Inject("new_todo.submit", runtime.Text("write tests")))
	require.NoError(t, s.EvaluateRound())

	require.True(t, runtime.Equal(runtime.Text("buy milk"), s.Read("todos.[0].label")))
	require.True(t, runtime.Equal(runtime.Text("write tests"), s.Read("todos.[1].label")))
	require.True(t, runtime.Equal(runtime.Bool(false), s.Read("todos.[0].completed")))

	require.NoError(t, s.Inject("toggle_all.press", runtime.Unit()))
	require.NoError(t, s.EvaluateRound())
	require.True(t, runtime.Equal(runtime.Bool(true), s.Read("todos.[0].completed")))
	require.True(t, runtime.Equal(runtime.Bool(true), s.Read("todos.[1].completed")))

	// the fold over rows sees the toggles on the following round
	require.NoError(t, s.EvaluateRound())
	require.True(t, runtime.Equal(runtime.Bool(true), s.Read("all_completed")))
}

func TestRetainExampleLifecycle(t *testing.T) {
	program, err := LookupExample("retain")
	require.NoError(t, err)
	s := engine.NewSession(program)

	for _, v := range []int64{5, 1, 9} {
		require.NoError(t, s.Inject("push.value", runtime.Int(v)))
		require.NoError(t, s.EvaluateRound())
	}
	require.NoError(t, s.Inject("prune.press", runtime.Int(3)))
	require.NoError(t, s.EvaluateRound())

	want := runtime.ListOf(runtime.Int(5), runtime.Int(9))
	require.True(t, runtime.Equal(want, s.Read("numbers")))

	require.NoError(t, s.EvaluateRound())
	require.True(t, runtime.Equal(runtime.Int(14), s.Read("total")))
}
