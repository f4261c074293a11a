package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally/v4"

	"rill/engine-go/pkg/ast"
	"rill/engine-go/pkg/runtime"
)

func counterProgram(b *ast.Builder) *ast.Program {
	return b.Program(
		ast.TopBind("button", b.Link("button")),
		ast.TopBind("count", b.Hold(
			b.Int(0), "state",
			b.Then(
				b.Path(b.Var("button"), "click"),
				b.Call("add", b.Var("state"), b.Int(1)),
			),
		)),
	)
}

func TestSessionIdOverride(t *testing.T) {
	program := counterProgram(ast.NewBuilder())
	s := NewSession(program, WithSessionId("fixed-id"))
	require.Equal(t, "fixed-id", s.Id())

	another := NewSession(program)
	require.NotEmpty(t, another.Id())
	require.NotEqual(t, s.Id(), another.Id())
}

func TestInjectRejectsUnknownLink(t *testing.T) {
	s := NewSession(counterProgram(ast.NewBuilder()))
	require.Error(t, s.Inject("nothing.click", runtime.Int(1)))
	require.Error(t, s.Inject("", runtime.Int(1)))
	require.NoError(t, s.Inject("button.click", runtime.Int(1)))
}

func TestInjectWrapsPathSegments(t *testing.T) {
	b := ast.NewBuilder()
	program := b.Program(
		ast.TopBind("form", b.Link("form")),
		ast.TopBind("deep", b.Path(b.Path(b.Var("form"), "submit"), "name")),
	)
	s := NewSession(program)

	require.NoError(t, s.Inject("form.submit.name", runtime.Text("ada")))
	mustRound(t, s)
	require.True(t, runtime.Equal(runtime.Text("ada"), s.Read("deep")))
}

func TestInjectResolvesNestedLinkAlias(t *testing.T) {
	b := ast.NewBuilder()
	program := b.Program(
		ast.TopBind("out", b.Then(b.Link("buried"), b.Text("fired"))),
	)
	s := NewSession(program)

	require.NoError(t, s.Inject("buried", runtime.Unit()))
	mustRound(t, s)
	require.True(t, runtime.Equal(runtime.Text("fired"), s.Read("out")))
}

func TestCounterEndToEnd(t *testing.T) {
	s := NewSession(counterProgram(ast.NewBuilder()))

	mustRound(t, s)
	require.True(t, runtime.Equal(runtime.Int(0), s.Read("count")))

	require.NoError(t, s.Inject("button.click", runtime.Unit()))
	mustRound(t, s)
	require.True(t, runtime.Equal(runtime.Int(1), s.Read("count")))

	mustRound(t, s)
	require.True(t, runtime.Equal(runtime.Int(1), s.Read("count")))
	require.Equal(t, uint64(3), s.Round())
}

func TestFatalInjectionRollsBackRound(t *testing.T) {
	b := ast.NewBuilder()
	hold := b.Hold(
		b.Int(0), "state",
		b.Then(b.Var("tick"), b.Call("add", b.Var("state"), b.Int(1))),
	)
	program := b.Program(
		ast.TopBind("tick", b.Link("tick")),
		ast.TopBind("count", hold),
	)

	scope := tally.NewTestScope("", nil)
	s := NewSession(program, WithMetricsScope(scope))

	require.NoError(t, s.Inject("tick", runtime.Unit()))
	mustRound(t, s)
	require.True(t, runtime.Equal(runtime.Int(1), s.Read("count")))

	// delivering an event at the hold's own slot is a program error
	s.InjectAt(RootSlot(hold.Id()), runtime.Int(99))
	err := s.EvaluateRound()
	require.Error(t, err)

	require.True(t, runtime.Equal(runtime.Int(1), s.Read("count")), "state must be untouched after abort")

	counters := scope.Snapshot().Counters()
	require.NotNil(t, counters["fatal_aborts+"])
	require.Equal(t, int64(1), counters["fatal_aborts+"].Value())

	// the session keeps working after a failed round
	require.NoError(t, s.Inject("tick", runtime.Unit()))
	mustRound(t, s)
	require.True(t, runtime.Equal(runtime.Int(2), s.Read("count")))
}

func TestReadNavigation(t *testing.T) {
	b := ast.NewBuilder()
	program := b.Program(
		ast.TopBind("data", b.Object(
			ast.Field("items", b.List(b.Int(10), b.Int(20))),
			ast.Field("name", b.Text("box")),
		)),
	)
	s := NewSession(program)
	mustRound(t, s)

	require.True(t, runtime.Equal(runtime.Text("box"), s.Read("data.name")))
	require.True(t, runtime.Equal(runtime.Int(20), s.Read("data.items.[1]")))
	require.True(t, runtime.IsSkip(s.Read("data.items.[5]")))
	require.True(t, runtime.IsSkip(s.Read("data.missing")))
	require.True(t, runtime.IsSkip(s.Read("absent")))
	require.True(t, runtime.IsSkip(s.Read("")))
}

func TestResetClearsAllState(t *testing.T) {
	s := NewSession(counterProgram(ast.NewBuilder()))

	require.NoError(t, s.Inject("button.click", runtime.Unit()))
	mustRound(t, s)
	require.True(t, runtime.Equal(runtime.Int(1), s.Read("count")))

	s.Reset()
	require.Equal(t, uint64(0), s.Round())
	require.True(t, runtime.IsSkip(s.Read("count")))

	mustRound(t, s)
	require.True(t, runtime.Equal(runtime.Int(0), s.Read("count")))
}

func TestSnapshotAndRestoreHolds(t *testing.T) {
	b := ast.NewBuilder()
	program := counterProgram(b)
	s := NewSession(program)

	require.NoError(t, s.Inject("button.click", runtime.Unit()))
	mustRound(t, s)
	require.NoError(t, s.Inject("button.click", runtime.Unit()))
	mustRound(t, s)

	snaps := s.SnapshotHolds()
	require.Len(t, snaps, 1)
	require.True(t, runtime.Equal(runtime.Int(2), snaps[0].Value))

	restored := NewSession(program)
	restored.RestoreHolds(snaps)
	mustRound(t, restored)
	require.True(t, runtime.Equal(runtime.Int(2), restored.Read("count")))

	require.NoError(t, restored.Inject("button.click", runtime.Unit()))
	mustRound(t, restored)
	require.True(t, runtime.Equal(runtime.Int(3), restored.Read("count")))
}

func TestMetricsCountCacheTraffic(t *testing.T) {
	scope := tally.NewTestScope("", nil)
	s := NewSession(counterProgram(ast.NewBuilder()), WithMetricsScope(scope))

	mustRound(t, s)
	mustRound(t, s)

	counters := scope.Snapshot().Counters()
	require.NotNil(t, counters["rounds+"])
	require.Equal(t, int64(2), counters["rounds+"].Value())
	require.NotNil(t, counters["node_evals+"])
	require.Greater(t, counters["node_evals+"].Value(), int64(0))
}
