package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"rill/engine-go/pkg/ast"
	"rill/engine-go/pkg/runtime"
)

func TestMatchWildcardAndBind(t *testing.T) {
	binds := make(map[string]runtime.Value)
	require.True(t, matchPattern(ast.Wildcard(), runtime.Int(5), binds))
	require.Empty(t, binds)

	require.True(t, matchPattern(ast.Bind("n"), runtime.Int(5), binds))
	require.True(t, runtime.Equal(runtime.Int(5), binds["n"]))
}

func TestMatchLiteral(t *testing.T) {
	binds := make(map[string]runtime.Value)
	require.True(t, matchPattern(ast.LitP(ast.IntLit{Value: 3}), runtime.Int(3), binds))
	require.False(t, matchPattern(ast.LitP(ast.IntLit{Value: 3}), runtime.Int(4), binds))
	require.False(t, matchPattern(ast.LitP(ast.BoolLit{Value: true}), runtime.Int(1), binds))
	require.True(t, matchPattern(ast.LitP(ast.TextLit{Value: "on"}), runtime.Text("on"), binds))
}

func TestMatchObjectIgnoresExtraFields(t *testing.T) {
	value := runtime.ObjectOf(
		runtime.Field("kind", runtime.Text("press")),
		runtime.Field("x", runtime.Int(10)),
		runtime.Field("y", runtime.Int(20)),
	)
	pattern := ast.ObjectP(
		ast.PatField("kind", ast.LitP(ast.TextLit{Value: "press"})),
		ast.PatField("x", ast.Bind("x")),
	)
	binds := make(map[string]runtime.Value)
	require.True(t, matchPattern(pattern, value, binds))
	require.True(t, runtime.Equal(runtime.Int(10), binds["x"]))

	missing := ast.ObjectP(ast.PatField("z", ast.Wildcard()))
	require.False(t, matchPattern(missing, value, binds))
	require.False(t, matchPattern(pattern, runtime.Int(1), binds))
}

func TestMatchListIsExact(t *testing.T) {
	value := runtime.ListOf(runtime.Int(1), runtime.Int(2))
	binds := make(map[string]runtime.Value)

	require.True(t, matchPattern(ast.ListP(ast.Bind("a"), ast.Bind("b")), value, binds))
	require.True(t, runtime.Equal(runtime.Int(1), binds["a"]))
	require.True(t, runtime.Equal(runtime.Int(2), binds["b"]))

	require.False(t, matchPattern(ast.ListP(ast.Wildcard()), value, binds))
	require.False(t, matchPattern(ast.ListP(ast.Wildcard(), ast.LitP(ast.IntLit{Value: 9})), value, binds))
}
