// Package driver bundles ready-made programs and a YAML scenario runner for
// exercising sessions from the command line and from tests.
package driver

import (
	"fmt"
	"sort"

	"rill/engine-go/pkg/ast"
)

// Examples returns the built-in demo programs keyed by name.
func Examples() map[string]*ast.Program {
	return map[string]*ast.Program{
		"counter": CounterProgram(),
		"todo":    TodoProgram(),
		"retain":  RetainProgram(),
	}
}

// ExampleNames lists the demo programs in sorted order.
func ExampleNames() []string {
	examples := Examples()
	names := make([]string, 0, len(examples))
	for name := range examples {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupExample fetches a demo program by name.
func LookupExample(name string) (*ast.Program, error) {
	program, ok := Examples()[name]
	if !ok {
		return nil, fmt.Errorf("unknown example %q (have %v)", name, ExampleNames())
	}
	return program, nil
}

// CounterProgram is a button link feeding a held counter. Each button.click
// event adds one; quiet rounds leave the count untouched.
func CounterProgram() *ast.Program {
	b := ast.NewBuilder()
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

// TodoProgram keeps a held list of rows, each carrying its own completed
// hold that flips on toggle_all.press. all_completed folds the rows with
// List/every.
func TodoProgram() *ast.Program {
	b := ast.NewBuilder()
	return b.Program(
		ast.TopBind("new_todo", b.Link("new_todo")),
		ast.TopBind("toggle_all", b.Link("toggle_all")),
		ast.TopBind("todos", b.Hold(
			b.List(), "items",
			b.Then(
				b.Path(b.Var("new_todo"), "submit"),
				b.ListAppend(b.Var("items"), b.Object(
					ast.Field("label", b.Path(b.Var("new_todo"), "submit")),
					ast.Field("completed", b.Hold(
						b.Bool(false), "done",
						b.Then(
							b.Path(b.Var("toggle_all"), "press"),
							b.Call("Bool/not", b.Var("done")),
						),
					)),
				)),
			),
		)),
		ast.TopBind("all_completed", b.Pipe(
			b.ListMap(b.Var("todos"), "todo", b.Path(b.Var("todo"), "completed")),
			"List/every",
		)),
	)
}

// RetainProgram holds a list of numbers, appends on push.value, and on
// prune.press keeps only the values above the threshold the event carries.
func RetainProgram() *ast.Program {
	b := ast.NewBuilder()
	return b.Program(
		ast.TopBind("push", b.Link("push")),
		ast.TopBind("prune", b.Link("prune")),
		ast.TopBind("numbers", b.Hold(
			b.List(), "items",
			b.Latest(
				b.Then(
					b.Path(b.Var("push"), "value"),
					b.ListAppend(b.Var("items"), b.Path(b.Var("push"), "value")),
				),
				b.Then(
					b.Path(b.Var("prune"), "press"),
					b.ListRetain(b.Var("items"), "n",
						b.Call("less_than", b.Path(b.Var("prune"), "press"), b.Var("n")),
					),
				),
			),
		)),
		ast.TopBind("total", b.Pipe(b.Var("numbers"), "Math/sum")),
	)
}
