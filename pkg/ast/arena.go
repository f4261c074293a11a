package ast

// Arena is a NodeId-indexed lookup table over every node reachable from a
// program's top-level bindings. The tree is stored once; evaluation contexts
// address into it by id instead of cloning sub-trees.
type Arena struct {
	nodes map[NodeId]Expr
}

// NewArena walks the program once and indexes every node.
func NewArena(program *Program) *Arena {
	a := &Arena{nodes: make(map[NodeId]Expr)}
	for _, binding := range program.Bindings {
		a.index(binding.Expr)
	}
	return a
}

// Node returns the expression with the given id.
func (a *Arena) Node(id NodeId) (Expr, bool) {
	expr, ok := a.nodes[id]
	return expr, ok
}

// Len reports the number of indexed nodes.
func (a *Arena) Len() int {
	return len(a.nodes)
}

// Links returns every Link node in the arena, in unspecified order.
func (a *Arena) Links() []*Link {
	var links []*Link
	for _, expr := range a.nodes {
		if link, ok := expr.(*Link); ok {
			links = append(links, link)
		}
	}
	return links
}

func (a *Arena) index(expr Expr) {
	if expr == nil {
		return
	}
	a.nodes[expr.Id()] = expr
	switch n := expr.(type) {
	case *Literal, *Variable, *Link:
		// leaves
	case *Path:
		a.index(n.Base)
	case *Object:
		for _, f := range n.Fields {
			a.index(f.Value)
		}
	case *List:
		for _, item := range n.Items {
			a.index(item)
		}
	case *Call:
		for _, arg := range n.Args {
			a.index(arg)
		}
	case *Pipe:
		a.index(n.Input)
		for _, arg := range n.Args {
			a.index(arg)
		}
	case *Latest:
		for _, sub := range n.Exprs {
			a.index(sub)
		}
	case *Hold:
		a.index(n.Initial)
		a.index(n.Body)
	case *Then:
		a.index(n.Input)
		a.index(n.Body)
	case *When:
		a.index(n.Input)
		for _, arm := range n.Arms {
			a.index(arm.Body)
		}
	case *While:
		a.index(n.Input)
		a.index(n.Body)
	case *Block:
		for _, b := range n.Bindings {
			a.index(b.Value)
		}
		a.index(n.Output)
	case *ListMap:
		a.index(n.List)
		a.index(n.Template)
	case *ListAppend:
		a.index(n.List)
		a.index(n.Item)
	case *ListClear:
		a.index(n.List)
	case *ListRemove:
		a.index(n.List)
		a.index(n.Index)
	case *ListRetain:
		a.index(n.List)
		a.index(n.Predicate)
	}
}
