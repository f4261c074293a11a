package engine

import (
	"fmt"

	"rill/engine-go/pkg/ast"
)

// Slot addresses "this node evaluated in this dynamic context". It is the
// unit of caching and of state-cell identity: the same slot denotes the same
// logical evaluation instance across rounds.
type Slot struct {
	Scope ScopeId
	Node  ast.NodeId
}

func NewSlot(scope ScopeId, node ast.NodeId) Slot {
	return Slot{Scope: scope, Node: node}
}

// RootSlot addresses a node in the root scope.
func RootSlot(node ast.NodeId) Slot {
	return Slot{Scope: RootScope(), Node: node}
}

func (s Slot) String() string {
	return fmt.Sprintf("%s#%d", s.Scope, s.Node)
}
