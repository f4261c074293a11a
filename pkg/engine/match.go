package engine

import (
	"rill/engine-go/pkg/ast"
	"rill/engine-go/pkg/runtime"
)

// matchPattern reports whether value matches pattern, collecting Bind
// captures into binds. Matching is structural: an object pattern checks only
// the fields it names and ignores the rest; list patterns match element-wise
// and require equal length. A failed match binds nothing the caller should
// rely on.
func matchPattern(pattern ast.Pattern, value runtime.Value, binds map[string]runtime.Value) bool {
	switch p := pattern.(type) {
	case ast.WildcardPattern:
		return true
	case ast.BindPattern:
		binds[p.Name] = value
		return true
	case ast.LiteralPattern:
		return runtime.Equal(litValue(p.Value), value)
	case ast.ObjectPattern:
		obj, ok := value.(*runtime.ObjectValue)
		if !ok {
			return false
		}
		for _, field := range p.Fields {
			fieldVal, ok := obj.Get(field.Name)
			if !ok || !matchPattern(field.Pattern, fieldVal, binds) {
				return false
			}
		}
		return true
	case ast.ListPattern:
		list, ok := value.(*runtime.ListValue)
		if !ok || len(list.Items) != len(p.Elements) {
			return false
		}
		for i, elem := range p.Elements {
			if !matchPattern(elem, list.Items[i], binds) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// litValue converts an AST literal to its runtime value.
func litValue(lit ast.Lit) runtime.Value {
	switch l := lit.(type) {
	case ast.IntLit:
		return runtime.Int(l.Value)
	case ast.FloatLit:
		return runtime.Float(l.Value)
	case ast.TextLit:
		return runtime.Text(l.Value)
	case ast.BoolLit:
		return runtime.Bool(l.Value)
	case ast.UnitLit:
		return runtime.Unit()
	default:
		return runtime.Skip()
	}
}
