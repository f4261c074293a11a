package engine

import "rill/engine-go/pkg/runtime"

// BuiltinFunc is the implementation of a named builtin. Argument shape
// mismatches resolve to Skip, never to an error: one malformed call site
// must not halt the rest of the graph.
type BuiltinFunc func(args []runtime.Value) runtime.Value

type builtin struct {
	fn   BuiltinFunc
	pure bool
}

// defaultBuiltins is the fixed dispatch table. Purity here is the builtin's
// own intrinsic purity: arithmetic, boolean logic and non-mutating list
// queries are pure; nothing in this table touches cells.
func defaultBuiltins() map[string]builtin {
	return map[string]builtin{
		"add":         {fn: opAdd, pure: true},
		"subtract":    {fn: opSubtract, pure: true},
		"multiply":    {fn: opMultiply, pure: true},
		"negate":      {fn: opNegate, pure: true},
		"equals":      {fn: opEquals, pure: true},
		"less_than":   {fn: opLessThan, pure: true},
		"Bool/not":    {fn: opBoolNot, pure: true},
		"Bool/and":    {fn: opBoolAnd, pure: true},
		"Bool/or":     {fn: opBoolOr, pure: true},
		"Text/concat": {fn: opTextConcat, pure: true},
		"List/len":    {fn: opListLen, pure: true},
		"List/every":  {fn: opListEvery, pure: true},
		"List/any":    {fn: opListAny, pure: true},
		"Math/sum":    {fn: opMathSum, pure: true},
	}
}

func numericPair(args []runtime.Value) (runtime.Value, runtime.Value, bool) {
	if len(args) < 2 {
		return nil, nil, false
	}
	return args[0], args[1], true
}

func opAdd(args []runtime.Value) runtime.Value {
	a, b, ok := numericPair(args)
	if !ok {
		return runtime.Skip()
	}
	switch av := a.(type) {
	case runtime.IntValue:
		switch bv := b.(type) {
		case runtime.IntValue:
			return runtime.Int(av.Val + bv.Val)
		case runtime.FloatValue:
			return runtime.Float(float64(av.Val) + bv.Val)
		}
	case runtime.FloatValue:
		switch bv := b.(type) {
		case runtime.IntValue:
			return runtime.Float(av.Val + float64(bv.Val))
		case runtime.FloatValue:
			return runtime.Float(av.Val + bv.Val)
		}
	}
	return runtime.Skip()
}

func opSubtract(args []runtime.Value) runtime.Value {
	a, b, ok := numericPair(args)
	if !ok {
		return runtime.Skip()
	}
	switch av := a.(type) {
	case runtime.IntValue:
		switch bv := b.(type) {
		case runtime.IntValue:
			return runtime.Int(av.Val - bv.Val)
		case runtime.FloatValue:
			return runtime.Float(float64(av.Val) - bv.Val)
		}
	case runtime.FloatValue:
		switch bv := b.(type) {
		case runtime.IntValue:
			return runtime.Float(av.Val - float64(bv.Val))
		case runtime.FloatValue:
			return runtime.Float(av.Val - bv.Val)
		}
	}
	return runtime.Skip()
}

func opMultiply(args []runtime.Value) runtime.Value {
	a, b, ok := numericPair(args)
	if !ok {
		return runtime.Skip()
	}
	switch av := a.(type) {
	case runtime.IntValue:
		switch bv := b.(type) {
		case runtime.IntValue:
			return runtime.Int(av.Val * bv.Val)
		case runtime.FloatValue:
			return runtime.Float(float64(av.Val) * bv.Val)
		}
	case runtime.FloatValue:
		switch bv := b.(type) {
		case runtime.IntValue:
			return runtime.Float(av.Val * float64(bv.Val))
		case runtime.FloatValue:
			return runtime.Float(av.Val * bv.Val)
		}
	}
	return runtime.Skip()
}

func opNegate(args []runtime.Value) runtime.Value {
	if len(args) < 1 {
		return runtime.Skip()
	}
	switch v := args[0].(type) {
	case runtime.IntValue:
		return runtime.Int(-v.Val)
	case runtime.FloatValue:
		return runtime.Float(-v.Val)
	default:
		return runtime.Skip()
	}
}

func opEquals(args []runtime.Value) runtime.Value {
	if len(args) < 2 {
		return runtime.Skip()
	}
	return runtime.Bool(runtime.Equal(args[0], args[1]))
}

func opLessThan(args []runtime.Value) runtime.Value {
	a, b, ok := numericPair(args)
	if !ok {
		return runtime.Skip()
	}
	switch av := a.(type) {
	case runtime.IntValue:
		switch bv := b.(type) {
		case runtime.IntValue:
			return runtime.Bool(av.Val < bv.Val)
		case runtime.FloatValue:
			return runtime.Bool(float64(av.Val) < bv.Val)
		}
	case runtime.FloatValue:
		switch bv := b.(type) {
		case runtime.IntValue:
			return runtime.Bool(av.Val < float64(bv.Val))
		case runtime.FloatValue:
			return runtime.Bool(av.Val < bv.Val)
		}
	}
	return runtime.Skip()
}

func opBoolNot(args []runtime.Value) runtime.Value {
	if len(args) < 1 {
		return runtime.Skip()
	}
	if v, ok := args[0].(runtime.BoolValue); ok {
		return runtime.Bool(!v.Val)
	}
	return runtime.Skip()
}

func opBoolAnd(args []runtime.Value) runtime.Value {
	a, b, ok := boolPair(args)
	if !ok {
		return runtime.Skip()
	}
	return runtime.Bool(a && b)
}

func opBoolOr(args []runtime.Value) runtime.Value {
	a, b, ok := boolPair(args)
	if !ok {
		return runtime.Skip()
	}
	return runtime.Bool(a || b)
}

func boolPair(args []runtime.Value) (bool, bool, bool) {
	if len(args) < 2 {
		return false, false, false
	}
	a, aok := args[0].(runtime.BoolValue)
	b, bok := args[1].(runtime.BoolValue)
	if !aok || !bok {
		return false, false, false
	}
	return a.Val, b.Val, true
}

func opTextConcat(args []runtime.Value) runtime.Value {
	if len(args) < 2 {
		return runtime.Skip()
	}
	a, aok := args[0].(runtime.TextValue)
	b, bok := args[1].(runtime.TextValue)
	if !aok || !bok {
		return runtime.Skip()
	}
	return runtime.Text(a.Val + b.Val)
}

func opListLen(args []runtime.Value) runtime.Value {
	if len(args) < 1 {
		return runtime.Skip()
	}
	if list, ok := args[0].(*runtime.ListValue); ok {
		return runtime.Int(int64(len(list.Items)))
	}
	return runtime.Skip()
}

// opListEvery reports whether every item is exactly True.
func opListEvery(args []runtime.Value) runtime.Value {
	if len(args) < 1 {
		return runtime.Skip()
	}
	list, ok := args[0].(*runtime.ListValue)
	if !ok {
		return runtime.Skip()
	}
	for _, item := range list.Items {
		if v, ok := item.(runtime.BoolValue); !ok || !v.Val {
			return runtime.Bool(false)
		}
	}
	return runtime.Bool(true)
}

func opListAny(args []runtime.Value) runtime.Value {
	if len(args) < 1 {
		return runtime.Skip()
	}
	list, ok := args[0].(*runtime.ListValue)
	if !ok {
		return runtime.Skip()
	}
	for _, item := range list.Items {
		if v, ok := item.(runtime.BoolValue); ok && v.Val {
			return runtime.Bool(true)
		}
	}
	return runtime.Bool(false)
}

// opMathSum sums the integer items of a list, skipping non-integers.
func opMathSum(args []runtime.Value) runtime.Value {
	if len(args) < 1 {
		return runtime.Skip()
	}
	list, ok := args[0].(*runtime.ListValue)
	if !ok {
		return runtime.Skip()
	}
	var sum int64
	for _, item := range list.Items {
		if v, ok := item.(runtime.IntValue); ok {
			sum += v.Val
		}
	}
	return runtime.Int(sum)
}
