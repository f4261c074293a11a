package runtime

import "fmt"

// Kind identifies the runtime value category.
type Kind int

const (
	KindSkip Kind = iota
	KindUnit
	KindBool
	KindInt
	KindFloat
	KindText
	KindList
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindSkip:
		return "skip"
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
//
// Skip is a first-class member of the set: it means "no value produced this
// round" and is threaded through every construct explicitly, never as nil.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type SkipValue struct{}

func (SkipValue) Kind() Kind { return KindSkip }

type UnitValue struct{}

func (UnitValue) Kind() Kind { return KindUnit }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type IntValue struct {
	Val int64
}

func (v IntValue) Kind() Kind { return KindInt }

type FloatValue struct {
	Val float64
}

func (v FloatValue) Kind() Kind { return KindFloat }

type TextValue struct {
	Val string
}

func (v TextValue) Kind() Kind { return KindText }

//-----------------------------------------------------------------------------
// Aggregates
//-----------------------------------------------------------------------------

type ListValue struct {
	Items []Value
}

func (v *ListValue) Kind() Kind { return KindList }

type ObjectField struct {
	Name  string
	Value Value
}

// ObjectValue keeps its fields in declaration order; Get looks a field up by
// name. Field order is presentation only and does not affect equality.
type ObjectValue struct {
	Fields []ObjectField
}

func (v *ObjectValue) Kind() Kind { return KindObject }

func (v *ObjectValue) Get(name string) (Value, bool) {
	for _, f := range v.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

//-----------------------------------------------------------------------------
// Constructors
//-----------------------------------------------------------------------------

func Skip() Value { return SkipValue{} }

func Unit() Value { return UnitValue{} }

func Bool(v bool) Value { return BoolValue{Val: v} }

func Int(v int64) Value { return IntValue{Val: v} }

func Float(v float64) Value { return FloatValue{Val: v} }

func Text(v string) Value { return TextValue{Val: v} }

func ListOf(items ...Value) Value {
	return &ListValue{Items: items}
}

func ObjectOf(fields ...ObjectField) Value {
	return &ObjectValue{Fields: fields}
}

func Field(name string, value Value) ObjectField {
	return ObjectField{Name: name, Value: value}
}

// IsSkip reports whether the value is the Skip sentinel.
func IsSkip(v Value) bool {
	if v == nil {
		return true
	}
	return v.Kind() == KindSkip
}

//-----------------------------------------------------------------------------
// Equality
//-----------------------------------------------------------------------------

// Equal is deep structural value equality. Objects compare as field sets, so
// two objects with the same fields in different order are equal.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case SkipValue, UnitValue:
		return true
	case BoolValue:
		return av.Val == b.(BoolValue).Val
	case IntValue:
		return av.Val == b.(IntValue).Val
	case FloatValue:
		return av.Val == b.(FloatValue).Val
	case TextValue:
		return av.Val == b.(TextValue).Val
	case *ListValue:
		bv := b.(*ListValue)
		if len(av.Items) != len(bv.Items) {
			return false
		}
		for i := range av.Items {
			if !Equal(av.Items[i], bv.Items[i]) {
				return false
			}
		}
		return true
	case *ObjectValue:
		bv := b.(*ObjectValue)
		if len(av.Fields) != len(bv.Fields) {
			return false
		}
		for _, f := range av.Fields {
			other, ok := bv.Get(f.Name)
			if !ok || !Equal(f.Value, other) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
