package runtime

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrSkipNotEncodable is returned when a Skip value reaches the codec. Skip
// means absence; a slot holding Skip is simply not persisted.
var ErrSkipNotEncodable = errors.New("skip value is not encodable")

type wireValue struct {
	Kind   string      `json:"kind"`
	Bool   *bool       `json:"bool,omitempty"`
	Int    *int64      `json:"int,omitempty"`
	Float  *float64    `json:"float,omitempty"`
	Text   *string     `json:"text,omitempty"`
	Items  []wireValue `json:"items,omitempty"`
	Fields []wireField `json:"fields,omitempty"`
}

type wireField struct {
	Name  string    `json:"name"`
	Value wireValue `json:"value"`
}

// Encode serializes a value to its JSON wire form.
func Encode(v Value) ([]byte, error) {
	wire, err := toWire(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wire)
}

// Decode deserializes a value from its JSON wire form.
func Decode(data []byte) (Value, error) {
	var wire wireValue
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	return fromWire(wire)
}

func toWire(v Value) (wireValue, error) {
	switch val := v.(type) {
	case UnitValue:
		return wireValue{Kind: "unit"}, nil
	case BoolValue:
		return wireValue{Kind: "bool", Bool: &val.Val}, nil
	case IntValue:
		return wireValue{Kind: "int", Int: &val.Val}, nil
	case FloatValue:
		return wireValue{Kind: "float", Float: &val.Val}, nil
	case TextValue:
		return wireValue{Kind: "text", Text: &val.Val}, nil
	case *ListValue:
		items := make([]wireValue, 0, len(val.Items))
		for _, item := range val.Items {
			w, err := toWire(item)
			if err != nil {
				return wireValue{}, err
			}
			items = append(items, w)
		}
		return wireValue{Kind: "list", Items: items}, nil
	case *ObjectValue:
		fields := make([]wireField, 0, len(val.Fields))
		for _, f := range val.Fields {
			w, err := toWire(f.Value)
			if err != nil {
				return wireValue{}, err
			}
			fields = append(fields, wireField{Name: f.Name, Value: w})
		}
		return wireValue{Kind: "object", Fields: fields}, nil
	case SkipValue, nil:
		return wireValue{}, ErrSkipNotEncodable
	default:
		return wireValue{}, fmt.Errorf("unsupported value kind %s", v.Kind())
	}
}

func fromWire(w wireValue) (Value, error) {
	switch w.Kind {
	case "unit":
		return Unit(), nil
	case "bool":
		if w.Bool == nil {
			return nil, errors.New("bool wire value missing payload")
		}
		return Bool(*w.Bool), nil
	case "int":
		if w.Int == nil {
			return nil, errors.New("int wire value missing payload")
		}
		return Int(*w.Int), nil
	case "float":
		if w.Float == nil {
			return nil, errors.New("float wire value missing payload")
		}
		return Float(*w.Float), nil
	case "text":
		if w.Text == nil {
			return nil, errors.New("text wire value missing payload")
		}
		return Text(*w.Text), nil
	case "list":
		items := make([]Value, 0, len(w.Items))
		for _, item := range w.Items {
			v, err := fromWire(item)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return &ListValue{Items: items}, nil
	case "object":
		fields := make([]ObjectField, 0, len(w.Fields))
		for _, f := range w.Fields {
			v, err := fromWire(f.Value)
			if err != nil {
				return nil, err
			}
			fields = append(fields, ObjectField{Name: f.Name, Value: v})
		}
		return &ObjectValue{Fields: fields}, nil
	default:
		return nil, fmt.Errorf("unknown wire kind %q", w.Kind)
	}
}
