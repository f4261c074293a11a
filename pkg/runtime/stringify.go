package runtime

import (
	"fmt"
	"strconv"
	"strings"
)

// ToString renders a value deterministically: object fields in declared
// order, text quoted, floats in shortest round-trip form.
func ToString(v Value) string {
	switch val := v.(type) {
	case nil:
		return "SKIP"
	case SkipValue:
		return "SKIP"
	case UnitValue:
		return "UNIT"
	case BoolValue:
		if val.Val {
			return "True"
		}
		return "False"
	case IntValue:
		return strconv.FormatInt(val.Val, 10)
	case FloatValue:
		return strconv.FormatFloat(val.Val, 'g', -1, 64)
	case TextValue:
		return strconv.Quote(val.Val)
	case *ListValue:
		parts := make([]string, 0, len(val.Items))
		for _, item := range val.Items {
			parts = append(parts, ToString(item))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *ObjectValue:
		parts := make([]string, 0, len(val.Fields))
		for _, f := range val.Fields {
			parts = append(parts, f.Name+": "+ToString(f.Value))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("unknown(%v)", v)
	}
}
