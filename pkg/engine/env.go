package engine

import "rill/engine-go/pkg/runtime"

// bindEnv provides lexical name bindings for one evaluation walk. A name
// resolves either to a slot (Hold state names and Block bindings, whose
// values live in the cache or a cell) or directly to a value (ListMap items
// and pattern captures, per-context data with no slot of its own).
type bindEnv struct {
	parent *bindEnv
	slots  map[string]Slot
	values map[string]runtime.Value
}

func newBindEnv(parent *bindEnv) *bindEnv {
	return &bindEnv{parent: parent}
}

func (e *bindEnv) bindSlot(name string, slot Slot) {
	if e.slots == nil {
		e.slots = make(map[string]Slot)
	}
	e.slots[name] = slot
}

func (e *bindEnv) bindValue(name string, value runtime.Value) {
	if e.values == nil {
		e.values = make(map[string]runtime.Value)
	}
	e.values[name] = value
}

// resolve walks the scope chain inner-to-outer. Within one level a value
// binding shadows a slot binding of the same name.
func (e *bindEnv) resolve(name string) (runtime.Value, Slot, bool, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.values[name]; ok {
			return v, Slot{}, true, true
		}
		if s, ok := env.slots[name]; ok {
			return nil, s, false, true
		}
	}
	return nil, Slot{}, false, false
}
