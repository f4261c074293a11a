package engine

import (
	"fmt"

	"rill/engine-go/pkg/ast"
	"rill/engine-go/pkg/runtime"
)

// evalResult is what every expression evaluation yields: the value, the
// stamp marking when it was produced, and whether the computation was pure
// (cacheable forever) or tied to this round.
type evalResult struct {
	value runtime.Value
	stamp Stamp
	pure  bool
}

// eval wraps evalInner with the slot cache. A cached entry is reused when it
// is pure or was computed in the current round; either way the slot is
// recorded as a dependency of the caller.
func (s *Session) eval(expr ast.Expr, scope ScopeId, env *bindEnv) (evalResult, error) {
	slot := NewSlot(scope, expr.Id())
	s.noteDep(slot)

	if entry, ok := s.cache.get(slot); ok && entry.validAt(s.clock.Round()) {
		s.metrics.cacheHits.Inc(1)
		return evalResult{value: entry.value, stamp: entry.stamp, pure: entry.pure}, nil
	}
	s.metrics.cacheMisses.Inc(1)

	s.depStack = append(s.depStack, nil)
	res, err := s.evalInner(expr, scope, env)
	deps := s.depStack[len(s.depStack)-1]
	s.depStack = s.depStack[:len(s.depStack)-1]
	if err != nil {
		return evalResult{}, err
	}

	s.cache.put(slot, &cacheEntry{value: res.value, stamp: res.stamp, pure: res.pure, deps: deps})
	return res, nil
}

// noteDep records slot in the dependency set of the evaluation in progress.
func (s *Session) noteDep(slot Slot) {
	if len(s.depStack) == 0 {
		return
	}
	top := s.depStack[len(s.depStack)-1]
	for _, d := range top {
		if d == slot {
			return
		}
	}
	s.depStack[len(s.depStack)-1] = append(top, slot)
}

func (s *Session) evalInner(expr ast.Expr, scope ScopeId, env *bindEnv) (evalResult, error) {
	s.metrics.nodeEvals.Inc(1)
	ts := s.clock.NextStamp()

	switch n := expr.(type) {
	case *ast.Literal:
		return evalResult{value: litValue(n.Value), stamp: ts, pure: true}, nil

	case *ast.Variable:
		return s.evalVariable(n, ts, env)

	case *ast.Path:
		base, err := s.eval(n.Base, scope, env)
		if err != nil {
			return evalResult{}, err
		}
		value := projectField(base.value, n.Field)
		return evalResult{value: value, stamp: base.stamp, pure: base.pure}, nil

	case *ast.Object:
		fields := make([]runtime.ObjectField, 0, len(n.Fields))
		maxTs := ts
		pure := true
		for _, field := range n.Fields {
			res, err := s.eval(field.Value, scope, env)
			if err != nil {
				return evalResult{}, err
			}
			fields = append(fields, runtime.Field(field.Name, res.value))
			maxTs = MaxStamp(maxTs, res.stamp)
			pure = pure && res.pure
		}
		return evalResult{value: runtime.ObjectOf(fields...), stamp: maxTs, pure: pure}, nil

	case *ast.List:
		items := make([]runtime.Value, 0, len(n.Items))
		maxTs := ts
		pure := true
		for _, item := range n.Items {
			res, err := s.eval(item, scope, env)
			if err != nil {
				return evalResult{}, err
			}
			items = append(items, res.value)
			maxTs = MaxStamp(maxTs, res.stamp)
			pure = pure && res.pure
		}
		return evalResult{value: runtime.ListOf(items...), stamp: maxTs, pure: pure}, nil

	case *ast.Call:
		return s.evalCall(n.Name, nil, n.Args, scope, env, ts)

	case *ast.Pipe:
		input, err := s.eval(n.Input, scope, env)
		if err != nil {
			return evalResult{}, err
		}
		return s.evalCall(n.Name, &input, n.Args, scope, env, ts)

	case *ast.Latest:
		result := evalResult{value: runtime.Skip(), stamp: ts, pure: false}
		for _, sub := range n.Exprs {
			res, err := s.eval(sub, scope, env)
			if err != nil {
				return evalResult{}, err
			}
			if !runtime.IsSkip(res.value) {
				result.value = res.value
				result.stamp = res.stamp
			}
		}
		return result, nil

	case *ast.Hold:
		return s.evalHold(n, scope, env, ts)

	case *ast.Then:
		input, err := s.eval(n.Input, scope, env)
		if err != nil {
			return evalResult{}, err
		}
		if runtime.IsSkip(input.value) {
			// gate: body must not run at all
			return evalResult{value: runtime.Skip(), stamp: ts, pure: false}, nil
		}
		body, err := s.eval(n.Body, scope, env)
		if err != nil {
			return evalResult{}, err
		}
		return evalResult{value: body.value, stamp: body.stamp, pure: false}, nil

	case *ast.When:
		input, err := s.eval(n.Input, scope, env)
		if err != nil {
			return evalResult{}, err
		}
		if runtime.IsSkip(input.value) {
			return evalResult{value: runtime.Skip(), stamp: ts, pure: false}, nil
		}
		for _, arm := range n.Arms {
			binds := make(map[string]runtime.Value)
			if !matchPattern(arm.Pattern, input.value, binds) {
				continue
			}
			armEnv := newBindEnv(env)
			for name, val := range binds {
				armEnv.bindValue(name, val)
			}
			body, err := s.eval(arm.Body, scope, armEnv)
			if err != nil {
				return evalResult{}, err
			}
			return evalResult{value: body.value, stamp: body.stamp, pure: false}, nil
		}
		s.metrics.patternMisses.Inc(1)
		return evalResult{value: runtime.Skip(), stamp: ts, pure: false}, nil

	case *ast.While:
		input, err := s.eval(n.Input, scope, env)
		if err != nil {
			return evalResult{}, err
		}
		if runtime.IsSkip(input.value) {
			return evalResult{value: runtime.Skip(), stamp: ts, pure: false}, nil
		}
		binds := make(map[string]runtime.Value)
		if !matchPattern(n.Pattern, input.value, binds) {
			s.metrics.patternMisses.Inc(1)
			return evalResult{value: runtime.Skip(), stamp: ts, pure: false}, nil
		}
		bodyEnv := newBindEnv(env)
		for name, val := range binds {
			bodyEnv.bindValue(name, val)
		}
		body, err := s.eval(n.Body, scope, bodyEnv)
		if err != nil {
			return evalResult{}, err
		}
		return evalResult{value: body.value, stamp: body.stamp, pure: false}, nil

	case *ast.Link:
		slot := NewSlot(scope, n.Id())
		if _, conflict := s.cells.hold(slot); conflict {
			return evalResult{}, fmt.Errorf("slot %s holds both a hold cell and a link cell", slot)
		}
		cell := s.cells.link(slot)
		if pending, ok := cell.peek(); ok {
			return evalResult{value: pending, stamp: s.clock.NextStamp(), pure: false}, nil
		}
		return evalResult{value: runtime.Skip(), stamp: ts, pure: false}, nil

	case *ast.Block:
		blockEnv := newBindEnv(env)
		pure := true
		for _, binding := range n.Bindings {
			res, err := s.eval(binding.Value, scope, blockEnv)
			if err != nil {
				return evalResult{}, err
			}
			blockEnv.bindSlot(binding.Name, NewSlot(scope, binding.Value.Id()))
			pure = pure && res.pure
		}
		output, err := s.eval(n.Output, scope, blockEnv)
		if err != nil {
			return evalResult{}, err
		}
		return evalResult{value: output.value, stamp: output.stamp, pure: pure && output.pure}, nil

	case *ast.ListMap:
		list, err := s.eval(n.List, scope, env)
		if err != nil {
			return evalResult{}, err
		}
		source, ok := list.value.(*runtime.ListValue)
		if !ok {
			return evalResult{value: runtime.Skip(), stamp: ts, pure: false}, nil
		}
		results := make([]runtime.Value, 0, len(source.Items))
		maxTs := MaxStamp(ts, list.stamp)
		for i, item := range source.Items {
			itemScope := scope.Child(uint64(i))
			itemEnv := newBindEnv(env)
			itemEnv.bindValue(n.ItemName, item)
			res, err := s.eval(n.Template, itemScope, itemEnv)
			if err != nil {
				return evalResult{}, err
			}
			results = append(results, res.value)
			maxTs = MaxStamp(maxTs, res.stamp)
		}
		return evalResult{value: runtime.ListOf(results...), stamp: maxTs, pure: false}, nil

	case *ast.ListAppend:
		return s.evalListAppend(n, scope, env, ts)

	case *ast.ListClear:
		return s.evalListClear(n, scope, env, ts)

	case *ast.ListRemove:
		return s.evalListRemove(n, scope, env, ts)

	case *ast.ListRetain:
		return s.evalListRetain(n, scope, env, ts)

	default:
		return evalResult{}, fmt.Errorf("unsupported expression kind: %s", expr.NodeKind())
	}
}

// evalVariable resolves a name through the lexical chain, then the top-level
// bindings. A slot that denotes a Hold cell reads the cell directly; any
// other slot re-evaluates its defining node in that node's own scope,
// inheriting its purity.
func (s *Session) evalVariable(n *ast.Variable, ts Stamp, env *bindEnv) (evalResult, error) {
	if env != nil {
		if value, slot, isValue, found := env.resolve(n.Name); found {
			if isValue {
				return evalResult{value: value, stamp: ts, pure: false}, nil
			}
			return s.evalSlotRef(slot, ts)
		}
	}
	if nodeId, ok := s.topLevel[n.Name]; ok {
		return s.evalSlotRef(RootSlot(nodeId), ts)
	}
	s.metrics.unresolvedVars.Inc(1)
	return evalResult{value: runtime.Skip(), stamp: ts, pure: false}, nil
}

func (s *Session) evalSlotRef(slot Slot, ts Stamp) (evalResult, error) {
	if cell, ok := s.cells.hold(slot); ok {
		s.noteDep(slot)
		return evalResult{value: cell.value, stamp: ts, pure: false}, nil
	}
	node, ok := s.arena.Node(slot.Node)
	if !ok {
		s.metrics.unresolvedVars.Inc(1)
		return evalResult{value: runtime.Skip(), stamp: ts, pure: false}, nil
	}
	return s.eval(node, slot.Scope, newBindEnv(nil))
}

func (s *Session) evalCall(name string, input *evalResult, argExprs []ast.Expr, scope ScopeId, env *bindEnv, ts Stamp) (evalResult, error) {
	args := make([]runtime.Value, 0, len(argExprs)+1)
	maxTs := ts
	pure := true
	if input != nil {
		args = append(args, input.value)
		maxTs = MaxStamp(maxTs, input.stamp)
		pure = pure && input.pure
	}
	for _, argExpr := range argExprs {
		res, err := s.eval(argExpr, scope, env)
		if err != nil {
			return evalResult{}, err
		}
		args = append(args, res.value)
		maxTs = MaxStamp(maxTs, res.stamp)
		pure = pure && res.pure
	}
	b, ok := s.builtins[name]
	if !ok {
		s.metrics.builtinMisses.Inc(1)
		return evalResult{value: runtime.Skip(), stamp: maxTs, pure: false}, nil
	}
	return evalResult{value: b.fn(args), stamp: maxTs, pure: pure && b.pure}, nil
}

func (s *Session) evalHold(n *ast.Hold, scope ScopeId, env *bindEnv, ts Stamp) (evalResult, error) {
	slot := NewSlot(scope, n.Id())
	if _, conflict := s.cells.links[slot]; conflict {
		return evalResult{}, fmt.Errorf("slot %s holds both a link cell and a hold cell", slot)
	}

	cell, ok := s.cells.hold(slot)
	if !ok {
		initial, err := s.eval(n.Initial, scope, env)
		if err != nil {
			return evalResult{}, err
		}
		cell = s.cells.seedHold(slot, initial.value)
	}
	previous := cell.value

	bodyEnv := newBindEnv(env)
	bodyEnv.bindSlot(n.StateName, slot)
	body, err := s.eval(n.Body, scope, bodyEnv)
	if err != nil {
		return evalResult{}, err
	}

	// Skip leaves the cell untouched: the hold keeps reporting the last
	// committed value, so an event-gated body reads as a continuous signal.
	if runtime.IsSkip(body.value) {
		return evalResult{value: previous, stamp: ts, pure: false}, nil
	}
	cell.value = body.value
	return evalResult{value: body.value, stamp: body.stamp, pure: false}, nil
}

// listCellSlot decides which slot owns the bookkeeping cell for a list
// operation. Operating through a name (typically a hold's state) anchors the
// cell at the named slot so append/remove/retain over the same list share
// one cell; a literal operand falls back to the operation's own slot.
func (s *Session) listCellSlot(listExpr ast.Expr, scope ScopeId, env *bindEnv, opNode ast.NodeId) Slot {
	if v, ok := listExpr.(*ast.Variable); ok {
		if env != nil {
			if _, slot, isValue, found := env.resolve(v.Name); found && !isValue {
				return slot
			}
		}
		if nodeId, ok := s.topLevel[v.Name]; ok {
			return RootSlot(nodeId)
		}
	}
	return NewSlot(scope, opNode)
}

// itemScopeFor derives the per-item scope from the owning cell slot and the
// item's stable key, so nested cells stay with the row for its lifetime.
func itemScopeFor(cellSlot Slot, key ItemKey) ScopeId {
	return cellSlot.Scope.Child(uint64(cellSlot.Node)).Child(uint64(key))
}

func (s *Session) evalListAppend(n *ast.ListAppend, scope ScopeId, env *bindEnv, ts Stamp) (evalResult, error) {
	list, err := s.eval(n.List, scope, env)
	if err != nil {
		return evalResult{}, err
	}
	source, ok := list.value.(*runtime.ListValue)
	if !ok {
		return evalResult{value: runtime.Skip(), stamp: ts, pure: false}, nil
	}

	cellSlot := s.listCellSlot(n.List, scope, env, n.Id())
	cell := s.cells.list(cellSlot)
	cell.syncTo(len(source.Items))
	key := cell.append()
	cell.template = n.Item.Id()
	cell.hasTemplate = true

	itemScope := itemScopeFor(cellSlot, key)
	item, err := s.eval(n.Item, itemScope, env)
	if err != nil {
		return evalResult{}, err
	}
	if runtime.IsSkip(item.value) {
		// nothing was appended, so the minted key must not survive;
		// a stale trailing key would shift every later index lookup
		if dropped, ok := cell.removeAt(cell.len() - 1); ok {
			s.dropItemScope(cellSlot, dropped)
		}
		return evalResult{value: list.value, stamp: ts, pure: false}, nil
	}
	items := append(append([]runtime.Value(nil), source.Items...), item.value)
	return evalResult{value: runtime.ListOf(items...), stamp: MaxStamp(ts, item.stamp), pure: false}, nil
}

func (s *Session) evalListClear(n *ast.ListClear, scope ScopeId, env *bindEnv, ts Stamp) (evalResult, error) {
	list, err := s.eval(n.List, scope, env)
	if err != nil {
		return evalResult{}, err
	}
	if _, ok := list.value.(*runtime.ListValue); !ok {
		return evalResult{value: runtime.Skip(), stamp: ts, pure: false}, nil
	}
	cellSlot := s.listCellSlot(n.List, scope, env, n.Id())
	cell := s.cells.list(cellSlot)
	for _, key := range cell.clear() {
		s.dropItemScope(cellSlot, key)
	}
	return evalResult{value: runtime.ListOf(), stamp: ts, pure: false}, nil
}

func (s *Session) evalListRemove(n *ast.ListRemove, scope ScopeId, env *bindEnv, ts Stamp) (evalResult, error) {
	list, err := s.eval(n.List, scope, env)
	if err != nil {
		return evalResult{}, err
	}
	index, err := s.eval(n.Index, scope, env)
	if err != nil {
		return evalResult{}, err
	}
	source, ok := list.value.(*runtime.ListValue)
	if !ok {
		return evalResult{value: runtime.Skip(), stamp: ts, pure: false}, nil
	}
	idxVal, ok := index.value.(runtime.IntValue)
	if !ok {
		return evalResult{value: list.value, stamp: ts, pure: false}, nil
	}
	idx := int(idxVal.Val)
	if idx < 0 || idx >= len(source.Items) {
		return evalResult{value: list.value, stamp: ts, pure: false}, nil
	}

	cellSlot := s.listCellSlot(n.List, scope, env, n.Id())
	cell := s.cells.list(cellSlot)
	cell.syncTo(len(source.Items))
	if key, removed := cell.removeAt(idx); removed {
		s.dropItemScope(cellSlot, key)
	}

	items := make([]runtime.Value, 0, len(source.Items)-1)
	items = append(items, source.Items[:idx]...)
	items = append(items, source.Items[idx+1:]...)
	return evalResult{value: runtime.ListOf(items...), stamp: ts, pure: false}, nil
}

func (s *Session) evalListRetain(n *ast.ListRetain, scope ScopeId, env *bindEnv, ts Stamp) (evalResult, error) {
	list, err := s.eval(n.List, scope, env)
	if err != nil {
		return evalResult{}, err
	}
	source, ok := list.value.(*runtime.ListValue)
	if !ok {
		return evalResult{value: runtime.Skip(), stamp: ts, pure: false}, nil
	}

	cellSlot := s.listCellSlot(n.List, scope, env, n.Id())
	cell := s.cells.list(cellSlot)
	cell.syncTo(len(source.Items))
	keys := append([]ItemKey(nil), cell.keys...)

	keep := make([]bool, len(source.Items))
	for i, item := range source.Items {
		itemScope := itemScopeFor(cellSlot, keys[i])
		predEnv := newBindEnv(env)
		predEnv.bindValue(n.ItemName, item)
		pred, err := s.eval(n.Predicate, itemScope, predEnv)
		if err != nil {
			return evalResult{}, err
		}
		if v, ok := pred.value.(runtime.BoolValue); ok && v.Val {
			keep[i] = true
		}
	}

	for _, key := range cell.retain(func(i int) bool { return keep[i] }) {
		s.dropItemScope(cellSlot, key)
	}

	var survivors []runtime.Value
	for i, item := range source.Items {
		if keep[i] {
			survivors = append(survivors, item)
		}
	}
	return evalResult{value: runtime.ListOf(survivors...), stamp: ts, pure: false}, nil
}

// dropItemScope discards all persistent state and cache entries under a
// removed item's scope.
func (s *Session) dropItemScope(cellSlot Slot, key ItemKey) {
	scope := itemScopeFor(cellSlot, key)
	s.cells.dropScope(scope)
	s.cache.dropScope(scope)
}

func projectField(base runtime.Value, field string) runtime.Value {
	obj, ok := base.(*runtime.ObjectValue)
	if !ok {
		return runtime.Skip()
	}
	if value, ok := obj.Get(field); ok {
		return value
	}
	return runtime.Skip()
}
