package engine

import (
	"rill/engine-go/pkg/ast"
	"rill/engine-go/pkg/runtime"
)

// holdCell is the persistent accumulator backing a Hold expression. Created
// lazily on first evaluation, it lives until the session is reset.
type holdCell struct {
	value runtime.Value
}

// linkCell carries the value injected by the host for the current round, or
// nothing (read as Skip).
type linkCell struct {
	pending    runtime.Value
	hasPending bool
}

func (c *linkCell) inject(v runtime.Value) {
	c.pending = v
	c.hasPending = true
}

// peek returns the pending event without consuming it; multiple readers may
// observe the same event within one round.
func (c *linkCell) peek() (runtime.Value, bool) {
	if !c.hasPending {
		return nil, false
	}
	return c.pending, true
}

func (c *linkCell) clearEvent() {
	c.pending = nil
	c.hasPending = false
}

// ItemKey is the stable, never-reused identity of a list item. Child scopes
// for per-item state derive from it, so a row keeps its persistent cells no
// matter how its index shifts.
type ItemKey uint64

// listCell tracks per-item keys parallel to a materialized list value.
type listCell struct {
	keys    []ItemKey
	nextKey uint64
	// item template node, recorded on append so reads can refresh
	// row state committed in earlier rounds
	template    ast.NodeId
	hasTemplate bool
}

func newListCell() *listCell {
	return &listCell{}
}

// append mints a fresh key and places it at the end.
func (c *listCell) append() ItemKey {
	key := ItemKey(c.nextKey)
	c.nextKey++
	c.keys = append(c.keys, key)
	return key
}

// syncTo grows the key list until it covers n items. Keys are only ever
// allocated, never renumbered, so existing items keep their identity.
func (c *listCell) syncTo(n int) {
	for len(c.keys) < n {
		c.append()
	}
}

// removeAt drops the key at index without renumbering the others.
func (c *listCell) removeAt(index int) (ItemKey, bool) {
	if index < 0 || index >= len(c.keys) {
		return 0, false
	}
	key := c.keys[index]
	c.keys = append(c.keys[:index], c.keys[index+1:]...)
	return key, true
}

func (c *listCell) clear() []ItemKey {
	dropped := c.keys
	c.keys = nil
	return dropped
}

// retain keeps only the indices for which keep returns true, preserving the
// relative order of survivors, and returns the dropped keys.
func (c *listCell) retain(keep func(index int) bool) []ItemKey {
	var kept []ItemKey
	var dropped []ItemKey
	for i, key := range c.keys {
		if keep(i) {
			kept = append(kept, key)
		} else {
			dropped = append(dropped, key)
		}
	}
	c.keys = kept
	return dropped
}

func (c *listCell) len() int {
	return len(c.keys)
}

// cellStore bundles the three cell maps.
type cellStore struct {
	holds map[Slot]*holdCell
	links map[Slot]*linkCell
	lists map[Slot]*listCell
}

func newCellStore() *cellStore {
	return &cellStore{
		holds: make(map[Slot]*holdCell),
		links: make(map[Slot]*linkCell),
		lists: make(map[Slot]*listCell),
	}
}

func (s *cellStore) hold(slot Slot) (*holdCell, bool) {
	cell, ok := s.holds[slot]
	return cell, ok
}

// seedHold creates the cell on first reference.
func (s *cellStore) seedHold(slot Slot, value runtime.Value) *holdCell {
	cell := &holdCell{value: value}
	s.holds[slot] = cell
	return cell
}

func (s *cellStore) link(slot Slot) *linkCell {
	cell, ok := s.links[slot]
	if !ok {
		cell = &linkCell{}
		s.links[slot] = cell
	}
	return cell
}

func (s *cellStore) list(slot Slot) *listCell {
	cell, ok := s.lists[slot]
	if !ok {
		cell = newListCell()
		s.lists[slot] = cell
	}
	return cell
}

func (s *cellStore) clearLinkEvents() {
	for _, cell := range s.links {
		cell.clearEvent()
	}
}

// dropScope removes every cell addressed under scope (inclusive).
func (s *cellStore) dropScope(scope ScopeId) {
	for slot := range s.holds {
		if scope.Contains(slot.Scope) {
			delete(s.holds, slot)
		}
	}
	for slot := range s.links {
		if scope.Contains(slot.Scope) {
			delete(s.links, slot)
		}
	}
	for slot := range s.lists {
		if scope.Contains(slot.Scope) {
			delete(s.lists, slot)
		}
	}
}

func (s *cellStore) reset() {
	s.holds = make(map[Slot]*holdCell)
	s.links = make(map[Slot]*linkCell)
	s.lists = make(map[Slot]*listCell)
}

// snapshot copies the store so a failed round can be rolled back. Values are
// immutable, so cells are copied shallowly.
func (s *cellStore) snapshot() *cellStore {
	copied := newCellStore()
	for slot, cell := range s.holds {
		copied.holds[slot] = &holdCell{value: cell.value}
	}
	for slot, cell := range s.links {
		copied.links[slot] = &linkCell{pending: cell.pending, hasPending: cell.hasPending}
	}
	for slot, cell := range s.lists {
		copied.lists[slot] = &listCell{
			keys:        append([]ItemKey(nil), cell.keys...),
			nextKey:     cell.nextKey,
			template:    cell.template,
			hasTemplate: cell.hasTemplate,
		}
	}
	return copied
}

// restore replaces the store's contents with a snapshot taken earlier.
func (s *cellStore) restore(snap *cellStore) {
	s.holds = snap.holds
	s.links = snap.links
	s.lists = snap.lists
}
