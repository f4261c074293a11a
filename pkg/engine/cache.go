package engine

import "rill/engine-go/pkg/runtime"

// cacheEntry memoizes one slot's computation.
//
// Validity is two-tier: a pure entry is valid at any later round without
// re-checking, because nothing that could change its value can happen
// without being visible through some other, necessarily impure, slot. An
// impure entry is valid only within the round that computed it; it exists
// to deduplicate shared sub-expressions inside one round, never across
// rounds.
type cacheEntry struct {
	value runtime.Value
	stamp Stamp
	pure  bool
	deps  []Slot
}

func (e *cacheEntry) validAt(round uint64) bool {
	return e.pure || e.stamp.Round == round
}

type cache struct {
	entries map[Slot]*cacheEntry
}

func newCache() *cache {
	return &cache{entries: make(map[Slot]*cacheEntry)}
}

func (c *cache) get(slot Slot) (*cacheEntry, bool) {
	e, ok := c.entries[slot]
	return e, ok
}

func (c *cache) put(slot Slot, entry *cacheEntry) {
	c.entries[slot] = entry
}

func (c *cache) delete(slot Slot) {
	delete(c.entries, slot)
}

func (c *cache) clear() {
	c.entries = make(map[Slot]*cacheEntry)
}

// dropScope evicts every entry whose scope is the given scope or one of its
// descendants. Used when a list row is removed.
func (c *cache) dropScope(scope ScopeId) {
	for slot := range c.entries {
		if scope.Contains(slot.Scope) {
			delete(c.entries, slot)
		}
	}
}

func (c *cache) len() int {
	return len(c.entries)
}
