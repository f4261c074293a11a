package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/uber-go/tally/v4"

	"rill/engine-go/pkg/ast"
	"rill/engine-go/pkg/runtime"
)

// Session owns everything one evaluation instance needs: the program, the
// slot cache, the persistent cells, the round clock, and the builtin table.
// Sessions are not safe for concurrent use.
type Session struct {
	id       string
	program  *ast.Program
	arena    *ast.Arena
	topLevel map[string]ast.NodeId

	cache    *cache
	cells    *cellStore
	clock    Clock
	builtins map[string]builtin
	metrics  *sessionMetrics

	depStack [][]Slot
	pending  []pendingEvent
}

type pendingEvent struct {
	slot    Slot
	payload runtime.Value
}

// Option configures a Session at construction time.
type Option func(*Session)

// WithMetricsScope reports evaluation counters into the given tally scope.
func WithMetricsScope(scope tally.Scope) Option {
	return func(s *Session) { s.metrics = newSessionMetrics(scope) }
}

// WithSessionId overrides the generated session id. Useful when resuming a
// persisted session.
func WithSessionId(id string) Option {
	return func(s *Session) { s.id = id }
}

// NewSession builds a session for the given program. Nothing is evaluated
// until the first EvaluateRound.
func NewSession(program *ast.Program, opts ...Option) *Session {
	topLevel := make(map[string]ast.NodeId, len(program.Bindings))
	for _, b := range program.Bindings {
		topLevel[b.Name] = b.Expr.Id()
	}
	s := &Session{
		id:       uuid.NewString(),
		program:  program,
		arena:    ast.NewArena(program),
		topLevel: topLevel,
		cache:    newCache(),
		cells:    newCellStore(),
		builtins: defaultBuiltins(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = newSessionMetrics(nil)
	}
	return s
}

// Id returns the session identifier.
func (s *Session) Id() string { return s.id }

// Round returns the number of completed rounds.
func (s *Session) Round() uint64 { return s.clock.Round() }

// RegisterBuiltin installs or replaces a builtin function. Pure builtins may
// have their results cached across rounds; anything reading outside its
// arguments must register as impure.
func (s *Session) RegisterBuiltin(name string, pure bool, fn BuiltinFunc) {
	s.builtins[name] = builtin{fn: fn, pure: pure}
}

// Inject queues an event for the next round. The first path segment names a
// link: either a top-level binding whose expression is a link, or any link
// alias reachable at the root scope. The remaining segments wrap the payload
// in nested single-field objects, so "button.click" delivers {click: payload}
// to the button link.
func (s *Session) Inject(path string, payload runtime.Value) error {
	segments := strings.Split(path, ".")
	if len(segments) == 0 || segments[0] == "" {
		return fmt.Errorf("empty injection path")
	}
	slot, ok := s.linkSlotFor(segments[0])
	if !ok {
		return fmt.Errorf("no link named %q", segments[0])
	}
	wrapped := payload
	for i := len(segments) - 1; i >= 1; i-- {
		wrapped = runtime.ObjectOf(runtime.Field(segments[i], wrapped))
	}
	s.pending = append(s.pending, pendingEvent{slot: slot, payload: wrapped})
	return nil
}

// InjectAt queues an event at an explicit slot, bypassing path resolution.
func (s *Session) InjectAt(slot Slot, payload runtime.Value) {
	s.pending = append(s.pending, pendingEvent{slot: slot, payload: payload})
}

func (s *Session) linkSlotFor(name string) (Slot, bool) {
	if nodeId, ok := s.topLevel[name]; ok {
		if node, ok := s.arena.Node(nodeId); ok {
			if _, isLink := node.(*ast.Link); isLink {
				return RootSlot(nodeId), true
			}
		}
	}
	for _, link := range s.arena.Links() {
		if link.Alias == name {
			return RootSlot(link.Id()), true
		}
	}
	return Slot{}, false
}

// EvaluateRound applies queued events and evaluates every top-level binding
// in program order. On a fatal error all cell state is rolled back to the
// state before the round, so a failed round is never partially visible.
func (s *Session) EvaluateRound() error {
	snapshot := s.cells.snapshot()
	s.clock.BeginRound()
	s.metrics.rounds.Inc(1)
	s.cells.clearLinkEvents()

	linksFired := false
	events := s.pending
	s.pending = nil
	for _, ev := range events {
		if _, isHold := s.cells.hold(ev.slot); isHold {
			return s.abortRound(snapshot, fmt.Errorf("event injected at hold slot %s", ev.slot))
		}
		s.cells.link(ev.slot).inject(ev.payload)
		linksFired = true
	}

	for _, binding := range s.program.Bindings {
		if _, err := s.eval(binding.Expr, RootScope(), newBindEnv(nil)); err != nil {
			return s.abortRound(snapshot, err)
		}
	}

	if linksFired {
		if err := s.reevaluateNestedHolds(); err != nil {
			return s.abortRound(snapshot, err)
		}
	}
	return nil
}

func (s *Session) abortRound(snapshot *cellStore, err error) error {
	s.cells.restore(snapshot)
	s.metrics.fatalAborts.Inc(1)
	return err
}

// reevaluateNestedHolds gives holds living inside list item scopes a chance
// to react to this round's events. Their enclosing rows were committed in an
// earlier round, so the top-level walk alone never revisits them.
func (s *Session) reevaluateNestedHolds() error {
	var slots []Slot
	for slot := range s.cells.holds {
		if !slot.Scope.IsRoot() {
			slots = append(slots, slot)
		}
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Scope.path != slots[j].Scope.path {
			return slots[i].Scope.path < slots[j].Scope.path
		}
		return slots[i].Node < slots[j].Node
	})
	for _, slot := range slots {
		node, ok := s.arena.Node(slot.Node)
		if !ok {
			continue
		}
		if _, isHold := node.(*ast.Hold); !isHold {
			continue
		}
		s.cache.delete(slot)
		if _, err := s.eval(node, slot.Scope, newBindEnv(nil)); err != nil {
			return err
		}
	}
	// Patch committed rows so list-valued holds expose the nested holds'
	// new values to the next round's readers.
	for slot, cell := range s.cells.holds {
		if slot.Scope.IsRoot() {
			cell.value = s.refreshRows(slot, cell.value)
		}
	}
	return nil
}

// Read navigates from a top-level binding through object fields and list
// indices without evaluating anything. Segments look like "todos", "count",
// or "todos.[0].completed". Unresolvable paths read as Skip.
func (s *Session) Read(path string) runtime.Value {
	segments := strings.Split(path, ".")
	if len(segments) == 0 || segments[0] == "" {
		return runtime.Skip()
	}
	nodeId, ok := s.topLevel[segments[0]]
	if !ok {
		return runtime.Skip()
	}
	value := s.slotValue(RootSlot(nodeId))
	for _, segment := range segments[1:] {
		value = navigate(value, segment)
	}
	return value
}

// slotValue reads the last value a slot produced. Hold cells read directly
// and get their committed rows refreshed against any nested hold cells that
// changed after the rows were built.
func (s *Session) slotValue(slot Slot) runtime.Value {
	if cell, ok := s.cells.hold(slot); ok {
		return s.refreshRows(slot, cell.value)
	}
	if entry, ok := s.cache.get(slot); ok {
		return entry.value
	}
	return runtime.Skip()
}

// refreshRows rebuilds hold-backed fields inside committed list rows. A row
// object is materialized at append time; nested holds inside it keep living
// in the row's scope and may move on in later rounds.
func (s *Session) refreshRows(slot Slot, value runtime.Value) runtime.Value {
	list, ok := value.(*runtime.ListValue)
	if !ok {
		return value
	}
	cell, ok := s.cells.lists[slot]
	if !ok || !cell.hasTemplate {
		return value
	}
	templateNode, ok := s.arena.Node(cell.template)
	if !ok {
		return value
	}
	template, ok := templateNode.(*ast.Object)
	if !ok {
		return value
	}

	rows := make([]runtime.Value, len(list.Items))
	copy(rows, list.Items)
	for i, row := range rows {
		if i >= len(cell.keys) {
			break
		}
		obj, ok := row.(*runtime.ObjectValue)
		if !ok {
			continue
		}
		itemScope := itemScopeFor(slot, cell.keys[i])
		refreshed := refreshRowObject(obj, template, itemScope, s.cells)
		rows[i] = refreshed
	}
	return runtime.ListOf(rows...)
}

func refreshRowObject(row *runtime.ObjectValue, template *ast.Object, itemScope ScopeId, cells *cellStore) runtime.Value {
	fields := make([]runtime.ObjectField, 0, len(row.Fields))
	for _, f := range row.Fields {
		fields = append(fields, f)
	}
	for _, tf := range template.Fields {
		h, isHold := tf.Value.(*ast.Hold)
		if !isHold {
			continue
		}
		cell, ok := cells.hold(NewSlot(itemScope, h.Id()))
		if !ok {
			continue
		}
		for i := range fields {
			if fields[i].Name == tf.Name {
				fields[i].Value = cell.value
			}
		}
	}
	return runtime.ObjectOf(fields...)
}

func navigate(value runtime.Value, segment string) runtime.Value {
	if strings.HasPrefix(segment, "[") && strings.HasSuffix(segment, "]") {
		idx, err := strconv.Atoi(segment[1 : len(segment)-1])
		if err != nil {
			return runtime.Skip()
		}
		list, ok := value.(*runtime.ListValue)
		if !ok || idx < 0 || idx >= len(list.Items) {
			return runtime.Skip()
		}
		return list.Items[idx]
	}
	return projectField(value, segment)
}

// Reset discards all cells, cached values, queued events, and the round
// counter, returning the session to its pre-first-round state.
func (s *Session) Reset() {
	s.cells.reset()
	s.cache.clear()
	s.clock.Reset()
	s.pending = nil
	s.depStack = nil
}

// HoldSnapshot captures one hold cell's address and committed value.
type HoldSnapshot struct {
	Scope ScopeId
	Node  ast.NodeId
	Value runtime.Value
}

// SnapshotHolds returns every hold cell's state in deterministic order.
func (s *Session) SnapshotHolds() []HoldSnapshot {
	snaps := make([]HoldSnapshot, 0, len(s.cells.holds))
	for slot, cell := range s.cells.holds {
		snaps = append(snaps, HoldSnapshot{Scope: slot.Scope, Node: slot.Node, Value: cell.value})
	}
	sort.Slice(snaps, func(i, j int) bool {
		if snaps[i].Scope.path != snaps[j].Scope.path {
			return snaps[i].Scope.path < snaps[j].Scope.path
		}
		return snaps[i].Node < snaps[j].Node
	})
	return snaps
}

// RestoreHolds seeds hold cells from a snapshot. Bodies of restored holds
// will not re-seed from their initial expressions on the next round.
func (s *Session) RestoreHolds(snaps []HoldSnapshot) {
	for _, snap := range snaps {
		slot := NewSlot(snap.Scope, snap.Node)
		if cell, ok := s.cells.hold(slot); ok {
			cell.value = snap.Value
			continue
		}
		s.cells.seedHold(slot, snap.Value)
	}
}
