// Package event implements the small, fixed-kind dispatcher a Query
// uses to notify listeners of membership and value changes. Grounded
// on internal/core/event/bus.go's Subscribe/Emit shape, but dropping
// its reflect.Type-keyed open type registry (a Query only ever needs
// three fixed kinds) and its double-buffering (spec.md §5 requires
// synchronous dispatch at the mutation call site, not a tick behind).
package event

// Type identifies one of a Query's three event kinds.
type Type int

const (
	// Added fires when an entity newly matches a query.
	Added Type = iota
	// Removed fires when an entity stops matching a query.
	Removed
	// Changed fires when GetMutableComponent is called for a component
	// the query includes, on an entity it currently matches.
	Changed
)

// Event is the payload delivered to a Listener. Entity is a raw id
// (uint64, not ecs.EntityID) to avoid an import cycle between event and
// ecs; callers in package ecs convert back with ecs.EntityID(evt.Entity).
type Event struct {
	Kind      Type
	Entity    uint64
	Component string // set only for Changed
}

// Listener receives dispatched Events.
type Listener func(Event)

// ListenerID identifies a registered Listener for removal.
type ListenerID int

type entry struct {
	id ListenerID
	fn Listener
}

// Dispatcher holds one ordered listener list per Type and fires them
// synchronously, in registration order, against a snapshot taken before
// dispatch begins — so a listener that unsubscribes mid-dispatch never
// perturbs the current round.
type Dispatcher struct {
	listeners [3][]entry
	nextID    ListenerID
	fired     [3]int
	handled   [3]int
}

// NewDispatcher returns an empty Dispatcher.
func NewDispatcher() *Dispatcher { return &Dispatcher{} }

// Add registers fn for kind and returns a handle for Remove.
func (d *Dispatcher) Add(kind Type, fn Listener) ListenerID {
	id := d.nextID
	d.nextID++
	d.listeners[kind] = append(d.listeners[kind], entry{id: id, fn: fn})
	return id
}

// Remove unregisters the listener previously returned by Add.
func (d *Dispatcher) Remove(kind Type, id ListenerID) {
	list := d.listeners[kind]
	for i, e := range list {
		if e.id == id {
			d.listeners[kind] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// HasAnyListener reports whether any listener is registered for any
// kind — this is what a Query surfaces as its "reactive" flag.
func (d *Dispatcher) HasAnyListener() bool {
	for _, l := range d.listeners {
		if len(l) > 0 {
			return true
		}
	}
	return false
}

// Dispatch synchronously invokes every listener registered for kind, in
// registration order, against a snapshot of the listener list.
func (d *Dispatcher) Dispatch(kind Type, entity uint64, component string) {
	d.fired[kind]++
	snapshot := append([]entry(nil), d.listeners[kind]...)
	evt := Event{Kind: kind, Entity: entity, Component: component}
	for _, e := range snapshot {
		e.fn(evt)
		d.handled[kind]++
	}
}

// Counters returns per-kind fired (Dispatch calls) and handled
// (individual listener invocations) counts.
func (d *Dispatcher) Counters() (fired, handled map[Type]int) {
	fired = map[Type]int{Added: d.fired[Added], Removed: d.fired[Removed], Changed: d.fired[Changed]}
	handled = map[Type]int{Added: d.handled[Added], Removed: d.handled[Removed], Changed: d.handled[Changed]}
	return fired, handled
}
