// Package system implements the embeddable System base that drives a
// World one tick at a time: systems declare the queries they need,
// optionally subscribing to their add/remove/change events. The
// schedule itself (register/remove/sort/execute) lives on ecs.World —
// see ecs.System, ecs.World.RegisterSystem, ecs.World.Execute — since
// a System interface referencing *World has to live next to World to
// let World own the schedule without importing this package back.
// Grounded on internal/core/system/system.go's System interface and
// internal/core/system/runner.go's Runner, generalized from a fixed
// Phase enum to spec.md's continuous priority ordering.
package system

import (
	"encoding/json"
	"time"

	"github.com/wyrmforge/gearloop/ecs"
	"github.com/wyrmforge/gearloop/event"
)

// System is ecs.System. Kept as an alias here so host code can write
// system.System without reaching into package ecs for the type its
// own Base implements most of.
type System = ecs.System

// ChangedEvent is delivered to a system's Changed buffer when a query it
// listens to reports COMPONENT_CHANGED.
type ChangedEvent struct {
	Entity    ecs.EntityID
	Component string
}

// QueryDecl is one named query a system declared in Init: the shared
// *ecs.Query plus, if the system subscribed to any event kind, the
// per-tick buffers those events accumulate into.
type QueryDecl struct {
	Query     *ecs.Query
	Mandatory bool

	Added   []ecs.EntityID
	Removed []ecs.EntityID
	Changed []ChangedEvent

	listenerIDs []listenerHandle
}

type listenerHandle struct {
	kind event.Type
	id   event.ListenerID
}

func (d *QueryDecl) clear() {
	d.Added = d.Added[:0]
	d.Removed = d.Removed[:0]
	d.Changed = d.Changed[:0]
}

// Base is the embeddable implementation of everything an ecs.System
// needs but Init/Execute: priority, play/pause, mandatory-query gating,
// execute-time bookkeeping, and declared-query management.
type Base struct {
	name        string
	priority    int
	playing     bool
	executeTime time.Duration
	queries     map[string]*QueryDecl
}

// NewBase returns a Base ready to embed, with the system initially
// playing at the given priority (lower runs earlier). name surfaces in
// MarshalJSON's {name, ...} per spec.md §6.
func NewBase(name string, priority int) Base {
	return Base{name: name, priority: priority, playing: true, queries: make(map[string]*QueryDecl)}
}

// Name returns the name the system was constructed with.
func (b *Base) Name() string { return b.name }

// Priority returns the system's scheduling priority.
func (b *Base) Priority() int { return b.priority }

// Playing reports whether the system currently executes on World.Execute.
func (b *Base) Playing() bool { return b.playing }

// Stop pauses the system and zeroes its recorded execute time, per
// spec.md §4.7's "stop() ... sets enabled=false, zeroes timing."
// World.Execute skips a stopped system until Play.
func (b *Base) Stop() {
	b.playing = false
	b.executeTime = 0
}

// Play resumes a stopped system.
func (b *Base) Play() { b.playing = true }

// CanExecute reports whether every mandatory query currently has at
// least one matching entity, per spec.md §4.7's canExecute definition.
// A system with no mandatory queries can always execute.
func (b *Base) CanExecute() bool {
	for _, d := range b.queries {
		if d.Mandatory && d.Query.Len() == 0 {
			return false
		}
	}
	return true
}

// RecordExecuteTime stores the wall time the system's last Execute call
// took. Called by World.Execute immediately after invoking the system.
func (b *Base) RecordExecuteTime(d time.Duration) { b.executeTime = d }

// ExecuteTime returns the wall time the system's last Execute call took.
func (b *Base) ExecuteTime() time.Duration { return b.executeTime }

// ClearEvents resets every declared query's per-tick Added/Removed/
// Changed buffers. Called by World.Execute after each tick.
func (b *Base) ClearEvents() {
	for _, d := range b.queries {
		d.clear()
	}
}

// DeclareQuery resolves spec to the world's shared Query and, if listen
// is non-empty, subscribes buffering listeners for those event kinds.
// A mandatory declaration that fails to build (ecs.ErrEmptyQuery)
// propagates the error from Init; a non-mandatory one is skipped.
func (b *Base) DeclareQuery(w *ecs.World, name string, mandatory bool, listen []event.Type, spec ...ecs.SpecElem) (*QueryDecl, error) {
	q, err := w.GetQuery(spec...)
	if err != nil {
		if mandatory {
			return nil, err
		}
		return nil, nil
	}
	decl := &QueryDecl{Query: q, Mandatory: mandatory}
	for _, kind := range listen {
		kind := kind
		id := q.Listen(kind, func(evt event.Event) {
			switch kind {
			case event.Added:
				decl.Added = append(decl.Added, ecs.EntityID(evt.Entity))
			case event.Removed:
				decl.Removed = append(decl.Removed, ecs.EntityID(evt.Entity))
			case event.Changed:
				decl.Changed = append(decl.Changed, ChangedEvent{Entity: ecs.EntityID(evt.Entity), Component: evt.Component})
			}
		})
		decl.listenerIDs = append(decl.listenerIDs, listenerHandle{kind: kind, id: id})
	}
	b.queries[name] = decl
	return decl, nil
}

// Query returns a previously-declared QueryDecl by name.
func (b *Base) Query(name string) *QueryDecl { return b.queries[name] }

// baseJSON is system JSON per spec.md §6:
// {name, enabled, executeTime, priority, queries: {name -> {key,
// mandatory, reactive, listen?}}}.
type baseJSON struct {
	Name        string                   `json:"name"`
	Enabled     bool                     `json:"enabled"`
	ExecuteTime float64                  `json:"executeTime"`
	Priority    int                      `json:"priority"`
	Queries     map[string]queryDeclJSON `json:"queries"`
}

type queryDeclJSON struct {
	Key       string      `json:"key"`
	Mandatory bool        `json:"mandatory"`
	Reactive  bool        `json:"reactive"`
	Listen    *listenJSON `json:"listen,omitempty"`
}

type listenJSON struct {
	Added   *listenCount `json:"added,omitempty"`
	Removed *listenCount `json:"removed,omitempty"`
	Changed *listenCount `json:"changed,omitempty"`
}

type listenCount struct {
	Entities int `json:"entities"`
}

// MarshalJSON implements json.Marshaler, replacing the source's bespoke
// toJSON() for systems.
func (b *Base) MarshalJSON() ([]byte, error) {
	out := baseJSON{
		Name:        b.name,
		Enabled:     b.playing,
		ExecuteTime: b.executeTime.Seconds(),
		Priority:    b.priority,
		Queries:     make(map[string]queryDeclJSON, len(b.queries)),
	}
	for name, d := range b.queries {
		entry := queryDeclJSON{Key: d.Query.Key(), Mandatory: d.Mandatory, Reactive: d.Query.Reactive()}
		if len(d.listenerIDs) > 0 {
			listen := &listenJSON{}
			for _, h := range d.listenerIDs {
				switch h.kind {
				case event.Added:
					listen.Added = &listenCount{Entities: len(d.Added)}
				case event.Removed:
					listen.Removed = &listenCount{Entities: len(d.Removed)}
				case event.Changed:
					listen.Changed = &listenCount{Entities: len(d.Changed)}
				}
			}
			entry.Listen = listen
		}
		out.Queries[name] = entry
	}
	return json.Marshal(out)
}
