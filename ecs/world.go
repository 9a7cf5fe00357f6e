package ecs

import (
	"time"

	"go.uber.org/zap"

	"github.com/wyrmforge/gearloop/diag"
	"github.com/wyrmforge/gearloop/proptype"
)

// Version identifies the wire/behavior contract this package implements,
// surfaced in the "world.created" Sink event's payload for observers
// that need to branch on it.
const Version = "1.0"

// World owns entity allocation, component-type registration, and the
// set of live queries, and is the single point every component
// mutation routes through to keep query membership correct. Grounded
// on internal/core/ecs/world.go's deferred-destroy-queue World,
// generalized to the two-queue (component drain + ghost disposal)
// model spec.md §4.6 requires.
type World struct {
	pool     *entityPool
	entities map[EntityID]*Entity
	names    map[string][]EntityID

	registry *registry

	queries       map[string]*Query
	queriesByType map[ComponentTypeID][]*Query

	counts map[ComponentTypeID]int

	drainQueue []*Entity

	systems       []*systemEntry
	systemsSorted bool
	lastExecute   time.Time

	running                bool
	deferredRemovalEnabled bool
	initialPoolCapacity    int
	log                    *zap.Logger
	sink                   diag.Sink
}

// WorldOption configures NewWorld.
type WorldOption func(*World)

// WithLogger overrides the *zap.Logger used for warnings (duplicate
// registration, missing registration, and so on). Defaults to
// zap.NewNop() so a World never panics for lack of one.
func WithLogger(l *zap.Logger) WorldOption { return func(w *World) { w.log = l } }

// WithPropertyRegistry overrides the default proptype.Registry used to
// auto-derive component schemas.
func WithPropertyRegistry(r *proptype.Registry) WorldOption {
	return func(w *World) { w.registry.proptypes = r }
}

// WithSink attaches an observability Sink; see package diag.
func WithSink(s diag.Sink) WorldOption { return func(w *World) { w.sink = s } }

// WithDeferredRemovalEnabled controls whether RemoveComponent/Dispose
// honor a caller's immediate=false request. Disabling it (per
// SPEC_FULL.md §11's Open Question resolution) forces every such
// mutator down the immediate/synchronous path regardless of what the
// caller asked for. Defaults to true.
func WithDeferredRemovalEnabled(enabled bool) WorldOption {
	return func(w *World) { w.deferredRemovalEnabled = enabled }
}

// WithInitialPoolCapacity seeds every pooled component type's free
// list with n pre-cloned instances at RegisterComponent time, instead
// of leaving it to Acquire's lazy ceil(0.2*count)+1 growth to backfill.
// Wires config.PoolConfig.InitialCapacity (see the config.Load entry
// in SPEC_FULL.md §12). Zero (the default) leaves pools starting
// empty, as before.
func WithInitialPoolCapacity(n int) WorldOption {
	return func(w *World) { w.initialPoolCapacity = n }
}

// NewWorld constructs an empty World, ready to register component
// types, entities, and queries.
func NewWorld(opts ...WorldOption) *World {
	w := &World{
		pool:                   newEntityPool(),
		entities:               make(map[EntityID]*Entity),
		names:                  make(map[string][]EntityID),
		queries:                make(map[string]*Query),
		queriesByType:          make(map[ComponentTypeID][]*Query),
		counts:                 make(map[ComponentTypeID]int),
		running:                true,
		deferredRemovalEnabled: true,
		log:                    zap.NewNop(),
	}
	w.registry = newRegistry(nil, w.log)
	for _, o := range opts {
		o(w)
	}
	w.registry.log = w.log
	if w.sink != nil {
		w.sink.Emit("world.created", map[string]any{"world": w, "version": Version})
	}
	return w
}

// CreateDetachedEntity allocates a fresh id and Entity but does not add
// it to the world: components attached to it raise no events and reach
// no query until AddEntity runs, per spec.md §3's "components added
// before add do not emit add-events." They are counted by
// ComponentCount from the moment they are attached.
func (w *World) CreateDetachedEntity() *Entity {
	id := w.pool.create()
	return newEntity(id, w)
}

// CreateEntity is CreateDetachedEntity followed by AddEntity.
func (w *World) CreateEntity() *Entity {
	e := w.CreateDetachedEntity()
	return w.AddEntity(e)
}

// AddEntity registers e with the world: it becomes alive, and every
// component already attached to it is replayed into matching queries.
// Calling AddEntity on an id that's already alive and registered is a
// *entity-already-added* no-op (warns, returns e unchanged).
func (w *World) AddEntity(e *Entity) *Entity {
	if e.state == stateAlive || e.state == stateGhost {
		w.log.Warn("entity already added", zap.Uint64("entity", uint64(e.id)))
		return e
	}
	e.state = stateAlive
	w.entities[e.id] = e
	if e.name != "" {
		w.names[e.name] = append(w.names[e.name], e.id)
	}
	for id := range e.attached {
		w.notifyComponentAdded(e, id)
	}
	return e
}

func (w *World) incrCount(id ComponentTypeID) { w.counts[id]++ }
func (w *World) decrCount(id ComponentTypeID) {
	if w.counts[id] > 0 {
		w.counts[id]--
	}
}

// ComponentCount returns the number of entities currently carrying an
// instance of T.
func ComponentCount[T any](w *World) int {
	info, ok := resolveKnown[T](w)
	if !ok {
		return 0
	}
	return w.counts[info.id]
}

// notifyComponentAdded routes an add through every query that
// references id: queries excluding it may lose e, queries including it
// may gain e.
func (w *World) notifyComponentAdded(e *Entity, id ComponentTypeID) {
	for _, q := range w.queriesByType[id] {
		switch {
		case q.excludes(id):
			if q.contains(e) {
				q.removeEntity(e)
			}
		case q.includes(id):
			if !q.contains(e) && q.match(e) {
				q.addEntity(e)
			}
		}
	}
}

// notifyComponentRemoved is notifyComponentAdded's mirror, called once
// a component is actually gone (immediate remove, or drain-time
// finalize of a deferred one).
func (w *World) notifyComponentRemoved(e *Entity, id ComponentTypeID) {
	for _, q := range w.queriesByType[id] {
		switch {
		case q.excludes(id):
			if !q.contains(e) && q.match(e) {
				q.addEntity(e)
			}
		case q.includes(id):
			if q.contains(e) && !q.match(e) {
				q.removeEntity(e)
			}
		}
	}
}

// notifyComponentChanged dispatches COMPONENT_CHANGED on every query
// that includes id and currently matches e.
func (w *World) notifyComponentChanged(e *Entity, id ComponentTypeID) {
	for _, q := range w.queriesByType[id] {
		if q.includes(id) && q.contains(e) {
			q.dispatchChanged(e, id)
		}
	}
}

// queueDrain enqueues e for end-of-tick component finalization, if it
// isn't already queued.
func (w *World) queueDrain(e *Entity) {
	if e.queuedForDrain {
		return
	}
	e.queuedForDrain = true
	w.drainQueue = append(w.drainQueue, e)
}

// FlushDeferred drains every entity queued by a deferred
// RemoveComponent or Dispose call: pending components are finalized
// (disposed, query membership updated), and any entity whose Dispose
// had nothing left to wait for becomes fully disposed. Grounded on
// internal/core/ecs/world.go's FlushDestroyQueue, run once per tick
// after every system has executed (see system.Manager.Tick). A panic
// while finalizing one entity is recovered and logged, and the rest of
// the queue still drains.
func (w *World) FlushDeferred() {
	if len(w.drainQueue) == 0 {
		return
	}
	queue := w.drainQueue
	w.drainQueue = nil
	for _, e := range queue {
		func() {
			defer func() {
				if r := recover(); r != nil {
					w.log.Warn("deferred removal failed", zap.Uint64("entity", uint64(e.id)), zap.Any("panic", r))
				}
			}()
			e.ProcessRemovedComponents()
			if e.state == stateGhost && e.systemStateCount == 0 {
				e.finalizeDisposal()
			}
		}()
	}
}

// removeEntityRecord drops e from the world's entity/name indices and
// recycles its id. Called only from Entity.finalizeDisposal.
func (w *World) removeEntityRecord(e *Entity) {
	delete(w.entities, e.id)
	if e.name != "" {
		w.removeFromNameIndex(e.name, e.id)
	}
	w.pool.recycle(e.id)
}

func (w *World) reindexName(e *Entity, oldName, newName string) {
	if oldName == newName {
		return
	}
	if oldName != "" && e.registered() {
		w.removeFromNameIndex(oldName, e.id)
	}
	if newName != "" && e.registered() {
		w.names[newName] = append(w.names[newName], e.id)
	}
}

func (w *World) removeFromNameIndex(name string, id EntityID) {
	list := w.names[name]
	for i, v := range list {
		if v == id {
			w.names[name] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(w.names[name]) == 0 {
		delete(w.names, name)
	}
}

// Lookup returns the entity for id, if the world still has a record of
// it (alive or ghost; disposed and never-issued ids return false).
func (w *World) Lookup(id EntityID) (*Entity, bool) {
	e, ok := w.entities[id]
	return e, ok
}

// FindEntityByName returns the first entity registered under name, if
// any.
func (w *World) FindEntityByName(name string) (*Entity, bool) {
	list := w.names[name]
	if len(list) == 0 {
		return nil, false
	}
	e, ok := w.entities[list[0]]
	return e, ok
}

// EntitiesByName returns every entity currently registered under name.
func (w *World) EntitiesByName(name string) []*Entity {
	list := w.names[name]
	out := make([]*Entity, 0, len(list))
	for _, id := range list {
		if e, ok := w.entities[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

// GetQuery returns the shared Query for spec, constructing and caching
// it on first use. Two declarations naming the same types (any order)
// always resolve to the same *Query.
func (w *World) GetQuery(spec ...SpecElem) (*Query, error) {
	key := specKey(spec)
	if q, ok := w.queries[key]; ok {
		return q, nil
	}
	q, err := newQuery(w, spec, key)
	if err != nil {
		return nil, err
	}
	w.queries[key] = q
	return q, nil
}

// Stop marks the world as not running and broadcasts Stop to every
// registered system, per spec.md §4.7's "stop() broadcasts stop to
// every system."
func (w *World) Stop() {
	w.running = false
	for _, e := range w.systems {
		e.sys.Stop()
	}
}

// Play resumes a stopped world and broadcasts Play to every registered
// system.
func (w *World) Play() {
	w.running = true
	for _, e := range w.systems {
		e.sys.Play()
	}
}

// Playing reports whether the world is currently running.
func (w *World) Playing() bool { return w.running }

// WorldStats summarizes the world's current bookkeeping, useful for
// diagnostics and tests.
type WorldStats struct {
	Entities     int
	Ghosts       int
	Queries      int
	ComponentIDs int
	Queued       int
	Systems      int
}

// Stats reports current world-level counts.
func (w *World) Stats() WorldStats {
	ghosts := 0
	for _, e := range w.entities {
		if e.state == stateGhost {
			ghosts++
		}
	}
	return WorldStats{
		Entities:     len(w.entities),
		Ghosts:       ghosts,
		Queries:      len(w.queries),
		ComponentIDs: len(w.registry.byID),
		Queued:       len(w.drainQueue),
		Systems:      len(w.systems),
	}
}
