package ecs

import (
	"encoding/json"
	"reflect"
	"sort"
	"strings"

	"github.com/wyrmforge/gearloop/event"
)

// SpecElem is one element of a query declaration: a component type plus
// whether it's required (Include) or forbidden (Exclude). Build these
// with T[Component]() and Not[Component](). The type parameter is
// captured in resolve at construction time, since by the time a Query
// is built from a []SpecElem the static type has otherwise been erased.
type SpecElem struct {
	rtype   reflect.Type
	exclude bool
	resolve func(w *World) (*typeInfo, error)
}

// T declares that a query requires Component.
func T[Component any]() SpecElem {
	return SpecElem{
		rtype:   reflect.TypeOf((*Component)(nil)).Elem(),
		resolve: func(w *World) (*typeInfo, error) { return resolve[Component](w) },
	}
}

// Not declares that a query excludes Component.
func Not[Component any]() SpecElem {
	return SpecElem{
		rtype:   reflect.TypeOf((*Component)(nil)).Elem(),
		exclude: true,
		resolve: func(w *World) (*typeInfo, error) { return resolve[Component](w) },
	}
}

// specKey computes the canonical, order-independent key for a spec:
// type names sorted, exclusions prefixed with "!". Two specs naming the
// same types (in any order) always resolve to the same shared Query.
func specKey(spec []SpecElem) string {
	names := make([]string, 0, len(spec))
	for _, s := range spec {
		if s.exclude {
			names = append(names, "!"+s.rtype.String())
		} else {
			names = append(names, s.rtype.String())
		}
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// Query is a materialized, event-maintained view over the world's
// entities matching an include/exclude component spec. Grounded on
// internal/core/ecs/query.go's cached-membership Query, generalized
// with the reactive dispatcher and stable string key spec.md §4.4
// requires.
type Query struct {
	world   *World
	key     string
	include bitset
	exclude bitset
	// names are kept sorted for MarshalJSON/debugging.
	includeNames []string
	excludeNames []string

	entities []EntityID
	index    map[EntityID]int

	dispatcher *event.Dispatcher
}

func newQuery(w *World, spec []SpecElem, key string) (*Query, error) {
	var includeIDs, excludeIDs []ComponentTypeID
	q := &Query{
		world:      w,
		key:        key,
		index:      make(map[EntityID]int),
		dispatcher: event.NewDispatcher(),
	}
	for _, elem := range spec {
		info, err := elem.resolve(w)
		if err != nil {
			return nil, err
		}
		if elem.exclude {
			q.exclude.set(int(info.id))
			excludeIDs = append(excludeIDs, info.id)
			q.excludeNames = append(q.excludeNames, info.name)
		} else {
			q.include.set(int(info.id))
			includeIDs = append(includeIDs, info.id)
			q.includeNames = append(q.includeNames, info.name)
		}
	}
	if len(includeIDs) == 0 {
		return nil, ErrEmptyQuery
	}
	sort.Strings(q.includeNames)
	sort.Strings(q.excludeNames)

	// Bootstrap scan: silent, no events, over every currently-registered
	// entity (alive or ghost).
	for _, e := range w.entities {
		if !e.registered() {
			continue
		}
		if q.match(e) {
			q.bootstrapAdd(e)
		}
	}
	for _, id := range includeIDs {
		w.queriesByType[id] = append(w.queriesByType[id], q)
	}
	for _, id := range excludeIDs {
		w.queriesByType[id] = append(w.queriesByType[id], q)
	}
	return q, nil
}

func (q *Query) includes(id ComponentTypeID) bool { return q.include.test(int(id)) }
func (q *Query) excludes(id ComponentTypeID) bool { return q.exclude.test(int(id)) }

// match reports whether e currently satisfies the query's predicate,
// treating pending-removal components as still present (spec.md §3).
func (q *Query) match(e *Entity) bool {
	visible := e.visibleBits()
	return visible.hasAll(q.include) && visible.hasNone(q.exclude)
}

func (q *Query) contains(e *Entity) bool {
	_, ok := q.index[e.id]
	return ok
}

func (q *Query) bootstrapAdd(e *Entity) {
	q.index[e.id] = len(q.entities)
	q.entities = append(q.entities, e.id)
	e.queryMemberships[q.key] = struct{}{}
}

func (q *Query) addEntity(e *Entity) {
	q.bootstrapAdd(e)
	q.dispatcher.Dispatch(event.Added, uint64(e.id), "")
}

func (q *Query) removeEntity(e *Entity) {
	idx, ok := q.index[e.id]
	if !ok {
		return
	}
	last := len(q.entities) - 1
	moved := q.entities[last]
	q.entities[idx] = moved
	q.entities = q.entities[:last]
	if moved != e.id {
		q.index[moved] = idx
	}
	delete(q.index, e.id)
	delete(e.queryMemberships, q.key)
	q.dispatcher.Dispatch(event.Removed, uint64(e.id), "")
}

func (q *Query) dispatchChanged(e *Entity, id ComponentTypeID) {
	q.dispatcher.Dispatch(event.Changed, uint64(e.id), q.world.registry.byID[id].name)
}

// Key returns the query's canonical spec key (see specKey).
func (q *Query) Key() string { return q.key }

// Entities returns the query's current matched set. The returned slice
// is owned by the Query; callers must not mutate it.
func (q *Query) Entities() []EntityID { return q.entities }

// Len returns the number of entities currently matched.
func (q *Query) Len() int { return len(q.entities) }

// Reactive reports whether at least one listener is currently
// subscribed to this query's dispatcher.
func (q *Query) Reactive() bool { return q.dispatcher.HasAnyListener() }

// Listen subscribes fn to kind and returns a handle for Unlisten.
// Subscribing is what flips Reactive() to true.
func (q *Query) Listen(kind event.Type, fn event.Listener) event.ListenerID {
	return q.dispatcher.Add(kind, fn)
}

// Unlisten removes a previously-added listener.
func (q *Query) Unlisten(kind event.Type, id event.ListenerID) {
	q.dispatcher.Remove(kind, id)
}

// QueryStats is the query's matched-entity count plus its dispatch
// counters, as reported by Stats.
type QueryStats struct {
	Matched       int `json:"matched"`
	FiredAdded    int `json:"firedAdded"`
	FiredRemoved  int `json:"firedRemoved"`
	FiredChanged  int `json:"firedChanged"`
	HandledAdded  int `json:"handledAdded"`
	HandledRemov  int `json:"handledRemoved"`
	HandledChange int `json:"handledChanged"`
}

func (q *Query) Stats() QueryStats {
	fired, handled := q.dispatcher.Counters()
	return QueryStats{
		Matched:       len(q.entities),
		FiredAdded:    fired[event.Added],
		FiredRemoved:  fired[event.Removed],
		FiredChanged:  fired[event.Changed],
		HandledAdded:  handled[event.Added],
		HandledRemov:  handled[event.Removed],
		HandledChange: handled[event.Changed],
	}
}

// queryComponents is the included/excluded half of queryJSON, matching
// spec.md §6's `components: {included, not}`.
type queryComponents struct {
	Included []string `json:"included"`
	Not      []string `json:"not"`
}

// queryJSON is the wire shape for Query.MarshalJSON, replacing the
// source's bespoke toJSON() with an encoding/json Marshaler.
type queryJSON struct {
	Key         string          `json:"key"`
	Reactive    bool            `json:"reactive"`
	Components  queryComponents `json:"components"`
	NumEntities int             `json:"numEntities"`
}

func (q *Query) MarshalJSON() ([]byte, error) {
	return json.Marshal(queryJSON{
		Key:      q.key,
		Reactive: q.Reactive(),
		Components: queryComponents{
			Included: q.includeNames,
			Not:      q.excludeNames,
		},
		NumEntities: len(q.entities),
	})
}
