package ecs

// entityState tracks where an Entity sits in its lifecycle. Detached
// entities exist but have never joined a World (components attached to
// one don't reach any query); Alive entities are fully live; Ghost
// entities have alive=false but still carry at least one system-state
// component and so remain registered and visible to the queries that
// match it; Disposed entities are fully gone and must not be touched.
type entityState uint8

const (
	stateDetached entityState = iota
	stateAlive
	stateGhost
	stateDisposed
)

// Entity is a generational id plus the bookkeeping needed to resolve
// its attached components and query memberships without forcing every
// caller through the World. Grounded on internal/core/ecs/entity.go's
// Entity type, generalized with the ghost/pending-removal machinery
// spec.md §3/§4.3 require.
type Entity struct {
	id    EntityID
	world *World
	name  string
	state entityState

	attached     map[ComponentTypeID]any
	attachedBits bitset

	pendingRemoval map[ComponentTypeID]any
	pendingBits    bitset

	systemStateCount int
	queuedForDrain   bool
	queryMemberships map[string]struct{}
}

func newEntity(id EntityID, w *World) *Entity {
	return &Entity{
		id:               id,
		world:            w,
		state:            stateDetached,
		attached:         make(map[ComponentTypeID]any),
		pendingRemoval:   make(map[ComponentTypeID]any),
		queryMemberships: make(map[string]struct{}),
	}
}

// ID returns the entity's generational id.
func (e *Entity) ID() EntityID { return e.id }

// Alive reports whether the entity is fully live (not detached, ghost,
// or disposed).
func (e *Entity) Alive() bool { return e.state == stateAlive }

// Ghost reports whether the entity has been disposed but still carries
// at least one system-state component.
func (e *Entity) Ghost() bool { return e.state == stateGhost }

// registered reports whether the entity participates in world-level
// counts and query membership (alive or ghost).
func (e *Entity) registered() bool { return e.state == stateAlive || e.state == stateGhost }

// Name returns the entity's display name, if any.
func (e *Entity) Name() string { return e.name }

// SetName sets the entity's display name and refreshes the world's
// name index.
func (e *Entity) SetName(name string) {
	if e.world != nil {
		e.world.reindexName(e, e.name, name)
	}
	e.name = name
}

// hasComponentID reports attachment of id. When includeRemoved is true
// a pending (deferred-removal) component still counts as attached, per
// spec.md §3's clarification that pending-removal components "are still
// visible to normal queries until the tick drains."
func (e *Entity) hasComponentID(id ComponentTypeID, includeRemoved bool) bool {
	if e.attachedBits.test(int(id)) {
		return true
	}
	return includeRemoved && e.pendingBits.test(int(id))
}

// visibleBits powers Query matching; it always treats pending-removal
// components as still present, matching hasComponentID's
// includeRemoved=true semantics.
func (e *Entity) visibleBits() bitset { return e.attachedBits.or(e.pendingBits) }

// HasAllComponents reports whether every id in ids is attached (or
// pending removal) on e.
func (e *Entity) HasAllComponents(ids ...ComponentTypeID) bool {
	visible := e.visibleBits()
	for _, id := range ids {
		if !visible.test(int(id)) {
			return false
		}
	}
	return true
}

// HasAnyComponents reports whether at least one id in ids is attached
// (or pending removal) on e.
func (e *Entity) HasAnyComponents(ids ...ComponentTypeID) bool {
	visible := e.visibleBits()
	for _, id := range ids {
		if visible.test(int(id)) {
			return true
		}
	}
	return false
}

func (e *Entity) addComponentID(id ComponentTypeID, info *typeInfo, instance any) {
	e.attached[id] = instance
	e.attachedBits.set(int(id))
	if info.systemState {
		e.systemStateCount++
	}
	if e.world != nil {
		e.world.incrCount(id)
	}
	if e.state == stateAlive {
		e.world.notifyComponentAdded(e, id)
	}
}

// removeComponentID detaches id from the attached set immediately. When
// immediate is false the instance moves into pendingRemoval and the
// entity is queued for end-of-tick drain; query membership is untouched
// until the component is actually finalized (see World.processDrain).
// When immediate is true the instance is disposed (pool-released) and
// query membership updates now. A World built with
// WithDeferredRemovalEnabled(false) forces immediate regardless of what
// the caller asked for.
func (e *Entity) removeComponentID(id ComponentTypeID, info *typeInfo, immediate bool) {
	instance, ok := e.attached[id]
	if !ok {
		return
	}
	if e.world != nil && !e.world.deferredRemovalEnabled {
		immediate = true
	}
	delete(e.attached, id)
	e.attachedBits.clear(int(id))
	if e.world != nil {
		e.world.decrCount(id)
	}
	if !immediate {
		e.pendingRemoval[id] = instance
		e.pendingBits.set(int(id))
		if e.world != nil {
			e.world.queueDrain(e)
		}
		return
	}
	e.finalizeComponent(id, info, instance)
}

// finalizeComponent actually disposes instance and, if the entity is
// still registered, notifies the world so queries update.
func (e *Entity) finalizeComponent(id ComponentTypeID, info *typeInfo, instance any) {
	info.release(instance)
	if e.registered() {
		e.world.notifyComponentRemoved(e, id)
	}
	if info.systemState {
		e.systemStateCount--
		if e.systemStateCount == 0 && e.state == stateGhost {
			e.finalizeDisposal()
		}
	}
}

// ProcessRemovedComponents drains the pending-removal map: every
// component marked for deferred removal is now actually disposed and
// its query memberships are updated. Called by World at end-of-tick
// drain, per spec.md §4.3/§4.6.
func (e *Entity) ProcessRemovedComponents() {
	if len(e.pendingRemoval) == 0 {
		return
	}
	for id, instance := range e.pendingRemoval {
		delete(e.pendingRemoval, id)
		e.pendingBits.clear(int(id))
		info := e.world.registry.byID[id]
		e.finalizeComponent(id, info, instance)
	}
	e.queuedForDrain = false
}

// GetComponentsToRemove returns the component type ids currently pending
// deferred removal.
func (e *Entity) GetComponentsToRemove() []ComponentTypeID {
	out := make([]ComponentTypeID, 0, len(e.pendingRemoval))
	for id := range e.pendingRemoval {
		out = append(out, id)
	}
	return out
}

// Dispose removes every non-system-state component. If, after that, no
// system-state components remain, the entity is fully finalized: ids
// are recycled and it's dropped from the world. Otherwise it becomes a
// ghost: alive is false but it stays registered and matched by queries
// for its remaining system-state components, per spec.md §4.3/§5's
// ghost-lifecycle rule. A World built with
// WithDeferredRemovalEnabled(false) forces immediate regardless of what
// the caller asked for.
func (e *Entity) Dispose(immediate bool) {
	if e.state == stateDisposed {
		return
	}
	if e.world != nil && !e.world.deferredRemovalEnabled {
		immediate = true
	}
	ids := make([]ComponentTypeID, 0, len(e.attached))
	for id := range e.attached {
		ids = append(ids, id)
	}
	queuedAny := false
	for _, id := range ids {
		info := e.world.registry.byID[id]
		if info.systemState {
			continue
		}
		instance := e.attached[id]
		delete(e.attached, id)
		e.attachedBits.clear(int(id))
		e.world.decrCount(id)
		if immediate {
			e.finalizeComponentNoSelfDispose(id, info, instance)
		} else {
			e.pendingRemoval[id] = instance
			e.pendingBits.set(int(id))
			queuedAny = true
		}
	}
	e.state = stateGhost
	if !immediate && queuedAny {
		e.world.queueDrain(e)
		return
	}
	// Either disposal was immediate, or there was nothing non-state to
	// defer: finalization can't be deferred on nothing, so decide now.
	if e.systemStateCount == 0 {
		e.finalizeDisposal()
	}
}

// finalizeComponentNoSelfDispose is finalizeComponent without the
// self-dispose recursion guard, used from inside Dispose itself (which
// already runs the full finalize sequence afterward).
func (e *Entity) finalizeComponentNoSelfDispose(id ComponentTypeID, info *typeInfo, instance any) {
	info.release(instance)
	if e.registered() {
		e.world.notifyComponentRemoved(e, id)
	}
}

// finalizeDisposal fully removes the entity: any remaining components
// (there should be none once this is reachable) are disposed, query
// backreferences are cleared, the id is recycled, and the world drops
// its record. Spec.md: "Immediate disposal refreshes the id, notifies
// the world, and returns it to the pool."
func (e *Entity) finalizeDisposal() {
	for id, instance := range e.attached {
		info := e.world.registry.byID[id]
		info.release(instance)
		e.world.notifyComponentRemoved(e, id)
		delete(e.attached, id)
	}
	e.attachedBits = nil
	for key := range e.queryMemberships {
		if q, ok := e.world.queries[key]; ok {
			q.removeEntity(e)
		}
	}
	e.world.removeEntityRecord(e)
	e.state = stateDisposed
}
