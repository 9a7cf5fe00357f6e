package ecs

// AddComponent attaches a T to e, constructing it (pooled or plain,
// depending on registration) and optionally seeding it from props[0].
// A no-op if T is already attached, or if e is a ghost or disposed
// (spec.md §3: such entities are "invisible to new operations").
func AddComponent[T any](e *Entity, props ...*T) error {
	if e.state == stateGhost || e.state == stateDisposed {
		return nil
	}
	info, err := resolve[T](e.world)
	if err != nil {
		return err
	}
	if e.attachedBits.test(int(info.id)) {
		return nil
	}
	raw, err := info.acquire()
	if err != nil {
		return err
	}
	if len(props) > 0 && props[0] != nil {
		info.applyProps(raw, props[0])
	}
	e.addComponentID(info.id, info, raw)
	return nil
}

// AttachComponent attaches a caller-constructed instance directly,
// skipping pool acquisition — identical semantics to AddComponent
// otherwise.
func AttachComponent[T any](e *Entity, instance *T) error {
	if e.state == stateGhost || e.state == stateDisposed {
		return nil
	}
	info, err := resolve[T](e.world)
	if err != nil {
		return err
	}
	if e.attachedBits.test(int(info.id)) {
		return nil
	}
	e.addComponentID(info.id, info, instance)
	return nil
}

// RemoveComponent detaches T from e. If immediate is false the instance
// is queued for end-of-tick drain and query membership updates then;
// if true it's disposed and queries update now. A no-op if T was never
// registered or isn't currently attached.
func RemoveComponent[T any](e *Entity, immediate bool) error {
	info, ok := resolveKnown[T](e.world)
	if !ok {
		return nil
	}
	e.removeComponentID(info.id, info, immediate)
	return nil
}

// HasComponent reports whether T is attached to e. When includeRemoved
// is true a component pending deferred removal still counts.
func HasComponent[T any](e *Entity, includeRemoved bool) bool {
	info, ok := resolveKnown[T](e.world)
	if !ok {
		return false
	}
	return e.hasComponentID(info.id, includeRemoved)
}

// GetComponent returns a value copy of e's T, an immutable read view by
// construction: since the caller gets a copy, not a pointer into the
// store, there is no aliasing path through which a write could reach
// the live instance. This is the compile-time alternative to a runtime
// mutability guard that spec.md's Design Notes call out as sufficient.
func GetComponent[T any](e *Entity, includeRemoved bool) (T, bool) {
	info, ok := resolveKnown[T](e.world)
	if !ok {
		return *new(T), false
	}
	if instance, ok := e.attached[info.id]; ok {
		return *(instance.(*T)), true
	}
	if includeRemoved {
		if instance, ok := e.pendingRemoval[info.id]; ok {
			return *(instance.(*T)), true
		}
	}
	return *new(T), false
}

// GetMutableComponent returns a live pointer to e's T and dispatches
// COMPONENT_CHANGED on every reactive query that includes T and
// currently contains e, per spec.md §4.3.
func GetMutableComponent[T any](e *Entity) (*T, bool) {
	info, ok := resolveKnown[T](e.world)
	if !ok {
		return nil, false
	}
	instance, ok := e.attached[info.id]
	if !ok {
		return nil, false
	}
	e.world.notifyComponentChanged(e, info.id)
	return instance.(*T), true
}

// GetRemovedComponent returns the pending (deferred-removal) instance of
// T, if any, without disturbing the drain queue.
func GetRemovedComponent[T any](e *Entity) (*T, bool) {
	info, ok := resolveKnown[T](e.world)
	if !ok {
		return nil, false
	}
	instance, ok := e.pendingRemoval[info.id]
	if !ok {
		return nil, false
	}
	return instance.(*T), true
}
