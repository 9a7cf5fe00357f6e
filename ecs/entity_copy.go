package ecs

// Copy overwrites dst's attached components with copies of e's: any
// component dst has that e lacks is removed (immediately); every
// component e has is copied onto dst (added if dst lacks it, copied in
// place via the type's Descriptor-backed copyInto otherwise). Mirrors
// PtrComponentStore's component-level copy from
// internal/core/ecs/component.go, generalized across every registered
// type instead of one store at a time.
func (e *Entity) Copy(dst *Entity) {
	if dst == nil || e == dst {
		return
	}
	for id := range dst.attached {
		if _, ok := e.attached[id]; !ok {
			info := e.world.registry.byID[id]
			dst.removeComponentID(id, info, true)
		}
	}
	for id, instance := range e.attached {
		info := e.world.registry.byID[id]
		if existing, ok := dst.attached[id]; ok {
			info.applyProps(existing, instance)
			continue
		}
		cloned := info.cloneInto(instance)
		dst.addComponentID(id, info, cloned)
	}
}

// Clone returns a brand-new detached entity carrying deep copies of
// every component e has attached. The clone is not added to the world;
// callers call World.AddEntity on it when ready.
func (e *Entity) Clone() *Entity {
	clone := e.world.CreateDetachedEntity()
	for id, instance := range e.attached {
		info := e.world.registry.byID[id]
		clone.addComponentID(id, info, info.cloneInto(instance))
	}
	clone.name = e.name
	return clone
}
