package ecs

// EntityID encodes a 32-bit pool index in the lower bits and a 32-bit
// generation in the upper bits; the generation increments on destroy so
// stale references are recognizable. Grounded on
// internal/core/ecs/entity.go's EntityID packing.
type EntityID uint64

func newEntityID(index, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

// Index returns the pool slot this id occupies.
func (id EntityID) Index() uint32 { return uint32(id) }

// Generation returns the id's generation counter.
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }

// IsZero reports whether id is the zero value. The first id a pool
// issues (index 0, generation 0) is also the zero value.
func (id EntityID) IsZero() bool { return id == 0 }

// entityPool hands out generational indices with free-list recycling,
// kept close to internal/core/ecs/entity.go's EntityPool.
type entityPool struct {
	generations []uint32
	freeList    []uint32
	nextIndex   uint32
}

func newEntityPool() *entityPool {
	return &entityPool{
		generations: make([]uint32, 0, 256),
		freeList:    make([]uint32, 0, 64),
	}
}

func (p *entityPool) create() EntityID {
	if len(p.freeList) > 0 {
		idx := p.freeList[len(p.freeList)-1]
		p.freeList = p.freeList[:len(p.freeList)-1]
		return newEntityID(idx, p.generations[idx])
	}
	idx := p.nextIndex
	p.nextIndex++
	if int(idx) >= len(p.generations) {
		p.generations = append(p.generations, 0)
	}
	return newEntityID(idx, p.generations[idx])
}

// recycle bumps the generation for idx and frees the slot, refreshing
// the id for whoever held it (spec: "immediate disposal refreshes the
// id... returns to pool").
func (p *entityPool) recycle(id EntityID) {
	idx := id.Index()
	if idx >= p.nextIndex || p.generations[idx] != id.Generation() {
		return
	}
	p.generations[idx]++
	p.freeList = append(p.freeList, idx)
}
