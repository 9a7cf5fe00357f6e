package system

import (
	"time"

	"github.com/wyrmforge/gearloop/ecs"
)

// Manager is a thin convenience wrapper over a World's own system
// schedule: Register/RemoveSystem/Tick/Stop/Play/Systems all delegate
// straight to the ecs.World methods that own it. Kept so host code can
// say system.NewManager(w) and drive ticks with a float64 dt instead of
// reaching for World.Execute's time.Duration/time.Time pair directly.
type Manager struct {
	world *ecs.World
}

// NewManager returns a Manager driving w's own system schedule.
func NewManager(w *ecs.World) *Manager { return &Manager{world: w} }

// Register calls s.Init(world) and, on success, adds it to the
// schedule.
func (m *Manager) Register(s System) error { return m.world.RegisterSystem(s) }

// RemoveSystem detaches the system matching s's concrete type, calling
// Stop() on it first. Systems are identified by type, not instance
// identity — a schedule only ever holds one instance per concrete type
// in practice, and matching by type lets callers remove a system from
// anywhere without holding onto the exact registered pointer.
func (m *Manager) RemoveSystem(s System) bool { return m.world.RemoveSystem(s) }

// CanExecute reports whether s would run on the next Tick: the system
// and the world it belongs to must both be playing, and s's own
// mandatory queries (per Base.CanExecute) must all be non-empty.
func (m *Manager) CanExecute(s System) bool {
	return s.Playing() && m.world.Playing() && s.CanExecute()
}

// Tick runs one World.Execute at the given delta, timestamped now.
func (m *Manager) Tick(dt float64) {
	m.world.Execute(time.Duration(dt*float64(time.Second)), time.Time{})
}

// Stop pauses every registered system and the world itself.
func (m *Manager) Stop() { m.world.Stop() }

// Play resumes every registered system and the world itself.
func (m *Manager) Play() { m.world.Play() }

// Systems returns the current schedule in execution order.
func (m *Manager) Systems() []System { return m.world.Systems() }
