package main

import (
	"time"

	"github.com/wyrmforge/gearloop/ecs"
	"github.com/wyrmforge/gearloop/system"
)

// MotionSystem advances every entity with both Position and Velocity
// by dt each tick — the minimal system needed to exercise
// ecs.Query/GetMutableComponent end to end.
type MotionSystem struct {
	system.Base
}

// NewMotionSystem returns a MotionSystem at the default priority.
func NewMotionSystem() *MotionSystem {
	return &MotionSystem{Base: system.NewBase("motion", 0)}
}

func (s *MotionSystem) Init(w *ecs.World) error {
	_, err := s.DeclareQuery(w, "moving", true, nil, ecs.T[Position](), ecs.T[Velocity]())
	return err
}

func (s *MotionSystem) Execute(w *ecs.World, dt float64, _ time.Time) error {
	q := s.Query("moving").Query
	for _, id := range q.Entities() {
		e, ok := w.Lookup(id)
		if !ok {
			continue
		}
		vel, ok := ecs.GetComponent[Velocity](e, false)
		if !ok {
			continue
		}
		pos, ok := ecs.GetMutableComponent[Position](e)
		if !ok {
			continue
		}
		pos.X += vel.DX * dt
		pos.Y += vel.DY * dt
	}
	return nil
}
