package ecs

import (
	"fmt"
	"reflect"
	"sort"
	"time"

	"go.uber.org/zap"
)

// System is the interface every ECS system implements. It is declared
// here, not in package system, so World can own and drive the schedule
// directly: system.Base/system.Manager import ecs already, and a
// System interface referencing *World belongs next to World anyway.
// Host systems embed system.Base, which supplies everything but
// Init/Execute.
type System interface {
	Init(w *World) error
	Execute(w *World, dt float64, t time.Time) error
	Priority() int
	Playing() bool
	Stop()
	Play()
	ClearEvents()
	CanExecute() bool
	RecordExecuteTime(d time.Duration)
}

type systemEntry struct {
	sys   System
	order int
}

// RegisterSystem calls s.Init(w) and, on success, adds it to w's
// schedule, run in (priority ascending, insertion-order ascending)
// order by Execute. Grounded on internal/core/system/runner.go's
// Register, folded onto World per spec.md §6's registerSystem.
func (w *World) RegisterSystem(s System) error {
	if err := s.Init(w); err != nil {
		return fmt.Errorf("system init: %w", err)
	}
	order := 0
	for _, e := range w.systems {
		if e.order >= order {
			order = e.order + 1
		}
	}
	w.systems = append(w.systems, &systemEntry{sys: s, order: order})
	w.systemsSorted = false
	return nil
}

// RemoveSystem detaches the system matching s's concrete type, calling
// Stop() on it first. Systems are identified by type, not instance
// identity, per SPEC_FULL.md §11's respecification of the source's
// index-based removeSystem.
func (w *World) RemoveSystem(s System) bool {
	rt := reflect.TypeOf(s)
	for i, e := range w.systems {
		if reflect.TypeOf(e.sys) == rt {
			e.sys.Stop()
			w.systems = append(w.systems[:i], w.systems[i+1:]...)
			return true
		}
	}
	return false
}

// GetSystem returns the registered system matching s's concrete type.
func (w *World) GetSystem(s System) (System, bool) {
	rt := reflect.TypeOf(s)
	for _, e := range w.systems {
		if reflect.TypeOf(e.sys) == rt {
			return e.sys, true
		}
	}
	return nil, false
}

// Systems returns the current schedule in execution order.
func (w *World) Systems() []System {
	w.ensureSystemsSorted()
	out := make([]System, len(w.systems))
	for i, e := range w.systems {
		out[i] = e.sys
	}
	return out
}

func (w *World) ensureSystemsSorted() {
	if w.systemsSorted {
		return
	}
	sort.SliceStable(w.systems, func(i, j int) bool {
		a, b := w.systems[i], w.systems[j]
		if a.sys.Priority() != b.sys.Priority() {
			return a.sys.Priority() < b.sys.Priority()
		}
		return a.order < b.order
	})
	w.systemsSorted = true
}

// Execute drives one tick, per spec.md §4.6/§4.7: if delta is the zero
// Duration, it's computed from the monotonic clock elapsed since the
// previous Execute call (zero on the very first call, since there is
// no previous tick to measure from); if t is the zero Time it defaults
// to time.Now(). When the world is playing, every system that is both
// Playing and CanExecute (all its mandatory queries non-empty) runs in
// schedule order, timed, with its elapsed wall time recorded on it;
// deferred removals are then flushed exactly once, and every system's
// per-tick event buffers are cleared. A system whose Execute returns an
// error aborts the tick: the error is logged, later systems do not run,
// and neither the flush nor the buffer clearing happens. Returns the
// delta actually used.
func (w *World) Execute(delta time.Duration, t time.Time) time.Duration {
	if t.IsZero() {
		t = time.Now()
	}
	if delta == 0 && !w.lastExecute.IsZero() {
		delta = t.Sub(w.lastExecute)
	}
	w.lastExecute = t
	if !w.running {
		return delta
	}
	w.ensureSystemsSorted()
	dt := delta.Seconds()
	for _, e := range w.systems {
		if !e.sys.Playing() || !e.sys.CanExecute() {
			continue
		}
		start := time.Now()
		err := e.sys.Execute(w, dt, t)
		e.sys.RecordExecuteTime(time.Since(start))
		if err != nil {
			w.log.Warn("system execute failed", zap.String("system", reflect.TypeOf(e.sys).String()), zap.Error(err))
			return delta
		}
	}
	w.FlushDeferred()
	for _, e := range w.systems {
		e.sys.ClearEvents()
	}
	return delta
}
