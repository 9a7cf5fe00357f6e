package ecs

import (
	"testing"

	"github.com/wyrmforge/gearloop/event"
)

type Position struct {
	X float64
	Y float64
}

type Velocity struct {
	DX float64
	DY float64
}

type Tag struct{}

type SystemState struct {
	Handle int
}

func newTestWorld(t *testing.T) *World {
	t.Helper()
	return NewWorld()
}

func TestRegisterComponentAutoDerivesSchemaAndPools(t *testing.T) {
	w := newTestWorld(t)
	id, err := RegisterComponent[Position](w)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if id != 0 {
		t.Fatalf("expected first registration to get id 0, got %d", id)
	}

	e := w.CreateEntity()
	if err := AddComponent(e, &Position{X: 1, Y: 2}); err != nil {
		t.Fatalf("add component: %v", err)
	}
	pos, ok := GetComponent[Position](e, false)
	if !ok {
		t.Fatal("expected Position to be attached")
	}
	if pos.X != 1 || pos.Y != 2 {
		t.Fatalf("unexpected position: %+v", pos)
	}
}

func TestRegisterComponentDuplicateIsNoop(t *testing.T) {
	w := newTestWorld(t)
	first, err := RegisterComponent[Position](w)
	if err != nil {
		t.Fatalf("first register: %v", err)
	}
	second, err := RegisterComponent[Position](w)
	if err != nil {
		t.Fatalf("duplicate register should not error: %v", err)
	}
	if first != second {
		t.Fatalf("duplicate registration returned a different id: %d vs %d", first, second)
	}
}

func TestGetComponentReturnsValueCopyNotAlias(t *testing.T) {
	w := newTestWorld(t)
	RegisterComponent[Position](w)
	e := w.CreateEntity()
	AddComponent(e, &Position{X: 1, Y: 1})

	copy1, _ := GetComponent[Position](e, false)
	copy1.X = 999

	copy2, _ := GetComponent[Position](e, false)
	if copy2.X != 1 {
		t.Fatalf("mutating a GetComponent copy affected the stored instance: %+v", copy2)
	}
}

func TestGetMutableComponentWritesThrough(t *testing.T) {
	w := newTestWorld(t)
	RegisterComponent[Position](w)
	e := w.CreateEntity()
	AddComponent(e, &Position{})

	mut, ok := GetMutableComponent[Position](e)
	if !ok {
		t.Fatal("expected mutable position")
	}
	mut.X = 42

	got, _ := GetComponent[Position](e, false)
	if got.X != 42 {
		t.Fatalf("expected write through GetMutableComponent to be visible, got %+v", got)
	}
}

func TestComponentsAttachedBeforeAddEntityDoNotEmitEvents(t *testing.T) {
	w := newTestWorld(t)
	RegisterComponent[Position](w)
	q, err := w.GetQuery(T[Position]())
	if err != nil {
		t.Fatalf("get query: %v", err)
	}

	added := 0
	q.Listen(event.Added, func(event.Event) { added++ })

	e := w.CreateDetachedEntity()
	AddComponent(e, &Position{})
	if added != 0 {
		t.Fatalf("expected no ADDED events before AddEntity, got %d", added)
	}
	if q.Len() != 0 {
		t.Fatalf("expected detached entity to be absent from query, got len %d", q.Len())
	}

	w.AddEntity(e)
	if q.Len() != 1 {
		t.Fatalf("expected AddEntity to replay the component into the query, got len %d", q.Len())
	}
}

func TestQueryMatchOnCreationBootstrapsSilently(t *testing.T) {
	w := newTestWorld(t)
	RegisterComponent[Position](w)

	e := w.CreateEntity()
	AddComponent(e, &Position{})

	q, err := w.GetQuery(T[Position]())
	if err != nil {
		t.Fatalf("get query: %v", err)
	}
	if q.Len() != 1 {
		t.Fatalf("expected bootstrap scan to find the existing entity, got len %d", q.Len())
	}
}

func TestQueryExclusionFlipsMembershipOnComponentAdd(t *testing.T) {
	w := newTestWorld(t)
	RegisterComponent[Position](w)
	RegisterComponent[Tag](w)

	q, err := w.GetQuery(T[Position](), Not[Tag]())
	if err != nil {
		t.Fatalf("get query: %v", err)
	}

	e := w.CreateEntity()
	AddComponent(e, &Position{})
	if q.Len() != 1 {
		t.Fatalf("expected entity without Tag to match, got len %d", q.Len())
	}

	AddComponent(e, &Tag{})
	if q.Len() != 0 {
		t.Fatalf("expected adding the excluded Tag to drop the entity, got len %d", q.Len())
	}

	RemoveComponent[Tag](e, true)
	if q.Len() != 1 {
		t.Fatalf("expected removing the excluded Tag to restore the entity, got len %d", q.Len())
	}
}

func TestDeferredRemovalStillMatchesUntilDrain(t *testing.T) {
	w := newTestWorld(t)
	RegisterComponent[Position](w)

	e := w.CreateEntity()
	AddComponent(e, &Position{})

	q, err := w.GetQuery(T[Position]())
	if err != nil {
		t.Fatalf("get query: %v", err)
	}
	if q.Len() != 1 {
		t.Fatalf("expected entity to match before removal, got len %d", q.Len())
	}

	if err := RemoveComponent[Position](e, false); err != nil {
		t.Fatalf("remove component: %v", err)
	}
	if HasComponent[Position](e, false) {
		t.Fatal("expected Position to be gone from the attached set immediately")
	}
	if q.Len() != 1 {
		t.Fatalf("expected query to still match until drain, got len %d", q.Len())
	}

	w.FlushDeferred()
	if q.Len() != 0 {
		t.Fatalf("expected drain to drop the entity from the query, got len %d", q.Len())
	}
}

func TestReactiveQueryDispatchesComponentChanged(t *testing.T) {
	w := newTestWorld(t)
	RegisterComponent[Position](w)

	q, err := w.GetQuery(T[Position]())
	if err != nil {
		t.Fatalf("get query: %v", err)
	}
	if q.Reactive() {
		t.Fatal("expected a fresh query to not be reactive")
	}

	changed := 0
	q.Listen(event.Changed, func(event.Event) { changed++ })
	if !q.Reactive() {
		t.Fatal("expected Listen to flip Reactive to true")
	}

	e := w.CreateEntity()
	AddComponent(e, &Position{})
	if changed != 0 {
		t.Fatalf("expected AddComponent alone not to fire CHANGED, got %d", changed)
	}

	GetMutableComponent[Position](e)
	if changed != 1 {
		t.Fatalf("expected GetMutableComponent to fire one CHANGED event, got %d", changed)
	}
}

func TestGhostLifecycleRetainsSystemStateUntilRemoved(t *testing.T) {
	w := newTestWorld(t)
	RegisterComponent[Position](w)
	RegisterComponent[SystemState](w, AsSystemState())

	e := w.CreateEntity()
	AddComponent(e, &Position{})
	AddComponent(e, &SystemState{Handle: 7})

	qPos, _ := w.GetQuery(T[Position]())
	qState, _ := w.GetQuery(T[SystemState]())

	e.Dispose(false)
	w.FlushDeferred()

	if e.Alive() {
		t.Fatal("expected entity to no longer be alive after dispose")
	}
	if !e.Ghost() {
		t.Fatal("expected entity to be a ghost while it still carries SystemState")
	}
	if qPos.Len() != 0 {
		t.Fatalf("expected Position query to have dropped the entity, got len %d", qPos.Len())
	}
	if qState.Len() != 1 {
		t.Fatalf("expected SystemState query to still match the ghost, got len %d", qState.Len())
	}

	if err := RemoveComponent[SystemState](e, true); err != nil {
		t.Fatalf("remove system state: %v", err)
	}
	if qState.Len() != 0 {
		t.Fatalf("expected removing the last SystemState to fully dispose the entity, got len %d", qState.Len())
	}
	if _, ok := w.Lookup(e.ID()); ok {
		t.Fatal("expected the fully-disposed entity to be dropped from the world")
	}
}

func TestEntityAlreadyAddedIsNoop(t *testing.T) {
	w := newTestWorld(t)
	e := w.CreateEntity()
	same := w.AddEntity(e)
	if same != e {
		t.Fatal("expected AddEntity on an already-added entity to return it unchanged")
	}
}

func TestGetQueryWithoutIncludeIsError(t *testing.T) {
	w := newTestWorld(t)
	RegisterComponent[Tag](w)
	if _, err := w.GetQuery(Not[Tag]()); err != ErrEmptyQuery {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
}

func TestComponentCountTracksAttachment(t *testing.T) {
	w := newTestWorld(t)
	RegisterComponent[Position](w)

	e1 := w.CreateEntity()
	e2 := w.CreateEntity()
	AddComponent(e1, &Position{})
	AddComponent(e2, &Position{})
	if got := ComponentCount[Position](w); got != 2 {
		t.Fatalf("component count = %d, want 2", got)
	}

	RemoveComponent[Position](e1, true)
	if got := ComponentCount[Position](w); got != 1 {
		t.Fatalf("component count after removal = %d, want 1", got)
	}
}

func TestDeferredRemovalDisabledForcesImmediatePath(t *testing.T) {
	w := NewWorld(WithDeferredRemovalEnabled(false))
	RegisterComponent[Position](w)

	e := w.CreateEntity()
	AddComponent(e, &Position{})

	q, err := w.GetQuery(T[Position]())
	if err != nil {
		t.Fatalf("get query: %v", err)
	}
	if q.Len() != 1 {
		t.Fatalf("expected entity to match before removal, got len %d", q.Len())
	}

	if err := RemoveComponent[Position](e, false); err != nil {
		t.Fatalf("remove component: %v", err)
	}
	if q.Len() != 0 {
		t.Fatalf("expected a world with deferred removal disabled to apply the removal immediately, got len %d", q.Len())
	}
}

func TestCloneDeepCopiesComponents(t *testing.T) {
	w := newTestWorld(t)
	RegisterComponent[Position](w)

	e := w.CreateEntity()
	AddComponent(e, &Position{X: 3, Y: 4})

	clone := e.Clone()
	w.AddEntity(clone)

	origMut, _ := GetMutableComponent[Position](e)
	origMut.X = 100

	clonePos, _ := GetComponent[Position](clone, false)
	if clonePos.X != 3 {
		t.Fatalf("clone aliased the original's component: %+v", clonePos)
	}
}
