package event

import "testing"

func TestDispatchCallsListenersInRegistrationOrder(t *testing.T) {
	d := NewDispatcher()
	var order []int

	d.Add(Added, func(Event) { order = append(order, 1) })
	d.Add(Added, func(Event) { order = append(order, 2) })
	d.Add(Added, func(Event) { order = append(order, 3) })

	d.Dispatch(Added, 42, "")

	want := []int{1, 2, 3}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestRemoveStopsFutureDispatches(t *testing.T) {
	d := NewDispatcher()
	calls := 0
	id := d.Add(Removed, func(Event) { calls++ })

	d.Dispatch(Removed, 1, "")
	d.Remove(Removed, id)
	d.Dispatch(Removed, 1, "")

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestHasAnyListenerReflectsRegistrations(t *testing.T) {
	d := NewDispatcher()
	if d.HasAnyListener() {
		t.Fatal("expected fresh dispatcher to have no listeners")
	}
	id := d.Add(Changed, func(Event) {})
	if !d.HasAnyListener() {
		t.Fatal("expected HasAnyListener to be true after Add")
	}
	d.Remove(Changed, id)
	if d.HasAnyListener() {
		t.Fatal("expected HasAnyListener to be false after removing the only listener")
	}
}

func TestCountersTrackFiredAndHandledIndependently(t *testing.T) {
	d := NewDispatcher()
	d.Add(Added, func(Event) {})
	d.Add(Added, func(Event) {})

	d.Dispatch(Added, 1, "")
	d.Dispatch(Added, 2, "")

	fired, handled := d.Counters()
	if fired[Added] != 2 {
		t.Fatalf("fired[Added] = %d, want 2", fired[Added])
	}
	if handled[Added] != 4 {
		t.Fatalf("handled[Added] = %d, want 4 (2 dispatches x 2 listeners)", handled[Added])
	}
}

func TestSnapshotBeforeDispatchIgnoresMidDispatchUnsubscribe(t *testing.T) {
	d := NewDispatcher()
	calls := 0
	var selfID ListenerID
	selfID = d.Add(Added, func(Event) {
		calls++
		d.Remove(Added, selfID)
	})
	_ = selfID

	d.Dispatch(Added, 1, "")
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if d.HasAnyListener() {
		t.Fatal("expected the listener to have been removed after the dispatch")
	}
}
