package pool

import "testing"

type widget struct {
	Value int
	Tags  []string
}

func TestAcquireGrowsByCeilPointTwoPlusOne(t *testing.T) {
	p := New(&widget{}, nil, nil)

	first, err := p.Acquire()
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if first == nil {
		t.Fatal("expected non-nil item")
	}
	// TotalSize was 0 before this Acquire, so growth added
	// ceil(0.2*0)+1 = 1 item, all of which is now used.
	if got, want := p.TotalSize(), 1; got != want {
		t.Fatalf("total size = %d, want %d", got, want)
	}
	if got, want := p.UsedCount(), 1; got != want {
		t.Fatalf("used count = %d, want %d", got, want)
	}

	for i := 0; i < 4; i++ {
		if _, err := p.Acquire(); err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
	}
	if got, want := p.UsedCount(), 5; got != want {
		t.Fatalf("used count = %d, want %d", got, want)
	}
	if p.TotalSize() < p.UsedCount() {
		t.Fatalf("total size %d smaller than used count %d", p.TotalSize(), p.UsedCount())
	}
}

func TestReleaseResetsToPrototype(t *testing.T) {
	proto := &widget{Value: 7}
	p := New(proto, nil, nil)

	item, err := p.Acquire()
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	item.Value = 999
	item.Tags = append(item.Tags, "dirty")

	p.Release(item)
	if got, want := p.FreeCount(), 1; got != want {
		t.Fatalf("free count = %d, want %d", got, want)
	}
	if got, want := p.UsedCount(), 0; got != want {
		t.Fatalf("used count = %d, want %d", got, want)
	}

	reused, err := p.Acquire()
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	if reused != item {
		t.Fatalf("expected Acquire to hand back the released item")
	}
	if reused.Value != proto.Value {
		t.Fatalf("reused.Value = %d, want reset to prototype value %d", reused.Value, proto.Value)
	}
}

func TestExpandNegativeOrZeroIsNoop(t *testing.T) {
	p := New(&widget{}, nil, nil)
	if err := p.Expand(0); err != nil {
		t.Fatalf("expand(0): %v", err)
	}
	if err := p.Expand(-3); err != nil {
		t.Fatalf("expand(-3): %v", err)
	}
	if got, want := p.TotalSize(), 0; got != want {
		t.Fatalf("total size = %d, want %d", got, want)
	}
}

func TestCustomCloneIsUsedOnExpand(t *testing.T) {
	calls := 0
	p := New(&widget{Value: 1}, func(proto *widget) (*widget, error) {
		calls++
		return &widget{Value: proto.Value * 10}, nil
	}, nil)

	item, err := p.Acquire()
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if item.Value != 10 {
		t.Fatalf("item.Value = %d, want 10", item.Value)
	}
	if calls == 0 {
		t.Fatal("expected custom clone to be invoked")
	}
}
