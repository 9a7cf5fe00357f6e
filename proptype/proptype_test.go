package proptype

import (
	"reflect"
	"testing"
)

func TestDefaultRegistryHasBuiltins(t *testing.T) {
	reg := Default()
	for _, name := range []string{"number", "boolean", "string", "object", "array", "json"} {
		if _, ok := reg.Get(name); !ok {
			t.Fatalf("expected builtin descriptor %q to be registered", name)
		}
	}
}

func TestRegisterRejectsInvalidDescriptor(t *testing.T) {
	reg := NewRegistry()
	if ok := reg.Register(Descriptor{Name: "broken"}); ok {
		t.Fatal("expected Register to reject a descriptor missing Default/Clone/Copy")
	}
	if _, ok := reg.Get("broken"); ok {
		t.Fatal("invalid descriptor should not have been stored")
	}
}

func TestArrayCloneDoesNotAliasSource(t *testing.T) {
	src := []any{1, 2, 3}
	cloned := Array.Clone(src)

	clonedSlice, ok := cloned.([]any)
	if !ok {
		t.Fatalf("clone returned %T, want []any", cloned)
	}
	clonedSlice[0] = 999

	if src[0] != 1 {
		t.Fatalf("mutating the clone affected the source: %v", src)
	}
}

func TestJSONCopyDoesNotAliasSource(t *testing.T) {
	src := map[string]any{"hp": 10}
	copied := JSON.Copy(map[string]any{}, src)

	copiedMap, ok := copied.(map[string]any)
	if !ok {
		t.Fatalf("copy returned %T, want map[string]any", copied)
	}
	copiedMap["hp"] = 0

	if src["hp"] != 10 {
		t.Fatalf("mutating the copy affected the source: %v", src)
	}
}

func TestCreateTypeBuildsValidDescriptor(t *testing.T) {
	d := CreateType("vector3",
		func() any { return [3]float64{} },
		func(v any) any { return v },
		func(_, src any) any { return src },
	)
	if !d.Valid() {
		t.Fatal("expected descriptor built by CreateType to be valid")
	}
	if !reflect.DeepEqual(d.Default(), [3]float64{}) {
		t.Fatalf("unexpected default: %v", d.Default())
	}
}
