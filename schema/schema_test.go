package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wyrmforge/gearloop/ecs"
)

func writeSchemaFile(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "components.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write schema file: %v", err)
	}
	return path
}

const sampleSchema = `
components:
  - name: npc_archetype
    fields:
      - name: hp
        type: number
        default: 100
      - name: aggressive
        type: boolean
`

func TestLoadFileParsesDeclarations(t *testing.T) {
	path := writeSchemaFile(t, sampleSchema)

	decls, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if len(decls) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(decls))
	}
	d := decls[0]
	if d.Name != "npc_archetype" {
		t.Fatalf("name = %q, want npc_archetype", d.Name)
	}
	if len(d.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(d.Fields))
	}
}

func TestNewSetRejectsUnknownPropertyType(t *testing.T) {
	decls := []Declaration{
		{Name: "broken", Fields: []FieldDecl{{Name: "x", Type: "not-a-type"}}},
	}
	if _, err := NewSet(decls, nil); err == nil {
		t.Fatal("expected NewSet to reject an unknown property type")
	}
}

func TestNewInstanceAppliesDefaultsForMissingFields(t *testing.T) {
	path := writeSchemaFile(t, sampleSchema)
	decls, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	set, err := NewSet(decls, nil)
	if err != nil {
		t.Fatalf("new set: %v", err)
	}

	values, err := set.NewInstance("npc_archetype")
	if err != nil {
		t.Fatalf("new instance: %v", err)
	}
	if values["hp"] != 100 {
		t.Fatalf("hp = %v, want 100 (explicit default)", values["hp"])
	}
	if _, ok := values["aggressive"]; !ok {
		t.Fatal("expected aggressive to fall back to its property type's zero default")
	}
}

func TestValidateRejectsMissingField(t *testing.T) {
	path := writeSchemaFile(t, sampleSchema)
	decls, _ := LoadFile(path)
	set, err := NewSet(decls, nil)
	if err != nil {
		t.Fatalf("new set: %v", err)
	}

	if err := set.Validate("npc_archetype", map[string]any{"hp": 50}); err == nil {
		t.Fatal("expected Validate to reject a values map missing a declared field")
	}
	if err := set.Validate("npc_archetype", map[string]any{"hp": 50, "aggressive": true}); err != nil {
		t.Fatalf("expected a fully-populated values map to validate, got %v", err)
	}
}

func TestAttachValidatesThenAddsDataComponent(t *testing.T) {
	path := writeSchemaFile(t, sampleSchema)
	decls, _ := LoadFile(path)
	set, err := NewSet(decls, nil)
	if err != nil {
		t.Fatalf("new set: %v", err)
	}

	w := ecs.NewWorld()
	if _, err := Register(w); err != nil {
		t.Fatalf("register: %v", err)
	}
	e := w.CreateEntity()

	if err := set.Attach(e, "npc_archetype", map[string]any{"hp": 50}); err == nil {
		t.Fatal("expected Attach to reject an incomplete values map")
	}

	if err := set.Attach(e, "npc_archetype", map[string]any{"hp": 50, "aggressive": true}); err != nil {
		t.Fatalf("attach: %v", err)
	}
	data, ok := ecs.GetComponent[Data](e, false)
	if !ok {
		t.Fatal("expected Data component to be attached")
	}
	if data.Kind != "npc_archetype" {
		t.Fatalf("kind = %q, want npc_archetype", data.Kind)
	}
}
