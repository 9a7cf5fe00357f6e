// Package schema loads component shapes declared in YAML instead of as
// Go structs — the runtime's second front door onto component
// registration, for content (NPC archetypes, item kinds, and the like)
// that designers edit without touching Go code. Grounded on
// internal/data/npc.go's yaml.Unmarshal-into-slice-of-struct-then-index
// shape.
package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wyrmforge/gearloop/ecs"
	"github.com/wyrmforge/gearloop/proptype"
)

// FieldDecl is one field of a YAML-declared component shape.
type FieldDecl struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"` // a proptype.Registry descriptor name
	Default any    `yaml:"default"`
}

// Declaration is one YAML-declared component shape.
type Declaration struct {
	Name        string      `yaml:"name"`
	Tag         bool        `yaml:"tag"`
	SystemState bool        `yaml:"system_state"`
	Fields      []FieldDecl `yaml:"fields"`
}

type declFile struct {
	Components []Declaration `yaml:"components"`
}

// LoadFile parses a YAML document of component declarations.
func LoadFile(path string) ([]Declaration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	var file declFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", path, err)
	}
	return file.Components, nil
}

// Data is the single Go component type every YAML-declared shape is
// carried in: Kind names the Declaration it conforms to, Values holds
// its field values. Go's generics can't synthesize a new named struct
// type per YAML declaration at runtime, so rather than one
// ecs.RegisterComponent[T] per declared kind, every dynamic shape shares
// this one registered type, and Set.Validate checks that every field
// declared for the kind is present. The types of the values are not
// checked.
type Data struct {
	Kind   string
	Values map[string]any
}

// Register declares schema.Data as a component type on w. Call this
// once; individual Declarations don't need their own registration.
func Register(w *ecs.World, opts ...ecs.Option) (ecs.ComponentTypeID, error) {
	return ecs.RegisterComponent[Data](w, opts...)
}

// Set resolves a slice of Declarations against a proptype.Registry so
// their fields can be validated and defaulted.
type Set struct {
	registry *proptype.Registry
	byName   map[string]Declaration
}

// NewSet builds a Set from decls, validated against reg (proptype.
// Default() if nil).
func NewSet(decls []Declaration, reg *proptype.Registry) (*Set, error) {
	if reg == nil {
		reg = proptype.Default()
	}
	s := &Set{registry: reg, byName: make(map[string]Declaration, len(decls))}
	for _, d := range decls {
		for _, f := range d.Fields {
			if _, ok := reg.Get(f.Type); !ok {
				return nil, fmt.Errorf("schema %s: field %s: unknown property type %q", d.Name, f.Name, f.Type)
			}
		}
		s.byName[d.Name] = d
	}
	return s, nil
}

// NewInstance builds a default-valued Values map for the declared kind.
func (s *Set) NewInstance(kind string) (map[string]any, error) {
	decl, ok := s.byName[kind]
	if !ok {
		return nil, fmt.Errorf("schema: unknown declared component %q", kind)
	}
	values := make(map[string]any, len(decl.Fields))
	for _, f := range decl.Fields {
		if f.Default != nil {
			values[f.Name] = f.Default
			continue
		}
		d, _ := s.registry.Get(f.Type)
		values[f.Name] = d.Default()
	}
	return values, nil
}

// Validate checks that values carries an entry for every field declared
// on kind. It does not check the entries' types.
func (s *Set) Validate(kind string, values map[string]any) error {
	decl, ok := s.byName[kind]
	if !ok {
		return fmt.Errorf("schema: unknown declared component %q", kind)
	}
	for _, f := range decl.Fields {
		if _, ok := values[f.Name]; !ok {
			return fmt.Errorf("schema %s: missing field %s", kind, f.Name)
		}
	}
	return nil
}

// Attach validates values against kind and attaches a Data component
// carrying them to e.
func (s *Set) Attach(e *ecs.Entity, kind string, values map[string]any) error {
	if err := s.Validate(kind, values); err != nil {
		return err
	}
	return ecs.AttachComponent(e, &Data{Kind: kind, Values: values})
}

// Declaration looks up a parsed Declaration by name.
func (s *Set) Declaration(name string) (Declaration, bool) {
	d, ok := s.byName[name]
	return d, ok
}
