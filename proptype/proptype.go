// Package proptype is the registry of primitive property-type descriptors
// used to declare component schemas. Each descriptor is a small vtable —
// default, clone, copy — for one field kind, resolved once at component
// registration time rather than on every field access.
package proptype

// Descriptor describes how a single schema field's value behaves.
type Descriptor struct {
	Name    string
	Default func() any
	Clone   func(v any) any
	Copy    func(dst, src any) any
}

func scalarClone(v any) any { return v }

// Number is the descriptor for numeric fields (stored as float64).
var Number = Descriptor{
	Name:    "number",
	Default: func() any { return float64(0) },
	Clone:   scalarClone,
	Copy:    func(_, src any) any { return src },
}

// Boolean is the descriptor for boolean fields.
var Boolean = Descriptor{
	Name:    "boolean",
	Default: func() any { return false },
	Clone:   scalarClone,
	Copy:    func(_, src any) any { return src },
}

// String is the descriptor for string fields.
var String = Descriptor{
	Name:    "string",
	Default: func() any { return "" },
	Clone:   scalarClone,
	Copy:    func(_, src any) any { return src },
}

// Object is the descriptor for opaque reference fields. Clone is a
// shallow copy of the reference — callers that need deep semantics
// should register a custom Descriptor via CreateType.
var Object = Descriptor{
	Name:    "object",
	Default: func() any { return nil },
	Clone:   scalarClone,
	Copy:    func(_, src any) any { return src },
}

// Array is the descriptor for slice-valued fields. Clone copies the
// backing slice so releasing a pooled instance never aliases another
// instance's elements.
var Array = Descriptor{
	Name:    "array",
	Default: func() any { return []any{} },
	Clone: func(v any) any {
		s, ok := v.([]any)
		if !ok {
			return v
		}
		out := make([]any, len(s))
		copy(out, s)
		return out
	},
	Copy: func(_, src any) any {
		s, ok := src.([]any)
		if !ok {
			return src
		}
		out := make([]any, len(s))
		copy(out, s)
		return out
	},
}

// JSON is the descriptor for arbitrary JSON-shaped values, stored as
// map[string]any (the shape encoding/json.Unmarshal produces for an
// object). Clone performs a shallow key copy.
var JSON = Descriptor{
	Name:    "json",
	Default: func() any { return map[string]any{} },
	Clone: func(v any) any {
		m, ok := v.(map[string]any)
		if !ok {
			return v
		}
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out
	},
	Copy: func(_, src any) any {
		m, ok := src.(map[string]any)
		if !ok {
			return src
		}
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out
	},
}

// CreateType builds a custom Descriptor from caller-supplied
// default/clone/copy functions, for property kinds the built-ins don't
// cover.
func CreateType(name string, def func() any, clone func(any) any, cp func(dst, src any) any) Descriptor {
	return Descriptor{Name: name, Default: def, Clone: clone, Copy: cp}
}

// Valid reports whether d is usable as a schema field descriptor:
// registration requires every field to have a typed descriptor with a
// default, clone, and copy function (spec *schema-invalid* trigger).
func (d Descriptor) Valid() bool {
	return d.Name != "" && d.Default != nil && d.Clone != nil && d.Copy != nil
}

// Registry is a named collection of Descriptors. The zero value is an
// empty registry; Default() returns one pre-populated with the six
// built-ins.
type Registry struct {
	byName map[string]Descriptor
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Descriptor)}
}

// Default returns a Registry seeded with Number, Boolean, String,
// Object, Array, and JSON.
func Default() *Registry {
	r := NewRegistry()
	for _, d := range []Descriptor{Number, Boolean, String, Object, Array, JSON} {
		r.Register(d)
	}
	return r
}

// Register adds or replaces a descriptor by name. Returns false if d is
// not Valid (caller should surface *schema-invalid*).
func (r *Registry) Register(d Descriptor) bool {
	if !d.Valid() {
		return false
	}
	if r.byName == nil {
		r.byName = make(map[string]Descriptor)
	}
	r.byName[d.Name] = d
	return true
}

// Get looks up a descriptor by name.
func (r *Registry) Get(name string) (Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Names returns every registered descriptor name.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.byName))
	for n := range r.byName {
		out = append(out, n)
	}
	return out
}
