package ecs

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/wyrmforge/gearloop/pool"
	"github.com/wyrmforge/gearloop/proptype"
)

// ComponentTypeID is a dense, monotonically assigned id for a registered
// component type, used as the bit index into every entity's attached
// bitset and as the key into World.queriesByType.
type ComponentTypeID int

// erasedPool lets registry.go hold a *pool.Pool[T] without the rest of
// the package needing to know T.
type erasedPool interface {
	Acquire() (any, error)
	Release(v any)
	Stats() (total, free, used int)
}

type poolAdapter[T any] struct{ p *pool.Pool[T] }

func (a *poolAdapter[T]) Acquire() (any, error) { return a.p.Acquire() }
func (a *poolAdapter[T]) Release(v any)         { a.p.Release(v.(*T)) }
func (a *poolAdapter[T]) Stats() (int, int, int) {
	return a.p.TotalSize(), a.p.FreeCount(), a.p.UsedCount()
}

// typeInfo is the type-erased registration record for one component
// type. The generic RegisterComponent[T] builds the closures once, at
// registration time, so every other package (entity.go, world.go,
// query.go) can operate on components without a type parameter.
type typeInfo struct {
	id          ComponentTypeID
	rtype       reflect.Type
	name        string
	tag         bool
	systemState bool
	schema      map[string]proptype.Descriptor
	poolRef     erasedPool // nil when pooling is disabled for this type

	acquire    func() (any, error) // fresh *T, pooled or constructed
	applyProps func(instance, props any)
	release    func(instance any)
	cloneInto  func(src any) any
	copyInto   func(dst, src any)
}

type registry struct {
	byType    map[reflect.Type]*typeInfo
	byID      []*typeInfo
	proptypes *proptype.Registry
	log       *zap.Logger
}

func newRegistry(proptypes *proptype.Registry, log *zap.Logger) *registry {
	if proptypes == nil {
		proptypes = proptype.Default()
	}
	return &registry{
		byType:    make(map[reflect.Type]*typeInfo),
		proptypes: proptypes,
		log:       log,
	}
}

func (r *registry) lookup(rt reflect.Type) (*typeInfo, bool) {
	info, ok := r.byType[rt]
	return info, ok
}

// registerConfig collects RegisterComponent options before the type's
// closures are built.
type registerConfig struct {
	tag          bool
	systemState  bool
	poolDisabled bool
	schema       map[string]proptype.Descriptor
	proptypes    *proptype.Registry
}

// Option configures a RegisterComponent[T] call.
type Option func(*registerConfig)

// AsTag marks the component as a marker/tag type (no meaningful fields).
func AsTag() Option { return func(c *registerConfig) { c.tag = true } }

// AsSystemState marks the component as system-state: ghost entities that
// still carry at least one system-state component stay registered (and
// matched by queries for it) after disposal until it too is removed.
func AsSystemState() Option { return func(c *registerConfig) { c.systemState = true } }

// WithoutPool disables pooling for this component type; Acquire/Release
// allocate and discard plain Go values instead.
func WithoutPool() Option { return func(c *registerConfig) { c.poolDisabled = true } }

// WithSchema supplies an explicit field-name -> Descriptor map instead of
// the auto-derived one, required when a field's Go kind is ambiguous
// (e.g. a []byte that should behave as Array rather than Object) or when
// validating against a non-default proptype.Registry.
func WithSchema(schema map[string]proptype.Descriptor) Option {
	return func(c *registerConfig) { c.schema = schema }
}

// WithComponentPropertyRegistry overrides the proptype.Registry used to
// derive or validate the schema.
func WithComponentPropertyRegistry(r *proptype.Registry) Option {
	return func(c *registerConfig) { c.proptypes = r }
}

// RegisterComponent declares T as a component type on w. Re-registering
// an already-known type is a *duplicate-registration* no-op (warns,
// returns the existing id). A struct field whose kind has no resolvable
// proptype.Descriptor is *schema-invalid*.
func RegisterComponent[T any](w *World, opts ...Option) (ComponentTypeID, error) {
	var cfg registerConfig
	for _, o := range opts {
		o(&cfg)
	}
	rt := reflect.TypeOf((*T)(nil)).Elem()
	if existing, ok := w.registry.lookup(rt); ok {
		w.registry.log.Warn("duplicate component registration", zap.String("type", rt.String()))
		return existing.id, nil
	}

	reg := cfg.proptypes
	if reg == nil {
		reg = w.registry.proptypes
	}
	schema := cfg.schema
	var err error
	if schema == nil {
		schema, err = deriveSchema(rt, reg)
	} else {
		err = validateSchema(rt, schema)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrSchemaInvalid, rt.String(), err)
	}

	info := &typeInfo{
		id:          ComponentTypeID(len(w.registry.byID)),
		rtype:       rt,
		name:        rt.String(),
		tag:         cfg.tag,
		systemState: cfg.systemState,
		schema:      schema,
	}
	cloneFn, copyFn := buildCloneCopy[T](schema)
	info.cloneInto = cloneFn
	info.copyInto = copyFn

	newDefault := func() *T {
		p := new(T)
		applyDefaults(p, schema)
		return p
	}
	if !cfg.poolDisabled {
		prototype := newDefault()
		p := pool.New(prototype,
			func(proto *T) (*T, error) {
				cloned := cloneFn(proto).(*T)
				return cloned, nil
			},
			func(dst, proto *T) { copyFn(dst, proto) },
		)
		if w.initialPoolCapacity > 0 {
			if err := p.Expand(w.initialPoolCapacity); err != nil {
				return 0, fmt.Errorf("expand pool for %s: %w", rt.String(), err)
			}
		}
		info.poolRef = &poolAdapter[T]{p: p}
		info.acquire = func() (any, error) { return p.Acquire() }
		info.release = func(v any) { p.Release(v.(*T)) }
	} else {
		info.acquire = func() (any, error) { return newDefault(), nil }
		info.release = func(any) {}
	}
	info.applyProps = func(instance, props any) {
		copyFn(instance.(*T), props.(*T))
	}

	w.registry.byType[rt] = info
	w.registry.byID = append(w.registry.byID, info)
	return info.id, nil
}

// resolve returns the typeInfo for T, auto-registering it with a
// *missing-registration* warning if it hasn't been declared yet —
// spec.md §7: "operation still proceeds."
func resolve[T any](w *World) (*typeInfo, error) {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	if info, ok := w.registry.lookup(rt); ok {
		return info, nil
	}
	w.registry.log.Warn("component used without prior registration", zap.String("type", rt.String()))
	id, err := RegisterComponent[T](w)
	if err != nil {
		return nil, err
	}
	return w.registry.byID[id], nil
}

// resolveKnown looks up T without auto-registering, for operations that
// are no-ops on an unknown type (e.g. removing a component that was
// never declared, so it can't possibly be attached).
func resolveKnown[T any](w *World) (*typeInfo, bool) {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	info, ok := w.registry.lookup(rt)
	return info, ok
}

func kindToDescriptorName(k reflect.Kind) string {
	switch k {
	case reflect.Bool:
		return "boolean"
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map:
		return "json"
	case reflect.Struct, reflect.Ptr, reflect.Interface:
		return "object"
	default:
		return ""
	}
}

func deriveSchema(rt reflect.Type, reg *proptype.Registry) (map[string]proptype.Descriptor, error) {
	if rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("component type must be a struct, got %s", rt.Kind())
	}
	schema := make(map[string]proptype.Descriptor, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Tag.Get("ecs")
		if name == "" {
			name = kindToDescriptorName(f.Type.Kind())
		}
		d, ok := reg.Get(name)
		if !ok || !d.Valid() {
			return nil, fmt.Errorf("field %s (%s): no valid descriptor %q", f.Name, f.Type, name)
		}
		schema[f.Name] = d
	}
	return schema, nil
}

func validateSchema(rt reflect.Type, schema map[string]proptype.Descriptor) error {
	if rt.Kind() != reflect.Struct {
		return fmt.Errorf("component type must be a struct, got %s", rt.Kind())
	}
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		d, ok := schema[f.Name]
		if !ok || !d.Valid() {
			return fmt.Errorf("field %s: missing or invalid descriptor in supplied schema", f.Name)
		}
	}
	return nil
}

// buildCloneCopy generates reflect-based clone/copy closures for *T.
// Value-kind fields (numbers, strings, bools, nested structs passed by
// value) are plain reflect.Value.Set — Go's own value semantics already
// give them a correct, allocation-cheap clone. Reference-kind fields
// (slices, maps) are round-tripped through the field's proptype
// Descriptor, since only the descriptor vtable knows how to deep-copy
// them without aliasing the source.
func buildCloneCopy[T any](schema map[string]proptype.Descriptor) (clone func(any) any, cp func(dst, src any)) {
	clone = func(v any) any {
		src := v.(*T)
		dst := new(T)
		srcVal := reflect.ValueOf(src).Elem()
		dstVal := reflect.ValueOf(dst).Elem()
		rt := srcVal.Type()
		for i := 0; i < rt.NumField(); i++ {
			f := rt.Field(i)
			if !f.IsExported() {
				continue
			}
			sf, df := srcVal.Field(i), dstVal.Field(i)
			switch f.Type.Kind() {
			case reflect.Slice, reflect.Map:
				if d, ok := schema[f.Name]; ok {
					if cloned := d.Clone(sf.Interface()); cloned != nil {
						if cv := reflect.ValueOf(cloned); cv.Type().AssignableTo(f.Type) {
							df.Set(cv)
							continue
						}
					}
				}
				df.Set(sf)
			default:
				df.Set(sf)
			}
		}
		return dst
	}
	cp = func(dstAny, srcAny any) {
		dst := dstAny.(*T)
		src := srcAny.(*T)
		dstVal := reflect.ValueOf(dst).Elem()
		srcVal := reflect.ValueOf(src).Elem()
		rt := dstVal.Type()
		for i := 0; i < rt.NumField(); i++ {
			f := rt.Field(i)
			if !f.IsExported() {
				continue
			}
			sf, df := srcVal.Field(i), dstVal.Field(i)
			switch f.Type.Kind() {
			case reflect.Slice, reflect.Map:
				if d, ok := schema[f.Name]; ok {
					if copied := d.Copy(df.Interface(), sf.Interface()); copied != nil {
						if cv := reflect.ValueOf(copied); cv.Type().AssignableTo(f.Type) {
							df.Set(cv)
							continue
						}
					}
				}
				df.Set(sf)
			default:
				df.Set(sf)
			}
		}
	}
	return clone, cp
}

func applyDefaults[T any](proto *T, schema map[string]proptype.Descriptor) {
	v := reflect.ValueOf(proto).Elem()
	rt := v.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		d, ok := schema[f.Name]
		if !ok {
			continue
		}
		def := d.Default()
		if def == nil {
			continue
		}
		dv := reflect.ValueOf(def)
		if dv.Type().ConvertibleTo(f.Type) {
			v.Field(i).Set(dv.Convert(f.Type))
		}
	}
}
