package ecs

import "errors"

var (
	// ErrSchemaInvalid is returned when a component type's fields cannot
	// all be resolved to a valid proptype.Descriptor.
	ErrSchemaInvalid = errors.New("ecs: component schema invalid")
	// ErrEmptyQuery is returned by GetQuery when a spec has no Include
	// elements — a query needs at least one type to match against.
	ErrEmptyQuery = errors.New("ecs: query has no include types")
	// ErrMutabilityViolation documents the spec's read-only-view write
	// error kind. GetComponent returns a value copy rather than a guarded
	// pointer, so this can never actually be raised by this package; it's
	// kept for callers layering their own guarded views on top of
	// GetMutableComponent.
	ErrMutabilityViolation = errors.New("ecs: write attempted through read-only component view")
)
