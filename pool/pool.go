// Package pool implements a free-list object pool for clonable items,
// grounded on the acquire/release idiom in
// lixenwraith-vi-fighter/event/pool.go and .../batch_pool.go but with
// deterministic size accounting sync.Pool can't provide: a pooled
// component store needs exact total/free/used counts.
package pool

import (
	"errors"
	"math"
)

// ErrExhausted is returned by Acquire when the pool is empty and growth
// itself fails.
var ErrExhausted = errors.New("pool: exhausted")

// Pool is a free-list recycler of *T instances cloned from a prototype.
// It is not safe for concurrent use.
type Pool[T any] struct {
	prototype *T
	free      []*T
	used      int
	clone     func(prototype *T) (*T, error)
	reset     func(dst, prototype *T)
}

// New builds a Pool around prototype. clone produces a fresh detached
// instance (defaults to a shallow *T copy when nil); reset copies the
// prototype's field values back onto a released item (defaults to a
// shallow *T copy when nil).
func New[T any](prototype *T, clone func(*T) (*T, error), reset func(dst, prototype *T)) *Pool[T] {
	if clone == nil {
		clone = func(p *T) (*T, error) {
			v := *p
			return &v, nil
		}
	}
	if reset == nil {
		reset = func(dst, p *T) { *dst = *p }
	}
	return &Pool[T]{prototype: prototype, clone: clone, reset: reset}
}

// Acquire pops a free item, expanding the pool first if none are free.
// Growth adds ceil(0.2*count)+1 fresh clones of the prototype; Acquire
// only fails with ErrExhausted when that growth itself fails.
func (p *Pool[T]) Acquire() (*T, error) {
	if len(p.free) == 0 {
		n := int(math.Ceil(0.2*float64(p.TotalSize()))) + 1
		if err := p.Expand(n); err != nil {
			return nil, ErrExhausted
		}
	}
	item := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	p.used++
	return item, nil
}

// Release resets item to the prototype's defaults and returns it to the
// free list. Releasing an item not produced by this pool is undefined.
func (p *Pool[T]) Release(item *T) {
	if item == nil {
		return
	}
	p.reset(item, p.prototype)
	p.free = append(p.free, item)
	if p.used > 0 {
		p.used--
	}
}

// Expand clones the prototype n times and appends the clones to the
// free list.
func (p *Pool[T]) Expand(n int) error {
	if n <= 0 {
		return nil
	}
	fresh := make([]*T, 0, n)
	for i := 0; i < n; i++ {
		item, err := p.clone(p.prototype)
		if err != nil {
			return err
		}
		fresh = append(fresh, item)
	}
	p.free = append(p.free, fresh...)
	return nil
}

// TotalSize returns FreeCount()+UsedCount().
func (p *Pool[T]) TotalSize() int { return len(p.free) + p.used }

// FreeCount returns the number of items available for Acquire.
func (p *Pool[T]) FreeCount() int { return len(p.free) }

// UsedCount returns the number of items currently acquired.
func (p *Pool[T]) UsedCount() int { return p.used }
