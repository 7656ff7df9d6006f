package vireo

import (
	"sync"
	"sync/atomic"
)

// Computed is a lazy cached derivation. The getter is not run at creation;
// it runs on the first Value call and again only after a tracked dependency
// was written. Between invalidations, reads return the cache.
//
// A computed is itself subscribable: effects (and other computeds) that read
// Value re-run when it is invalidated. Invalidation propagates without
// recomputing; the getter runs on the next read, not on write.
type Computed[T any] struct {
	id uint64

	compute func() T

	value   T
	valueMu sync.RWMutex

	// valid is the inverse of the dirty flag: the cache is correct
	// whenever valid is true.
	valid atomic.Bool

	// computing guards against recursive self-reads in the getter.
	computing atomic.Bool

	// deps are the dependency sets the getter joined on its last run.
	deps   []*depSet
	depsMu sync.Mutex
}

// NewComputed creates a computed value from a getter. The getter must be
// pure with respect to reactive state: it reads, never writes.
func NewComputed[T any](compute func() T) *Computed[T] {
	return &Computed[T]{
		id:      nextID(),
		compute: compute,
	}
}

// Value returns the derived value, recomputing only if a dependency changed
// since the last read. Reading subscribes the current computation to this
// computed.
func (c *Computed[T]) Value() T {
	track(c.id, keyValue)
	if !c.valid.Load() {
		c.recompute()
	}
	c.valueMu.RLock()
	value := c.value
	c.valueMu.RUnlock()
	return value
}

// Peek returns the value without subscribing. Still recomputes when dirty.
func (c *Computed[T]) Peek() T {
	if !c.valid.Load() {
		c.recompute()
	}
	c.valueMu.RLock()
	value := c.value
	c.valueMu.RUnlock()
	return value
}

// MarkDirty implements Listener: a dependency was written. The cache is
// invalidated and this computed's own subscribers are notified; the getter
// does not run until the next read.
func (c *Computed[T]) MarkDirty() {
	if c.valid.CompareAndSwap(true, false) {
		trigger(c.id, keyValue)
	}
}

// ID implements Listener.
func (c *Computed[T]) ID() uint64 {
	return c.id
}

// addDep implements depMember.
func (c *Computed[T]) addDep(s *depSet) {
	c.depsMu.Lock()
	defer c.depsMu.Unlock()
	for _, existing := range c.deps {
		if existing == s {
			return
		}
	}
	c.deps = append(c.deps, s)
}

func (c *Computed[T]) recompute() {
	if c.computing.Swap(true) {
		// Circular dependency; keep the stale cache rather than recurse.
		return
	}
	defer c.computing.Store(false)

	c.depsMu.Lock()
	deps := c.deps
	c.deps = nil
	c.depsMu.Unlock()
	for _, s := range deps {
		s.remove(c)
	}

	old := setCurrentListener(c)
	newValue := c.compute()
	setCurrentListener(old)

	c.valueMu.Lock()
	c.value = newValue
	c.valueMu.Unlock()
	c.valid.Store(true)
}
