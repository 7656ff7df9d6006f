package vireo

import (
	"sort"
	"sync"
)

// Record is the reactive handle for a string-keyed map[string]any target.
// Reads track per-key dependencies; enumeration tracks the structural
// sentinel, so computations that enumerate keys re-run when the key set
// changes but not when an existing key is overwritten.
type Record struct {
	id  uint64
	mu  sync.RWMutex
	raw map[string]any
}

// TargetID returns the container's stable id in the dependency graph.
func (r *Record) TargetID() uint64 { return r.id }

// Kind returns KindRecord.
func (r *Record) Kind() ContainerKind { return KindRecord }

// Get returns the value for key, tracking (record, key). Composite values
// wrap lazily on the way out.
func (r *Record) Get(key string) any {
	r.mu.RLock()
	v := r.raw[key]
	r.mu.RUnlock()

	track(r.id, key)
	return Reactive(v)
}

// Has reports whether key exists, tracking (record, key).
func (r *Record) Has(key string) bool {
	r.mu.RLock()
	_, ok := r.raw[key]
	r.mu.RUnlock()

	track(r.id, key)
	return ok
}

// Set writes key. A changed value triggers the key's subscribers; a brand
// new key additionally triggers the structural sentinel so enumerating
// computations refresh. Writing an equal value triggers nothing.
func (r *Record) Set(key string, value any) {
	r.mu.Lock()
	old, existed := r.raw[key]
	r.raw[key] = value
	r.mu.Unlock()

	if !existed {
		trigger(r.id, key, keyIterate)
	} else if !equalAny(old, value) {
		trigger(r.id, key)
	}
}

// Delete removes key, triggering only when the key existed.
func (r *Record) Delete(key string) {
	r.mu.Lock()
	_, existed := r.raw[key]
	if existed {
		delete(r.raw, key)
	}
	r.mu.Unlock()

	if existed {
		trigger(r.id, key, keyIterate)
	}
}

// Keys returns the key set in sorted order, tracking the structural
// sentinel.
func (r *Record) Keys() []string {
	r.mu.RLock()
	keys := make([]string, 0, len(r.raw))
	for k := range r.raw {
		keys = append(keys, k)
	}
	r.mu.RUnlock()

	track(r.id, keyIterate)
	sort.Strings(keys)
	return keys
}

// Len returns the number of keys, tracking the structural sentinel.
func (r *Record) Len() int {
	r.mu.RLock()
	n := len(r.raw)
	r.mu.RUnlock()

	track(r.id, keyIterate)
	return n
}

// Range calls fn for each entry in sorted key order until fn returns false.
// Iteration tracks the structural sentinel and every visited key, since the
// caller observes both the key set and the values.
func (r *Record) Range(fn func(key string, value any) bool) {
	track(r.id, keyIterate)
	for _, k := range r.Keys() {
		r.mu.RLock()
		v := r.raw[k]
		r.mu.RUnlock()
		track(r.id, k)
		if !fn(k, Reactive(v)) {
			return
		}
	}
}

func (r *Record) rawMap() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.raw
}
