package vireo

import "sync"

// Map is the reactive handle for a map[any]any target with comparable keys.
// Native Go maps expose no interception point, so every accessor and mutator
// is re-implemented here with explicit track/trigger bookkeeping.
//
// Unlike a Record, iteration over a Map observes values as well as
// membership, so overwriting an existing key also notifies iteration
// subscribers.
type Map struct {
	id  uint64
	mu  sync.RWMutex
	raw map[any]any
}

// TargetID returns the container's stable id in the dependency graph.
func (m *Map) TargetID() uint64 { return m.id }

// Kind returns KindMap.
func (m *Map) Kind() ContainerKind { return KindMap }

// Get returns the value for key, tracking (map, key). Composite values wrap
// lazily on the way out.
func (m *Map) Get(key any) (any, bool) {
	m.mu.RLock()
	v, ok := m.raw[key]
	m.mu.RUnlock()

	track(m.id, key)
	return Reactive(v), ok
}

// Has reports whether key exists, tracking (map, key).
func (m *Map) Has(key any) bool {
	m.mu.RLock()
	_, ok := m.raw[key]
	m.mu.RUnlock()

	track(m.id, key)
	return ok
}

// Set writes key. A new key triggers the key, iteration, and size
// subscribers; overwriting with a changed value triggers the key and
// iteration subscribers. Writing an equal value triggers nothing.
func (m *Map) Set(key, value any) {
	m.mu.Lock()
	old, existed := m.raw[key]
	m.raw[key] = value
	m.mu.Unlock()

	if !existed {
		trigger(m.id, key, keyIterate, keyLength)
	} else if !equalAny(old, value) {
		trigger(m.id, key, keyIterate)
	}
}

// Delete removes key, triggering only when the key existed.
func (m *Map) Delete(key any) {
	m.mu.Lock()
	_, existed := m.raw[key]
	if existed {
		delete(m.raw, key)
	}
	m.mu.Unlock()

	if existed {
		trigger(m.id, key, keyIterate, keyLength)
	}
}

// Clear empties the target map in place, keeping the handle attached to it.
// Triggers each removed key plus both sentinels; clearing an empty map
// triggers nothing.
func (m *Map) Clear() {
	m.mu.Lock()
	if len(m.raw) == 0 {
		m.mu.Unlock()
		return
	}
	keys := make([]any, 0, len(m.raw)+2)
	for k := range m.raw {
		keys = append(keys, k)
	}
	clear(m.raw)
	m.mu.Unlock()

	keys = append(keys, keyIterate, keyLength)
	trigger(m.id, keys...)
}

// Len returns the entry count, tracking the size sentinel.
func (m *Map) Len() int {
	m.mu.RLock()
	n := len(m.raw)
	m.mu.RUnlock()

	track(m.id, keyLength)
	return n
}

// ForEach calls fn for every entry, tracking the iteration sentinel.
// Iteration order is Go map order: unspecified.
func (m *Map) ForEach(fn func(key, value any) bool) {
	track(m.id, keyIterate)

	m.mu.RLock()
	entries := make([][2]any, 0, len(m.raw))
	for k, v := range m.raw {
		entries = append(entries, [2]any{k, v})
	}
	m.mu.RUnlock()

	for _, e := range entries {
		if !fn(e[0], Reactive(e[1])) {
			return
		}
	}
}

// Keys returns the keys, tracking the iteration sentinel.
func (m *Map) Keys() []any {
	track(m.id, keyIterate)

	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]any, 0, len(m.raw))
	for k := range m.raw {
		keys = append(keys, k)
	}
	return keys
}

func (m *Map) rawMap() map[any]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.raw
}
