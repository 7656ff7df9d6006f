package vireo

import (
	"reflect"
	"sync"
)

// Ref is a single tracked value: the explicit accessor form of a reactive
// property. Get subscribes the current computation; Set notifies subscribers
// when the value actually changed. Subscriptions live in the dependency graph
// under the value sentinel, so refs share the notification discipline of the
// containers and show up in graph snapshots.
type Ref[T any] struct {
	id uint64

	value T
	mu    sync.RWMutex

	// equal overrides the default equality used to gate notifications.
	equal func(T, T) bool
}

// NewRef creates a ref with the given initial value.
func NewRef[T any](initial T) *Ref[T] {
	return &Ref[T]{
		id:    nextID(),
		value: initial,
	}
}

// Get returns the current value and subscribes the current computation.
func (r *Ref[T]) Get() T {
	r.mu.RLock()
	value := r.value
	r.mu.RUnlock()

	track(r.id, keyValue)
	return value
}

// Peek returns the current value without subscribing.
func (r *Ref[T]) Peek() T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value
}

// Set stores value and notifies subscribers if it differs from the current
// value. Writing an equal value notifies nobody.
func (r *Ref[T]) Set(value T) {
	r.mu.Lock()
	changed := !r.equals(r.value, value)
	if changed {
		r.value = value
	}
	r.mu.Unlock()

	if changed {
		trigger(r.id, keyValue)
	}
}

// Update atomically derives the new value from the current one.
func (r *Ref[T]) Update(fn func(T) T) {
	r.mu.Lock()
	newValue := fn(r.value)
	changed := !r.equals(r.value, newValue)
	if changed {
		r.value = newValue
	}
	r.mu.Unlock()

	if changed {
		trigger(r.id, keyValue)
	}
}

// WithEquals configures a custom equality function, for value types where
// reflect.DeepEqual is too expensive or has the wrong semantics.
func (r *Ref[T]) WithEquals(fn func(T, T) bool) *Ref[T] {
	r.equal = fn
	return r
}

// ID returns the unique identifier for this ref.
func (r *Ref[T]) ID() uint64 {
	return r.id
}

func (r *Ref[T]) equals(a, b T) bool {
	if r.equal != nil {
		return r.equal(a, b)
	}
	return defaultEquals(a, b)
}

// defaultEquals uses == for the common comparable types and falls back to
// reflect.DeepEqual for everything else.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return av == any(b).(int)
	case int64:
		return av == any(b).(int64)
	case uint64:
		return av == any(b).(uint64)
	case float64:
		return av == any(b).(float64)
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	default:
		return reflect.DeepEqual(a, b)
	}
}
