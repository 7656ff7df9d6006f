package vireo

import (
	"reflect"
	"sync"
)

// ContainerKind identifies the shape of a reactive container. The kind is
// selected once at wrap time; each kind owns its own accessor surface.
type ContainerKind uint8

const (
	KindRecord ContainerKind = iota + 1
	KindList
	KindMap
	KindSet
)

func (k ContainerKind) String() string {
	switch k {
	case KindRecord:
		return "record"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindSet:
		return "set"
	default:
		return "unknown"
	}
}

// proxyCache maps a raw container's identity to its handle, so the same
// target always yields the same handle. Maps are keyed by their header
// pointer; slices by (data pointer, length), since distinct slices can share
// a backing array. Entries are never evicted; a long-lived process wrapping
// unbounded short-lived containers should hold handles instead of
// re-wrapping raw values.
var proxyCache sync.Map

// sliceKey is the cache identity of a slice target.
type sliceKey struct {
	ptr uintptr
	len int
}

// Reactive wraps a composite value in a tracked handle:
//
//	map[string]any      -> *Record
//	[]any               -> *List
//	map[any]any         -> *Map
//	map[any]struct{}    -> *Set
//
// Wrapping is idempotent (a handle passes through unchanged) and
// identity-stable (the same raw container yields the same handle). Any other
// value is returned unchanged.
//
// Nested composites are not wrapped eagerly; they wrap on first read.
func Reactive(v any) any {
	switch t := v.(type) {
	case *Record, *List, *Map, *Set:
		return v
	case map[string]any:
		if t == nil {
			return v
		}
		return wrapCached(reflect.ValueOf(t).Pointer(), func() any {
			return &Record{id: nextID(), raw: t}
		})
	case []any:
		ptr := reflect.ValueOf(t).Pointer()
		if ptr == 0 || cap(t) == 0 {
			// Nil and zero-cap slices share a data pointer, so there is
			// no stable identity to cache under.
			return &List{id: nextID(), items: t}
		}
		return wrapCached(sliceKey{ptr: ptr, len: len(t)}, func() any {
			return &List{id: nextID(), items: t}
		})
	case map[any]any:
		if t == nil {
			return v
		}
		return wrapCached(reflect.ValueOf(t).Pointer(), func() any {
			return &Map{id: nextID(), raw: t}
		})
	case map[any]struct{}:
		if t == nil {
			return v
		}
		return wrapCached(reflect.ValueOf(t).Pointer(), func() any {
			return &Set{id: nextID(), raw: t}
		})
	default:
		return v
	}
}

func wrapCached(key any, create func() any) any {
	if h, ok := proxyCache.Load(key); ok {
		return h
	}
	h, _ := proxyCache.LoadOrStore(key, create())
	return h
}

// IsReactive reports whether v is a reactive handle.
func IsReactive(v any) bool {
	switch v.(type) {
	case *Record, *List, *Map, *Set:
		return true
	default:
		return false
	}
}

// Raw returns the raw container underneath a handle, or v itself when it is
// not a handle. The raw view is shallow: values written through a handle are
// stored as given, so nested handles stay handles.
func Raw(v any) any {
	switch t := v.(type) {
	case *Record:
		return t.rawMap()
	case *List:
		return t.rawSlice()
	case *Map:
		return t.rawMap()
	case *Set:
		return t.rawMap()
	default:
		return v
	}
}

// equalAny compares a write's new value to the old one: == for comparable
// values, reference identity for maps, slices, and funcs. Composites compare
// by identity, not structure, matching "reference inequality" semantics.
func equalAny(a, b any) bool {
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !ra.IsValid() || !rb.IsValid() {
		return ra.IsValid() == rb.IsValid()
	}
	if ra.Type() != rb.Type() {
		return false
	}
	switch ra.Kind() {
	case reflect.Map, reflect.Slice, reflect.Func:
		return ra.Pointer() == rb.Pointer() && (ra.Kind() != reflect.Slice || ra.Len() == rb.Len())
	default:
		if ra.Type().Comparable() {
			return a == b
		}
		return false
	}
}
