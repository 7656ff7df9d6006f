package vireo

import (
	"sort"
	"sync"
)

// List is the reactive handle for an ordered []any target. Index reads track
// per-index dependencies; Len and iteration track the length sentinel.
//
// Bulk mutators (Push, Pop, Shift, Unshift, Insert, RemoveAt, Splice, Sort,
// Reverse) run the native operation with tracking paused, then trigger the
// length sentinel exactly once. A single Push therefore produces one
// notification, not one per index the operation touched internally.
type List struct {
	id    uint64
	mu    sync.RWMutex
	items []any
}

// TargetID returns the container's stable id in the dependency graph.
func (l *List) TargetID() uint64 { return l.id }

// Kind returns KindList.
func (l *List) Kind() ContainerKind { return KindList }

// At returns the element at index i, tracking (list, i). Out-of-range reads
// return nil but still track, so a later growth past i notifies the reader.
func (l *List) At(i int) any {
	l.mu.RLock()
	var v any
	if i >= 0 && i < len(l.items) {
		v = l.items[i]
	}
	l.mu.RUnlock()

	track(l.id, i)
	return Reactive(v)
}

// SetAt writes index i. Within range, a changed value triggers the index's
// subscribers. Past the end, the list grows and both the index and the
// length sentinel trigger, so length- and iteration-dependent computations
// refresh.
func (l *List) SetAt(i int, value any) {
	if i < 0 {
		return
	}

	l.mu.Lock()
	grew := i >= len(l.items)
	var changed bool
	if grew {
		for len(l.items) <= i {
			l.items = append(l.items, nil)
		}
		l.items[i] = value
	} else {
		changed = !equalAny(l.items[i], value)
		if changed {
			l.items[i] = value
		}
	}
	l.mu.Unlock()

	if grew {
		trigger(l.id, i, keyLength)
	} else if changed {
		trigger(l.id, i)
	}
}

// Len returns the length, tracking the length sentinel.
func (l *List) Len() int {
	l.mu.RLock()
	n := len(l.items)
	l.mu.RUnlock()

	track(l.id, keyLength)
	return n
}

// Range calls fn for each element until fn returns false. Iteration tracks
// the length sentinel and every visited index.
func (l *List) Range(fn func(i int, value any) bool) {
	track(l.id, keyLength)
	for i := 0; ; i++ {
		l.mu.RLock()
		if i >= len(l.items) {
			l.mu.RUnlock()
			return
		}
		v := l.items[i]
		l.mu.RUnlock()

		track(l.id, i)
		if !fn(i, Reactive(v)) {
			return
		}
	}
}

// Values returns a wrapped copy of the elements, with the same tracking as
// Range.
func (l *List) Values() []any {
	out := make([]any, 0, l.Len())
	l.Range(func(_ int, v any) bool {
		out = append(out, v)
		return true
	})
	return out
}

// Push appends items and triggers the length sentinel once.
func (l *List) Push(items ...any) {
	l.mutate(func() {
		l.items = append(l.items, items...)
	})
}

// Pop removes and returns the last element. Popping an empty list returns
// nil and triggers nothing.
func (l *List) Pop() any {
	var out any
	ok := false
	l.mutateIf(func() bool {
		if len(l.items) == 0 {
			return false
		}
		out = l.items[len(l.items)-1]
		l.items = l.items[:len(l.items)-1]
		ok = true
		return true
	})
	if !ok {
		return nil
	}
	return out
}

// Shift removes and returns the first element. Shifting an empty list
// returns nil and triggers nothing.
func (l *List) Shift() any {
	var out any
	ok := false
	l.mutateIf(func() bool {
		if len(l.items) == 0 {
			return false
		}
		out = l.items[0]
		l.items = l.items[1:]
		ok = true
		return true
	})
	if !ok {
		return nil
	}
	return out
}

// Unshift prepends items and triggers the length sentinel once.
func (l *List) Unshift(items ...any) {
	l.mutate(func() {
		l.items = append(append(make([]any, 0, len(items)+len(l.items)), items...), l.items...)
	})
}

// Insert inserts value at index i, clamping i into [0, len].
func (l *List) Insert(i int, value any) {
	l.mutate(func() {
		if i < 0 {
			i = 0
		}
		if i >= len(l.items) {
			l.items = append(l.items, value)
			return
		}
		l.items = append(l.items[:i], append([]any{value}, l.items[i:]...)...)
	})
}

// RemoveAt removes the element at index i. Out-of-range indices trigger
// nothing.
func (l *List) RemoveAt(i int) {
	l.mutateIf(func() bool {
		if i < 0 || i >= len(l.items) {
			return false
		}
		l.items = append(l.items[:i], l.items[i+1:]...)
		return true
	})
}

// Splice removes deleteCount elements at start and inserts items in their
// place, clamping like its JavaScript namesake. Returns the removed
// elements, unwrapped.
func (l *List) Splice(start, deleteCount int, items ...any) []any {
	var removed []any
	l.mutate(func() {
		n := len(l.items)
		if start < 0 {
			start += n
			if start < 0 {
				start = 0
			}
		}
		if start > n {
			start = n
		}
		if deleteCount < 0 {
			deleteCount = 0
		}
		if deleteCount > n-start {
			deleteCount = n - start
		}
		removed = append(removed, l.items[start:start+deleteCount]...)
		rest := append([]any(nil), l.items[start+deleteCount:]...)
		l.items = append(append(l.items[:start], items...), rest...)
	})
	return removed
}

// Sort reorders the elements by less and triggers the length sentinel once.
func (l *List) Sort(less func(a, b any) bool) {
	l.mutate(func() {
		sort.SliceStable(l.items, func(i, j int) bool {
			return less(l.items[i], l.items[j])
		})
	})
}

// Reverse reverses the elements in place and triggers the length sentinel
// once.
func (l *List) Reverse() {
	l.mutate(func() {
		for i, j := 0, len(l.items)-1; i < j; i, j = i+1, j-1 {
			l.items[i], l.items[j] = l.items[j], l.items[i]
		}
	})
}

// mutate runs a native bulk operation with tracking paused, then triggers
// the length sentinel once.
func (l *List) mutate(op func()) {
	l.mutateIf(func() bool {
		op()
		return true
	})
}

func (l *List) mutateIf(op func() bool) {
	pauseTracking()
	l.mu.Lock()
	did := op()
	l.mu.Unlock()
	resetTracking()

	if did {
		trigger(l.id, keyLength)
	}
}

func (l *List) rawSlice() []any {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.items
}
