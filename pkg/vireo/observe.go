package vireo

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Observer receives engine events. Implementations must be fast and must not
// touch reactive state; they run inline on the hot path.
//
// Used by the instrument package (Prometheus/OTel) and the inspector.
type Observer interface {
	// FlushStarted fires when a scheduler begins draining, with the number
	// of jobs in the snapshot.
	FlushStarted(queued int)

	// FlushEnded fires when the drain completes.
	FlushEnded(ran int, took time.Duration)

	// EffectRan fires after each effect run.
	EffectRan(id uint64, took time.Duration)

	// Triggered fires after a write notified the subscribers of
	// (target, key).
	Triggered(target uint64, key any, notified int)
}

var (
	observersMu sync.RWMutex
	observers   []Observer
	observing   atomic.Bool
)

// Observe registers an observer and returns a function that removes it.
func Observe(o Observer) (remove func()) {
	observersMu.Lock()
	observers = append(observers, o)
	observing.Store(true)
	observersMu.Unlock()

	return func() {
		observersMu.Lock()
		defer observersMu.Unlock()
		for i, existing := range observers {
			if existing == o {
				observers = append(observers[:i], observers[i+1:]...)
				break
			}
		}
		observing.Store(len(observers) > 0)
	}
}

func emitFlushStarted(queued int) {
	if !observing.Load() {
		return
	}
	observersMu.RLock()
	defer observersMu.RUnlock()
	for _, o := range observers {
		o.FlushStarted(queued)
	}
}

func emitFlushEnded(ran int, took time.Duration) {
	if !observing.Load() {
		return
	}
	observersMu.RLock()
	defer observersMu.RUnlock()
	for _, o := range observers {
		o.FlushEnded(ran, took)
	}
}

func emitEffectRan(id uint64, took time.Duration) {
	if !observing.Load() {
		return
	}
	observersMu.RLock()
	defer observersMu.RUnlock()
	for _, o := range observers {
		o.EffectRan(id, took)
	}
}

func emitTriggered(target uint64, key any, notified int) {
	if !observing.Load() {
		return
	}
	observersMu.RLock()
	defer observersMu.RUnlock()
	for _, o := range observers {
		o.Triggered(target, key, notified)
	}
}

// FormatKey renders a dependency key for diagnostics: property names and
// indices print as themselves, sentinel keys as "@iterate" and "@length".
func FormatKey(key any) string {
	switch k := key.(type) {
	case sentinelKey:
		return k.String()
	case string:
		return k
	default:
		return fmt.Sprintf("%v", key)
	}
}

// GraphEntry describes one live dependency in a snapshot.
type GraphEntry struct {
	Target      uint64 `json:"target"`
	Key         string `json:"key"`
	Subscribers int    `json:"subscribers"`
}

// SnapshotGraph returns the live (target, key) dependencies and their
// subscriber counts, sorted by target then key. Intended for inspection and
// debugging surfaces, not hot paths.
func SnapshotGraph() []GraphEntry {
	graph.mu.Lock()
	entries := make([]GraphEntry, 0, len(graph.targets))
	for target, km := range graph.targets {
		for key, set := range km {
			entries = append(entries, GraphEntry{
				Target:      target,
				Key:         FormatKey(key),
				Subscribers: len(set.snapshot()),
			})
		}
	}
	graph.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Target != entries[j].Target {
			return entries[i].Target < entries[j].Target
		}
		return entries[i].Key < entries[j].Key
	})
	return entries
}
