package vireo

import "sync"

// sentinelKey is a synthetic dependency key for whole-container changes that
// per-key tracking cannot express.
type sentinelKey uint8

const (
	// keyIterate represents structural iteration: the set of keys or
	// members of a container. Subscribers re-run when keys are added or
	// removed.
	keyIterate sentinelKey = iota

	// keyLength represents the size of an ordered or keyed container.
	keyLength

	// keyValue represents the single value of a Ref or Computed, which have
	// no per-key structure.
	keyValue
)

func (k sentinelKey) String() string {
	switch k {
	case keyIterate:
		return "@iterate"
	case keyLength:
		return "@length"
	case keyValue:
		return "@value"
	default:
		return "@unknown"
	}
}

// depSet is a set of listeners subscribed to one dependency.
type depSet struct {
	mu        sync.Mutex
	listeners []Listener
}

// add subscribes l, deduplicating by id. Listeners that keep a reverse index
// of their memberships are told about the set so they can leave in O(deps).
func (s *depSet) add(l Listener) {
	if l == nil {
		return
	}
	s.mu.Lock()
	lid := l.ID()
	for _, existing := range s.listeners {
		if existing.ID() == lid {
			s.mu.Unlock()
			return
		}
	}
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()

	if m, ok := l.(depMember); ok {
		m.addDep(s)
	}
}

// remove unsubscribes l. Order is not preserved; notification order across
// re-runs is governed by the scheduler, not the set.
func (s *depSet) remove(l Listener) {
	if l == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	lid := l.ID()
	for i, existing := range s.listeners {
		if existing.ID() == lid {
			s.listeners[i] = s.listeners[len(s.listeners)-1]
			s.listeners = s.listeners[:len(s.listeners)-1]
			return
		}
	}
}

// snapshot copies the subscriber list so notification never holds the lock.
func (s *depSet) snapshot() []Listener {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.listeners) == 0 {
		return nil
	}
	out := make([]Listener, len(s.listeners))
	copy(out, s.listeners)
	return out
}

// dependencyGraph maps container id -> dependency key -> subscriber set.
// Keys are property names (string), indices (int), map keys, set members,
// or one of the sentinel keys.
type dependencyGraph struct {
	mu      sync.Mutex
	targets map[uint64]map[any]*depSet
}

var graph = &dependencyGraph{targets: make(map[uint64]map[any]*depSet)}

// track records that the currently running computation read (target, key).
// No-op when nothing is tracking or tracking is paused.
func track(target uint64, key any) {
	if !trackingEnabled() {
		return
	}
	l := currentContext().listener

	graph.mu.Lock()
	keys := graph.targets[target]
	if keys == nil {
		keys = make(map[any]*depSet)
		graph.targets[target] = keys
	}
	set := keys[key]
	if set == nil {
		set = &depSet{}
		keys[key] = set
	}
	graph.mu.Unlock()

	set.add(l)
}

// trigger notifies the subscribers of (target, key) for every given key,
// deduplicated across keys and excluding the computation currently running
// (an effect never re-triggers itself synchronously). Container handlers
// pass the full key set to notify, including sentinel keys where their
// semantics require it; a sequence write past the current length passes both
// the index and keyLength.
//
// Empty subscriber sets discovered along the way are pruned.
func trigger(target uint64, keys ...any) {
	graph.mu.Lock()
	km := graph.targets[target]
	if km == nil {
		graph.mu.Unlock()
		return
	}
	var candidates []Listener
	seen := make(map[uint64]struct{})
	for _, key := range keys {
		set := km[key]
		if set == nil {
			continue
		}
		snap := set.snapshot()
		if len(snap) == 0 {
			delete(km, key)
			continue
		}
		for _, l := range snap {
			if _, dup := seen[l.ID()]; dup {
				continue
			}
			seen[l.ID()] = struct{}{}
			candidates = append(candidates, l)
		}
	}
	if len(km) == 0 {
		delete(graph.targets, target)
	}
	graph.mu.Unlock()

	dispatch(candidates)

	if observing.Load() {
		for _, key := range keys {
			emitTriggered(target, key, len(candidates))
		}
	}
}

// dispatch hands a candidate set to its listeners, excluding the computation
// currently running and deferring to the batch queue when inside a Batch.
func dispatch(candidates []Listener) {
	if len(candidates) == 0 {
		return
	}
	tc := currentContext()
	var exclude uint64
	if tc.listener != nil {
		exclude = tc.listener.ID()
	}
	for _, l := range candidates {
		if exclude != 0 && l.ID() == exclude {
			continue
		}
		if tc.batchDepth > 0 {
			tc.pendingUpdates = append(tc.pendingUpdates, l)
			continue
		}
		l.MarkDirty()
	}
}
