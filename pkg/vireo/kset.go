package vireo

import "sync"

// Set is the reactive handle for a map[any]struct{} membership target.
// Membership checks track the member as a key; iteration tracks the
// iteration sentinel; Len tracks the size sentinel.
type Set struct {
	id  uint64
	mu  sync.RWMutex
	raw map[any]struct{}
}

// TargetID returns the container's stable id in the dependency graph.
func (s *Set) TargetID() uint64 { return s.id }

// Kind returns KindSet.
func (s *Set) Kind() ContainerKind { return KindSet }

// Has reports membership, tracking (set, member).
func (s *Set) Has(member any) bool {
	s.mu.RLock()
	_, ok := s.raw[member]
	s.mu.RUnlock()

	track(s.id, member)
	return ok
}

// Add inserts member. Adding an existing member triggers nothing; a new
// member triggers its own subscribers plus both sentinels.
func (s *Set) Add(member any) {
	s.mu.Lock()
	_, existed := s.raw[member]
	if !existed {
		s.raw[member] = struct{}{}
	}
	s.mu.Unlock()

	if !existed {
		trigger(s.id, member, keyIterate, keyLength)
	}
}

// Delete removes member, triggering only when it was present.
func (s *Set) Delete(member any) {
	s.mu.Lock()
	_, existed := s.raw[member]
	if existed {
		delete(s.raw, member)
	}
	s.mu.Unlock()

	if existed {
		trigger(s.id, member, keyIterate, keyLength)
	}
}

// Clear empties the target map in place, keeping the handle attached to it.
// Triggers each removed member plus both sentinels; clearing an empty set
// triggers nothing.
func (s *Set) Clear() {
	s.mu.Lock()
	if len(s.raw) == 0 {
		s.mu.Unlock()
		return
	}
	members := make([]any, 0, len(s.raw)+2)
	for m := range s.raw {
		members = append(members, m)
	}
	clear(s.raw)
	s.mu.Unlock()

	members = append(members, keyIterate, keyLength)
	trigger(s.id, members...)
}

// Len returns the member count, tracking the size sentinel.
func (s *Set) Len() int {
	s.mu.RLock()
	n := len(s.raw)
	s.mu.RUnlock()

	track(s.id, keyLength)
	return n
}

// ForEach calls fn for every member, tracking the iteration sentinel.
// Iteration order is unspecified.
func (s *Set) ForEach(fn func(member any) bool) {
	track(s.id, keyIterate)

	s.mu.RLock()
	members := make([]any, 0, len(s.raw))
	for m := range s.raw {
		members = append(members, m)
	}
	s.mu.RUnlock()

	for _, m := range members {
		if !fn(Reactive(m)) {
			return
		}
	}
}

// Values returns the members, tracking the iteration sentinel.
func (s *Set) Values() []any {
	out := make([]any, 0, s.Len())
	s.ForEach(func(m any) bool {
		out = append(out, m)
		return true
	})
	return out
}

func (s *Set) rawMap() map[any]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.raw
}
