package vireo

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Scope groups effects and cleanup callbacks for bulk disposal. Scopes form
// a tree: a scope created while another scope is running attaches to it as a
// child, and stopping a scope transitively stops all descendants exactly
// once.
type Scope struct {
	id uint64

	parent *Scope

	children   []*Scope
	childrenMu sync.Mutex

	effects   []*Effect
	effectsMu sync.Mutex

	cleanups   []func()
	cleanupsMu sync.Mutex

	stopped atomic.Bool
}

// NewScope creates a scope, attached as a child of the currently active
// scope if there is one.
func NewScope() *Scope {
	s := &Scope{
		id:     nextID(),
		parent: currentScope(),
	}
	if s.parent != nil {
		s.parent.addChild(s)
	}
	return s
}

// ID returns the unique identifier for this scope.
func (s *Scope) ID() uint64 {
	return s.id
}

// Run executes fn with this scope active: effects created and cleanups
// registered inside fn attach to this scope. The previous active scope is
// restored afterward, so Run nests.
//
// Calling Run on a stopped scope logs a warning and still executes fn, but
// nothing created inside is captured.
func (s *Scope) Run(fn func()) {
	if s.stopped.Load() {
		slog.Warn("vireo: Run called on a stopped scope; effects will not be captured",
			"scope", s.id)
		old := setCurrentScope(nil)
		defer setCurrentScope(old)
		fn()
		return
	}
	old := setCurrentScope(s)
	defer setCurrentScope(old)
	fn()
}

// IsStopped reports whether Stop was called.
func (s *Scope) IsStopped() bool {
	return s.stopped.Load()
}

// OnCleanup registers fn to run when this scope stops. A cleanup registered
// on an already-stopped scope runs immediately.
func (s *Scope) OnCleanup(fn func()) {
	if s.stopped.Load() {
		fn()
		return
	}
	s.cleanupsMu.Lock()
	defer s.cleanupsMu.Unlock()
	s.cleanups = append(s.cleanups, fn)
}

// Pause suspends every owned effect and descendant scope. Triggers arriving
// while paused are remembered and replayed on Resume.
func (s *Scope) Pause() {
	s.effectsMu.Lock()
	effects := append([]*Effect(nil), s.effects...)
	s.effectsMu.Unlock()
	for _, e := range effects {
		e.Pause()
	}

	s.childrenMu.Lock()
	children := append([]*Scope(nil), s.children...)
	s.childrenMu.Unlock()
	for _, child := range children {
		child.Pause()
	}
}

// Resume lifts a Pause on every owned effect and descendant scope.
func (s *Scope) Resume() {
	s.effectsMu.Lock()
	effects := append([]*Effect(nil), s.effects...)
	s.effectsMu.Unlock()
	for _, e := range effects {
		e.Resume()
	}

	s.childrenMu.Lock()
	children := append([]*Scope(nil), s.children...)
	s.childrenMu.Unlock()
	for _, child := range children {
		child.Resume()
	}
}

// Stop stops every owned effect, runs cleanups in registration order, stops
// child scopes, then detaches from the parent so it retains no stale
// references. Idempotent.
func (s *Scope) Stop() {
	if s.stopped.Swap(true) {
		return
	}

	s.effectsMu.Lock()
	effects := s.effects
	s.effects = nil
	s.effectsMu.Unlock()
	for _, e := range effects {
		e.Stop()
	}

	s.cleanupsMu.Lock()
	cleanups := s.cleanups
	s.cleanups = nil
	s.cleanupsMu.Unlock()
	for _, fn := range cleanups {
		fn()
	}

	s.childrenMu.Lock()
	children := s.children
	s.children = nil
	s.childrenMu.Unlock()
	for _, child := range children {
		child.Stop()
	}

	if s.parent != nil {
		s.parent.removeChild(s)
		s.parent = nil
	}
}

func (s *Scope) addChild(child *Scope) {
	s.childrenMu.Lock()
	defer s.childrenMu.Unlock()
	s.children = append(s.children, child)
}

func (s *Scope) removeChild(child *Scope) {
	s.childrenMu.Lock()
	defer s.childrenMu.Unlock()
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}

func (s *Scope) registerEffect(e *Effect) {
	if s.stopped.Load() {
		return
	}
	s.effectsMu.Lock()
	defer s.effectsMu.Unlock()
	s.effects = append(s.effects, e)
}

// OnScopeDispose registers fn with the currently active scope. Outside any
// active scope the cleanup cannot fire, so it is dropped with a warning.
func OnScopeDispose(fn func()) {
	if s := currentScope(); s != nil && !s.stopped.Load() {
		s.OnCleanup(fn)
		return
	}
	slog.Warn("vireo: OnScopeDispose called outside an active scope; cleanup dropped")
}
