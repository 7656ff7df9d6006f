package vireo

import (
	"sync"
	"sync/atomic"
	"time"
)

// Effect is a re-runnable computation. It runs once at creation (unless
// lazy), re-runs whenever a tracked dependency is written, and stops
// permanently when Stop is called.
//
// The body may return a Cleanup that runs before the next re-run and when
// the effect stops.
type Effect struct {
	id uint64

	fn      func() Cleanup
	cleanup Cleanup

	// deps are the dependency sets this effect currently belongs to.
	// Cleared and rebuilt on every run, so reads that disappeared from
	// the body stop being tracked.
	deps   []*depSet
	depsMu sync.Mutex

	scope *Scope

	// sched, when set, receives the effect instead of the default
	// scheduler. syncRun bypasses scheduling entirely.
	sched   func(*Effect)
	syncRun bool
	lazy    bool

	pending atomic.Bool
	paused  atomic.Bool
	missed  atomic.Bool
	stopped atomic.Bool
}

// EffectOption configures an Effect at creation.
type EffectOption interface {
	isEffectOption()
	applyEffect(e *Effect)
}

type effectOptionFunc func(*Effect)

func (f effectOptionFunc) isEffectOption()       {}
func (f effectOptionFunc) applyEffect(e *Effect) { f(e) }

// Lazy skips the initial run. The effect tracks nothing until Run is called.
func Lazy() EffectOption {
	return effectOptionFunc(func(e *Effect) {
		e.lazy = true
	})
}

// Sync makes the effect re-run inline at write time instead of going through
// a scheduler. Inside a Batch the re-run is still deferred to batch end.
func Sync() EffectOption {
	return effectOptionFunc(func(e *Effect) {
		e.syncRun = true
	})
}

// WithScheduler overrides how the effect is dispatched when a dependency is
// written. The function receives the dirty effect; it decides when Run is
// called. (*Scheduler).Schedule is a valid target.
func WithScheduler(fn func(*Effect)) EffectOption {
	return effectOptionFunc(func(e *Effect) {
		e.sched = fn
	})
}

// CreateEffect creates an effect and, unless Lazy was given, runs it once
// synchronously. The effect registers with the active scope, if any, and is
// stopped when that scope stops.
func CreateEffect(fn func() Cleanup, opts ...EffectOption) *Effect {
	e := &Effect{
		id: nextID(),
		fn: fn,
	}
	for _, opt := range opts {
		opt.applyEffect(e)
	}

	if scope := currentScope(); scope != nil {
		e.scope = scope
		scope.registerEffect(e)
	}

	if !e.lazy {
		e.run()
	}
	return e
}

// Watch is a convenience wrapper for effect bodies with nothing to clean up.
func Watch(fn func(), opts ...EffectOption) *Effect {
	return CreateEffect(func() Cleanup {
		fn()
		return nil
	}, opts...)
}

// ID implements Listener.
func (e *Effect) ID() uint64 {
	return e.id
}

// MarkDirty implements Listener. A trigger arriving while the effect is
// paused is remembered and replayed on Resume, not lost.
func (e *Effect) MarkDirty() {
	if e.stopped.Load() {
		return
	}
	if e.paused.Load() {
		e.missed.Store(true)
		return
	}
	switch {
	case e.syncRun:
		e.run()
	case e.sched != nil:
		e.sched(e)
	default:
		defaultScheduler.Schedule(e)
	}
}

// Run executes the effect body, re-collecting dependencies. A no-op once the
// effect is stopped, even when invoked manually.
func (e *Effect) Run() {
	e.run()
}

func (e *Effect) run() {
	if e.stopped.Load() {
		return
	}
	if e.paused.Load() {
		// Reached the front of a flush while paused: remember, replay on
		// Resume.
		e.missed.Store(true)
		e.pending.Store(false)
		return
	}
	e.pending.Store(false)

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	// Leave every dependency set from the previous run; the body re-adds
	// exactly what it still reads.
	e.clearDeps()

	old := setCurrentListener(e)
	start := time.Now()
	e.cleanup = e.fn()
	setCurrentListener(old)

	emitEffectRan(e.id, time.Since(start))
}

// Pause suspends re-runs without detaching dependencies.
func (e *Effect) Pause() {
	e.paused.Store(true)
}

// Resume lifts a Pause. If a dependency was written while paused, the effect
// is dispatched once.
func (e *Effect) Resume() {
	if !e.paused.Swap(false) {
		return
	}
	if e.missed.Swap(false) {
		e.MarkDirty()
	}
}

// Stop deactivates the effect, runs its cleanup, and removes it from every
// dependency set it belongs to. Idempotent. A stopped effect never runs
// again and is never re-added to a dependency set.
func (e *Effect) Stop() {
	if e.stopped.Swap(true) {
		return
	}
	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}
	e.clearDeps()
}

// IsStopped reports whether Stop was called.
func (e *Effect) IsStopped() bool {
	return e.stopped.Load()
}

// addDep implements depMember.
func (e *Effect) addDep(s *depSet) {
	e.depsMu.Lock()
	defer e.depsMu.Unlock()
	for _, existing := range e.deps {
		if existing == s {
			return
		}
	}
	e.deps = append(e.deps, s)
}

func (e *Effect) clearDeps() {
	e.depsMu.Lock()
	deps := e.deps
	e.deps = nil
	e.depsMu.Unlock()

	for _, s := range deps {
		s.remove(e)
	}
}
