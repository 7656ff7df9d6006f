package vireo

import (
	"sync"
	"time"
)

// Scheduler batches effect re-runs. Writes enqueue dirty effects; the host
// drains them by calling Flush at a point of its choosing (end of an event
// handler, after a tick, or manually in tests).
//
// One flush snapshots the pending queue and iterates the snapshot. Jobs
// enqueued while the snapshot is draining land in the next flush, never the
// current one, so a job that re-enqueues itself cannot livelock a flush.
// Jobs run in the order they were first enqueued.
type Scheduler struct {
	mu       sync.Mutex
	queue    []*Effect
	flushing bool
	wake     func()
}

// SchedulerOption configures a Scheduler.
type SchedulerOption interface {
	isSchedulerOption()
	applyScheduler(s *Scheduler)
}

type schedulerOptionFunc func(*Scheduler)

func (f schedulerOptionFunc) isSchedulerOption()          {}
func (f schedulerOptionFunc) applyScheduler(s *Scheduler) { f(s) }

// WithWake installs a callback invoked when work becomes pending on an idle
// scheduler. Host loops use it to learn that a Flush is needed; it must not
// flush synchronously itself.
func WithWake(fn func()) SchedulerOption {
	return schedulerOptionFunc(func(s *Scheduler) {
		s.wake = fn
	})
}

// NewScheduler creates an empty scheduler.
func NewScheduler(opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{}
	for _, opt := range opts {
		opt.applyScheduler(s)
	}
	return s
}

// Schedule enqueues e for the next flush. Safe to use as the target of the
// WithScheduler effect option. The effect's pending flag deduplicates, so an
// effect appears at most once per cycle no matter how many of its
// dependencies were written.
func (s *Scheduler) Schedule(e *Effect) {
	if e.pending.CompareAndSwap(false, true) {
		s.enqueue(e)
	}
}

// enqueue appends e to the pending queue.
func (s *Scheduler) enqueue(e *Effect) {
	s.mu.Lock()
	s.queue = append(s.queue, e)
	first := len(s.queue) == 1 && !s.flushing
	wake := s.wake
	s.mu.Unlock()

	if first && wake != nil {
		wake()
	}
}

// Flush drains the jobs that were pending when it was called. Effects
// stopped after being enqueued are skipped, checked at run time rather than
// trusted from their presence in the queue. Returns the number of jobs run.
func (s *Scheduler) Flush() int {
	s.mu.Lock()
	jobs := s.queue
	s.queue = nil
	s.flushing = true
	s.mu.Unlock()

	start := time.Now()
	emitFlushStarted(len(jobs))

	ran := 0
	for _, job := range jobs {
		if job.stopped.Load() || !job.pending.Load() {
			continue
		}
		job.run()
		ran++
	}

	s.mu.Lock()
	s.flushing = false
	pendingAfter := len(s.queue)
	wake := s.wake
	s.mu.Unlock()

	emitFlushEnded(ran, time.Since(start))

	if pendingAfter > 0 && wake != nil {
		wake()
	}
	return ran
}

// Drain flushes repeatedly until no work is pending. An effect that
// unconditionally re-enqueues itself makes this loop forever; that is an
// application bug, same as an infinite event loop.
func (s *Scheduler) Drain() int {
	total := 0
	for s.Pending() > 0 {
		total += s.Flush()
	}
	return total
}

// OnWake installs or replaces the wake callback after construction.
func (s *Scheduler) OnWake(fn func()) {
	s.mu.Lock()
	s.wake = fn
	s.mu.Unlock()
}

// Pending returns the number of queued jobs.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// defaultScheduler receives every batched effect that was not given its own
// scheduler.
var defaultScheduler = NewScheduler()

// DefaultScheduler returns the scheduler used by batched effects.
func DefaultScheduler() *Scheduler {
	return defaultScheduler
}

// Flush drains the default scheduler once.
func Flush() int {
	return defaultScheduler.Flush()
}

// Drain flushes the default scheduler until it is empty.
func Drain() int {
	return defaultScheduler.Drain()
}
