package vireo

import (
	"sync"

	"github.com/petermattis/goid"
)

// trackingContext holds the reactive state for one goroutine. Each goroutine
// gets its own context so computations on different goroutines track
// independently without locking a process-wide pointer.
type trackingContext struct {
	// listener is the computation currently collecting dependencies.
	// nil means reads do not create subscriptions.
	listener Listener

	// scope is the scope that newly created effects and cleanups attach to.
	scope *Scope

	// disableDepth suppresses tracking while > 0. Used around bulk native
	// operations on raw containers to avoid recording spurious dependencies.
	disableDepth int

	// batchDepth tracks nested Batch calls. While > 0, notifications are
	// queued instead of dispatched.
	batchDepth int

	// pendingUpdates accumulates listeners to notify when the outermost
	// batch completes. Deduplicated by id before notification.
	pendingUpdates []Listener
}

// trackingContexts maps goroutine id -> *trackingContext.
var trackingContexts sync.Map

func currentContext() *trackingContext {
	gid := goid.Get()
	if tc, ok := trackingContexts.Load(gid); ok {
		return tc.(*trackingContext)
	}
	tc := &trackingContext{}
	trackingContexts.Store(gid, tc)
	return tc
}

// currentListener returns the computation currently collecting dependencies,
// or nil when nothing is tracking.
func currentListener() Listener {
	return currentContext().listener
}

// setCurrentListener installs l as the tracking computation and returns the
// previous one so it can be restored. Nested computations save and restore,
// which gives stack semantics without an explicit stack.
func setCurrentListener(l Listener) Listener {
	tc := currentContext()
	old := tc.listener
	tc.listener = l
	return old
}

func currentScope() *Scope {
	return currentContext().scope
}

func setCurrentScope(s *Scope) *Scope {
	tc := currentContext()
	old := tc.scope
	tc.scope = s
	return old
}

// pauseTracking suppresses dependency collection until the matching
// resetTracking call. Calls nest.
func pauseTracking() {
	currentContext().disableDepth++
}

func resetTracking() {
	tc := currentContext()
	if tc.disableDepth > 0 {
		tc.disableDepth--
	}
}

// trackingEnabled reports whether reads should record dependencies.
func trackingEnabled() bool {
	tc := currentContext()
	return tc.listener != nil && tc.disableDepth == 0
}

// Untracked runs fn without recording any dependencies for the current
// computation. Reads inside fn behave like Peek.
func Untracked(fn func()) {
	old := setCurrentListener(nil)
	defer setCurrentListener(old)
	fn()
}

// WithListener runs fn with l installed as the tracking computation.
// Exposed for integrations that implement Listener themselves.
func WithListener(l Listener, fn func()) {
	old := setCurrentListener(l)
	defer setCurrentListener(old)
	fn()
}
