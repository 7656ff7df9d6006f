package vireo

// Listener is anything that can be notified when a dependency changes.
// Effects and computed values implement it; so can external integrations
// that want to piggyback on dependency tracking.
type Listener interface {
	// MarkDirty notifies the listener that one of its dependencies changed.
	// For effects this schedules a re-run; for computed values it
	// invalidates the cache and propagates to their own subscribers.
	MarkDirty()

	// ID returns a unique identifier for this listener.
	// Used for deduplication and for excluding a computation from its own
	// notification set.
	ID() uint64
}

// Cleanup is a function returned by effect bodies to release resources.
// It runs before the effect re-runs and when the effect is stopped.
type Cleanup func()

// depMember is implemented by listeners that keep a reverse index of the
// dependency sets they belong to, so leaving all of them is O(deps) rather
// than O(graph).
type depMember interface {
	addDep(*depSet)
}
