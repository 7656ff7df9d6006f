package vireo

// Batch groups writes so their notifications fire once, deduplicated, when
// the outermost batch completes. Sync effects are deferred to batch end too;
// batched effects are enqueued once no matter how many of their dependencies
// changed.
//
// Batches nest: notifications only fire when the outermost batch returns.
func Batch(fn func()) {
	tc := currentContext()
	tc.batchDepth++
	defer func() {
		tc.batchDepth--
		if tc.batchDepth == 0 {
			processPendingUpdates(tc)
		}
	}()
	fn()
}

// processPendingUpdates deduplicates the queued listeners by id and
// dispatches each once.
func processPendingUpdates(tc *trackingContext) {
	updates := tc.pendingUpdates
	tc.pendingUpdates = nil
	if len(updates) == 0 {
		return
	}

	seen := make(map[uint64]struct{}, len(updates))
	for _, l := range updates {
		if _, dup := seen[l.ID()]; dup {
			continue
		}
		seen[l.ID()] = struct{}{}
		l.MarkDirty()
	}
}
