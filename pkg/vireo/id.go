package vireo

import "sync/atomic"

// globalIDCounter is the source of unique ids for every reactive primitive
// and tracked container. Ids are monotonically increasing and never reused,
// which lets side tables (the dependency graph, the proxy cache, observers)
// reference containers without holding on to object identity.
var globalIDCounter uint64

// nextID returns the next unique id.
func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}
