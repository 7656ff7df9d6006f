// Package vireo provides a fine-grained reactivity engine for plain Go data.
//
// Reading reactive state during a tracked computation (an effect run or a
// computed evaluation) automatically subscribes that computation to the state
// it read. Writing the state later re-runs exactly the computations that
// depend on it, batched through a scheduler.
//
// # Core Types
//
// Ref[T] is a single tracked value:
//
//	count := NewRef(0)
//	value := count.Get() // read (subscribes the current computation)
//	count.Set(5)         // write (notifies subscribers)
//
// Reactive wraps composite values (records, lists, maps, sets) in handles
// whose accessors perform per-key dependency tracking:
//
//	state := Reactive(map[string]any{"count": 0}).(*Record)
//	CreateEffect(func() Cleanup {
//	    fmt.Println("count is", state.Get("count"))
//	    return nil
//	})
//	state.Set("count", 1) // effect re-runs on the next Flush
//
// Computed[T] is a lazy cached derivation, and Scope groups effects and
// cleanups for bulk disposal.
//
// # Scheduling
//
// Writes do not re-run batched effects inline; they enqueue them on a
// scheduler that is drained by Flush at a point the host chooses (end of an
// event-loop turn, after a tick, or manually in tests). Effects created with
// Sync() bypass the scheduler and re-run inline at write time.
//
// # Thread Safety
//
// All primitives are safe for concurrent use. The tracking context is
// per-goroutine, so computations running on different goroutines track
// independently.
package vireo
