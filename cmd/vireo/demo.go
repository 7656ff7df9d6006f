package main

import (
	"time"

	"github.com/vireo-dev/vireo/pkg/vireo"
)

// startDemoWorkload runs a small reactive system so the inspector has live
// state to display. Returns a stop function.
func startDemoWorkload() func() {
	scope := vireo.NewScope()

	state := vireo.Reactive(map[string]any{
		"ticks":   0,
		"label":   "demo",
		"history": []any{},
	}).(*vireo.Record)

	var total *vireo.Computed[int]
	scope.Run(func() {
		total = vireo.NewComputed(func() int {
			n, _ := state.Get("ticks").(int)
			return n * 2
		})
		vireo.Watch(func() {
			_ = total.Value()
			_, _ = state.Get("label"), state.Len()
		})
	})

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				n, _ := state.Get("ticks").(int)
				state.Set("ticks", n+1)
				vireo.Flush()
			}
		}
	}()

	return func() {
		close(done)
		scope.Stop()
	}
}
