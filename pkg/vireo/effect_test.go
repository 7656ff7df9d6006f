package vireo

import "testing"

func TestEffectRunsOnCreate(t *testing.T) {
	ran := false
	e := CreateEffect(func() Cleanup {
		ran = true
		return nil
	})
	defer e.Stop()

	if !ran {
		t.Error("effect should run immediately on creation")
	}
}

func TestEffectLazySkipsInitialRun(t *testing.T) {
	runCount := 0
	e := CreateEffect(func() Cleanup {
		runCount++
		return nil
	}, Lazy())
	defer e.Stop()

	if runCount != 0 {
		t.Errorf("lazy effect should not run at creation, ran %d times", runCount)
	}

	e.Run()
	if runCount != 1 {
		t.Errorf("expected 1 run after manual Run, got %d", runCount)
	}
}

func TestEffectRerunsOnWrite(t *testing.T) {
	state := Reactive(map[string]any{"count": 0}).(*Record)
	runCount := 0

	e := CreateEffect(func() Cleanup {
		_ = state.Get("count")
		runCount++
		return nil
	})
	defer e.Stop()

	state.Set("count", 1)
	Flush()

	if runCount != 2 {
		t.Errorf("expected 2 runs, got %d", runCount)
	}
}

func TestEffectSameValueWriteDoesNotRerun(t *testing.T) {
	state := Reactive(map[string]any{"count": 0}).(*Record)
	runCount := 0

	e := CreateEffect(func() Cleanup {
		_ = state.Get("count")
		runCount++
		return nil
	})
	defer e.Stop()

	state.Set("count", 0)
	Flush()

	if runCount != 1 {
		t.Errorf("writing the same value should not re-run the effect, got %d runs", runCount)
	}
}

func TestEffectBatchesMultipleWrites(t *testing.T) {
	state := Reactive(map[string]any{"a": 1, "b": 2}).(*Record)
	runCount := 0

	e := CreateEffect(func() Cleanup {
		_ = state.Get("a")
		_ = state.Get("b")
		runCount++
		return nil
	})
	defer e.Stop()

	state.Set("a", 10)
	state.Set("b", 20)
	Flush()

	if runCount != 2 {
		t.Errorf("two writes before one flush should produce one re-run, got %d total runs", runCount)
	}
}

func TestEffectDynamicDependencies(t *testing.T) {
	state := Reactive(map[string]any{"flag": true, "a": 1, "b": 2}).(*Record)
	runCount := 0

	e := CreateEffect(func() Cleanup {
		if state.Get("flag").(bool) {
			_ = state.Get("a")
		} else {
			_ = state.Get("b")
		}
		runCount++
		return nil
	})
	defer e.Stop()

	// Only "a" is tracked: a write to "b" must not re-run.
	state.Set("b", 20)
	Flush()
	if runCount != 1 {
		t.Fatalf("write to untracked branch should not re-run, got %d runs", runCount)
	}

	// Switch branches.
	state.Set("flag", false)
	Flush()
	if runCount != 2 {
		t.Fatalf("expected re-run after flag write, got %d runs", runCount)
	}

	// Now "b" is tracked and "a" is not.
	state.Set("a", 10)
	Flush()
	if runCount != 2 {
		t.Errorf("write to abandoned branch should not re-run, got %d runs", runCount)
	}

	state.Set("b", 30)
	Flush()
	if runCount != 3 {
		t.Errorf("write to newly tracked branch should re-run, got %d runs", runCount)
	}
}

func TestEffectStop(t *testing.T) {
	state := Reactive(map[string]any{"count": 0}).(*Record)
	runCount := 0

	e := CreateEffect(func() Cleanup {
		_ = state.Get("count")
		runCount++
		return nil
	})

	e.Stop()
	state.Set("count", 1)
	Flush()

	if runCount != 1 {
		t.Errorf("stopped effect should not re-run, got %d runs", runCount)
	}

	// Manual Run on a stopped effect is a no-op.
	e.Run()
	if runCount != 1 {
		t.Errorf("Run on a stopped effect should be a no-op, got %d runs", runCount)
	}

	// Double stop is safe.
	e.Stop()
}

func TestEffectCleanupRunsBeforeRerunAndOnStop(t *testing.T) {
	state := Reactive(map[string]any{"count": 0}).(*Record)
	var order []string

	e := CreateEffect(func() Cleanup {
		_ = state.Get("count")
		order = append(order, "run")
		return func() {
			order = append(order, "cleanup")
		}
	})

	state.Set("count", 1)
	Flush()
	e.Stop()

	want := []string{"run", "cleanup", "run", "cleanup"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

func TestEffectPauseResume(t *testing.T) {
	state := Reactive(map[string]any{"count": 0}).(*Record)
	runCount := 0

	e := CreateEffect(func() Cleanup {
		_ = state.Get("count")
		runCount++
		return nil
	})
	defer e.Stop()

	e.Pause()
	state.Set("count", 1)
	Flush()
	if runCount != 1 {
		t.Fatalf("paused effect should not re-run, got %d runs", runCount)
	}

	// The trigger was remembered, not lost.
	e.Resume()
	Flush()
	if runCount != 2 {
		t.Errorf("resume should replay the missed trigger, got %d runs", runCount)
	}
}

func TestEffectResumeWithoutMissedTrigger(t *testing.T) {
	runCount := 0
	e := CreateEffect(func() Cleanup {
		runCount++
		return nil
	})
	defer e.Stop()

	e.Pause()
	e.Resume()
	Flush()
	if runCount != 1 {
		t.Errorf("resume without a missed trigger should not re-run, got %d runs", runCount)
	}
}

func TestEffectSyncRunsInline(t *testing.T) {
	state := Reactive(map[string]any{"count": 0}).(*Record)
	runCount := 0

	e := CreateEffect(func() Cleanup {
		_ = state.Get("count")
		runCount++
		return nil
	}, Sync())
	defer e.Stop()

	state.Set("count", 1)
	// No flush: sync effects bypass the scheduler.
	if runCount != 2 {
		t.Errorf("sync effect should re-run inline, got %d runs", runCount)
	}
}

func TestEffectCustomScheduler(t *testing.T) {
	state := Reactive(map[string]any{"count": 0}).(*Record)
	runCount := 0
	var dirty []*Effect

	e := CreateEffect(func() Cleanup {
		_ = state.Get("count")
		runCount++
		return nil
	}, WithScheduler(func(e *Effect) {
		dirty = append(dirty, e)
	}))
	defer e.Stop()

	state.Set("count", 1)
	if runCount != 1 {
		t.Fatalf("custom-scheduled effect should not run until dispatched, got %d runs", runCount)
	}
	if len(dirty) != 1 {
		t.Fatalf("expected 1 dispatch, got %d", len(dirty))
	}

	dirty[0].Run()
	if runCount != 2 {
		t.Errorf("expected 2 runs after manual dispatch, got %d", runCount)
	}
}

func TestEffectSelfTriggerGuard(t *testing.T) {
	state := Reactive(map[string]any{"count": 0}).(*Record)
	runCount := 0

	e := CreateEffect(func() Cleanup {
		n := state.Get("count").(int)
		state.Set("count", n+1)
		runCount++
		return nil
	})
	defer e.Stop()

	if runCount != 1 {
		t.Fatalf("expected 1 run, got %d", runCount)
	}
	if Flush() != 0 {
		t.Error("self-write should not schedule the running effect")
	}

	// An external write triggers exactly one more run.
	state.Set("count", 100)
	Flush()
	if runCount != 2 {
		t.Errorf("expected exactly 2 runs after external write, got %d", runCount)
	}
	Flush()
	if runCount != 2 {
		t.Errorf("self-write during re-run must not recurse, got %d runs", runCount)
	}
}

func TestNestedEffectsRestoreOuterTracking(t *testing.T) {
	state := Reactive(map[string]any{"outer": 0, "inner": 0}).(*Record)
	outerRuns := 0
	innerRuns := 0

	var inner *Effect
	outer := CreateEffect(func() Cleanup {
		if inner == nil {
			inner = CreateEffect(func() Cleanup {
				_ = state.Get("inner")
				innerRuns++
				return nil
			})
		}
		// Read after the nested effect finished: must attribute to outer.
		_ = state.Get("outer")
		outerRuns++
		return nil
	})
	defer outer.Stop()
	defer inner.Stop()

	state.Set("outer", 1)
	Flush()
	if outerRuns != 2 {
		t.Errorf("expected outer effect to re-run, got %d runs", outerRuns)
	}
	if innerRuns != 1 {
		t.Errorf("inner effect should not re-run on outer write, got %d runs", innerRuns)
	}
}

func TestWatch(t *testing.T) {
	count := NewRef(0)
	runCount := 0

	e := Watch(func() {
		_ = count.Get()
		runCount++
	})
	defer e.Stop()

	count.Set(1)
	Flush()
	if runCount != 2 {
		t.Errorf("expected 2 runs, got %d", runCount)
	}
}
