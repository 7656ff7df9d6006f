package vireo

import "testing"

func TestReactiveIdentityStable(t *testing.T) {
	target := map[string]any{"count": 0}

	a := Reactive(target)
	b := Reactive(target)
	if a != b {
		t.Error("wrapping the same target twice should yield the same handle")
	}
}

func TestReactiveIdempotent(t *testing.T) {
	target := map[string]any{"count": 0}

	a := Reactive(target)
	if Reactive(a) != a {
		t.Error("wrapping a handle should return the handle unchanged")
	}
}

func TestReactivePassThrough(t *testing.T) {
	for _, v := range []any{1, "hello", 3.14, true, nil} {
		if Reactive(v) != v {
			t.Errorf("non-composite %v should pass through unchanged", v)
		}
	}
}

func TestReactiveListIdentity(t *testing.T) {
	target := []any{1, 2, 3}

	a := Reactive(target)
	b := Reactive(target)
	if a != b {
		t.Error("wrapping the same slice twice should yield the same handle")
	}
	if _, ok := a.(*List); !ok {
		t.Errorf("expected *List, got %T", a)
	}
}

func TestReactiveListPrefixNotConflated(t *testing.T) {
	base := []any{1, 2, 3}

	full := Reactive(base).(*List)
	prefix := Reactive(base[:1]).(*List)
	if full == prefix {
		t.Fatal("a prefix slice shares the data pointer but is a different target")
	}
	if prefix.Len() != 1 {
		t.Errorf("prefix handle Len = %d, want 1", prefix.Len())
	}
	if full.Len() != 3 {
		t.Errorf("full handle Len = %d, want 3", full.Len())
	}
	if Reactive(base[:1]) != prefix {
		t.Error("re-wrapping the same prefix should yield the same handle")
	}
}

func TestReactiveKinds(t *testing.T) {
	if _, ok := Reactive(map[string]any{}).(*Record); !ok {
		t.Error("map[string]any should wrap as *Record")
	}
	if _, ok := Reactive(map[any]any{}).(*Map); !ok {
		t.Error("map[any]any should wrap as *Map")
	}
	if _, ok := Reactive(map[any]struct{}{}).(*Set); !ok {
		t.Error("map[any]struct{} should wrap as *Set")
	}
}

func TestIsReactive(t *testing.T) {
	target := map[string]any{}
	if IsReactive(target) {
		t.Error("raw map is not reactive")
	}
	if !IsReactive(Reactive(target)) {
		t.Error("handle should report reactive")
	}
}

func TestRawEscapeHatch(t *testing.T) {
	target := map[string]any{"a": 1}
	handle := Reactive(target).(*Record)

	raw, ok := Raw(handle).(map[string]any)
	if !ok {
		t.Fatalf("Raw should return the underlying map, got %T", Raw(handle))
	}
	if raw["a"] != 1 {
		t.Errorf("expected raw value 1, got %v", raw["a"])
	}

	// Raw of a non-handle passes through.
	if Raw(42) != 42 {
		t.Error("Raw of a non-handle should pass through")
	}
}

func TestDeepWrapLazyAndStable(t *testing.T) {
	inner := map[string]any{"x": 1}
	state := Reactive(map[string]any{"nested": inner}).(*Record)

	first := state.Get("nested")
	second := state.Get("nested")
	if first != second {
		t.Error("nested composite should wrap to the same handle on every read")
	}
	if first != Reactive(inner) {
		t.Error("nested handle should be identity-stable with direct wrapping")
	}
}
