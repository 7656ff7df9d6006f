package instrument

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vireo-dev/vireo/pkg/vireo"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricHistogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	var m dto.Metric
	if err := h.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func TestMetricsRecordsObserverEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg))

	m.FlushStarted(3)
	m.EffectRan(1, 100*time.Microsecond)
	m.EffectRan(2, 100*time.Microsecond)
	m.EffectRan(3, 100*time.Microsecond)
	m.FlushEnded(3, time.Millisecond)
	m.Triggered(7, "count", 2)

	if got := metricCounterValue(t, m.flushesTotal); got != 1 {
		t.Errorf("flushes_total=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.effectRunsTotal); got != 3 {
		t.Errorf("effect_runs_total=%v, want 3", got)
	}
	if got := metricCounterValue(t, m.triggersTotal); got != 1 {
		t.Errorf("triggers_total=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.notifiedTotal); got != 2 {
		t.Errorf("notified_listeners_total=%v, want 2", got)
	}
	if got := metricHistogramCount(t, m.flushDuration); got != 1 {
		t.Errorf("flush_duration_seconds count=%v, want 1", got)
	}
	if got := metricHistogramCount(t, m.effectDuration); got != 3 {
		t.Errorf("effect_duration_seconds count=%v, want 3", got)
	}
}

func TestMetricsAttachedToEngine(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg))
	remove := vireo.Observe(m)
	defer remove()

	count := vireo.NewRef(0)
	e := vireo.Watch(func() {
		_ = count.Get()
	})
	defer e.Stop()

	count.Set(1)
	vireo.Flush()

	if got := metricCounterValue(t, m.effectRunsTotal); got < 2 {
		t.Errorf("effect_runs_total=%v, want at least 2", got)
	}
	if got := metricCounterValue(t, m.triggersTotal); got < 1 {
		t.Errorf("triggers_total=%v, want at least 1", got)
	}
}

func TestMetricsOptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(
		WithRegistry(reg),
		WithNamespace("myapp"),
		WithSubsystem("rx"),
		WithConstLabels(prometheus.Labels{"env": "test"}),
		WithBuckets([]float64{0.001, 0.01}),
	)

	m.FlushStarted(1)
	m.FlushEnded(1, time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "myapp_rx_flushes_total" {
			found = true
		}
	}
	if !found {
		t.Error("expected namespaced metric myapp_rx_flushes_total to be registered")
	}
}
