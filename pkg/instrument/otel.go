package instrument

import (
	"context"
	"sync"
	"time"

	"github.com/petermattis/goid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vireo-dev/vireo/pkg/vireo"
)

// Default tracer name for the engine.
const defaultTracerName = "vireo"

// TracingConfig configures the OpenTelemetry collector.
type TracingConfig struct {
	// TracerName is the name of the tracer (default: "vireo").
	TracerName string

	// RecordEffects adds a span event per effect run inside the flush span.
	// Enabled by default; disable for very hot schedulers.
	RecordEffects bool

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// TracingOption configures the OpenTelemetry collector.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithRecordEffects enables/disables per-effect span events.
func WithRecordEffects(record bool) TracingOption {
	return func(c *TracingConfig) {
		c.RecordEffects = record
	}
}

func defaultTracingConfig() TracingConfig {
	return TracingConfig{
		TracerName:    defaultTracerName,
		RecordEffects: true,
	}
}

// Tracing is a vireo.Observer that wraps each scheduler flush in an
// OpenTelemetry span. Effect runs inside the flush become span events.
//
// A flush runs start to finish on one goroutine, so the open span is keyed
// by goroutine id; concurrent schedulers trace independently.
//
// The tracer comes from the global OpenTelemetry tracer provider. Configure
// it in main() before attaching:
//
//	tp := sdktrace.NewTracerProvider(
//	    sdktrace.WithBatcher(exporter),
//	)
//	otel.SetTracerProvider(tp)
type Tracing struct {
	config TracingConfig

	mu    sync.Mutex
	spans map[int64]trace.Span
}

// NewTracing creates the OpenTelemetry collector.
func NewTracing(opts ...TracingOption) *Tracing {
	config := defaultTracingConfig()
	for _, opt := range opts {
		opt(&config)
	}
	config.tracer = otel.Tracer(config.TracerName)

	return &Tracing{
		config: config,
		spans:  make(map[int64]trace.Span),
	}
}

var _ vireo.Observer = (*Tracing)(nil)

// FlushStarted implements vireo.Observer.
func (t *Tracing) FlushStarted(queued int) {
	_, span := t.config.tracer.Start(
		context.Background(),
		"vireo.flush",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.Int("vireo.queued", queued)),
	)

	t.mu.Lock()
	t.spans[goid.Get()] = span
	t.mu.Unlock()
}

// FlushEnded implements vireo.Observer.
func (t *Tracing) FlushEnded(ran int, took time.Duration) {
	gid := goid.Get()

	t.mu.Lock()
	span, ok := t.spans[gid]
	if ok {
		delete(t.spans, gid)
	}
	t.mu.Unlock()

	if !ok {
		return
	}
	span.SetAttributes(attribute.Int("vireo.ran", ran))
	span.End()
}

// EffectRan implements vireo.Observer.
func (t *Tracing) EffectRan(id uint64, took time.Duration) {
	if !t.config.RecordEffects {
		return
	}

	t.mu.Lock()
	span, ok := t.spans[goid.Get()]
	t.mu.Unlock()

	if !ok {
		// Sync and manual runs happen outside any flush.
		return
	}
	span.AddEvent("vireo.effect", trace.WithAttributes(
		attribute.Int64("vireo.effect_id", int64(id)),
		attribute.Int64("vireo.duration_us", took.Microseconds()),
	))
}

// Triggered implements vireo.Observer.
func (t *Tracing) Triggered(target uint64, key any, notified int) {}
