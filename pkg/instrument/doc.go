// Package instrument provides observability for the reactivity engine.
//
// Both collectors attach through vireo.Observe and can be combined:
//
//	metrics := instrument.NewMetrics(instrument.WithNamespace("myapp"))
//	defer vireo.Observe(metrics)()
//
//	tracing := instrument.NewTracing(instrument.WithTracerName("myapp"))
//	defer vireo.Observe(tracing)()
//
// Metrics are registered with Prometheus; expose them with promhttp. Tracing
// uses the global OpenTelemetry tracer provider, so configure that in main()
// before attaching.
package instrument
