package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Recorder traces and counts engine operations.
type Recorder struct {
	tracer trace.Tracer
	ops    metric.Int64Counter
	dur    metric.Float64Histogram
	errs   metric.Int64Counter
}

// NewRecorder builds instruments from the current global providers, so it
// must run after Init.
func NewRecorder() *Recorder {
	m := Meter(instrumentationScope)
	ops, _ := m.Int64Counter("foreman.engine.operations",
		metric.WithDescription("Engine operations executed"),
	)
	dur, _ := m.Float64Histogram("foreman.engine.operation.duration",
		metric.WithDescription("Engine operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("foreman.engine.errors",
		metric.WithDescription("Engine operations that returned an error"),
	)
	return &Recorder{tracer: Tracer(instrumentationScope), ops: ops, dur: dur, errs: errs}
}

// Start opens a span for op. The returned func ends it and records the
// outcome; pass the operation's final error.
func (r *Recorder) Start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	if r == nil {
		return ctx, func(error) {}
	}
	all := append([]attribute.KeyValue{attribute.String("foreman.op", op)}, attrs...)
	ctx, span := r.tracer.Start(ctx, "engine."+op, trace.WithAttributes(all...))
	if r.ops != nil {
		r.ops.Add(ctx, 1, metric.WithAttributes(all...))
	}
	start := time.Now()
	return ctx, func(err error) {
		if r.dur != nil {
			r.dur.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(all...))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if r.errs != nil {
				r.errs.Add(ctx, 1, metric.WithAttributes(all...))
			}
		}
		span.End()
	}
}
