package operations

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	TracerName = "cryptocap.operation"
)

func defaultTracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// traceRun opens the span covering a whole report run
func (m *Manager) traceRun(ctx context.Context, state *OperationState, steps int) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, "operation.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", state.ID),
			attribute.String("operation.source", state.Source),
			attribute.Int("operation.steps", steps),
		),
	)
}

// traceStep opens a child span for one step
func (m *Manager) traceStep(ctx context.Context, state *OperationState, step Step) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, "operation.step."+step.ID(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", state.ID),
			attribute.String("step.id", step.ID()),
			attribute.String("step.name", step.Name()),
		),
	)
}

// endSpan records the outcome and closes the span
func endSpan(span trace.Span, duration time.Duration, err error) {
	span.SetAttributes(attribute.Float64("duration_seconds", duration.Seconds()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
