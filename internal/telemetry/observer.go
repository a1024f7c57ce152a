// Package telemetry records tool dispatches into OpenTelemetry.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Observation is the outcome of one dispatched call.
type Observation struct {
	// Outcome is "success" or the error kind ("invalid_params", ...).
	Outcome    string
	StatusCode int
	Duration   time.Duration
}

// Observer emits one span and one set of metric points per dispatch.
// A nil *Observer is valid and records nothing.
type Observer struct {
	tracer trace.Tracer

	invocations metric.Int64Counter
	latency     metric.Float64Histogram
}

// NewObserver creates an observer bound to the provided meter/tracer.
func NewObserver(meter metric.Meter, tracer trace.Tracer) (*Observer, error) {
	invocations, err := meter.Int64Counter(
		"netlify_mcp.tool.invocations",
		metric.WithDescription("Number of tool invocations"),
	)
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram(
		"netlify_mcp.tool.latency",
		metric.WithDescription("Tool latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	return &Observer{tracer: tracer, invocations: invocations, latency: latency}, nil
}

// Start opens the dispatch span. The returned func must be called exactly
// once with the call's outcome.
func (o *Observer) Start(ctx context.Context, tool, callID string) (context.Context, func(Observation)) {
	if o == nil {
		return ctx, func(Observation) {}
	}

	base := []attribute.KeyValue{
		attribute.String("tool_name", tool),
		attribute.String("call_id", callID),
	}

	var span trace.Span
	if o.tracer != nil {
		ctx, span = o.tracer.Start(ctx, "tool.dispatch", trace.WithAttributes(base...))
	}

	return ctx, func(obs Observation) {
		attrs := []attribute.KeyValue{
			attribute.String("tool_name", tool),
			attribute.String("outcome", obs.Outcome),
		}
		if obs.StatusCode != 0 {
			attrs = append(attrs, attribute.Int("http.status_code", obs.StatusCode))
		}

		opts := metric.WithAttributes(attrs...)
		o.invocations.Add(context.Background(), 1, opts)
		o.latency.Record(context.Background(), obs.Duration.Seconds(), opts)

		if span == nil {
			return
		}
		span.SetAttributes(attrs...)
		if obs.Outcome != "success" {
			span.SetStatus(codes.Error, obs.Outcome)
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}
