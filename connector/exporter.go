package connector

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// SlogSpanExporter implements the OpenTelemetry SpanExporter interface and
// writes completed spans to a structured logger. The connector runs as a
// short-lived subprocess without a trace backend of its own; its spans ride
// the same stderr log stream the host already captures.
type SlogSpanExporter struct {
	logger *slog.Logger
}

// NewSlogSpanExporter creates a span exporter over the given logger.
func NewSlogSpanExporter(logger *slog.Logger) *SlogSpanExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSpanExporter{logger: logger}
}

// ExportSpans logs each completed span. Always returns nil: a logging
// failure must never break the trace pipeline.
func (e *SlogSpanExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		attrs := make([]any, 0, 8+2*len(span.Attributes()))
		attrs = append(attrs,
			"trace", span.SpanContext().TraceID().String(),
			"span", span.SpanContext().SpanID().String(),
			"duration", span.EndTime().Sub(span.StartTime()),
			"status", span.Status().Code.String(),
		)
		for _, attr := range span.Attributes() {
			attrs = append(attrs, string(attr.Key), attr.Value.AsInterface())
		}
		e.logger.Debug("span "+span.Name(), attrs...)
	}
	return nil
}

// Shutdown is a no-op; the logger outlives the exporter.
func (e *SlogSpanExporter) Shutdown(_ context.Context) error {
	return nil
}

// NewTracerProvider creates a TracerProvider that exports spans through a
// SlogSpanExporter.
//
// A SimpleSpanProcessor exports each span as it completes, without batching.
// Command invocations are short; losing buffered spans on process exit would
// cost more than the per-span overhead saves.
func NewTracerProvider(logger *slog.Logger) *sdktrace.TracerProvider {
	exporter := NewSlogSpanExporter(logger)
	processor := sdktrace.NewSimpleSpanProcessor(exporter)

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String("genattr"),
		),
	)
	if err != nil {
		logger.Warn("failed to create resource, using default", "error", err)
		res = resource.Default()
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(processor),
		sdktrace.WithResource(res),
	)
}
