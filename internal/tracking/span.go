package tracking

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartSpan opens a span named component.operation around a suspension
// point (spec §5: bus receive/publish, and the columnar, vector store,
// LLM and registry calls each pipeline stage blocks on). Grounded on
// other_examples' arc-core audit consumer, which opens a span the same
// way at the start of every message handler:
// otel.Tracer(name).Start(ctx, spanName) followed by a deferred
// span.End(). No exporter/SDK is wired here (the ambient stack keeps
// every service self-contained, just as no service serves
// internal/metrics over HTTP) — with no SDK registered by the caller this
// resolves to the otel no-op global TracerProvider, so every call site
// below is free until an operator wires a real one in.
func StartSpan(ctx context.Context, component, operation string) (context.Context, trace.Span) {
	return otel.Tracer(component).Start(ctx, component+"."+operation)
}

// EndSpan closes span, recording err on it first if non-nil. Pair with
// StartSpan via defer at every suspension point, mirroring the
// RecordError-then-End sequence the arc-core audit consumer uses on its
// own handler's error path.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
