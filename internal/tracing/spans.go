package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Span names.
const (
	SpanLoad   = "recipe.load"
	SpanDerive = "recipe.derive"
	SpanRender = "recipe.render"
	SpanStore  = "store."
	SpanExport = "blob.export"
)

// Span attribute keys.
const (
	AttrRecipeID     = "recipe.id"
	AttrRecipeName   = "recipe.name"
	AttrSourcePath   = "recipe.source"
	AttrSteps        = "recipe.steps"
	AttrCreated      = "derive.created"
	AttrWarnings     = "derive.warnings"
	AttrUnresolved   = "derive.unresolved"
	AttrSkipped      = "derive.skipped"
	AttrFormat       = "render.format"
	AttrStoreDriver  = "store.driver"
	AttrBlobDriver   = "blob.driver"
	AttrBlobKey      = "blob.key"
	AttrErrorMessage = "error.message"
)

// Event names.
const (
	EventWarning = "derive.warning"
)

// Start opens a span. A nil tracer returns ctx unchanged with a no-op span.
func Start(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, noop.Span{}
	}
	return tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// End records err on the span, if any, and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
