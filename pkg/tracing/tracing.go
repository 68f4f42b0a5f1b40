package tracing

import (
	"context"
	"runtime"
	"strings"

	"github.com/serum-errors/go-serum"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/warptools/noidwrap/noidapi"
)

type ctxKey struct{}

// TracerFromCtx returns the tracer set for the current context.
// If no tracer is currently set in ctx, a new no-op tracer will be returned.
func TracerFromCtx(ctx context.Context) trace.Tracer {
	tracer, ok := ctx.Value(ctxKey{}).(trace.Tracer)
	// SetTracer never stores a nil tracer.
	if !ok {
		return trace.NewNoopTracerProvider().Tracer("")
	}
	return tracer
}

// SetTracer returns a new context with the given tracer associated with it.
// Setting the tracer to nil will create a noop tracer and insert it into the context.
func SetTracer(ctx context.Context, tracer trace.Tracer) context.Context {
	if tracer == nil {
		tracer = trace.NewNoopTracerProvider().Tracer("")
	}
	if existing, ok := ctx.Value(ctxKey{}).(trace.Tracer); ok {
		if existing == tracer {
			return ctx
		}
	}
	return context.WithValue(ctx, ctxKey{}, tracer)
}

// Start is a shortcut for retrieving the context tracer and calling Start.
// Start creates a span and a context.Context containing the newly-created span.
//
// If the current context does not contain a tracer then a new no-op tracer will be created for the new context.
// See go.opentelemetry.io/otel/trace.Tracer.Start for more information on the Start function.
func Start(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return TracerFromCtx(ctx).Start(ctx, spanName, opts...)
}

// StartFn is like Start, but prefixes the span name with the calling function's package-qualified name.
func StartFn(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Start(ctx, callerName()+"."+spanName, opts...)
}

func callerName() string {
	pc, _, _, ok := runtime.Caller(2)
	if !ok {
		return "unknown"
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown"
	}
	name := fn.Name()
	// trim the module path; keep "pkg.Func"
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}

// SetSpanError records err on the span in ctx, including its serum code.
func SetSpanError(ctx context.Context, err error) {
	setSpanError(trace.SpanFromContext(ctx), err)
}

// EndWithStatus sets the span status from err and ends the span.
// A nil err marks the span Ok.
func EndWithStatus(span trace.Span, err error) {
	if err != nil {
		setSpanError(span, err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func setSpanError(span trace.Span, err error) {
	code := noidapi.ECodeUnknown
	if _, ok := err.(serum.ErrorInterface); ok {
		code = serum.Code(err)
	}
	span.SetAttributes(attribute.String(AttrKeyNoidwrapErrorCode, code))
	span.SetStatus(codes.Error, err.Error())
}
