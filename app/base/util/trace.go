package util

import (
	"context"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/serum-errors/go-serum"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"github.com/warptools/noidwrap/noidapi"
	"github.com/warptools/noidwrap/pkg/logging"
)

// Module names noidwrap in exported spans.
const Module = "github.com/warptools/noidwrap"

// newResource describes this process to trace collectors.
// The schema URL must match the one the sdk's default resource uses, or the merge fails.
func newResource(version string) (*resource.Resource, error) {
	own := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(Module),
		semconv.ServiceVersionKey.String(version),
	)
	res, err := resource.Merge(resource.Default(), own)
	if err != nil {
		return nil, err
	}
	return resource.Merge(res, resource.Environment())
}

// spanExporters opens one exporter for each --trace.* destination that is enabled.
//
// Errors:
//
//   - noidwrap-error-io -- when the trace file cannot be created
//   - noidwrap-error-initialization -- when an exporter cannot be constructed
func spanExporters(c *cli.Context) (_ []sdktrace.SpanExporter, retErr error) {
	logger := logging.Ctx(c.Context)
	var exporters []sdktrace.SpanExporter
	defer func() {
		if retErr != nil {
			shutdownExporters(c.Context, exporters)
		}
	}()

	if path := c.String("trace.file"); path != "" {
		logger.Debug("", "writing spans to %s", path)
		exp, err := newFileSpanExporter(path)
		if err != nil {
			return nil, err
		}
		exporters = append(exporters, exp)
	}

	if c.Bool("trace.http.enable") {
		var opts []otlptracehttp.Option
		if c.Bool("trace.http.insecure") {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		if endpoint := c.String("trace.http.endpoint"); endpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpoint(endpoint))
		}
		logger.Debug("", "sending spans over otlp/http (insecure=%t, endpoint=%q)",
			c.Bool("trace.http.insecure"), c.String("trace.http.endpoint"))
		exp, err := otlptrace.New(c.Context, otlptracehttp.NewClient(opts...))
		if err != nil {
			return nil, noidapi.ErrorInitialization("otlp trace exporter", err)
		}
		exporters = append(exporters, exp)
	}
	return exporters, nil
}

func shutdownExporters(ctx context.Context, exporters []sdktrace.SpanExporter) error {
	var result error
	for _, exp := range exporters {
		if err := exp.Shutdown(ctx); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}

// newTracingProvider returns nil when no --trace.* destination is enabled.
// The resource is only built once there is somewhere to send spans.
//
// Errors:
//
//   - noidwrap-error-io -- when the trace file cannot be created
//   - noidwrap-error-initialization -- when an exporter or the resource cannot be constructed
func newTracingProvider(c *cli.Context) (*sdktrace.TracerProvider, error) {
	exporters, err := spanExporters(c)
	if err != nil || len(exporters) == 0 {
		return nil, err
	}
	res, err := newResource(c.App.Version)
	if err != nil {
		shutdownExporters(c.Context, exporters)
		return nil, noidapi.ErrorInitialization("tracing resource", err)
	}
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}
	for _, exp := range exporters {
		opts = append(opts, sdktrace.WithBatcher(exp))
	}
	return sdktrace.NewTracerProvider(opts...), nil
}

// fileSpanExporter closes its file once the wrapped exporter has flushed.
type fileSpanExporter struct {
	sdktrace.SpanExporter
	file *os.File
}

// Shutdown flushes spans and closes the trace file.
//
// Errors:
//
//   - noidwrap-error-tracing-shutdown -- when the exporter fails to flush
func (e *fileSpanExporter) Shutdown(ctx context.Context) error {
	defer e.file.Close()
	if err := e.SpanExporter.Shutdown(ctx); err != nil {
		return serum.Errorf(noidapi.ECodeTracingShutdown, "tracing shutdown failed: %w", err)
	}
	return nil
}

// newFileSpanExporter truncates path and writes pretty-printed spans to it.
//
// Errors:
//
//   - noidwrap-error-io -- when the file cannot be created
//   - noidwrap-error-initialization -- when the exporter cannot be constructed
func newFileSpanExporter(path string) (*fileSpanExporter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, noidapi.ErrorIo("creating trace file", path, err)
	}
	exp, err := stdouttrace.New(
		stdouttrace.WithWriter(f),
		stdouttrace.WithPrettyPrint(),
		stdouttrace.WithoutTimestamps(),
	)
	if err != nil {
		f.Close()
		return nil, noidapi.ErrorInitialization("trace file exporter", err)
	}
	return &fileSpanExporter{exp, f}, nil
}
