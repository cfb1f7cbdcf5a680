package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// ExporterConfig configures the OTLP/HTTP trace pipeline a host
// application wires up before constructing Settings.Tracer.
type ExporterConfig struct {
	// Endpoint is the collector's host:port, e.g. "localhost:4318".
	Endpoint string
	// URLPath is the traces ingest path; defaults to "/v1/traces".
	URLPath string
	// ServiceName identifies this process in exported spans. Defaults
	// to "ai-mediator".
	ServiceName string
	// Insecure disables TLS for the OTLP HTTP connection.
	Insecure bool
	// Headers are sent with every export request (auth tokens, tenant
	// IDs, ...).
	Headers map[string]string
}

// Exporter owns the OTLP/HTTP pipeline's lifecycle: the batching span
// processor and the underlying HTTP exporter.
type Exporter struct {
	provider *sdktrace.TracerProvider
	exporter *otlptrace.Exporter
}

// NewExporter builds an OTLP/HTTP trace pipeline and installs it as the
// global tracer provider, so GetTracer's otel.Tracer(TracerName) fallback
// exports through it without the caller threading a *trace.Tracer
// through every Settings value.
func NewExporter(ctx context.Context, cfg ExporterConfig) (*Exporter, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("telemetry: Endpoint is required")
	}
	if cfg.URLPath == "" {
		cfg.URLPath = "/v1/traces"
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "ai-mediator"
	}

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(cfg.Endpoint),
		otlptracehttp.WithURLPath(cfg.URLPath),
		otlptracehttp.WithHeaders(cfg.Headers),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: failed to create OTLP exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes("", attribute.String("service.name", cfg.ServiceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return &Exporter{provider: tp, exporter: exp}, nil
}

// Tracer returns a tracer bound to this exporter's provider, suitable
// for Settings.Tracer.
func (e *Exporter) Tracer() trace.Tracer {
	return e.provider.Tracer(TracerName)
}

// Shutdown flushes and closes the underlying exporter.
func (e *Exporter) Shutdown(ctx context.Context) error {
	if e.provider == nil {
		return nil
	}
	if err := e.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("telemetry: failed to shutdown tracer provider: %w", err)
	}
	return nil
}

// ForceFlush exports any spans buffered by the batch processor.
func (e *Exporter) ForceFlush(ctx context.Context) error {
	if e.provider == nil {
		return nil
	}
	if err := e.provider.ForceFlush(ctx); err != nil {
		return fmt.Errorf("telemetry: failed to flush spans: %w", err)
	}
	return nil
}
