// Package telemetry wires OpenTelemetry tracing for the fetch pipeline. With no
// collector endpoint configured the client is a no-op.
package telemetry

import (
	"context"
	"fmt"

	"github.com/ChenxingLi/evm-io-tracker/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const ServiceName = "evm-io-tracker"

// TelemetryClient owns the tracer provider for the lifetime of a command.
type TelemetryClient struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	disabled bool // if true, spans go nowhere
}

// NewNoOpTelemetryClient creates a disabled telemetry client that does nothing
func NewNoOpTelemetryClient() *TelemetryClient {
	return &TelemetryClient{
		tracer:   noop.NewTracerProvider().Tracer(ServiceName),
		disabled: true,
	}
}

// NewTelemetryClient exports spans over OTLP/HTTP to endpoint (host:port) and
// installs the provider globally.
func NewTelemetryClient(ctx context.Context, endpoint string) (*TelemetryClient, error) {
	if endpoint == "" {
		return NewNoOpTelemetryClient(), nil
	}
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create otlp exporter for %s: %w", endpoint, err)
	}
	res := resource.NewWithAttributes("", attribute.String("service.name", ServiceName))
	return newClient(sdktrace.NewBatchSpanProcessor(exporter), res), nil
}

// NewTelemetryClientWithProcessor is used by tests to capture spans.
func NewTelemetryClientWithProcessor(sp sdktrace.SpanProcessor) *TelemetryClient {
	return newClient(sp, resource.Empty())
}

func newClient(sp sdktrace.SpanProcessor, res *resource.Resource) *TelemetryClient {
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(sp),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return &TelemetryClient{provider: provider, tracer: provider.Tracer(ServiceName)}
}

func (c *TelemetryClient) Enabled() bool { return !c.disabled }

func (c *TelemetryClient) Tracer() trace.Tracer { return c.tracer }

// StartSpan opens a span on the client's tracer.
func (c *TelemetryClient) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// Close flushes pending spans.
func (c *TelemetryClient) Close(ctx context.Context) error {
	if c.provider == nil {
		return nil
	}
	if err := c.provider.Shutdown(ctx); err != nil {
		log.Warn(log.FetchMonitoring, "Failed to shutdown tracer provider", "err", err)
		return err
	}
	return nil
}
