// Package telemetry provides OpenTelemetry distributed tracing for simplify.
// It wraps HTTP requests, single simplifications, batches and cache lookups
// in spans, supports W3C Trace Context propagation, and exports to OTLP or
// stdout.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/Siddhant-K-code/simplify"

// Config holds tracing configuration.
type Config struct {
	// Enabled turns tracing on/off.
	Enabled bool

	// Exporter selects the trace exporter: "otlp", "stdout", or "none".
	Exporter string

	// Endpoint is the OTLP collector address (e.g., "localhost:4317").
	Endpoint string

	// SampleRate controls the sampling ratio (0.0 to 1.0).
	SampleRate float64

	// ServiceName overrides the default service name.
	ServiceName string

	// Insecure disables TLS for the OTLP exporter.
	Insecure bool
}

// DefaultConfig returns tracing defaults (disabled).
func DefaultConfig() Config {
	return Config{
		Enabled:     false,
		Exporter:    "otlp",
		Endpoint:    "localhost:4317",
		SampleRate:  1.0,
		ServiceName: "simplify",
		Insecure:    true,
	}
}

// Provider wraps the OTEL TracerProvider and exposes simplify span helpers.
type Provider struct {
	tp     *sdktrace.TracerProvider
	tracer trace.Tracer
}

// Noop returns a Provider whose spans are discarded.
func Noop() *Provider {
	return &Provider{tracer: noop.NewTracerProvider().Tracer(tracerName)}
}

// Init sets up the global TracerProvider based on the config.
// The returned Provider must be shut down with Shutdown.
func Init(ctx context.Context, cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		return Noop(), nil
	}

	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.Exporter {
	case "otlp":
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(cfg.Endpoint),
		}
		if cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exporter, err = otlptracegrpc.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
		}
	case "none", "":
		return Noop(), nil
	default:
		return nil, fmt.Errorf("unsupported exporter: %q (supported: otlp, stdout, none)", cfg.Exporter)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion("0.1.0"),
		),
		resource.WithProcessRuntimeDescription(),
		resource.WithHost(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	p := NewWithExporter(exporter, cfg.SampleRate,
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(p.tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return p, nil
}

// NewWithExporter builds a Provider on exporter without touching the global
// provider. With no extra options spans are exported synchronously.
func NewWithExporter(exporter sdktrace.SpanExporter, sampleRate float64, opts ...sdktrace.TracerProviderOption) *Provider {
	sampler := sdktrace.AlwaysSample()
	if sampleRate < 1.0 {
		sampler = sdktrace.TraceIDRatioBased(sampleRate)
	}

	if len(opts) == 0 {
		opts = []sdktrace.TracerProviderOption{sdktrace.WithSyncer(exporter)}
	}
	opts = append(opts, sdktrace.WithSampler(sampler))

	tp := sdktrace.NewTracerProvider(opts...)
	return &Provider{
		tp:     tp,
		tracer: tp.Tracer(tracerName),
	}
}

// Shutdown flushes pending spans and shuts down the provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp == nil {
		return nil
	}
	return p.tp.Shutdown(ctx)
}

// Tracer returns the simplify tracer for creating spans.
func (p *Provider) Tracer() trace.Tracer {
	return p.tracer
}

// StartRequest creates a root span for an incoming HTTP request or MCP call.
func (p *Provider) StartRequest(ctx context.Context, endpoint string) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, "simplify.request",
		trace.WithAttributes(attribute.String("simplify.endpoint", endpoint)),
		trace.WithSpanKind(trace.SpanKindServer),
	)
}

// StartSimplify creates a span for one sentence.
func (p *Provider) StartSimplify(ctx context.Context, level, inputWords int) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, "simplify.sentence",
		trace.WithAttributes(
			attribute.Int("simplify.level", level),
			attribute.Int("simplify.input_words", inputWords),
		),
	)
}

// StartBatch creates a span for a batch run.
func (p *Provider) StartBatch(ctx context.Context, level, sentenceCount, workers int) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, "simplify.batch",
		trace.WithAttributes(
			attribute.Int("simplify.level", level),
			attribute.Int("simplify.batch.sentence_count", sentenceCount),
			attribute.Int("simplify.batch.workers", workers),
		),
	)
}

// StartCacheLookup creates a span for a cache lookup.
func (p *Provider) StartCacheLookup(ctx context.Context, key string) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, "simplify.cache.lookup",
		trace.WithAttributes(attribute.String("simplify.cache.key", key)),
	)
}

// RecordResult adds result attributes to a span.
func RecordResult(span trace.Span, inputWords, outputWords int, latency time.Duration) {
	span.SetAttributes(
		attribute.Int("simplify.result.input_words", inputWords),
		attribute.Int("simplify.result.output_words", outputWords),
		attribute.Int64("simplify.result.latency_ms", latency.Milliseconds()),
	)
	if inputWords > 0 {
		reduction := 1.0 - float64(outputWords)/float64(inputWords)
		span.SetAttributes(attribute.Float64("simplify.result.reduction_ratio", reduction))
	}
}

// RecordCacheResult marks a cache lookup span as hit or miss.
func RecordCacheResult(span trace.Span, hit bool) {
	span.SetAttributes(attribute.Bool("simplify.cache.hit", hit))
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetAttributes(attribute.Bool("error", true))
}
