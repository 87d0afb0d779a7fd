package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	ServiceName = "adarecon"
	TracerName  = "adarecon/pipeline"
)

// Tracing holds the tracer used for pipeline stage spans.
type Tracing struct {
	Tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	logger   *slog.Logger
}

// InitializeTracing sets up span export to w (stderr when nil). When disabled
// a no-op tracer is returned so callers never branch on configuration.
func InitializeTracing(enabled bool, version string, w io.Writer, logger *slog.Logger) (*Tracing, error) {
	if logger == nil {
		logger = GetLogger()
	}
	if !enabled {
		return &Tracing{Tracer: noop.NewTracerProvider().Tracer(TracerName), logger: logger}, nil
	}
	if w == nil {
		w = os.Stderr
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(version),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	logger.Info("Tracing initialized", slog.String("exporter", "stdout"))
	return &Tracing{
		Tracer:   tp.Tracer(TracerName, trace.WithInstrumentationVersion(version)),
		provider: tp,
		logger:   logger,
	}, nil
}

// Shutdown flushes and stops the tracer provider.
func (t *Tracing) Shutdown(ctx context.Context) error {
	if t == nil || t.provider == nil {
		return nil
	}
	if err := t.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("tracer provider shutdown: %w", err)
	}
	return nil
}

// StartStage opens a span for one pipeline stage.
func StartStage(ctx context.Context, tracer trace.Tracer, stage string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(TracerName)
	}
	attrs = append(attrs, attribute.String("pipeline.stage", stage))
	if traceID := GetTraceID(ctx); traceID != "" {
		attrs = append(attrs, attribute.String("run.trace_id", traceID))
	}
	return tracer.Start(ctx, stage, trace.WithAttributes(attrs...))
}

// EndStage records err on span, if any, and ends it.
func EndStage(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
