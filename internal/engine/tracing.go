package engine

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// TracerName is the instrumentation name of the spans a Runner emits.
const TracerName = "github.com/roach88/glimpse/internal/engine"

// Span attribute keys.
const (
	AttrPassID    = "glimpse.pass.id"
	AttrPassSeq   = "glimpse.pass.seq"
	AttrSources   = "glimpse.pass.sources"
	AttrEvaluated = "glimpse.pass.evaluated"
	AttrCycles    = "glimpse.pass.cycles"
	AttrFailed    = "glimpse.pass.failed"
	AttrDigest    = "glimpse.pass.digest"
)

// Tracing wraps the tracer provider used for pass spans.
type Tracing struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// NewTracing returns span tracing that writes finished spans as JSON to w.
// A nil w returns a no-op tracer with zero overhead.
func NewTracing(w io.Writer) (*Tracing, error) {
	if w == nil {
		return &Tracing{tracer: noop.NewTracerProvider().Tracer(TracerName)}, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("create stdout exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", "glimpse"))),
		sdktrace.WithSyncer(exporter),
	)
	return &Tracing{provider: provider, tracer: provider.Tracer(TracerName)}, nil
}

// Tracer returns the tracer for pass spans.
func (t *Tracing) Tracer() trace.Tracer {
	return t.tracer
}

// Shutdown flushes pending spans.
func (t *Tracing) Shutdown(ctx context.Context) error {
	if t.provider != nil {
		return t.provider.Shutdown(ctx)
	}
	return nil
}
