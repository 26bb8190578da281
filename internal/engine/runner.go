package engine

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/roach88/glimpse/internal/collection"
	"github.com/roach88/glimpse/internal/ir"
	"github.com/roach88/glimpse/internal/store"
)

// Runner runs derivation passes over one collection.
//
// A Runner is not safe for concurrent use; neither is the collection.
type Runner struct {
	coll     *collection.Collection
	log      *store.Store
	clock    *Clock
	ids      IDGenerator
	tracer   trace.Tracer
	logger   *slog.Logger
	manifest string
}

// Option configures a Runner.
type Option func(*Runner)

// WithStore appends every pass to the pass log.
func WithStore(s *store.Store) Option {
	return func(r *Runner) { r.log = s }
}

// WithClock sets the logical clock. Default: NewClock().
func WithClock(c *Clock) Option {
	return func(r *Runner) { r.clock = c }
}

// WithIDGenerator sets the pass id generator. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(r *Runner) { r.ids = g }
}

// WithTracer sets the tracer for pass spans. Default: no-op.
func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) { r.tracer = t }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithManifest records the manifest path the collection was built from.
func WithManifest(path string) Option {
	return func(r *Runner) { r.manifest = path }
}

// New creates a Runner for c.
func New(c *collection.Collection, opts ...Option) *Runner {
	r := &Runner{
		coll:   c,
		clock:  NewClock(),
		ids:    UUIDv7Generator{},
		tracer: noop.NewTracerProvider().Tracer(TracerName),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Collection returns the collection the runner drives.
func (r *Runner) Collection() *collection.Collection {
	return r.coll
}

// Resume moves the clock past the last pass in the pass log so new passes
// continue its numbering. Without a store it does nothing.
func (r *Runner) Resume(ctx context.Context) error {
	if r.log == nil {
		return nil
	}
	next, err := r.log.NextSeq(ctx)
	if err != nil {
		return &RuntimeError{Code: ErrCodeLogWrite, Message: "read pass log position", Err: err}
	}
	if next-1 > r.clock.Current() {
		r.clock = NewClockAt(next - 1)
	}
	return nil
}

// Run performs one derivation pass and returns its record.
//
// Cycles and failing transforms do not make Run fail; they are part of
// the returned record. Run fails only if ctx is already done, or if the
// pass cannot be digested or logged. In the logging case the collection
// has still been updated.
func (r *Runner) Run(ctx context.Context) (store.Pass, error) {
	if err := ctx.Err(); err != nil {
		return store.Pass{}, &RuntimeError{Code: ErrCodeCancelled, Message: "pass not started", Err: err}
	}

	pass := store.Pass{
		ID:       r.ids.Generate(),
		Seq:      r.clock.Next(),
		Manifest: r.manifest,
	}

	ctx, span := r.tracer.Start(ctx, "glimpse.pass", trace.WithAttributes(
		attribute.String(AttrPassID, pass.ID),
		attribute.Int64(AttrPassSeq, pass.Seq),
		attribute.Int(AttrSources, r.coll.Len()),
	))
	defer span.End()

	report := r.coll.UpdateDerivations()
	pass.Evaluated = report.Order
	pass.Cycles = report.Cycles
	pass.Failed = report.Failed
	pass.Results = Snapshot(r.coll)

	digest, err := Digest(pass.Results)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return pass, &RuntimeError{Code: ErrCodeDigest, Message: "digest pass results", PassID: pass.ID, Err: err}
	}
	pass.Digest = digest

	span.SetAttributes(
		attribute.Int(AttrEvaluated, len(report.Order)),
		attribute.Int(AttrCycles, len(report.Cycles)),
		attribute.Int(AttrFailed, len(report.Failed)),
		attribute.String(AttrDigest, digest),
	)

	if r.log != nil {
		if _, err := r.log.WritePass(ctx, pass); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return pass, &RuntimeError{Code: ErrCodeLogWrite, Message: "append to pass log", PassID: pass.ID, Err: err}
		}
	}
	span.SetStatus(codes.Ok, "")

	r.logger.Info("pass complete",
		"pass", pass.ID,
		"seq", pass.Seq,
		"evaluated", len(report.Order),
		"cycles", len(report.Cycles),
		"failed", len(report.Failed),
	)
	return pass, nil
}

// Snapshot returns the current result of every source in insertion order.
func Snapshot(c *collection.Collection) []store.SourceResult {
	ids := c.IDs()
	out := make([]store.SourceResult, 0, len(ids))
	for _, id := range ids {
		res, ok := c.Get(id)
		if !ok {
			continue
		}
		kind, _ := c.Kind(id)
		sr := store.SourceResult{SourceID: id, Kind: kind.String()}
		if res.OK() {
			sr.Value = res.Value
		} else {
			sr.ErrorCode = string(res.Err.Code)
			sr.ErrorMessage = res.Err.Error()
		}
		out = append(out, sr)
	}
	return out
}

// Digest returns the content digest of a result set: the ordered list of
// [id, value digest] pairs, with the error code standing in for the value
// of a failed source.
func Digest(results []store.SourceResult) (string, error) {
	entries := make(ir.IRArray, len(results))
	for i, r := range results {
		var state ir.IRValue = ir.IRString(r.ErrorCode)
		if r.ErrorCode == "" {
			d, err := ir.ValueDigest(r.Value)
			if err != nil {
				return "", err
			}
			state = ir.IRString(d)
		}
		entries[i] = ir.NewIRArray(ir.IRString(r.SourceID), state)
	}
	return ir.ReportDigest(entries)
}
