package engine

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/roach88/glimpse/internal/collection"
	"github.com/roach88/glimpse/internal/ir"
	"github.com/roach88/glimpse/internal/store"
	"github.com/roach88/glimpse/internal/transform"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleCollection() *collection.Collection {
	c := collection.New(collection.WithLogger(discardLogger()))
	c.Add(
		&collection.Raw{ID: "A", Data: ir.Ints(1, 2, 3)},
		&collection.Derived{ID: "B", Sources: collection.Literal("A"), Derive: transform.Sum},
		&collection.Derived{ID: "C", Sources: collection.Literal("D"), Derive: transform.Sum},
		&collection.Derived{ID: "D", Sources: collection.Literal("C"), Derive: transform.Sum},
	)
	return c
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRun_RecordsPass(t *testing.T) {
	r := New(sampleCollection(),
		WithIDGenerator(NewFixedGenerator("pass-a")),
		WithLogger(discardLogger()),
		WithManifest("totals.yaml"),
	)

	pass, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "pass-a", pass.ID)
	assert.Equal(t, int64(1), pass.Seq)
	assert.Equal(t, "totals.yaml", pass.Manifest)
	assert.Equal(t, []string{"B"}, pass.Evaluated)
	assert.Equal(t, [][]string{{"C", "D"}}, pass.Cycles)
	assert.NotEmpty(t, pass.Digest)

	require.Len(t, pass.Results, 4)
	assert.Equal(t, store.SourceResult{SourceID: "A", Kind: "raw", Value: ir.Ints(1, 2, 3)}, pass.Results[0])
	assert.Equal(t, store.SourceResult{SourceID: "B", Kind: "derived", Value: ir.IRInt(6)}, pass.Results[1])
	assert.Equal(t, string(collection.CodeCircular), pass.Results[2].ErrorCode)
	assert.Nil(t, pass.Results[2].Value)
}

func TestRun_DigestIsStableAcrossPasses(t *testing.T) {
	r := New(sampleCollection(), WithLogger(discardLogger()))

	first, err := r.Run(context.Background())
	require.NoError(t, err)
	second, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Digest, second.Digest)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.Seq+1, second.Seq)

	require.NoError(t, r.Collection().Append("A", ir.IRInt(4)))
	third, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first.Digest, third.Digest)
}

func TestRun_WritesPassLog(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	r := New(sampleCollection(), WithStore(s), WithLogger(discardLogger()))

	pass, err := r.Run(ctx)
	require.NoError(t, err)

	logged, err := s.ReadPass(ctx, pass.ID)
	require.NoError(t, err)
	assert.Equal(t, pass.Digest, logged.Digest)
	assert.Equal(t, pass.Results, logged.Results)
}

func TestResume_ContinuesSeq(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	first := New(sampleCollection(), WithStore(s), WithLogger(discardLogger()))
	for i := 0; i < 3; i++ {
		_, err := first.Run(ctx)
		require.NoError(t, err)
	}

	second := New(sampleCollection(), WithStore(s), WithLogger(discardLogger()))
	require.NoError(t, second.Resume(ctx))
	pass, err := second.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), pass.Seq)
}

func TestResume_WithoutStore(t *testing.T) {
	r := New(sampleCollection(), WithLogger(discardLogger()))
	require.NoError(t, r.Resume(context.Background()))
}

func TestRun_LogWriteFailure(t *testing.T) {
	s := openStore(t)
	r := New(sampleCollection(),
		WithStore(s),
		WithLogger(discardLogger()),
		WithIDGenerator(NewFixedGenerator("p1", "p2")),
		WithClock(NewClockAt(0)),
	)
	_, err := r.Run(context.Background())
	require.NoError(t, err)

	// A second runner reusing seq 1 collides with the logged pass.
	clash := New(sampleCollection(),
		WithStore(s),
		WithLogger(discardLogger()),
		WithIDGenerator(NewFixedGenerator("p9")),
	)
	pass, err := clash.Run(context.Background())
	require.Error(t, err)
	assert.True(t, IsLogWriteError(err))
	assert.Equal(t, "p9", pass.ID)
	b, _ := clash.Collection().Get("B")
	assert.Equal(t, ir.IRInt(6), b.Value, "collection is updated even when logging fails")
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := sampleCollection()
	_, err := New(c, WithLogger(discardLogger())).Run(ctx)
	require.Error(t, err)
	assert.True(t, IsCancelled(err))
	assert.ErrorIs(t, err, context.Canceled)

	b, _ := c.Get("B")
	assert.True(t, collection.IsNotComputed(b.Error()), "no pass ran")
}

func TestRun_Span(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))

	r := New(sampleCollection(),
		WithTracer(tp.Tracer(TracerName)),
		WithIDGenerator(NewFixedGenerator("pass-a")),
		WithLogger(discardLogger()),
	)
	_, err := r.Run(context.Background())
	require.NoError(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "glimpse.pass", spans[0].Name())

	attrs := map[string]any{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, "pass-a", attrs[AttrPassID])
	assert.Equal(t, int64(1), attrs[AttrPassSeq])
	assert.Equal(t, int64(4), attrs[AttrSources])
	assert.Equal(t, int64(1), attrs[AttrCycles])
}

func TestNewTracing(t *testing.T) {
	var buf bytes.Buffer
	tr, err := NewTracing(&buf)
	require.NoError(t, err)

	r := New(sampleCollection(), WithTracer(tr.Tracer()), WithLogger(discardLogger()))
	_, err = r.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, tr.Shutdown(context.Background()))

	assert.Contains(t, buf.String(), "glimpse.pass")

	noop, err := NewTracing(nil)
	require.NoError(t, err)
	assert.NoError(t, noop.Shutdown(context.Background()))
}

func TestDigest_ErrorCodeStandsInForValue(t *testing.T) {
	ok := []store.SourceResult{{SourceID: "A", Value: ir.IRInt(1)}}
	failed := []store.SourceResult{{SourceID: "A", ErrorCode: "gl-error-derivation-failed"}}

	d1, err := Digest(ok)
	require.NoError(t, err)
	d2, err := Digest(failed)
	require.NoError(t, err)
	assert.NotEqual(t, d1, d2)
}
