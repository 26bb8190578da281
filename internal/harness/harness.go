package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/glimpse/internal/collection"
	"github.com/roach88/glimpse/internal/engine"
	"github.com/roach88/glimpse/internal/ir"
	"github.com/roach88/glimpse/internal/manifest"
	"github.com/roach88/glimpse/internal/store"
	"github.com/roach88/glimpse/internal/testutil"
	"github.com/roach88/glimpse/internal/transform"
)

// Harness executes one scenario.
type Harness struct {
	coll     *collection.Collection
	runner   *engine.Runner
	notifier *testutil.RecordingNotifier
	registry *transform.Registry
	clock    *engine.Clock // step seq
	logger   *slog.Logger
	lastPass *store.Pass
}

// Run executes a scenario and returns its result.
//
// Each scenario runs against a fresh collection and a fresh in-memory
// pass log. Pass ids are "pass-1", "pass-2", ... so traces are stable.
//
// An error is returned only if the scenario cannot be executed (bad
// manifest, failing step); failed assertions are reported in the Result.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := testutil.DiscardLogger()
	notifier := testutil.NewRecordingNotifier()
	coll := collection.New(collection.WithNotifier(notifier), collection.WithLogger(logger))

	h := &Harness{
		coll:     coll,
		notifier: notifier,
		registry: transform.Default(),
		clock:    engine.NewClock(),
		logger:   logger,
		runner: engine.New(coll,
			engine.WithStore(st),
			engine.WithIDGenerator(engine.NewSequenceGenerator("pass")),
			engine.WithLogger(logger),
			engine.WithManifest(scenario.Manifest),
		),
	}

	if err := h.build(scenario); err != nil {
		return nil, err
	}

	ctx := context.Background()
	result := NewResult()
	for i, step := range scenario.Steps {
		ev, err := h.execute(ctx, step)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
		result.Trace = append(result.Trace, ev)
	}

	result.Final = engine.Snapshot(coll)
	result.Topics = notifier.Topics()

	for _, msg := range EvaluateAssertions(h, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// build loads the manifest and inline sources into the collection.
func (h *Harness) build(s *Scenario) error {
	if s.Manifest != "" {
		m, err := manifest.Load(s.Manifest)
		if err != nil {
			return err
		}
		if _, err := manifest.Build(h.coll, m, h.registry); err != nil {
			return fmt.Errorf("manifest %s: %w", s.Manifest, err)
		}
	}
	if len(s.Sources) > 0 {
		if _, err := manifest.Build(h.coll, &manifest.Manifest{Sources: s.Sources}, h.registry); err != nil {
			return fmt.Errorf("inline sources: %w", err)
		}
	}
	return nil
}

// execute applies one step and returns its trace event.
func (h *Harness) execute(ctx context.Context, st Step) (TraceEvent, error) {
	ev := TraceEvent{Seq: h.clock.Next(), Op: st.Op, Args: stepArgs(st)}

	switch st.Op {
	case OpPass:
		pass, err := h.runner.Run(ctx)
		if err != nil {
			return ev, err
		}
		h.lastPass = &pass
		ev.Pass = &PassTrace{
			ID:        pass.ID,
			Evaluated: nonNil(pass.Evaluated),
			Cycles:    pass.Cycles,
			Failed:    nonNil(pass.Failed),
			Digest:    pass.Digest,
		}
		if ev.Pass.Cycles == nil {
			ev.Pass.Cycles = [][]string{}
		}

	case OpAdd:
		sources, err := manifest.Sources(&manifest.Manifest{Sources: st.Sources}, h.registry)
		if err != nil {
			return ev, err
		}
		h.coll.Add(sources...)

	case OpUpsert:
		sources, err := manifest.Sources(&manifest.Manifest{Sources: st.Sources}, h.registry)
		if err != nil {
			return ev, err
		}
		h.coll.Upsert(sources[0])

	case OpExtend:
		patch, err := h.patch(st.Sources[0])
		if err != nil {
			return ev, err
		}
		if err := h.coll.Extend(patch); err != nil {
			return ev, err
		}

	case OpAppend:
		items := make([]ir.IRValue, len(st.Items))
		for i, raw := range st.Items {
			v, err := ir.FromAny(raw)
			if err != nil {
				return ev, fmt.Errorf("items[%d]: %w", i, err)
			}
			items[i] = v
		}
		if err := h.coll.Append(st.ID, items...); err != nil {
			return ev, err
		}

	case OpRemove:
		h.coll.Remove(st.IDs...)
	case OpSetTags:
		h.coll.SetTags(st.ID, st.Tags...)
	case OpAddTags:
		h.coll.AddTags(st.ID, st.Tags...)
	case OpRemoveTags:
		h.coll.RemoveTags(st.ID, st.Tags...)
	case OpToggleTags:
		h.coll.ToggleTags(st.ID, st.Tags, st.Scope)

	default:
		return ev, fmt.Errorf("unknown op %q", st.Op)
	}

	h.logger.Debug("step executed", "seq", ev.Seq, "op", st.Op)
	return ev, nil
}

// patch converts a declaration into an Extend patch. Only the fields the
// declaration sets are merged.
func (h *Harness) patch(d manifest.Decl) (collection.Patch, error) {
	p := collection.Patch{ID: d.ID, Tags: d.Tags}
	if d.Data != nil {
		data, err := ir.FromAny(d.Data)
		if err != nil {
			return p, err
		}
		p.Data = data
	}
	if len(d.Sources) > 0 {
		p.Sources = collection.Groups(d.Sources)
	}
	if d.Derive != "" {
		fn, err := h.registry.Lookup(d.Derive)
		if err != nil {
			return p, err
		}
		p.Derive = fn
	}
	return p, nil
}

// stepArgs records the arguments a step was given.
func stepArgs(st Step) ir.IRObject {
	args := ir.IRObject{}
	if st.ID != "" {
		args["id"] = ir.IRString(st.ID)
	}
	if len(st.IDs) > 0 {
		args["ids"] = ir.Strings(st.IDs...)
	}
	if len(st.Items) > 0 {
		if items, err := ir.FromAny(st.Items); err == nil {
			args["items"] = items
		}
	}
	if st.Tags != nil {
		args["tags"] = ir.Strings(st.Tags...)
	}
	if st.Scope != "" {
		args["scope"] = ir.IRString(st.Scope)
	}
	if len(st.Sources) > 0 {
		ids := make([]string, len(st.Sources))
		for i, d := range st.Sources {
			ids[i] = d.ID
		}
		args["sources"] = ir.Strings(ids...)
	}
	if len(args) == 0 {
		return nil
	}
	return args
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
