package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/glimpse/internal/engine"
	"github.com/roach88/glimpse/internal/store"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Database string
	Strict   bool // fail when a source ends in an error

	// IDGenerator overrides the pass id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator engine.IDGenerator
}

// PassReport is the printable form of one pass.
type PassReport struct {
	ID        string       `json:"id"`
	Seq       int64        `json:"seq"`
	Manifest  string       `json:"manifest,omitempty"`
	Digest    string       `json:"digest"`
	Evaluated []string     `json:"evaluated"`
	Cycles    [][]string   `json:"cycles"`
	Failed    []string     `json:"failed"`
	Results   []ResultView `json:"results,omitempty"`
}

func passReport(p store.Pass) (PassReport, error) {
	views, err := resultViews(p.Results)
	if err != nil {
		return PassReport{}, err
	}
	r := PassReport{
		ID:        p.ID,
		Seq:       p.Seq,
		Manifest:  p.Manifest,
		Digest:    p.Digest,
		Evaluated: nonNil(p.Evaluated),
		Cycles:    p.Cycles,
		Failed:    nonNil(p.Failed),
		Results:   views,
	}
	if r.Cycles == nil {
		r.Cycles = [][]string{}
	}
	return r, nil
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <manifest>",
		Short: "Run one derivation pass and print every source",
		Long: `Load a manifest (YAML or CUE), run one derivation pass and print the
value or error of every source in insertion order.

Cycles and failing transforms are reported per source and do not fail
the command unless --strict is set. With --db the pass is appended to a
SQLite pass log.

Examples:
  glimpse eval ./dashboard.yaml
  glimpse eval ./dashboard.cue --db ./glimpse.db
  glimpse eval ./dashboard.yaml --format json --trace`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "append the pass to this SQLite pass log")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "exit 1 if any source is circular or failed")

	return cmd
}

func runEval(opts *EvalOptions, path string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := openSession(opts.RootOptions, path)
	if err != nil {
		return err
	}

	tracing, err := opts.tracing(cmd.ErrOrStderr())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to set up tracing", err)
	}
	defer func() {
		if err := tracing.Shutdown(context.Background()); err != nil {
			opts.Logger().Error("tracing shutdown failed", "error", err)
		}
	}()

	runnerOpts := []engine.Option{
		engine.WithLogger(opts.Logger()),
		engine.WithManifest(path),
		engine.WithTracer(tracing.Tracer()),
	}
	if opts.IDGenerator != nil {
		runnerOpts = append(runnerOpts, engine.WithIDGenerator(opts.IDGenerator))
	}
	if db := dbPath(opts.Database, opts.RootOptions); db != "" {
		st, err := openLog(db, false)
		if err != nil {
			return err
		}
		defer func() {
			if err := st.Close(); err != nil {
				opts.Logger().Error("error closing database", "error", err)
			}
		}()
		runnerOpts = append(runnerOpts, engine.WithStore(st))
	}

	runner := engine.New(s.coll, runnerOpts...)
	if err := runner.Resume(ctx); err != nil {
		return WrapExitError(ExitCommandError, "failed to read pass log", err).withCode(ErrCodeStore)
	}
	pass, err := runner.Run(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "pass failed", err).withCode(ErrCodePass)
	}

	report, err := passReport(pass)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to render results", err)
	}

	f := opts.formatter(cmd)
	if opts.Strict && (len(report.Failed) > 0 || len(report.Cycles) > 0) {
		msg := fmt.Sprintf("%d source(s) failed, %d cycle(s)", len(report.Failed), len(report.Cycles))
		if err := f.Failure(ErrCodeStrict, msg, report, func(w io.Writer) { writePassText(w, report) }); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg).withCode(ErrCodeStrict).reported()
	}
	return f.Success(report, func(w io.Writer) { writePassText(w, report) })
}

func writePassText(w io.Writer, r PassReport) {
	writeResults(w, r.Results)
	fmt.Fprintf(w, "\npass %s (seq %d): %d evaluated, %d cycle(s), %d failed\n",
		r.ID, r.Seq, len(r.Evaluated), len(r.Cycles), len(r.Failed))
}

// writeResults prints one aligned "id  value" line per result.
func writeResults(w io.Writer, views []ResultView) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, v := range views {
		fmt.Fprintf(tw, "%s\t%s\n", v.ID, v)
	}
	_ = tw.Flush()
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
