package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/glimpse/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Source   string // show one source across passes
	Pass     string // show one pass with its results
	Limit    int
}

// SourceHistoryEntry is one logged result of a source.
type SourceHistoryEntry struct {
	PassID  string `json:"pass_id"`
	PassSeq int64  `json:"pass_seq"`
	ResultView
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show logged derivation passes",
		Long: `Show the passes recorded by "glimpse eval --db".

Without flags the latest passes are listed, oldest first. --pass prints
one pass with every source result, --source follows one source across
all passes.

Examples:
  glimpse history --db ./glimpse.db
  glimpse history --db ./glimpse.db --limit 5
  glimpse history --db ./glimpse.db --source total
  glimpse history --db ./glimpse.db --pass 0192f0c4-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the SQLite pass log")
	cmd.Flags().StringVar(&opts.Source, "source", "", "follow one source id across passes")
	cmd.Flags().StringVar(&opts.Pass, "pass", "", "show one pass with its results")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "number of passes to list (0 for all)")
	cmd.MarkFlagsMutuallyExclusive("source", "pass")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	db := dbPath(opts.Database, opts.RootOptions)
	if db == "" {
		return NewExitError(ExitCommandError, "no pass log: use --db or set db in the config").withCode(ErrCodeStore)
	}
	st, err := openLog(db, true)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			opts.Logger().Error("error closing database", "error", err)
		}
	}()

	f := opts.formatter(cmd)
	switch {
	case opts.Pass != "":
		return showPass(ctx, f, st, opts.Pass)
	case opts.Source != "":
		return showSource(ctx, f, st, opts.Source)
	default:
		return listPasses(ctx, f, st, opts.Limit)
	}
}

func listPasses(ctx context.Context, f *OutputFormatter, st *store.Store, limit int) error {
	passes, err := st.ReadPasses(ctx, limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read passes", err).withCode(ErrCodeStore)
	}
	reports := make([]PassReport, 0, len(passes))
	for _, p := range passes {
		r, err := passReport(p)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to render pass", err)
		}
		reports = append(reports, r)
	}

	return f.Success(reports, func(w io.Writer) {
		if len(reports) == 0 {
			fmt.Fprintln(w, "No passes logged.")
			return
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SEQ\tPASS\tDIGEST\tEVALUATED\tCYCLES\tFAILED")
		for _, r := range reports {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\n",
				r.Seq, r.ID, shortDigest(r.Digest), len(r.Evaluated), len(r.Cycles), len(r.Failed))
		}
		_ = tw.Flush()
	})
}

func showPass(ctx context.Context, f *OutputFormatter, st *store.Store, id string) error {
	p, err := st.ReadPass(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return WrapExitError(ExitFailure, "pass not found", err).withCode(ErrCodeStore)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read pass", err).withCode(ErrCodeStore)
	}
	report, err := passReport(p)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to render pass", err)
	}
	return f.Success(report, func(w io.Writer) {
		if report.Manifest != "" {
			fmt.Fprintf(w, "manifest: %s\n", report.Manifest)
		}
		fmt.Fprintf(w, "digest:   %s\n\n", report.Digest)
		writePassText(w, report)
	})
}

func showSource(ctx context.Context, f *OutputFormatter, st *store.Store, id string) error {
	snaps, err := st.ReadSourceHistory(ctx, id)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read source history", err).withCode(ErrCodeStore)
	}
	entries := make([]SourceHistoryEntry, 0, len(snaps))
	for _, s := range snaps {
		v, err := resultView(s.SourceResult)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to render result", err)
		}
		entries = append(entries, SourceHistoryEntry{PassID: s.PassID, PassSeq: s.PassSeq, ResultView: v})
	}

	return f.Success(entries, func(w io.Writer) {
		if len(entries) == 0 {
			fmt.Fprintf(w, "No logged results for %q.\n", id)
			return
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, e := range entries {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", e.PassSeq, e.PassID, e.ResultView)
		}
		_ = tw.Flush()
	})
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
