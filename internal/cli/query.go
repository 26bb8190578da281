package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/glimpse/internal/collection"
	"github.com/roach88/glimpse/internal/store"
)

// SelectResult is the output of the select command.
type SelectResult struct {
	Selector string       `json:"selector"`
	Items    []ResultView `json:"items"`
}

// ResolveResult is the output of the resolve command.
type ResolveResult struct {
	Selector string   `json:"selector"`
	IDs      []string `json:"ids"`
}

// NewSelectCommand creates the select command.
func NewSelectCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "select <manifest> <selector>",
		Short: "Print the values a selector picks",
		Long: `Run one derivation pass over a manifest, then print the value of every
source the selector picks, in resolution order.

A selector is a comma separated list of ids and tags. "*" picks every
source tagged "*", "+" every source tagged "+". A source picked by two
tokens appears twice.

Examples:
  glimpse select ./dashboard.yaml "revenue,costs"
  glimpse select ./dashboard.yaml "*" --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelect(rootOpts, args[0], args[1], cmd)
		},
	}
}

func runSelect(opts *RootOptions, path, expr string, cmd *cobra.Command) error {
	s, err := openSession(opts, path)
	if err != nil {
		return err
	}
	s.coll.UpdateDerivations()

	sel := s.coll.Select(collection.Literal(expr))
	results := make([]store.SourceResult, 0, sel.Len())
	for _, it := range sel.Items() {
		r := store.SourceResult{SourceID: it.ID, Kind: it.Kind.String()}
		if it.Result.OK() {
			r.Value = it.Result.Value
		} else {
			r.ErrorCode = string(it.Result.Err.Code)
			r.ErrorMessage = it.Result.Err.Error()
		}
		results = append(results, r)
	}
	views, err := resultViews(results)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to render results", err)
	}

	out := SelectResult{Selector: expr, Items: views}
	return opts.formatter(cmd).Success(out, func(w io.Writer) {
		if len(views) == 0 {
			fmt.Fprintf(w, "No sources match %q.\n", expr)
			return
		}
		writeResults(w, views)
	})
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <manifest> <selector>",
		Short: "Print the source ids a selector expands to",
		Long: `Print the ids a selector expands to, one per line, without evaluating
any derivation.

Examples:
  glimpse resolve ./dashboard.yaml "totals, +"`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(rootOpts, args[0], args[1], cmd)
		},
	}
}

func runResolve(opts *RootOptions, path, expr string, cmd *cobra.Command) error {
	s, err := openSession(opts, path)
	if err != nil {
		return err
	}

	ids := s.coll.Resolve(expr)
	return opts.formatter(cmd).Success(ResolveResult{Selector: expr, IDs: ids}, func(w io.Writer) {
		for _, id := range ids {
			fmt.Fprintln(w, id)
		}
	})
}
