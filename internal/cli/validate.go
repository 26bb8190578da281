package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/roach88/glimpse/internal/collection"
	"github.com/roach88/glimpse/internal/manifest"
	"github.com/roach88/glimpse/internal/transform"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Strict bool // cycles are errors
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool                      `json:"valid"`
	Sources int                       `json:"sources"`
	Errors  []string                  `json:"errors,omitempty"`
	Cycles  []collection.CycleWarning `json:"cycles,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <manifest>",
		Short: "Check a manifest without evaluating it",
		Long: `Check every declaration of a manifest and report dependency cycles
between derived sources. Nothing is evaluated.

All declaration errors are reported at once. Cycles are warnings unless
--strict is set.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "treat dependency cycles as errors")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	m, err := manifest.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load manifest", err).withCode(ErrCodeLoad)
	}
	opts.Logger().Debug("validating manifest", "path", path, "sources", len(m.Sources))

	reg := transform.Default()
	result := ValidationResult{Sources: len(m.Sources), Errors: validationMessages(manifest.Validate(m, reg))}

	if len(result.Errors) == 0 {
		coll := collection.New(collection.WithLogger(opts.Logger()))
		if _, err := manifest.Build(coll, m, reg); err != nil {
			return WrapExitError(ExitFailure, "invalid manifest", err).withCode(ErrCodeInvalid)
		}
		result.Cycles = coll.AnalyzeCycles()
	}
	result.Valid = len(result.Errors) == 0 && (!opts.Strict || len(result.Cycles) == 0)

	f := opts.formatter(cmd)
	text := func(w io.Writer) { writeValidationText(w, path, result) }
	if result.Valid {
		return f.Success(result, text)
	}

	msg := fmt.Sprintf("%d error(s), %d cycle(s)", len(result.Errors), len(result.Cycles))
	if err := f.Failure(ErrCodeInvalid, msg, result, text); err != nil {
		return err
	}
	return NewExitError(ExitFailure, msg).withCode(ErrCodeInvalid).reported()
}

// validationMessages flattens an aggregated validation error.
func validationMessages(err error) []string {
	if err == nil {
		return nil
	}
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		return []string{err.Error()}
	}
	msgs := make([]string, len(merr.Errors))
	for i, e := range merr.Errors {
		msgs[i] = e.Error()
	}
	return msgs
}

func writeValidationText(w io.Writer, path string, r ValidationResult) {
	for _, e := range r.Errors {
		fmt.Fprintf(w, "✗ %s\n", e)
	}
	for _, c := range r.Cycles {
		fmt.Fprintf(w, "⚠ %s\n", c.Message)
	}
	if r.Valid {
		fmt.Fprintf(w, "✓ %s valid (%d sources)\n", path, r.Sources)
	}
}
