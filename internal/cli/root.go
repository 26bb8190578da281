package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/glimpse/internal/engine"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // explicit config file
	Trace   bool   // write pass spans to stderr

	// DB is the default pass log from config or GLIMPSE_DB. A command's
	// own --db flag wins over it.
	DB string

	logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// ConfigName is the config file looked up in the working directory when
// --config is not given.
const ConfigName = "glimpse"

// NewRootCommand creates the root command for the glimpse CLI.
func NewRootCommand() *cobra.Command {
	cmd, _ := newRoot()
	return cmd
}

func newRoot() (*cobra.Command, *RootOptions) {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "glimpse",
		Short: "glimpse - named data sources with derivations",
		Long: `A registry of named data sources. Raw sources hold data, derived sources
compute their value from other sources picked by id or tag.

Configuration is read from ./glimpse.yaml (or --config) and GLIMPSE_*
environment variables; flags win over both.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "config file (default ./glimpse.yaml)")
	cmd.PersistentFlags().BoolVar(&opts.Trace, "trace", false, "write pass spans to stderr")

	// Add subcommands
	cmd.AddCommand(NewEvalCommand(opts))
	cmd.AddCommand(NewSelectCommand(opts))
	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd, opts
}

// load merges config file, environment and flags into opts and sets up
// the logger.
func (o *RootOptions) load(cmd *cobra.Command) error {
	v := viper.New()
	v.SetDefault("db", "")
	v.SetEnvPrefix("GLIMPSE")
	v.AutomaticEnv()

	flags := cmd.Root().PersistentFlags()
	for _, name := range []string{"format", "verbose", "trace"} {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			return WrapExitError(ExitCommandError, "failed to bind flag", err)
		}
	}

	if o.Config != "" {
		v.SetConfigFile(o.Config)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if o.Config != "" || !errors.As(err, &notFound) {
			return WrapExitError(ExitCommandError, "failed to read config", err)
		}
	}

	o.Format = v.GetString("format")
	o.Verbose = v.GetBool("verbose")
	o.Trace = v.GetBool("trace")
	o.DB = v.GetString("db")

	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	if used := v.ConfigFileUsed(); used != "" {
		o.logger.Debug("config loaded", "path", used)
	}
	return nil
}

// Logger returns the configured logger. Before the root command has run
// it discards everything.
func (o *RootOptions) Logger() *slog.Logger {
	if o.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.logger
}

// tracing returns pass span tracing writing to w when --trace is set and
// a no-op tracer otherwise.
func (o *RootOptions) tracing(w io.Writer) (*engine.Tracing, error) {
	if !o.Trace {
		w = nil
	}
	return engine.NewTracing(w)
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}

// Execute runs the CLI with args and returns the process exit code.
// Errors a command did not report itself are written in the selected
// format: JSON on stdout, text on stderr.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd, opts := newRoot()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Reported {
		return exitErr.Code
	}

	code := ErrCodeGeneric
	if exitErr != nil && exitErr.ErrCode != "" {
		code = exitErr.ErrCode
	}
	if opts.Format == "json" {
		f := &OutputFormatter{Format: "json", Writer: stdout}
		_ = f.Error(code, err.Error(), nil)
	} else {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return GetExitCode(err)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
