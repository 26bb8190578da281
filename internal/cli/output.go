package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/glimpse/internal/ir"
	"github.com/roach88/glimpse/internal/store"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Invalid manifest, failing scenarios, failed sources under --strict
	ExitCommandError = 2 // Command error (unreadable files, database not found, etc.)
)

// Error codes reported in JSON responses.
const (
	ErrCodeGeneric    = "E_GENERIC"
	ErrCodeLoad       = "E_LOAD"
	ErrCodeInvalid    = "E_INVALID"
	ErrCodeStore      = "E_STORE"
	ErrCodePass       = "E_PASS"
	ErrCodeStrict     = "E_STRICT"
	ErrCodeTestFailed = "E_TEST_FAILED"
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	ErrCode string // JSON error code; ErrCodeGeneric when empty
	Message string
	Err     error // Underlying error (optional)

	// Reported is set when the command already wrote its own failure
	// report, so Execute only sets the exit code.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// withCode sets the JSON error code.
func (e *ExitError) withCode(code string) *ExitError {
	e.ErrCode = code
	return e
}

// reported marks the failure as already written.
func (e *ExitError) reported() *ExitError {
	e.Reported = true
	return e
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON reports whether output is machine readable.
func (f *OutputFormatter) JSON() bool {
	return f.Format == "json"
}

// Success writes data as a JSON response, or calls text to render it.
func (f *OutputFormatter) Success(data any, text func(w io.Writer)) error {
	if f.JSON() {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	text(f.Writer)
	return nil
}

// Failure writes a failed response. In JSON mode data is kept alongside
// the error; in text mode text renders it first.
func (f *OutputFormatter) Failure(code, message string, data any, text func(w io.Writer)) error {
	if f.JSON() {
		return f.encode(CLIResponse{Status: "error", Data: data, Error: &CLIError{Code: code, Message: message}})
	}
	if text != nil {
		text(f.Writer)
	}
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.JSON() {
		return f.encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	return nil
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// ResultView is the printable form of one source result.
type ResultView struct {
	ID    string          `json:"id"`
	Kind  string          `json:"kind,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
	Error *ErrorView      `json:"error,omitempty"`
}

// ErrorView is the printable form of a DerivationError.
type ErrorView struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func resultView(r store.SourceResult) (ResultView, error) {
	v := ResultView{ID: r.SourceID, Kind: r.Kind}
	if r.ErrorCode != "" {
		v.Error = &ErrorView{Code: r.ErrorCode, Message: r.ErrorMessage}
		return v, nil
	}
	data, err := ir.MarshalCanonical(r.Value)
	if err != nil {
		return v, fmt.Errorf("source %s: %w", r.SourceID, err)
	}
	v.Value = data
	return v, nil
}

func resultViews(results []store.SourceResult) ([]ResultView, error) {
	views := make([]ResultView, 0, len(results))
	for _, r := range results {
		v, err := resultView(r)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// String renders the value or the error of a result on one line.
func (v ResultView) String() string {
	if v.Error != nil {
		return "! " + v.Error.Message
	}
	return string(v.Value)
}
