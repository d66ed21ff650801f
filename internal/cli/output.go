package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes. A query a dialect cannot render is a failure of the input, not
// of the command, so it exits 1 like a failed validation.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // invalid models, failed scenarios, unrenderable queries
	ExitCommandError = 2 // bad paths, unknown dialect, unreadable query document
)

// ExitError carries the process exit code up to Execute.
type ExitError struct {
	Code    int
	Message string
	Err     error
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

// NewExitError creates an ExitError without an underlying cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError attaches an exit code to err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode maps an error returned by a command to an exit code. Errors
// that carry no code (cobra's argument errors, for one) exit 1.
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

// OutputFormatter writes command results as text or as a JSON envelope.
// Diagnostics go to ErrWriter so that stdout stays parseable.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

// CLIResponse is the JSON envelope of every command.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is an error in the JSON envelope. Code is an E0xx/E2xx model code
// or a dialect error kind such as UNSUPPORTED_TYPE.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// encoder returns a JSON encoder that leaves <, > and & alone: they appear
// in rendered SQL and in type names like array<string>.
func (f *OutputFormatter) encoder() *json.Encoder {
	enc := json.NewEncoder(f.Writer)
	enc.SetEscapeHTML(false)
	return enc
}

// Success writes data, wrapped in an "ok" envelope for JSON.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.encoder().Encode(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error writes an error. Text output shows details only when verbose.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.encoder().Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Encode writes v as indented JSON with no envelope.
func (f *OutputFormatter) Encode(v any) error {
	enc := f.encoder()
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// VerboseLog writes a progress line when verbose.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns ErrWriter, or Writer when none is set.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
