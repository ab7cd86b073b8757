package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/abibind/internal/ir"
)

// Exit codes for CLI commands.
const (
	ExitFailure      = 1 // Unexpected failure
	ExitCommandError = 2 // Bad input, compile error or unwritable output
)

// Error codes reported by the CLI. Compile errors use the E2xx codes of
// ir.ErrorKind.
const (
	ErrCodeGeneric     = "E001"
	ErrCodeReadFailed  = "E002"
	ErrCodeWriteFailed = "E003"
	ErrCodeManifest    = "E004"
)

// ExitError is a failure that has already been reported to the user.
// main only turns it into an exit code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

// ExitCode returns the exit code carried by err, or ExitFailure.
func ExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Printer writes command results to Out in the selected format. Progress
// lines go to Diag so that JSON on Out stays parseable.
type Printer struct {
	Format  string
	Out     io.Writer
	Diag    io.Writer
	Verbose bool
}

// envelope is the JSON form of every command result.
type envelope struct {
	Status string     `json:"status"` // "ok" or "error"
	Data   any        `json:"data,omitempty"`
	Error  *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"` // "E001", "E201", ...
	Message string `json:"message"`
}

// Result prints data as the successful outcome of a command.
func (p *Printer) Result(data any) error {
	if p.Format == "json" {
		return json.NewEncoder(p.Out).Encode(envelope{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(p.Out, data)
	return err
}

// Failure prints a coded error.
func (p *Printer) Failure(code, message string) error {
	if p.Format == "json" {
		return json.NewEncoder(p.Out).Encode(envelope{
			Status: "error",
			Error:  &errorBody{Code: code, Message: message},
		})
	}
	_, err := fmt.Fprintf(p.Out, "Error [%s]: %s\n", code, message)
	return err
}

// Logf prints a progress line to Diag in verbose mode.
func (p *Printer) Logf(format string, args ...any) {
	if p.Verbose {
		fmt.Fprintf(p.Diag, format+"\n", args...)
	}
}

// errorCode returns the CLI code for err: the kind code of a compile
// error anywhere in its chain, else ErrCodeGeneric.
func errorCode(err error) (string, string) {
	var ce *ir.CompileError
	if errors.As(err, &ce) {
		return ce.Kind.Code(), err.Error()
	}
	return ErrCodeGeneric, err.Error()
}

// fail prints the error and returns the ExitError the command should
// return.
func fail(p *Printer, code, message string) error {
	_ = p.Failure(code, message)
	return &ExitError{Code: ExitCommandError, Message: code + ": " + message}
}

// failErr reports err with the code errorCode assigns it.
func failErr(p *Printer, err error) error {
	code, message := errorCode(err)
	return fail(p, code, message)
}
