package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/abibind/internal/compiler"
)

// ValidationResult holds the outcome for one ABI file.
type ValidationResult struct {
	File      string    `json:"file"`
	Valid     bool      `json:"valid"`
	Functions int       `json:"functions"`
	Events    int       `json:"events"`
	Errors    int       `json:"errors"`
	Error     *errorBody `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <abi.json>...",
		Short: "Check ABI files without generating code",
		Long: `Check ABI files without generating code.

Runs parsing, selector derivation and name resolution on every file and
reports all failures, not just the first.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, files []string, cmd *cobra.Command) error {
	printer := newPrinter(opts, cmd)
	log := newLogger(opts, printer.Diag)

	results := make([]ValidationResult, len(files))
	failed := 0
	for i, file := range files {
		printer.Logf("Validating %s", file)
		results[i] = validateFile(file, compiler.Options{Logger: log})
		if !results[i].Valid {
			failed++
		}
	}

	if printer.Format == "json" {
		if err := printer.Result(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Valid {
				fmt.Fprintf(printer.Out, "✓ %s: %d function(s), %d event(s), %d error(s)\n",
					r.File, r.Functions, r.Events, r.Errors)
				continue
			}
			fmt.Fprintf(printer.Out, "✗ %s\n  %s: %s\n", r.File, r.Error.Code, r.Error.Message)
		}
	}

	if failed > 0 {
		return &ExitError{Code: ExitCommandError, Message: fmt.Sprintf("%d of %d file(s) invalid", failed, len(files))}
	}
	return nil
}

func validateFile(file string, opts compiler.Options) ValidationResult {
	result := ValidationResult{File: file}

	abiText, err := os.ReadFile(file)
	if err != nil {
		result.Error = &errorBody{Code: ErrCodeReadFailed, Message: fmt.Sprintf("reading input: %v", err)}
		return result
	}
	desc, err := compiler.Inspect(abiText, opts)
	if err != nil {
		code, message := errorCode(err)
		result.Error = &errorBody{Code: code, Message: message}
		return result
	}

	result.Valid = true
	result.Functions = len(desc.Functions)
	result.Events = len(desc.Events)
	result.Errors = len(desc.Errors)
	return result
}
