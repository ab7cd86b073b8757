package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/abibind/internal/compiler"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Input   string // ABI JSON path
	Output  string // output file path; stdout when empty
	Package string // Go package name
}

// GenerateResult describes one generated file.
type GenerateResult struct {
	Input   string `json:"input"`
	Output  string `json:"output,omitempty"`
	Package string `json:"package"`
	Bytes   int    `json:"bytes"`
	Source  string `json:"source,omitempty"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate Go bindings from an ABI JSON file",
		Long: `Generate a Go source file from a contract ABI.

Overloaded functions, events and errors get a selector suffix
(e.g. SafeTransferFrom__0x42842e0e). The output file is only written
when compilation succeeds.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "ABI JSON file")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path (default stdout)")
	cmd.Flags().StringVar(&opts.Package, "pkg", "", "Go package name (default: output directory name, else bindings)")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runGenerate(opts *GenerateOptions, cmd *cobra.Command) error {
	printer := newPrinter(opts.RootOptions, cmd)

	abiText, err := os.ReadFile(opts.Input)
	if err != nil {
		return fail(printer, ErrCodeReadFailed, fmt.Sprintf("reading input: %v", err))
	}
	printer.Logf("Read %d byte(s) from %s", len(abiText), opts.Input)

	pkg := packageFor(opts.Package, opts.Output)
	source, err := compiler.Compile(abiText, compiler.Options{
		Package: pkg,
		Logger:  newLogger(opts.RootOptions, printer.Diag),
	})
	if err != nil {
		return failErr(printer, err)
	}

	result := GenerateResult{Input: opts.Input, Output: opts.Output, Package: pkg, Bytes: len(source)}
	if opts.Output == "" {
		if printer.Format == "json" {
			result.Source = source
			return printer.Result(result)
		}
		_, err := fmt.Fprint(printer.Out, source)
		return err
	}

	if err := writeFileAtomic(opts.Output, []byte(source)); err != nil {
		return fail(printer, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
	}

	if printer.Format == "json" {
		return printer.Result(result)
	}
	fmt.Fprintf(printer.Out, "✓ Generated package %s (%d bytes)\n", pkg, len(source))
	fmt.Fprintf(printer.Out, "Wrote bindings to %s\n", opts.Output)
	return nil
}
