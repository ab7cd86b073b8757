package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/abibind/internal/compiler"
	"github.com/roach88/abibind/internal/ir"
	"github.com/roach88/abibind/internal/selector"
)

// SelectorRow is one line of the selectors table.
type SelectorRow struct {
	Kind      string `json:"kind"` // "function" | "event" | "error"
	Signature string `json:"signature"`
	Selector  string `json:"selector"` // 4-byte selector, or the 32-byte topic of an event
	Name      string `json:"name"`     // emitted Go identifier
}

// NewSelectorsCommand creates the selectors command.
func NewSelectorsCommand(rootOpts *RootOptions) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "selectors",
		Short: "List selectors, topics and emitted names of an ABI",
		Long: `List every function, event and error of an ABI with its canonical
signature, selector (topic for events) and the Go name generate would
emit for it.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelectors(rootOpts, input, cmd)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "ABI JSON file")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runSelectors(opts *RootOptions, input string, cmd *cobra.Command) error {
	printer := newPrinter(opts, cmd)

	abiText, err := os.ReadFile(input)
	if err != nil {
		return fail(printer, ErrCodeReadFailed, fmt.Sprintf("reading input: %v", err))
	}
	desc, err := compiler.Inspect(abiText, compiler.Options{Logger: newLogger(opts, printer.Diag)})
	if err != nil {
		return failErr(printer, err)
	}

	rows := selectorRows(desc)
	if printer.Format == "json" {
		return printer.Result(rows)
	}

	tw := tabwriter.NewWriter(printer.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tSELECTOR\tSIGNATURE\tNAME")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Kind, r.Selector, r.Signature, r.Name)
	}
	return tw.Flush()
}

func selectorRows(desc *ir.InterfaceDescription) []SelectorRow {
	rows := make([]SelectorRow, 0, len(desc.Functions)+len(desc.Events)+len(desc.Errors))
	for _, fn := range desc.Functions {
		rows = append(rows, SelectorRow{"function", fn.Signature, selector.Hex(fn.Selector[:]), fn.EmittedName})
	}
	for _, ev := range desc.Events {
		rows = append(rows, SelectorRow{"event", ev.Signature, selector.Hex(ev.Topic[:]), ev.EmittedName})
	}
	for _, e := range desc.Errors {
		rows = append(rows, SelectorRow{"error", e.Signature, selector.Hex(e.Selector[:]), e.EmittedName})
	}
	return rows
}
