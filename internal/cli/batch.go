package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/roach88/abibind/internal/compiler"
)

// Manifest lists the bindings a batch run generates.
type Manifest struct {
	Bindings []ManifestEntry `yaml:"bindings"`
}

// ManifestEntry is one ABI to compile. Relative paths are resolved
// against the manifest's directory.
type ManifestEntry struct {
	Input   string `yaml:"input"`
	Output  string `yaml:"output"`
	Package string `yaml:"package,omitempty"`
}

// BatchOptions holds flags for the batch command.
type BatchOptions struct {
	*RootOptions
	Jobs int
}

// LoadManifest reads and checks a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if len(m.Bindings) == 0 {
		return nil, fmt.Errorf("manifest %s lists no bindings", path)
	}

	base := filepath.Dir(path)
	outputs := make(map[string]int, len(m.Bindings))
	for i := range m.Bindings {
		e := &m.Bindings[i]
		if e.Input == "" || e.Output == "" {
			return nil, fmt.Errorf("manifest %s: bindings[%d] needs input and output", path, i)
		}
		if !filepath.IsAbs(e.Input) {
			e.Input = filepath.Join(base, e.Input)
		}
		if !filepath.IsAbs(e.Output) {
			e.Output = filepath.Join(base, e.Output)
		}
		if prev, ok := outputs[e.Output]; ok {
			return nil, fmt.Errorf("manifest %s: bindings[%d] and bindings[%d] write %s", path, prev, i, e.Output)
		}
		outputs[e.Output] = i
	}
	return &m, nil
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "batch <manifest.yaml>",
		Short: "Generate every binding listed in a manifest",
		Long: `Generate the bindings listed in a YAML manifest:

  bindings:
    - input: abis/erc20.json
      output: erc20/bindings.go
      package: erc20

Entries compile in parallel. The first failure stops the run; files of
entries that already succeeded are kept.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", runtime.GOMAXPROCS(0), "number of parallel compiles")

	return cmd
}

func runBatch(opts *BatchOptions, manifestPath string, cmd *cobra.Command) error {
	printer := newPrinter(opts.RootOptions, cmd)

	if opts.Jobs < 1 {
		return fail(printer, ErrCodeGeneric, fmt.Sprintf("--jobs must be at least 1, got %d", opts.Jobs))
	}

	manifest, err := LoadManifest(manifestPath)
	if err != nil {
		return fail(printer, ErrCodeManifest, err.Error())
	}
	printer.Logf("Loaded %d binding(s) from %s", len(manifest.Bindings), manifestPath)

	log := newLogger(opts.RootOptions, printer.Diag)
	results := make([]GenerateResult, len(manifest.Bindings))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(opts.Jobs)
	for i, entry := range manifest.Bindings {
		i, entry := i, entry
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := generateEntry(entry, compiler.Options{
				Package: packageFor(entry.Package, entry.Output),
				Logger:  log.With(zap.String("input", entry.Input)),
			})
			if err != nil {
				return fmt.Errorf("%s: %w", entry.Input, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return failErr(printer, err)
	}

	if printer.Format == "json" {
		return printer.Result(results)
	}
	fmt.Fprintf(printer.Out, "✓ Generated %d binding(s)\n\n", len(results))
	for _, r := range results {
		fmt.Fprintf(printer.Out, "  %s -> %s (package %s)\n", r.Input, r.Output, r.Package)
	}
	return nil
}

func generateEntry(entry ManifestEntry, opts compiler.Options) (GenerateResult, error) {
	abiText, err := os.ReadFile(entry.Input)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("reading input: %w", err)
	}
	source, err := compiler.Compile(abiText, opts)
	if err != nil {
		return GenerateResult{}, err
	}
	if err := os.MkdirAll(filepath.Dir(entry.Output), 0o755); err != nil {
		return GenerateResult{}, fmt.Errorf("creating output directory: %w", err)
	}
	if err := writeFileAtomic(entry.Output, []byte(source)); err != nil {
		return GenerateResult{}, err
	}
	return GenerateResult{Input: entry.Input, Output: entry.Output, Package: opts.Package, Bytes: len(source)}, nil
}
