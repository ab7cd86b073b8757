// Package compiler runs the ABI-to-bindings pipeline.
//
// Stages run in a fixed order and the first failure stops the run:
//
//	loader.Parse -> selector.Derive -> overload.Resolve -> emitter.Emit
//
// A stage failure is returned as the stage's *ir.CompileError, not
// wrapped, so ir.KindOf always recovers the kind.
package compiler

import (
	"go.uber.org/zap"

	"github.com/roach88/abibind/internal/emitter"
	"github.com/roach88/abibind/internal/ir"
	"github.com/roach88/abibind/internal/loader"
	"github.com/roach88/abibind/internal/overload"
	"github.com/roach88/abibind/internal/selector"
)

// DefaultPackage is the package name used when Options.Package is empty.
const DefaultPackage = "bindings"

// Options configures a compile run.
type Options struct {
	// Package is the Go package name of the generated file.
	Package string

	// Logger receives one debug line per stage. Nil means no logging.
	Logger *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o Options) pkg() string {
	if o.Package == "" {
		return DefaultPackage
	}
	return o.Package
}

// Compile turns ABI JSON into Go binding source.
func Compile(abiText []byte, opts Options) (string, error) {
	log := opts.logger()

	desc, err := Inspect(abiText, opts)
	if err != nil {
		return "", err
	}

	out, err := emitter.Emit(desc, emitter.Options{Package: opts.pkg()})
	if err != nil {
		return "", err
	}
	log.Debug("emitted bindings",
		zap.String("package", opts.pkg()),
		zap.Int("bytes", len(out)))
	return string(out), nil
}

// Inspect runs every stage except emission and returns the derived
// description.
func Inspect(abiText []byte, opts Options) (*ir.InterfaceDescription, error) {
	log := opts.logger()

	desc, err := loader.Parse(abiText)
	if err != nil {
		return nil, err
	}
	log.Debug("parsed abi",
		zap.Int("functions", len(desc.Functions)),
		zap.Int("events", len(desc.Events)),
		zap.Int("errors", len(desc.Errors)))

	selector.Derive(desc)
	log.Debug("derived selectors")

	if err := overload.Resolve(desc); err != nil {
		return nil, err
	}
	log.Debug("resolved names", zap.Int("overload_groups", OverloadGroups(desc)))
	return desc, nil
}

// OverloadGroups counts the function, event and error names declared
// more than once.
func OverloadGroups(desc *ir.InterfaceDescription) int {
	count := func(names []string) int {
		seen := make(map[string]int, len(names))
		groups := 0
		for _, n := range names {
			seen[n]++
			if seen[n] == 2 {
				groups++
			}
		}
		return groups
	}

	var fns, evs, errs []string
	for _, fn := range desc.Functions {
		fns = append(fns, fn.Name)
	}
	for _, ev := range desc.Events {
		evs = append(evs, ev.Name)
	}
	for _, e := range desc.Errors {
		errs = append(errs, e.Name)
	}
	return count(fns) + count(evs) + count(errs)
}
