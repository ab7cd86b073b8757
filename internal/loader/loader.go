// Package loader parses ABI JSON into the compiler's IR.
//
// The document is first checked against an embedded CUE schema, then
// decoded and converted entry by entry. Constructor, fallback and receive
// entries are recognized and skipped.
package loader

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/roach88/abibind/abi"
	"github.com/roach88/abibind/internal/ir"
	"github.com/roach88/abibind/internal/selector"
	"github.com/roach88/abibind/internal/typemap"
)

//go:embed schema.cue
var schemaSource string

// maxIndexed is the number of topics a non-anonymous event may index.
const maxIndexed = 3

type rawParam struct {
	Name         string          `json:"name"`
	Type         string          `json:"type"`
	InternalType string          `json:"internalType"`
	Indexed      bool            `json:"indexed"`
	Components   []abi.Component `json:"components"`
}

type rawEntry struct {
	Type            *string     `json:"type"`
	Name            *string     `json:"name"`
	Inputs          *[]rawParam `json:"inputs"`
	Outputs         []rawParam  `json:"outputs"`
	StateMutability string      `json:"stateMutability"`
	Constant        *bool       `json:"constant"`
	Payable         *bool       `json:"payable"`
	Anonymous       bool        `json:"anonymous"`
}

// Parse converts abiText into an InterfaceDescription. Every failure is
// an *ir.CompileError.
func Parse(abiText []byte) (*ir.InterfaceDescription, error) {
	entries, err := decode(abiText)
	if err != nil {
		return nil, err
	}

	desc := &ir.InterfaceDescription{}
	for i, e := range entries {
		if e.Type == nil {
			return nil, ir.Errorf(ir.MalformedAbi, entryLabel(i), "type", "missing entry type")
		}
		switch *e.Type {
		case "constructor", "fallback", "receive":
			continue
		case "function":
			fn, err := parseFunction(i, e)
			if err != nil {
				return nil, err
			}
			fn.Index = len(desc.Functions)
			desc.Functions = append(desc.Functions, fn)
		case "event":
			ev, err := parseEvent(i, e)
			if err != nil {
				return nil, err
			}
			ev.Index = len(desc.Events)
			desc.Events = append(desc.Events, ev)
		case "error":
			er, err := parseError(i, e)
			if err != nil {
				return nil, err
			}
			er.Index = len(desc.Errors)
			desc.Errors = append(desc.Errors, er)
		default:
			return nil, ir.Errorf(ir.UnsupportedAbiEntry, entryLabel(i), "type", "unknown entry type %q", *e.Type)
		}
	}

	if err := checkMutabilityConflicts(desc); err != nil {
		return nil, err
	}
	return desc, nil
}

// decode validates the document against the schema and decodes it.
func decode(abiText []byte) ([]rawEntry, error) {
	expr, err := cuejson.Extract("abi.json", abiText)
	if err != nil {
		return nil, &ir.CompileError{Kind: ir.MalformedAbi, Message: "invalid JSON: " + firstCUEError(err), Err: err}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("loader: compiling schema: %w", err)
	}

	doc := ctx.BuildExpr(expr)
	v := schema.LookupPath(cue.ParsePath("#ABI")).Unify(doc)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, &ir.CompileError{Kind: ir.MalformedAbi, Message: firstCUEError(err), Err: err}
	}

	var entries []rawEntry
	if err := v.Decode(&entries); err != nil {
		return nil, &ir.CompileError{Kind: ir.MalformedAbi, Message: firstCUEError(err), Err: err}
	}
	return entries, nil
}

func firstCUEError(err error) string {
	if errs := cueerrors.Errors(err); len(errs) > 0 {
		return errs[0].Error()
	}
	return err.Error()
}

func entryLabel(i int) string {
	return fmt.Sprintf("entry %d", i)
}

// header checks the fields every function, event and error needs.
func header(i int, e rawEntry) (string, error) {
	if e.Name == nil || *e.Name == "" {
		return "", ir.Errorf(ir.MalformedAbi, entryLabel(i), "name", "%s entry has no name", *e.Type)
	}
	label := *e.Type + " " + *e.Name
	if typemap.GoName(*e.Name) == "" {
		return "", ir.Errorf(ir.MalformedAbi, label, "name", "name %q has no Go identifier form", *e.Name)
	}
	if e.Inputs == nil {
		return "", ir.Errorf(ir.MalformedAbi, label, "inputs", "missing inputs")
	}
	return label, nil
}

func parseFunction(i int, e rawEntry) (*ir.FunctionDescriptor, error) {
	label, err := header(i, e)
	if err != nil {
		return nil, err
	}
	inputs, err := parseParams(label, "inputs", *e.Inputs)
	if err != nil {
		return nil, err
	}
	outputs, err := parseParams(label, "outputs", e.Outputs)
	if err != nil {
		return nil, err
	}
	if len(outputs) > 1 {
		if err := checkFieldNames(label, "outputs", outputs); err != nil {
			return nil, err
		}
	}
	mut, err := mutability(label, e)
	if err != nil {
		return nil, err
	}
	return &ir.FunctionDescriptor{Name: *e.Name, Inputs: inputs, Outputs: outputs, Mutability: mut}, nil
}

func parseEvent(i int, e rawEntry) (*ir.EventDescriptor, error) {
	label, err := header(i, e)
	if err != nil {
		return nil, err
	}
	inputs, err := parseParams(label, "inputs", *e.Inputs)
	if err != nil {
		return nil, err
	}
	if err := checkFieldNames(label, "inputs", inputs); err != nil {
		return nil, err
	}

	limit := maxIndexed
	if e.Anonymous {
		limit++
	}
	indexed := 0
	for _, p := range inputs {
		if p.Indexed {
			indexed++
		}
	}
	if indexed > limit {
		return nil, ir.Errorf(ir.MalformedAbi, label, "inputs", "%d indexed inputs, at most %d allowed", indexed, limit)
	}
	return &ir.EventDescriptor{Name: *e.Name, Inputs: inputs, Anonymous: e.Anonymous}, nil
}

func parseError(i int, e rawEntry) (*ir.ErrorDescriptor, error) {
	label, err := header(i, e)
	if err != nil {
		return nil, err
	}
	inputs, err := parseParams(label, "inputs", *e.Inputs)
	if err != nil {
		return nil, err
	}
	if err := checkFieldNames(label, "inputs", inputs); err != nil {
		return nil, err
	}
	return &ir.ErrorDescriptor{Name: *e.Name, Inputs: inputs}, nil
}

func parseParams(label, field string, raw []rawParam) ([]ir.Param, error) {
	params := make([]ir.Param, len(raw))
	for j, p := range raw {
		path := fmt.Sprintf("%s[%d]", field, j)
		typ, err := abi.NewType(p.Type, p.InternalType, p.Components)
		if err != nil {
			return nil, &ir.CompileError{Kind: ir.UnsupportedType, Entry: label, Field: path + ".type", Message: err.Error(), Err: err}
		}
		if err := checkComponents(label, path, p.Components); err != nil {
			return nil, err
		}
		params[j] = ir.Param{Name: p.Name, Type: typ, Indexed: p.Indexed}
	}
	return params, nil
}

// checkComponents rejects tuples whose components would share a Go field
// name.
func checkComponents(label, path string, components []abi.Component) error {
	seen := make(map[string]string, len(components))
	for k, c := range components {
		cpath := fmt.Sprintf("%s.components[%d]", path, k)
		if c.Name != "" {
			goName := typemap.GoName(c.Name)
			if prev, ok := seen[goName]; ok {
				return ir.Errorf(ir.MalformedAbi, label, cpath+".name", "component %q clashes with %q", c.Name, prev)
			}
			seen[goName] = c.Name
		}
		if err := checkComponents(label, cpath, c.Components); err != nil {
			return err
		}
	}
	return nil
}

// checkFieldNames rejects parameter lists that become struct fields with
// clashing names.
func checkFieldNames(label, field string, params []ir.Param) error {
	seen := make(map[string]string, len(params))
	for j, p := range params {
		name := typemap.FieldName(p.Name, j)
		if prev, ok := seen[name]; ok {
			return ir.Errorf(ir.MalformedAbi, label, fmt.Sprintf("%s[%d].name", field, j),
				"parameter %q clashes with %q", p.Name, prev)
		}
		seen[name] = p.Name
	}
	return nil
}

// mutability reads stateMutability, falling back to the legacy constant
// and payable flags. Both forms must agree when both are present.
func mutability(label string, e rawEntry) (ir.Mutability, error) {
	constant := e.Constant != nil && *e.Constant
	payable := e.Payable != nil && *e.Payable

	if e.StateMutability == "" {
		switch {
		case constant && payable:
			return "", ir.Errorf(ir.MalformedAbi, label, "payable", "function cannot be both constant and payable")
		case payable:
			return ir.Payable, nil
		case constant:
			return ir.View, nil
		}
		return ir.NonPayable, nil
	}

	m, ok := ir.ParseMutability(e.StateMutability)
	if !ok {
		return "", ir.Errorf(ir.MalformedAbi, label, "stateMutability", "unknown state mutability %q", e.StateMutability)
	}
	readOnly := m == ir.View || m == ir.Pure
	if e.Constant != nil && *e.Constant != readOnly {
		return "", ir.Errorf(ir.MalformedAbi, label, "constant", "constant=%t contradicts stateMutability %q", *e.Constant, m)
	}
	if e.Payable != nil && *e.Payable != (m == ir.Payable) {
		return "", ir.Errorf(ir.MalformedAbi, label, "payable", "payable=%t contradicts stateMutability %q", *e.Payable, m)
	}
	return m, nil
}

// checkMutabilityConflicts rejects two declarations of one signature
// with different mutability. Exact duplicates are left to overload
// resolution.
func checkMutabilityConflicts(desc *ir.InterfaceDescription) error {
	seen := make(map[string]ir.Mutability, len(desc.Functions))
	for _, fn := range desc.Functions {
		sig := selector.Signature(fn.Name, fn.Inputs)
		if prev, ok := seen[sig]; ok && prev != fn.Mutability {
			return ir.Errorf(ir.MalformedAbi, "function "+fn.Name, "stateMutability",
				"%s declared both %s and %s", sig, prev, fn.Mutability)
		}
		seen[sig] = fn.Mutability
	}
	return nil
}
