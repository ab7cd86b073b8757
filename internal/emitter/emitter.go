// Package emitter renders a derived InterfaceDescription as one Go source
// file.
//
// Output depends only on the IR. Functions keep declaration order by
// overload group, with group members ordered by ascending selector;
// events and errors follow, sorted by name and then declaration order.
package emitter

import (
	"bytes"
	"cmp"
	_ "embed"
	"fmt"
	"go/format"
	"go/token"
	"slices"
	"strconv"
	"strings"
	"text/template"

	"github.com/roach88/abibind/abi"
	"github.com/roach88/abibind/internal/ir"
	"github.com/roach88/abibind/internal/overload"
	"github.com/roach88/abibind/internal/selector"
	"github.com/roach88/abibind/internal/typemap"
)

// RuntimeImport is the import path of the package generated code calls.
const RuntimeImport = "github.com/roach88/abibind/abi"

//go:embed bindings.go.tpl
var tmplSource string

var tmpl = template.Must(template.New("bindings").Parse(tmplSource))

// Options controls emission.
type Options struct {
	Package string // Go package name of the generated file
}

type tmplData struct {
	Digest    string
	Package   string
	Runtime   string
	Structs   []*typemap.Struct
	Functions []*tmplFunction
	Events    []*tmplEvent
	Errors    []*tmplError
}

type tmplField struct {
	Name string
	Expr string
}

type tmplFunction struct {
	Name      string
	Var       string
	Signature string
	Selector  string
	Hex       string
	Solidity  string
	Params    []tmplField
	ParamList string
	Inputs    string
	Outputs   string
	Out       string
	OutType   string
	OutFields []tmplField
}

type tmplEvent struct {
	Var       string
	Type      string
	Decoder   string
	Signature string
	Topic     string
	Anonymous bool
	Inputs    string
	Indexed   string
	Fields    []tmplField
}

type tmplError struct {
	Var       string
	Type      string
	Decoder   string
	Signature string
	Selector  string
	Inputs    string
	Fields    []tmplField
}

// Emit renders desc. Selectors and emitted names must already be
// derived. The result is gofmt-formatted.
func Emit(desc *ir.InterfaceDescription, opts Options) ([]byte, error) {
	if !token.IsIdentifier(opts.Package) || token.IsKeyword(opts.Package) {
		return nil, fmt.Errorf("emitter: invalid package name %q", opts.Package)
	}

	digest, err := ir.SourceDigest(desc)
	if err != nil {
		return nil, err
	}
	mapper, err := typemap.Collect(desc)
	if err != nil {
		return nil, err
	}

	data := tmplData{
		Digest:  digest,
		Package: opts.Package,
		Runtime: RuntimeImport,
		Structs: mapper.Structs(),
	}
	for _, fn := range orderFunctions(desc.Functions) {
		f, err := buildFunction(mapper, fn)
		if err != nil {
			return nil, err
		}
		data.Functions = append(data.Functions, f)
	}
	for _, ev := range orderByName(desc.Events, func(e *ir.EventDescriptor) (string, int) { return e.Name, e.Index }) {
		e, err := buildEvent(mapper, ev)
		if err != nil {
			return nil, err
		}
		data.Events = append(data.Events, e)
	}
	for _, er := range orderByName(desc.Errors, func(e *ir.ErrorDescriptor) (string, int) { return e.Name, e.Index }) {
		e, err := buildError(mapper, er)
		if err != nil {
			return nil, err
		}
		data.Errors = append(data.Errors, e)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("emitter: executing template: %w", err)
	}
	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("emitter: formatting output: %w", err)
	}
	return out, nil
}

// orderFunctions sorts overload groups by the declaration index of their
// first member and members by ascending selector.
func orderFunctions(fns []*ir.FunctionDescriptor) []*ir.FunctionDescriptor {
	first := make(map[string]int, len(fns))
	for _, fn := range fns {
		if idx, ok := first[fn.Name]; !ok || fn.Index < idx {
			first[fn.Name] = fn.Index
		}
	}
	out := slices.Clone(fns)
	slices.SortStableFunc(out, func(a, b *ir.FunctionDescriptor) int {
		if c := cmp.Compare(first[a.Name], first[b.Name]); c != 0 {
			return c
		}
		if c := bytes.Compare(a.Selector[:], b.Selector[:]); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
	return out
}

func orderByName[T any](items []T, key func(T) (string, int)) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		an, ai := key(a)
		bn, bi := key(b)
		if c := strings.Compare(an, bn); c != 0 {
			return c
		}
		return cmp.Compare(ai, bi)
	})
	return out
}

func buildFunction(m *typemap.Mapper, fn *ir.FunctionDescriptor) (*tmplFunction, error) {
	f := &tmplFunction{
		Name:      fn.EmittedName,
		Var:       overload.MethodVar(fn.Selector),
		Signature: fn.Signature,
		Selector:  selectorLiteral(fn.Selector),
		Hex:       selector.Hex(fn.Selector[:]),
		Solidity:  solidity(fn),
		Inputs:    quoteTypes(fn.Inputs),
		Outputs:   quoteTypes(fn.Outputs),
	}

	taken := make(map[string]bool, len(fn.Inputs))
	params := make([]string, len(fn.Inputs))
	for i, p := range fn.Inputs {
		tt, err := m.Map(p.Type)
		if err != nil {
			return nil, err
		}
		name := typemap.ParamName(p.Name, i, taken)
		taken[name] = true
		f.Params = append(f.Params, tmplField{Name: name, Expr: tt.Expr})
		params[i] = name + " " + tt.Expr
	}
	f.ParamList = strings.Join(params, ", ")

	switch len(fn.Outputs) {
	case 0:
		f.Out = "struct{}"
	case 1:
		tt, err := m.Map(fn.Outputs[0].Type)
		if err != nil {
			return nil, err
		}
		f.Out = tt.Expr
	default:
		fields, err := structFields(m, fn.Outputs, false)
		if err != nil {
			return nil, err
		}
		f.OutType = overload.OutputType(fn.EmittedName)
		f.OutFields = fields
		f.Out = f.OutType
	}
	return f, nil
}

func buildEvent(m *typemap.Mapper, ev *ir.EventDescriptor) (*tmplEvent, error) {
	fields, err := structFields(m, ev.Inputs, true)
	if err != nil {
		return nil, err
	}
	indexed := make([]string, len(ev.Inputs))
	for i, p := range ev.Inputs {
		indexed[i] = strconv.FormatBool(p.Indexed)
	}
	return &tmplEvent{
		Var:       overload.EventVar(ev.Topic),
		Type:      overload.EventType(ev.EmittedName),
		Decoder:   overload.EventDecoder(ev.EmittedName),
		Signature: ev.Signature,
		Topic:     selector.Hex(ev.Topic[:]),
		Anonymous: ev.Anonymous,
		Inputs:    quoteTypes(ev.Inputs),
		Indexed:   strings.Join(indexed, ", "),
		Fields:    fields,
	}, nil
}

func buildError(m *typemap.Mapper, e *ir.ErrorDescriptor) (*tmplError, error) {
	fields, err := structFields(m, e.Inputs, false)
	if err != nil {
		return nil, err
	}
	return &tmplError{
		Var:       overload.ErrorVar(e.Selector),
		Type:      overload.ErrorType(e.EmittedName),
		Decoder:   overload.ErrorDecoder(e.EmittedName),
		Signature: e.Signature,
		Selector:  selectorLiteral(e.Selector),
		Inputs:    quoteTypes(e.Inputs),
		Fields:    fields,
	}, nil
}

func structFields(m *typemap.Mapper, params []ir.Param, event bool) ([]tmplField, error) {
	fields := make([]tmplField, len(params))
	for i, p := range params {
		var (
			tt  typemap.TargetType
			err error
		)
		if event {
			tt, err = m.MapParam(p)
		} else {
			tt, err = m.Map(p.Type)
		}
		if err != nil {
			return nil, err
		}
		fields[i] = tmplField{Name: typemap.FieldName(p.Name, i), Expr: tt.Expr}
	}
	return fields, nil
}

func quoteTypes(params []ir.Param) string {
	quoted := make([]string, len(params))
	for i, t := range abi.Types(ir.Types(params)) {
		quoted[i] = strconv.Quote(t)
	}
	return strings.Join(quoted, ", ")
}

func selectorLiteral(sel [4]byte) string {
	return fmt.Sprintf("[4]byte{0x%02x, 0x%02x, 0x%02x, 0x%02x}", sel[0], sel[1], sel[2], sel[3])
}

// solidity renders fn the way a Solidity interface declares it.
func solidity(fn *ir.FunctionDescriptor) string {
	var b strings.Builder
	b.WriteString("function " + fn.Name + "(" + paramDecls(fn.Inputs) + ") " + string(fn.Mutability))
	if len(fn.Outputs) > 0 {
		b.WriteString(" returns(" + paramDecls(fn.Outputs) + ")")
	}
	return b.String()
}

func paramDecls(params []ir.Param) string {
	decls := make([]string, len(params))
	for i, p := range params {
		decls[i] = p.Type.String()
		if p.Name != "" {
			decls[i] += " " + p.Name
		}
	}
	return strings.Join(decls, ", ")
}
