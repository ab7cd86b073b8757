// Package typemap maps ABI types to Go type expressions and collects the
// struct declarations that tuples need.
package typemap

import (
	"encoding/hex"
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/abibind/abi"
	"github.com/roach88/abibind/internal/ir"
	"github.com/roach88/abibind/internal/selector"
)

// TargetType is the Go spelling of one ABI type.
type TargetType struct {
	Expr    string // e.g. "[]*big.Int", "[4]byte", "common.Address", "Point"
	Type    abi.Type
	Dynamic bool
}

// Struct is a named Go struct generated for a tuple.
type Struct struct {
	Name   string
	Fields []StructField
	Tuple  abi.Tuple
	Shape  string // canonical type with names; equal shapes share a struct
}

// StructField is one field of a generated struct.
type StructField struct {
	Name string
	Type TargetType
}

// Mapper maps types for one compile run. Tuples seen by Map are recorded
// so that each struct is declared once.
type Mapper struct {
	structs map[string]*Struct
}

// New returns an empty Mapper.
func New() *Mapper {
	return &Mapper{structs: make(map[string]*Struct)}
}

// Collect maps every parameter of desc and returns the resulting Mapper.
func Collect(desc *ir.InterfaceDescription) (*Mapper, error) {
	m := New()
	for _, fn := range desc.Functions {
		if err := m.mapParams(fn.Inputs, "function "+fn.Name); err != nil {
			return nil, err
		}
		if err := m.mapParams(fn.Outputs, "function "+fn.Name); err != nil {
			return nil, err
		}
	}
	for _, ev := range desc.Events {
		for _, p := range ev.Inputs {
			if _, err := m.MapParam(p); err != nil {
				return nil, withEntry(err, "event "+ev.Name)
			}
		}
	}
	for _, e := range desc.Errors {
		if err := m.mapParams(e.Inputs, "error "+e.Name); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Mapper) mapParams(params []ir.Param, entry string) error {
	for _, p := range params {
		if _, err := m.Map(p.Type); err != nil {
			return withEntry(err, entry)
		}
	}
	return nil
}

func withEntry(err error, entry string) error {
	var ce *ir.CompileError
	if errors.As(err, &ce) && ce.Entry == "" {
		ce.Entry = entry
	}
	return err
}

// Map returns the Go type for t.
func (m *Mapper) Map(t abi.Type) (TargetType, error) {
	expr, err := m.expr(t)
	if err != nil {
		return TargetType{}, err
	}
	return TargetType{Expr: expr, Type: t, Dynamic: t.IsDynamic()}, nil
}

// MapParam maps an event input. An indexed input whose type is dynamic
// or composite is only available as its topic hash, so it maps to
// common.Hash.
func (m *Mapper) MapParam(p ir.Param) (TargetType, error) {
	if p.Indexed {
		if _, ok := p.Type.(abi.Elementary); !ok || p.Type.IsDynamic() {
			return TargetType{Expr: "common.Hash", Type: p.Type}, nil
		}
	}
	return m.Map(p.Type)
}

// Structs returns every struct recorded so far, sorted by name.
func (m *Mapper) Structs() []*Struct {
	out := make([]*Struct, 0, len(m.structs))
	for _, s := range m.structs {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b *Struct) int { return strings.Compare(a.Name, b.Name) })
	return out
}

func (m *Mapper) expr(t abi.Type) (string, error) {
	switch t := t.(type) {
	case abi.Elementary:
		return elementary(t)
	case abi.Slice:
		elem, err := m.expr(t.Elem)
		if err != nil {
			return "", err
		}
		return "[]" + elem, nil
	case abi.Array:
		elem, err := m.expr(t.Elem)
		if err != nil {
			return "", err
		}
		return "[" + strconv.Itoa(t.Len) + "]" + elem, nil
	case abi.Tuple:
		return m.tuple(t)
	}
	return "", ir.Errorf(ir.UnsupportedType, "", "", "unknown type %T", t)
}

func elementary(t abi.Elementary) (string, error) {
	switch t.Kind {
	case abi.UintKind:
		return intExpr("uint", t.Size), nil
	case abi.IntKind:
		return intExpr("int", t.Size), nil
	case abi.AddressKind:
		return "common.Address", nil
	case abi.BoolKind:
		return "bool", nil
	case abi.StringKind:
		return "string", nil
	case abi.BytesKind:
		return "[]byte", nil
	case abi.FixedBytesKind:
		return "[" + strconv.Itoa(t.Size) + "]byte", nil
	case abi.FunctionKind:
		return "[24]byte", nil
	}
	return "", ir.Errorf(ir.UnsupportedType, "", "", "unknown elementary type %s", t)
}

// intExpr uses the native integer of exactly size bits and *big.Int for
// every other width, the way go-ethereum decodes them.
func intExpr(prefix string, size int) string {
	switch size {
	case 8, 16, 32, 64:
		return prefix + strconv.Itoa(size)
	}
	return "*big.Int"
}

func (m *Mapper) tuple(t abi.Tuple) (string, error) {
	shape := Shape(t)
	name := GoName(t.Name)
	if name == "" {
		h := selector.Keccak256([]byte(shape))
		name = "Tuple" + hex.EncodeToString(h[:4])
	}

	if prev, ok := m.structs[name]; ok {
		if prev.Shape != shape {
			return "", ir.Errorf(ir.DuplicateEmittedName, "", "",
				"struct %s declared with two different shapes: %s and %s", name, prev.Shape, shape)
		}
		return name, nil
	}

	s := &Struct{Name: name, Tuple: t, Shape: shape, Fields: make([]StructField, len(t.Fields))}
	seen := make(map[string]bool, len(t.Fields))
	for i, f := range t.Fields {
		ft, err := m.Map(f.Type)
		if err != nil {
			return "", err
		}
		fname := FieldName(f.Name, i)
		if seen[fname] {
			return "", ir.Errorf(ir.DuplicateEmittedName, "", "", "struct %s has two fields named %s", name, fname)
		}
		seen[fname] = true
		s.Fields[i] = StructField{Name: fname, Type: ft}
	}
	m.structs[name] = s
	return name, nil
}

// Shape spells t like its canonical type string but keeps component and
// struct names, e.g. "Point(uint256 x,uint256 y)".
func Shape(t abi.Type) string {
	switch t := t.(type) {
	case abi.Slice:
		return Shape(t.Elem) + "[]"
	case abi.Array:
		return Shape(t.Elem) + "[" + strconv.Itoa(t.Len) + "]"
	case abi.Tuple:
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = Shape(f.Type)
			if f.Name != "" {
				parts[i] += " " + f.Name
			}
		}
		return t.Name + "(" + strings.Join(parts, ",") + ")"
	}
	return t.String()
}
