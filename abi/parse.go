package abi

import (
	"fmt"
	"strconv"
	"strings"
)

// Component is a parameter as spelled in ABI JSON: a type string, plus
// nested components when the type is a tuple.
type Component struct {
	Name         string      `json:"name"`
	Type         string      `json:"type"`
	InternalType string      `json:"internalType,omitempty"`
	Components   []Component `json:"components,omitempty"`
}

// TypeError reports a type string outside the supported grammar.
type TypeError struct {
	Type   string
	Reason string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("abi: unsupported type %q: %s", e.Type, e.Reason)
}

func typeErr(typ, reason string) *TypeError {
	return &TypeError{Type: typ, Reason: reason}
}

// NewType parses an ABI JSON type string. At least one component is
// required for "tuple" (and arrays of it); components are rejected for
// every other type.
// internalType only contributes the struct name of a tuple.
func NewType(typ, internalType string, components []Component) (Type, error) {
	if strings.Count(typ, "[") != strings.Count(typ, "]") {
		return nil, typeErr(typ, "unbalanced brackets")
	}

	if strings.HasSuffix(typ, "]") {
		i := strings.LastIndexByte(typ, '[')
		inner := typ[i+1 : len(typ)-1]
		elem, err := NewType(typ[:i], internalType, components)
		if err != nil {
			return nil, err
		}
		if inner == "" {
			return Slice{Elem: elem}, nil
		}
		n, reason := parseLength(inner)
		if reason != "" {
			return nil, typeErr(typ, reason)
		}
		return Array{Elem: elem, Len: n}, nil
	}
	if strings.ContainsAny(typ, "[]") {
		return nil, typeErr(typ, "malformed array suffix")
	}

	if typ == "tuple" {
		if len(components) == 0 {
			return nil, typeErr(typ, "tuple has no components")
		}
		fields := make([]Field, len(components))
		for i, c := range components {
			ft, err := NewType(c.Type, c.InternalType, c.Components)
			if err != nil {
				return nil, err
			}
			fields[i] = Field{Name: c.Name, Type: ft}
		}
		return Tuple{Name: structName(internalType), Fields: fields}, nil
	}
	if len(components) > 0 {
		return nil, typeErr(typ, "components are only valid on tuple types")
	}

	el, reason := parseElementary(typ)
	if reason != "" {
		return nil, typeErr(typ, reason)
	}
	return el, nil
}

// structName extracts "Point" from an internalType such as
// "struct Geometry.Point[2][]".
func structName(internalType string) string {
	name, ok := strings.CutPrefix(internalType, "struct ")
	if !ok {
		return ""
	}
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func parseElementary(s string) (Elementary, string) {
	switch s {
	case "address":
		return Elementary{Kind: AddressKind}, ""
	case "bool":
		return Elementary{Kind: BoolKind}, ""
	case "string":
		return Elementary{Kind: StringKind}, ""
	case "bytes":
		return Elementary{Kind: BytesKind}, ""
	case "function":
		return Elementary{Kind: FunctionKind}, ""
	}

	switch {
	case strings.HasPrefix(s, "uint"):
		bits, reason := parseBits(s[len("uint"):])
		return Elementary{Kind: UintKind, Size: bits}, reason
	case strings.HasPrefix(s, "int"):
		bits, reason := parseBits(s[len("int"):])
		return Elementary{Kind: IntKind, Size: bits}, reason
	case strings.HasPrefix(s, "bytes"):
		n, reason := parseDecimal(s[len("bytes"):])
		if reason == "" && (n < 1 || n > 32) {
			reason = "fixed bytes length must be between 1 and 32"
		}
		return Elementary{Kind: FixedBytesKind, Size: n}, reason
	case strings.HasPrefix(s, "fixed"), strings.HasPrefix(s, "ufixed"):
		return Elementary{}, "fixed-point types are not supported"
	case s == "":
		return Elementary{}, "empty type"
	}
	return Elementary{}, "unknown elementary type"
}

func parseBits(s string) (int, string) {
	n, reason := parseDecimal(s)
	if reason != "" {
		return 0, reason
	}
	if n < 8 || n > 256 || n%8 != 0 {
		return 0, "integer width must be a multiple of 8 between 8 and 256"
	}
	return n, ""
}

func parseLength(s string) (int, string) {
	n, reason := parseDecimal(s)
	if reason != "" {
		return 0, "array length: " + reason
	}
	if n == 0 {
		return 0, "array length must be positive"
	}
	return n, ""
}

// parseDecimal accepts a plain decimal without sign or leading zeros.
func parseDecimal(s string) (int, string) {
	if s == "" {
		return 0, "missing size"
	}
	if len(s) > 9 {
		return 0, "size out of range"
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, "size is not a decimal number"
		}
	}
	if len(s) > 1 && s[0] == '0' {
		return 0, "size has leading zeros"
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err.Error()
	}
	return n, ""
}

// ParseCanonical parses the canonical spelling produced by Type.String,
// e.g. "(uint256,(address,bytes)[])[2]". Tuple fields come back unnamed.
func ParseCanonical(s string) (Type, error) {
	p := &canonParser{src: s}
	t, err := p.parse()
	if err != nil {
		return nil, err
	}
	if p.pos != len(s) {
		return nil, typeErr(s, fmt.Sprintf("unexpected %q at offset %d", s[p.pos], p.pos))
	}
	return t, nil
}

// MustParseTypes parses canonical type strings and panics on failure.
// It is meant for package-level descriptors in generated code.
func MustParseTypes(specs ...string) []Type {
	out := make([]Type, len(specs))
	for i, s := range specs {
		t, err := ParseCanonical(s)
		if err != nil {
			panic(err)
		}
		out[i] = t
	}
	return out
}

type canonParser struct {
	src string
	pos int
}

func (p *canonParser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *canonParser) parse() (Type, error) {
	var t Type
	if p.peek() == '(' {
		tuple, err := p.parseTuple()
		if err != nil {
			return nil, err
		}
		t = tuple
	} else {
		start := p.pos
		for p.pos < len(p.src) && isIdentByte(p.src[p.pos]) {
			p.pos++
		}
		el, reason := parseElementary(p.src[start:p.pos])
		if reason != "" {
			return nil, typeErr(p.src, reason)
		}
		t = el
	}

	for p.peek() == '[' {
		p.pos++
		start := p.pos
		for p.pos < len(p.src) && p.src[p.pos] != ']' {
			p.pos++
		}
		if p.pos == len(p.src) {
			return nil, typeErr(p.src, "unbalanced brackets")
		}
		inner := p.src[start:p.pos]
		p.pos++
		if inner == "" {
			t = Slice{Elem: t}
			continue
		}
		n, reason := parseLength(inner)
		if reason != "" {
			return nil, typeErr(p.src, reason)
		}
		t = Array{Elem: t, Len: n}
	}
	return t, nil
}

func (p *canonParser) parseTuple() (Tuple, error) {
	p.pos++ // (
	var fields []Field
	if p.peek() == ')' {
		return Tuple{}, typeErr(p.src, "tuple has no components")
	}
	for {
		ft, err := p.parse()
		if err != nil {
			return Tuple{}, err
		}
		fields = append(fields, Field{Type: ft})
		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return Tuple{Fields: fields}, nil
		default:
			return Tuple{}, typeErr(p.src, "expected ',' or ')' in tuple")
		}
	}
}

func isIdentByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
