package abi

import (
	"strconv"
	"strings"
)

// wordSize is the size of one ABI head slot.
const wordSize = 32

// Kind identifies an elementary ABI type.
type Kind uint8

const (
	UintKind Kind = iota + 1
	IntKind
	AddressKind
	BoolKind
	StringKind
	BytesKind
	FixedBytesKind
	FunctionKind
)

// Type is a sealed interface over the four ABI type shapes.
// Only Elementary, Slice, Array and Tuple implement it.
//
// String returns the canonical spelling used in signatures: no field
// names, tuples rendered as a parenthesized component list.
type Type interface {
	String() string
	IsDynamic() bool
	abiType() // Sealed
}

// Elementary is a non-composite type. Size is the bit width for
// UintKind/IntKind and the byte length for FixedBytesKind; it is zero
// for every other kind.
type Elementary struct {
	Kind Kind
	Size int
}

// Slice is a dynamically sized array, T[].
type Slice struct {
	Elem Type
}

// Array is a fixed size array, T[Len].
type Array struct {
	Elem Type
	Len  int
}

// Tuple is an ordered list of named components.
// Name is the struct name taken from the ABI's internalType, if any.
// It never appears in the canonical spelling.
type Tuple struct {
	Name   string
	Fields []Field
}

// Field is one tuple component.
type Field struct {
	Name string
	Type Type
}

func (Elementary) abiType() {}
func (Slice) abiType()      {}
func (Array) abiType()      {}
func (Tuple) abiType()      {}

func (t Elementary) String() string {
	switch t.Kind {
	case UintKind:
		return "uint" + strconv.Itoa(t.Size)
	case IntKind:
		return "int" + strconv.Itoa(t.Size)
	case AddressKind:
		return "address"
	case BoolKind:
		return "bool"
	case StringKind:
		return "string"
	case BytesKind:
		return "bytes"
	case FixedBytesKind:
		return "bytes" + strconv.Itoa(t.Size)
	case FunctionKind:
		return "function"
	}
	return "invalid"
}

func (t Slice) String() string { return t.Elem.String() + "[]" }

func (t Array) String() string { return t.Elem.String() + "[" + strconv.Itoa(t.Len) + "]" }

func (t Tuple) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = f.Type.String()
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// IsDynamic reports whether the value is encoded out of line.
func (t Elementary) IsDynamic() bool {
	return t.Kind == StringKind || t.Kind == BytesKind
}

func (Slice) IsDynamic() bool { return true }

func (t Array) IsDynamic() bool { return t.Elem.IsDynamic() }

func (t Tuple) IsDynamic() bool {
	for _, f := range t.Fields {
		if f.Type.IsDynamic() {
			return true
		}
	}
	return false
}

// HeadSize returns the number of bytes t occupies in the head of an
// enclosing tuple: 32 for dynamic types, the full inline size otherwise.
func HeadSize(t Type) int {
	if t.IsDynamic() {
		return wordSize
	}
	switch t := t.(type) {
	case Array:
		return t.Len * HeadSize(t.Elem)
	case Tuple:
		n := 0
		for _, f := range t.Fields {
			n += HeadSize(f.Type)
		}
		return n
	default:
		return wordSize
	}
}

// Types renders a list of types as their canonical spellings.
func Types(ts []Type) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.String()
	}
	return out
}
