package abi

import (
	"fmt"
	"reflect"
	"strings"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
)

// DecodeError reports return data, log data or revert data that does not
// match the expected encoding.
type DecodeError struct {
	Type   string // canonical type being decoded
	Offset int    // byte offset into the input
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("abi: cannot decode %s at offset %d: %s", e.Type, e.Offset, e.Reason)
}

// Decode unpacks data laid out as a tuple of types into the pointers in
// outs, one per type.
func Decode(types []Type, data []byte, outs ...any) error {
	if len(outs) != len(types) {
		return fmt.Errorf("abi: output count mismatch: have %d, want %d", len(outs), len(types))
	}
	dsts := make([]reflect.Value, len(outs))
	for i, o := range outs {
		rv := reflect.ValueOf(o)
		if rv.Kind() != reflect.Pointer || rv.IsNil() {
			return fmt.Errorf("abi: output %d must be a non-nil pointer, have %T", i, o)
		}
		dsts[i] = rv.Elem()
	}
	return decodeInto(types, data, dsts)
}

// DecodeStruct unpacks data laid out as a tuple of types into the fields
// of the struct pointed to by out, in field order.
func DecodeStruct(types []Type, data []byte, out any) error {
	dsts, err := structTargets(out, len(types))
	if err != nil {
		return err
	}
	return decodeInto(types, data, dsts)
}

func structTargets(out any, n int) ([]reflect.Value, error) {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("abi: output must be a non-nil pointer to a struct, have %T", out)
	}
	sv := rv.Elem()
	if sv.NumField() != n {
		return nil, fmt.Errorf("abi: %s has %d fields, want %d", sv.Type(), sv.NumField(), n)
	}
	dsts := make([]reflect.Value, n)
	for i := range dsts {
		if !sv.Field(i).CanSet() {
			return nil, fmt.Errorf("abi: field %s of %s is not settable", sv.Type().Field(i).Name, sv.Type())
		}
		dsts[i] = sv.Field(i)
	}
	return dsts, nil
}

// decodeInto unpacks data with go-ethereum and copies the values into
// dsts. Only the canonical encoding is accepted: data must be word
// aligned, carry no trailing bytes and re-encode to itself, which rules
// out dirty padding and out of range integers.
func decodeInto(types []Type, data []byte, dsts []reflect.Value) error {
	whole := tupleString(types)
	if rem := len(data) % wordSize; rem != 0 {
		return &DecodeError{Type: whole, Offset: len(data) - rem,
			Reason: fmt.Sprintf("length %d is not a multiple of %d", len(data), wordSize)}
	}

	args, err := arguments(types, goTypes(dsts))
	if err != nil {
		return err
	}
	values, err := args.UnpackValues(data)
	if err != nil {
		return &DecodeError{Type: whole, Offset: 0, Reason: err.Error()}
	}

	head := 0
	for i, v := range values {
		if err := checkValue(types[i], reflect.ValueOf(v)); err != nil {
			return &DecodeError{Type: types[i].String(), Offset: head, Reason: err.Error()}
		}
		head += HeadSize(types[i])
	}

	canonical, err := args.Pack(values...)
	if err != nil {
		return &DecodeError{Type: whole, Offset: 0, Reason: err.Error()}
	}
	if off, reason := firstDifference(data, canonical); reason != "" {
		return &DecodeError{Type: typeAt(types, off, whole), Offset: off, Reason: reason}
	}

	for i, v := range values {
		if err := assign(types[i], dsts[i], v); err != nil {
			return err
		}
	}
	return nil
}

func firstDifference(data, canonical []byte) (int, string) {
	n := min(len(data), len(canonical))
	for i := 0; i < n; i++ {
		if data[i] != canonical[i] {
			return i, "not the canonical encoding (dirty padding or non-standard offset)"
		}
	}
	if len(data) > n {
		return n, fmt.Sprintf("%d trailing bytes", len(data)-n)
	}
	if len(canonical) > n {
		return n, "data ends early"
	}
	return 0, ""
}

// typeAt names the top-level type whose head holds off, or whole when
// off falls in the tail.
func typeAt(types []Type, off int, whole string) string {
	pos := 0
	for _, t := range types {
		pos += HeadSize(t)
		if off < pos {
			return t.String()
		}
	}
	return whole
}

func tupleString(types []Type) string {
	if len(types) == 1 {
		return types[0].String()
	}
	return "(" + strings.Join(Types(types), ",") + ")"
}

// assign copies a value produced by go-ethereum into dst, allocating
// through pointers other than *big.Int.
func assign(t Type, dst reflect.Value, v any) (err error) {
	if dst.Kind() == reflect.Pointer && dst.Type() != bigT {
		p := reflect.New(dst.Type().Elem())
		if err := assign(t, p.Elem(), v); err != nil {
			return err
		}
		dst.Set(p)
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("abi: cannot decode %s into Go type %s: %v", t, dst.Type(), r)
		}
	}()
	converted := gethabi.ConvertType(v, reflect.New(dst.Type()).Interface())
	dst.Set(reflect.ValueOf(converted).Elem())
	return nil
}
