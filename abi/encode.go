package abi

import (
	"fmt"
	"math/big"
	"reflect"
)

var bigT = reflect.TypeOf((*big.Int)(nil))

// Encode packs values according to types using the head/tail layout of a
// tuple. Values follow the Go conventions described in the package doc.
func Encode(types []Type, values ...any) ([]byte, error) {
	if len(values) != len(types) {
		return nil, fmt.Errorf("abi: argument count mismatch: have %d, want %d", len(values), len(types))
	}
	vals := make([]reflect.Value, len(values))
	for i, v := range values {
		vals[i] = reflect.ValueOf(v)
		if err := checkValue(types[i], vals[i]); err != nil {
			return nil, fmt.Errorf("abi: %w", err)
		}
	}

	args, err := arguments(types, goTypes(vals))
	if err != nil {
		return nil, err
	}
	return args.Pack(values...)
}

// checkValue rejects what go-ethereum would pack silently or panic on:
// missing values, nil pointers, and *big.Int values outside the range of
// their type.
func checkValue(t Type, v reflect.Value) error {
	for v.IsValid() && v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	if !v.IsValid() {
		return fmt.Errorf("missing value for %s", t)
	}
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return fmt.Errorf("nil %s for %s", v.Type(), t)
		}
		if v.Type() != bigT {
			return checkValue(t, v.Elem())
		}
	}

	switch t := t.(type) {
	case Elementary:
		if v.Type() == bigT {
			x := v.Interface().(*big.Int)
			if (t.Kind == UintKind || t.Kind == IntKind) && !fits(t, x) {
				return fmt.Errorf("value %s out of range for %s", x, t)
			}
		}
	case Slice:
		return checkElems(t.Elem, v)
	case Array:
		return checkElems(t.Elem, v)
	case Tuple:
		if v.Kind() != reflect.Struct || v.NumField() != len(t.Fields) {
			return nil
		}
		for i, f := range t.Fields {
			if !v.Type().Field(i).IsExported() {
				continue
			}
			if err := checkValue(f.Type, v.Field(i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkElems(elem Type, v reflect.Value) error {
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil
	}
	for i := 0; i < v.Len(); i++ {
		if err := checkValue(elem, v.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

// fits reports whether x is representable in t.
func fits(t Elementary, x *big.Int) bool {
	if t.Kind == UintKind {
		return x.Sign() >= 0 && x.BitLen() <= t.Size
	}
	limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
	if x.Sign() >= 0 {
		return x.Cmp(limit) < 0
	}
	return x.Cmp(new(big.Int).Neg(limit)) >= 0
}
