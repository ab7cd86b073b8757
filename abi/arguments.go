package abi

import (
	"fmt"
	"reflect"
	"strconv"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
)

// arguments converts types into go-ethereum arguments for values of the
// Go types in goTypes. A nil Go type is allowed wherever no struct is
// involved.
//
// go-ethereum pairs tuple components with struct fields by name while
// the structs of this package are positional, so every component is
// named after the Go field at the same position.
func arguments(types []Type, goTypes []reflect.Type) (gethabi.Arguments, error) {
	args := make(gethabi.Arguments, len(types))
	for i, t := range types {
		m, err := marshaling("arg"+strconv.Itoa(i), t, goTypes[i])
		if err != nil {
			return nil, err
		}
		typ, err := gethabi.NewType(m.Type, "", m.Components)
		if err != nil {
			return nil, fmt.Errorf("abi: %s: %w", t, err)
		}
		args[i] = gethabi.Argument{Name: m.Name, Type: typ}
	}
	return args, nil
}

// marshaling spells t the way ABI JSON does: "tuple" plus array suffixes
// and a component list for tuples, the canonical string otherwise.
func marshaling(name string, t Type, rt reflect.Type) (gethabi.ArgumentMarshaling, error) {
	suffix := ""
	for {
		rt = deref(rt)
		if s, ok := t.(Slice); ok {
			suffix = "[]" + suffix
			t, rt = s.Elem, elemType(rt)
			continue
		}
		if a, ok := t.(Array); ok {
			suffix = "[" + strconv.Itoa(a.Len) + "]" + suffix
			t, rt = a.Elem, elemType(rt)
			continue
		}
		break
	}

	tuple, ok := t.(Tuple)
	if !ok {
		return gethabi.ArgumentMarshaling{Name: name, Type: t.String() + suffix}, nil
	}
	if rt != nil && (rt.Kind() != reflect.Struct || rt.NumField() != len(tuple.Fields)) {
		return gethabi.ArgumentMarshaling{}, fmt.Errorf("abi: %s has %d components, Go type %s does not match",
			tuple, len(tuple.Fields), rt)
	}

	m := gethabi.ArgumentMarshaling{
		Name:       name,
		Type:       "tuple" + suffix,
		Components: make([]gethabi.ArgumentMarshaling, len(tuple.Fields)),
	}
	for i, f := range tuple.Fields {
		fname, ft := "Field"+strconv.Itoa(i), reflect.Type(nil)
		if rt != nil {
			sf := rt.Field(i)
			if !sf.IsExported() {
				return gethabi.ArgumentMarshaling{}, fmt.Errorf("abi: field %s of %s is not exported", sf.Name, rt)
			}
			fname, ft = sf.Name, sf.Type
		}
		c, err := marshaling(fname, f.Type, ft)
		if err != nil {
			return gethabi.ArgumentMarshaling{}, err
		}
		m.Components[i] = c
	}
	return m, nil
}

// deref strips pointers. Interfaces say nothing about the value inside
// and come back as nil.
func deref(rt reflect.Type) reflect.Type {
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt != nil && rt.Kind() == reflect.Interface {
		return nil
	}
	return rt
}

func elemType(rt reflect.Type) reflect.Type {
	if rt == nil || (rt.Kind() != reflect.Slice && rt.Kind() != reflect.Array) {
		return nil
	}
	return rt.Elem()
}

func goTypes(vals []reflect.Value) []reflect.Type {
	out := make([]reflect.Type, len(vals))
	for i, v := range vals {
		if v.IsValid() {
			out[i] = v.Type()
		}
	}
	return out
}
