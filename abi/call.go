package abi

import (
	"encoding/hex"
	"fmt"
	"reflect"
)

// Method describes one contract function as seen by generated code.
type Method struct {
	Signature string // canonical, e.g. "transfer(address,uint256)"
	Selector  [4]byte
	Inputs    []Type
	Outputs   []Type
}

// ID returns the selector as 0x-prefixed lowercase hex.
func (m *Method) ID() string {
	return "0x" + hex.EncodeToString(m.Selector[:])
}

// Call is packed calldata for a method whose return value decodes to Out.
type Call[Out any] struct {
	Method *Method
	Data   []byte
}

// Decode unpacks the data returned by the call.
func (c Call[Out]) Decode(ret []byte) (Out, error) {
	return Unpack[Out](c.Method, ret)
}

// Pack builds calldata: the method selector followed by the encoded args.
func Pack[Out any](m *Method, args ...any) (Call[Out], error) {
	enc, err := Encode(m.Inputs, args...)
	if err != nil {
		return Call[Out]{}, fmt.Errorf("packing %s: %w", m.Signature, err)
	}
	data := make([]byte, 0, len(m.Selector)+len(enc))
	data = append(data, m.Selector[:]...)
	data = append(data, enc...)
	return Call[Out]{Method: m, Data: data}, nil
}

// Unpack decodes return data of m. With no outputs ret must be empty;
// with one output Out is that output's Go type; with several, Out is a
// struct holding one field per output in order.
func Unpack[Out any](m *Method, ret []byte) (Out, error) {
	var out Out
	var err error
	switch len(m.Outputs) {
	case 0:
		err = Decode(nil, ret)
	case 1:
		err = Decode(m.Outputs, ret, &out)
	default:
		if reflect.TypeOf((*Out)(nil)).Elem().Kind() != reflect.Struct {
			return out, fmt.Errorf("abi: %s returns %d values, %T is not a struct", m.Signature, len(m.Outputs), out)
		}
		err = DecodeStruct(m.Outputs, ret, &out)
	}
	if err != nil {
		var zero Out
		return zero, err
	}
	return out, nil
}
