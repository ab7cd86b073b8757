package abi

import (
	"bytes"
	"fmt"
	"reflect"
	"strconv"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Event describes one contract event. Indexed runs parallel to Inputs.
type Event struct {
	Signature string
	Topic     common.Hash
	Anonymous bool
	Inputs    []Type
	Indexed   []bool
}

// UnpackEvent decodes a log into out, a pointer to a struct with one
// field per event input in declaration order. Indexed inputs are read
// from topics, the rest from data. Indexed inputs of dynamic or composite
// type only carry their Keccak-256 hash, so their field must be a
// common.Hash.
func UnpackEvent(ev *Event, topics []common.Hash, data []byte, out any) error {
	if len(ev.Indexed) != len(ev.Inputs) {
		return fmt.Errorf("abi: event %s has %d inputs and %d indexed flags", ev.Signature, len(ev.Inputs), len(ev.Indexed))
	}
	dsts, err := structTargets(out, len(ev.Inputs))
	if err != nil {
		return err
	}

	first := 0
	if !ev.Anonymous {
		if len(topics) == 0 || topics[0] != ev.Topic {
			return &DecodeError{Type: ev.Signature, Offset: 0, Reason: "event signature mismatch"}
		}
		first = 1
	}

	want := 0
	for _, indexed := range ev.Indexed {
		if indexed {
			want++
		}
	}
	if len(topics)-first != want {
		return &DecodeError{Type: ev.Signature, Offset: 0,
			Reason: fmt.Sprintf("have %d indexed topics, want %d", len(topics)-first, want)}
	}

	var (
		dataTypes []Type
		dataDsts  []reflect.Value
		fields    gethabi.Arguments
		slots     []topicSlot
		next      = first
	)
	for i, t := range ev.Inputs {
		if !ev.Indexed[i] {
			dataTypes = append(dataTypes, t)
			dataDsts = append(dataDsts, dsts[i])
			continue
		}
		pos := next
		next++
		if hashedTopic(t) {
			if err := assign(t, dsts[i], topics[pos]); err != nil {
				return err
			}
			continue
		}
		args, err := arguments([]Type{t}, []reflect.Type{nil})
		if err != nil {
			return err
		}
		arg := args[0]
		arg.Name = "topic" + strconv.Itoa(pos)
		arg.Indexed = true
		fields = append(fields, arg)
		slots = append(slots, topicSlot{input: i, topic: pos})
	}

	if err := unpackTopics(ev, fields, slots, topics, dsts); err != nil {
		return err
	}
	return decodeInto(dataTypes, data, dataDsts)
}

// topicSlot ties an indexed input to the topic holding it.
type topicSlot struct {
	input int
	topic int
}

// unpackTopics decodes indexed value types with go-ethereum and checks
// that each topic is the canonical word for its value.
func unpackTopics(ev *Event, fields gethabi.Arguments, slots []topicSlot, topics []common.Hash, dsts []reflect.Value) error {
	if len(fields) == 0 {
		return nil
	}
	words := make([]common.Hash, len(slots))
	for j, s := range slots {
		words[j] = topics[s.topic]
	}
	values := make(map[string]any, len(fields))
	if err := gethabi.ParseTopicsIntoMap(values, fields, words); err != nil {
		return &DecodeError{Type: ev.Signature, Offset: 0, Reason: err.Error()}
	}

	for j, arg := range fields {
		s := slots[j]
		t := ev.Inputs[s.input]
		v := values[arg.Name]
		if err := checkValue(t, reflect.ValueOf(v)); err != nil {
			return &DecodeError{Type: t.String(), Offset: 0, Reason: fmt.Sprintf("topic %d: %v", s.topic, err)}
		}
		canonical, err := gethabi.Arguments{{Type: arg.Type}}.Pack(v)
		if err != nil || !bytes.Equal(canonical, words[j][:]) {
			return &DecodeError{Type: t.String(), Offset: 0, Reason: fmt.Sprintf("topic %d is not a canonical %s", s.topic, t)}
		}
		if err := assign(t, dsts[s.input], v); err != nil {
			return err
		}
	}
	return nil
}

// hashedTopic reports whether an indexed input of type t is stored as
// the hash of its encoding.
func hashedTopic(t Type) bool {
	_, ok := t.(Elementary)
	return !ok || t.IsDynamic()
}

// Error describes a custom revert error.
type Error struct {
	Signature string
	Selector  [4]byte
	Inputs    []Type
}

// UnpackError decodes revert data into out, a pointer to a struct with
// one field per error input.
func UnpackError(e *Error, revert []byte, out any) error {
	if len(revert) < len(e.Selector) || !bytes.Equal(revert[:len(e.Selector)], e.Selector[:]) {
		return &DecodeError{Type: e.Signature, Offset: 0, Reason: "error selector mismatch"}
	}
	return DecodeStruct(e.Inputs, revert[len(e.Selector):], out)
}
