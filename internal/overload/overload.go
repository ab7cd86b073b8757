// Package overload assigns the Go identifiers that generated code uses
// for functions, events and errors.
//
// A name used by one declaration is emitted as its Go form. A name shared
// by several declarations (an overload group) gets a suffix made of a
// separator and the member's own selector, so the result never depends on
// declaration order or on the other members of the group.
package overload

import (
	"github.com/roach88/abibind/internal/ir"
	"github.com/roach88/abibind/internal/selector"
	"github.com/roach88/abibind/internal/typemap"
)

// Separator joins a base name and a selector suffix.
const Separator = "__"

// EmittedName returns the identifier for a declaration called name whose
// group has size members and whose selector (or topic prefix) is sel.
func EmittedName(name string, sel [4]byte, size int) string {
	base := typemap.GoName(name)
	if size < 2 {
		return base
	}
	return base + Separator + selector.Hex(sel[:])
}

// MethodVar, EventVar and ErrorVar name the unexported descriptor
// variables of generated code. They are keyed by selector or topic so
// that an emitted name appears only once in the output.
func MethodVar(sel [4]byte) string { return "method" + selector.Hex(sel[:]) }

func EventVar(topic [32]byte) string { return "event" + selector.Hex(topic[:4]) }

func ErrorVar(sel [4]byte) string { return "error" + selector.Hex(sel[:]) }

// OutputType names the struct holding the results of a function with
// several outputs.
func OutputType(emitted string) string { return emitted + "Output" }

// EventType and EventDecoder name the generated struct and decode
// function of an event; ErrorType and ErrorDecoder do the same for
// errors.
func EventType(emitted string) string    { return emitted + "Event" }
func EventDecoder(emitted string) string { return "Decode" + emitted + "Event" }
func ErrorType(emitted string) string    { return emitted + "Error" }
func ErrorDecoder(emitted string) string { return "Decode" + emitted + "Error" }

// Resolve sets EmittedName on every descriptor in desc and checks that no
// two top-level identifiers of the generated file collide. Selectors and
// topics must already be derived. Running it twice gives the same result.
func Resolve(desc *ir.InterfaceDescription) error {
	fnGroups := make(map[string]int)
	for _, fn := range desc.Functions {
		fnGroups[fn.Name]++
	}
	for _, fn := range desc.Functions {
		fn.EmittedName = EmittedName(fn.Name, fn.Selector, fnGroups[fn.Name])
	}

	evGroups := make(map[string]int)
	for _, ev := range desc.Events {
		evGroups[ev.Name]++
	}
	for _, ev := range desc.Events {
		ev.EmittedName = EmittedName(ev.Name, topicPrefix(ev.Topic), evGroups[ev.Name])
	}

	errGroups := make(map[string]int)
	for _, e := range desc.Errors {
		errGroups[e.Name]++
	}
	for _, e := range desc.Errors {
		e.EmittedName = EmittedName(e.Name, e.Selector, errGroups[e.Name])
	}

	return checkNamespace(desc)
}

func topicPrefix(topic [32]byte) [4]byte {
	var p [4]byte
	copy(p[:], topic[:4])
	return p
}

// checkNamespace registers every identifier the emitter declares at
// package level, with the declaration that owns it.
func checkNamespace(desc *ir.InterfaceDescription) error {
	mapper, err := typemap.Collect(desc)
	if err != nil {
		return err
	}

	ns := make(namespace)
	for _, s := range mapper.Structs() {
		if err := ns.add(s.Name, "struct "+s.Name); err != nil {
			return err
		}
	}
	for _, fn := range desc.Functions {
		owner := "function " + fn.Signature
		if err := ns.add(fn.EmittedName, owner); err != nil {
			return err
		}
		if err := ns.add(MethodVar(fn.Selector), owner); err != nil {
			return err
		}
		if len(fn.Outputs) > 1 {
			if err := ns.add(OutputType(fn.EmittedName), owner); err != nil {
				return err
			}
		}
	}
	for _, ev := range desc.Events {
		owner := "event " + ev.Signature
		for _, ident := range []string{EventType(ev.EmittedName), EventDecoder(ev.EmittedName), EventVar(ev.Topic)} {
			if err := ns.add(ident, owner); err != nil {
				return err
			}
		}
	}
	for _, e := range desc.Errors {
		owner := "error " + e.Signature
		for _, ident := range []string{ErrorType(e.EmittedName), ErrorDecoder(e.EmittedName), ErrorVar(e.Selector)} {
			if err := ns.add(ident, owner); err != nil {
				return err
			}
		}
	}
	return nil
}

type namespace map[string]string

func (ns namespace) add(ident, owner string) error {
	if ident == "" {
		return ir.Errorf(ir.MalformedAbi, owner, "name", "name has no Go identifier form")
	}
	if prev, ok := ns[ident]; ok {
		return ir.Errorf(ir.DuplicateEmittedName, owner, "",
			"identifier %s is already used by %s", ident, prev)
	}
	ns[ident] = owner
	return nil
}
