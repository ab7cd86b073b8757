package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/roach88/abibind/abi"
)

// DomainSource prefixes the source digest. The version suffix allows the
// digest layout to change without colliding with old values.
const DomainSource = "abibind/source/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SourceDigest identifies the interface a binding was generated from.
// It covers every parsed field the emitter reads, in declaration order,
// and none of the input's formatting, so reordered JSON keys or changed
// whitespace give the same digest.
func SourceDigest(desc *InterfaceDescription) (string, error) {
	canonical, err := MarshalCanonical(digestObject(desc))
	if err != nil {
		return "", fmt.Errorf("SourceDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSource, canonical), nil
}

func digestObject(desc *InterfaceDescription) map[string]any {
	functions := make([]any, len(desc.Functions))
	for i, fn := range desc.Functions {
		functions[i] = map[string]any{
			"name":       fn.Name,
			"inputs":     paramList(fn.Inputs),
			"outputs":    paramList(fn.Outputs),
			"mutability": string(fn.Mutability),
		}
	}
	events := make([]any, len(desc.Events))
	for i, ev := range desc.Events {
		events[i] = map[string]any{
			"name":      ev.Name,
			"inputs":    paramList(ev.Inputs),
			"anonymous": ev.Anonymous,
		}
	}
	errs := make([]any, len(desc.Errors))
	for i, e := range desc.Errors {
		errs[i] = map[string]any{
			"name":   e.Name,
			"inputs": paramList(e.Inputs),
		}
	}
	return map[string]any{
		"functions": functions,
		"events":    events,
		"errors":    errs,
	}
}

func paramList(params []Param) []any {
	out := make([]any, len(params))
	for i, p := range params {
		out[i] = map[string]any{
			"name":    p.Name,
			"type":    typeObject(p.Type),
			"indexed": p.Indexed,
		}
	}
	return out
}

// typeObject spells t with the struct and field names that the canonical
// type string leaves out.
func typeObject(t abi.Type) any {
	switch t := t.(type) {
	case abi.Slice:
		return map[string]any{"slice": typeObject(t.Elem)}
	case abi.Array:
		return map[string]any{"array": typeObject(t.Elem), "len": t.Len}
	case abi.Tuple:
		fields := make([]any, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = map[string]any{"name": f.Name, "type": typeObject(f.Type)}
		}
		return map[string]any{"tuple": t.Name, "fields": fields}
	}
	return t.String()
}
