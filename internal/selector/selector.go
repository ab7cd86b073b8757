// Package selector derives canonical signatures, 4-byte selectors and
// event topics.
package selector

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/roach88/abibind/abi"
	"github.com/roach88/abibind/internal/ir"
)

// Keccak256 hashes data with the original Keccak padding, not FIPS SHA3.
func Keccak256(data ...[]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	var out [32]byte
	h.Sum(out[:0])
	return out
}

// Signature returns name followed by the parenthesized, comma-joined
// canonical types of params. Parameter names never appear.
func Signature(name string, params []ir.Param) string {
	return name + "(" + strings.Join(abi.Types(ir.Types(params)), ",") + ")"
}

// Selector returns the first four bytes of Keccak-256 of sig.
func Selector(sig string) [4]byte {
	h := Keccak256([]byte(sig))
	var sel [4]byte
	copy(sel[:], h[:4])
	return sel
}

// Topic returns the full Keccak-256 of an event signature.
func Topic(sig string) [32]byte {
	return Keccak256([]byte(sig))
}

// Hex returns b as 0x-prefixed lowercase hex.
func Hex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// Derive fills Signature and Selector (or Topic) on every descriptor in
// desc. Running it twice gives the same result.
func Derive(desc *ir.InterfaceDescription) {
	for _, fn := range desc.Functions {
		fn.Signature = Signature(fn.Name, fn.Inputs)
		fn.Selector = Selector(fn.Signature)
	}
	for _, ev := range desc.Events {
		ev.Signature = Signature(ev.Name, ev.Inputs)
		ev.Topic = Topic(ev.Signature)
	}
	for _, e := range desc.Errors {
		e.Signature = Signature(e.Name, e.Inputs)
		e.Selector = Selector(e.Signature)
	}
}
