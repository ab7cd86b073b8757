package ir

import "github.com/roach88/abibind/abi"

// InterfaceDescription is the parsed form of one ABI document.
// Slices are in declaration order.
type InterfaceDescription struct {
	Functions []*FunctionDescriptor
	Events    []*EventDescriptor
	Errors    []*ErrorDescriptor
}

// Mutability is a function's declared state mutability.
type Mutability string

const (
	Pure       Mutability = "pure"
	View       Mutability = "view"
	NonPayable Mutability = "nonpayable"
	Payable    Mutability = "payable"
)

// ParseMutability returns the Mutability spelled s.
func ParseMutability(s string) (Mutability, bool) {
	switch m := Mutability(s); m {
	case Pure, View, NonPayable, Payable:
		return m, true
	}
	return "", false
}

// Param is one input or output of a function, event or error.
// Indexed is only meaningful for event inputs.
type Param struct {
	Name    string
	Type    abi.Type
	Indexed bool
}

// FunctionDescriptor describes one callable function.
type FunctionDescriptor struct {
	Name       string
	Inputs     []Param
	Outputs    []Param
	Mutability Mutability
	Index      int

	// Filled by selector derivation.
	Signature string
	Selector  [4]byte

	// Filled by overload resolution.
	EmittedName string
}

// EventDescriptor describes one event. Topic is the full Keccak-256 hash
// of Signature.
type EventDescriptor struct {
	Name      string
	Inputs    []Param
	Anonymous bool
	Index     int

	Signature string
	Topic     [32]byte

	EmittedName string
}

// ErrorDescriptor describes one custom revert error.
type ErrorDescriptor struct {
	Name   string
	Inputs []Param
	Index  int

	Signature string
	Selector  [4]byte

	EmittedName string
}

// Types returns the ABI types of params in order.
func Types(params []Param) []abi.Type {
	out := make([]abi.Type, len(params))
	for i, p := range params {
		out[i] = p.Type
	}
	return out
}
