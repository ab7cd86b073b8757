// Package ir holds the intermediate representation of a parsed ABI.
//
// This package contains the descriptor types, the compile error taxonomy
// and the canonical JSON used for the source digest. Every stage of the
// compiler imports ir; ir imports only the public abi runtime.
//
// Key design constraints:
//   - Declaration order is kept on every descriptor (Index) and only
//     decides ties
//   - Derived fields (Signature, Selector, Topic, EmittedName) are pure
//     functions of the parsed fields
//   - No package-level mutable state
package ir
