// Package abi is the runtime used by abibind-generated bindings.
//
// It holds the closed set of ABI type shapes and a parser for both the
// ABI JSON spelling (type string plus components) and the canonical
// signature spelling. Encoding and decoding go through go-ethereum's
// accounts/abi. On top of it this package binds structs by position and
// only decodes data in its canonical encoding.
//
// Go value conventions follow go-ethereum's abigen:
//   - address       common.Address (or any [20]byte)
//   - uintN / intN  uintN / intN for N in 8, 16, 32, 64; *big.Int otherwise
//   - bytesN        [N]byte
//   - bytes         []byte
//   - string        string
//   - T[] / T[k]    []T / [k]T
//   - tuple         struct with one exported field per component, in order
//
// Generated code builds Method, Event and Error descriptors once at package
// level and calls Pack, Unpack, UnpackEvent and UnpackError. Nothing in this
// package keeps mutable global state.
package abi
