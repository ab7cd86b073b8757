package typemap

import (
	"go/token"
	"strconv"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
)

// GoName converts an ABI identifier to an exported Go identifier by
// upper-casing the first letter of every underscore-separated part.
// It returns "" when the result is not a valid identifier.
func GoName(name string) string {
	s := gethabi.ToCamelCase(name)
	if !token.IsIdentifier(s) {
		return ""
	}
	return s
}

// FieldName returns the struct field name for a component at position i.
// Unnamed components become Field<i>.
func FieldName(name string, i int) string {
	if s := GoName(name); s != "" {
		return s
	}
	return "Field" + strconv.Itoa(i)
}

// ParamName returns an unexported Go parameter name for an input at
// position i. Names that are empty, reserved or already taken become
// arg<i>.
func ParamName(name string, i int, taken map[string]bool) string {
	s := GoName(name)
	if s != "" {
		s = lowerFirst(s)
	}
	if s == "" || token.IsKeyword(s) || reserved[s] || taken[s] {
		s = "arg" + strconv.Itoa(i)
	}
	for taken[s] {
		s += "_"
	}
	return s
}

// reserved holds identifiers used by generated files.
var reserved = map[string]bool{
	"abi":    true,
	"big":    true,
	"common": true,
}

func lowerFirst(s string) string {
	if s == "" || s[0] < 'A' || s[0] > 'Z' {
		return s
	}
	return string(s[0]+('a'-'A')) + s[1:]
}
