package ir

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes compile errors.
type ErrorKind string

const (
	// MalformedAbi indicates input that is not a JSON list of ABI entries
	// or an entry missing a required field.
	MalformedAbi ErrorKind = "MalformedAbi"

	// UnsupportedAbiEntry indicates an entry whose type the compiler does
	// not know.
	UnsupportedAbiEntry ErrorKind = "UnsupportedAbiEntry"

	// UnsupportedType indicates a parameter type string that cannot be
	// parsed or mapped.
	UnsupportedType ErrorKind = "UnsupportedType"

	// DuplicateEmittedName indicates two declarations that would produce
	// the same identifier in generated code.
	DuplicateEmittedName ErrorKind = "DuplicateEmittedName"
)

var kindCodes = map[ErrorKind]string{
	MalformedAbi:         "E201",
	UnsupportedAbiEntry:  "E202",
	UnsupportedType:      "E203",
	DuplicateEmittedName: "E204",
}

// Code returns the stable diagnostic code of k, e.g. "E201".
func (k ErrorKind) Code() string {
	if c, ok := kindCodes[k]; ok {
		return c
	}
	return "E200"
}

// CompileError is the single error type returned by every compiler stage.
type CompileError struct {
	// Kind identifies the error category.
	Kind ErrorKind

	// Message is a human-readable description.
	Message string

	// Entry names the offending ABI entry, e.g. "function transfer" or
	// "entry 3" when the entry has no usable name.
	Entry string

	// Field locates the problem inside the entry, e.g. "inputs[1].type".
	Field string

	// Err is the underlying cause, if any.
	Err error
}

// Errorf builds a CompileError with a formatted message.
func Errorf(kind ErrorKind, entry, field, format string, args ...any) *CompileError {
	return &CompileError{Kind: kind, Entry: entry, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	switch {
	case e.Entry != "" && e.Field != "":
		return fmt.Sprintf("%s: %s (entry=%s, field=%s)", e.Kind, e.Message, e.Entry, e.Field)
	case e.Entry != "":
		return fmt.Sprintf("%s: %s (entry=%s)", e.Kind, e.Message, e.Entry)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *CompileError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first CompileError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries a CompileError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
