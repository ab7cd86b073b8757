package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/abibind/internal/ir"
)

func TestPrinter_JSONResult(t *testing.T) {
	buf := &bytes.Buffer{}
	printer := &Printer{Format: "json", Out: buf}

	require.NoError(t, printer.Result(map[string]string{"output": "bindings.go"}))

	var resp envelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestPrinter_Failure(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		printer := &Printer{Format: "json", Out: buf}
		require.NoError(t, printer.Failure("E201", "MalformedAbi: missing inputs"))

		var resp envelope
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		assert.Equal(t, "error", resp.Status)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "E201", resp.Error.Code)
		assert.Equal(t, "MalformedAbi: missing inputs", resp.Error.Message)
	})

	t.Run("text", func(t *testing.T) {
		buf := &bytes.Buffer{}
		printer := &Printer{Format: "text", Out: buf}
		require.NoError(t, printer.Failure("E203", "UnsupportedType: bad width"))
		assert.Equal(t, "Error [E203]: UnsupportedType: bad width\n", buf.String())
	})
}

func TestPrinter_LogfUsesDiag(t *testing.T) {
	out := &bytes.Buffer{}
	diag := &bytes.Buffer{}
	printer := &Printer{Format: "json", Out: out, Diag: diag, Verbose: true}

	printer.Logf("Reading %s", "erc20.json")
	assert.Empty(t, out.String())
	assert.Equal(t, "Reading erc20.json\n", diag.String())

	printer.Verbose = false
	printer.Logf("ignored")
	assert.Equal(t, "Reading erc20.json\n", diag.String())
}

func TestFailReportsAndExits(t *testing.T) {
	buf := &bytes.Buffer{}
	printer := &Printer{Format: "text", Out: buf}

	err := failErr(printer, ir.Errorf(ir.UnsupportedType, "function f", "inputs[0].type", "bad width"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, ExitCode(err))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("Error [E203]: ")))
	assert.Contains(t, err.Error(), "E203: ")
}

func TestErrorCode(t *testing.T) {
	compileErr := ir.Errorf(ir.DuplicateEmittedName, "function f", "", "identifier F is already used")

	tests := []struct {
		name    string
		err     error
		code    string
		message string
	}{
		{"compile error", compileErr, "E204", compileErr.Error()},
		{"wrapped compile error", fmt.Errorf("erc20.json: %w", compileErr), "E204", "erc20.json: " + compileErr.Error()},
		{"plain error", errors.New("boom"), ErrCodeGeneric, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, message := errorCode(tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.message, message)
		})
	}
}

func TestExitCode(t *testing.T) {
	exitErr := &ExitError{Code: ExitCommandError, Message: "bad input"}
	assert.Equal(t, ExitCommandError, ExitCode(exitErr))
	assert.Equal(t, ExitCommandError, ExitCode(fmt.Errorf("wrapped: %w", exitErr)))
	assert.Equal(t, ExitFailure, ExitCode(errors.New("unexpected")))
}
