package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp Response
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error(ErrCodeCompile, "compilation failed", nil)
	require.NoError(t, err)

	var resp Response
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeCompile, resp.Error.Code)
	assert.Equal(t, "compilation failed", resp.Error.Message)
}

func TestOutputFormatter_JSONErrorWithDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	details := map[string]string{"file": "schema.skm", "line": "42"}
	err := formatter.Error(ErrCodeParse, "syntax error", details)
	require.NoError(t, err)

	var resp Response
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success("document is valid")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "document is valid")
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Error(ErrCodeCompile, "compilation failed", nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "error [E004]")
	assert.Contains(t, buf.String(), "compilation failed")
}

func TestOutputFormatter_SuccessTextByFormat(t *testing.T) {
	data := CompileSummary{Hash: "abc", NodeCount: 1}

	textBuf := &bytes.Buffer{}
	textFmt := &OutputFormatter{Format: "text", Writer: textBuf}
	require.NoError(t, textFmt.SuccessText(data, "compiled 1 node(s)"))
	assert.Equal(t, "compiled 1 node(s)\n", textBuf.String())

	jsonBuf := &bytes.Buffer{}
	jsonFmt := &OutputFormatter{Format: "json", Writer: jsonBuf}
	require.NoError(t, jsonFmt.SuccessText(data, "compiled 1 node(s)"))

	var resp Response
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestOutputFormatter_VerboseLogGoesToErrWriter(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:    "json",
		Writer:    out,
		ErrWriter: errOut,
		Verbose:   true,
	}

	formatter.VerboseLog("compiling %s", "schema.skm")
	assert.Empty(t, out.String())
	assert.Equal(t, "compiling schema.skm\n", errOut.String())
}

func TestOutputFormatter_VerboseLogSuppressed(t *testing.T) {
	errOut := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:    "text",
		ErrWriter: errOut,
		Verbose:   false,
	}

	formatter.VerboseLog("should not appear")
	assert.Empty(t, errOut.String())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(NewExitError(ExitFailure, "invalid")))
	assert.Equal(t, ExitCommandError, GetExitCode(errors.New("plain")))

	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitFailure, "inner", errors.New("cause")))
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
}

func TestExitErrorMessage(t *testing.T) {
	plain := NewExitError(ExitFailure, "doc is invalid")
	assert.Equal(t, "doc is invalid", plain.Error())

	wrapped := WrapExitError(ExitCommandError, "load failed", errors.New("no such file"))
	assert.Equal(t, "load failed: no such file", wrapped.Error())
	assert.EqualError(t, errors.Unwrap(wrapped), "no such file")
}
