package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateZodFromSource(t *testing.T) {
	path := writeSource(t, blogSource)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewGenerateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, `import { z } from "zod";`)
	assert.Contains(t, output, "export const UserSchema = z.object({")
	assert.Contains(t, output, "export const PostSchema = z.object({")
}

func TestGenerateFirestoreTarget(t *testing.T) {
	path := writeSource(t, blogSource)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewGenerateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path, "--target", "firestore"})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "export interface User")
	assert.Contains(t, output, "Converter")
}

func TestGenerateJSONEnvelope(t *testing.T) {
	path := writeSource(t, blogSource)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewGenerateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "zod", data["target"])
	assert.Contains(t, data["code"], "UserSchema")
}

func TestGenerateOutputToFile(t *testing.T) {
	path := writeSource(t, blogSource)
	outputFile := filepath.Join(t.TempDir(), "schemas.ts")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewGenerateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path, "--output", outputFile})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "generated zod code")

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "UserSchema")
}

func TestGenerateUnknownTarget(t *testing.T) {
	path := writeSource(t, blogSource)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewGenerateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path, "--target", "graphql"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), `unknown backend "graphql"`)
}

func TestGenerateRefusesInvalidDocument(t *testing.T) {
	irDoc := `{
		"nodes": [{"id": "a"}],
		"edges": [{"id": "e1", "from": "a", "to": "ghost"}]
	}`
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(irDoc), 0o644))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewGenerateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "refusing to generate")
}
