package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kellegram/skematic/internal/ir"
)

const blogSource = `
meta: { project: "blog" }
nodes:
  - id: user, type: entity, email: "a@example.com"
  - id: post, type: entity, title: "hello"
edges:
  - from: user, to: post, rel: wrote
`

func writeSource(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.skm")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestCompileWritesIRToStdout(t *testing.T) {
	path := writeSource(t, blogSource)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.NoError(t, err)

	doc, err := ir.DecodeJSON(buf.Bytes())
	require.NoError(t, err)
	assert.Len(t, doc.Nodes, 2)
	assert.Len(t, doc.Edges, 1)
}

func TestCompileOutputToFile(t *testing.T) {
	path := writeSource(t, blogSource)
	outputFile := filepath.Join(t.TempDir(), "compiled.json")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path, "--output", outputFile})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "compiled 2 node(s), 1 edge(s)")

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	doc, err := ir.DecodeJSON(data)
	require.NoError(t, err)
	assert.Len(t, doc.Nodes, 2)
}

func TestCompileOutputToFileJSON(t *testing.T) {
	path := writeSource(t, blogSource)
	outputFile := filepath.Join(t.TempDir(), "compiled.json")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path, "--output", outputFile})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.NotNil(t, resp.Data)
}

func TestCompileSeedIsDeterministic(t *testing.T) {
	path := writeSource(t, blogSource)

	run := func() string {
		buf := &bytes.Buffer{}
		rootOpts := &RootOptions{Format: "text"}
		cmd := NewCompileCommand(rootOpts)
		cmd.SetOut(buf)
		cmd.SetArgs([]string{path, "--seed", "1700000000000"})
		require.NoError(t, cmd.Execute())
		return buf.String()
	}

	assert.Equal(t, run(), run())
}

func TestCompileStrictFailsOnGeneratedIDs(t *testing.T) {
	// The edge carries no id, so strict mode turns the generated-id
	// warning into a fatal error.
	path := writeSource(t, blogSource)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path, "--strict"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "strict mode")
}

func TestCompileSyntaxErrorReportsParseCode(t *testing.T) {
	cases := map[string]string{
		"unterminated string": "nodes:\n  - id: \"oops\n",
		"unclosed brace":      "nodes:\n  - { id: a\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeSource(t, src)

			buf := &bytes.Buffer{}
			rootOpts := &RootOptions{Format: "text"}
			cmd := NewCompileCommand(rootOpts)
			cmd.SetOut(buf)
			cmd.SetArgs([]string{path})

			err := cmd.Execute()
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, buf.String(), "error [E003]")
		})
	}
}

func TestCompileNonExistentFile(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"/nonexistent/schema.skm"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "error [E004]")
}

func TestCompileSaveToCatalog(t *testing.T) {
	path := writeSource(t, blogSource)
	dbPath := filepath.Join(t.TempDir(), "catalog.db")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path, "--save", dbPath})

	err := cmd.Execute()
	require.NoError(t, err)

	_, err = os.Stat(dbPath)
	require.NoError(t, err)
}
