package importer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolveNoImports(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.skm", "nodes:\n  - id: a\n")

	out, err := Resolve(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "nodes:\n  - id: a\n", out)
}

func TestResolveSubstitutesImport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.skm", "nodes:\n  - id: base\n")
	main := writeFile(t, dir, "main.skm", "@import \"base.skm\";\nedges:\n")

	out, err := Resolve(main, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "id: base")
	assert.Contains(t, out, "edges:")
	assert.NotContains(t, out, "@import")
}

func TestResolveNestedImports(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "c.skm", "# leaf\n")
	writeFile(t, dir, "b.skm", "@import \"c.skm\";\n")
	main := writeFile(t, dir, "a.skm", "@import \"b.skm\";\n")

	out, err := Resolve(main, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "# leaf")
}

func TestResolveImportRelativeToImportingFile(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "lib")
	require.NoError(t, os.Mkdir(sub, 0o755))
	writeFile(t, sub, "shared.skm", "# shared\n")
	writeFile(t, sub, "mid.skm", "@import \"shared.skm\";\n")
	main := writeFile(t, dir, "main.skm", "@import \"lib/mid.skm\";\n")

	out, err := Resolve(main, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "# shared")
}

func TestResolveCircularImport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.skm", "@import \"b.skm\";\n")
	writeFile(t, dir, "b.skm", "@import \"a.skm\";\n")

	_, err := Resolve(filepath.Join(dir, "a.skm"), nil)
	require.Error(t, err)

	var circular *CircularError
	require.True(t, errors.As(err, &circular))
	assert.Contains(t, circular.Error(), "circular import")
}

func TestResolveSelfImport(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.skm", "@import \"a.skm\";\n")

	_, err := Resolve(path, nil)
	var circular *CircularError
	require.True(t, errors.As(err, &circular))
}

func TestResolveDiamondIsNotCircular(t *testing.T) {
	// a imports b and c; both import d. d is visited twice but never
	// while still open, so this must succeed.
	dir := t.TempDir()
	writeFile(t, dir, "d.skm", "# d\n")
	writeFile(t, dir, "b.skm", "@import \"d.skm\";\n")
	writeFile(t, dir, "c.skm", "@import \"d.skm\";\n")
	main := writeFile(t, dir, "a.skm", "@import \"b.skm\";\n@import \"c.skm\";\n")

	out, err := Resolve(main, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "# d"))
}

func TestResolveMissingFile(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "a.skm", "@import \"missing.skm\";\n")

	_, err := Resolve(main, nil)
	assert.Error(t, err)
}
