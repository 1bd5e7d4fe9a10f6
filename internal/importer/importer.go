// Package importer concatenates `@import "<path>";` directives into a
// single source text before lexing. It is the only pipeline collaborator
// that touches the filesystem.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// importDirective matches a whole-line @import directive. The path is
// resolved relative to the importing file.
var importDirective = regexp.MustCompile(`(?m)^\s*@import\s+"([^"]+)"\s*;?\s*$`)

// CircularError is fatal: a path was revisited while still being resolved.
type CircularError struct {
	Path  string
	Chain []string
}

func (e *CircularError) Error() string {
	return fmt.Sprintf("circular import of %q (chain: %s)", e.Path, strings.Join(e.Chain, " -> "))
}

// Resolve reads path and textually substitutes every import directive with
// the resolved file's contents, recursively. The visited set tracks paths
// that are still open; pass nil at the top level.
func Resolve(path string, visited map[string]bool) (string, error) {
	if visited == nil {
		visited = map[string]bool{}
	}
	return resolve(path, visited, nil)
}

func resolve(path string, visited map[string]bool, chain []string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	if visited[abs] {
		return "", &CircularError{Path: path, Chain: append(chain, path)}
	}
	visited[abs] = true
	defer delete(visited, abs) // open only while this file resolves

	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("resolve import: %w", err)
	}
	text := string(data)
	chain = append(chain, path)

	var firstErr error
	out := importDirective.ReplaceAllStringFunc(text, func(match string) string {
		if firstErr != nil {
			return ""
		}
		target := importDirective.FindStringSubmatch(match)[1]
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(abs), target)
		}
		substituted, err := resolve(target, visited, chain)
		if err != nil {
			firstErr = err
			return ""
		}
		return substituted
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}
