package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kellegram/skematic/internal/canon"
	"github.com/kellegram/skematic/internal/importer"
	"github.com/kellegram/skematic/internal/ir"
	"github.com/kellegram/skematic/internal/lexer"
	"github.com/kellegram/skematic/internal/parser"
)

// isIRPath reports whether path looks like a pre-built IR document rather
// than DSL source.
func isIRPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// loadIR reads a pre-built IR document. This is the alternate pipeline
// entry: the result skips straight to validation and emission.
func loadIR(path string) (*ir.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read IR document: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ir.DecodeYAML(data)
	default:
		return ir.DecodeJSON(data)
	}
}

// compileSource runs imports, lexing, parsing and canonicalization for one
// DSL source file.
func compileSource(path string, strict bool, gen *canon.Generator) (*ir.Document, error) {
	text, err := importer.Resolve(path, nil)
	if err != nil {
		return nil, err
	}
	ast, err := parser.Parse(text)
	if err != nil {
		return nil, err
	}
	return canon.Canonicalize(ast, canon.Options{Strict: strict, IDs: gen})
}

// compileErrCode classifies a compilation failure: lexing and parsing
// failures report as syntax errors, everything else as a compile error.
func compileErrCode(err error) string {
	var lexErr *lexer.LexError
	var parseErr *parser.ParseError
	if errors.As(err, &lexErr) || errors.As(err, &parseErr) {
		return ErrCodeParse
	}
	return ErrCodeCompile
}

// loadDocument dispatches between the DSL and pre-built IR entry points.
// forceIR overrides extension sniffing.
func loadDocument(path string, forceIR, strict bool, gen *canon.Generator) (*ir.Document, error) {
	if forceIR || isIRPath(path) {
		return loadIR(path)
	}
	return compileSource(path, strict, gen)
}
