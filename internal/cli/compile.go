package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/kellegram/skematic/internal/canon"
	"github.com/kellegram/skematic/internal/catalog"
	"github.com/kellegram/skematic/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Strict bool
	Output string // output file path, empty means stdout
	Save   string // catalog database path, empty means no save
	Seed   int64  // id generator seed, 0 means wall clock
}

// CompileSummary is the data payload reported after a compilation.
type CompileSummary struct {
	Hash      string   `json:"hash"`
	NodeCount int      `json:"node_count"`
	EdgeCount int      `json:"edge_count"`
	Warnings  []string `json:"warnings,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <source-file>",
		Short: "Compile DSL source to canonical IR",
		Long: `Compile a schema DSL source file to canonical IR JSON.

Imports are resolved, the source is lexed and parsed, ids are assigned,
attribute types inferred, and union constructs resolved. Warnings (generated
ids, dangling references, union information loss) are recorded on the
document; --strict turns them into fatal errors.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "escalate warnings to fatal errors")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write IR JSON to file instead of stdout")
	cmd.Flags().StringVar(&opts.Save, "save", "", "also save the compiled document to this catalog database")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "fixed id-generator seed (0 = wall clock)")

	return cmd
}

func runCompile(opts *CompileOptions, sourcePath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	var gen *canon.Generator
	if opts.Seed != 0 {
		gen = canon.NewGeneratorAt(opts.Seed)
	}

	formatter.VerboseLog("compiling %s", sourcePath)
	doc, err := compileSource(sourcePath, opts.Strict, gen)
	if err != nil {
		formatter.Error(compileErrCode(err), err.Error(), nil)
		var strictErr *canon.StrictError
		if errors.As(err, &strictErr) {
			return WrapExitError(ExitFailure, "compilation failed", err)
		}
		return WrapExitError(ExitCommandError, "compilation failed", err)
	}
	for _, w := range doc.Warnings {
		formatter.VerboseLog("warning: %s", w)
	}

	hash, err := ir.DocumentID(doc)
	if err != nil {
		formatter.Error(ErrCodeCompile, err.Error(), nil)
		return WrapExitError(ExitCommandError, "hashing failed", err)
	}

	if opts.Save != "" {
		if err := saveToCatalog(opts.Save, sourcePath, doc); err != nil {
			formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "catalog save failed", err)
		}
		formatter.VerboseLog("saved %s to %s", hash, opts.Save)
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return WrapExitError(ExitCommandError, "encoding failed", err)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, append(payload, '\n'), 0o644); err != nil {
			formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "write failed", err)
		}
		summary := CompileSummary{
			Hash:      hash,
			NodeCount: len(doc.Nodes),
			EdgeCount: len(doc.Edges),
			Warnings:  doc.Warnings,
		}
		return formatter.SuccessText(summary,
			fmt.Sprintf("compiled %d node(s), %d edge(s) -> %s (%s)",
				len(doc.Nodes), len(doc.Edges), opts.Output, shortHash(hash)))
	}

	// IR JSON itself goes to stdout; in json format mode it is already the
	// machine-readable payload.
	fmt.Fprintln(cmd.OutOrStdout(), string(payload))
	return nil
}

func saveToCatalog(dbPath, sourcePath string, doc *ir.Document) error {
	cat, err := catalog.Open(dbPath)
	if err != nil {
		return err
	}
	defer cat.Close()

	name := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	_, err = cat.Save(context.Background(), name, doc)
	return err
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
