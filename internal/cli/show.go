package cli

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/kellegram/skematic/internal/catalog"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	DB string
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <hash>",
		Short: "Print a stored document from a catalog",
		Long: `Print the IR JSON of a document stored in a catalog. The hash
may be abbreviated to any unambiguous prefix.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "skematic.db", "catalog database path")

	return cmd
}

func runShow(opts *ShowOptions, prefix string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cat, err := catalog.Open(opts.DB)
	if err != nil {
		formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "open catalog failed", err)
	}
	defer cat.Close()

	hash, err := resolveHash(cat, cmd, prefix)
	if err != nil {
		formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "lookup failed", err)
	}

	doc, err := cat.Get(cmd.Context(), hash)
	if err != nil {
		formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "lookup failed", err)
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return WrapExitError(ExitCommandError, "encoding failed", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(payload))
	return nil
}

// resolveHash expands an abbreviated hash to the single stored hash that
// starts with it.
func resolveHash(cat *catalog.Catalog, cmd *cobra.Command, prefix string) (string, error) {
	entries, err := cat.List(cmd.Context())
	if err != nil {
		return "", err
	}
	var matches []string
	for _, e := range entries {
		if strings.HasPrefix(e.Hash, prefix) {
			matches = append(matches, e.Hash)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no document with hash %q", prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ambiguous hash %q matches %d documents", prefix, len(matches))
	}
}
