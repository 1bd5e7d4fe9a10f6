package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kellegram/skematic/internal/validate"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Strict bool
	IR     bool // treat the input as pre-built IR regardless of extension
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a document against the IR contract",
		Long: `Validate a document against the canonical IR contract.

DSL sources are compiled first; .json/.yaml/.yml files (or any file with
--ir) are decoded as pre-built IR and validated directly, which is the
entry point for hand-authored or externally produced documents.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "escalate warnings to errors")
	cmd.Flags().BoolVar(&opts.IR, "ir", false, "treat the input as pre-built IR regardless of extension")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	doc, err := loadDocument(path, opts.IR, opts.Strict, nil)
	if err != nil {
		formatter.Error(ErrCodeLoad, err.Error(), nil)
		return WrapExitError(ExitCommandError, "load failed", err)
	}

	report := validate.Validate(doc, validate.Options{Strict: opts.Strict})
	formatter.VerboseLog("validated %s: %d error(s), %d warning(s)",
		path, len(report.Errors), len(report.Warnings))

	if !report.Valid {
		if opts.Format == "json" {
			formatter.Error(ErrCodeValidate, fmt.Sprintf("%d validation error(s)", len(report.Errors)), report)
		} else {
			for _, issue := range report.Errors {
				fmt.Fprintf(cmd.OutOrStdout(), "error %s\n", issue)
			}
			for _, issue := range report.Warnings {
				fmt.Fprintf(cmd.OutOrStdout(), "warning %s\n", issue)
			}
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%s is invalid", path))
	}

	text := fmt.Sprintf("%s is valid", path)
	if n := len(report.Warnings); n > 0 {
		text = fmt.Sprintf("%s is valid (%d warning(s))", path, n)
		if opts.Format != "json" {
			for _, issue := range report.Warnings {
				fmt.Fprintf(cmd.OutOrStdout(), "warning %s\n", issue)
			}
		}
	}
	return formatter.SuccessText(report, text)
}
