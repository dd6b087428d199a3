package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"toyc/internal/ast"
)

// NewASTCommand creates the ast command.
func NewASTCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ast <file>",
		Short: "Parse a source file and print its syntax tree",
		Long: `Parse a source file and print the syntax tree back as source,
one statement per line with operator grouping made explicit.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseFile(args[0], cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), ast.PrintProgram(c.root))
			return nil
		},
	}
}
