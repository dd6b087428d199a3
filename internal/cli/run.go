package cli

import (
	"github.com/spf13/cobra"

	"toyc/internal/engine"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <file>",
		Short: "Compile a source file and execute it",
		Long: `Compile a source file and execute its top-level statements on the
execution engine. Program output goes to stdout; the IR module is printed
first when print_ir is set in the configuration.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.settings()

			c, err := compileFile(args[0], cfg.CodegenOptions(cmd.OutOrStdout()), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			eng := engine.New(c.unit.Module(), cfg.EngineOptions(cmd.OutOrStdout())...)
			if _, err := c.unit.RunCode(eng); err != nil {
				return WrapExitError(ExitFailure, "execution failed", err)
			}
			return nil
		},
	}
}
