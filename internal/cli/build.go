package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
	Output string // output file path, stdout when empty
}

// createOutput opens the file the IR module is written to
var createOutput = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build <file>",
		Short: "Compile a source file to LLVM IR",
		Long: `Compile a source file and print the resulting LLVM IR module.

With the continue error policy the module is written even when errors were
reported; the command still fails.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runBuild(opts *BuildOptions, path string, cmd *cobra.Command) error {
	start := time.Now()

	var irOut io.Writer = cmd.OutOrStdout()
	var file io.WriteCloser
	if opts.Output != "" {
		f, err := createOutput(opts.Output)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to create output file", err)
		}
		file = f
		irOut = f
	}

	cgOpts := opts.settings().CodegenOptions(nil)
	cgOpts.Output = irOut

	_, compileErr := compileFile(path, cgOpts, cmd.ErrOrStderr())
	if file != nil {
		if err := file.Close(); err != nil && compileErr == nil {
			return WrapExitError(ExitCommandError, "failed to write output file", err)
		}
	}
	if compileErr != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), color.RedString("Compilation failed after %s", formatDuration(time.Since(start))))
		return compileErr
	}

	if opts.Output != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), color.GreenString("Successfully compiled %s to %s in %s",
			path, opts.Output, formatDuration(time.Since(start))))
	}
	return nil
}
