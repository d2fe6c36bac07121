// Command huskycat is the orchestrator's entry point: a single binary
// that behaves as a git hook, a CI step, an interactive CLI, a pipeline
// filter, or an MCP tool server, depending on how it is invoked. Mode
// selection, tool dispatch, and run persistence all live in pkg/*;
// this package only wires cobra commands to them, the same split the
// teacher's cmd/gh-aw/main.go keeps against its own pkg/cli.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/huskycat-dev/huskycat/pkg/console"
	"github.com/huskycat-dev/huskycat/pkg/constants"
	"github.com/huskycat-dev/huskycat/pkg/huskyerr"
)

// version is set by GoReleaser at build time, matching the teacher's
// own ldflags convention.
var version = "dev"

var (
	modeFlag     string
	jsonFlag     bool
	verboseFlag  bool
	runChildFlag bool
	runIDFlag    string
)

var rootCmd = &cobra.Command{
	Use:     "huskycat",
	Short:   "Universal code validation orchestrator",
	Version: version,
	Long: `huskycat dispatches source files to the right linters, formatters, and
type checkers, adapting its behavior to how it was invoked: a blocking or
forking git hook, a CI step emitting JUnit XML, an interactive terminal
session, a JSON pipeline filter, or an MCP tool server for assistant
clients.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&modeFlag, "mode", "", "Force a specific operating mode (git_hooks, ci, cli, pipeline, mcp)")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Emit machine-readable JSON instead of human-readable output")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose diagnostic output")

	// Internal flags a forked validation child is re-invoked with
	// (pkg/runstore.ForkValidation); not part of the documented surface.
	rootCmd.PersistentFlags().BoolVar(&runChildFlag, constants.RunChildFlag[2:], false, "internal: marks a detached validation child")
	rootCmd.PersistentFlags().StringVar(&runIDFlag, "run-id", "", "internal: run id assigned by the forking parent")
	_ = rootCmd.PersistentFlags().MarkHidden(constants.RunChildFlag[2:])
	_ = rootCmd.PersistentFlags().MarkHidden("run-id")

	rootCmd.SetOut(os.Stderr)

	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newMCPServerCommand())
	rootCmd.AddCommand(newSetupHooksCommand())
	rootCmd.AddCommand(newLastRunCommand())
	rootCmd.AddCommand(newRunHistoryCommand())
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
		os.Exit(huskyerr.ExitCode(err))
	}
}
