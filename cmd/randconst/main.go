package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/randconst/cmd/randconst/commands"
	"github.com/teranos/randconst/logger"
)

var rootCmd = &cobra.Command{
	Use:   "randconst",
	Short: "randconst - build-time random integer literals for Go",
	Long: `randconst - build-time random integer literals for Go.

randconst rewrites template files (//go:build randconst) into companion
files in which every request is replaced by a literal drawn from the
operating system's secure random source.

Available commands:
  generate - Generate companions for templates (alias: gen)
  check    - Verify companions exist and match their templates
  watch    - Regenerate templates as they change
  eval     - Draw one literal for an inline request
  types    - List the supported integer types
  config   - Manage randconst.toml
  version  - Show version information

Examples:
  //go:generate randconst generate $GOFILE
  randconst generate ./...          # Generate every template in the module
  randconst check ./...             # Fail when companions are stale
  randconst eval "[u8;16]"          # Print a random array literal`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize global logger and load configuration before any command runs
		return commands.Setup(cmd)
	},
}

func init() {
	commands.AddGlobalFlags(rootCmd)

	rootCmd.AddCommand(commands.GenerateCmd)
	rootCmd.AddCommand(commands.CheckCmd)
	rootCmd.AddCommand(commands.WatchCmd)
	rootCmd.AddCommand(commands.EvalCmd)
	rootCmd.AddCommand(commands.TypesCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	err := rootCmd.Execute()
	logger.Cleanup()
	if err != nil {
		fmt.Fprintln(os.Stderr, commands.FormatError(err, logger.ColorEnabled(os.Stderr)))
		os.Exit(1)
	}
}
