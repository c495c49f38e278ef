package commands

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/randconst/config"
	"github.com/teranos/randconst/errors"
)

// ConfigCmd represents the config command
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage randconst.toml",
	Long: `Display and manage randconst configuration.

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (RANDCONST_* prefix, e.g. RANDCONST_LITERAL_BASE)
3. Project config (randconst.toml, searched from the working directory up)
4. Default values

Examples:
  randconst config init                 # Write randconst.toml with defaults
  randconst config show --format yaml   # Show the effective configuration
  randconst config validate             # Validate the current configuration`,
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a configuration file with defaults",
	Long: `Write the default configuration to path (default: ./randconst.toml).
An existing file is only replaced with --force; the previous versions are
kept as .back1, .back2 and .back3.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the current configuration",
	RunE:  runConfigValidate,
}

var (
	configFormat string
	configForce  bool
)

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "Replace an existing file (keeping backups)")

	ConfigCmd.AddCommand(configInitCmd)
	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configValidateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.FileName
	if len(args) == 1 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil && !configForce {
		return errors.WithHint(
			errors.Newf("%s already exists", path),
			"use --force to replace it; the old file is kept as .back1")
	}

	if err := config.WriteDefaults(path); err != nil {
		return err
	}
	pterm.Fprintln(cmd.OutOrStdout(), pterm.Success.Sprintf("Wrote %s", path))
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	data, err := config.Marshal(loaded, configFormat)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if configFormat != "json" {
		source := loaded.Path
		if source == "" {
			source = "defaults"
		}
		fmt.Fprintf(out, "# randconst configuration (%s)\n", source)
	}
	_, err = out.Write(data)
	return err
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if err := loaded.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}

	source := loaded.Path
	if source == "" {
		source = "defaults"
	}
	pterm.Fprintln(cmd.OutOrStdout(), pterm.Success.Sprintf("Configuration is valid (%s)", source))
	return nil
}
