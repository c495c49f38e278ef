package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/randconst/generator"
)

// CheckCmd represents the check command
var CheckCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Verify companions are present and up to date",
	Long: `Regenerate every template in memory and compare it with its companion.

Drawn values differ on every run, so integer literals are masked: check
reports companions that are missing or whose structure no longer matches
the template. It exits non-zero when anything is out of date and draws no
entropy.

Examples:
  randconst check ./...`,
	RunE: runCheck,
}

func init() {
	addTargetFlags(CheckCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := effectiveConfig(cmd)
	if err != nil {
		return err
	}
	g, err := generator.New(generator.Options{Config: cfg})
	if err != nil {
		return err
	}

	result, err := g.Check(cmd.Context(), targetPaths(args))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, path := range result.Missing {
		pterm.Fprintln(out, pterm.Red("missing  ")+path)
	}
	for _, path := range result.Stale {
		pterm.Fprintln(out, pterm.Yellow("stale    ")+path)
	}
	if result.UpToDate() {
		pterm.Fprintln(out, pterm.Success.Sprintf("%d companion(s) up to date", result.Checked))
	}
	return result.Err()
}
