package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/randconst/generator"
	"github.com/teranos/randconst/logger"
)

// GenerateCmd represents the generate command
var GenerateCmd = &cobra.Command{
	Use:     "generate [paths...]",
	Aliases: []string{"gen"},
	Short:   "Splice random literals into templates",
	Long: `Generate a companion file for every template.

Paths are files, directories (their templates only) or dir/... patterns
(recursive, skipping vendor, testdata, hidden and _ directories). With no
paths, $GOFILE is used when running under go generate, otherwise ".".

Each template becomes <name>_randconst.go with the template's build
constraint negated, so exactly one of the two is compiled.

Examples:
  //go:generate randconst generate $GOFILE
  randconst generate ./...                 # Every template in the tree
  randconst generate -n keys.go            # Print the companion instead
  randconst generate -w consts.go          # Rewrite a plain file in place
  randconst generate --goarch 386 ./...    # Pointer-sized types for 386`,
	RunE: runGenerate,
}

var (
	generateWrite    bool
	generateDryRun   bool
	generateManifest string
)

func init() {
	GenerateCmd.Flags().BoolVarP(&generateWrite, "write", "w", false, "Rewrite files in place instead of writing companions")
	GenerateCmd.Flags().BoolVarP(&generateDryRun, "dry-run", "n", false, "Print output to stdout instead of writing files")
	GenerateCmd.Flags().IntP("jobs", "j", 0, "Templates processed concurrently (0 = GOMAXPROCS)")
	GenerateCmd.Flags().StringVar(&generateManifest, "manifest", "", "Write a YAML run manifest (never contains drawn values)")
	addTargetFlags(GenerateCmd)
}

// addTargetFlags registers the flags that shape literals.
func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().String("goarch", "", "Target architecture for usize/isize (default: target.goarch, $GOARCH, host)")
	cmd.Flags().Bool("hex", false, "Write literals in hexadecimal")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := effectiveConfig(cmd)
	if err != nil {
		return err
	}

	g, err := generator.New(generator.Options{
		Config:  cfg,
		InPlace: generateWrite,
		DryRun:  generateDryRun,
		Out:     cmd.OutOrStdout(),
		HookOut: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	report, err := g.Run(cmd.Context(), targetPaths(args))
	if report != nil && generateManifest != "" && !generateDryRun {
		if merr := report.WriteManifest(generateManifest); merr != nil {
			return merr
		}
		logger.Infow("Manifest written", logger.FieldFile, generateManifest, logger.FieldRunID, report.RunID)
	}
	if err != nil {
		return err
	}

	verbosity, _ := cmd.Flags().GetCount("verbose")
	if logger.ShouldOutput(verbosity, logger.OutputSummary) && !generateDryRun {
		pterm.Fprintln(cmd.ErrOrStderr(), pterm.Success.Sprintf("Generated %d file(s), %d splice(s)",
			len(report.Files), report.Splices()))
	}
	if logger.ShouldOutput(verbosity, logger.OutputEntropy) {
		pterm.Fprintln(cmd.ErrOrStderr(), pterm.Info.Sprintf("Entropy: %d draw(s), %d byte(s)",
			report.Draws, report.Bytes))
	}
	return nil
}
