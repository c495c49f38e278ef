package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/randconst/generator"
	"github.com/teranos/randconst/logger"
)

// WatchCmd represents the watch command
var WatchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Regenerate templates as they change",
	Long: `Watch templates and regenerate each one when it is saved.

Changes are debounced; a failing template is reported and watching
continues. Stop with Ctrl-C.

Examples:
  randconst watch ./...`,
	RunE: runWatch,
}

func init() {
	WatchCmd.Flags().BoolP("write", "w", false, "Rewrite files in place instead of writing companions")
	addTargetFlags(WatchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := effectiveConfig(cmd)
	if err != nil {
		return err
	}
	inPlace, _ := cmd.Flags().GetBool("write")
	g, err := generator.New(generator.Options{
		Config:  cfg,
		InPlace: inPlace,
		Out:     cmd.OutOrStdout(),
		HookOut: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	paths := targetPaths(args)
	errOut := cmd.ErrOrStderr()
	pterm.Fprintln(errOut, pterm.Info.Sprintf("Watching %v (Ctrl-C to stop)", paths))

	return g.Watch(ctx, paths, func(report *generator.Report, err error) {
		if err != nil {
			pterm.Fprintln(errOut, FormatError(err, logger.ColorEnabled(os.Stderr)))
			return
		}
		for _, f := range report.Files {
			pterm.Fprintln(errOut, pterm.Success.Sprintf("%s -> %s (%d splice(s))", f.Template, f.Output, len(f.Splices)))
		}
	})
}
