// Package commands implements the randconst CLI.
package commands

import (
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/randconst/config"
	"github.com/teranos/randconst/errors"
	"github.com/teranos/randconst/generator"
	"github.com/teranos/randconst/grammar"
	"github.com/teranos/randconst/logger"
)

// loaded is the configuration read by Setup
var loaded = config.Default()

// AddGlobalFlags registers the flags every command accepts.
func AddGlobalFlags(root *cobra.Command) {
	root.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	root.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	root.PersistentFlags().String("config", "", "Config file (default: randconst.toml found from the working directory upwards)")
}

// Setup initializes logging and loads configuration.
func Setup(cmd *cobra.Command) error {
	verbosity, _ := cmd.Flags().GetCount("verbose")
	jsonLog, _ := cmd.Flags().GetBool("log-json")
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		// Logging still comes up so the failure is reported consistently
		_ = logger.Initialize(verbosity, jsonLog)
		return err
	}
	if !cmd.Flags().Changed("log-json") && cfg.Log.JSON {
		jsonLog = true
	}
	if err := logger.Initialize(verbosity, jsonLog); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	logger.Debugw("Logging initialized", "verbosity", logger.LevelName(verbosity), "json", jsonLog)
	if !logger.ColorEnabled(os.Stdout) {
		pterm.DisableColor()
	}

	if cfg.Path != "" {
		logger.Debugw("Configuration loaded", logger.FieldConfig, cfg.Path)
		unknown, err := config.UnknownKeys(cfg.Path)
		if err != nil {
			return err
		}
		for _, key := range unknown {
			logger.Warnw("Unknown configuration key", logger.FieldKey, key, logger.FieldConfig, cfg.Path)
		}
	}

	loaded = cfg
	return nil
}

// effectiveConfig applies command flags on top of the loaded configuration
// and validates the result.
func effectiveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := *loaded
	flags := cmd.Flags()

	if f := flags.Lookup("jobs"); f != nil && f.Changed {
		cfg.Generate.Jobs, _ = flags.GetInt("jobs")
	}
	if f := flags.Lookup("goarch"); f != nil && f.Changed {
		cfg.Target.GOARCH = f.Value.String()
	}
	if hex, _ := flags.GetBool("hex"); hex {
		cfg.Literal.Base = "hex"
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// targetPaths defaults to the file go generate is running for, then ".".
func targetPaths(args []string) []string {
	if len(args) > 0 {
		return args
	}
	if gofile := os.Getenv("GOFILE"); gofile != "" {
		return []string{gofile}
	}
	return []string{"."}
}

// FormatError renders err for the terminal: every diagnostic of every
// failed template, then any hints.
func FormatError(err error, color bool) string {
	ctx := grammar.ErrorContextPlain
	if color {
		ctx = grammar.ErrorContextTerminal
	}

	var lines []string
	var runErr *generator.RunError
	if errors.As(err, &runErr) {
		for _, f := range runErr.Failures {
			lines = append(lines, formatOne(f.Err, ctx))
		}
	} else {
		lines = append(lines, formatOne(err, ctx))
	}

	if hints := errors.FlattenHints(err); hints != "" {
		lines = append(lines, "hint: "+hints)
	}
	return strings.Join(lines, "\n")
}

func formatOne(err error, ctx grammar.ErrorContext) string {
	var diags grammar.Diagnostics
	if errors.As(err, &diags) {
		return diags.Format(ctx)
	}
	var d *grammar.Diagnostic
	if errors.As(err, &d) {
		return d.Format(ctx)
	}
	return err.Error()
}
