package generator

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/teranos/randconst/errors"
	"github.com/teranos/randconst/logger"
)

// Environment passed to the post-generate hook
const (
	EnvHookRunID   = "RANDCONST_RUN_ID"
	EnvHookOutputs = "RANDCONST_OUTPUTS" // shell-quoted list of written files
)

// runHook runs hooks.post_generate after a successful run. The command line
// is split with shell quoting rules; no shell is involved.
func (g *Generator) runHook(ctx context.Context, report *Report) error {
	line := strings.TrimSpace(g.cfg.Hooks.PostGenerate)
	if line == "" {
		return nil
	}

	args, err := shellquote.Split(line)
	if err != nil {
		return errors.Wrapf(err, "invalid hooks.post_generate %q", line)
	}
	if len(args) == 0 {
		return nil
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = g.opts.HookOut
	cmd.Stderr = g.opts.HookOut
	cmd.Env = append(os.Environ(),
		EnvHookRunID+"="+report.RunID,
		EnvHookOutputs+"="+shellquote.Join(report.Outputs()...),
	)

	g.log.Infow("Running post_generate hook", logger.FieldRunID, report.RunID, "command", args[0])
	if err := cmd.Run(); err != nil {
		return errors.WithHint(
			errors.Wrapf(err, "post_generate hook %q failed", line),
			"generated files were written; fix or clear hooks.post_generate in randconst.toml")
	}
	return nil
}
