// Package generator runs the splicer over template files: discovery,
// concurrent generation, companion output, run reports, post-generate hooks,
// staleness checks and watch mode.
package generator

import (
	"context"
	"encoding/binary"
	"fmt"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/teranos/randconst/config"
	"github.com/teranos/randconst/emit"
	"github.com/teranos/randconst/entropy"
	"github.com/teranos/randconst/errors"
	"github.com/teranos/randconst/logger"
	"github.com/teranos/randconst/splice"
	"github.com/teranos/randconst/synth"
	"github.com/teranos/randconst/typespec"
)

// Options configures a Generator.
type Options struct {
	Config *config.Config // nil = defaults

	// Source overrides the entropy source. Defaults to the OS CSPRNG.
	Source entropy.Source

	InPlace bool // rewrite files themselves instead of writing companions
	DryRun  bool // print output instead of writing it

	Out     io.Writer // dry-run output, default os.Stdout
	HookOut io.Writer // hook stdout/stderr, default os.Stderr
}

// Generator is safe for sequential reuse; Run calls must not overlap.
type Generator struct {
	cfg      *config.Config
	opts     Options
	registry *typespec.Registry
	counter  *entropy.Counter
	order    binary.ByteOrder
	synth    *synth.Synthesizer
	emitter  *emit.Emitter
	log      *zap.SugaredLogger
}

// New builds a generator from configuration.
func New(opts Options) (*Generator, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	base, err := emit.ParseBase(cfg.Literal.Base)
	if err != nil {
		return nil, err
	}
	order, err := synth.ParseByteOrder(cfg.Literal.ByteOrder)
	if err != nil {
		return nil, err
	}
	registry, err := typespec.ForArch(typespec.TargetArch(cfg.Target.GOARCH))
	if err != nil {
		return nil, err
	}

	src := opts.Source
	if src == nil {
		src = entropy.NewSystem()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.HookOut == nil {
		opts.HookOut = os.Stderr
	}

	counter := entropy.NewCounter(src)
	return &Generator{
		cfg:      cfg,
		opts:     opts,
		registry: registry,
		counter:  counter,
		order:    order,
		synth:    synth.New(counter, order),
		emitter:  emit.New(base),
		log:      logger.Named("generator"),
	}, nil
}

// Registry returns the type registry for the target architecture.
func (g *Generator) Registry() *typespec.Registry { return g.registry }

// Config returns the configuration in effect.
func (g *Generator) Config() *config.Config { return g.cfg }

func (g *Generator) jobs() int {
	if g.cfg.Generate.Jobs > 0 {
		return g.cfg.Generate.Jobs
	}
	return runtime.GOMAXPROCS(0)
}

func (g *Generator) spliceOptions(path string, s *synth.Synthesizer, inPlace bool) splice.Options {
	return splice.Options{
		Registry:  g.registry,
		Synth:     s,
		Emitter:   g.emitter,
		Directive: g.cfg.Generate.Directive,
		Marker:    g.cfg.Generate.Marker,
		BuildTag:  g.cfg.Generate.BuildTag,
		InPlace:   inPlace,
		Source:    filepath.Base(path),
	}
}

// outputPath is where the result for template goes.
func (g *Generator) outputPath(template string) string {
	if g.opts.InPlace {
		return template
	}
	return OutputPath(template, g.cfg.Generate.OutputSuffix)
}

// Run generates every template found under paths. Templates are independent:
// a template with diagnostics produces no output, the others are still
// written, and the run fails with a *RunError. An entropy failure aborts the
// run at once.
func (g *Generator) Run(ctx context.Context, paths []string) (*Report, error) {
	report := newReport(g.registry.GOARCH())
	log := g.log.With(logger.FieldRunID, report.RunID)
	draws, bytes := g.counter.Draws(), g.counter.Bytes()

	files, err := Discover(paths, g.cfg.Generate.BuildTag, g.cfg.Generate.OutputSuffix)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		log.Warnw("No templates found", "paths", paths)
		report.finish(g.counter.Draws()-draws, g.counter.Bytes()-bytes)
		return report, nil
	}
	log.Debugw("Templates discovered", logger.FieldFiles, len(files), "jobs", g.jobs())
	if logger.ShouldOutput(logger.Verbosity, logger.OutputDiscovery) {
		for _, f := range files {
			log.Debugw("Template selected", logger.FieldFile, f)
		}
	}

	results := make([]*FileReport, len(files))
	failures := make([]error, len(files))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.jobs())
	for i, path := range files {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			fr, err := g.processFile(path, log)
			if errors.Is(err, errors.ErrEntropy) {
				return err
			}
			results[i], failures[i] = fr, err
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var runErr *RunError
	for i, fr := range results {
		if failures[i] != nil {
			if runErr == nil {
				runErr = &RunError{}
			}
			runErr.Failures = append(runErr.Failures, FileError{File: files[i], Err: failures[i]})
			continue
		}
		report.Files = append(report.Files, *fr)
	}
	report.finish(g.counter.Draws()-draws, g.counter.Bytes()-bytes)

	if g.opts.DryRun {
		for _, fr := range report.Files {
			fmt.Fprintf(g.opts.Out, "==> %s <==\n%s", fr.Output, fr.content)
		}
	}

	log.Infow("Generation finished",
		logger.FieldFiles, len(report.Files),
		logger.FieldSplices, report.Splices(),
		logger.FieldDraws, report.Draws,
		logger.FieldBytes, report.Bytes,
		logger.FieldDurationMS, report.DurationMS)

	if runErr != nil {
		return report, runErr
	}

	if !g.opts.DryRun {
		if err := g.runHook(ctx, report); err != nil {
			return report, err
		}
	}
	return report, nil
}

// processFile splices one template and writes its output.
func (g *Generator) processFile(path string, log *zap.SugaredLogger) (*FileReport, error) {
	start := time.Now()
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	res, err := splice.File(token.NewFileSet(), path, src, g.spliceOptions(path, g.synth, g.opts.InPlace))
	if err != nil {
		return nil, err
	}

	out := g.outputPath(path)
	fr := newFileReport(path, out, res)

	if g.opts.DryRun {
		fr.content = res.Output
	} else if err := writeOutput(out, res.Output); err != nil {
		return nil, err
	}

	if res.MarkersConsumed > 0 {
		log.Warnw("Marker calls replaced in place cannot be regenerated",
			logger.FieldFile, path, logger.FieldCount, res.MarkersConsumed)
	}
	for _, s := range res.Splices {
		log.Debugw("Spliced",
			logger.FieldFile, path,
			logger.FieldLine, s.Pos.Line,
			logger.FieldForm, string(s.Form),
			logger.FieldName, s.Name,
			logger.FieldType, s.Request.String())
	}
	log.Infow("Template generated",
		logger.FieldFile, path,
		logger.FieldOutput, out,
		logger.FieldSplices, len(res.Splices),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return fr, nil
}

// writeOutput replaces path atomically so a concurrent build never sees a
// half-written companion.
func writeOutput(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "failed to write %s", path)
	}
	if err := tmp.Chmod(config.DefaultFilePermissions); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "failed to write %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// FileError is the failure of one template.
type FileError struct {
	File string
	Err  error
}

// RunError lists every template that failed in a run.
type RunError struct {
	Failures []FileError
}

func (e *RunError) Error() string {
	lines := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		lines[i] = f.Err.Error()
	}
	return strings.Join(lines, "\n")
}

// Unwrap exposes each failure to errors.Is/As.
func (e *RunError) Unwrap() []error {
	out := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f.Err
	}
	return out
}
