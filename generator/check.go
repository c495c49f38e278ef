package generator

import (
	"bytes"
	"context"
	"go/scanner"
	"go/token"
	"os"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/teranos/randconst/entropy"
	"github.com/teranos/randconst/errors"
	"github.com/teranos/randconst/logger"
	"github.com/teranos/randconst/splice"
	"github.com/teranos/randconst/synth"
)

// CheckResult holds the result of a companion check
type CheckResult struct {
	Checked int
	Missing []string // templates without a companion
	Stale   []string // companions that no longer match their template
}

// UpToDate reports whether every companion matches its template.
func (r *CheckResult) UpToDate() bool {
	return len(r.Missing) == 0 && len(r.Stale) == 0
}

// Err returns an ErrStale error describing the mismatches, or nil.
func (r *CheckResult) Err() error {
	if r.UpToDate() {
		return nil
	}
	return errors.WithHint(
		errors.Mark(errors.Newf("%d of %d companions missing, %d stale", len(r.Missing), r.Checked, len(r.Stale)), errors.ErrStale),
		"run go generate (or randconst generate) and commit the result")
}

// zeros is an entropy source for checks: values are masked before comparing.
type zeros struct{}

func (zeros) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

// Check regenerates each template in memory and compares the result with
// the companion on disk. Integer literal values are masked: they differ on
// every run, so only the structure is compared. Check draws no entropy.
func (g *Generator) Check(ctx context.Context, paths []string) (*CheckResult, error) {
	files, err := Discover(paths, g.cfg.Generate.BuildTag, g.cfg.Generate.OutputSuffix)
	if err != nil {
		return nil, err
	}

	s := synth.New(entropy.FromReader(zeros{}), g.order)
	missing := make([]bool, len(files))
	stale := make([]bool, len(files))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.jobs())
	for i, path := range files {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			src, err := os.ReadFile(path)
			if err != nil {
				return errors.Wrapf(err, "failed to read %s", path)
			}
			res, err := splice.File(token.NewFileSet(), path, src, g.spliceOptions(path, s, false))
			if err != nil {
				return err
			}

			out := OutputPath(path, g.cfg.Generate.OutputSuffix)
			existing, err := os.ReadFile(out)
			if os.IsNotExist(err) {
				missing[i] = true
				return nil
			}
			if err != nil {
				return errors.Wrapf(err, "failed to read %s", out)
			}

			same, err := sameShape(res.Output, existing)
			if err != nil {
				return errors.Wrapf(err, "failed to compare %s", out)
			}
			stale[i] = !same
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	result := &CheckResult{Checked: len(files)}
	for i, path := range files {
		switch {
		case missing[i]:
			result.Missing = append(result.Missing, path)
			g.log.Warnw("Companion missing", logger.FieldFile, path)
		case stale[i]:
			out := OutputPath(path, g.cfg.Generate.OutputSuffix)
			result.Stale = append(result.Stale, out)
			g.log.Warnw("Companion stale", logger.FieldFile, path, logger.FieldOutput, out)
		}
	}
	return result, nil
}

// sameShape compares two Go sources token by token with integer literals
// masked.
func sameShape(a, b []byte) (bool, error) {
	if bytes.Equal(a, b) {
		return true, nil
	}
	sa, err := shape(a)
	if err != nil {
		return false, err
	}
	sb, err := shape(b)
	if err != nil {
		// an unparsable companion is stale, not a failure
		return false, nil
	}
	return slices.Equal(sa, sb), nil
}

// shape tokenizes src with integer literal values masked. A minus sign
// directly before an integer literal is folded into the mask, so negative
// and positive draws compare equal.
func shape(src []byte) ([]string, error) {
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(src))

	var errs scanner.ErrorList
	var s scanner.Scanner
	s.Init(file, src, errs.Add, scanner.ScanComments)

	var out []string
	pendingSub := false
	for {
		_, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		switch {
		case tok == token.SUB:
			if pendingSub {
				out = append(out, token.SUB.String())
			}
			pendingSub = true
			continue
		case tok == token.INT:
			out = append(out, "INT")
		default:
			if pendingSub {
				out = append(out, token.SUB.String())
			}
			out = append(out, tok.String()+" "+lit)
		}
		pendingSub = false
	}
	if pendingSub {
		out = append(out, token.SUB.String())
	}
	return out, errs.Err()
}
