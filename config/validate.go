package config

import (
	"go/build/constraint"
	"go/token"
	"strings"
	"unicode"

	"github.com/teranos/randconst/emit"
	"github.com/teranos/randconst/errors"
	"github.com/teranos/randconst/synth"
	"github.com/teranos/randconst/typespec"
	"github.com/teranos/randconst/version"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Build tag must be a single tag usable in //go:build
	expr, err := constraint.Parse("//go:build " + c.Generate.BuildTag)
	if c.Generate.BuildTag == "" || err != nil {
		return errors.Newf("generate.build_tag must be a single build tag, got %q", c.Generate.BuildTag)
	}
	if _, ok := expr.(*constraint.TagExpr); !ok {
		return errors.Newf("generate.build_tag must be a single build tag, got %q", c.Generate.BuildTag)
	}

	if c.Generate.Directive == "" || strings.HasPrefix(c.Generate.Directive, "//") ||
		strings.IndexFunc(c.Generate.Directive, unicode.IsSpace) >= 0 {
		return errors.Newf("generate.directive must be a directive name without // or spaces, got %q", c.Generate.Directive)
	}

	if !validMarker(c.Generate.Marker) {
		return errors.Newf("generate.marker must be pkg.Func or Func, got %q", c.Generate.Marker)
	}

	if !strings.HasSuffix(c.Generate.OutputSuffix, ".go") || strings.HasSuffix(c.Generate.OutputSuffix, "_test.go") ||
		strings.ContainsRune(c.Generate.OutputSuffix, '/') {
		return errors.Newf("generate.output_suffix must be a file name suffix ending in .go (not _test.go), got %q", c.Generate.OutputSuffix)
	}

	// Jobs: 0 = GOMAXPROCS, negative = invalid
	if c.Generate.Jobs < 0 {
		return errors.Newf("generate.jobs must be >= 0, got %d", c.Generate.Jobs)
	}

	if _, err := emit.ParseBase(c.Literal.Base); err != nil {
		return errors.Wrap(err, "literal.base")
	}
	if _, err := synth.ParseByteOrder(c.Literal.ByteOrder); err != nil {
		return errors.Wrap(err, "literal.byte_order")
	}

	// Empty goarch defers to $GOARCH or the host
	if c.Target.GOARCH != "" {
		if _, err := typespec.ForArch(c.Target.GOARCH); err != nil {
			return errors.Wrap(err, "target.goarch")
		}
	}

	if err := version.CheckRequired(c.RequiredVersion); err != nil {
		return err
	}

	return nil
}

func validMarker(m string) bool {
	qualifier, name, qualified := strings.Cut(m, ".")
	if !qualified {
		return token.IsIdentifier(m)
	}
	return token.IsIdentifier(qualifier) && token.IsIdentifier(name)
}
