// Package splice rewrites one Go source file, replacing every random-literal
// request with a freshly drawn literal.
//
// Requests come in two forms:
//
//	//randconst:random
//	const Key uint64 = 0                  // directive on a const/var declaration
//
//	x := randconst.Random("[i16;3]")      // marker call in any expression
//
// A file is handled in two passes. The first resolves every request and
// collects all diagnostics; if there are any, nothing is drawn and the file
// produces no output. The second draws, renders and rewrites in source order.
package splice

import (
	"bytes"
	"cmp"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"path/filepath"
	"slices"

	"golang.org/x/tools/go/ast/astutil"
	"golang.org/x/tools/imports"

	"github.com/teranos/randconst/emit"
	"github.com/teranos/randconst/errors"
	"github.com/teranos/randconst/grammar"
	"github.com/teranos/randconst/synth"
	"github.com/teranos/randconst/typespec"
)

// Defaults for Options.
const (
	DefaultDirective = "randconst:random"
	DefaultMarker    = "randconst.Random"
	DefaultBuildTag  = "randconst"
)

// Form tells how a request was written.
type Form string

const (
	FormDirective Form = "directive"
	FormMarker    Form = "marker"
)

// Options configures File.
type Options struct {
	Registry *typespec.Registry
	Synth    *synth.Synthesizer
	Emitter  *emit.Emitter

	Directive string // comment directive without the leading "//"
	Marker    string // call spelling, "pkg.Func" or "Func"
	BuildTag  string // tag that marks templates

	// InPlace rewrites the file itself: no header, constraint untouched,
	// directives kept so the file can be regenerated.
	InPlace bool
	// Source is the template name written in the generated-code header.
	// Defaults to the base name of the file.
	Source string
}

func (o *Options) withDefaults(filename string) Options {
	out := *o
	if out.Directive == "" {
		out.Directive = DefaultDirective
	}
	if out.Marker == "" {
		out.Marker = DefaultMarker
	}
	if out.BuildTag == "" {
		out.BuildTag = DefaultBuildTag
	}
	if out.Source == "" {
		out.Source = filepath.Base(filename)
	}
	if out.Emitter == nil {
		out.Emitter = emit.New(emit.Decimal)
	}
	return out
}

// Splice records one replaced request. Drawn values are never recorded
// elsewhere; Literal exists for dry runs and eval.
type Splice struct {
	Pos     token.Position
	Form    Form
	Name    string // declared name for the directive form
	Request grammar.Request
	Literal string
}

// Result is the rewritten file.
type Result struct {
	Output  []byte
	Splices []Splice
	// MarkersConsumed counts marker calls replaced in place; they cannot be
	// regenerated.
	MarkersConsumed int
}

// target is a resolved request waiting for values.
type target struct {
	form Form
	pos  token.Pos
	req  grammar.Request
	spec *ast.ValueSpec // FormDirective
	call *ast.CallExpr  // FormMarker
}

type splicer struct {
	fset  *token.FileSet
	file  *ast.File
	opts  Options
	diags grammar.Diagnostics
}

// File splices src. Diagnostics are returned together as grammar.Diagnostics;
// an entropy failure aborts at once.
func File(fset *token.FileSet, filename string, src []byte, opts Options) (*Result, error) {
	if opts.Registry == nil || opts.Synth == nil {
		return nil, errors.AssertionFailedf("splice: registry and synthesizer are required")
	}
	o := opts.withDefaults(filename)

	f, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", filename)
	}

	s := &splicer{fset: fset, file: f, opts: o}

	buildComment, buildExpr, err := buildLine(f)
	if err != nil {
		return nil, err
	}
	if !o.InPlace && (buildExpr == nil || !mentions(buildExpr, o.BuildTag)) {
		return nil, errors.WithHintf(
			errors.Newf("%s is not a template: no //go:build constraint references %q", filename, o.BuildTag),
			"add //go:build %s to the file, or rewrite it in place with --write", o.BuildTag)
	}

	targets := s.collectDirectives()
	targets = append(targets, s.collectMarkers(targets)...)
	slices.SortStableFunc(s.diags, func(a, b *grammar.Diagnostic) int { return cmp.Compare(a.Pos.Offset, b.Pos.Offset) })
	if err := s.diags.Err(); err != nil {
		return nil, err
	}
	slices.SortFunc(targets, func(a, b target) int { return cmp.Compare(a.pos, b.pos) })

	res := &Result{}
	replacements := make(map[*ast.CallExpr]ast.Expr)
	for _, t := range targets {
		switch t.form {
		case FormDirective:
			values := make([]ast.Expr, len(t.spec.Names))
			for i, name := range t.spec.Names {
				expr, lit, err := s.draw(t.req)
				if err != nil {
					return nil, err
				}
				emit.Place(expr, valuePos(t.spec, i))
				values[i] = expr
				res.Splices = append(res.Splices, Splice{
					Pos:     s.fset.Position(name.Pos()),
					Form:    FormDirective,
					Name:    name.Name,
					Request: t.req,
					Literal: lit,
				})
			}
			for _, old := range t.spec.Values {
				s.dropComments(old.Pos(), old.End())
			}
			t.spec.Values = values

		case FormMarker:
			expr, lit, err := s.draw(t.req)
			if err != nil {
				return nil, err
			}
			s.dropComments(t.call.Pos(), t.call.End())
			emit.Place(expr, t.call.Pos())
			replacements[t.call] = expr
			res.Splices = append(res.Splices, Splice{
				Pos:     s.fset.Position(t.pos),
				Form:    FormMarker,
				Request: t.req,
				Literal: lit,
			})
		}
	}

	if len(replacements) > 0 {
		astutil.Apply(f, nil, func(c *astutil.Cursor) bool {
			if call, ok := c.Node().(*ast.CallExpr); ok {
				if expr, ok := replacements[call]; ok {
					c.Replace(expr)
				}
			}
			return true
		})
		if o.InPlace {
			res.MarkersConsumed = len(replacements)
		}
	}
	// Marker calls also vanish with directive values they initialized.
	s.dropMarkerImport()

	if !o.InPlace {
		companion, err := companionConstraint(buildExpr, o.BuildTag)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", filename)
		}
		buildComment.Text = "//go:build " + companion.String()
		dropPlusBuild(f)
	}

	out, err := s.print(filename)
	if err != nil {
		return nil, err
	}
	res.Output = out
	return res, nil
}

// draw produces the expression for one request.
func (s *splicer) draw(req grammar.Request) (ast.Expr, string, error) {
	values, err := s.opts.Synth.Generate(req)
	if err != nil {
		return nil, "", err
	}
	expr, err := s.opts.Emitter.Expr(req, values)
	if err != nil {
		return nil, "", err
	}
	lit, err := emit.Format(expr)
	if err != nil {
		return nil, "", err
	}
	return expr, lit, nil
}

// valuePos is where the i-th drawn value of spec goes: the placeholder it
// replaces, or the end of the declaration when there is none.
func valuePos(spec *ast.ValueSpec, i int) token.Pos {
	switch {
	case i < len(spec.Values):
		return spec.Values[i].Pos()
	case len(spec.Values) > 0:
		return spec.Values[len(spec.Values)-1].End()
	case spec.Type != nil:
		return spec.Type.End()
	}
	return spec.Names[len(spec.Names)-1].End()
}

// dropComments removes the comments inside a replaced span so the printer
// does not attach them to the new literal.
func (s *splicer) dropComments(from, to token.Pos) {
	s.file.Comments = slices.DeleteFunc(s.file.Comments, func(cg *ast.CommentGroup) bool {
		return cg.Pos() >= from && cg.End() <= to
	})
}

// report pins err to pos and records it. Errors that are not diagnostics
// become malformed-request diagnostics.
func (s *splicer) report(pos token.Pos, err error) {
	var d *grammar.Diagnostic
	if !errors.As(err, &d) {
		d = grammar.NewDiagnostic(grammar.KindMalformed, "%s", err.Error())
	}
	s.diags = append(s.diags, d.At(s.fset.Position(pos)))
}

// print formats the rewritten file and prepends the generated-code header.
func (s *splicer) print(filename string) ([]byte, error) {
	var buf bytes.Buffer
	if !s.opts.InPlace {
		buf.WriteString(Header(s.opts.Source))
		buf.WriteString("\n\n")
	}
	if err := format.Node(&buf, s.fset, s.file); err != nil {
		return nil, errors.Wrapf(err, "failed to print %s", filename)
	}

	out, err := imports.Process(filename, buf.Bytes(), &imports.Options{
		FormatOnly: true,
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to format %s", filename)
	}
	return out, nil
}

// Header is the first line of every companion file.
func Header(source string) string {
	return "// Code generated by randconst from " + source + "; DO NOT EDIT."
}
