package splice

import (
	"go/ast"
	"go/token"
	"path"
	"strconv"
	"strings"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/teranos/randconst/grammar"
)

// markerName splits the marker spelling into qualifier and function name.
func (s *splicer) markerName() (qualifier, name string) {
	if q, n, ok := strings.Cut(s.opts.Marker, "."); ok {
		return q, n
	}
	return "", s.opts.Marker
}

// isMarker reports whether fun spells the marker.
func (s *splicer) isMarker(fun ast.Expr) bool {
	qualifier, name := s.markerName()
	switch fun := ast.Unparen(fun).(type) {
	case *ast.SelectorExpr:
		x, ok := fun.X.(*ast.Ident)
		return ok && qualifier != "" && x.Name == qualifier && fun.Sel.Name == name
	case *ast.Ident:
		return qualifier == "" && fun.Name == name
	}
	return false
}

// collectMarkers resolves every marker call outside the values that
// directive targets are about to replace.
func (s *splicer) collectMarkers(directives []target) []target {
	replaced := make(map[*ast.ValueSpec]bool, len(directives))
	for _, t := range directives {
		replaced[t.spec] = true
	}

	untyped := untypedConstCalls(s.file)

	var targets []target
	ast.Inspect(s.file, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.ValueSpec:
			return !replaced[n]
		case *ast.CallExpr:
			if !s.isMarker(n.Fun) {
				return true
			}
			req, err := s.markerRequest(n)
			if err != nil {
				s.report(n.Pos(), err)
				return false
			}
			if req.Array && !req.Type.HasGoType() {
				s.report(n.Pos(), grammar.NewDiagnostic(grammar.KindUnsupportedConstruct,
					"unsupported construct: %s arrays cannot be expressed in Go", req.Type.Name).
					WithSnippet(req.String()))
				return false
			}
			if !req.Type.HasGoType() && !untyped[n] {
				s.report(n.Pos(), grammar.NewDiagnostic(grammar.KindUnsupportedConstruct,
					"unsupported construct: %s has no Go type and can only initialize an untyped const", req.Type.Name).
					WithSnippet(req.String()).
					WithSuggestion("move the call into a const declaration without a type"))
				return false
			}
			targets = append(targets, target{form: FormMarker, pos: n.Pos(), req: req, call: n})
			return false
		}
		return true
	})
	return targets
}

// untypedConstCalls returns the calls appearing in the values of const
// specs that declare no type, where an untyped 128-bit constant is legal.
func untypedConstCalls(f *ast.File) map[*ast.CallExpr]bool {
	calls := make(map[*ast.CallExpr]bool)
	ast.Inspect(f, func(n ast.Node) bool {
		decl, ok := n.(*ast.GenDecl)
		if !ok || decl.Tok != token.CONST {
			return true
		}
		for _, spec := range decl.Specs {
			vs := spec.(*ast.ValueSpec)
			if vs.Type != nil {
				continue
			}
			for _, v := range vs.Values {
				ast.Inspect(v, func(n ast.Node) bool {
					if call, ok := n.(*ast.CallExpr); ok {
						calls[call] = true
					}
					return true
				})
			}
		}
		return false
	})
	return calls
}

// markerRequest reads the single argument of a marker call: a string literal
// in the inline grammar or a bare type identifier.
func (s *splicer) markerRequest(call *ast.CallExpr) (grammar.Request, error) {
	if len(call.Args) != 1 || call.Ellipsis.IsValid() {
		return grammar.Request{}, grammar.NewDiagnostic(grammar.KindMalformed,
			"%s takes exactly one argument, got %d", s.opts.Marker, len(call.Args)).
			WithSuggestion(`write ` + s.opts.Marker + `("[u8;16]") or ` + s.opts.Marker + `(u64)`)
	}

	switch arg := call.Args[0].(type) {
	case *ast.BasicLit:
		if arg.Kind != token.STRING {
			break
		}
		text, err := strconv.Unquote(arg.Value)
		if err != nil {
			return grammar.Request{}, grammar.NewDiagnostic(grammar.KindMalformed, "invalid string literal %s", arg.Value)
		}
		return grammar.ParseRequest(s.opts.Registry, text)
	case *ast.Ident:
		return grammar.ParseRequest(s.opts.Registry, arg.Name)
	}
	return grammar.Request{}, grammar.NewDiagnostic(grammar.KindMalformed,
		"%s argument must be a string literal or a type name", s.opts.Marker).
		WithSuggestion("expressions and named constants cannot be evaluated before compilation")
}

// dropMarkerImport removes the import that provided the marker qualifier once
// nothing refers to it.
func (s *splicer) dropMarkerImport() {
	qualifier, _ := s.markerName()
	if qualifier == "" {
		return
	}
	for _, spec := range s.file.Imports {
		importPath, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		name := path.Base(importPath)
		var alias string
		if spec.Name != nil {
			alias = spec.Name.Name
			name = alias
		}
		if name != qualifier || s.usesQualifier(qualifier) {
			continue
		}
		astutil.DeleteNamedImport(s.fset, s.file, alias, importPath)
		return
	}
}

// usesQualifier reports whether any selector in the file is qualified by
// name. A local identifier of the same name counts as a use, which keeps the
// import.
func (s *splicer) usesQualifier(name string) bool {
	used := false
	ast.Inspect(s.file, func(n ast.Node) bool {
		if used {
			return false
		}
		if sel, ok := n.(*ast.SelectorExpr); ok {
			if x, ok := sel.X.(*ast.Ident); ok && x.Name == name {
				used = true
			}
		}
		return true
	})
	return used
}
