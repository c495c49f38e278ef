package splice

import (
	"go/ast"
	"go/token"
	"strings"

	"github.com/teranos/randconst/grammar"
)

// directiveArg reports whether text is the directive comment and returns its
// request argument ("" when absent).
func directiveArg(text, directive string) (string, bool) {
	rest, ok := strings.CutPrefix(text, "//"+directive)
	if !ok {
		return "", false
	}
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

// collectDirectives resolves every directive attached to a const or var
// declaration. Directives found anywhere else are reported.
func (s *splicer) collectDirectives() []target {
	pending := make(map[*ast.Comment]string)
	for _, cg := range s.file.Comments {
		for _, c := range cg.List {
			if arg, ok := directiveArg(c.Text, s.opts.Directive); ok {
				pending[c] = arg
			}
		}
	}
	if len(pending) == 0 {
		return nil
	}

	var targets []target
	// where names the construct an unattached directive sits on
	where := make(map[*ast.Comment]string)
	shortDecls := make(map[int]bool)

	take := func(doc *ast.CommentGroup) (*ast.Comment, bool) {
		if doc == nil {
			return nil, false
		}
		var found *ast.Comment
		for _, c := range doc.List {
			if _, ok := pending[c]; !ok {
				continue
			}
			if found != nil {
				s.report(c.Pos(), grammar.NewDiagnostic(grammar.KindMalformed, "duplicate //%s directive", s.opts.Directive))
				delete(pending, c)
				continue
			}
			found = c
		}
		return found, found != nil
	}
	mark := func(doc *ast.CommentGroup, construct string) {
		if doc == nil {
			return
		}
		for _, c := range doc.List {
			if _, ok := pending[c]; ok {
				where[c] = construct
			}
		}
	}

	ast.Inspect(s.file, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.FuncDecl:
			mark(n.Doc, "function declaration")
		case *ast.AssignStmt:
			if n.Tok == token.DEFINE {
				shortDecls[s.fset.Position(n.Pos()).Line] = true
			}
		case *ast.GenDecl:
			if n.Tok != token.CONST && n.Tok != token.VAR {
				mark(n.Doc, n.Tok.String()+" declaration")
				for _, spec := range n.Specs {
					if ts, ok := spec.(*ast.TypeSpec); ok {
						mark(ts.Doc, "type declaration")
					}
				}
				return true
			}

			group, grouped := take(n.Doc)
			for _, spec := range n.Specs {
				vs := spec.(*ast.ValueSpec)
				c, own := take(vs.Doc)
				if !own {
					if !grouped {
						continue
					}
					c = group
				}
				arg := pending[c]
				if own {
					delete(pending, c)
				}
				if t, ok := s.resolveDecl(n.Tok, vs, c, arg); ok {
					targets = append(targets, t)
				}
			}
			if grouped {
				delete(pending, group)
			}
		}
		return true
	})

	for c := range pending {
		construct := where[c]
		if construct == "" && shortDecls[s.fset.Position(c.End()).Line+1] {
			construct = "short variable declaration"
		}
		var d *grammar.Diagnostic
		if construct != "" {
			d = grammar.NewDiagnostic(grammar.KindUnsupportedConstruct,
				"unsupported construct: //%s cannot annotate a %s", s.opts.Directive, construct)
		} else {
			d = grammar.NewDiagnostic(grammar.KindUnsupportedConstruct,
				"unsupported construct: //%s must annotate a const or var declaration", s.opts.Directive)
		}
		if construct == "short variable declaration" {
			d.WithSuggestion("write var name T instead of name := ...")
		}
		s.report(c.Pos(), d.WithSnippet(c.Text))
	}
	return targets
}

// resolveDecl turns a directive on one value spec into a target.
func (s *splicer) resolveDecl(tok token.Token, vs *ast.ValueSpec, c *ast.Comment, arg string) (target, bool) {
	reg := s.opts.Registry
	var req grammar.Request

	switch {
	case vs.Type != nil && arg != "":
		declReq, err := grammar.ParseDeclType(reg, vs.Type)
		if err != nil {
			s.report(vs.Type.Pos(), err)
			return target{}, false
		}
		argReq, err := grammar.ParseRequest(reg, arg)
		if err != nil {
			s.report(c.Pos(), err)
			return target{}, false
		}
		if !declReq.Equal(argReq) {
			s.report(c.Pos(), grammar.NewDiagnostic(grammar.KindMalformed,
				"conflicting type specifier: directive requests %s, declaration is %s", argReq, declReq).
				WithSuggestion("drop the directive argument, the declared type is enough"))
			return target{}, false
		}
		req = declReq

	case vs.Type != nil:
		declReq, err := grammar.ParseDeclType(reg, vs.Type)
		if err != nil {
			s.report(vs.Type.Pos(), err)
			return target{}, false
		}
		req = declReq

	case arg != "":
		argReq, err := grammar.ParseRequest(reg, arg)
		if err != nil {
			s.report(c.Pos(), err)
			return target{}, false
		}
		req = argReq

	default:
		_, err := grammar.ParseDeclType(reg, nil)
		s.report(vs.Names[0].Pos(), err)
		return target{}, false
	}

	if tok == token.CONST && req.Array {
		s.report(vs.Names[0].Pos(), grammar.NewDiagnostic(grammar.KindUnsupportedConstruct,
			"unsupported construct: Go constants cannot be arrays").
			WithSnippet(req.String()).
			WithSuggestion("declare it with var"))
		return target{}, false
	}
	if !req.Type.HasGoType() {
		if req.Array {
			s.report(vs.Names[0].Pos(), grammar.NewDiagnostic(grammar.KindUnsupportedConstruct,
				"unsupported construct: %s arrays cannot be expressed in Go", req.Type.Name).
				WithSnippet(req.String()))
			return target{}, false
		}
		if tok == token.VAR {
			s.report(vs.Names[0].Pos(), grammar.NewDiagnostic(grammar.KindUnsupportedConstruct,
				"unsupported construct: %s has no Go type and needs an untyped const", req.Type.Name).
				WithSuggestion("declare it with const and no type"))
			return target{}, false
		}
	}

	return target{form: FormDirective, pos: vs.Pos(), req: req, spec: vs}, true
}
