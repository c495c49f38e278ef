package splice

import (
	"go/ast"
	"go/build/constraint"
	"go/parser"
	"go/token"

	"github.com/teranos/randconst/errors"
)

// buildLine finds the //go:build comment of f, if any.
func buildLine(f *ast.File) (*ast.Comment, constraint.Expr, error) {
	for _, cg := range f.Comments {
		if cg.Pos() >= f.Package {
			break
		}
		for _, c := range cg.List {
			if !constraint.IsGoBuild(c.Text) {
				continue
			}
			expr, err := constraint.Parse(c.Text)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "invalid build constraint %q", c.Text)
			}
			return c, expr, nil
		}
	}
	return nil, nil, nil
}

// mentions reports whether expr references tag.
func mentions(expr constraint.Expr, tag string) bool {
	found := false
	expr.Eval(func(t string) bool {
		if t == tag {
			found = true
		}
		return false
	})
	return found
}

// IsTemplate reports whether src carries a //go:build constraint that
// references tag and can hold when tag is set. Companions (!tag) are not
// templates. Only the file header is parsed.
func IsTemplate(filename string, src []byte, tag string) (bool, error) {
	f, err := parser.ParseFile(token.NewFileSet(), filename, src, parser.PackageClauseOnly|parser.ParseComments)
	if err != nil {
		return false, errors.Wrapf(err, "failed to parse %s", filename)
	}
	_, expr, err := buildLine(f)
	if err != nil || expr == nil {
		return false, err
	}
	if !mentions(expr, tag) {
		return false, nil
	}
	rest, value := assumeTag(expr, tag)
	return rest != nil || value, nil
}

// companionConstraint derives the constraint of the generated file: the
// template constraint with tag assumed set, and'ed with !tag, so template and
// companion never build together.
//
//	randconst              -> !randconst
//	randconst && linux     -> !randconst && linux
//	randconst && (a || b)  -> !randconst && (a || b)
func companionConstraint(expr constraint.Expr, tag string) (constraint.Expr, error) {
	rest, value := assumeTag(expr, tag)
	if rest == nil && !value {
		return nil, errors.Newf("build constraint %q can never hold when %s is set", expr.String(), tag)
	}
	not := &constraint.NotExpr{X: &constraint.TagExpr{Tag: tag}}
	if rest == nil {
		return not, nil
	}
	return &constraint.AndExpr{X: not, Y: rest}, nil
}

// assumeTag simplifies x with tag set. A nil result means x reduced to the
// constant value.
func assumeTag(x constraint.Expr, tag string) (constraint.Expr, bool) {
	switch x := x.(type) {
	case *constraint.TagExpr:
		if x.Tag == tag {
			return nil, true
		}
		return x, false

	case *constraint.NotExpr:
		r, v := assumeTag(x.X, tag)
		if r == nil {
			return nil, !v
		}
		return &constraint.NotExpr{X: r}, false

	case *constraint.AndExpr:
		l, lv := assumeTag(x.X, tag)
		r, rv := assumeTag(x.Y, tag)
		switch {
		case l == nil && !lv, r == nil && !rv:
			return nil, false
		case l == nil:
			return r, rv
		case r == nil:
			return l, lv
		}
		return &constraint.AndExpr{X: l, Y: r}, false

	case *constraint.OrExpr:
		l, lv := assumeTag(x.X, tag)
		r, rv := assumeTag(x.Y, tag)
		switch {
		case l == nil && lv, r == nil && rv:
			return nil, true
		case l == nil:
			return r, rv
		case r == nil:
			return l, lv
		}
		return &constraint.OrExpr{X: l, Y: r}, false
	}
	return x, false
}

// dropPlusBuild removes legacy // +build lines; the rewritten //go:build
// line is authoritative for the companion.
func dropPlusBuild(f *ast.File) {
	groups := f.Comments[:0]
	for _, cg := range f.Comments {
		if cg.Pos() < f.Package {
			kept := make([]*ast.Comment, 0, len(cg.List))
			for _, c := range cg.List {
				if !constraint.IsPlusBuild(c.Text) {
					kept = append(kept, c)
				}
			}
			if len(kept) == 0 {
				continue
			}
			cg.List = kept
		}
		groups = append(groups, cg)
	}
	f.Comments = groups
}
