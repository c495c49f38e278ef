package grammar

import (
	"go/ast"
	"go/token"
	"go/types"
	"strconv"

	"github.com/teranos/randconst/typespec"
)

// ParseDeclType reads a request off a declaration's type annotation.
//
// Accepted: an identifier naming a Go integer type, or [N]T with N an
// integer literal and T such an identifier. A nil expression means the
// declaration carried no type.
func ParseDeclType(reg *typespec.Registry, expr ast.Expr) (Request, error) {
	if expr == nil {
		return Request{}, NewDiagnostic(KindMalformed, "missing type specifier").
			WithSuggestion("annotate the declaration with an integer type, e.g. const K uint32 = 0").
			WithSuggestion("or give the directive a request, e.g. //randconst:random u128")
	}
	expr = ast.Unparen(expr)

	switch t := expr.(type) {
	case *ast.Ident:
		spec, err := resolveGoIdent(reg, t)
		if err != nil {
			return Request{}, err
		}
		return Request{Type: spec, GoType: t.Name}, nil

	case *ast.ArrayType:
		if t.Len == nil {
			return Request{}, invalidType(expr).WithSuggestion("slices are not supported, use a fixed-size array [N]T")
		}
		elem := ast.Unparen(t.Elt)
		if _, nested := elem.(*ast.ArrayType); nested {
			return Request{}, NewDiagnostic(KindUnsupportedType, "unsupported type: nested arrays are not supported").
				WithSnippet(types.ExprString(expr))
		}
		ident, ok := elem.(*ast.Ident)
		if !ok {
			return Request{}, invalidType(expr)
		}
		n, err := declLength(t.Len)
		if err != nil {
			return Request{}, err.WithSnippet(types.ExprString(expr))
		}
		spec, rerr := resolveGoIdent(reg, ident)
		if rerr != nil {
			return Request{}, rerr.WithSnippet(types.ExprString(expr))
		}
		return Request{Type: spec, GoType: ident.Name, Array: true, Len: n}, nil

	default:
		return Request{}, invalidType(expr)
	}
}

func invalidType(expr ast.Expr) *Diagnostic {
	return NewDiagnostic(KindMalformed, "invalid type, must be integer (or array thereof)").
		WithSnippet(types.ExprString(expr))
}

func resolveGoIdent(reg *typespec.Registry, ident *ast.Ident) (typespec.TypeSpec, *Diagnostic) {
	if spec, ok := reg.ResolveGo(ident.Name); ok {
		return spec, nil
	}
	d := NewDiagnostic(KindUnsupportedType, "specified type %q is not a simple integer", ident.Name)
	if _, ok := reg.Resolve(ident.Name); ok {
		d.WithSuggestion("declarations use Go type names (uint8, int64, uint...); put " + ident.Name + " in the directive instead")
	}
	return typespec.TypeSpec{}, d
}

// declLength accepts Go integer literals (decimal, hex, octal, binary, underscores).
func declLength(expr ast.Expr) (int, *Diagnostic) {
	lit, ok := ast.Unparen(expr).(*ast.BasicLit)
	if !ok || lit.Kind != token.INT {
		return 0, NewDiagnostic(KindMalformed, "invalid array length: must be an integer literal").
			WithSuggestion("named constants and expressions cannot be evaluated before compilation")
	}
	n, err := strconv.ParseUint(lit.Value, 0, strconv.IntSize-1)
	if err != nil {
		return 0, NewDiagnostic(KindMalformed, "invalid array length %s", lit.Value)
	}
	return int(n), nil
}
