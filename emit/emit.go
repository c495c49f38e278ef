// Package emit renders synthesized values as Go expressions.
//
// Typed scalars become conversions (uint32(3735928559), int8(-7)).
// Pointer-sized types go through the fixed-width type of the same size
// (uint(uint64(...))) so the literal is checked against the target width.
// 128-bit values have no Go type and render as untyped constants.
// Arrays become composite literals ([3]int16{-5, 100, 7}).
package emit

import (
	"bytes"
	"go/ast"
	"go/format"
	"go/token"
	"strconv"
	"strings"

	"github.com/teranos/randconst/errors"
	"github.com/teranos/randconst/grammar"
	"github.com/teranos/randconst/synth"
	"github.com/teranos/randconst/typespec"
)

// Base selects the radix of emitted integer literals.
type Base int

const (
	Decimal Base = iota
	Hex
)

// String returns the config spelling.
func (b Base) String() string {
	if b == Hex {
		return "hex"
	}
	return "dec"
}

// ParseBase reads the config spelling ("dec", "hex").
func ParseBase(s string) (Base, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dec", "decimal":
		return Decimal, nil
	case "hex", "hexadecimal":
		return Hex, nil
	default:
		return Decimal, errors.Newf("unknown literal base %q (supported: dec, hex)", s)
	}
}

// Emitter turns values into expressions. The zero value emits decimal.
type Emitter struct {
	Base Base
}

// New returns an emitter for base.
func New(base Base) *Emitter {
	return &Emitter{Base: base}
}

// Expr builds the expression for req from its drawn values. The returned
// nodes carry no positions; see Place.
func (e *Emitter) Expr(req grammar.Request, values []synth.Value) (ast.Expr, error) {
	if len(values) != req.Slots() {
		return nil, errors.AssertionFailedf("request %s needs %d values, got %d", req, req.Slots(), len(values))
	}

	goType := req.GoType
	if goType == "" {
		goType = req.Type.GoType
	}

	if !req.Array {
		return e.scalar(req.Type, goType, values[0]), nil
	}

	if !req.Type.HasGoType() {
		return nil, grammar.NewDiagnostic(grammar.KindUnsupportedConstruct,
			"unsupported construct: %s arrays cannot be expressed in Go", req.Type.Name).
			WithSnippet(req.String()).
			WithSuggestion("use two 64-bit arrays, or one untyped 128-bit constant per element")
	}

	elts := make([]ast.Expr, len(values))
	for i, v := range values {
		if req.Type.PointerSized {
			elts[i] = e.scalar(req.Type, goType, v)
		} else {
			elts[i] = e.number(v)
		}
	}
	return &ast.CompositeLit{
		Type: &ast.ArrayType{
			Len: &ast.BasicLit{Kind: token.INT, Value: strconv.Itoa(req.Len)},
			Elt: ast.NewIdent(goType),
		},
		Elts: elts,
	}, nil
}

// Place anchors every node of expr at pos. Without positions the printer
// estimates offsets as it writes and can pull later comments into the
// literal, so callers splicing into a file pass the start of the span the
// literal replaces.
func Place(expr ast.Expr, pos token.Pos) {
	ast.Inspect(expr, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.Ident:
			n.NamePos = pos
		case *ast.BasicLit:
			n.ValuePos = pos
		case *ast.UnaryExpr:
			n.OpPos = pos
		case *ast.CallExpr:
			n.Lparen, n.Rparen = pos, pos
		case *ast.CompositeLit:
			n.Lbrace, n.Rbrace = pos, pos
		case *ast.ArrayType:
			n.Lbrack = pos
		}
		return true
	})
}

// Render returns Expr as source text.
func (e *Emitter) Render(req grammar.Request, values []synth.Value) (string, error) {
	expr, err := e.Expr(req, values)
	if err != nil {
		return "", err
	}
	return Format(expr)
}

// Format prints an expression built by Expr.
func Format(expr ast.Expr) (string, error) {
	var buf bytes.Buffer
	if err := format.Node(&buf, token.NewFileSet(), expr); err != nil {
		return "", errors.Wrap(err, "failed to print literal")
	}
	return buf.String(), nil
}

// Literal returns the bare number text of v in the emitter's base.
func (e *Emitter) Literal(v synth.Value) string {
	digits := v.Big()
	neg := digits.Sign() < 0
	if neg {
		digits.Neg(digits)
	}

	var text string
	if e.Base == Hex {
		text = "0x" + digits.Text(16)
	} else {
		text = digits.Text(10)
	}
	if neg {
		return "-" + text
	}
	return text
}

func (e *Emitter) scalar(t typespec.TypeSpec, goType string, v synth.Value) ast.Expr {
	n := e.number(v)
	if !t.HasGoType() {
		return n
	}
	if t.PointerSized {
		n = conversion(fixedWidth(t), n)
	}
	return conversion(goType, n)
}

func (e *Emitter) number(v synth.Value) ast.Expr {
	text := e.Literal(v)
	if rest, ok := strings.CutPrefix(text, "-"); ok {
		return &ast.UnaryExpr{Op: token.SUB, X: &ast.BasicLit{Kind: token.INT, Value: rest}}
	}
	return &ast.BasicLit{Kind: token.INT, Value: text}
}

func conversion(goType string, x ast.Expr) ast.Expr {
	return &ast.CallExpr{Fun: ast.NewIdent(goType), Args: []ast.Expr{x}}
}

// fixedWidth names the sized integer type matching a pointer-sized type.
func fixedWidth(t typespec.TypeSpec) string {
	name := "uint"
	if t.Signed {
		name = "int"
	}
	return name + strconv.Itoa(t.Bits())
}
