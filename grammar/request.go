// Package grammar turns request text and Go declaration types into
// normalized generation requests.
//
// Two surface forms feed the same Request:
//
//	u32           scalar request, inline grammar
//	[i16;3]       array request, inline grammar
//	var k [4]byte declaration form, type read off the declaration
//
// Inline requests use the short vocabulary (u8 ... isize); declarations use
// Go type names. Matching is exact and case-sensitive in both forms.
package grammar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/teranos/randconst/typespec"
)

// Request is the normalized intent of one invocation.
// It is created fresh per invocation and never mutated afterwards.
type Request struct {
	Type typespec.TypeSpec
	// GoType is the spelling used in emitted code. Declarations keep their own
	// spelling (byte, uintptr); inline requests use Type.GoType.
	GoType string
	// Array is false for scalar requests
	Array bool
	// Len is the element count of an array request; 0 is a legal empty array
	Len int
}

// Scalar builds a scalar request.
func Scalar(t typespec.TypeSpec) Request {
	return Request{Type: t, GoType: t.GoType}
}

// ArrayOf builds an array request.
func ArrayOf(t typespec.TypeSpec, n int) Request {
	return Request{Type: t, GoType: t.GoType, Array: true, Len: n}
}

// Slots returns how many values the request needs.
func (r Request) Slots() int {
	if r.Array {
		return r.Len
	}
	return 1
}

// String renders the request in inline grammar.
func (r Request) String() string {
	if r.Array {
		return fmt.Sprintf("[%s;%d]", r.Type.Name, r.Len)
	}
	return r.Type.Name
}

// Equal compares the requested shape, ignoring the Go spelling.
func (r Request) Equal(o Request) bool {
	return r.Type.Name == o.Type.Name && r.Array == o.Array && r.Len == o.Len
}

// ParseRequest parses inline request text: a bare type name or "[<type>;<length>]".
func ParseRequest(reg *typespec.Registry, text string) (Request, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Request{}, NewDiagnostic(KindMalformed, "missing type specifier").
			WithSuggestion("name one of: " + strings.Join(typespec.Names, ", "))
	}

	if !strings.HasPrefix(text, "[") {
		t, err := resolveName(reg, text)
		if err != nil {
			return Request{}, err
		}
		return Scalar(t), nil
	}

	if !strings.HasSuffix(text, "]") {
		return Request{}, NewDiagnostic(KindMalformed, "malformed array type: missing closing bracket").
			WithSnippet(text).
			WithSuggestion("write arrays as [<type>;<length>], e.g. [u8;16]")
	}
	inner := text[1 : len(text)-1]
	if strings.ContainsAny(inner, "[]") {
		return Request{}, NewDiagnostic(KindUnsupportedType, "unsupported type: nested arrays are not supported").
			WithSnippet(text)
	}

	elemText, lenText, ok := strings.Cut(inner, ";")
	if !ok {
		return Request{}, NewDiagnostic(KindMalformed, "missing separator in array type").
			WithSnippet(text).
			WithSuggestion("separate element type and length with ';', e.g. [u8;16]")
	}

	n, err := parseLength(strings.TrimSpace(lenText))
	if err != nil {
		return Request{}, err.WithSnippet(text)
	}

	t, rerr := resolveName(reg, strings.TrimSpace(elemText))
	if rerr != nil {
		return Request{}, rerr.WithSnippet(text)
	}
	return ArrayOf(t, n), nil
}

// parseLength accepts non-negative decimal integers only.
func parseLength(s string) (int, *Diagnostic) {
	if s == "" {
		return 0, NewDiagnostic(KindMalformed, "invalid array length: missing length")
	}
	n, err := strconv.ParseUint(s, 10, strconv.IntSize-1)
	if err != nil {
		return 0, NewDiagnostic(KindMalformed, "invalid array length %q: must be a non-negative integer", s)
	}
	return int(n), nil
}

func resolveName(reg *typespec.Registry, name string) (typespec.TypeSpec, *Diagnostic) {
	if t, ok := reg.Resolve(name); ok {
		return t, nil
	}
	d := NewDiagnostic(KindUnsupportedType, "unsupported type %q", name)
	if t, ok := reg.ResolveGo(name); ok {
		d.WithSuggestion(fmt.Sprintf("requests use the short name %q", t.Name))
	} else if t, ok := reg.Resolve(strings.ToLower(name)); ok {
		d.WithSuggestion(fmt.Sprintf("type names are case-sensitive, did you mean %q?", t.Name))
	} else {
		d.WithSuggestion("supported types: " + strings.Join(typespec.Names, ", "))
	}
	return typespec.TypeSpec{}, d
}
