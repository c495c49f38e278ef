// Package typespec holds the fixed table of integer types randconst can
// produce literals for.
//
// The table has exactly twelve entries: signed and unsigned integers of 8, 16,
// 32, 64 and 128 bits, plus pointer-sized signed and unsigned integers. Names
// are matched exactly (case-sensitive). The request grammar uses the short
// vocabulary (u8, i32, usize...); declarations use Go spellings (uint8, int32,
// uint...), resolved through ResolveGo.
package typespec

import (
	"go/types"
	"os"
	"runtime"

	"github.com/teranos/randconst/errors"
)

// TypeSpec describes one supported integer type.
type TypeSpec struct {
	// Name is the request vocabulary name, e.g. "u32"
	Name string
	// Width is the size in bytes. Pointer-sized types take the target's pointer width.
	Width int
	// Signed selects two's-complement interpretation
	Signed bool
	// GoType is the Go type used in emitted code. Empty for 128-bit types,
	// which Go can only express as untyped constants.
	GoType string
	// PointerSized marks usize/isize
	PointerSized bool
}

// Bits returns the width in bits.
func (t TypeSpec) Bits() int { return t.Width * 8 }

// HasGoType reports whether emitted code can name this type.
func (t TypeSpec) HasGoType() bool { return t.GoType != "" }

// Names is the request vocabulary in registry order.
var Names = []string{"u8", "i8", "u16", "i16", "u32", "i32", "u64", "i64", "u128", "i128", "usize", "isize"}

// goNames maps Go integer type spellings to the vocabulary.
var goNames = map[string]string{
	"uint8":   "u8",
	"byte":    "u8",
	"int8":    "i8",
	"uint16":  "u16",
	"int16":   "i16",
	"uint32":  "u32",
	"int32":   "i32",
	"rune":    "i32",
	"uint64":  "u64",
	"int64":   "i64",
	"uint":    "usize",
	"uintptr": "usize",
	"int":     "isize",
}

// Registry resolves type names for one target architecture.
// It is immutable after construction and safe for concurrent use.
type Registry struct {
	goarch       string
	pointerWidth int
	byName       map[string]TypeSpec
}

// ForArch builds the registry for a GOARCH value. Pointer-sized entries take
// the pointer width the gc toolchain uses for that architecture.
func ForArch(goarch string) (*Registry, error) {
	sizes := types.SizesFor("gc", goarch)
	if sizes == nil {
		return nil, errors.WithHint(
			errors.Newf("unknown target architecture %q", goarch),
			"set target.goarch to a GOARCH value supported by the Go toolchain (amd64, arm64, 386, ...)",
		)
	}
	ptr := int(sizes.Sizeof(types.Typ[types.Uintptr]))

	entries := []TypeSpec{
		{Name: "u8", Width: 1, GoType: "uint8"},
		{Name: "i8", Width: 1, Signed: true, GoType: "int8"},
		{Name: "u16", Width: 2, GoType: "uint16"},
		{Name: "i16", Width: 2, Signed: true, GoType: "int16"},
		{Name: "u32", Width: 4, GoType: "uint32"},
		{Name: "i32", Width: 4, Signed: true, GoType: "int32"},
		{Name: "u64", Width: 8, GoType: "uint64"},
		{Name: "i64", Width: 8, Signed: true, GoType: "int64"},
		{Name: "u128", Width: 16},
		{Name: "i128", Width: 16, Signed: true},
		{Name: "usize", Width: ptr, GoType: "uint", PointerSized: true},
		{Name: "isize", Width: ptr, Signed: true, GoType: "int", PointerSized: true},
	}

	r := &Registry{
		goarch:       goarch,
		pointerWidth: ptr,
		byName:       make(map[string]TypeSpec, len(entries)),
	}
	for _, e := range entries {
		r.byName[e.Name] = e
	}
	return r, nil
}

// TargetArch picks the architecture: the explicit value, then $GOARCH, then the host.
func TargetArch(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv("GOARCH"); env != "" {
		return env
	}
	return runtime.GOARCH
}

// GOARCH returns the architecture this registry was built for.
func (r *Registry) GOARCH() string { return r.goarch }

// PointerWidth returns the byte width of usize/isize.
func (r *Registry) PointerWidth() int { return r.pointerWidth }

// Resolve looks up a request vocabulary name (u8, i128, usize...).
func (r *Registry) Resolve(name string) (TypeSpec, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// ResolveGo looks up a Go integer type spelling (uint8, byte, int, uintptr...).
func (r *Registry) ResolveGo(goName string) (TypeSpec, bool) {
	name, ok := goNames[goName]
	if !ok {
		return TypeSpec{}, false
	}
	return r.Resolve(name)
}

// All returns every entry in vocabulary order.
func (r *Registry) All() []TypeSpec {
	out := make([]TypeSpec, 0, len(Names))
	for _, n := range Names {
		out = append(out, r.byName[n])
	}
	return out
}
