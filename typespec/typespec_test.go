package typespec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_AllEntries(t *testing.T) {
	reg, err := ForArch("amd64")
	require.NoError(t, err)

	tests := []struct {
		name   string
		width  int
		signed bool
		goType string
	}{
		{"u8", 1, false, "uint8"},
		{"i8", 1, true, "int8"},
		{"u16", 2, false, "uint16"},
		{"i16", 2, true, "int16"},
		{"u32", 4, false, "uint32"},
		{"i32", 4, true, "int32"},
		{"u64", 8, false, "uint64"},
		{"i64", 8, true, "int64"},
		{"u128", 16, false, ""},
		{"i128", 16, true, ""},
		{"usize", 8, false, "uint"},
		{"isize", 8, true, "int"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, ok := reg.Resolve(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.name, spec.Name)
			assert.Equal(t, tt.width, spec.Width)
			assert.Equal(t, tt.signed, spec.Signed)
			assert.Equal(t, tt.goType, spec.GoType)
			assert.Equal(t, tt.name == "usize" || tt.name == "isize", spec.PointerSized)
		})
	}
}

func TestResolve_NoMatch(t *testing.T) {
	reg, err := ForArch("amd64")
	require.NoError(t, err)

	for _, name := range []string{"", "U8", "I32", "uint8", "u256", "f32", "bool", "notatype", " u8"} {
		_, ok := reg.Resolve(name)
		assert.False(t, ok, "expected no match for %q", name)
	}
}

func TestResolveGo(t *testing.T) {
	reg, err := ForArch("amd64")
	require.NoError(t, err)

	tests := map[string]string{
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
	for goName, want := range tests {
		spec, ok := reg.ResolveGo(goName)
		require.True(t, ok, goName)
		assert.Equal(t, want, spec.Name, goName)
	}

	for _, goName := range []string{"u8", "float64", "string", "Uint8", "complex128"} {
		_, ok := reg.ResolveGo(goName)
		assert.False(t, ok, goName)
	}
}

func TestForArch_PointerWidth(t *testing.T) {
	for arch, width := range map[string]int{"amd64": 8, "arm64": 8, "386": 4, "arm": 4, "wasm": 8} {
		reg, err := ForArch(arch)
		require.NoError(t, err, arch)
		assert.Equal(t, width, reg.PointerWidth(), arch)

		usize, _ := reg.Resolve("usize")
		isize, _ := reg.Resolve("isize")
		assert.Equal(t, width, usize.Width, arch)
		assert.Equal(t, width, isize.Width, arch)
	}
}

func TestForArch_Unknown(t *testing.T) {
	_, err := ForArch("z80")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "z80")
}

func TestAll_StableOrder(t *testing.T) {
	reg, err := ForArch("amd64")
	require.NoError(t, err)

	all := reg.All()
	require.Len(t, all, 12)
	for i, spec := range all {
		assert.Equal(t, Names[i], spec.Name)
	}
}

func TestTargetArch(t *testing.T) {
	t.Setenv("GOARCH", "riscv64")
	assert.Equal(t, "arm64", TargetArch("arm64"))
	assert.Equal(t, "riscv64", TargetArch(""))
}
