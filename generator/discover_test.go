package generator

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qtest "github.com/teranos/randconst/internal/testing"
)

const minimalTemplate = "//go:build randconst\n\npackage p\n"

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{
		"a.go",
		"a_test.go",
		"sub/b.go",
		"sub/deeper/c.go",
		"vendor/v.go",
		"testdata/t.go",
		".hidden/h.go",
		"_skip/s.go",
	} {
		qtest.WriteFile(t, root, name, minimalTemplate)
	}
	qtest.WriteFile(t, root, "a_randconst.go", "// Code generated by randconst from a.go; DO NOT EDIT.\n\n//go:build !randconst\n\npackage p\n")
	qtest.WriteFile(t, root, "plain.go", "package p\n")
	qtest.WriteFile(t, root, "other.go", "//go:build linux\n\npackage p\n")
	qtest.WriteFile(t, root, "notes.txt", minimalTemplate)

	rel := func(files []string) []string {
		out := make([]string, len(files))
		for i, f := range files {
			r, err := filepath.Rel(root, f)
			require.NoError(t, err)
			out[i] = filepath.ToSlash(r)
		}
		return out
	}

	tests := []struct {
		name  string
		paths []string
		want  []string
	}{
		{"directory is not recursive", []string{root}, []string{"a.go", "a_test.go"}},
		{"tree", []string{root + "/..."}, []string{"a.go", "a_test.go", "sub/b.go", "sub/deeper/c.go"}},
		{"subtree", []string{filepath.Join(root, "sub") + "/..."}, []string{"sub/b.go", "sub/deeper/c.go"}},
		{"explicit file kept as given", []string{filepath.Join(root, "plain.go")}, []string{"plain.go"}},
		{"explicit file in skipped dir", []string{filepath.Join(root, "vendor", "v.go")}, []string{"vendor/v.go"}},
		{"duplicates removed", []string{root, filepath.Join(root, "a.go"), root + "/..."}, []string{"a.go", "a_test.go", "sub/b.go", "sub/deeper/c.go"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := Discover(tt.paths, "randconst", "_randconst.go")
			require.NoError(t, err)
			assert.Equal(t, tt.want, rel(files))
		})
	}
}

func TestDiscover_CustomTag(t *testing.T) {
	root := t.TempDir()
	qtest.WriteFile(t, root, "a.go", minimalTemplate)
	qtest.WriteFile(t, root, "b.go", "//go:build secrets\n\npackage p\n")

	files, err := Discover([]string{root}, "secrets", "_randconst.go")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "b.go")}, files)
}

func TestDiscover_Errors(t *testing.T) {
	root := t.TempDir()
	qtest.WriteFile(t, root, "notes.txt", "")

	_, err := Discover([]string{filepath.Join(root, "missing.go")}, "randconst", "_randconst.go")
	assert.ErrorContains(t, err, "cannot read")

	_, err = Discover([]string{filepath.Join(root, "notes.txt")}, "randconst", "_randconst.go")
	assert.ErrorContains(t, err, "not a Go file")

	qtest.WriteFile(t, root, "broken.go", "//go:build randconst\n\npackage\n")
	_, err = Discover([]string{root}, "randconst", "_randconst.go")
	assert.Error(t, err)
}

func TestDiscover_TreePatterns(t *testing.T) {
	root := t.TempDir()
	qtest.WriteFile(t, root, "a.go", minimalTemplate)
	qtest.WriteFile(t, root, "sub/b.go", minimalTemplate)
	t.Chdir(root)

	bare, err := Discover([]string{"..."}, "randconst", "_randconst.go")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.go", filepath.Join("sub", "b.go")}, bare)

	dotted, err := Discover([]string{"./..."}, "randconst", "_randconst.go")
	require.NoError(t, err)
	assert.Equal(t, bare, dotted)

	_, err = Discover([]string{"/..."}, "randconst", "_randconst.go")
	assert.ErrorContains(t, err, "refusing to walk the filesystem root")
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		template, suffix, want string
	}{
		{"keys.go", "_randconst.go", "keys_randconst.go"},
		{"dir/keys.go", "_randconst.go", "dir/keys_randconst.go"},
		{"keys_test.go", "_randconst.go", "keys_randconst_test.go"},
		{"keys.go", ".gen.go", "keys.gen.go"},
		{"keys_test.go", ".gen.go", "keys.gen_test.go"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OutputPath(tt.template, tt.suffix), tt.template)
	}
}

func TestIsOutput(t *testing.T) {
	assert.True(t, isOutput("keys_randconst.go", "_randconst.go"))
	assert.True(t, isOutput("keys_randconst_test.go", "_randconst.go"))
	assert.False(t, isOutput("keys.go", "_randconst.go"))
	assert.False(t, isOutput("randconst.go", "_randconst.go"))
}
