package generator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/randconst/errors"
	qtest "github.com/teranos/randconst/internal/testing"
)

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	template := qtest.WriteFile(t, dir, "keys.go", keysTemplate)
	companion := filepath.Join(dir, "keys_randconst.go")
	ctx := context.Background()

	g, _ := newGenerator(t, nil, nil)

	result, err := g.Check(ctx, []string{dir})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Checked)
	assert.Equal(t, []string{template}, result.Missing)
	assert.True(t, errors.Is(result.Err(), errors.ErrStale))

	_, err = g.Run(ctx, []string{dir})
	require.NoError(t, err)
	draws := g.counter.Draws()

	result, err = g.Check(ctx, []string{dir})
	require.NoError(t, err)
	assert.True(t, result.UpToDate())
	assert.NoError(t, result.Err())
	assert.Equal(t, draws, g.counter.Draws(), "check draws no entropy")

	// New values, same structure
	_, err = g.Run(ctx, []string{dir})
	require.NoError(t, err)
	result, err = g.Check(ctx, []string{dir})
	require.NoError(t, err)
	assert.True(t, result.UpToDate())

	// Template changed after generation
	qtest.WriteFile(t, dir, "keys.go", keysTemplate+"\n//randconst:random\nvar Extra int64\n")
	result, err = g.Check(ctx, []string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{companion}, result.Stale)
	assert.ErrorContains(t, result.Err(), "0 of 1 companions missing, 1 stale")
}

func TestCheck_HandEditedCompanion(t *testing.T) {
	dir := t.TempDir()
	qtest.WriteFile(t, dir, "keys.go", keysTemplate)
	companion := filepath.Join(dir, "keys_randconst.go")

	g, _ := newGenerator(t, nil, nil)
	_, err := g.Run(context.Background(), []string{dir})
	require.NoError(t, err)

	data, err := os.ReadFile(companion)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(companion, append(data, []byte("\nfunc extra() {}\n")...), 0644))

	result, err := g.Check(context.Background(), []string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{companion}, result.Stale)
}

func TestCheck_TemplateDiagnostics(t *testing.T) {
	dir := t.TempDir()
	qtest.WriteFile(t, dir, "bad.go", badTemplate)

	g, _ := newGenerator(t, nil, nil)
	_, err := g.Check(context.Background(), []string{dir})
	assert.True(t, errors.Is(err, errors.ErrUnsupportedType))
}

func TestSameShape(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"identical", "var x = uint8(5)", "var x = uint8(5)", true},
		{"value differs", "var x = uint8(5)", "var x = uint8(200)", true},
		{"sign differs", "var x = int8(-7)", "var x = int8(3)", true},
		{"base differs", "var x = uint32(0xdeadbeef)", "var x = uint32(7)", true},
		{"array values", "var t = [2]int16{-5, 100}", "var t = [2]int16{9, -1}", true},
		{"type differs", "var x = uint8(5)", "var x = uint16(5)", false},
		{"operator differs", "var x = a - b", "var x = a + b", false},
		{"element count differs", "var t = [2]int16{1, 2}", "var t = [2]int16{1, 2, 3}", false},
		{"comment differs", "// from a.go\nvar x = 1", "// from b.go\nvar x = 1", false},
		{"unparsable companion", "var x = 1", "var x = \"", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sameShape([]byte(tt.a), []byte(tt.b))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
