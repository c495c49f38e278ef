package generator

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qtest "github.com/teranos/randconst/internal/testing"
)

func TestWatch_RegeneratesChangedTemplate(t *testing.T) {
	dir := t.TempDir()
	qtest.WriteFile(t, dir, "plain.go", "package keys\n")

	g, _ := newGenerator(t, nil, nil)
	w, err := g.NewWatcher([]string{dir}, 20*time.Millisecond)
	require.NoError(t, err)

	var mu sync.Mutex
	var reports []*Report
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(r *Report, err error) {
			assert.NoError(t, err)
			mu.Lock()
			reports = append(reports, r)
			mu.Unlock()
		})
	}()

	// A plain file changing is not a template
	qtest.WriteFile(t, dir, "plain.go", "package keys\n\nvar x = 1\n")
	qtest.WriteFile(t, dir, "keys.go", keysTemplate)

	companion := filepath.Join(dir, "keys_randconst.go")
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(reports) > 0
	}, 5*time.Second, 10*time.Millisecond)
	assert.FileExists(t, companion)
	assert.NoFileExists(t, filepath.Join(dir, "plain_randconst.go"))

	mu.Lock()
	first := reports[0]
	mu.Unlock()
	require.Len(t, first.Files, 1)
	assert.Equal(t, filepath.Join(dir, "keys.go"), first.Files[0].Template)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_Relevant(t *testing.T) {
	dir := t.TempDir()
	explicit := qtest.WriteFile(t, t.TempDir(), "named.go", minimalTemplate)

	g, _ := newGenerator(t, nil, nil)
	w, err := g.NewWatcher([]string{dir, explicit}, 0)
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, DefaultDebounce, w.debouncePeriod)
	assert.True(t, w.relevant(filepath.Join(dir, "keys.go")))
	assert.True(t, w.relevant(explicit))
	assert.False(t, w.relevant(filepath.Join(dir, "keys_randconst.go")))
	assert.False(t, w.relevant(filepath.Join(dir, ".keys.go.123")))
	assert.False(t, w.relevant(filepath.Join(dir, "notes.txt")))
	assert.False(t, w.relevant(filepath.Join(filepath.Dir(explicit), "sibling.go")), "only the named file in its directory")
}

func TestWatcher_OwnWrites(t *testing.T) {
	g, _ := newGenerator(t, nil, func(o *Options) { o.InPlace = true })
	w, err := g.NewWatcher([]string{t.TempDir()}, 10*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	w.markOwnWrites([]string{"a.go"})
	assert.True(t, w.checkOwnWrite("a.go"))
	assert.False(t, w.checkOwnWrite("b.go"))

	time.Sleep(30 * time.Millisecond)
	assert.False(t, w.checkOwnWrite("a.go"), "window expired")
}
