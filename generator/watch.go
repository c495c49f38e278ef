package generator

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/randconst/errors"
	"github.com/teranos/randconst/logger"
	"github.com/teranos/randconst/splice"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 500 * time.Millisecond

// RunCallback receives the outcome of every regeneration in watch mode.
type RunCallback func(*Report, error)

// Watcher regenerates templates when they change.
type Watcher struct {
	gen     *Generator
	watcher *fsnotify.Watcher
	log     *zap.SugaredLogger

	files     map[string]bool // explicitly named files
	dirs      map[string]bool // directories whose templates are watched
	recursive []string        // roots of dir/... patterns

	debouncePeriod time.Duration
	mu             sync.Mutex
	pending        map[string]bool
	debounceTimer  *time.Timer
	ownWrites      map[string]time.Time // in-place rewrites, ignored for one debounce window
	runMu          sync.Mutex           // one regeneration at a time
}

// NewWatcher prepares a watch over paths (same forms as Discover).
func (g *Generator) NewWatcher(paths []string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	w := &Watcher{
		gen:            g,
		watcher:        fw,
		log:            logger.Named("watch"),
		files:          make(map[string]bool),
		dirs:           make(map[string]bool),
		debouncePeriod: debounce,
		pending:        make(map[string]bool),
		ownWrites:      make(map[string]time.Time),
	}

	for _, p := range paths {
		if err := w.addPath(p); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) addPath(p string) error {
	if root, ok := strings.CutSuffix(filepath.ToSlash(p), "/..."); ok {
		root = filepath.Clean(filepath.FromSlash(root))
		w.recursive = append(w.recursive, root)
		return w.addTree(root)
	}

	info, err := os.Stat(p)
	if err != nil {
		return errors.Wrapf(err, "cannot watch %s", p)
	}
	if info.IsDir() {
		return w.addDir(filepath.Clean(p))
	}
	// Watch the parent: editors often replace files instead of writing them
	w.files[filepath.Clean(p)] = true
	return w.watchDir(filepath.Dir(filepath.Clean(p)))
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.addDir(path)
	})
}

func (w *Watcher) addDir(dir string) error {
	w.dirs[dir] = true
	return w.watchDir(dir)
}

func (w *Watcher) watchDir(dir string) error {
	if err := w.watcher.Add(dir); err != nil {
		return errors.Wrapf(err, "failed to watch %s", dir)
	}
	w.log.Debugw("Watching directory", logger.FieldFile, dir)
	return nil
}

// Run watches until ctx is cancelled. onRun may be nil.
func (w *Watcher) Run(ctx context.Context, onRun RunCallback) error {
	defer w.Close()
	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.debounceTimer != nil {
				w.debounceTimer.Stop()
			}
			w.mu.Unlock()
			// Let an in-flight regeneration finish
			w.runMu.Lock()
			defer w.runMu.Unlock()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, event, onRun)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("Watcher error", logger.FieldError, err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event, onRun RunCallback) {
	path := filepath.Clean(event.Name)

	if event.Has(fsnotify.Create) && w.inRecursiveRoot(path) {
		if info, err := os.Stat(path); err == nil && info.IsDir() && !skipDir(info.Name()) {
			if err := w.addTree(path); err != nil {
				w.log.Warnw("Cannot watch new directory", logger.FieldFile, path, logger.FieldError, err)
			}
			return
		}
	}

	// Only regenerate on Write or Create events
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if !w.relevant(path) {
		return
	}
	if w.checkOwnWrite(path) {
		w.log.Debugw("Ignoring own write", logger.FieldFile, path)
		return
	}

	w.log.Debugw("Change detected", logger.FieldFile, path, logger.FieldOp, event.Op.String())
	w.schedule(ctx, path, onRun)
}

// relevant reports whether path is a file this watch covers.
func (w *Watcher) relevant(path string) bool {
	if w.files[path] {
		return true
	}
	name := filepath.Base(path)
	if filepath.Ext(name) != ".go" || isOutput(name, w.gen.cfg.Generate.OutputSuffix) || strings.HasPrefix(name, ".") {
		return false
	}
	return w.dirs[filepath.Dir(path)]
}

func (w *Watcher) inRecursiveRoot(path string) bool {
	for _, root := range w.recursive {
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			return true
		}
	}
	return false
}

func (w *Watcher) checkOwnWrite(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	at, ok := w.ownWrites[path]
	if !ok {
		return false
	}
	if time.Since(at) > 2*w.debouncePeriod {
		delete(w.ownWrites, path)
		return false
	}
	return true
}

// schedule debounces rapid file changes and triggers regeneration
func (w *Watcher) schedule(ctx context.Context, path string, onRun RunCallback) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[path] = true
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debouncePeriod, func() {
		w.flush(ctx, onRun)
	})
}

// flush regenerates every pending template.
func (w *Watcher) flush(ctx context.Context, onRun RunCallback) {
	w.runMu.Lock()
	defer w.runMu.Unlock()
	if ctx.Err() != nil {
		return
	}

	w.mu.Lock()
	var files []string
	for path := range w.pending {
		files = append(files, path)
	}
	w.pending = make(map[string]bool)
	w.mu.Unlock()
	sort.Strings(files)

	var templates []string
	for _, path := range files {
		if w.files[path] {
			templates = append(templates, path)
			continue
		}
		src, err := os.ReadFile(path)
		if err != nil {
			continue // removed since the event
		}
		if ok, err := splice.IsTemplate(path, src, w.gen.cfg.Generate.BuildTag); err == nil && ok {
			templates = append(templates, path)
		}
	}
	if len(templates) == 0 {
		return
	}

	w.markOwnWrites(templates)
	report, err := w.gen.Run(ctx, templates)
	if err != nil {
		w.log.Errorw("Regeneration failed", logger.FieldError, err)
	}
	w.markOwnWrites(templates)
	if onRun != nil {
		onRun(report, err)
	}
}

// markOwnWrites records in-place rewrites so their events do not trigger
// another regeneration.
func (w *Watcher) markOwnWrites(templates []string) {
	if !w.gen.opts.InPlace {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, path := range templates {
		w.ownWrites[path] = time.Now()
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Watch regenerates templates under paths as they change, until ctx is
// cancelled.
func (g *Generator) Watch(ctx context.Context, paths []string, onRun RunCallback) error {
	w, err := g.NewWatcher(paths, DefaultDebounce)
	if err != nil {
		return err
	}
	return w.Run(ctx, onRun)
}
