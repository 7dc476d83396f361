// Package watch rebuilds a project when its sources change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/subscript/internal/build"
	"git.home.luguber.info/inful/subscript/internal/logfields"
	"git.home.luguber.info/inful/subscript/internal/sass"
)

// DefaultDebounce is how long the watcher waits for a burst of events to settle.
const DefaultDebounce = 300 * time.Millisecond

// Rebuilder runs builds; *build.Builder satisfies it.
type Rebuilder interface {
	Build(ctx context.Context, changed string) (*build.Report, error)
	Invalidate(path string) int
}

// Watcher watches a project root and drives rebuilds from a single worker.
type Watcher struct {
	root     string
	exclude  []string
	builder  Rebuilder
	logger   *slog.Logger
	debounce time.Duration
	interval time.Duration
	onBuild  func(*build.Report, error)

	mu       sync.Mutex
	timer    *time.Timer
	changed  map[string]struct{}
	full     bool
	requests chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(w *Watcher) { w.logger = l } }

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option { return func(w *Watcher) { w.debounce = d } }

// WithRebuildInterval schedules a full rebuild every d, independent of events.
func WithRebuildInterval(d time.Duration) Option { return func(w *Watcher) { w.interval = d } }

// WithExclude ignores events below the given directories (the output dir).
func WithExclude(dirs ...string) Option {
	return func(w *Watcher) { w.exclude = append(w.exclude, dirs...) }
}

// OnBuild is called after every rebuild.
func OnBuild(fn func(*build.Report, error)) Option { return func(w *Watcher) { w.onBuild = fn } }

// New creates a watcher over root.
func New(root string, b Rebuilder, opts ...Option) *Watcher {
	w := &Watcher{
		root:     root,
		builder:  b,
		logger:   slog.Default(),
		debounce: DefaultDebounce,
		changed:  make(map[string]struct{}),
		requests: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx ends.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = fsw.Close() }()
	w.addDirsRecursive(fsw, w.root)

	if w.interval > 0 {
		s, err := newScheduler(w.interval, w.requestFull)
		if err != nil {
			return err
		}
		s.Start()
		defer func() {
			if err := s.Stop(); err != nil {
				w.logger.Warn("scheduler shutdown error", logfields.Error(err))
			}
		}()
		w.logger.Info("periodic rebuild scheduled", slog.Duration("interval", w.interval))
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.worker(ctx)
	}()
	defer wg.Wait()

	w.logger.Info("watching for changes", logfields.Path(w.root))
	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fsw, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.requests:
			w.rebuild(ctx)
		}
	}
}

func (w *Watcher) rebuild(ctx context.Context) {
	paths, full := w.takeBatch()
	if full {
		w.builder.Invalidate("")
	}
	for _, p := range paths {
		w.builder.Invalidate(p)
	}
	changed := pickChanged(paths)
	w.logger.Info("change detected; rebuilding", logfields.Count(len(paths)), slog.Bool("full", full))

	report, err := w.builder.Build(ctx, changed)
	if err != nil {
		w.logger.Warn("rebuild failed", logfields.Error(err))
	}
	if w.onBuild != nil {
		w.onBuild(report, err)
	}
}

// pickChanged chooses the path reported to the build. A stylesheet wins so
// compiled SASS is refreshed; otherwise a lone path is passed through.
func pickChanged(paths []string) string {
	for _, p := range paths {
		if sass.IsSassFile(p) {
			return p
		}
	}
	if len(paths) == 1 {
		return paths[0]
	}
	return ""
}

func (w *Watcher) takeBatch() ([]string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	paths := make([]string, 0, len(w.changed))
	for p := range w.changed {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	full := w.full
	w.changed = make(map[string]struct{})
	w.full = false
	return paths, full
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, ev fsnotify.Event) {
	if shouldIgnoreEvent(ev.Name) || w.excluded(ev.Name) || ev.Op == fsnotify.Chmod {
		return
	}
	if ev.Op.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			w.addDirsRecursive(fsw, ev.Name)
		}
	}
	w.logger.Debug("file change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	w.trigger(ev.Name)
}

// trigger records path and (re)arms the debounce timer.
func (w *Watcher) trigger(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.changed[path] = struct{}{}
	w.armLocked()
}

func (w *Watcher) requestFull() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.full = true
	w.send()
}

func (w *Watcher) armLocked() {
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.send)
}

func (w *Watcher) send() {
	select {
	case w.requests <- struct{}{}:
	default:
	}
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) excluded(path string) bool {
	for _, dir := range w.exclude {
		rel, err := filepath.Rel(dir, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) addDirsRecursive(fsw *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != root && (strings.HasPrefix(d.Name(), ".") || w.excluded(path)) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			w.logger.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

// shouldIgnoreEvent reports events on hidden, editor swap and lock files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db" || strings.HasSuffix(base, ".lock")
}
