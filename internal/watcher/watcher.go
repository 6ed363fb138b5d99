// Package watcher turns directories into drop folders: files created or rewritten there are handed
// to a Handler after a quiet period, and removed files are reported as well.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Handler receives settled file events.
type Handler interface {
	FileChanged(ctx context.Context, path string)
	FileRemoved(ctx context.Context, path string)
}

// Watcher watches drop-folder roots recursively.
type Watcher struct {
	handler    Handler
	extensions []string
	debounce   time.Duration
	logger     *zap.Logger

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	ctx     context.Context
	roots   map[string][]string // root -> watched directories below it
	order   []string
	pending map[string]*time.Timer
	done    chan struct{}
	once    sync.Once
	syncs   sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithExtensions limits events to files with these extensions. Empty means every file.
func WithExtensions(exts ...string) Option {
	return func(w *Watcher) { w.extensions = exts }
}

// WithDebounce sets how long a file must stay quiet before FileChanged fires.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New returns a stopped watcher delivering events to h.
func New(h Handler, opts ...Option) *Watcher {
	w := &Watcher{
		handler:  h,
		debounce: defaultDebounce,
		logger:   zap.NewNop(),
		roots:    make(map[string][]string),
		pending:  make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching roots, creating missing ones. Events are delivered until ctx is cancelled
// or Stop is called.
func (w *Watcher) Start(ctx context.Context, roots ...string) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.mu.Lock()
	if w.fsw != nil {
		w.mu.Unlock()
		_ = fsw.Close()
		return errors.New("watcher already started")
	}
	w.fsw = fsw
	w.ctx = ctx
	for _, root := range roots {
		if err := w.addRootLocked(root); err != nil {
			w.fsw = nil
			w.mu.Unlock()
			_ = fsw.Close()
			return err
		}
	}
	w.mu.Unlock()

	w.logger.Debug("watcher started", zap.Strings("roots", w.Directories()), zap.Strings("extensions", w.extensions))
	go w.loop(ctx, fsw)
	return nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	path := filepath.Clean(ev.Name)
	w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", path))
	switch {
	case ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write):
		info, err := os.Stat(path)
		if err != nil {
			return
		}
		if info.IsDir() {
			w.adoptDirectory(path)
			return
		}
		if w.accepts(path) {
			w.schedule(path)
		}
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		w.cancel(path)
		if w.accepts(path) {
			w.handler.FileRemoved(w.context(), path)
		}
	}
}

// adoptDirectory watches a directory that appeared under a root and reports the files already in it.
func (w *Watcher) adoptDirectory(dir string) {
	w.mu.Lock()
	root := w.rootOfLocked(dir)
	if root == "" || w.fsw == nil {
		w.mu.Unlock()
		return
	}
	dirs, err := w.watchTreeLocked(dir)
	if err != nil {
		w.logger.Warn("watcher failed to add directory", zap.String("path", dir), zap.Error(err))
	}
	w.roots[root] = append(w.roots[root], dirs...)
	w.mu.Unlock()
	w.sync(dir)
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		stopped := w.fsw == nil
		w.mu.Unlock()
		if !stopped {
			w.handler.FileChanged(w.context(), path)
		}
	})
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) context() context.Context {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ctx == nil {
		return context.Background()
	}
	return w.ctx
}

func (w *Watcher) accepts(path string) bool {
	return matchExtension(path, w.extensions)
}

func matchExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}

func (w *Watcher) rootOfLocked(path string) string {
	for _, root := range w.order {
		if inDir(root, path) {
			return root
		}
	}
	return ""
}

func inDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (w *Watcher) addRootLocked(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	if _, ok := w.roots[abs]; ok {
		return nil
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return err
	}
	dirs, err := w.watchTreeLocked(abs)
	if err != nil {
		for _, d := range dirs {
			_ = w.fsw.Remove(d)
		}
		return err
	}
	w.roots[abs] = dirs
	w.order = append(w.order, abs)
	return nil
}

func (w *Watcher) watchTreeLocked(dir string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			return err
		}
		dirs = append(dirs, path)
		return nil
	})
	return dirs, err
}

// AddDirectory starts watching another root. With syncExisting, files already in it are reported
// through FileChanged in the background.
func (w *Watcher) AddDirectory(root string, syncExisting bool) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	w.mu.Lock()
	if w.fsw == nil {
		w.mu.Unlock()
		return errors.New("watcher not started")
	}
	err = w.addRootLocked(abs)
	w.mu.Unlock()
	if err != nil {
		return err
	}
	w.logger.Debug("watcher directory added", zap.String("path", abs), zap.Bool("sync_existing", syncExisting))
	if syncExisting {
		w.goSync(func() { w.sync(abs) })
	}
	return nil
}

// RemoveDirectory stops watching root. Documents already ingested from it are kept.
func (w *Watcher) RemoveDirectory(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	dirs, ok := w.roots[abs]
	if !ok {
		return nil
	}
	if w.fsw != nil {
		for _, d := range dirs {
			_ = w.fsw.Remove(d)
		}
	}
	delete(w.roots, abs)
	for i, r := range w.order {
		if r == abs {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	w.logger.Debug("watcher directory removed", zap.String("path", abs))
	return nil
}

// Directories returns the watched roots in the order they were added.
func (w *Watcher) Directories() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.order...)
}

// SyncExisting reports every matching file already present under the roots.
func (w *Watcher) SyncExisting() {
	for _, root := range w.Directories() {
		w.sync(root)
	}
}

// SyncExistingInBackground runs SyncExisting on its own goroutine. Stop waits for it.
func (w *Watcher) SyncExistingInBackground() {
	w.goSync(w.SyncExisting)
}

// goSync runs fn unless the watcher is stopped. syncs is only added to under w.mu while fsw is set.
func (w *Watcher) goSync(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsw == nil {
		return
	}
	w.syncs.Add(1)
	go func() {
		defer w.syncs.Done()
		fn()
	}()
}

func (w *Watcher) stopping(ctx context.Context) bool {
	select {
	case <-w.done:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func (w *Watcher) sync(dir string) {
	ctx := w.context()
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if w.stopping(ctx) {
			return filepath.SkipAll
		}
		if err != nil {
			return nil
		}
		if !d.IsDir() && w.accepts(path) {
			w.handler.FileChanged(ctx, path)
		}
		return nil
	})
}

// Stop releases the fsnotify watcher, drops pending events and waits for background syncs,
// which end after the file they are handling.
func (w *Watcher) Stop() {
	w.mu.Lock()
	fsw := w.fsw
	w.fsw = nil
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()
	if fsw != nil {
		_ = fsw.Close()
	}
	w.once.Do(func() { close(w.done) })
	w.syncs.Wait()
}
