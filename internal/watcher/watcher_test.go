package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	changed []string
	removed []string
}

func (r *recorder) FileChanged(_ context.Context, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changed = append(r.changed, path)
}

func (r *recorder) FileRemoved(_ context.Context, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, path)
}

func (r *recorder) snapshot() ([]string, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.changed...), append([]string(nil), r.removed...)
}

func startWatcher(t *testing.T, h Handler, roots ...string) *Watcher {
	t.Helper()
	w := New(h, WithExtensions(".txt"), WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx, roots...))
	t.Cleanup(func() {
		cancel()
		w.Stop()
	})
	return w
}

func TestWatcher_DropAndRemove(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	startWatcher(t, rec, dir)

	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "image.png"), []byte("png"), 0644))

	require.Eventually(t, func() bool {
		changed, _ := rec.snapshot()
		return len(changed) > 0
	}, 3*time.Second, 20*time.Millisecond)
	changed, _ := rec.snapshot()
	assert.Equal(t, []string{path}, changed, "writes are debounced and filtered by extension")

	require.NoError(t, os.Remove(path))
	require.Eventually(t, func() bool {
		_, removed := rec.snapshot()
		return len(removed) == 1 && removed[0] == path
	}, 3*time.Second, 20*time.Millisecond)
}

func TestWatcher_NewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	startWatcher(t, rec, dir)

	sub := filepath.Join(dir, "inbox")
	require.NoError(t, os.Mkdir(sub, 0755))
	time.Sleep(100 * time.Millisecond)
	path := filepath.Join(sub, "later.txt")
	require.NoError(t, os.WriteFile(path, []byte("dropped later"), 0644))

	require.Eventually(t, func() bool {
		changed, _ := rec.snapshot()
		for _, c := range changed {
			if c == path {
				return true
			}
		}
		return false
	}, 3*time.Second, 20*time.Millisecond)
}

func TestWatcher_AddRemoveDirectories(t *testing.T) {
	first := t.TempDir()
	second := filepath.Join(t.TempDir(), "created")
	rec := &recorder{}
	w := startWatcher(t, rec, first)

	existing := filepath.Join(t.TempDir(), "existing")
	require.NoError(t, os.MkdirAll(existing, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(existing, "a.txt"), []byte("a"), 0644))

	require.NoError(t, w.AddDirectory(second, false))
	require.NoError(t, w.AddDirectory(second, false), "adding twice is a no-op")
	require.NoError(t, w.AddDirectory(existing, true))
	assert.Equal(t, []string{first, second, existing}, w.Directories())
	assert.DirExists(t, second, "missing roots are created")

	require.Eventually(t, func() bool {
		changed, _ := rec.snapshot()
		return len(changed) == 1
	}, 3*time.Second, 20*time.Millisecond, "existing files are synced")

	require.NoError(t, w.RemoveDirectory(second))
	require.NoError(t, w.RemoveDirectory("/not/watched"))
	assert.Equal(t, []string{first, existing}, w.Directories())
}

func TestWatcher_SyncExisting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "deep"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "deep", "b.txt"), []byte("b"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.md"), []byte("c"), 0644))

	rec := &recorder{}
	w := startWatcher(t, rec, dir)
	w.SyncExisting()
	changed, _ := rec.snapshot()
	assert.ElementsMatch(t, []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "deep", "b.txt")}, changed)
}

func TestWatcher_StartTwice(t *testing.T) {
	w := startWatcher(t, &recorder{}, t.TempDir())
	assert.Error(t, w.Start(context.Background()))
}

func TestWatcher_AddBeforeStart(t *testing.T) {
	w := New(&recorder{})
	assert.Error(t, w.AddDirectory(t.TempDir(), false))
	w.Stop()
	w.Stop()
}

func TestMatchExtension(t *testing.T) {
	tests := []struct {
		path       string
		extensions []string
		want       bool
	}{
		{"/a/b.txt", []string{".txt"}, true},
		{"/a/b.TXT", []string{"txt"}, true},
		{"/a/b.md", []string{".txt"}, false},
		{"/a/b", nil, true},
		{"/a/b", []string{".txt"}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matchExtension(tt.path, tt.extensions), "%s %v", tt.path, tt.extensions)
	}
}

func TestInDir(t *testing.T) {
	assert.True(t, inDir("/tmp/a", "/tmp/a"))
	assert.True(t, inDir("/tmp/a", "/tmp/a/b.txt"))
	assert.False(t, inDir("/tmp/a", "/tmp/b"))
	assert.False(t, inDir("/tmp/a", "/tmp/a/../b"))
}

type blockingHandler struct {
	recorder
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingHandler) FileChanged(ctx context.Context, path string) {
	b.recorder.FileChanged(ctx, path)
	b.once.Do(func() {
		close(b.entered)
		<-b.release
	})
}

func TestWatcher_StopWaitsForBackgroundSync(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0644))
	}
	h := &blockingHandler{entered: make(chan struct{}), release: make(chan struct{})}
	w := New(h, WithExtensions(".txt"), WithDebounce(50*time.Millisecond))
	require.NoError(t, w.Start(context.Background(), dir))

	w.SyncExistingInBackground()
	select {
	case <-h.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("background sync never reached the handler")
	}

	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
		t.Fatal("Stop returned while a file was still being handled")
	case <-time.After(100 * time.Millisecond):
	}

	close(h.release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after the sync finished")
	}

	changed, _ := h.snapshot()
	assert.Len(t, changed, 1)

	w.SyncExistingInBackground()
	changed, _ = h.snapshot()
	assert.Len(t, changed, 1)
}
