package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/lmx/pkg/service/watcher"
	"go.uber.org/goleak"
)

type recorder struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recorder) handle(_ context.Context, changed []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, changed)
}

func (r *recorder) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.calls...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWatcherDebouncesJSONChanges(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	gt.NoError(t, os.MkdirAll(filepath.Join(root, "assessments", "json"), 0o755)).Required()

	rec := &recorder{}
	w, err := watcher.New(root, rec.handle, watcher.WithDebounce(100*time.Millisecond))
	gt.NoError(t, err).Required()
	gt.NoError(t, w.Start(context.Background())).Required()

	dir := filepath.Join(root, "assessments", "json")
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte("{}"), 0o644)).Required()
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "b.json"), []byte("{}"), 0o644)).Required()
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)).Required()
	gt.NoError(t, os.WriteFile(filepath.Join(dir, ".lmx-tmp-1"), []byte("x"), 0o644)).Required()

	waitFor(t, func() bool { return len(rec.snapshot()) > 0 })
	gt.NoError(t, w.Stop()).Required()

	calls := rec.snapshot()
	gt.Array(t, calls).Length(1)
	gt.Value(t, calls[0]).Equal([]string{"assessments/json/a.json", "assessments/json/b.json"})
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	rec := &recorder{}
	w, err := watcher.New(root, rec.handle, watcher.WithDebounce(50*time.Millisecond))
	gt.NoError(t, err).Required()
	gt.NoError(t, w.Start(context.Background())).Required()

	sub := filepath.Join(root, "deliverables")
	gt.NoError(t, os.Mkdir(sub, 0o755)).Required()
	// give the watcher time to register the new directory
	time.Sleep(100 * time.Millisecond)
	gt.NoError(t, os.WriteFile(filepath.Join(sub, "qbr-configs.json"), []byte("{}"), 0o644)).Required()

	waitFor(t, func() bool {
		for _, c := range rec.snapshot() {
			for _, p := range c {
				if p == "deliverables/qbr-configs.json" {
					return true
				}
			}
		}
		return false
	})
	gt.NoError(t, w.Stop()).Required()
}

func TestWatcherStopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	w, err := watcher.New(t.TempDir(), func(context.Context, []string) {})
	gt.NoError(t, err).Required()
	gt.NoError(t, w.Start(ctx)).Required()

	cancel()
	gt.NoError(t, w.Stop())
}

func TestWatcherStartFailsOnMissingRoot(t *testing.T) {
	w, err := watcher.New(filepath.Join(t.TempDir(), "missing"), func(context.Context, []string) {})
	gt.NoError(t, err).Required()
	gt.Error(t, w.Start(context.Background()))
	gt.NoError(t, w.Stop())
}
