package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// startWatcher runs a watcher over opts and returns the channel batches are
// delivered on.
func startWatcher(t *testing.T, opts Options) <-chan []string {
	t.Helper()
	if opts.Debounce == 0 {
		opts.Debounce = 50 * time.Millisecond
	}
	w, err := New(opts, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	batches := make(chan []string, 16)
	go func() {
		defer close(done)
		w.Run(ctx, func(paths []string) { batches <- paths })
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return batches
}

func waitBatch(t *testing.T, batches <-chan []string) []string {
	t.Helper()
	select {
	case b := <-batches:
		return b
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
		return nil
	}
}

func contains(paths []string, want string) bool {
	for _, p := range paths {
		if p == want {
			return true
		}
	}
	return false
}

func TestWatchReportsChange(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "content", "work", "a.md"), "one")

	batches := startWatcher(t, Options{Roots: []string{root}})

	target := filepath.Join(root, "content", "work", "a.md")
	writeTestFile(t, target, "two")

	if got := waitBatch(t, batches); !contains(got, target) {
		t.Errorf("batch %v does not contain %s", got, target)
	}
}

func TestWatchDebouncesBurst(t *testing.T) {
	root := t.TempDir()
	batches := startWatcher(t, Options{Roots: []string{root}, Debounce: 200 * time.Millisecond})

	for _, name := range []string{"a.md", "b.md", "c.md"} {
		writeTestFile(t, filepath.Join(root, name), name)
	}

	got := waitBatch(t, batches)
	for _, name := range []string{"a.md", "b.md", "c.md"} {
		if !contains(got, filepath.Join(root, name)) {
			t.Errorf("batch %v missing %s", got, name)
		}
	}

	select {
	case extra := <-batches:
		t.Errorf("unexpected second batch %v", extra)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatchIgnoresOutputDir(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "public")
	writeTestFile(t, filepath.Join(out, "index.html"), "old")

	batches := startWatcher(t, Options{Roots: []string{root}, Ignore: []string{out}})

	writeTestFile(t, filepath.Join(out, "index.html"), "new")
	select {
	case b := <-batches:
		t.Fatalf("output change reported: %v", b)
	case <-time.After(300 * time.Millisecond):
	}

	src := filepath.Join(root, "page.md")
	writeTestFile(t, src, "x")
	if got := waitBatch(t, batches); !contains(got, src) {
		t.Errorf("batch %v does not contain %s", got, src)
	}
}

func TestWatchIgnoresScratchFiles(t *testing.T) {
	root := t.TempDir()
	batches := startWatcher(t, Options{Roots: []string{root}})

	writeTestFile(t, filepath.Join(root, ".page.md.swp"), "swap")
	writeTestFile(t, filepath.Join(root, "page.md~"), "backup")
	select {
	case b := <-batches:
		t.Fatalf("scratch file change reported: %v", b)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatchFollowsNewDirectories(t *testing.T) {
	root := t.TempDir()
	batches := startWatcher(t, Options{Roots: []string{root}})

	sub := filepath.Join(root, "content", "experience")
	if err := os.MkdirAll(filepath.Join(root, "content"), 0o755); err != nil {
		t.Fatal(err)
	}
	waitBatch(t, batches)
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	waitBatch(t, batches)

	target := filepath.Join(sub, "lab.md")
	writeTestFile(t, target, "x")
	if got := waitBatch(t, batches); !contains(got, target) {
		t.Errorf("batch %v does not contain %s", got, target)
	}
}

func TestNewSkipsMissingRoot(t *testing.T) {
	w, err := New(Options{Roots: []string{filepath.Join(t.TempDir(), "missing")}}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Run(ctx, func([]string) {}); err != nil {
		t.Errorf("Run: %v", err)
	}
}
