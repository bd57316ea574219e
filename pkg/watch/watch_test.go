package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"docwriter/pkg/combine"
	"docwriter/pkg/ignore"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newWatcher(t *testing.T, root string, render func() error, patterns ...string) *Watcher {
	t.Helper()
	rules := ignore.New(nil)
	rules.CompileIgnoreLines(patterns...)
	w, err := New(Options{
		Root:     root,
		Output:   filepath.Join(root, "out", "doc.md"),
		Rules:    rules,
		Debounce: 50 * time.Millisecond,
		Render:   render,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return w
}

func TestRelevant(t *testing.T) {
	root := t.TempDir()
	w := newWatcher(t, root, func() error { return nil }, "*.log", "build/")
	t.Cleanup(func() { w.fsw.Close() })

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write", fsnotify.Event{Name: filepath.Join(root, "a.txt"), Op: fsnotify.Write}, true},
		{"create nested", fsnotify.Event{Name: filepath.Join(root, "src", "main.go"), Op: fsnotify.Create}, true},
		{"remove", fsnotify.Event{Name: filepath.Join(root, "a.txt"), Op: fsnotify.Remove}, true},
		{"chmod only", fsnotify.Event{Name: filepath.Join(root, "a.txt"), Op: fsnotify.Chmod}, false},
		{"ignored glob", fsnotify.Event{Name: filepath.Join(root, "src", "debug.log"), Op: fsnotify.Write}, false},
		{"ignored dir", fsnotify.Event{Name: filepath.Join(root, "build", "x.o"), Op: fsnotify.Create}, false},
		{"artifact", fsnotify.Event{Name: filepath.Join(root, "out", "doc.md"), Op: fsnotify.Create}, false},
		{"artifact lock", fsnotify.Event{Name: filepath.Join(root, "out", "doc.md.lock"), Op: fsnotify.Create}, false},
		{"artifact temp", fsnotify.Event{Name: filepath.Join(root, "out", ".doc.md.tmp-123"), Op: fsnotify.Write}, false},
		{"root itself", fsnotify.Event{Name: root, Op: fsnotify.Write}, false},
		{"outside root", fsnotify.Event{Name: filepath.Join(filepath.Dir(root), "other.txt"), Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.relevant(tt.event))
		})
	}
}

func TestStartReloadsIgnoreFile(t *testing.T) {
	root := t.TempDir()
	ignoreFile := filepath.Join(root, ".docignore")
	require.NoError(t, os.WriteFile(ignoreFile, []byte("gen/\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "gen"), 0o755))

	logger := zaptest.NewLogger(t)
	load := func() (combine.IgnoreParser, error) {
		rules, err := ignore.LoadIgnoreFiles(ignoreFile, "", logger)
		if err != nil {
			return nil, err
		}
		return rules, nil
	}
	rules, err := load()
	require.NoError(t, err)

	var renders atomic.Int32
	w, err := New(Options{
		Root:     root,
		Output:   filepath.Join(root, "doc.md"),
		Rules:    rules,
		Debounce: 50 * time.Millisecond,
		Render: func() error {
			renders.Add(1)
			return nil
		},
		IgnoreFiles: []string{ignoreFile},
		LoadRules:   load,
	}, logger)
	require.NoError(t, err)
	assert.True(t, w.filter.MatchesPath("gen/x.txt"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()
	require.Eventually(t, func() bool { return renders.Load() == 1 }, 5*time.Second, 10*time.Millisecond)

	// Editing the ignore file re-renders even if its own rules would hide it.
	require.NoError(t, os.WriteFile(ignoreFile, []byte(".docignore\n"), 0o644))
	require.Eventually(t, func() bool { return renders.Load() == 2 }, 5*time.Second, 10*time.Millisecond)

	// gen/ is no longer ignored, so it is now watched.
	require.NoError(t, os.WriteFile(filepath.Join(root, "gen", "x.txt"), []byte("x"), 0o644))
	require.Eventually(t, func() bool { return renders.Load() == 3 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestNewIgnoreFilesNeedLoader(t *testing.T) {
	root := t.TempDir()
	w, err := New(Options{Root: root, Render: func() error { return nil }, IgnoreFiles: []string{filepath.Join(root, ".docignore")}}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { w.fsw.Close() })
	assert.Empty(t, w.ignoreFiles)
}

func TestNewDefaults(t *testing.T) {
	w, err := New(Options{Root: t.TempDir(), Render: func() error { return nil }}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { w.fsw.Close() })
	assert.Equal(t, DefaultDebounce, w.debounce)
	assert.False(t, w.filter.MatchesPath("anything"))
}

func TestStartReturnsInitialRenderError(t *testing.T) {
	errBoom := errors.New("boom")
	w := newWatcher(t, t.TempDir(), func() error { return errBoom })
	assert.ErrorIs(t, w.Start(context.Background()), errBoom)
}

func TestStartRerendersOnChange(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "build"), 0o755))

	var renders atomic.Int32
	w := newWatcher(t, root, func() error {
		renders.Add(1)
		return nil
	}, "build/")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	require.Eventually(t, func() bool { return renders.Load() == 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("one"), 0o644))
	require.Eventually(t, func() bool { return renders.Load() == 2 }, 5*time.Second, 10*time.Millisecond)

	// A directory created after start is picked up.
	require.NoError(t, os.Mkdir(filepath.Join(root, "src"), 0o755))
	require.Eventually(t, func() bool { return renders.Load() == 3 }, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "b.txt"), []byte("two"), 0o644))
	require.Eventually(t, func() bool { return renders.Load() == 4 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
