// Package watch re-renders a document whenever the folder it describes
// changes.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"docwriter/pkg/combine"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is used when Options.Debounce is not positive.
const DefaultDebounce = 500 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	Root     string               // Folder to watch.
	Output   string               // Artifact path; its own writes never trigger a render.
	Rules    combine.IgnoreParser // Paths matched here are neither watched nor reported.
	Debounce time.Duration        // Quiet period before a render.
	Render   func() error         // Produces the artifact.

	// IgnoreFiles are the files Rules were loaded from. A change to any of
	// them reloads the rules through LoadRules and re-renders.
	IgnoreFiles []string
	LoadRules   func() (combine.IgnoreParser, error)
}

// Watcher runs Render once at start and again after every burst of changes.
type Watcher struct {
	root        string
	output      string
	filter      combine.IgnoreParser
	ignoreFiles map[string]bool
	loadRules   func() (combine.IgnoreParser, error)
	debounce    time.Duration
	render      func() error
	logger      *zap.Logger
	fsw         *fsnotify.Watcher
}

type noRules struct{}

func (noRules) MatchesPath(string) bool { return false }

// New creates a Watcher. Call Start to begin watching.
func New(opts Options, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	rules := opts.Rules
	if rules == nil {
		rules = noRules{}
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	ignoreFiles := make(map[string]bool, len(opts.IgnoreFiles))
	if opts.LoadRules != nil {
		for _, f := range opts.IgnoreFiles {
			if abs, err := filepath.Abs(f); err == nil {
				ignoreFiles[abs] = true
			}
		}
	}

	return &Watcher{
		root:        root,
		output:      opts.Output,
		filter:      combine.ExcludeArtifact(rules, root, opts.Output),
		ignoreFiles: ignoreFiles,
		loadRules:   opts.LoadRules,
		debounce:    debounce,
		render:      opts.Render,
		logger:      logger,
		fsw:         fsw,
	}, nil
}

// Start watches the tree below the root until ctx is cancelled. An error
// from the first render is returned; later render errors are logged.
func (w *Watcher) Start(ctx context.Context) error {
	defer w.fsw.Close()

	if err := w.addTree(w.root); err != nil {
		return err
	}
	w.watchIgnoreFiles()
	if err := w.render(); err != nil {
		return err
	}
	w.logger.Info("Watching for changes", zap.String("root", w.root), zap.Duration("debounce", w.debounce))

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.ignoreFiles[filepath.Clean(event.Name)] {
				w.reloadRules()
			} else if !w.relevant(event) {
				continue
			}
			if event.Has(fsnotify.Create) {
				w.addIfDir(event.Name)
			}
			w.logger.Debug("Change detected", zap.String("path", event.Name), zap.String("op", event.Op.String()))

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := w.render(); err != nil {
				w.logger.Warn("Re-render failed", zap.Error(err))
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watch error", zap.Error(err))
		}
	}
}

// rel returns the root-relative, "/"-separated form of name, or false when
// name is the root itself or lies outside it.
func (w *Watcher) rel(name string) (string, bool) {
	rel, err := filepath.Rel(w.root, name)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// relevant reports whether event should schedule a render.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	rel, ok := w.rel(event.Name)
	if !ok {
		return false
	}
	return !w.filter.MatchesPath(rel)
}

// reloadRules replaces the filter with freshly loaded rules and watches any
// directory they no longer ignore. On failure the previous rules stay.
func (w *Watcher) reloadRules() {
	rules, err := w.loadRules()
	if err != nil {
		w.logger.Warn("Failed to reload ignore rules", zap.Error(err))
		return
	}
	w.filter = combine.ExcludeArtifact(rules, w.root, w.output)
	w.logger.Info("Reloaded ignore rules")
	if err := w.addTree(w.root); err != nil {
		w.logger.Warn("Failed to rescan watched directories", zap.Error(err))
	}
}

// watchIgnoreFiles watches the directories of ignore files outside the root
// so edits to them are seen.
func (w *Watcher) watchIgnoreFiles() {
	for f := range w.ignoreFiles {
		if _, inside := w.rel(f); inside {
			continue
		}
		if err := w.fsw.Add(filepath.Dir(f)); err != nil {
			w.logger.Warn("Failed to watch ignore file", zap.String("path", f), zap.Error(err))
		}
	}
}

func (w *Watcher) addIfDir(name string) {
	info, err := os.Lstat(name)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.addTree(name); err != nil {
		w.logger.Warn("Failed to watch new directory", zap.String("path", name), zap.Error(err))
	}
}

// addTree watches dir and every directory below it that is not ignored.
// Symlinked directories are not followed.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			w.logger.Warn("Skipping unreadable directory", zap.String("path", p), zap.Error(err))
			return fs.SkipDir
		}
		if !d.IsDir() {
			return nil
		}
		if rel, ok := w.rel(p); ok && w.filter.MatchesPath(rel) {
			return fs.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}
